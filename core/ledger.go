package core

import (
	"math"

	"github.com/google/uuid"
)

// Ledger holds the players of one game session in creation order.
//
// A Ledger is not safe for concurrent use. Callers sharing one across
// goroutines must serialize access themselves.
type Ledger struct {
	sessionID string
	active    bool
	players   []Player
}

// NewLedger returns an empty, uninitialized ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Initialize starts a new session, replacing every player. Ids are the
// 1-based positions of names.
func (l *Ledger) Initialize(names []string, startingMoney int64) {
	players := make([]Player, len(names))
	for i, name := range names {
		players[i] = Player{
			ID:    i + 1,
			Name:  name,
			Money: startingMoney,
			Lands: []string{},
		}
	}
	l.sessionID = uuid.NewString()
	l.active = true
	l.players = players
}

// Restore rebuilds the ledger from a previously taken snapshot.
func (l *Ledger) Restore(sessionID string, players []Player) error {
	seen := make(map[int]struct{}, len(players))
	restored := make([]Player, len(players))
	for i, p := range players {
		if _, found := seen[p.ID]; found {
			return ErrDuplicatePlayerID
		}
		if p.Money < 0 {
			return ErrNegativeBalance
		}
		seen[p.ID] = struct{}{}
		restored[i] = p.clone()
	}
	l.sessionID = sessionID
	l.active = true
	l.players = restored
	return nil
}

// Active reports whether a session was initialized or restored.
func (l *Ledger) Active() bool { return l.active }

// SessionID identifies the current session, empty before Initialize.
func (l *Ledger) SessionID() string { return l.sessionID }

// Len returns the number of players still in the game.
func (l *Ledger) Len() int { return len(l.players) }

// Player returns a copy of the player with the given id.
func (l *Ledger) Player(id int) (Player, error) {
	p, err := l.find(id)
	if err != nil {
		return Player{}, err
	}
	return p.clone(), nil
}

// Snapshot returns a copy of all players in ledger order.
func (l *Ledger) Snapshot() []Player {
	ps := make([]Player, len(l.players))
	for i, p := range l.players {
		ps[i] = p.clone()
	}
	return ps
}

// Clone returns an independent copy of the ledger.
func (l *Ledger) Clone() *Ledger {
	return &Ledger{
		sessionID: l.sessionID,
		active:    l.active,
		players:   l.Snapshot(),
	}
}

func (l *Ledger) find(id int) (*Player, error) {
	for i := range l.players {
		if l.players[i].ID == id {
			return &l.players[i], nil
		}
	}
	return nil, &NotFoundError{PlayerID: id}
}

// CreditFromBank pays amount from the bank to a player.
func (l *Ledger) CreditFromBank(id int, amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	p, err := l.find(id)
	if err != nil {
		return err
	}
	return p.Credit(amount)
}

// PassGo credits the departure bonus to a player.
func (l *Ledger) PassGo(id int, bonus int64) error {
	return l.CreditFromBank(id, bonus)
}

// Debit takes amount from a player and gives it to the bank.
func (l *Ledger) Debit(id int, amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	p, err := l.find(id)
	if err != nil {
		return err
	}
	return p.AddBalance(-amount)
}

// SetMoney overwrites the balance of a player.
func (l *Ledger) SetMoney(id int, money int64) error {
	if money < 0 {
		return ErrNegativeAmount
	}
	p, err := l.find(id)
	if err != nil {
		return err
	}
	p.Money = money
	return nil
}

// Transfer moves amount between two players. Either both balances change
// or none does. A transfer to oneself leaves the balance as is, but still
// requires the player to hold amount.
func (l *Ledger) Transfer(fromID, toID int, amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	from, err := l.find(fromID)
	if err != nil {
		return err
	}
	to, err := l.find(toID)
	if err != nil {
		return err
	}
	if from == to {
		if from.Money < amount {
			return from.AddBalance(-amount)
		}
		return nil
	}
	if !to.canReceive(amount) {
		return ErrBalanceOverflow
	}
	if err := from.AddBalance(-amount); err != nil {
		return err
	}
	to.Money += amount
	return nil
}

// TransferAllToOne makes every other player pay amountPerPlayer to the
// player toID. Players who cannot afford it are skipped and their names
// returned in ledger order; everybody else pays.
func (l *Ledger) TransferAllToOne(toID int, amountPerPlayer int64) ([]string, error) {
	if amountPerPlayer < 0 {
		return nil, ErrNegativeAmount
	}
	to, err := l.find(toID)
	if err != nil {
		return nil, err
	}

	// Settle who pays first, so an overflowing receiver leaves every
	// balance untouched.
	skipped := []string{}
	var payers []*Player
	received := to.Money
	for i := range l.players {
		p := &l.players[i]
		if p.ID == toID {
			continue
		}
		if p.Money < amountPerPlayer {
			skipped = append(skipped, p.Name)
			continue
		}
		if received > math.MaxInt64-amountPerPlayer {
			return nil, ErrBalanceOverflow
		}
		received += amountPerPlayer
		payers = append(payers, p)
	}
	for _, p := range payers {
		p.Money -= amountPerPlayer
	}
	to.Money = received
	return skipped, nil
}

// Remove drops a bankrupt player from the session. Its money and lands are
// discarded.
func (l *Ledger) Remove(id int) error {
	for i := range l.players {
		if l.players[i].ID == id {
			l.players = append(l.players[:i], l.players[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{PlayerID: id}
}
