package core

import "math"

// Player is a participant of a game session.
type Player struct {
	ID    int      `json:"id"`
	Name  string   `json:"name"`
	Money int64    `json:"money"`
	Lands []string `json:"lands"`
}

// AddBalance applies delta to the player balance. A result below zero is
// refused and the balance is kept as is.
func (p *Player) AddBalance(delta int64) error {
	if p.Money+delta < 0 {
		return &InsufficientFundsError{
			PlayerID: p.ID,
			Name:     p.Name,
			Balance:  p.Money,
			Amount:   -delta,
		}
	}
	p.Money += delta
	return nil
}

// Credit adds a non-negative amount to the player balance. It only fails
// when the balance cannot hold the result.
func (p *Player) Credit(amount int64) error {
	if !p.canReceive(amount) {
		return ErrBalanceOverflow
	}
	p.Money += amount
	return nil
}

func (p *Player) canReceive(amount int64) bool {
	return p.Money <= math.MaxInt64-amount
}

func (p Player) clone() Player {
	c := p
	c.Lands = make([]string, len(p.Lands))
	copy(c.Lands, p.Lands)
	return c
}
