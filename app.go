package main

import (
	"database/sql"
	"net/http"
	"strings"
	"sync"

	"github.com/TruongV2905/billionaire-boardgame/core"
	"github.com/TruongV2905/billionaire-boardgame/db"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type apiResponse struct {
	status int
	msg    string
	body   interface{}
}

// application owns the ledger of the running session. Every request holds
// mu for its whole duration, so ledger operations never interleave.
type application struct {
	mu     sync.Mutex
	db     *sql.DB
	conf   config
	ledger *core.Ledger
}

func respOK() *apiResponse                   { return &apiResponse{status: http.StatusNoContent} }
func respBody(body interface{}) *apiResponse { return &apiResponse{status: http.StatusOK, body: body} }
func respConflict(msg string) *apiResponse   { return &apiResponse{status: http.StatusConflict, msg: msg} }
func respNotFound(msg string) *apiResponse   { return &apiResponse{status: http.StatusNotFound, msg: msg} }
func respBadRequest(msg string) *apiResponse {
	return &apiResponse{status: http.StatusBadRequest, msg: msg}
}

// respLedgerError translates a rejected ledger operation into a user facing
// response, nil if err is nil.
func respLedgerError(err error) *apiResponse {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, core.ErrPlayerNotFound):
		return respNotFound(err.Error())
	case errors.Is(err, core.ErrInsufficientFunds), errors.Is(err, core.ErrBalanceOverflow):
		return respConflict(err.Error())
	default:
		return respBadRequest(err.Error())
	}
}

// newApplication restores the session saved under conf.StorageKey, if any.
func newApplication(dbh *sql.DB, conf config) (*application, error) {
	ledger := core.NewLedger()
	snap, err := db.SessionGet(dbh, conf.StorageKey)
	switch err {
	case nil:
		if err := ledger.Restore(snap.SessionID, snap.Players); err != nil {
			return nil, errors.WithMessage(err, "restoring ledger")
		}
		logrus.WithFields(logrus.Fields{
			"sessionID": snap.SessionID,
			"players":   len(snap.Players),
			"savedAt":   snap.SavedAt,
		}).Info("session restored")
	case db.ErrNotFound:
		// OK, no session yet
	default:
		return nil, errors.WithMessage(err, "getting session")
	}
	return &application{
		db:     dbh,
		conf:   conf,
		ledger: ledger,
	}, nil
}

// apply runs op on a copy of the ledger and swaps it in once the copy is
// saved. Rejected operations and storage failures leave the ledger as is.
func (a *application) apply(op func(*core.Ledger) error) (*apiResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	next := a.ledger.Clone()
	if resp := respLedgerError(op(next)); resp != nil {
		return resp, nil
	}
	if err := a.save(next); err != nil {
		return nil, err
	}
	a.ledger = next
	return respOK(), nil
}

func (a *application) save(l *core.Ledger) error {
	if err := db.SessionSave(a.db, a.conf.StorageKey, l.SessionID(), l.Snapshot()); err != nil {
		return errors.WithMessage(err, "saving session")
	}
	return nil
}

func (a *application) start(names []string, startingMoney int64) (*apiResponse, error) {
	resp, err := a.apply(func(l *core.Ledger) error {
		l.Initialize(names, startingMoney)
		return nil
	})
	if err == nil {
		logrus.WithFields(logrus.Fields{
			"players":       len(names),
			"startingMoney": startingMoney,
		}).Info("session started")
	}
	return resp, err
}

func (a *application) credit(playerID int, amount int64) (*apiResponse, error) {
	return a.apply(func(l *core.Ledger) error {
		return l.CreditFromBank(playerID, amount)
	})
}

func (a *application) passGo(playerID int) (*apiResponse, error) {
	return a.apply(func(l *core.Ledger) error {
		return l.PassGo(playerID, a.conf.PassGoBonus)
	})
}

func (a *application) debit(playerID int, amount int64) (*apiResponse, error) {
	return a.apply(func(l *core.Ledger) error {
		return l.Debit(playerID, amount)
	})
}

func (a *application) setMoney(playerID int, money int64) (*apiResponse, error) {
	return a.apply(func(l *core.Ledger) error {
		return l.SetMoney(playerID, money)
	})
}

func (a *application) transfer(fromID, toID int, amount int64) (*apiResponse, error) {
	return a.apply(func(l *core.Ledger) error {
		return l.Transfer(fromID, toID, amount)
	})
}

type collectResult struct {
	Skipped []string `json:"skipped"`
	Warning string   `json:"warning,omitempty"`
}

func (a *application) collect(toID int, amountPerPlayer int64) (*apiResponse, error) {
	var skipped []string
	resp, err := a.apply(func(l *core.Ledger) error {
		var err error
		skipped, err = l.TransferAllToOne(toID, amountPerPlayer)
		return err
	})
	if err != nil || resp.status != http.StatusNoContent {
		return resp, err
	}
	result := collectResult{Skipped: skipped}
	if len(skipped) > 0 {
		result.Warning = "not enough money: " + strings.Join(skipped, ", ")
	}
	return respBody(result), nil
}

func (a *application) bankrupt(playerID int) (*apiResponse, error) {
	resp, err := a.apply(func(l *core.Ledger) error {
		return l.Remove(playerID)
	})
	if err == nil && resp.status == http.StatusNoContent {
		logrus.WithField("playerID", playerID).Info("player went bankrupt")
	}
	return resp, err
}

func (a *application) players() ledgerView {
	a.mu.Lock()
	defer a.mu.Unlock()
	return newLedgerView(a.ledger, a.conf.Currency)
}

func (a *application) player(playerID int) (playerView, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, err := a.ledger.Player(playerID)
	if err != nil {
		return playerView{}, false
	}
	return newPlayerView(p, a.conf.Currency), true
}

// reset forgets the stored session, the next one starts from scratch.
func (a *application) reset() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := db.SessionDelete(a.db, a.conf.StorageKey); err != nil {
		return errors.WithMessage(err, "deleting session")
	}
	a.ledger = core.NewLedger()
	return nil
}
