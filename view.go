package main

import (
	"math"

	"github.com/Rhymond/go-money"
	"github.com/TruongV2905/billionaire-boardgame/core"
)

type playerView struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Money   int64  `json:"money"`
	Display string `json:"display"`
	Lands   int    `json:"lands"`
}

type ledgerView struct {
	SessionID string       `json:"sessionId"`
	Players   []playerView `json:"players"`
}

// formatMoney renders a whole amount of currency units, e.g. "$1,500.00".
// Amounts too large to be expressed in minor units are rendered without
// the fractional part.
func formatMoney(amount int64, currency string) string {
	cur := *money.New(0, currency).Currency()
	minor := amount
	for i := 0; i < cur.Fraction; i++ {
		if minor > math.MaxInt64/10 || minor < math.MinInt64/10 {
			f := cur.Formatter()
			f.Fraction = 0
			return f.Format(amount)
		}
		minor *= 10
	}
	return cur.Formatter().Format(minor)
}

func newPlayerView(p core.Player, currency string) playerView {
	return playerView{
		ID:      p.ID,
		Name:    p.Name,
		Money:   p.Money,
		Display: formatMoney(p.Money, currency),
		Lands:   len(p.Lands),
	}
}

func newLedgerView(l *core.Ledger, currency string) ledgerView {
	ps := l.Snapshot()
	v := ledgerView{
		SessionID: l.SessionID(),
		Players:   make([]playerView, len(ps)),
	}
	for i, p := range ps {
		v.Players[i] = newPlayerView(p, currency)
	}
	return v
}
