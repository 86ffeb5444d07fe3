package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerAddBalance(t *testing.T) {
	tests := []struct {
		msg   string
		delta int64
		in    Player
		out   Player
		err   error
	}{
		{
			msg:   "identity operation",
			delta: 0,
			in:    Player{},
			out:   Player{},
		},
		{
			msg:   "credit",
			delta: 10,
			in:    Player{Money: 100},
			out:   Player{Money: 110},
		},
		{
			msg:   "debit",
			delta: -10,
			in:    Player{Money: 100},
			out:   Player{Money: 90},
		},
		{
			msg:   "debit everything",
			delta: -100,
			in:    Player{Money: 100},
			out:   Player{Money: 0},
		},
		{
			msg:   "negative balance",
			delta: -110,
			in:    Player{ID: 2, Name: "B", Money: 100},
			out:   Player{ID: 2, Name: "B", Money: 100},
			err: &InsufficientFundsError{
				PlayerID: 2,
				Name:     "B",
				Balance:  100,
				Amount:   110,
			},
		},
	}

	for _, test := range tests {
		err := test.in.AddBalance(test.delta)
		assert.Equal(t, test.err, err, test.msg)
		assert.Equal(t, test.out, test.in, test.msg)
	}
}

func TestPlayerCredit(t *testing.T) {
	tests := []struct {
		msg    string
		amount int64
		in     Player
		out    Player
		err    error
	}{
		{
			msg:    "credit",
			amount: 50,
			in:     Player{Money: 100},
			out:    Player{Money: 150},
		},
		{
			msg:    "credit to the limit",
			amount: 1,
			in:     Player{Money: math.MaxInt64 - 1},
			out:    Player{Money: math.MaxInt64},
		},
		{
			msg:    "overflow",
			amount: 1,
			in:     Player{Money: math.MaxInt64},
			out:    Player{Money: math.MaxInt64},
			err:    ErrBalanceOverflow,
		},
	}

	for _, test := range tests {
		err := test.in.Credit(test.amount)
		assert.Equal(t, test.err, err, test.msg)
		assert.Equal(t, test.out, test.in, test.msg)
	}
}

func TestPlayerClone(t *testing.T) {
	p := Player{ID: 1, Name: "A", Money: 10, Lands: []string{"Hanoi"}}
	c := p.clone()
	c.Lands[0] = "Hue"
	c.Money = 0

	assert.Equal(t, []string{"Hanoi"}, p.Lands)
	assert.Equal(t, int64(10), p.Money)
}

func TestErrorsMatchSentinels(t *testing.T) {
	assert.ErrorIs(t, &NotFoundError{PlayerID: 3}, ErrPlayerNotFound)
	assert.ErrorIs(t, &InsufficientFundsError{}, ErrInsufficientFunds)
	assert.NotErrorIs(t, &NotFoundError{}, ErrInsufficientFunds)
	assert.EqualError(t, &NotFoundError{PlayerID: 3}, "player 3 not found")
	assert.EqualError(t,
		&InsufficientFundsError{Name: "B", Balance: 1500, Amount: 2000},
		"B has 1500, cannot pay 2000: not enough money")
}
