package core

import (
	"errors"
	"fmt"
)

var (
	ErrPlayerNotFound    = errors.New("player not found")
	ErrInsufficientFunds = errors.New("not enough money")
	ErrNegativeAmount    = errors.New("invalid amount, must not be negative")
	ErrDuplicatePlayerID = errors.New("duplicate player id")
	ErrNegativeBalance   = errors.New("negative player balance")
	ErrBalanceOverflow   = errors.New("operation would overflow player balance")
)

// NotFoundError is returned when an operation references a player id which
// is not present in the ledger.
type NotFoundError struct {
	PlayerID int
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("player %d not found", e.PlayerID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrPlayerNotFound }

// InsufficientFundsError is returned when a debit or transfer exceeds the
// current balance of the paying player. The ledger is left untouched.
type InsufficientFundsError struct {
	PlayerID int
	Name     string
	Balance  int64
	Amount   int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s has %d, cannot pay %d: %s", e.Name, e.Balance, e.Amount, ErrInsufficientFunds)
}

func (e *InsufficientFundsError) Is(target error) bool { return target == ErrInsufficientFunds }
