package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// Bet validation errors.
var (
	ErrInvalidFormat       = errors.New("bet amount is not a number")
	ErrNonPositive         = errors.New("bet amount must be positive")
	ErrBetBelowMinimum     = errors.New("bet is below the minimum")
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// BetValidator parses raw bet amounts and checks them against the player's
// balance. It never mutates anything; the caller performs the debit.
type BetValidator struct {
	balances BalanceStore
}

// NewBetValidator creates a new BetValidator instance.
func NewBetValidator(balances BalanceStore) *BetValidator {
	return &BetValidator{balances: balances}
}

// Parse converts a raw amount to a positive integer.
func (v *BetValidator) Parse(raw string) (int64, error) {
	amount, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, ErrInvalidFormat
	}
	if amount <= 0 {
		return 0, ErrNonPositive
	}
	return amount, nil
}

// Validate parses a raw amount and checks it against the player's balance
// and the game's minimum bet (0 = no minimum).
func (v *BetValidator) Validate(ctx context.Context, username, raw string, minBet int64) (int64, error) {
	amount, err := v.Parse(raw)
	if err != nil {
		return 0, err
	}
	if err := v.CheckFunds(ctx, username, amount, minBet); err != nil {
		return 0, err
	}
	return amount, nil
}

// CheckFunds verifies an already-parsed amount against the balance and the
// minimum bet.
func (v *BetValidator) CheckFunds(ctx context.Context, username string, amount, minBet int64) error {
	if amount <= 0 {
		return ErrNonPositive
	}
	if minBet > 0 && amount < minBet {
		return fmt.Errorf("%w: minimum is %d", ErrBetBelowMinimum, minBet)
	}

	user, err := v.balances.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if user.Balance < amount {
		return ErrInsufficientBalance
	}
	return nil
}
