// Package dice implements the two-die totals game.
package dice

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"chat-casino-bot/internal/game"
)

// DefaultMaxBet is the maximum allowed bet for the dice game.
const DefaultMaxBet = 1000

// Errors for the dice game.
var (
	ErrInvalidBet = errors.New("bet amount must be positive")
	ErrBetTooHigh = errors.New("bet exceeds maximum allowed")
)

// Dice implements the outcome game for two-die totals.
type Dice struct {
	maxBet int64
}

// Config holds configuration for the dice game.
type Config struct {
	MaxBet int64
}

// New creates a new dice game with the given configuration.
func New(cfg *Config) *Dice {
	maxBet := int64(DefaultMaxBet)
	if cfg != nil && cfg.MaxBet > 0 {
		maxBet = cfg.MaxBet
	}
	return &Dice{maxBet: maxBet}
}

// Name returns the game's display name.
func (d *Dice) Name() string {
	return "Dice"
}

// Command returns the command that triggers this game.
func (d *Dice) Command() string {
	return "dice"
}

// Description returns a brief description of the game.
func (d *Dice) Description() string {
	return "Roll two dice: 2-6 loses, 7 pushes, 8-11 wins even money, 12 pays double."
}

// FixedBet returns 0: the stake comes from the command arguments.
func (d *Dice) FixedBet() int64 {
	return 0
}

// ValidateBet checks the stake.
func (d *Dice) ValidateBet(bet int64, args []string) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if bet > d.maxBet {
		return fmt.Errorf("%w: max bet is %d", ErrBetTooHigh, d.maxBet)
	}
	return nil
}

// Play rolls the dice and settles the bet.
func (d *Dice) Play(ctx context.Context, username string, bet int64, args []string) (*game.Outcome, error) {
	if err := d.ValidateBet(bet, args); err != nil {
		return nil, err
	}

	die1 := rand.Intn(6) + 1
	die2 := rand.Intn(6) + 1
	total := die1 + die2
	payout := CalculatePayout(die1, die2, bet)

	var message string
	switch {
	case payout > bet:
		message = fmt.Sprintf("Dice: %d + %d = %d. Jackpot! You won %d coins!", die1, die2, total, payout)
	case payout > 0:
		message = fmt.Sprintf("Dice: %d + %d = %d. You won %d coins!", die1, die2, total, payout)
	case payout == 0:
		message = fmt.Sprintf("Dice: %d + %d = %d. Push, your bet is returned.", die1, die2, total)
	default:
		message = fmt.Sprintf("Dice: %d + %d = %d. You lost %d coins.", die1, die2, total, -payout)
	}

	return &game.Outcome{
		Payout:  payout,
		Message: message,
		Details: map[string]any{
			"die1":  die1,
			"die2":  die2,
			"total": total,
			"bet":   bet,
		},
	}, nil
}

// CalculatePayout settles a roll. The returned amount is the net balance
// change:
//   - total in [2,6]: -bet
//   - total 7: 0 (push)
//   - total in [8,11]: +bet
//   - total 12: +2x the bet
func CalculatePayout(die1, die2 int, bet int64) int64 {
	total := die1 + die2
	switch {
	case total <= 6:
		return -bet
	case total == 7:
		return 0
	case total <= 11:
		return bet
	default:
		return 2 * bet
	}
}
