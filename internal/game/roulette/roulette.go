// Package roulette implements the 13-pocket roulette wheel.
package roulette

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"

	"chat-casino-bot/internal/game"
)

// WheelSize is the number of pockets. Pocket 0 is green, odd pockets are
// red, even non-zero pockets are black.
const WheelSize = 13

// Color bet targets.
const (
	ColorRed   = "red"
	ColorBlack = "black"
	ColorGreen = "green"
)

// Errors for the roulette game.
var (
	ErrInvalidBet    = errors.New("bet amount must be positive")
	ErrMissingTarget = errors.New("a number or color to bet on is required")
	ErrInvalidTarget = errors.New("target must be a number in [0,12] or red/black/green")
)

// Roulette implements the outcome game for the 13-pocket wheel.
type Roulette struct{}

// New creates the roulette game.
func New() *Roulette {
	return &Roulette{}
}

// Name returns the game's display name.
func (r *Roulette) Name() string {
	return "Roulette"
}

// Command returns the command that triggers this game.
func (r *Roulette) Command() string {
	return "roulette"
}

// Description returns a brief description of the game.
func (r *Roulette) Description() string {
	return "Bet on a number (0-12) or a color. Numbers and green pay 12x, colors pay even money."
}

// FixedBet returns 0: the stake comes from the command arguments.
func (r *Roulette) FixedBet() int64 {
	return 0
}

// ValidateBet checks the stake and the bet target.
func (r *Roulette) ValidateBet(bet int64, args []string) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if len(args) == 0 {
		return ErrMissingTarget
	}
	_, err := parseTarget(args[0])
	return err
}

// Play spins the wheel and settles the bet.
func (r *Roulette) Play(ctx context.Context, username string, bet int64, args []string) (*game.Outcome, error) {
	if err := r.ValidateBet(bet, args); err != nil {
		return nil, err
	}
	target, err := parseTarget(args[0])
	if err != nil {
		return nil, err
	}

	pocket := rand.Intn(WheelSize)
	payout := CalculatePayout(target, pocket, bet)

	var message string
	switch {
	case payout > bet:
		message = fmt.Sprintf("The ball lands on %d (%s). Straight hit, you win %d coins!", pocket, PocketColor(pocket), payout)
	case payout > 0:
		message = fmt.Sprintf("The ball lands on %d (%s). Color hit, you win %d coins!", pocket, PocketColor(pocket), payout)
	default:
		message = fmt.Sprintf("The ball lands on %d (%s). You lost %d coins.", pocket, PocketColor(pocket), -payout)
	}

	return &game.Outcome{
		Payout:  payout,
		Message: message,
		Details: map[string]any{
			"pocket": pocket,
			"color":  PocketColor(pocket),
			"target": args[0],
			"bet":    bet,
		},
	}, nil
}

// target is a parsed bet target: either a pocket number or a color.
type target struct {
	number int // -1 when a color bet
	color  string
}

func parseTarget(raw string) (target, error) {
	switch raw {
	case ColorRed, ColorBlack, ColorGreen:
		return target{number: -1, color: raw}, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 || n >= WheelSize {
		return target{}, ErrInvalidTarget
	}
	return target{number: n}, nil
}

// PocketColor returns the color of a pocket.
func PocketColor(pocket int) string {
	switch {
	case pocket == 0:
		return ColorGreen
	case pocket%2 == 1:
		return ColorRed
	default:
		return ColorBlack
	}
}

// CalculatePayout settles a target against the drawn pocket. The returned
// amount is the net balance change:
//   - exact number hit, or a green bet on pocket 0: +12x the bet
//   - correct color: +1x the bet (even money)
//   - anything else, including any color bet on pocket 0: -bet
func CalculatePayout(t target, pocket int, bet int64) int64 {
	if t.number >= 0 {
		if t.number == pocket {
			return 12 * bet
		}
		return -bet
	}
	if t.color == ColorGreen {
		if pocket == 0 {
			return 12 * bet
		}
		return -bet
	}
	if pocket != 0 && t.color == PocketColor(pocket) {
		return bet
	}
	return -bet
}
