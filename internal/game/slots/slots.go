// Package slots implements the three-reel slot machine.
package slots

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"chat-casino-bot/internal/game"
)

// DefaultMaxBet is the maximum allowed bet for the slot machine.
const DefaultMaxBet = 100000

// Symbol constants. Higher symbols pay more on a triple.
const (
	SymbolCherry  = 1
	SymbolLemon   = 2
	SymbolGrape   = 3
	SymbolBell    = 4
	SymbolDiamond = 5
	SymbolSeven   = 6
)

// SymbolNames maps symbols to their display form.
var SymbolNames = map[int]string{
	SymbolCherry:  "🍒",
	SymbolLemon:   "🍋",
	SymbolGrape:   "🍇",
	SymbolBell:    "🔔",
	SymbolDiamond: "💎",
	SymbolSeven:   "7️⃣",
}

// tripleMultipliers is the net win multiplier for three of a kind.
var tripleMultipliers = map[int]int64{
	SymbolCherry:  2,
	SymbolLemon:   3,
	SymbolGrape:   4,
	SymbolBell:    5,
	SymbolDiamond: 8,
	SymbolSeven:   10,
}

// Errors for the slot machine.
var (
	ErrInvalidBet = errors.New("bet amount must be positive")
	ErrBetTooHigh = errors.New("bet exceeds maximum allowed")
)

// Slots implements the outcome game for the slot machine.
type Slots struct {
	maxBet int64
}

// Config holds configuration for the slot machine.
type Config struct {
	MaxBet int64
}

// New creates a new slot machine with the given configuration.
func New(cfg *Config) *Slots {
	maxBet := int64(DefaultMaxBet)
	if cfg != nil && cfg.MaxBet > 0 {
		maxBet = cfg.MaxBet
	}
	return &Slots{maxBet: maxBet}
}

// Name returns the game's display name.
func (s *Slots) Name() string {
	return "Slot Machine"
}

// Command returns the command that triggers this game.
func (s *Slots) Command() string {
	return "slots"
}

// Description returns a brief description of the game.
func (s *Slots) Description() string {
	return "Spin three reels: a triple pays the symbol multiplier, two matches push, no match loses."
}

// FixedBet returns 0: the stake comes from the command arguments.
func (s *Slots) FixedBet() int64 {
	return 0
}

// ValidateBet checks the stake.
func (s *Slots) ValidateBet(bet int64, args []string) error {
	if bet <= 0 {
		return ErrInvalidBet
	}
	if bet > s.maxBet {
		return fmt.Errorf("%w: max bet is %d", ErrBetTooHigh, s.maxBet)
	}
	return nil
}

// Play spins the reels and settles the bet.
func (s *Slots) Play(ctx context.Context, username string, bet int64, args []string) (*game.Outcome, error) {
	if err := s.ValidateBet(bet, args); err != nil {
		return nil, err
	}

	left := rand.Intn(SymbolSeven) + 1
	middle := rand.Intn(SymbolSeven) + 1
	right := rand.Intn(SymbolSeven) + 1
	payout := CalculatePayout(left, middle, right, bet)

	display := fmt.Sprintf("%s %s %s", SymbolNames[left], SymbolNames[middle], SymbolNames[right])
	var message string
	switch {
	case payout > 0:
		message = fmt.Sprintf("%s Three of a kind! You won %d coins!", display, payout)
	case payout == 0:
		message = fmt.Sprintf("%s Two matching symbols. Push, your bet is returned.", display)
	default:
		message = fmt.Sprintf("%s No match. You lost %d coins.", display, -payout)
	}

	return &game.Outcome{
		Payout:  payout,
		Message: message,
		Details: map[string]any{
			"left":   left,
			"middle": middle,
			"right":  right,
			"bet":    bet,
		},
	}, nil
}

// CalculatePayout settles a spin. The returned amount is the net balance
// change: a triple pays the symbol's multiplier times the bet, exactly two
// matching symbols push, no match loses the bet.
func CalculatePayout(left, middle, right int, bet int64) int64 {
	if left == middle && middle == right {
		return tripleMultipliers[left] * bet
	}
	if left == middle || middle == right || left == right {
		return 0
	}
	return -bet
}
