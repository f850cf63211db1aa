// Package lotto implements the 6-of-49 lottery draw.
package lotto

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"

	"chat-casino-bot/internal/game"
)

// Draw parameters.
const (
	Picks     = 6
	MaxNumber = 49
)

// Defaults when no configuration is supplied.
const (
	DefaultTicketCost = 50
	DefaultPrizePool  = 1_000_000
)

// poolJitter is the relative spread applied to the configured prize pool
// on every draw.
const poolJitter = 0.1

// Errors for the lotto game.
var (
	ErrWrongPickCount   = errors.New("exactly six numbers are required")
	ErrNumberOutOfRange = errors.New("numbers must be between 1 and 49")
	ErrDuplicateNumber  = errors.New("numbers must be distinct")
	ErrInvalidNumber    = errors.New("numbers must be integers")
)

// Lotto implements the outcome game for the lottery. A ticket has a fixed
// cost; the stake never comes from the command arguments.
type Lotto struct {
	ticketCost int64
	prizePool  int64
}

// Config holds configuration for the lotto game.
type Config struct {
	TicketCost int64
	PrizePool  int64
}

// New creates a new lotto game with the given configuration.
func New(cfg *Config) *Lotto {
	ticketCost := int64(DefaultTicketCost)
	prizePool := int64(DefaultPrizePool)
	if cfg != nil {
		if cfg.TicketCost > 0 {
			ticketCost = cfg.TicketCost
		}
		if cfg.PrizePool > 0 {
			prizePool = cfg.PrizePool
		}
	}
	return &Lotto{ticketCost: ticketCost, prizePool: prizePool}
}

// Name returns the game's display name.
func (l *Lotto) Name() string {
	return "Lotto"
}

// Command returns the command that triggers this game.
func (l *Lotto) Command() string {
	return "lotto"
}

// Description returns a brief description of the game.
func (l *Lotto) Description() string {
	return "Pick six numbers from 1 to 49. More matches, bigger prizes, up to the whole pool."
}

// FixedBet returns the ticket cost.
func (l *Lotto) FixedBet() int64 {
	return l.ticketCost
}

// ValidateBet checks the picked numbers. The stake is the fixed ticket
// cost, so only the picks can be invalid.
func (l *Lotto) ValidateBet(bet int64, args []string) error {
	_, err := ParsePicks(args)
	return err
}

// Play draws six winning numbers and settles the ticket.
func (l *Lotto) Play(ctx context.Context, username string, bet int64, args []string) (*game.Outcome, error) {
	picks, err := ParsePicks(args)
	if err != nil {
		return nil, err
	}

	drawn := rand.Perm(MaxNumber)[:Picks]
	for i := range drawn {
		drawn[i]++ // Perm yields [0,48]
	}
	sort.Ints(drawn)

	matches := CountMatches(picks, drawn)
	jitter := 1 + poolJitter*(2*rand.Float64()-1)
	pool := int64(math.Round(float64(l.prizePool) * jitter))
	winnings := Winnings(matches, bet, pool)

	var message string
	switch {
	case matches == Picks:
		message = fmt.Sprintf("Draw: %v. All six! You take the whole pool: %d coins!", drawn, winnings)
	case winnings > 0:
		message = fmt.Sprintf("Draw: %v. %d matches, you win %d coins!", drawn, matches, winnings)
	default:
		message = fmt.Sprintf("Draw: %v. %d matches, no prize.", drawn, matches)
	}

	return &game.Outcome{
		Payout:  winnings - bet,
		Message: message,
		Details: map[string]any{
			"picks":   picks,
			"drawn":   drawn,
			"matches": matches,
			"ticket":  bet,
		},
	}, nil
}

// ParsePicks parses and validates six distinct numbers in [1,49].
func ParsePicks(args []string) ([]int, error) {
	if len(args) != Picks {
		return nil, ErrWrongPickCount
	}

	picks := make([]int, 0, Picks)
	seen := make(map[int]bool, Picks)
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, ErrInvalidNumber
		}
		if n < 1 || n > MaxNumber {
			return nil, ErrNumberOutOfRange
		}
		if seen[n] {
			return nil, ErrDuplicateNumber
		}
		seen[n] = true
		picks = append(picks, n)
	}
	return picks, nil
}

// CountMatches counts how many picked numbers appear in the draw.
func CountMatches(picks, drawn []int) int {
	inDraw := make(map[int]bool, len(drawn))
	for _, n := range drawn {
		inDraw[n] = true
	}
	matches := 0
	for _, n := range picks {
		if inDraw[n] {
			matches++
		}
	}
	return matches
}

// Winnings returns the gross prize for a match count. Low match counts pay
// ticket multiples; four or more matches pay a fraction of the prize pool.
func Winnings(matches int, ticket, pool int64) int64 {
	switch matches {
	case 0:
		return 0
	case 1:
		return 2 * ticket
	case 2:
		return 8 * ticket
	case 3:
		return 57 * ticket
	case 4:
		return int64(math.Round(0.005 * float64(pool)))
	case 5:
		return int64(math.Round(0.05 * float64(pool)))
	default:
		return pool
	}
}
