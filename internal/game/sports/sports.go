// Package sports implements sports bet placement and match settlement.
// Odds are frozen when the bet is placed; settlement pays each winning bet
// at most once via the conditional paid flag.
package sports

import (
	"context"
	"errors"
	"fmt"
	"math"

	"chat-casino-bot/internal/model"
	"chat-casino-bot/internal/repository"
)

// DefaultMinStake is the minimum stake when none is configured.
const DefaultMinStake = 10

// Errors for sports betting.
var (
	ErrInvalidSide  = errors.New("side must be home, away or draw")
	ErrInvalidOdds  = errors.New("odds must be greater than 1.0")
	ErrStakeTooLow  = errors.New("stake is below the minimum")
	ErrEmptyMatchID = errors.New("match id is required")
)

// BetStore is the subset of the sports bet repository the engine needs.
type BetStore interface {
	Create(ctx context.Context, username, matchID, side string, stake int64, odds float64) (*model.SportsBet, error)
	ListUnpaidByMatch(ctx context.Context, matchID string) ([]*model.SportsBet, error)
	MarkPaid(ctx context.Context, id string) error
}

// Ledger is the subset of the user repository the engine needs.
type Ledger interface {
	AdjustBalance(ctx context.Context, username string, delta int64) (*model.User, error)
}

// Engine places and settles sports bets.
type Engine struct {
	bets     BetStore
	ledger   Ledger
	minStake int64
}

// Config holds configuration for sports betting.
type Config struct {
	MinStake int64
}

// New creates a sports betting engine.
func New(bets BetStore, ledger Ledger, cfg *Config) *Engine {
	minStake := int64(DefaultMinStake)
	if cfg != nil && cfg.MinStake > 0 {
		minStake = cfg.MinStake
	}
	return &Engine{bets: bets, ledger: ledger, minStake: minStake}
}

// Payout is one settled winning bet.
type Payout struct {
	BetID    string
	Username string
	Amount   int64
}

// SettlementReport summarizes one settle run.
type SettlementReport struct {
	MatchID     string
	WinningSide string
	BetsSettled int
	TotalPaid   int64
	Payouts     []Payout
}

// PlaceBet validates the bet, debits the stake, and records the bet with
// the odds frozen as given. The debit is refunded if the bet cannot be
// recorded.
func (e *Engine) PlaceBet(ctx context.Context, username, matchID, side string, stake int64, odds float64) (*model.SportsBet, error) {
	if matchID == "" {
		return nil, ErrEmptyMatchID
	}
	switch side {
	case model.SideHome, model.SideAway, model.SideDraw:
	default:
		return nil, ErrInvalidSide
	}
	if stake < e.minStake {
		return nil, fmt.Errorf("%w: minimum is %d", ErrStakeTooLow, e.minStake)
	}
	if odds <= 1.0 {
		return nil, ErrInvalidOdds
	}

	if _, err := e.ledger.AdjustBalance(ctx, username, -stake); err != nil {
		return nil, err
	}

	bet, err := e.bets.Create(ctx, username, matchID, side, stake, odds)
	if err != nil {
		if _, refundErr := e.ledger.AdjustBalance(ctx, username, stake); refundErr != nil {
			return nil, fmt.Errorf("failed to record bet (refund also failed: %v): %w", refundErr, err)
		}
		return nil, fmt.Errorf("failed to record bet: %w", err)
	}

	return bet, nil
}

// WinningSide maps a final score to the side that won.
func WinningSide(homeScore, awayScore int) string {
	switch {
	case homeScore > awayScore:
		return model.SideHome
	case awayScore > homeScore:
		return model.SideAway
	default:
		return model.SideDraw
	}
}

// WinAmount is the gross payout for a winning bet: stake times the odds
// recorded at placement, rounded to the nearest coin.
func WinAmount(stake int64, odds float64) int64 {
	return int64(math.Round(float64(stake) * odds))
}

// Settle pays out every unpaid bet on the given match. The paid flag is
// flipped before any coins move, so a bet that was already settled by a
// concurrent run is skipped rather than paid twice. Losing bets are marked
// paid with no credit. Settle can be re-run safely after a partial failure.
func (e *Engine) Settle(ctx context.Context, matchID string, homeScore, awayScore int) (*SettlementReport, error) {
	if matchID == "" {
		return nil, ErrEmptyMatchID
	}

	winning := WinningSide(homeScore, awayScore)
	unpaid, err := e.bets.ListUnpaidByMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}

	report := &SettlementReport{MatchID: matchID, WinningSide: winning}
	for _, bet := range unpaid {
		err := e.bets.MarkPaid(ctx, bet.ID)
		if errors.Is(err, repository.ErrBetAlreadyPaid) {
			continue
		}
		if err != nil {
			return report, err
		}
		report.BetsSettled++

		if bet.Side != winning {
			continue
		}

		amount := WinAmount(bet.Stake, bet.Odds)
		if _, err := e.ledger.AdjustBalance(ctx, bet.Username, amount); err != nil {
			return report, fmt.Errorf("failed to credit bet %s: %w", bet.ID, err)
		}
		report.Payouts = append(report.Payouts, Payout{BetID: bet.ID, Username: bet.Username, Amount: amount})
		report.TotalPaid += amount
	}

	return report, nil
}
