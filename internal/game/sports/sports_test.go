package sports

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-casino-bot/internal/model"
	"chat-casino-bot/internal/repository"
)

type fakeBetStore struct {
	bets    []*model.SportsBet
	nextID  int
	failIDs map[string]error
}

func (f *fakeBetStore) Create(ctx context.Context, username, matchID, side string, stake int64, odds float64) (*model.SportsBet, error) {
	f.nextID++
	bet := &model.SportsBet{
		ID:        fmt.Sprintf("bet-%d", f.nextID),
		Username:  username,
		MatchID:   matchID,
		Side:      side,
		Stake:     stake,
		Odds:      odds,
		CreatedAt: time.Now(),
	}
	f.bets = append(f.bets, bet)
	return bet, nil
}

func (f *fakeBetStore) ListUnpaidByMatch(ctx context.Context, matchID string) ([]*model.SportsBet, error) {
	var out []*model.SportsBet
	for _, b := range f.bets {
		if b.MatchID == matchID && !b.Paid {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeBetStore) MarkPaid(ctx context.Context, id string) error {
	if err, ok := f.failIDs[id]; ok {
		return err
	}
	for _, b := range f.bets {
		if b.ID == id {
			if b.Paid {
				return repository.ErrBetAlreadyPaid
			}
			b.Paid = true
			return nil
		}
	}
	return repository.ErrBetNotFound
}

type fakeLedger struct {
	balances map[string]int64
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{balances: make(map[string]int64)}
}

func (f *fakeLedger) AdjustBalance(ctx context.Context, username string, delta int64) (*model.User, error) {
	if f.balances[username]+delta < 0 {
		return nil, repository.ErrInsufficientFunds
	}
	f.balances[username] += delta
	return &model.User{Username: username, Balance: f.balances[username]}, nil
}

func newEngine() (*Engine, *fakeBetStore, *fakeLedger) {
	bets := &fakeBetStore{failIDs: make(map[string]error)}
	ledger := newFakeLedger()
	return New(bets, ledger, nil), bets, ledger
}

func TestPlaceBet(t *testing.T) {
	ctx := context.Background()
	e, _, ledger := newEngine()
	ledger.balances["alice"] = 1000

	bet, err := e.PlaceBet(ctx, "alice", "match-1", model.SideHome, 100, 1.8)
	require.NoError(t, err)
	assert.Equal(t, int64(900), ledger.balances["alice"], "stake debited at placement")
	assert.Equal(t, 1.8, bet.Odds, "odds frozen at placement")
	assert.False(t, bet.Paid)
}

func TestPlaceBet_Validation(t *testing.T) {
	ctx := context.Background()
	e, _, ledger := newEngine()
	ledger.balances["alice"] = 1000

	_, err := e.PlaceBet(ctx, "alice", "", model.SideHome, 100, 1.8)
	assert.ErrorIs(t, err, ErrEmptyMatchID)

	_, err = e.PlaceBet(ctx, "alice", "match-1", "middle", 100, 1.8)
	assert.ErrorIs(t, err, ErrInvalidSide)

	_, err = e.PlaceBet(ctx, "alice", "match-1", model.SideHome, DefaultMinStake-1, 1.8)
	assert.ErrorIs(t, err, ErrStakeTooLow)

	_, err = e.PlaceBet(ctx, "alice", "match-1", model.SideHome, 100, 1.0)
	assert.ErrorIs(t, err, ErrInvalidOdds)

	assert.Equal(t, int64(1000), ledger.balances["alice"], "rejections must not move coins")
}

func TestPlaceBet_InsufficientFunds(t *testing.T) {
	ctx := context.Background()
	e, _, ledger := newEngine()
	ledger.balances["alice"] = 50

	_, err := e.PlaceBet(ctx, "alice", "match-1", model.SideHome, 100, 1.8)
	assert.ErrorIs(t, err, repository.ErrInsufficientFunds)
	assert.Equal(t, int64(50), ledger.balances["alice"])
}

func TestWinningSide(t *testing.T) {
	assert.Equal(t, model.SideHome, WinningSide(2, 1))
	assert.Equal(t, model.SideAway, WinningSide(0, 3))
	assert.Equal(t, model.SideDraw, WinningSide(1, 1))
}

func TestWinAmount(t *testing.T) {
	assert.Equal(t, int64(180), WinAmount(100, 1.8))
	assert.Equal(t, int64(333), WinAmount(100, 3.333))
	assert.Equal(t, int64(250), WinAmount(100, 2.5))
}

func TestSettle(t *testing.T) {
	ctx := context.Background()
	e, _, ledger := newEngine()
	ledger.balances["alice"] = 1000
	ledger.balances["bob"] = 1000
	ledger.balances["carol"] = 1000

	_, err := e.PlaceBet(ctx, "alice", "match-1", model.SideHome, 100, 1.8)
	require.NoError(t, err)
	_, err = e.PlaceBet(ctx, "bob", "match-1", model.SideAway, 200, 2.2)
	require.NoError(t, err)
	_, err = e.PlaceBet(ctx, "carol", "match-2", model.SideHome, 100, 1.5)
	require.NoError(t, err)

	report, err := e.Settle(ctx, "match-1", 3, 1)
	require.NoError(t, err)

	assert.Equal(t, model.SideHome, report.WinningSide)
	assert.Equal(t, 2, report.BetsSettled, "both match-1 bets settled")
	require.Len(t, report.Payouts, 1, "only the winning side is paid")
	assert.Equal(t, "alice", report.Payouts[0].Username)
	assert.Equal(t, int64(180), report.Payouts[0].Amount)

	assert.Equal(t, int64(1080), ledger.balances["alice"])
	assert.Equal(t, int64(800), ledger.balances["bob"], "losing stake is gone")
	assert.Equal(t, int64(900), ledger.balances["carol"], "other matches untouched")
}

func TestSettle_Idempotent(t *testing.T) {
	ctx := context.Background()
	e, _, ledger := newEngine()
	ledger.balances["alice"] = 1000

	_, err := e.PlaceBet(ctx, "alice", "match-1", model.SideDraw, 100, 3.0)
	require.NoError(t, err)

	report, err := e.Settle(ctx, "match-1", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(300), report.TotalPaid)
	assert.Equal(t, int64(1200), ledger.balances["alice"])

	// Settling the same match again pays nothing.
	report, err = e.Settle(ctx, "match-1", 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, report.BetsSettled)
	assert.Equal(t, int64(0), report.TotalPaid)
	assert.Equal(t, int64(1200), ledger.balances["alice"])
}

func TestSettle_SkipsBetsPaidByConcurrentRun(t *testing.T) {
	ctx := context.Background()
	e, bets, ledger := newEngine()
	ledger.balances["alice"] = 1000

	bet, err := e.PlaceBet(ctx, "alice", "match-1", model.SideHome, 100, 2.0)
	require.NoError(t, err)

	// Another settle run won the race on this bet.
	bets.failIDs[bet.ID] = repository.ErrBetAlreadyPaid

	report, err := e.Settle(ctx, "match-1", 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, report.BetsSettled)
	assert.Equal(t, int64(900), ledger.balances["alice"], "no double pay")
}
