package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-casino-bot/internal/game"
	"chat-casino-bot/internal/game/blackjack"
	"chat-casino-bot/internal/game/card"
	"chat-casino-bot/internal/game/cardgame"
	"chat-casino-bot/internal/game/dice"
	"chat-casino-bot/internal/game/mines"
	"chat-casino-bot/internal/game/sports"
	"chat-casino-bot/internal/model"
	"chat-casino-bot/internal/repository"
	"chat-casino-bot/internal/session"
)

func handOf(names ...string) []card.Card {
	out := make([]card.Card, len(names))
	for i, n := range names {
		c, ok := card.Parse(n)
		if !ok {
			panic("bad card name " + n)
		}
		out[i] = c
	}
	return out
}

// In-memory fakes for the persistence interfaces. They mirror the
// repository semantics: conditional adjust, SETNX-style save.

type fakeBalances struct {
	users map[string]*model.User
}

func newFakeBalances() *fakeBalances {
	return &fakeBalances{users: make(map[string]*model.User)}
}

func (f *fakeBalances) GetOrCreate(ctx context.Context, username string, startingBalance int64) (*model.User, bool, error) {
	if u, ok := f.users[username]; ok {
		return u, false, nil
	}
	u := &model.User{Username: username, Balance: startingBalance}
	f.users[username] = u
	return u, true, nil
}

func (f *fakeBalances) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (f *fakeBalances) AdjustBalance(ctx context.Context, username string, delta int64) (*model.User, error) {
	u, ok := f.users[username]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	if u.Balance+delta < 0 {
		return nil, repository.ErrInsufficientFunds
	}
	u.Balance += delta
	return u, nil
}

type fakeSessions struct {
	data      map[string][]byte
	deleteErr error // returned by the next Delete, then cleared
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{data: make(map[string][]byte)}
}

func sessionKey(game, username string) string {
	return game + ":" + username
}

func (f *fakeSessions) Get(ctx context.Context, game, username string, dest any) (bool, error) {
	data, ok := f.data[sessionKey(game, username)]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (f *fakeSessions) Save(ctx context.Context, game, username string, sess any) error {
	key := sessionKey(game, username)
	if _, ok := f.data[key]; ok {
		return session.ErrSessionExists
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	f.data[key] = data
	return nil
}

func (f *fakeSessions) Update(ctx context.Context, game, username string, sess any) error {
	key := sessionKey(game, username)
	if _, ok := f.data[key]; !ok {
		return session.ErrNoSession
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	f.data[key] = data
	return nil
}

func (f *fakeSessions) Delete(ctx context.Context, game, username string) error {
	if f.deleteErr != nil {
		err := f.deleteErr
		f.deleteErr = nil
		return err
	}
	delete(f.data, sessionKey(game, username))
	return nil
}

type fakeHistory struct {
	recs []*model.HistoryRecord
}

func (f *fakeHistory) Append(ctx context.Context, rec *model.HistoryRecord) (*model.HistoryRecord, error) {
	rec.ID = int64(len(f.recs) + 1)
	rec.CreatedAt = time.Now()
	f.recs = append(f.recs, rec)
	return rec, nil
}

type fakeBetStore struct {
	bets   []*model.SportsBet
	nextID int
}

func (f *fakeBetStore) Create(ctx context.Context, username, matchID, side string, stake int64, odds float64) (*model.SportsBet, error) {
	f.nextID++
	bet := &model.SportsBet{
		ID: fmt.Sprintf("bet-%d", f.nextID), Username: username, MatchID: matchID,
		Side: side, Stake: stake, Odds: odds, CreatedAt: time.Now(),
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

type fixture struct {
	coordinator *SettlementCoordinator
	balances    *fakeBalances
	sessions    *fakeSessions
	history     *fakeHistory
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	balances := newFakeBalances()
	sessions := newFakeSessions()
	history := &fakeHistory{}

	registry := game.NewRegistry()
	require.NoError(t, registry.Register(dice.New(nil)))

	sportsEngine := sports.New(&fakeBetStore{}, balances, nil)

	coordinator := NewSettlementCoordinator(
		balances, sessions, history, registry, sportsEngine,
		CoordinatorConfig{StartingBalance: 1000, MinesMinBet: 10, BlackjackMinBet: 10, CardsMinBet: 10},
		zerolog.Nop(),
	)
	return &fixture{coordinator: coordinator, balances: balances, sessions: sessions, history: history}
}

func (f *fixture) balance(username string) int64 {
	if u, ok := f.balances.users[username]; ok {
		return u.Balance
	}
	return 0
}

func TestHandleCommand_UnknownGame(t *testing.T) {
	f := newFixture(t)
	_, err := f.coordinator.HandleCommand(context.Background(), "alice", "poker", []string{"100"})
	assert.ErrorIs(t, err, ErrUnknownGame)
}

func TestHandleCommand_CreatesUserLazily(t *testing.T) {
	f := newFixture(t)
	_, err := f.coordinator.HandleCommand(context.Background(), "alice", model.GameDice, []string{"100"})
	require.NoError(t, err)
	assert.Contains(t, f.balances.users, "alice")
}

func TestOutcomeGame_BalanceMatchesPayout(t *testing.T) {
	f := newFixture(t)
	result, err := f.coordinator.HandleCommand(context.Background(), "alice", model.GameDice, []string{"100"})
	require.NoError(t, err)

	assert.Equal(t, int64(1000)+result.Payout, result.NewBalance)
	assert.Equal(t, result.NewBalance, f.balance("alice"))
	require.Len(t, f.history.recs, 1)
	assert.Equal(t, result.Payout, f.history.recs[0].Amount)
}

func TestOutcomeGame_RejectionMovesNoCoins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// Prime the account.
	_, err := f.coordinator.HandleCommand(ctx, "alice", model.GameDice, []string{"100"})
	require.NoError(t, err)
	before := f.balance("alice")
	records := len(f.history.recs)

	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameDice, []string{"999999999"})
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameDice, []string{"abc"})
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameDice, []string{"-5"})
	assert.ErrorIs(t, err, ErrNonPositive)

	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameDice, nil)
	assert.ErrorIs(t, err, ErrMissingArgument)

	assert.Equal(t, before, f.balance("alice"), "rejections must not move coins")
	assert.Len(t, f.history.recs, records, "rejections must not be recorded")
}

func TestMines_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.coordinator.HandleCommand(ctx, "alice", model.GameMines, []string{"start", "100", "3"})
	require.NoError(t, err)
	assert.Equal(t, int64(900), result.NewBalance)

	// A second start while the game runs is rejected.
	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameMines, []string{"start", "50", "3"})
	assert.ErrorIs(t, err, ErrGameInProgress)
	assert.Equal(t, int64(900), f.balance("alice"))

	// Immediate cashout refunds the stake at the 1.0 floor multiplier.
	result, err = f.coordinator.HandleCommand(ctx, "alice", model.GameMines, []string{"cashout"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.Payout)
	assert.Equal(t, int64(1000), result.NewBalance)

	// Re-invoking cashout after settlement is a state error, never a
	// double pay.
	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameMines, []string{"cashout"})
	assert.ErrorIs(t, err, ErrNoActiveGame)
	assert.Equal(t, int64(1000), f.balance("alice"))
}

func TestMines_BombEndsGame(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coordinator.HandleCommand(ctx, "alice", model.GameMines, []string{"start", "100", "5"})
	require.NoError(t, err)

	// Read the stored board to aim at a bomb deliberately.
	var s mines.Session
	found, err := f.sessions.Get(ctx, model.GameMines, "alice", &s)
	require.NoError(t, err)
	require.True(t, found)
	require.NotEmpty(t, s.Bombs)

	result, err := f.coordinator.HandleCommand(ctx, "alice", model.GameMines,
		[]string{"reveal", fmt.Sprint(s.Bombs[0])})
	require.NoError(t, err)
	assert.Equal(t, true, result.Details["bomb"])
	assert.Equal(t, int64(900), result.NewBalance, "stake is gone")

	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameMines, []string{"reveal", "0"})
	assert.ErrorIs(t, err, ErrNoActiveGame)
}

func TestMines_StartValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coordinator.HandleCommand(ctx, "alice", model.GameMines, []string{"start", "100", "25"})
	assert.ErrorIs(t, err, mines.ErrInvalidBombCount)

	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameMines, []string{"start", "5", "3"})
	assert.ErrorIs(t, err, ErrBetBelowMinimum)

	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameMines, []string{"launch"})
	assert.ErrorIs(t, err, ErrUnknownAction)

	assert.Equal(t, int64(1000), f.balance("alice"))
	assert.Empty(t, f.sessions.data)
}

// A settlement that fails at the session store must abort before any
// credit, so the retried command pays exactly once.
func TestMines_FailedSettlementNeverPaysTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coordinator.HandleCommand(ctx, "alice", model.GameMines, []string{"start", "100", "3"})
	require.NoError(t, err)
	require.Equal(t, int64(900), f.balance("alice"))

	f.sessions.deleteErr = errors.New("session store unavailable")
	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameMines, []string{"cashout"})
	require.Error(t, err)
	assert.Equal(t, int64(900), f.balance("alice"), "failed settlement must not credit")

	result, err := f.coordinator.HandleCommand(ctx, "alice", model.GameMines, []string{"cashout"})
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.Payout)
	assert.Equal(t, int64(1000), f.balance("alice"))

	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameMines, []string{"cashout"})
	assert.ErrorIs(t, err, ErrNoActiveGame)
	assert.Equal(t, int64(1000), f.balance("alice"))
}

func TestCards_FailedSettlementNeverPaysTwice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.coordinator.HandleCommand(ctx, "alice", model.GameCards, []string{"start", "100"})
	require.NoError(t, err)

	f.sessions.deleteErr = errors.New("session store unavailable")
	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameCards, []string{"stand"})
	require.Error(t, err)
	assert.Equal(t, int64(900), f.balance("alice"), "failed settlement must not credit")

	result, err := f.coordinator.HandleCommand(ctx, "alice", model.GameCards, []string{"stand"})
	require.NoError(t, err)
	assert.Equal(t, int64(900)+result.Payout, f.balance("alice"))
	assert.Empty(t, f.sessions.data)
}

func TestBlackjack_PlaysToSettlement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.coordinator.HandleCommand(ctx, "alice", model.GameBlackjack, []string{"start", "100"})
	require.NoError(t, err)

	// A dealt 21 settles immediately; otherwise stand to finish.
	if _, settled := result.Details["total_payout"]; !settled {
		for {
			result, err = f.coordinator.HandleCommand(ctx, "alice", model.GameBlackjack, []string{"stand"})
			require.NoError(t, err)
			if _, done := result.Details["total_payout"]; done {
				break
			}
		}
	}

	assert.Empty(t, f.sessions.data, "session removed on settlement")
	assert.GreaterOrEqual(t, f.balance("alice"), int64(900))

	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameBlackjack, []string{"hit"})
	assert.ErrorIs(t, err, ErrNoActiveGame)
}

// Double and split are checked for legality before the second stake is
// debited, so an illegal move never moves coins.
func TestBlackjack_RejectedDoubleOrSplitMovesNoCoins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.balances.users["alice"] = &model.User{Username: "alice", Balance: 1000}

	// Three cards: neither double nor split is legal.
	s := &blackjack.Session{
		Username:   "alice",
		Bet:        100,
		Player:     handOf("2♠", "3♥", "9♦"),
		Dealer:     handOf("K♠", "5♣"),
		Deck:       handOf("4♠", "4♥"),
		ActiveHand: blackjack.HandMain,
		Active:     true,
	}
	require.NoError(t, f.sessions.Save(ctx, model.GameBlackjack, "alice", s))

	_, err := f.coordinator.HandleCommand(ctx, "alice", model.GameBlackjack, []string{"double"})
	assert.ErrorIs(t, err, blackjack.ErrCannotDouble)

	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameBlackjack, []string{"split"})
	assert.ErrorIs(t, err, blackjack.ErrCannotSplit)

	assert.Equal(t, int64(1000), f.balance("alice"), "rejected moves never touch the ledger")
}

func TestCards_Lifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.coordinator.HandleCommand(ctx, "alice", model.GameCards, []string{"start", "100"})
	require.NoError(t, err)
	assert.Equal(t, int64(900), result.NewBalance)

	var s cardgame.Session
	found, err := f.sessions.Get(ctx, model.GameCards, "alice", &s)
	require.NoError(t, err)
	require.True(t, found)
	require.Len(t, s.Offered, 3)

	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameCards,
		[]string{"joker", fmt.Sprint(s.Offered[0])})
	require.NoError(t, err)

	result, err = f.coordinator.HandleCommand(ctx, "alice", model.GameCards, []string{"stand"})
	require.NoError(t, err)
	assert.Equal(t, int64(900)+result.Payout, result.NewBalance)
	assert.Empty(t, f.sessions.data)

	_, err = f.coordinator.HandleCommand(ctx, "alice", model.GameCards, []string{"stand"})
	assert.ErrorIs(t, err, ErrNoActiveGame)
}

func TestSports_BetAndSettle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.coordinator.HandleCommand(ctx, "alice", model.GameSports,
		[]string{"bet", "match-1", "home", "100", "1.8"})
	require.NoError(t, err)
	assert.Equal(t, int64(900), result.NewBalance)

	result, err = f.coordinator.HandleCommand(ctx, "admin", model.GameSports,
		[]string{"settle", "match-1", "2", "0"})
	require.NoError(t, err)
	assert.Equal(t, int64(180), result.Payout)
	assert.Equal(t, int64(1080), f.balance("alice"))

	// Settling again pays nothing.
	result, err = f.coordinator.HandleCommand(ctx, "admin", model.GameSports,
		[]string{"settle", "match-1", "2", "0"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.Payout)
	assert.Equal(t, int64(1080), f.balance("alice"))
}
