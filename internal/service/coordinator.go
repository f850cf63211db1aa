package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"chat-casino-bot/internal/game"
	"chat-casino-bot/internal/game/blackjack"
	"chat-casino-bot/internal/game/card"
	"chat-casino-bot/internal/game/cardgame"
	"chat-casino-bot/internal/game/mines"
	"chat-casino-bot/internal/game/sports"
	"chat-casino-bot/internal/model"
	"chat-casino-bot/internal/pkg/lock"
	"chat-casino-bot/internal/session"
)

// Coordinator errors.
var (
	ErrUnknownGame     = errors.New("unknown game")
	ErrUnknownAction   = errors.New("unknown action")
	ErrNoActiveGame    = errors.New("no active game")
	ErrGameInProgress  = errors.New("a game is already in progress")
	ErrMissingArgument = errors.New("missing argument")
	ErrInvalidScore    = errors.New("scores must be integers")
)

// CoordinatorConfig holds the settlement knobs.
type CoordinatorConfig struct {
	StartingBalance int64
	MinesMinBet     int64
	BlackjackMinBet int64
	CardsMinBet     int64
}

// SettlementCoordinator orchestrates every game command: validate the bet,
// debit the stake, run the engine, credit the payout, persist the session
// and history, and emit a result descriptor for rendering.
//
// All balance and session mutations for a user happen under that user's
// lock, so the validate-debit-play-credit sequence is never interleaved
// with another command for the same user.
type SettlementCoordinator struct {
	balances  BalanceStore
	sessions  SessionStore
	history   HistoryStore
	games     *game.Registry
	sports    *sports.Engine
	validator *BetValidator
	locks     *lock.KeyedLock
	cfg       CoordinatorConfig
	log       zerolog.Logger
}

// NewSettlementCoordinator creates a new SettlementCoordinator instance.
func NewSettlementCoordinator(
	balances BalanceStore,
	sessions SessionStore,
	history HistoryStore,
	games *game.Registry,
	sportsEngine *sports.Engine,
	cfg CoordinatorConfig,
	logger zerolog.Logger,
) *SettlementCoordinator {
	return &SettlementCoordinator{
		balances:  balances,
		sessions:  sessions,
		history:   history,
		games:     games,
		sports:    sportsEngine,
		validator: NewBetValidator(balances),
		locks:     lock.NewKeyedLock(),
		cfg:       cfg,
		log:       logger,
	}
}

// newRand seeds a private generator from the shared one, which is safe for
// concurrent use; the returned generator is not, so it stays call-local.
func newRand() *rand.Rand {
	return rand.New(rand.NewSource(rand.Int63()))
}

// HandleCommand settles one command for one user.
func (c *SettlementCoordinator) HandleCommand(ctx context.Context, username, gameName string, args []string) (*game.Result, error) {
	// Match settlement credits many users and takes no stake from the
	// caller, so it runs outside the per-user lock.
	if gameName == model.GameSports && len(args) > 0 && args[0] == "settle" {
		return c.settleSports(ctx, args[1:])
	}

	var result *game.Result
	err := c.locks.WithLock(username, func() error {
		var err error
		result, err = c.dispatch(ctx, username, gameName, args)
		return err
	})
	if err != nil {
		c.log.Debug().Err(err).Str("user", username).Str("game", gameName).Msg("command rejected")
		return nil, err
	}

	c.log.Debug().
		Str("user", username).
		Str("game", gameName).
		Str("command", result.Command).
		Int64("payout", result.Payout).
		Int64("balance", result.NewBalance).
		Msg("command settled")
	return result, nil
}

func (c *SettlementCoordinator) dispatch(ctx context.Context, username, gameName string, args []string) (*game.Result, error) {
	if _, _, err := c.balances.GetOrCreate(ctx, username, c.cfg.StartingBalance); err != nil {
		return nil, err
	}

	if g, ok := c.games.Get(gameName); ok {
		return c.playOutcome(ctx, username, g, args)
	}

	switch gameName {
	case model.GameMines:
		return c.handleMines(ctx, username, args)
	case model.GameBlackjack:
		return c.handleBlackjack(ctx, username, args)
	case model.GameCards:
		return c.handleCards(ctx, username, args)
	case model.GameSports:
		return c.handleSportsBet(ctx, username, args)
	default:
		return nil, ErrUnknownGame
	}
}

// playOutcome settles a single-shot game: no session, one atomic balance
// adjustment for the net payout.
func (c *SettlementCoordinator) playOutcome(ctx context.Context, username string, g game.OutcomeGame, args []string) (*game.Result, error) {
	bet := g.FixedBet()
	gameArgs := args
	if bet == 0 {
		if len(args) == 0 {
			return nil, ErrMissingArgument
		}
		var err error
		bet, err = c.validator.Validate(ctx, username, args[0], 0)
		if err != nil {
			return nil, err
		}
		gameArgs = args[1:]
	} else if err := c.validator.CheckFunds(ctx, username, bet, 0); err != nil {
		return nil, err
	}

	if err := g.ValidateBet(bet, gameArgs); err != nil {
		return nil, err
	}

	outcome, err := g.Play(ctx, username, bet, gameArgs)
	if err != nil {
		return nil, err
	}

	user, err := c.balances.AdjustBalance(ctx, username, outcome.Payout)
	if err != nil {
		return nil, err
	}
	c.record(ctx, username, g.Command(), "play", bet, outcome.Payout, nil)

	return &game.Result{
		Game:       g.Command(),
		Command:    "play",
		Bet:        bet,
		Payout:     outcome.Payout,
		NewBalance: user.Balance,
		Message:    outcome.Message,
		Details:    outcome.Details,
	}, nil
}

func (c *SettlementCoordinator) handleMines(ctx context.Context, username string, args []string) (*game.Result, error) {
	if len(args) == 0 {
		return nil, ErrMissingArgument
	}

	switch args[0] {
	case "start":
		if len(args) < 3 {
			return nil, ErrMissingArgument
		}
		if err := c.requireNoSession(ctx, model.GameMines, username, &mines.Session{}); err != nil {
			return nil, err
		}
		bet, err := c.validator.Validate(ctx, username, args[1], c.cfg.MinesMinBet)
		if err != nil {
			return nil, err
		}
		bombs, err := strconv.Atoi(args[2])
		if err != nil {
			return nil, mines.ErrInvalidBombCount
		}
		s, err := mines.Start(newRand(), username, bet, bombs)
		if err != nil {
			return nil, err
		}

		user, err := c.balances.AdjustBalance(ctx, username, -bet)
		if err != nil {
			return nil, err
		}
		if err := c.saveOrRefund(ctx, model.GameMines, username, s, bet); err != nil {
			return nil, err
		}
		c.record(ctx, username, model.GameMines, "start", bet, -bet, nil)

		return &game.Result{
			Game:       model.GameMines,
			Command:    "start",
			Bet:        bet,
			Payout:     -bet,
			NewBalance: user.Balance,
			Message:    fmt.Sprintf("Mines started: %d bombs on 25 cells, bet %d. Reveal a cell.", bombs, bet),
			Details:    map[string]any{"bombs": bombs},
		}, nil

	case "reveal":
		if len(args) < 2 {
			return nil, ErrMissingArgument
		}
		var s mines.Session
		if err := c.loadSession(ctx, model.GameMines, username, &s); err != nil {
			return nil, err
		}
		if !s.Active {
			return nil, ErrNoActiveGame
		}
		cell, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, mines.ErrInvalidCell
		}

		hitBomb, multiplier, err := s.Reveal(cell)
		if err != nil {
			return nil, err
		}

		if hitBomb {
			if err := c.sessions.Delete(ctx, model.GameMines, username); err != nil {
				return nil, err
			}
			note := fmt.Sprintf("bomb at cell %d", cell)
			c.record(ctx, username, model.GameMines, "reveal", s.Bet, 0, &note)
			user, err := c.balances.GetByUsername(ctx, username)
			if err != nil {
				return nil, err
			}
			return &game.Result{
				Game:       model.GameMines,
				Command:    "reveal",
				Bet:        s.Bet,
				NewBalance: user.Balance,
				Message:    fmt.Sprintf("Boom! Cell %d was a bomb. You lost your bet of %d.", cell, s.Bet),
				Details:    map[string]any{"cell": cell, "bomb": true, "bombs": s.Bombs},
			}, nil
		}

		if s.AllSafeRevealed() {
			return c.settleMines(ctx, username, &s, "reveal", "All safe cells revealed!")
		}

		if err := c.sessions.Update(ctx, model.GameMines, username, &s); err != nil {
			return nil, err
		}
		user, err := c.balances.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		return &game.Result{
			Game:       model.GameMines,
			Command:    "reveal",
			Bet:        s.Bet,
			NewBalance: user.Balance,
			Message:    fmt.Sprintf("Cell %d is safe. Multiplier %.2fx, cashout %d.", cell, multiplier, s.CashoutAmount()),
			Details:    map[string]any{"cell": cell, "bomb": false, "multiplier": multiplier, "revealed": len(s.Revealed)},
		}, nil

	case "cashout":
		var s mines.Session
		if err := c.loadSession(ctx, model.GameMines, username, &s); err != nil {
			return nil, err
		}
		if !s.Active {
			return nil, ErrNoActiveGame
		}
		return c.settleMines(ctx, username, &s, "cashout", "Cashed out.")

	default:
		return nil, ErrUnknownAction
	}
}

// settleMines pays the current multiplier and removes the session. The
// session is removed before the credit: a failed delete aborts with no
// balance change, so a retried cashout can never pay twice.
func (c *SettlementCoordinator) settleMines(ctx context.Context, username string, s *mines.Session, command, prefix string) (*game.Result, error) {
	amount := s.CashoutAmount()
	if err := c.sessions.Delete(ctx, model.GameMines, username); err != nil {
		return nil, err
	}
	user, err := c.balances.AdjustBalance(ctx, username, amount)
	if err != nil {
		return nil, err
	}
	c.record(ctx, username, model.GameMines, command, s.Bet, amount, nil)

	return &game.Result{
		Game:       model.GameMines,
		Command:    command,
		Bet:        s.Bet,
		Payout:     amount,
		NewBalance: user.Balance,
		Message:    fmt.Sprintf("%s Multiplier %.2fx pays %d coins.", prefix, s.CurrentMultiplier(), amount),
		Details:    map[string]any{"multiplier": s.CurrentMultiplier(), "revealed": len(s.Revealed)},
	}, nil
}

func (c *SettlementCoordinator) handleBlackjack(ctx context.Context, username string, args []string) (*game.Result, error) {
	if len(args) == 0 {
		return nil, ErrMissingArgument
	}

	switch args[0] {
	case "start":
		if len(args) < 2 {
			return nil, ErrMissingArgument
		}
		if err := c.requireNoSession(ctx, model.GameBlackjack, username, &blackjack.Session{}); err != nil {
			return nil, err
		}
		bet, err := c.validator.Validate(ctx, username, args[1], c.cfg.BlackjackMinBet)
		if err != nil {
			return nil, err
		}

		user, err := c.balances.AdjustBalance(ctx, username, -bet)
		if err != nil {
			return nil, err
		}
		s, settlement := blackjack.Start(newRand(), username, bet)
		if settlement != nil {
			// Dealt 21: no session, settle on the spot. A failed credit
			// returns the stake so the account is left untouched.
			user, err = c.balances.AdjustBalance(ctx, username, settlement.TotalPayout)
			if err != nil {
				c.refund(ctx, username, bet)
				return nil, err
			}
			c.record(ctx, username, model.GameBlackjack, "start", bet, settlement.TotalPayout-bet, nil)
			return &game.Result{
				Game:       model.GameBlackjack,
				Command:    "start",
				Bet:        bet,
				Payout:     settlement.TotalPayout - bet,
				NewBalance: user.Balance,
				Message:    blackjackMessage(s, settlement),
				Details:    blackjackDetails(s, settlement),
			}, nil
		}

		if err := c.saveOrRefund(ctx, model.GameBlackjack, username, s, bet); err != nil {
			return nil, err
		}
		c.record(ctx, username, model.GameBlackjack, "start", bet, -bet, nil)
		return &game.Result{
			Game:       model.GameBlackjack,
			Command:    "start",
			Bet:        bet,
			Payout:     -bet,
			NewBalance: user.Balance,
			Message: fmt.Sprintf("Your hand: %s (%s). Dealer shows %s.",
				handString(s.Player), blackjack.Display(s.Player), s.Dealer[0]),
			Details: blackjackDetails(s, nil),
		}, nil

	case "hit", "stand", "double", "split":
		var s blackjack.Session
		if err := c.loadSession(ctx, model.GameBlackjack, username, &s); err != nil {
			return nil, err
		}
		if !s.Active {
			return nil, ErrNoActiveGame
		}
		return c.playBlackjackAction(ctx, username, &s, args[0])

	default:
		return nil, ErrUnknownAction
	}
}

func (c *SettlementCoordinator) playBlackjackAction(ctx context.Context, username string, s *blackjack.Session, action string) (*game.Result, error) {
	var (
		settlement *blackjack.Settlement
		extraStake int64
		err        error
	)

	switch action {
	case "hit":
		settlement, err = s.Hit()
	case "stand":
		settlement, err = s.Stand()
	case "double", "split":
		// Both actions stake a second bet. Legality is checked before the
		// debit, so a rejected move never touches the ledger.
		if action == "double" {
			err = s.CanDouble()
		} else {
			err = s.CanSplit()
		}
		if err != nil {
			return nil, err
		}
		extraStake = s.Bet
		if _, err := c.balances.AdjustBalance(ctx, username, -extraStake); err != nil {
			return nil, err
		}
		if action == "double" {
			settlement, err = s.Double()
		} else {
			err = s.SplitHand()
		}
		if err != nil {
			c.refund(ctx, username, extraStake)
			return nil, err
		}
	}
	if err != nil {
		return nil, err
	}

	if settlement == nil {
		if err := c.sessions.Update(ctx, model.GameBlackjack, username, s); err != nil {
			return nil, err
		}
		user, err := c.balances.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		hand := s.Player
		if s.ActiveHand == blackjack.HandSplit {
			hand = s.Split
		}
		return &game.Result{
			Game:       model.GameBlackjack,
			Command:    action,
			Bet:        s.Bet,
			Payout:     -extraStake,
			NewBalance: user.Balance,
			Message: fmt.Sprintf("Playing %s hand: %s (%s). Dealer shows %s.",
				s.ActiveHand, handString(hand), blackjack.Display(hand), s.Dealer[0]),
			Details: blackjackDetails(s, nil),
		}, nil
	}

	// Session removal comes before the credit so a retry after a failed
	// delete cannot be paid a second time.
	if err := c.sessions.Delete(ctx, model.GameBlackjack, username); err != nil {
		return nil, err
	}
	user, err := c.balances.AdjustBalance(ctx, username, settlement.TotalPayout)
	if err != nil {
		return nil, err
	}
	c.record(ctx, username, model.GameBlackjack, action, s.Bet, settlement.TotalPayout-extraStake, nil)

	return &game.Result{
		Game:       model.GameBlackjack,
		Command:    action,
		Bet:        s.Bet,
		Payout:     settlement.TotalPayout - extraStake,
		NewBalance: user.Balance,
		Message:    blackjackMessage(s, settlement),
		Details:    blackjackDetails(s, settlement),
	}, nil
}

func (c *SettlementCoordinator) handleCards(ctx context.Context, username string, args []string) (*game.Result, error) {
	if len(args) == 0 {
		return nil, ErrMissingArgument
	}

	switch args[0] {
	case "start":
		if len(args) < 2 {
			return nil, ErrMissingArgument
		}
		if err := c.requireNoSession(ctx, model.GameCards, username, &cardgame.Session{}); err != nil {
			return nil, err
		}
		bet, err := c.validator.Validate(ctx, username, args[1], c.cfg.CardsMinBet)
		if err != nil {
			return nil, err
		}

		user, err := c.balances.AdjustBalance(ctx, username, -bet)
		if err != nil {
			return nil, err
		}
		s := cardgame.Start(newRand(), username, bet)
		if err := c.saveOrRefund(ctx, model.GameCards, username, s, bet); err != nil {
			return nil, err
		}
		c.record(ctx, username, model.GameCards, "start", bet, -bet, nil)

		return &game.Result{
			Game:       model.GameCards,
			Command:    "start",
			Bet:        bet,
			Payout:     -bet,
			NewBalance: user.Balance,
			Message: fmt.Sprintf("Your hand: %s. Pick a joker: %s.",
				handString(s.Hand), jokerOffers(s.Offered)),
			Details: map[string]any{"hand": handString(s.Hand), "offered": s.Offered},
		}, nil

	case "joker":
		if len(args) < 2 {
			return nil, ErrMissingArgument
		}
		var s cardgame.Session
		if err := c.loadSession(ctx, model.GameCards, username, &s); err != nil {
			return nil, err
		}
		id, err := strconv.Atoi(args[1])
		if err != nil {
			return nil, cardgame.ErrJokerNotOffered
		}
		if err := s.ChooseJoker(id); err != nil {
			return nil, err
		}
		if err := c.sessions.Update(ctx, model.GameCards, username, &s); err != nil {
			return nil, err
		}
		joker, _ := cardgame.JokerByID(id)
		user, err := c.balances.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		return &game.Result{
			Game:       model.GameCards,
			Command:    "joker",
			Bet:        s.Bet,
			NewBalance: user.Balance,
			Message:    fmt.Sprintf("Joker chosen: %s (%s). Discard up to twice, or stand.", joker.Name, joker.Description),
			Details:    map[string]any{"joker": joker.Name, "hand": handString(s.Hand)},
		}, nil

	case "discard":
		if len(args) < 2 {
			return nil, ErrMissingArgument
		}
		var s cardgame.Session
		if err := c.loadSession(ctx, model.GameCards, username, &s); err != nil {
			return nil, err
		}
		score, err := s.Discard(args[1:])
		if err != nil {
			return nil, err
		}
		if score != nil {
			return c.settleCards(ctx, username, &s, "discard", score)
		}
		if err := c.sessions.Update(ctx, model.GameCards, username, &s); err != nil {
			return nil, err
		}
		user, err := c.balances.GetByUsername(ctx, username)
		if err != nil {
			return nil, err
		}
		return &game.Result{
			Game:       model.GameCards,
			Command:    "discard",
			Bet:        s.Bet,
			NewBalance: user.Balance,
			Message:    fmt.Sprintf("New hand: %s. One discard left, or stand.", handString(s.Hand)),
			Details:    map[string]any{"hand": handString(s.Hand)},
		}, nil

	case "stand":
		var s cardgame.Session
		if err := c.loadSession(ctx, model.GameCards, username, &s); err != nil {
			return nil, err
		}
		score, err := s.Stand()
		if err != nil {
			return nil, err
		}
		return c.settleCards(ctx, username, &s, "stand", score)

	default:
		return nil, ErrUnknownAction
	}
}

// settleCards removes the session and credits the winnings, in that order
// so a retried command can never pay twice.
func (c *SettlementCoordinator) settleCards(ctx context.Context, username string, s *cardgame.Session, command string, score *cardgame.Score) (*game.Result, error) {
	if err := c.sessions.Delete(ctx, model.GameCards, username); err != nil {
		return nil, err
	}
	user, err := c.balances.AdjustBalance(ctx, username, score.Winnings)
	if err != nil {
		return nil, err
	}
	c.record(ctx, username, model.GameCards, command, s.Bet, score.Winnings, nil)

	return &game.Result{
		Game:       model.GameCards,
		Command:    command,
		Bet:        s.Bet,
		Payout:     score.Winnings,
		NewBalance: user.Balance,
		Message: fmt.Sprintf("%s: %d chips x %d mult = %d. Tier %.1fx pays %d coins.",
			score.HandRank, score.Chips, score.Mult, score.FinalScore, score.Tier, score.Winnings),
		Details: map[string]any{
			"hand":        handString(s.Hand),
			"hand_rank":   score.HandRank,
			"chips":       score.Chips,
			"mult":        score.Mult,
			"final_score": score.FinalScore,
			"tier":        score.Tier,
		},
	}, nil
}

func (c *SettlementCoordinator) handleSportsBet(ctx context.Context, username string, args []string) (*game.Result, error) {
	if len(args) < 1 {
		return nil, ErrMissingArgument
	}
	if args[0] != "bet" {
		return nil, ErrUnknownAction
	}
	if len(args) < 5 {
		return nil, ErrMissingArgument
	}

	matchID, side := args[1], args[2]
	stake, err := c.validator.Validate(ctx, username, args[3], 0)
	if err != nil {
		return nil, err
	}
	odds, err := strconv.ParseFloat(args[4], 64)
	if err != nil {
		return nil, sports.ErrInvalidOdds
	}

	bet, err := c.sports.PlaceBet(ctx, username, matchID, side, stake, odds)
	if err != nil {
		return nil, err
	}
	note := fmt.Sprintf("bet %s on match %s", bet.ID, matchID)
	c.record(ctx, username, model.GameSports, "bet", stake, -stake, &note)

	user, err := c.balances.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return &game.Result{
		Game:       model.GameSports,
		Command:    "bet",
		Bet:        stake,
		Payout:     -stake,
		NewBalance: user.Balance,
		Message:    fmt.Sprintf("Bet placed: %d on %s at %.2f (match %s).", stake, side, odds, matchID),
		Details:    map[string]any{"bet_id": bet.ID, "match_id": matchID, "side": side, "odds": odds},
	}, nil
}

func (c *SettlementCoordinator) settleSports(ctx context.Context, args []string) (*game.Result, error) {
	if len(args) < 3 {
		return nil, ErrMissingArgument
	}
	matchID := args[0]
	home, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, ErrInvalidScore
	}
	away, err := strconv.Atoi(args[2])
	if err != nil {
		return nil, ErrInvalidScore
	}

	report, err := c.sports.Settle(ctx, matchID, home, away)
	if err != nil {
		return nil, err
	}
	for _, p := range report.Payouts {
		note := fmt.Sprintf("match %s settled %d-%d", matchID, home, away)
		c.record(ctx, p.Username, model.GameSports, "settle", 0, p.Amount, &note)
	}

	c.log.Info().
		Str("match", matchID).
		Str("winning_side", report.WinningSide).
		Int("bets", report.BetsSettled).
		Int64("total_paid", report.TotalPaid).
		Msg("match settled")

	return &game.Result{
		Game:    model.GameSports,
		Command: "settle",
		Payout:  report.TotalPaid,
		Message: fmt.Sprintf("Match %s settled %d-%d: %s wins, %d bets settled, %d coins paid.",
			matchID, home, away, report.WinningSide, report.BetsSettled, report.TotalPaid),
		Details: map[string]any{
			"match_id":     matchID,
			"winning_side": report.WinningSide,
			"bets_settled": report.BetsSettled,
			"total_paid":   report.TotalPaid,
		},
	}, nil
}

// requireNoSession rejects a start command while a session is active.
func (c *SettlementCoordinator) requireNoSession(ctx context.Context, gameName, username string, dest any) error {
	found, err := c.sessions.Get(ctx, gameName, username, dest)
	if err != nil {
		return err
	}
	if found {
		return ErrGameInProgress
	}
	return nil
}

// loadSession loads the active session or reports ErrNoActiveGame.
func (c *SettlementCoordinator) loadSession(ctx context.Context, gameName, username string, dest any) error {
	found, err := c.sessions.Get(ctx, gameName, username, dest)
	if err != nil {
		return err
	}
	if !found {
		return ErrNoActiveGame
	}
	return nil
}

// saveOrRefund stores a fresh session, returning the stake if it cannot be
// stored so no coins are stranded.
func (c *SettlementCoordinator) saveOrRefund(ctx context.Context, gameName, username string, sess any, bet int64) error {
	err := c.sessions.Save(ctx, gameName, username, sess)
	if err == nil {
		return nil
	}
	c.refund(ctx, username, bet)
	if errors.Is(err, session.ErrSessionExists) {
		return ErrGameInProgress
	}
	return err
}

func (c *SettlementCoordinator) record(ctx context.Context, username, gameName, command string, bet, amount int64, note *string) {
	_, err := c.history.Append(ctx, &model.HistoryRecord{
		Username: username,
		Game:     gameName,
		Command:  command,
		Bet:      bet,
		Amount:   amount,
		Note:     note,
	})
	if err != nil {
		c.log.Warn().Err(err).Str("user", username).Str("game", gameName).Msg("failed to append history")
	}
}

func (c *SettlementCoordinator) refund(ctx context.Context, username string, amount int64) {
	if _, err := c.balances.AdjustBalance(ctx, username, amount); err != nil {
		c.log.Error().Err(err).Str("user", username).Int64("amount", amount).Msg("failed to refund stake")
	}
}

func handString(hand []card.Card) string {
	parts := make([]string, len(hand))
	for i, c := range hand {
		parts[i] = c.String()
	}
	return strings.Join(parts, " ")
}

func jokerOffers(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if j, ok := cardgame.JokerByID(id); ok {
			parts = append(parts, fmt.Sprintf("%d=%s (%s)", j.ID, j.Name, j.Description))
		}
	}
	return strings.Join(parts, ", ")
}

func blackjackMessage(s *blackjack.Session, settlement *blackjack.Settlement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Dealer: %s (%d).", handString(s.Dealer), settlement.DealerValue)
	for _, r := range settlement.Results {
		fmt.Fprintf(&b, " %s hand %d: %s (+%d).", r.Hand, r.Value, r.Label, r.Payout)
	}
	return b.String()
}

func blackjackDetails(s *blackjack.Session, settlement *blackjack.Settlement) map[string]any {
	details := map[string]any{
		"player":      handString(s.Player),
		"dealer":      handString(s.Dealer),
		"active_hand": s.ActiveHand,
		"is_split":    s.IsSplit,
	}
	if s.IsSplit {
		details["split"] = handString(s.Split)
	}
	if settlement != nil {
		details["dealer_value"] = settlement.DealerValue
		details["total_payout"] = settlement.TotalPayout
		details["results"] = settlement.Results
	}
	return details
}
