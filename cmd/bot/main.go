// Package main is the entry point for the chat casino bot. It wires the
// stores, game engines and settlement coordinator together and reads
// commands from stdin, one per line: "<username> <game> [args...]".
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"chat-casino-bot/internal/config"
	"chat-casino-bot/internal/game"
	"chat-casino-bot/internal/game/dice"
	"chat-casino-bot/internal/game/lotto"
	"chat-casino-bot/internal/game/roulette"
	"chat-casino-bot/internal/game/slots"
	"chat-casino-bot/internal/game/sports"
	"chat-casino-bot/internal/pkg/db"
	"chat-casino-bot/internal/pkg/lock"
	"chat-casino-bot/internal/repository"
	"chat-casino-bot/internal/service"
	"chat-casino-bot/internal/session"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	log.Info().Msg("Configuration loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer dbPool.Close()

	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	redisClient, err := session.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer redisClient.Close()

	// Repositories
	userRepo := repository.NewUserRepository(dbPool.Pool)
	historyRepo := repository.NewHistoryRepository(dbPool.Pool)
	sportsBetRepo := repository.NewSportsBetRepository(dbPool.Pool)
	sessionStore := session.NewStore(redisClient)

	// Outcome games
	gameRegistry := game.NewRegistry()
	for _, g := range []game.OutcomeGame{
		roulette.New(),
		slots.New(nil),
		dice.New(nil),
		lotto.New(&lotto.Config{
			TicketCost: cfg.Games.Lotto.TicketCost,
			PrizePool:  cfg.Games.Lotto.PrizePool,
		}),
	} {
		if err := gameRegistry.Register(g); err != nil {
			log.Fatal().Err(err).Str("game", g.Command()).Msg("Failed to register game")
		}
	}
	log.Info().
		Int("game_count", gameRegistry.Count()).
		Strs("games", gameRegistry.Commands()).
		Msg("Games registered")

	sportsEngine := sports.New(sportsBetRepo, userRepo, &sports.Config{
		MinStake: cfg.Games.Sports.MinStake,
	})

	// Services
	coordinator := service.NewSettlementCoordinator(
		userRepo, sessionStore, historyRepo, gameRegistry, sportsEngine,
		service.CoordinatorConfig{
			StartingBalance: cfg.Account.StartingBalance,
			MinesMinBet:     cfg.Games.Mines.MinBet,
			BlackjackMinBet: cfg.Games.Blackjack.MinBet,
			CardsMinBet:     cfg.Games.Cards.MinBet,
		},
		log.Logger,
	)
	accountService := service.NewAccountService(userRepo, historyRepo, cfg.Account.StartingBalance)
	transferService := service.NewTransferService(userRepo, historyRepo, lock.NewKeyedLock())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go runConsole(ctx, coordinator, accountService, transferService)

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
	cancel()
	log.Info().Msg("Bot stopped gracefully")
}

// runConsole reads commands from stdin and prints the settlement results.
// It is the narrow stand-in for a chat front end.
func runConsole(ctx context.Context, coordinator *service.SettlementCoordinator, accounts *service.AccountService, transfers *service.TransferService) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			if len(fields) > 0 {
				fmt.Println("usage: <username> <game|balance|top|history|transfer> [args...]")
			}
			continue
		}
		username, command, args := fields[0], fields[1], fields[2:]

		switch command {
		case "balance":
			if _, _, err := accounts.EnsureUser(ctx, username); err != nil {
				fmt.Println("error:", err)
				continue
			}
			balance, err := accounts.GetBalance(ctx, username)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("%s has %d coins\n", username, balance)

		case "top":
			users, err := accounts.GetTopUsers(ctx, 10)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			for i, u := range users {
				fmt.Printf("%2d. %s: %d\n", i+1, u.Username, u.Balance)
			}

		case "history":
			recs, err := accounts.GetHistory(ctx, username, 10)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			for _, rec := range recs {
				fmt.Printf("%s %s/%s bet=%d amount=%+d\n",
					rec.CreatedAt.Format(time.RFC3339), rec.Game, rec.Command, rec.Bet, rec.Amount)
			}

		case "transfer":
			if len(args) < 2 {
				fmt.Println("usage: <username> transfer <receiver> <amount>")
				continue
			}
			amount, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			if err := transfers.Transfer(ctx, username, args[0], amount); err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("%s sent %d coins to %s\n", username, amount, args[0])

		default:
			result, err := coordinator.HandleCommand(ctx, username, command, args)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Printf("%s (balance %d)\n", result.Message, result.NewBalance)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("console input failed")
	}
}

// runMigrations creates the schema if it does not exist.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS users (
			username VARCHAR(255) PRIMARY KEY,
			balance BIGINT NOT NULL DEFAULT 0 CHECK (balance >= 0),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_users_balance ON users(balance DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: users table created")

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS game_history (
			id BIGSERIAL PRIMARY KEY,
			username VARCHAR(255) NOT NULL REFERENCES users(username) ON DELETE CASCADE,
			game VARCHAR(50) NOT NULL,
			command VARCHAR(50) NOT NULL,
			bet BIGINT NOT NULL DEFAULT 0,
			amount BIGINT NOT NULL DEFAULT 0,
			note TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_game_history_user_time ON game_history(username, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: game_history table created")

	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sports_bets (
			id UUID PRIMARY KEY,
			username VARCHAR(255) NOT NULL REFERENCES users(username) ON DELETE CASCADE,
			match_id VARCHAR(255) NOT NULL,
			side VARCHAR(10) NOT NULL,
			stake BIGINT NOT NULL,
			odds DOUBLE PRECISION NOT NULL,
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_sports_bets_match_unpaid ON sports_bets(match_id) WHERE NOT paid;
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: sports_bets table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
