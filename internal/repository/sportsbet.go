package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"chat-casino-bot/internal/model"
)

// Sports bet errors.
var (
	ErrBetNotFound    = errors.New("sports bet not found")
	ErrBetAlreadyPaid = errors.New("sports bet already paid")
)

// SportsBetRepository persists sports bets and their settlement state.
type SportsBetRepository struct {
	pool *pgxpool.Pool
}

// NewSportsBetRepository creates a new SportsBetRepository instance.
func NewSportsBetRepository(pool *pgxpool.Pool) *SportsBetRepository {
	return &SportsBetRepository{pool: pool}
}

// Create records a new bet with odds frozen at placement time.
func (r *SportsBetRepository) Create(ctx context.Context, username, matchID, side string, stake int64, odds float64) (*model.SportsBet, error) {
	const query = `
		INSERT INTO sports_bets (id, username, match_id, side, stake, odds, paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, NOW())
		RETURNING id, username, match_id, side, stake, odds, paid, created_at
	`

	var bet model.SportsBet
	err := r.pool.QueryRow(ctx, query, uuid.NewString(), username, matchID, side, stake, odds).Scan(
		&bet.ID,
		&bet.Username,
		&bet.MatchID,
		&bet.Side,
		&bet.Stake,
		&bet.Odds,
		&bet.Paid,
		&bet.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create sports bet: %w", err)
	}

	return &bet, nil
}

// GetByID retrieves a single bet.
func (r *SportsBetRepository) GetByID(ctx context.Context, id string) (*model.SportsBet, error) {
	const query = `
		SELECT id, username, match_id, side, stake, odds, paid, created_at
		FROM sports_bets
		WHERE id = $1
	`

	var bet model.SportsBet
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&bet.ID,
		&bet.Username,
		&bet.MatchID,
		&bet.Side,
		&bet.Stake,
		&bet.Odds,
		&bet.Paid,
		&bet.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrBetNotFound
		}
		return nil, fmt.Errorf("failed to get sports bet: %w", err)
	}

	return &bet, nil
}

// ListUnpaidByMatch retrieves all bets on a match that have not been paid.
func (r *SportsBetRepository) ListUnpaidByMatch(ctx context.Context, matchID string) ([]*model.SportsBet, error) {
	const query = `
		SELECT id, username, match_id, side, stake, odds, paid, created_at
		FROM sports_bets
		WHERE match_id = $1 AND paid = FALSE
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sports bets: %w", err)
	}
	defer rows.Close()

	var bets []*model.SportsBet
	for rows.Next() {
		var bet model.SportsBet
		err := rows.Scan(
			&bet.ID,
			&bet.Username,
			&bet.MatchID,
			&bet.Side,
			&bet.Stake,
			&bet.Odds,
			&bet.Paid,
			&bet.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sports bet: %w", err)
		}
		bets = append(bets, &bet)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sports bets: %w", err)
	}

	return bets, nil
}

// MarkPaid flips the paid flag, but only if it was unset. The conditional
// update makes settlement idempotent: a bet can be paid at most once no
// matter how many times settle runs.
func (r *SportsBetRepository) MarkPaid(ctx context.Context, id string) error {
	const query = `
		UPDATE sports_bets
		SET paid = TRUE
		WHERE id = $1 AND paid = FALSE
	`

	result, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to mark sports bet paid: %w", err)
	}

	if result.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return ErrBetAlreadyPaid
	}

	return nil
}
