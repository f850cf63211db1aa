package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"chat-casino-bot/internal/model"
)

// HistoryRepository persists the per-command game history.
type HistoryRepository struct {
	pool *pgxpool.Pool
}

// NewHistoryRepository creates a new HistoryRepository instance.
func NewHistoryRepository(pool *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{pool: pool}
}

// Append records one settled command.
func (r *HistoryRepository) Append(ctx context.Context, rec *model.HistoryRecord) (*model.HistoryRecord, error) {
	const query = `
		INSERT INTO game_history (username, game, command, bet, amount, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, username, game, command, bet, amount, note, created_at
	`

	var out model.HistoryRecord
	err := r.pool.QueryRow(ctx, query, rec.Username, rec.Game, rec.Command, rec.Bet, rec.Amount, rec.Note).Scan(
		&out.ID,
		&out.Username,
		&out.Game,
		&out.Command,
		&out.Bet,
		&out.Amount,
		&out.Note,
		&out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append history record: %w", err)
	}

	return &out, nil
}

// GetByUsername retrieves a user's history, newest first.
func (r *HistoryRepository) GetByUsername(ctx context.Context, username string, limit int) ([]*model.HistoryRecord, error) {
	const query = `
		SELECT id, username, game, command, bet, amount, note, created_at
		FROM game_history
		WHERE username = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, username, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	defer rows.Close()

	var records []*model.HistoryRecord
	for rows.Next() {
		var rec model.HistoryRecord
		err := rows.Scan(
			&rec.ID,
			&rec.Username,
			&rec.Game,
			&rec.Command,
			&rec.Bet,
			&rec.Amount,
			&rec.Note,
			&rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history record: %w", err)
		}
		records = append(records, &rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	return records, nil
}

// GetDailyNet returns a user's net win/loss across all games for a date.
func (r *HistoryRepository) GetDailyNet(ctx context.Context, username string, date time.Time) (int64, error) {
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	const query = `
		SELECT COALESCE(SUM(amount), 0)
		FROM game_history
		WHERE username = $1
		  AND created_at >= $2
		  AND created_at < $3
	`

	var net int64
	err := r.pool.QueryRow(ctx, query, username, startOfDay, endOfDay).Scan(&net)
	if err != nil {
		return 0, fmt.Errorf("failed to get daily net: %w", err)
	}

	return net, nil
}
