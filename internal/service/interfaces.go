package service

import (
	"context"

	"chat-casino-bot/internal/model"
)

// BalanceStore is the ledger surface the services need. The repository's
// UserRepository satisfies it.
type BalanceStore interface {
	GetOrCreate(ctx context.Context, username string, startingBalance int64) (*model.User, bool, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	AdjustBalance(ctx context.Context, username string, delta int64) (*model.User, error)
}

// SessionStore persists one active session per (username, game). The
// redis-backed session.Store satisfies it.
type SessionStore interface {
	Get(ctx context.Context, game, username string, dest any) (bool, error)
	Save(ctx context.Context, game, username string, sess any) error
	Update(ctx context.Context, game, username string, sess any) error
	Delete(ctx context.Context, game, username string) error
}

// HistoryStore records settled commands. The repository's
// HistoryRepository satisfies it.
type HistoryStore interface {
	Append(ctx context.Context, rec *model.HistoryRecord) (*model.HistoryRecord, error)
}
