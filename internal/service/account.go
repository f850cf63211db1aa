// Package service provides business logic implementations.
package service

import (
	"context"
	"fmt"

	"chat-casino-bot/internal/model"
	"chat-casino-bot/internal/repository"
)

// AccountService handles player account operations.
type AccountService struct {
	users           *repository.UserRepository
	history         *repository.HistoryRepository
	startingBalance int64
}

// NewAccountService creates a new AccountService instance.
func NewAccountService(users *repository.UserRepository, history *repository.HistoryRepository, startingBalance int64) *AccountService {
	return &AccountService{
		users:           users,
		history:         history,
		startingBalance: startingBalance,
	}
}

// EnsureUser ensures a user exists, creating one with the starting balance
// if necessary. Returns the user and whether it was newly created.
func (s *AccountService) EnsureUser(ctx context.Context, username string) (*model.User, bool, error) {
	user, created, err := s.users.GetOrCreate(ctx, username, s.startingBalance)
	if err != nil {
		return nil, false, fmt.Errorf("failed to ensure user: %w", err)
	}
	return user, created, nil
}

// GetBalance retrieves a user's current balance.
func (s *AccountService) GetBalance(ctx context.Context, username string) (int64, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return 0, err
	}
	return user.Balance, nil
}

// GetTopUsers retrieves the richest users for the leaderboard.
func (s *AccountService) GetTopUsers(ctx context.Context, limit int) ([]*model.User, error) {
	return s.users.GetTopUsers(ctx, limit)
}

// GetHistory retrieves a user's most recent settled commands.
func (s *AccountService) GetHistory(ctx context.Context, username string, limit int) ([]*model.HistoryRecord, error) {
	return s.history.GetByUsername(ctx, username, limit)
}
