package service

import (
	"context"
	"errors"
	"fmt"

	"chat-casino-bot/internal/model"
	"chat-casino-bot/internal/pkg/lock"
	"chat-casino-bot/internal/repository"
)

// Transfer-related errors.
var (
	ErrInvalidAmount    = errors.New("invalid amount: must be positive")
	ErrSelfTransfer     = errors.New("cannot transfer to self")
	ErrReceiverNotFound = errors.New("receiver not found")
)

// TransferService moves coins between users. Both usernames are locked in
// a fixed order so two opposing transfers cannot deadlock.
type TransferService struct {
	balances BalanceStore
	history  HistoryStore
	locks    *lock.KeyedLock
}

// NewTransferService creates a new TransferService instance.
func NewTransferService(balances BalanceStore, history HistoryStore, locks *lock.KeyedLock) *TransferService {
	return &TransferService{
		balances: balances,
		history:  history,
		locks:    locks,
	}
}

// Transfer moves amount coins from one user to another. The receiver must
// already exist; the sender's debit is atomic and conditional, so an
// insufficient balance is rejected without any partial movement.
func (s *TransferService) Transfer(ctx context.Context, from, to string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if from == to {
		return ErrSelfTransfer
	}

	return s.locks.WithOrderedLocks(from, to, func() error {
		_, err := s.balances.GetByUsername(ctx, to)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return ErrReceiverNotFound
			}
			return fmt.Errorf("failed to get receiver: %w", err)
		}

		if _, err := s.balances.AdjustBalance(ctx, from, -amount); err != nil {
			return err
		}

		if _, err := s.balances.AdjustBalance(ctx, to, amount); err != nil {
			// Put the sender's coins back.
			if _, rollbackErr := s.balances.AdjustBalance(ctx, from, amount); rollbackErr != nil {
				return fmt.Errorf("failed to credit receiver (rollback also failed: %v): %w", rollbackErr, err)
			}
			return fmt.Errorf("failed to credit receiver: %w", err)
		}

		senderNote := fmt.Sprintf("transfer to %s", to)
		receiverNote := fmt.Sprintf("transfer from %s", from)
		_, _ = s.history.Append(ctx, &model.HistoryRecord{
			Username: from, Game: model.GameTransfer, Command: "send", Bet: amount, Amount: -amount, Note: &senderNote,
		})
		_, _ = s.history.Append(ctx, &model.HistoryRecord{
			Username: to, Game: model.GameTransfer, Command: "receive", Bet: amount, Amount: amount, Note: &receiverNote,
		})

		return nil
	})
}
