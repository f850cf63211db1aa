package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-casino-bot/internal/model"
)

func TestBetValidator_Parse(t *testing.T) {
	v := NewBetValidator(newFakeBalances())

	amount, err := v.Parse("250")
	require.NoError(t, err)
	assert.Equal(t, int64(250), amount)

	_, err = v.Parse("12.5")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = v.Parse("all")
	assert.ErrorIs(t, err, ErrInvalidFormat)
	_, err = v.Parse("0")
	assert.ErrorIs(t, err, ErrNonPositive)
	_, err = v.Parse("-100")
	assert.ErrorIs(t, err, ErrNonPositive)
}

func TestBetValidator_Validate(t *testing.T) {
	ctx := context.Background()
	balances := newFakeBalances()
	balances.users["alice"] = &model.User{Username: "alice", Balance: 500}
	v := NewBetValidator(balances)

	amount, err := v.Validate(ctx, "alice", "500", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(500), amount)

	_, err = v.Validate(ctx, "alice", "501", 0)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	_, err = v.Validate(ctx, "alice", "5", 10)
	assert.ErrorIs(t, err, ErrBetBelowMinimum)
}
