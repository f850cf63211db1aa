package dice

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestValidateBet(t *testing.T) {
	g := New(nil)

	assert.ErrorIs(t, g.ValidateBet(0, nil), ErrInvalidBet)
	assert.ErrorIs(t, g.ValidateBet(-1, nil), ErrInvalidBet)
	assert.ErrorIs(t, g.ValidateBet(DefaultMaxBet+1, nil), ErrBetTooHigh)
	assert.NoError(t, g.ValidateBet(DefaultMaxBet, nil))
}

func TestCalculatePayout(t *testing.T) {
	tests := []struct {
		name       string
		die1, die2 int
		want       int64
	}{
		{"snake eyes loses", 1, 1, -100},
		{"six loses", 2, 4, -100},
		{"seven pushes", 3, 4, 0},
		{"eight wins", 4, 4, 100},
		{"eleven wins", 5, 6, 100},
		{"boxcars jackpot", 6, 6, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CalculatePayout(tt.die1, tt.die2, 100))
		})
	}
}

func TestPlay(t *testing.T) {
	g := New(nil)
	outcome, err := g.Play(context.Background(), "alice", 100, nil)
	require.NoError(t, err)

	die1 := outcome.Details["die1"].(int)
	die2 := outcome.Details["die2"].(int)
	assert.GreaterOrEqual(t, die1, 1)
	assert.LessOrEqual(t, die1, 6)
	assert.GreaterOrEqual(t, die2, 1)
	assert.LessOrEqual(t, die2, 6)
	assert.Equal(t, die1+die2, outcome.Details["total"])
	assert.Equal(t, CalculatePayout(die1, die2, 100), outcome.Payout)
}

// Payout is monotone in the total: a higher roll never pays less.
func TestPayoutMonotoneProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bet := rapid.Int64Range(1, DefaultMaxBet).Draw(t, "bet")

		prev := int64(-bet - 1)
		for total := 2; total <= 12; total++ {
			payout := CalculatePayout(1, total-1, bet)
			if payout < prev {
				t.Fatalf("payout for total %d dropped from %d to %d", total, prev, payout)
			}
			prev = payout
		}
	})
}
