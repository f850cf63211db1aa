// Package game defines the engine interfaces, the outcome descriptor, and
// the registry that maps commands to outcome games.
package game

import "context"

// Result is the descriptor handed to the external rendering/messaging layer
// after a command settles. The core never formats pixels or HTML; Message
// and Details are all a renderer gets.
type Result struct {
	Game       string         // game key, e.g. "mines"
	Command    string         // subcommand that produced this result
	Bet        int64          // stake the command was played for (0 if none)
	Payout     int64          // net balance change: positive win, negative loss
	NewBalance int64          // balance after settlement
	Message    string         // human-readable summary
	Details    map[string]any // game-specific fields for the renderer
}

// Outcome is what an outcome-only game produces from a single play.
type Outcome struct {
	Payout  int64 // net change relative to the already-validated stake
	Message string
	Details map[string]any
}

// OutcomeGame is a game with no multi-step session: a single command
// computes a random outcome and settles immediately (roulette, slots,
// dice, lotto).
type OutcomeGame interface {
	// Name returns the game's display name.
	Name() string

	// Command returns the command that triggers this game.
	Command() string

	// Description returns a brief description of the game.
	Description() string

	// FixedBet returns a fixed stake for games where the player does not
	// choose one (lotto tickets). Zero means the stake comes from the
	// command arguments.
	FixedBet() int64

	// ValidateBet checks the stake and game arguments before any balance
	// mutation. Returns nil if valid.
	ValidateBet(bet int64, args []string) error

	// Play computes the outcome. The stake has already been validated but
	// NOT debited; the returned Payout is the net change the coordinator
	// applies in one atomic adjustment.
	Play(ctx context.Context, username string, bet int64, args []string) (*Outcome, error)
}
