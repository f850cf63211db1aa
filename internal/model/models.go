// Package model defines the data models for the chat casino bot.
package model

import "time"

// User represents a player account. Accounts are created lazily the first
// time a username is referenced by any command.
type User struct {
	Username  string    `db:"username"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// HistoryRecord is one settled command in the game history: which command a
// user ran, what they staked, and the net balance change it produced.
type HistoryRecord struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	Game      string    `db:"game"`
	Command   string    `db:"command"`
	Bet       int64     `db:"bet"`
	Amount    int64     `db:"amount"`
	Note      *string   `db:"note"`
	CreatedAt time.Time `db:"created_at"`
}

// SportsBet is a stake on one side of an externally fetched match. Odds are
// frozen at placement time; Paid guards against double settlement.
type SportsBet struct {
	ID        string    `db:"id"`
	Username  string    `db:"username"`
	MatchID   string    `db:"match_id"`
	Side      string    `db:"side"`
	Stake     int64     `db:"stake"`
	Odds      float64   `db:"odds"`
	Paid      bool      `db:"paid"`
	CreatedAt time.Time `db:"created_at"`
}

// Sides a sports bet can back.
const (
	SideHome = "home"
	SideAway = "away"
	SideDraw = "draw"
)

// Game names used as history keys and session store keys.
const (
	GameMines     = "mines"
	GameBlackjack = "blackjack"
	GameCards     = "cards"
	GameRoulette  = "roulette"
	GameSlots     = "slots"
	GameDice      = "dice"
	GameLotto     = "lotto"
	GameSports    = "sports"
	GameTransfer  = "transfer"
)
