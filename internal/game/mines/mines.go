// Package mines implements the mines game: a 5x5 board with hidden bombs,
// where each safe reveal raises a fair-odds cashout multiplier.
package mines

import (
	"errors"
	"math"
	"math/rand"
)

// Board constants.
const (
	BoardCells = 25
	MinBombs   = 1
	MaxBombs   = 24
)

// Errors for the mines game.
var (
	ErrInvalidBombCount = errors.New("bomb count must be between 1 and 24")
	ErrInvalidCell      = errors.New("cell must be between 0 and 24")
	ErrAlreadyRevealed  = errors.New("cell already revealed")
	ErrNotActive        = errors.New("game is not active")
)

// Session is the persisted state of one mines game.
type Session struct {
	Username  string `json:"username"`
	Bet       int64  `json:"bet"`
	BombCount int    `json:"bomb_count"`
	Bombs     []int  `json:"bombs"`
	Revealed  []int  `json:"revealed"`
	Active    bool   `json:"active"`
}

// Start places bombCount bombs uniformly at random among the 25 cells and
// returns a fresh session. The stake is debited by the caller.
func Start(rng *rand.Rand, username string, bet int64, bombCount int) (*Session, error) {
	if bombCount < MinBombs || bombCount > MaxBombs {
		return nil, ErrInvalidBombCount
	}

	perm := rng.Perm(BoardCells)
	bombs := make([]int, bombCount)
	copy(bombs, perm[:bombCount])

	return &Session{
		Username:  username,
		Bet:       bet,
		BombCount: bombCount,
		Bombs:     bombs,
		Revealed:  []int{},
		Active:    true,
	}, nil
}

// IsBomb reports whether a cell holds a bomb.
func (s *Session) IsBomb(cell int) bool {
	for _, b := range s.Bombs {
		if b == cell {
			return true
		}
	}
	return false
}

// IsRevealed reports whether a cell has been revealed.
func (s *Session) IsRevealed(cell int) bool {
	for _, r := range s.Revealed {
		if r == cell {
			return true
		}
	}
	return false
}

// Reveal uncovers a cell. On a bomb the game ends as a loss (Active becomes
// false, the caller deletes the session, no payout). On a safe cell the
// reveal is recorded and the new cashout multiplier returned.
func (s *Session) Reveal(cell int) (hitBomb bool, multiplier float64, err error) {
	if !s.Active {
		return false, 0, ErrNotActive
	}
	if cell < 0 || cell >= BoardCells {
		return false, 0, ErrInvalidCell
	}
	if s.IsRevealed(cell) {
		return false, 0, ErrAlreadyRevealed
	}

	if s.IsBomb(cell) {
		s.Active = false
		return true, 0, nil
	}

	s.Revealed = append(s.Revealed, cell)
	return false, Multiplier(len(s.Revealed), s.BombCount), nil
}

// Multiplier is the fair-odds cashout multiplier after surviving `revealed`
// safe reveals with `bombs` bombs among 25 cells: the inverse probability of
// the all-safe path, floored at 1.0 and rounded to 2 decimals.
func Multiplier(revealed, bombs int) float64 {
	p := 1.0
	for i := 0; i < revealed; i++ {
		p *= float64(BoardCells-bombs-i) / float64(BoardCells-i)
	}

	m := 1.0 / p
	if m < 1.0 {
		m = 1.0
	}
	return math.Round(m*100) / 100
}

// CurrentMultiplier returns the multiplier for the session's reveals so far.
func (s *Session) CurrentMultiplier() float64 {
	return Multiplier(len(s.Revealed), s.BombCount)
}

// AllSafeRevealed reports whether every non-bomb cell has been revealed,
// which auto-cashes the game out.
func (s *Session) AllSafeRevealed() bool {
	return len(s.Revealed) == BoardCells-s.BombCount
}

// CashoutAmount is the payout for cashing out now: round(multiplier x bet).
func (s *Session) CashoutAmount() int64 {
	return int64(math.Round(s.CurrentMultiplier() * float64(s.Bet)))
}
