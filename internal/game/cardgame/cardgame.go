// Package cardgame implements the poker-scored card game: pick a joker,
// exchange cards up to twice, and cash a payout tier chosen by the final
// chips x mult score.
package cardgame

import (
	"errors"
	"math"
	"math/rand"

	"chat-casino-bot/internal/game/card"
)

// Phase of the game's state machine. Transitions only move forward:
// NEW -> JOKER_SELECTED -> CARDS_EXCHANGED -> GAME_OVER, with stand
// forcing GAME_OVER from any non-terminal phase.
type Phase string

// The four phases.
const (
	PhaseNew            Phase = "NEW"
	PhaseJokerSelected  Phase = "JOKER_SELECTED"
	PhaseCardsExchanged Phase = "CARDS_EXCHANGED"
	PhaseGameOver       Phase = "GAME_OVER"
)

// HandSize is the number of cards held.
const HandSize = 5

// jokerOffers is how many jokers the player chooses between.
const jokerOffers = 3

// Errors for the card game.
var (
	ErrGameOver        = errors.New("game is already over")
	ErrWrongPhase      = errors.New("action not allowed in current phase")
	ErrJokerNotOffered = errors.New("joker was not offered")
	ErrCardNotInHand   = errors.New("card is not in your hand")
	ErrNoCards         = errors.New("no cards named")
)

// Session is the persisted state of one card game.
type Session struct {
	Username     string      `json:"username"`
	Bet          int64       `json:"bet"`
	Hand         []card.Card `json:"hand"`
	Discards     []card.Card `json:"discards"`
	Deck         []card.Card `json:"deck"`
	Offered      []int       `json:"offered"`
	JokerID      int         `json:"joker_id"` // 0 = none selected
	Phase        Phase       `json:"phase"`
	DiscardsUsed int         `json:"discards_used"`
}

// Score is the final reckoning of a hand.
type Score struct {
	Chips      int     `json:"chips"`
	Mult       int     `json:"mult"`
	FinalScore int     `json:"final_score"`
	HandRank   string  `json:"hand_rank"`
	Tier       float64 `json:"tier"`     // payout multiplier applied to the bet
	Winnings   int64   `json:"winnings"` // amount credited back
}

// Start deals a 5-card hand from a shuffled deck and offers three distinct
// jokers. The stake is debited by the caller.
func Start(rng *rand.Rand, username string, bet int64) *Session {
	deck := card.NewShuffledDeck(rng)
	hand := make([]card.Card, HandSize)
	for i := range hand {
		hand[i], deck = card.Draw(deck)
	}

	pool := offerableJokerIDs()
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	offered := make([]int, jokerOffers)
	copy(offered, pool[:jokerOffers])

	return &Session{
		Username: username,
		Bet:      bet,
		Hand:     hand,
		Deck:     deck,
		Offered:  offered,
		Phase:    PhaseNew,
	}
}

// ChooseJoker records the joker selection. Legal exactly once, from NEW.
func (s *Session) ChooseJoker(id int) error {
	if s.Phase == PhaseGameOver {
		return ErrGameOver
	}
	if s.Phase != PhaseNew {
		return ErrWrongPhase
	}

	for _, offered := range s.Offered {
		if offered == id {
			s.JokerID = id
			s.Phase = PhaseJokerSelected
			return nil
		}
	}
	return ErrJokerNotOffered
}

// Discard exchanges the named cards for fresh ones from the deck, keeping
// each replacement in the discarded card's hand slot. The first discard
// moves to CARDS_EXCHANGED; the second ends the game and returns the score.
func (s *Session) Discard(names []string) (*Score, error) {
	if s.Phase == PhaseGameOver {
		return nil, ErrGameOver
	}
	if s.Phase != PhaseJokerSelected && s.Phase != PhaseCardsExchanged {
		return nil, ErrWrongPhase
	}
	if len(names) == 0 {
		return nil, ErrNoCards
	}

	// Resolve all names before mutating anything.
	slots := make([]int, 0, len(names))
	taken := make(map[int]bool)
	for _, name := range names {
		c, ok := card.Parse(name)
		if !ok {
			return nil, ErrCardNotInHand
		}
		found := -1
		for i, held := range s.Hand {
			if held == c && !taken[i] {
				found = i
				break
			}
		}
		if found < 0 {
			return nil, ErrCardNotInHand
		}
		taken[found] = true
		slots = append(slots, found)
	}

	for _, slot := range slots {
		s.Discards = append(s.Discards, s.Hand[slot])
		s.Hand[slot], s.Deck = card.Draw(s.Deck)
	}

	s.DiscardsUsed++
	if s.Phase == PhaseJokerSelected {
		s.Phase = PhaseCardsExchanged
		return nil, nil
	}

	s.Phase = PhaseGameOver
	score := s.score()
	return &score, nil
}

// Stand ends the game from any non-terminal phase and returns the score.
func (s *Session) Stand() (*Score, error) {
	if s.Phase == PhaseGameOver {
		return nil, ErrGameOver
	}
	s.Phase = PhaseGameOver
	score := s.score()
	return &score, nil
}

// score evaluates the hand: chips are per-card base values plus joker chip
// bonuses, mult is the poker-rank multiplier plus joker mult bonuses.
func (s *Session) score() Score {
	rank := card.Evaluate(s.Hand)

	chips := 0
	for _, c := range s.Hand {
		chips += c.ChipValue()
	}
	mult := rank.Multiplier()

	if s.JokerID != 0 {
		if j, ok := JokerByID(s.JokerID); ok && j.Apply != nil {
			bonusChips, bonusMult := j.Apply(s.Hand, rank)
			chips += bonusChips
			mult += bonusMult
		}
	}

	final := chips * mult
	tier := PayoutTier(final)

	return Score{
		Chips:      chips,
		Mult:       mult,
		FinalScore: final,
		HandRank:   rank.String(),
		Tier:       tier,
		Winnings:   int64(math.Round(tier * float64(s.Bet))),
	}
}

// PayoutTier maps a final score to the bet multiplier credited back.
// Thresholds are half-open intervals.
func PayoutTier(finalScore int) float64 {
	switch {
	case finalScore < 120:
		return 0
	case finalScore < 150:
		return 0.5
	case finalScore < 200:
		return 2
	case finalScore < 400:
		return 3
	case finalScore < 600:
		return 5
	case finalScore < 1000:
		return 8
	case finalScore < 1400:
		return 12
	default:
		return 20
	}
}
