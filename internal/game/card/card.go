// Package card provides playing cards, decks, and 5-card hand evaluation.
package card

import (
	"fmt"
	"math/rand"
)

// Suit of a playing card.
type Suit string

// The four suits.
const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Diamonds Suit = "♦"
	Clubs    Suit = "♣"
)

// Suits lists all four suits in deck order.
var Suits = []Suit{Spades, Hearts, Diamonds, Clubs}

// Rank values. Ace is high (14); the ace-low straight is special-cased in
// the evaluator.
const (
	RankJack  = 11
	RankQueen = 12
	RankKing  = 13
	RankAce   = 14
)

// Card is an immutable rank+suit pair. Rank is 2-10 for number cards,
// 11-14 for J, Q, K, A.
type Card struct {
	Rank int  `json:"rank"`
	Suit Suit `json:"suit"`
}

// String renders a card like "A♠" or "10♥".
func (c Card) String() string {
	return rankName(c.Rank) + string(c.Suit)
}

func rankName(rank int) string {
	switch rank {
	case RankJack:
		return "J"
	case RankQueen:
		return "Q"
	case RankKing:
		return "K"
	case RankAce:
		return "A"
	default:
		return fmt.Sprintf("%d", rank)
	}
}

// ParseRank converts a rank name ("A", "K", "10", "7") back to its value.
func ParseRank(name string) (int, bool) {
	switch name {
	case "J":
		return RankJack, true
	case "Q":
		return RankQueen, true
	case "K":
		return RankKing, true
	case "A":
		return RankAce, true
	}
	var rank int
	if _, err := fmt.Sscanf(name, "%d", &rank); err != nil {
		return 0, false
	}
	if rank < 2 || rank > 10 {
		return 0, false
	}
	return rank, true
}

// Parse converts a card name like "A♠" or "10♥" back to a Card.
func Parse(name string) (Card, bool) {
	if len(name) < 2 {
		return Card{}, false
	}
	for _, suit := range Suits {
		s := string(suit)
		if len(name) > len(s) && name[len(name)-len(s):] == s {
			rank, ok := ParseRank(name[:len(name)-len(s)])
			if !ok {
				return Card{}, false
			}
			return Card{Rank: rank, Suit: suit}, true
		}
	}
	return Card{}, false
}

// ChipValue is the card game's base chip worth of a card: number cards are
// face value, 10/J/Q are 10, K is 13, A is 11.
func (c Card) ChipValue() int {
	switch {
	case c.Rank == RankAce:
		return 11
	case c.Rank == RankKing:
		return 13
	case c.Rank >= 10:
		return 10
	default:
		return c.Rank
	}
}

// NewDeck returns the 52 distinct cards in a fixed order.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, suit := range Suits {
		for rank := 2; rank <= RankAce; rank++ {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	return deck
}

// NewShuffledDeck returns the 52 cards in uniformly random order.
func NewShuffledDeck(rng *rand.Rand) []Card {
	deck := NewDeck()
	rng.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// Draw removes and returns the top card. Panics on an empty deck; callers
// deal at most a bounded number of cards from a 52-card deck.
func Draw(deck []Card) (Card, []Card) {
	return deck[0], deck[1:]
}
