package cardgame

import "chat-casino-bot/internal/game/card"

// Joker is a scoring modifier the player picks at the start of a game.
// Apply returns the chip and multiplier bonuses it contributes for a hand.
type Joker struct {
	ID          int
	Name        string
	Description string
	Apply       func(hand []card.Card, rank card.HandRank) (chips, mult int)
}

func flat(chips, mult int) func([]card.Card, card.HandRank) (int, int) {
	return func([]card.Card, card.HandRank) (int, int) { return chips, mult }
}

func countCards(hand []card.Card, pred func(card.Card) bool) int {
	n := 0
	for _, c := range hand {
		if pred(c) {
			n++
		}
	}
	return n
}

func isFace(c card.Card) bool {
	return c.Rank >= card.RankJack && c.Rank <= card.RankKing
}

// jokerCatalogue is the fixed set of jokers. Ids 4, 5, 8 and 11 are present
// but never offered; their effects were disabled upstream and only the
// descriptive text survives.
var jokerCatalogue = []Joker{
	{ID: 1, Name: "Banker", Description: "+30 chips", Apply: flat(30, 0)},
	{ID: 2, Name: "Hustler", Description: "+4 mult", Apply: flat(0, 4)},
	{ID: 3, Name: "Heartthrob", Description: "+2 chips per heart", Apply: func(hand []card.Card, _ card.HandRank) (int, int) {
		return 2 * countCards(hand, func(c card.Card) bool { return c.Suit == card.Hearts }), 0
	}},
	{ID: 4, Name: "Echo", Description: "retrigger every scored card", Apply: nil},
	{ID: 5, Name: "Gambler", Description: "coin flip doubles or halves chips", Apply: nil},
	{ID: 6, Name: "Matchmaker", Description: "+20 chips with a pair or better", Apply: func(_ []card.Card, rank card.HandRank) (int, int) {
		if rank >= card.Pair {
			return 20, 0
		}
		return 0, 0
	}},
	{ID: 7, Name: "Royal Court", Description: "+1 mult per face card", Apply: func(hand []card.Card, _ card.HandRank) (int, int) {
		return 0, countCards(hand, isFace)
	}},
	{ID: 8, Name: "Mirror", Description: "copy the strongest joker", Apply: nil},
	{ID: 9, Name: "All-Rounder", Description: "+15 chips, +1 mult", Apply: flat(15, 1)},
	{ID: 10, Name: "Monochrome", Description: "+8 mult on a flush", Apply: func(_ []card.Card, rank card.HandRank) (int, int) {
		if rank == card.Flush || rank == card.StraightFlush || rank == card.RoyalFlush {
			return 0, 8
		}
		return 0, 0
	}},
	{ID: 11, Name: "Recycler", Description: "discards return to the deck", Apply: nil},
	{ID: 12, Name: "Commoner", Description: "+50 chips with no face cards", Apply: func(hand []card.Card, _ card.HandRank) (int, int) {
		if countCards(hand, isFace) == 0 {
			return 50, 0
		}
		return 0, 0
	}},
}

// offerableJokerIDs are the ids that can actually be dealt.
func offerableJokerIDs() []int {
	ids := make([]int, 0, len(jokerCatalogue))
	for _, j := range jokerCatalogue {
		if j.Apply != nil {
			ids = append(ids, j.ID)
		}
	}
	return ids
}

// JokerByID looks a joker up in the catalogue.
func JokerByID(id int) (Joker, bool) {
	for _, j := range jokerCatalogue {
		if j.ID == id {
			return j, true
		}
	}
	return Joker{}, false
}
