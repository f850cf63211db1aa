package card

import "sort"

// HandRank classifies a 5-card hand. The numeric value doubles as the card
// game's base multiplier, High Card = 1 up to Royal Flush = 10.
type HandRank int

// Hand ranks, weakest first.
const (
	HighCard HandRank = iota + 1
	Pair
	TwoPair
	ThreeOfAKind
	Straight
	Flush
	FullHouse
	FourOfAKind
	StraightFlush
	RoyalFlush
)

var handRankNames = map[HandRank]string{
	HighCard:      "High Card",
	Pair:          "Pair",
	TwoPair:       "Two Pair",
	ThreeOfAKind:  "Three of a Kind",
	Straight:      "Straight",
	Flush:         "Flush",
	FullHouse:     "Full House",
	FourOfAKind:   "Four of a Kind",
	StraightFlush: "Straight Flush",
	RoyalFlush:    "Royal Flush",
}

// String returns the display name of the rank.
func (hr HandRank) String() string {
	return handRankNames[hr]
}

// Multiplier returns the card game's base multiplier for the rank.
func (hr HandRank) Multiplier() int {
	return int(hr)
}

// Evaluate classifies a 5-card hand using standard poker rules. The ace-low
// straight A-2-3-4-5 counts as a straight.
func Evaluate(hand []Card) HandRank {
	if len(hand) != 5 {
		return HighCard
	}

	ranks := make([]int, 5)
	flush := true
	for i, c := range hand {
		ranks[i] = c.Rank
		if c.Suit != hand[0].Suit {
			flush = false
		}
	}
	sort.Ints(ranks)

	counts := make(map[int]int, 5)
	for _, r := range ranks {
		counts[r]++
	}

	straight := isStraight(ranks)

	switch {
	case flush && straight && ranks[0] == 10:
		return RoyalFlush
	case flush && straight:
		return StraightFlush
	case hasCount(counts, 4):
		return FourOfAKind
	case hasCount(counts, 3) && hasCount(counts, 2):
		return FullHouse
	case flush:
		return Flush
	case straight:
		return Straight
	case hasCount(counts, 3):
		return ThreeOfAKind
	case pairCount(counts) == 2:
		return TwoPair
	case pairCount(counts) == 1:
		return Pair
	default:
		return HighCard
	}
}

// isStraight expects sorted ranks and recognizes the ace-low wheel
// {2,3,4,5,14}.
func isStraight(sorted []int) bool {
	if sorted[0] == 2 && sorted[1] == 3 && sorted[2] == 4 && sorted[3] == 5 && sorted[4] == RankAce {
		return true
	}
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1]+1 {
			return false
		}
	}
	return true
}

func hasCount(counts map[int]int, n int) bool {
	for _, c := range counts {
		if c == n {
			return true
		}
	}
	return false
}

func pairCount(counts map[int]int) int {
	pairs := 0
	for _, c := range counts {
		if c == 2 {
			pairs++
		}
	}
	return pairs
}
