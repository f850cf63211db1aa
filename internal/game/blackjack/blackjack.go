// Package blackjack implements the blackjack game with split and double.
// Dealer stands on all 17s; a dealt 21 pays 2.5x unless the dealer also
// holds 21, which is a push.
package blackjack

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"chat-casino-bot/internal/game/card"
)

// Errors for the blackjack game.
var (
	ErrNotActive    = errors.New("game is not active")
	ErrCannotDouble = errors.New("double is only allowed on a two-card hand before splitting")
	ErrCannotSplit  = errors.New("split requires a pair as the first two cards and no prior double")
)

// Hand identifiers in settlement results.
const (
	HandMain  = "main"
	HandSplit = "split"
)

// Result labels.
const (
	LabelBlackjack = "blackjack"
	LabelWin       = "win"
	LabelPush      = "push"
	LabelLose      = "lose"
	LabelBust      = "bust"
)

// Session is the persisted state of one blackjack game.
type Session struct {
	Username   string      `json:"username"`
	Bet        int64       `json:"bet"` // original stake per hand
	Player     []card.Card `json:"player"`
	Split      []card.Card `json:"split,omitempty"`
	Dealer     []card.Card `json:"dealer"`
	Deck       []card.Card `json:"deck"`
	IsSplit    bool        `json:"is_split"`
	Doubled    bool        `json:"doubled"`
	ActiveHand string      `json:"active_hand"` // HandMain or HandSplit
	MainBusted bool        `json:"main_busted"`
	Active     bool        `json:"active"`
}

// HandResult is the settlement of one hand.
type HandResult struct {
	Hand   string `json:"hand"`
	Value  int    `json:"value"`
	Stake  int64  `json:"stake"`
	Payout int64  `json:"payout"` // amount credited back, 0 on a loss
	Label  string `json:"label"`
}

// Settlement finalizes a game: one result per live hand plus the dealer's
// final value. TotalPayout is the sum credited back to the player.
type Settlement struct {
	Results     []HandResult
	DealerValue int
	TotalPayout int64
}

// Value returns the best blackjack value of a hand. Aces count 11, demoted
// to 1 one at a time while the total exceeds 21. soft reports whether an
// ace still counts as 11.
func Value(hand []card.Card) (value int, soft bool) {
	aces := 0
	for _, c := range hand {
		switch {
		case c.Rank == card.RankAce:
			value += 11
			aces++
		case c.Rank >= 10:
			value += 10
		default:
			value += c.Rank
		}
	}
	for value > 21 && aces > 0 {
		value -= 10
		aces--
	}
	return value, aces > 0
}

// Display renders a hand's value for the chat message: "low/high" when a
// soft hand has two usable totals, plain "value" otherwise.
func Display(hand []card.Card) string {
	value, soft := Value(hand)
	if soft && value != 21 {
		return fmt.Sprintf("%d/%d", value-10, value)
	}
	return fmt.Sprintf("%d", value)
}

// IsBlackjack reports a two-card 21.
func IsBlackjack(hand []card.Card) bool {
	v, _ := Value(hand)
	return len(hand) == 2 && v == 21
}

// Start deals a new game: two cards to the player, two to the dealer. If
// the player is dealt 21 the game settles immediately and the returned
// Settlement is non-nil (the session must not be saved in that case).
func Start(rng *rand.Rand, username string, bet int64) (*Session, *Settlement) {
	return start(username, bet, card.NewShuffledDeck(rng))
}

func start(username string, bet int64, deck []card.Card) (*Session, *Settlement) {
	s := &Session{
		Username:   username,
		Bet:        bet,
		ActiveHand: HandMain,
		Active:     true,
	}

	var c card.Card
	c, deck = card.Draw(deck)
	s.Player = append(s.Player, c)
	c, deck = card.Draw(deck)
	s.Dealer = append(s.Dealer, c)
	c, deck = card.Draw(deck)
	s.Player = append(s.Player, c)
	c, deck = card.Draw(deck)
	s.Dealer = append(s.Dealer, c)
	s.Deck = deck

	if IsBlackjack(s.Player) {
		s.Active = false
		dealerValue, _ := Value(s.Dealer)
		if IsBlackjack(s.Dealer) {
			return s, &Settlement{
				Results:     []HandResult{{Hand: HandMain, Value: 21, Stake: bet, Payout: bet, Label: LabelPush}},
				DealerValue: dealerValue,
				TotalPayout: bet,
			}
		}
		payout := int64(math.Round(2.5 * float64(bet)))
		return s, &Settlement{
			Results:     []HandResult{{Hand: HandMain, Value: 21, Stake: bet, Payout: payout, Label: LabelBlackjack}},
			DealerValue: dealerValue,
			TotalPayout: payout,
		}
	}

	return s, nil
}

func (s *Session) activeCards() *[]card.Card {
	if s.ActiveHand == HandSplit {
		return &s.Split
	}
	return &s.Player
}

func (s *Session) draw() card.Card {
	var c card.Card
	c, s.Deck = card.Draw(s.Deck)
	return c
}

// Hit adds a card to the active hand. A bust ends that hand as an
// immediate loss; the returned Settlement is non-nil when the whole game
// is over.
func (s *Session) Hit() (*Settlement, error) {
	if !s.Active {
		return nil, ErrNotActive
	}

	hand := s.activeCards()
	*hand = append(*hand, s.draw())

	value, _ := Value(*hand)
	if value <= 21 {
		return nil, nil
	}

	// Busted.
	if s.ActiveHand == HandMain && s.IsSplit {
		s.MainBusted = true
		s.ActiveHand = HandSplit
		return nil, nil
	}
	return s.resolve(), nil
}

// CanDouble reports whether doubling is currently legal: a two-card hand
// with no prior split or double. Callers check it before staking the
// second bet.
func (s *Session) CanDouble() error {
	if !s.Active {
		return ErrNotActive
	}
	if s.IsSplit || s.Doubled || len(s.Player) != 2 {
		return ErrCannotDouble
	}
	return nil
}

// CanSplit reports whether splitting is currently legal: the first two
// cards share a rank and no double or split has happened. Callers check it
// before staking the second bet.
func (s *Session) CanSplit() error {
	if !s.Active {
		return ErrNotActive
	}
	if s.IsSplit || s.Doubled || len(s.Player) != 2 || s.Player[0].Rank != s.Player[1].Rank {
		return ErrCannotSplit
	}
	return nil
}

// Double doubles the stake, draws exactly one card, and forces a stand.
// The caller debits the additional stake before calling.
func (s *Session) Double() (*Settlement, error) {
	if err := s.CanDouble(); err != nil {
		return nil, err
	}

	s.Doubled = true
	s.Player = append(s.Player, s.draw())
	return s.resolve(), nil
}

// SplitHand splits a pair into two hands, dealing one card to each. The
// caller debits the additional stake before calling.
func (s *Session) SplitHand() error {
	if err := s.CanSplit(); err != nil {
		return err
	}

	s.IsSplit = true
	s.Split = []card.Card{s.Player[1]}
	s.Player = s.Player[:1]
	s.Player = append(s.Player, s.draw())
	s.Split = append(s.Split, s.draw())
	return nil
}

// Stand finishes the active hand. With an unplayed split hand the turn
// passes to it and the game continues; otherwise the dealer plays and the
// game settles.
func (s *Session) Stand() (*Settlement, error) {
	if !s.Active {
		return nil, ErrNotActive
	}

	if s.ActiveHand == HandMain && s.IsSplit {
		s.ActiveHand = HandSplit
		return nil, nil
	}
	return s.resolve(), nil
}

// resolve plays out the dealer and settles every hand independently.
func (s *Session) resolve() *Settlement {
	s.Active = false

	hands := []struct {
		name  string
		cards []card.Card
		stake int64
	}{
		{HandMain, s.Player, s.mainStake()},
	}
	if s.IsSplit {
		hands = append(hands, struct {
			name  string
			cards []card.Card
			stake int64
		}{HandSplit, s.Split, s.Bet})
	}

	// The dealer only draws when a hand is still live.
	anyLive := false
	for _, h := range hands {
		if v, _ := Value(h.cards); v <= 21 {
			anyLive = true
		}
	}
	if anyLive {
		for {
			v, _ := Value(s.Dealer)
			if v >= 17 {
				break
			}
			s.Dealer = append(s.Dealer, s.draw())
		}
	}
	dealerValue, _ := Value(s.Dealer)

	settlement := &Settlement{DealerValue: dealerValue}
	for _, h := range hands {
		value, _ := Value(h.cards)
		result := HandResult{Hand: h.name, Value: value, Stake: h.stake}

		switch {
		case value > 21:
			result.Label = LabelBust
		case dealerValue > 21 || value > dealerValue:
			result.Label = LabelWin
			result.Payout = 2 * h.stake
		case value == dealerValue:
			result.Label = LabelPush
			result.Payout = h.stake
		default:
			result.Label = LabelLose
		}

		settlement.Results = append(settlement.Results, result)
		settlement.TotalPayout += result.Payout
	}

	return settlement
}

func (s *Session) mainStake() int64 {
	if s.Doubled {
		return 2 * s.Bet
	}
	return s.Bet
}
