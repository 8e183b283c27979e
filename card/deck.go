package card

import (
	"errors"
	"math/rand"
)

var (
	ErrEmptyDeck         = errors.New("deck is empty")
	ErrInsufficientCards = errors.New("not enough cards in deck")
)

// Deck is an ordered sequence of cards with copy-on-deal semantics:
// Shuffle and Deal return new decks and never mutate their receiver.
// A Deck value can therefore be shared freely between snapshots.
type Deck []Card

// NewDeck returns all 52 cards in suit-major canonical order.
func NewDeck() Deck {
	d := make(Deck, 0, 52)
	for suit := Card(0x00); suit <= 0x30; suit += 0x10 {
		for rank := Card(1); rank <= 13; rank++ {
			d = append(d, suit+rank)
		}
	}
	return d
}

// Shuffle 返回洗过的新牌堆，不修改原牌堆。
// Fisher-Yates over a copy; the rng is injected so replays stay deterministic.
func (d Deck) Shuffle(rng *rand.Rand) Deck {
	out := make(Deck, len(d))
	copy(out, d)
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// DealOne returns the front card and the remaining deck.
func (d Deck) DealOne() (Card, Deck, error) {
	if len(d) == 0 {
		return CardInvalid, d, ErrEmptyDeck
	}
	rest := make(Deck, len(d)-1)
	copy(rest, d[1:])
	return d[0], rest, nil
}

// Deal returns the front n cards and the remaining deck.
// n == 0 deals nothing and returns the deck unchanged.
func (d Deck) Deal(n int) ([]Card, Deck, error) {
	if n < 0 || n > len(d) {
		return nil, d, ErrInsufficientCards
	}
	if n == 0 {
		return []Card{}, d, nil
	}
	dealt := make([]Card, n)
	copy(dealt, d[:n])
	rest := make(Deck, len(d)-n)
	copy(rest, d[n:])
	return dealt, rest, nil
}

func (d Deck) Count() int { return len(d) }
