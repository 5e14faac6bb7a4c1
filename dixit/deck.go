/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package dixit

import (
	"fmt"
	"math/rand/v2"
)

// Deck owns the drawable deck and the discard pile.
type Deck struct {
	rng     *rand.Rand
	cards   []Card
	discard []Card
}

// NewDeck returns an empty deck that shuffles with rng.
func NewDeck(rng *rand.Rand) *Deck {
	return &Deck{rng: rng}
}

func (d *Deck) shuffle(cards []Card) {
	d.rng.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
}

// DealInitial shuffles every card into the deck and deals handSize cards to
// each player in seat order.
func (d *Deck) DealInitial(players []*Player, handSize int, cards []Card) error {
	need := len(players) * handSize
	if len(cards) < need {
		return fmt.Errorf("%w: have %d, need %d for %d players with %d cards each",
			ErrInsufficientCards, len(cards), need, len(players), handSize)
	}

	d.cards = make([]Card, len(cards))
	copy(d.cards, cards)
	d.discard = nil
	d.shuffle(d.cards)

	for _, p := range players {
		p.hand = make([]Card, 0, handSize)
		for range handSize {
			c, err := d.Draw()
			if err != nil {
				return err
			}
			p.hand = append(p.hand, c)
		}
	}

	return nil
}

// Draw removes and returns one card. An empty deck is refilled from the
// discard pile first.
func (d *Deck) Draw() (Card, error) {
	if len(d.cards) == 0 {
		if len(d.discard) == 0 {
			return Card{}, ErrEmptyDeck
		}
		d.refill()
	}

	last := len(d.cards) - 1
	c := d.cards[last]
	d.cards = d.cards[:last]

	return c, nil
}

// Recycle moves cards onto the discard pile.
func (d *Deck) Recycle(cards ...Card) {
	d.discard = append(d.discard, cards...)
}

// ReplenishIfNeeded shuffles the discard pile into the deck when fewer cards
// remain than there are players. It reports whether it did so.
func (d *Deck) ReplenishIfNeeded(playerCount int) bool {
	if len(d.cards) >= playerCount || len(d.discard) == 0 {
		return false
	}
	d.refill()
	return true
}

func (d *Deck) refill() {
	d.shuffle(d.discard)
	d.cards = append(d.cards, d.discard...)
	d.discard = nil
}

// Len returns the number of drawable cards.
func (d *Deck) Len() int {
	return len(d.cards)
}

// DiscardLen returns the number of cards on the discard pile.
func (d *Deck) DiscardLen() int {
	return len(d.discard)
}
