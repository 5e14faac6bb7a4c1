/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package dixit implements the round engine for a storytelling card game:
// the turn state machine, concurrent collection of contributions and votes,
// the deck and discard lifecycle, and scoring.
package dixit

import "fmt"

// Card is an immutable catalog card. Identity is by Key.
type Card struct {
	Key   int
	Image string // opaque reference, e.g. a file path
}

func (c Card) String() string {
	return fmt.Sprintf("#%d", c.Key)
}

// Catalog supplies the full set of cards for a game.
type Catalog interface {
	FindCard(key int) (Card, error)
	AllCards() []Card
}

// TableEntry pairs a card on the table with the seat that put it there.
type TableEntry struct {
	Card Card
	Seat int
}

// Vote records which card a seat voted for.
type Vote struct {
	Seat int
	Card Card
}

// indexCard returns the position of the card with c's key, or -1.
func indexCard(cards []Card, c Card) int {
	for i, x := range cards {
		if x.Key == c.Key {
			return i
		}
	}
	return -1
}

func removeCard(cards []Card, c Card) ([]Card, bool) {
	for i, x := range cards {
		if x.Key == c.Key {
			return append(cards[:i], cards[i+1:]...), true
		}
	}
	return cards, false
}
