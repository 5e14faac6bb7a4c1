/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package dixit

import (
	"errors"
	"fmt"
)

var (
	// ErrInsufficientCards means the catalog cannot fill every starting hand.
	ErrInsufficientCards = errors.New("not enough cards for the initial deal")

	// ErrEmptyDeck means both the deck and the discard pile are exhausted.
	ErrEmptyDeck = errors.New("deck and discard pile are both empty")

	// ErrContractViolation is reported when an agent returns a card that was
	// not among its candidates.
	ErrContractViolation = errors.New("agent chose a card outside its candidates")

	// ErrInvariant marks an internal consistency failure. It is never
	// expected in correct operation.
	ErrInvariant = errors.New("invariant violated")

	// ErrTooFewPlayers is returned by NewGame for fewer than MinPlayers seats.
	ErrTooFewPlayers = fmt.Errorf("at least %d players are required", MinPlayers)

	// ErrDuplicateCard is returned by NewGame when two cards share a key.
	ErrDuplicateCard = errors.New("duplicate card key")

	// ErrGameOver is returned by AdvanceRound once a score has reached the
	// threshold.
	ErrGameOver = errors.New("game is over")
)
