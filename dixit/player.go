/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package dixit

import "context"

// Agent makes a player's decisions. Implementations may be slow and need not
// be deterministic. Choose must return one of the candidates.
type Agent interface {
	Describe(ctx context.Context, card Card) (string, error)
	Choose(ctx context.Context, clue string, candidates []Card) (Card, error)
}

// Player is a seat at the table. Its hand and score are owned by the Game.
type Player struct {
	Name  string
	Agent Agent

	hand  []Card
	score int
}

// NewPlayer returns a player with an empty hand and zero score.
func NewPlayer(name string, agent Agent) *Player {
	return &Player{Name: name, Agent: agent}
}

// Hand returns a copy of the player's current hand.
func (p *Player) Hand() []Card {
	out := make([]Card, len(p.hand))
	copy(out, p.hand)
	return out
}

// Score returns the player's accumulated score.
func (p *Player) Score() int {
	return p.score
}
