/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package agent provides decision strategies for seats at a storyteller
// table: random bots, Lua-scripted bots, and bots backed by a chat
// completion model.
package agent

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/Seednode/storyteller/dixit"
)

var sampleClues = []string{
	"a door left open",
	"the last lantern",
	"where the map ends",
	"borrowed wings",
	"quiet thunder",
	"a promise kept too long",
	"upside-down morning",
	"the smallest giant",
}

// Random picks uniformly among its candidates and tells one of a handful of
// stock clues.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

var _ dixit.Agent = (*Random)(nil)

// NewRandom returns a Random agent seeded with seed.
func NewRandom(seed uint64) *Random {
	return &Random{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (r *Random) Describe(_ context.Context, _ dixit.Card) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return sampleClues[r.rng.IntN(len(sampleClues))], nil
}

func (r *Random) Choose(_ context.Context, _ string, candidates []dixit.Card) (dixit.Card, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return candidates[r.rng.IntN(len(candidates))], nil
}
