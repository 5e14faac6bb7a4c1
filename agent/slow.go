/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package agent

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Seednode/storyteller/dixit"
)

// Slow delays every decision of the wrapped agent by a random duration in
// [Min, Max].
type Slow struct {
	dixit.Agent
	Min, Max time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSlow wraps a with a delay between min and max.
func NewSlow(a dixit.Agent, min, max time.Duration, seed uint64) *Slow {
	if max < min {
		max = min
	}
	return &Slow{
		Agent: a,
		Min:   min,
		Max:   max,
		rng:   rand.New(rand.NewPCG(seed, seed+1)),
	}
}

func (s *Slow) delay() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := s.Min
	if span := s.Max - s.Min; span > 0 {
		d += time.Duration(s.rng.Int64N(int64(span) + 1))
	}
	return d
}

func (s *Slow) wait(ctx context.Context) error {
	t := time.NewTimer(s.delay())
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Slow) Describe(ctx context.Context, card dixit.Card) (string, error) {
	if err := s.wait(ctx); err != nil {
		return "", err
	}
	return s.Agent.Describe(ctx, card)
}

func (s *Slow) Choose(ctx context.Context, clue string, candidates []dixit.Card) (dixit.Card, error) {
	if err := s.wait(ctx); err != nil {
		return dixit.Card{}, err
	}
	return s.Agent.Choose(ctx, clue, candidates)
}
