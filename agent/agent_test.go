package agent

import (
	"context"
	"testing"
	"time"

	"github.com/Seednode/storyteller/dixit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cards(keys ...int) []dixit.Card {
	out := make([]dixit.Card, len(keys))
	for i, k := range keys {
		out[i] = dixit.Card{Key: k}
	}
	return out
}

func TestRandom(t *testing.T) {
	ctx := context.Background()
	a, b := NewRandom(3), NewRandom(3)
	candidates := cards(4, 8, 15, 16, 23, 42)

	for range 50 {
		ca, err := a.Choose(ctx, "clue", candidates)
		require.NoError(t, err)
		cb, err := b.Choose(ctx, "clue", candidates)
		require.NoError(t, err)

		assert.Contains(t, candidates, ca)
		assert.Equal(t, ca, cb, "same seed, same choices")
	}

	clue, err := a.Describe(ctx, dixit.Card{Key: 1})
	require.NoError(t, err)
	assert.Contains(t, sampleClues, clue)
}

func TestSlow(t *testing.T) {
	s := NewSlow(NewRandom(1), 10*time.Millisecond, 30*time.Millisecond, 1)

	start := time.Now()
	c, err := s.Choose(context.Background(), "clue", cards(1, 2))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 10*time.Millisecond)
	assert.Contains(t, cards(1, 2), c)

	for range 20 {
		d := s.delay()
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.LessOrEqual(t, d, 30*time.Millisecond)
	}
}

func TestSlowHonorsContext(t *testing.T) {
	s := NewSlow(NewRandom(1), time.Hour, time.Hour, 1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := s.Describe(ctx, dixit.Card{Key: 1})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
