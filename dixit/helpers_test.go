package dixit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// lowestAgent always picks the candidate with the smallest key, after an
// optional random delay.
type lowestAgent struct {
	mu       sync.Mutex
	rng      *rand.Rand
	maxDelay time.Duration
}

func newLowestAgent(seed uint64, maxDelay time.Duration) *lowestAgent {
	return &lowestAgent{rng: rand.New(rand.NewPCG(seed, seed)), maxDelay: maxDelay}
}

func (a *lowestAgent) sleep() {
	if a.maxDelay <= 0 {
		return
	}
	a.mu.Lock()
	d := time.Duration(a.rng.Int64N(int64(a.maxDelay)))
	a.mu.Unlock()
	time.Sleep(d)
}

func (a *lowestAgent) Describe(_ context.Context, card Card) (string, error) {
	a.sleep()
	return fmt.Sprintf("clue for %d", card.Key), nil
}

func (a *lowestAgent) Choose(_ context.Context, _ string, candidates []Card) (Card, error) {
	a.sleep()
	return slices.MinFunc(candidates, func(x, y Card) int { return x.Key - y.Key }), nil
}

// randomAgent chooses uniformly.
type randomAgent struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func newRandomAgent(seed uint64) *randomAgent {
	return &randomAgent{rng: rand.New(rand.NewPCG(seed, ^seed))}
}

func (a *randomAgent) Describe(context.Context, Card) (string, error) {
	return "sample clue", nil
}

func (a *randomAgent) Choose(_ context.Context, _ string, candidates []Card) (Card, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return candidates[a.rng.IntN(len(candidates))], nil
}

// brokenAgent fails in the configured way.
type brokenAgent struct {
	mode string // "error", "panic", "outsider", "hang"
}

var errBroken = errors.New("agent is broken")

func (a brokenAgent) Describe(ctx context.Context, _ Card) (string, error) {
	switch a.mode {
	case "panic":
		panic("describe exploded")
	case "outsider":
		return "   ", nil
	case "hang":
		<-ctx.Done()
		return "", ctx.Err()
	}
	return "", errBroken
}

func (a brokenAgent) Choose(ctx context.Context, _ string, _ []Card) (Card, error) {
	switch a.mode {
	case "panic":
		panic("choose exploded")
	case "outsider":
		return Card{Key: -1}, nil
	case "hang":
		time.Sleep(time.Second)
		return Card{}, ctx.Err()
	}
	return Card{}, errBroken
}

type recordingObserver struct {
	phases    []Phase
	incidents []Incident
	rounds    []RoundSummary
	finals    [][]Standing
}

func (o *recordingObserver) OnPhase(s State)         { o.phases = append(o.phases, s.Phase) }
func (o *recordingObserver) OnIncident(i Incident)   { o.incidents = append(o.incidents, i) }
func (o *recordingObserver) OnRound(r RoundSummary)  { o.rounds = append(o.rounds, r) }
func (o *recordingObserver) OnGameOver(s []Standing) { o.finals = append(o.finals, s) }

func testCards(n int) []Card {
	cards := make([]Card, n)
	for i := range cards {
		cards[i] = Card{Key: i + 1, Image: fmt.Sprintf("%d.png", i+1)}
	}
	return cards
}

func testPlayers(agents ...Agent) []*Player {
	players := make([]*Player, len(agents))
	for i, a := range agents {
		players[i] = NewPlayer(fmt.Sprintf("p%d", i), a)
	}
	return players
}

func seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed+1))
}
