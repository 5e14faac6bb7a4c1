/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package dixit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type task struct {
	seat       int
	player     *Player
	candidates []Card
}

type result struct {
	seat int
	card Card
	err  error
}

// collect asks every task's agent to choose among its candidates, one
// goroutine each, and returns once all of them have finished. Results are in
// task order; each worker only writes its own slot.
func collect(ctx context.Context, clue string, tasks []task, timeout time.Duration) []result {
	results := make([]result, len(tasks))

	var wg sync.WaitGroup
	for i, t := range tasks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = choose(ctx, clue, t, timeout)
		}()
	}
	wg.Wait()

	return results
}

func choose(ctx context.Context, clue string, t task, timeout time.Duration) result {
	offered := make([]Card, len(t.candidates))
	copy(offered, t.candidates)

	card, err := invoke(ctx, timeout, func(ctx context.Context) (Card, error) {
		return t.player.Agent.Choose(ctx, clue, offered)
	})
	if err != nil {
		return result{seat: t.seat, err: err}
	}
	i := indexCard(t.candidates, card)
	if i < 0 {
		return result{seat: t.seat, err: fmt.Errorf("%w: %s", ErrContractViolation, card)}
	}

	// Agents name a card by key; the table gets the engine's own value.
	return result{seat: t.seat, card: t.candidates[i]}
}

// invoke runs fn, turning a panic into an error. With a positive timeout fn
// runs on its own goroutine and is abandoned once the deadline passes.
func invoke[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	guarded := func(ctx context.Context) (out T, err error) {
		defer func() {
			if v := recover(); v != nil {
				err = fmt.Errorf("agent panicked: %v", v)
			}
		}()
		return fn(ctx)
	}

	if timeout <= 0 {
		return guarded(ctx)
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		val T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := guarded(ctx)
		done <- outcome{v, err}
	}()

	select {
	case o := <-done:
		return o.val, o.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("decision abandoned: %w", ctx.Err())
	}
}
