/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package history

import (
	"context"

	"github.com/Seednode/storyteller/dixit"
)

// Recorder writes a game's turns and final standings to a Store as they
// happen. Write failures go to OnError rather than interrupting the game.
type Recorder struct {
	dixit.NopObserver

	OnError func(error)

	ctx    context.Context
	store  *Store
	id     string
	scores []int
}

var _ dixit.Observer = (*Recorder)(nil)

// NewRecorder creates a stored game for players and returns a recorder for
// it. Turns that finish after ctx is canceled are still written.
func NewRecorder(ctx context.Context, store *Store, seed uint64, players []string, onError func(error)) (*Recorder, error) {
	id, err := store.CreateGame(ctx, seed, players)
	if err != nil {
		return nil, err
	}

	if onError == nil {
		onError = func(error) {}
	}

	return &Recorder{
		OnError: onError,
		ctx:     context.WithoutCancel(ctx),
		store:   store,
		id:      id,
		scores:  make([]int, len(players)),
	}, nil
}

// ID returns the stored game's id.
func (r *Recorder) ID() string {
	return r.id
}

func (r *Recorder) OnRound(sum dixit.RoundSummary) {
	for i, d := range sum.Deltas {
		if i < len(r.scores) {
			r.scores[i] += d
		}
	}

	scores := make([]int, len(r.scores))
	copy(scores, r.scores)

	if err := r.store.RecordRound(r.ctx, r.id, sum, scores); err != nil {
		r.OnError(err)
	}
}

func (r *Recorder) OnGameOver(standings []dixit.Standing) {
	if err := r.store.FinishGame(r.ctx, r.id, standings); err != nil {
		r.OnError(err)
	}
}
