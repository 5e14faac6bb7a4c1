/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package dixit

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"
	"strings"
	"time"
)

const (
	DefaultHandSize  = 6
	DefaultThreshold = 30
	MinPlayers       = 3

	// FallbackClue replaces a clue the storyteller failed to produce.
	FallbackClue = "something indescribable"
)

// Options tunes a Game. Zero values select the defaults.
type Options struct {
	HandSize        int
	Threshold       int
	Rand            *rand.Rand
	DecisionTimeout time.Duration
	Observer        Observer
}

// State is a snapshot of the round counters.
type State struct {
	Turn        int
	Round       int
	Storyteller int
	Phase       Phase
	DeckSize    int
	DiscardSize int
}

// Standing is one line of the scoreboard.
type Standing struct {
	Seat  int
	Name  string
	Score int
}

// RoundSummary describes one completed storyteller turn. Table is in the
// shuffled order shown to voters, Votes are in seat order, and Deltas are
// indexed by seat.
type RoundSummary struct {
	Turn            int
	Round           int
	Storyteller     int
	StorytellerName string
	StorytellerCard Card
	Clue            string
	Table           []TableEntry
	Votes           []Vote
	Deltas          []int
	Incidents       []Incident
}

// Game is the round controller. It is not safe for concurrent use; callers
// serialise AdvanceRound.
type Game struct {
	players []*Player
	deck    *Deck
	rng     *rand.Rand
	opts    Options
	obs     Observer

	total       int
	turn        int
	round       int
	storyteller int
	phase       Phase
	table       []TableEntry

	err error
}

// NewGame deals the opening hands and returns a game ready for its first
// round.
func NewGame(players []*Player, cards []Card, opts Options) (*Game, error) {
	if len(players) < MinPlayers {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewPlayers, len(players))
	}
	if opts.HandSize <= 0 {
		opts.HandSize = DefaultHandSize
	}
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultThreshold
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Observer == nil {
		opts.Observer = NopObserver{}
	}

	seen := make(map[int]bool, len(cards))
	for _, c := range cards {
		if seen[c.Key] {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateCard, c.Key)
		}
		seen[c.Key] = true
	}

	g := &Game{
		players: players,
		deck:    NewDeck(opts.Rand),
		rng:     opts.Rand,
		opts:    opts,
		obs:     opts.Observer,
		total:   len(cards),
		round:   1,
		phase:   PhaseSetup,
	}

	for _, p := range players {
		p.score = 0
	}

	if err := g.deck.DealInitial(players, opts.HandSize, cards); err != nil {
		return nil, err
	}

	if err := g.checkInvariants(); err != nil {
		return nil, err
	}

	return g, nil
}

// Players returns the seats in turn order.
func (g *Game) Players() []*Player {
	return g.players
}

// State returns the current counters.
func (g *Game) State() State {
	return State{
		Turn:        g.turn,
		Round:       g.round,
		Storyteller: g.storyteller,
		Phase:       g.phase,
		DeckSize:    g.deck.Len(),
		DiscardSize: g.deck.DiscardLen(),
	}
}

// CardCount returns the number of cards in every location combined.
func (g *Game) CardCount() int {
	n := g.deck.Len() + g.deck.DiscardLen() + len(g.table)
	for _, p := range g.players {
		n += len(p.hand)
	}
	return n
}

// IsGameOver reports whether any score has reached the threshold.
func (g *Game) IsGameOver() bool {
	for _, p := range g.players {
		if p.score >= g.opts.Threshold {
			return true
		}
	}
	return false
}

// Standings returns every seat ordered by descending score, ties in seat
// order.
func (g *Game) Standings() []Standing {
	out := make([]Standing, len(g.players))
	for i, p := range g.players {
		out[i] = Standing{Seat: i, Name: p.Name, Score: p.score}
	}
	slices.SortStableFunc(out, func(a, b Standing) int {
		return cmp.Compare(b.Score, a.Score)
	})
	return out
}

// Winners returns the seats sharing the highest score.
func (g *Game) Winners() []Standing {
	standings := g.Standings()
	best := standings[0].Score
	n := 1
	for n < len(standings) && standings[n].Score == best {
		n++
	}
	return standings[:n]
}

// Run advances rounds until the game is over.
func (g *Game) Run(ctx context.Context) error {
	for {
		if _, err := g.AdvanceRound(ctx); err != nil {
			if errors.Is(err, ErrGameOver) {
				return nil
			}
			return err
		}
	}
}

func (g *Game) setPhase(p Phase) {
	g.phase = p
	g.obs.OnPhase(g.State())
}

func (g *Game) fail(err error) (RoundSummary, error) {
	g.err = err
	return RoundSummary{}, err
}

// abandon undoes a turn whose context ended before every decision was in.
// Hands are untouched until cleanup, so clearing the table restores the
// state the turn started from.
func (g *Game) abandon(phase Phase, err error) (RoundSummary, error) {
	g.turn--
	g.table = nil
	g.phase = phase
	return RoundSummary{}, fmt.Errorf("turn %d abandoned: %w", g.turn+1, err)
}

// Observe adds observers after the ones given in Options. They are notified
// in the order added.
func (g *Game) Observe(obs ...Observer) {
	g.obs = append(Observers{g.obs}, obs...)
}

// AdvanceRound plays one storyteller turn to completion. It returns
// ErrGameOver once a score has reached the threshold, and any fatal deck or
// invariant error on every call after it first occurs. If ctx ends before
// every decision is in, the turn is abandoned without scoring and ctx's
// error is returned; the game may be advanced again later.
func (g *Game) AdvanceRound(ctx context.Context) (RoundSummary, error) {
	if g.err != nil {
		return RoundSummary{}, g.err
	}
	if g.phase == PhaseGameOver {
		return RoundSummary{}, ErrGameOver
	}
	if g.IsGameOver() {
		g.setPhase(PhaseGameOver)
		g.obs.OnGameOver(g.Standings())
		return RoundSummary{}, ErrGameOver
	}
	if err := ctx.Err(); err != nil {
		return RoundSummary{}, err
	}
	if err := g.checkInvariants(); err != nil {
		return g.fail(err)
	}

	prev := g.phase
	g.turn++
	seat := g.storyteller
	teller := g.players[seat]
	sum := RoundSummary{
		Turn:            g.turn,
		Round:           g.round,
		Storyteller:     seat,
		StorytellerName: teller.Name,
	}

	g.setPhase(PhaseStorytellerSelects)
	card := teller.hand[0]
	clue, err := invoke(ctx, g.opts.DecisionTimeout, func(ctx context.Context) (string, error) {
		return teller.Agent.Describe(ctx, card)
	})
	if ctx.Err() != nil {
		return g.abandon(prev, ctx.Err())
	}
	clue = strings.TrimSpace(clue)
	if err == nil && clue == "" {
		err = errors.New("empty clue")
	}
	if err != nil {
		clue = FallbackClue
		sum.Incidents = append(sum.Incidents, g.incident(seat, err, clue))
	}
	sum.StorytellerCard = card
	sum.Clue = clue
	g.table = []TableEntry{{Card: card, Seat: seat}}

	g.setPhase(PhaseContribution)
	tasks := make([]task, 0, len(g.players)-1)
	for i, p := range g.others(seat) {
		tasks = append(tasks, task{seat: i, player: p, candidates: p.Hand()})
	}
	contributions := collect(ctx, clue, tasks, g.opts.DecisionTimeout)
	if ctx.Err() != nil {
		return g.abandon(prev, ctx.Err())
	}
	for i, r := range contributions {
		if r.err != nil {
			r.card = g.fallback(tasks[i].candidates)
			sum.Incidents = append(sum.Incidents, g.incident(r.seat, r.err, r.card.String()))
		}
		g.table = append(g.table, TableEntry{Card: r.card, Seat: r.seat})
	}

	g.setPhase(PhaseTableShuffle)
	g.rng.Shuffle(len(g.table), func(i, j int) { g.table[i], g.table[j] = g.table[j], g.table[i] })

	g.setPhase(PhaseVoting)
	tasks = tasks[:0]
	for i, p := range g.others(seat) {
		candidates := make([]Card, 0, len(g.table)-1)
		for _, e := range g.table {
			if e.Seat != i {
				candidates = append(candidates, e.Card)
			}
		}
		tasks = append(tasks, task{seat: i, player: p, candidates: candidates})
	}
	ballots := collect(ctx, clue, tasks, g.opts.DecisionTimeout)
	if ctx.Err() != nil {
		return g.abandon(prev, ctx.Err())
	}
	votes := make([]Vote, 0, len(tasks))
	for i, r := range ballots {
		if r.err != nil {
			r.card = g.fallback(tasks[i].candidates)
			sum.Incidents = append(sum.Incidents, g.incident(r.seat, r.err, r.card.String()))
		}
		votes = append(votes, Vote{Seat: r.seat, Card: r.card})
	}

	g.setPhase(PhaseScoring)
	deltas := Score(seat, card, g.table, votes, len(g.players))
	for i, d := range deltas {
		g.players[i].score += d
	}

	sum.Table = make([]TableEntry, len(g.table))
	copy(sum.Table, g.table)
	sum.Votes = votes
	sum.Deltas = deltas

	g.setPhase(PhaseCleanup)
	if err := g.cleanup(); err != nil {
		return g.fail(err)
	}
	if err := g.checkInvariants(); err != nil {
		return g.fail(err)
	}

	g.storyteller++
	if g.storyteller == len(g.players) {
		g.storyteller = 0
		g.round++
	}

	g.obs.OnRound(sum)

	return sum, nil
}

// others yields every seat except skip, in seat order.
func (g *Game) others(skip int) iter.Seq2[int, *Player] {
	return func(yield func(int, *Player) bool) {
		for i, p := range g.players {
			if i == skip {
				continue
			}
			if !yield(i, p) {
				return
			}
		}
	}
}

func (g *Game) fallback(candidates []Card) Card {
	return candidates[g.rng.IntN(len(candidates))]
}

func (g *Game) incident(seat int, err error, fallback string) Incident {
	i := Incident{
		Turn:     g.turn,
		Phase:    g.phase,
		Seat:     seat,
		Player:   g.players[seat].Name,
		Err:      err,
		Fallback: fallback,
	}
	g.obs.OnIncident(i)
	return i
}

func (g *Game) cleanup() error {
	cards := make([]Card, 0, len(g.table))
	for _, e := range g.table {
		p := g.players[e.Seat]
		hand, ok := removeCard(p.hand, e.Card)
		if !ok {
			return fmt.Errorf("%w: card %s on the table is not in %s's hand", ErrInvariant, e.Card, p.Name)
		}
		p.hand = hand
		cards = append(cards, e.Card)
	}

	g.deck.Recycle(cards...)
	g.table = nil
	g.deck.ReplenishIfNeeded(len(g.players))

	for _, p := range g.players {
		c, err := g.deck.Draw()
		if err != nil {
			return fmt.Errorf("deal to %s: %w", p.Name, err)
		}
		p.hand = append(p.hand, c)
	}

	return nil
}

// checkInvariants verifies that every card is in exactly one location and
// that every hand is full.
func (g *Game) checkInvariants() error {
	if n := g.CardCount(); n != g.total {
		return fmt.Errorf("%w: %d cards in play, expected %d", ErrInvariant, n, g.total)
	}

	seen := make(map[int]bool, g.total)
	mark := func(c Card) error {
		if seen[c.Key] {
			return fmt.Errorf("%w: card %s is in two locations", ErrInvariant, c)
		}
		seen[c.Key] = true
		return nil
	}

	for _, c := range g.deck.cards {
		if err := mark(c); err != nil {
			return err
		}
	}
	for _, c := range g.deck.discard {
		if err := mark(c); err != nil {
			return err
		}
	}
	for _, e := range g.table {
		if err := mark(e.Card); err != nil {
			return err
		}
	}
	for _, p := range g.players {
		if len(p.hand) != g.opts.HandSize {
			return fmt.Errorf("%w: %s holds %d cards, expected %d", ErrInvariant, p.Name, len(p.hand), g.opts.HandSize)
		}
		for _, c := range p.hand {
			if err := mark(c); err != nil {
				return err
			}
		}
	}

	return nil
}
