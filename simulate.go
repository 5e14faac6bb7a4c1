/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Seednode/storyteller/dixit"
	"github.com/Seednode/storyteller/history"
	"github.com/spf13/cobra"
)

func newSimulateCmd(cfg *Config) *cobra.Command {
	return &cobra.Command{
		Use:   "simulate",
		Short: "Play one game without the web server and print every turn.",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return simulate(cmd.Context(), cfg, cmd.OutOrStdout())
		},
	}
}

// turnPrinter writes each finished turn and the final standings to w.
type turnPrinter struct {
	dixit.NopObserver

	w io.Writer
}

func (p turnPrinter) OnIncident(i dixit.Incident) {
	fmt.Fprintf(p.w, "  ! %s failed during %s (%v), played %s instead\n", i.Player, i.Phase, i.Err, i.Fallback)
}

func (p turnPrinter) OnRound(sum dixit.RoundSummary) {
	fmt.Fprintf(p.w, "Turn %d (round %d): %s tells %q about %s\n",
		sum.Turn, sum.Round, sum.StorytellerName, sum.Clue, sum.StorytellerCard)

	table := make([]string, len(sum.Table))
	for i, e := range sum.Table {
		table[i] = fmt.Sprintf("%s<-%d", e.Card, e.Seat)
	}
	fmt.Fprintf(p.w, "  table: %s\n", strings.Join(table, " "))

	votes := make([]string, len(sum.Votes))
	for i, v := range sum.Votes {
		votes[i] = fmt.Sprintf("%d->%s", v.Seat, v.Card)
	}
	fmt.Fprintf(p.w, "  votes: %s\n", strings.Join(votes, " "))
	fmt.Fprintf(p.w, "  points: %v\n", sum.Deltas)
}

func (p turnPrinter) OnGameOver(standings []dixit.Standing) {
	fmt.Fprintln(p.w, "Final standings:")
	for i, s := range standings {
		fmt.Fprintf(p.w, "  %d. %-12s %3d\n", i+1, s.Name, s.Score)
	}
}

func simulate(ctx context.Context, cfg *Config, w io.Writer) error {
	cards, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	var store *history.Store
	if cfg.history != "" {
		store, err = history.Open(cfg.history)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	seed := gameSeed(cfg)
	fmt.Fprintf(w, "Seating %s with seed %d\n", strings.Join(cfg.players, ", "), seed)

	game, rec, release, err := newGame(ctx, cfg, cards, store, "simulation", seed, turnPrinter{w: w})
	if err != nil {
		return err
	}
	defer release()

	if err := game.Run(ctx); err != nil {
		return err
	}

	winners := game.Winners()
	names := make([]string, len(winners))
	for i, s := range winners {
		names[i] = s.Name
	}
	fmt.Fprintf(w, "Won by %s after %d turns\n", strings.Join(names, " and "), game.State().Turn)

	if rec != nil {
		fmt.Fprintf(w, "Recorded as %s\n", rec.ID())
	}

	return nil
}
