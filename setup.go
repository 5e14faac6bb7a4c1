/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/Seednode/storyteller/agent"
	"github.com/Seednode/storyteller/catalog"
	"github.com/Seednode/storyteller/dixit"
	"github.com/Seednode/storyteller/history"
)

type persona struct {
	nature      string
	temperature float64
}

var personas = []persona{
	{"a kindergarten teacher", 1},
	{"a village simpleton from a fairy tale", 0.9},
	{"a lover of physics", 0.8},
	{"a farmer who cannot read", 0.7},
	{"a retired sea captain", 0.6},
	{"a poet with a cold", 0.5},
}

func loadCatalog(cfg *Config) (*catalog.Catalog, error) {
	if cfg.catalog == "" {
		return catalog.Synthetic(cfg.syntheticCards), nil
	}

	cards, err := catalog.Load(cfg.catalog, cfg.images)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	if cards.Regenerated() {
		logf(cfg, "CARDS: Rebuilt manifest %s from %s", cfg.catalog, cfg.images)
	}
	logf(cfg, "CARDS: Loaded %d cards", cards.Len())

	return cards, nil
}

func gameSeed(cfg *Config) uint64 {
	if cfg.seed != 0 {
		return cfg.seed
	}
	return rand.Uint64()
}

// newPlayers seats one agent of the configured kind per player name. The
// returned func releases any resources the agents hold.
func newPlayers(cfg *Config, images agent.ImageSource, seed uint64) ([]*dixit.Player, func(), error) {
	var (
		script  string
		openai  agent.OpenAIConfig
		closers []func()
	)

	release := func() {
		for _, c := range closers {
			c()
		}
	}

	switch cfg.agent {
	case "lua":
		data, err := os.ReadFile(cfg.script)
		if err != nil {
			return nil, nil, fmt.Errorf("read script: %w", err)
		}
		script = string(data)
	case "openai":
		var err error
		openai, err = agent.LoadOpenAIConfig()
		if err != nil {
			return nil, nil, err
		}
	}

	players := make([]*dixit.Player, len(cfg.players))
	for i, name := range cfg.players {
		var a dixit.Agent

		switch cfg.agent {
		case "lua":
			l, err := agent.NewLua(name, script)
			if err != nil {
				release()
				return nil, nil, fmt.Errorf("%s: %w", name, err)
			}
			closers = append(closers, l.Close)
			a = l
		case "openai":
			p := personas[i%len(personas)]
			a = agent.NewOpenAI(openai, images, p.nature, p.temperature, nil)
		default:
			a = agent.NewRandom(seed + uint64(i) + 1)
		}

		if cfg.thinkTime > 0 {
			a = agent.NewSlow(a, cfg.thinkTime/4, cfg.thinkTime, seed^uint64(i))
		}

		players[i] = dixit.NewPlayer(name, a)
	}

	return players, release, nil
}

// newGame builds a game from the configuration. When store is set, the game
// is recorded once it has been dealt and the recorder is returned alongside
// it. The recorder is notified before observers, so stored history is never
// behind what they report.
func newGame(ctx context.Context, cfg *Config, cards *catalog.Catalog, store *history.Store, label string, seed uint64, observers ...dixit.Observer) (*dixit.Game, *history.Recorder, func(), error) {
	players, release, err := newPlayers(cfg, cards, seed)
	if err != nil {
		return nil, nil, nil, err
	}

	g, err := dixit.NewGame(players, cards.AllCards(), dixit.Options{
		HandSize:        cfg.handSize,
		Threshold:       cfg.threshold,
		Rand:            rand.New(rand.NewPCG(seed, seed>>1|1)),
		DecisionTimeout: cfg.decisionTimeout,
		Observer:        logObserver{cfg: cfg, game: label},
	})
	if err != nil {
		release()
		return nil, nil, nil, err
	}

	var rec *history.Recorder
	if store != nil {
		rec, err = history.NewRecorder(ctx, store, seed, cfg.players, func(err error) {
			logf(cfg, "ERROR: record %s: %v", label, err)
		})
		if err != nil {
			release()
			return nil, nil, nil, fmt.Errorf("record game: %w", err)
		}
		g.Observe(rec)
	}
	g.Observe(observers...)

	return g, rec, release, nil
}
