/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"strings"

	"github.com/Seednode/storyteller/dixit"
)

// logObserver writes a game's progress to the verbose log.
type logObserver struct {
	cfg  *Config
	game string
}

func (o logObserver) OnPhase(s dixit.State) {
	logf(o.cfg, "GAMES: %s turn %d entered %s", o.game, s.Turn, s.Phase)
}

func (o logObserver) OnIncident(i dixit.Incident) {
	logf(o.cfg, "GAMES: %s turn %d %s failed during %s, played %s instead: %v",
		o.game, i.Turn, i.Player, i.Phase, i.Fallback, i.Err)
}

func (o logObserver) OnRound(sum dixit.RoundSummary) {
	logf(o.cfg, "GAMES: %s turn %d %s told %q with %s, deltas %v",
		o.game, sum.Turn, sum.StorytellerName, sum.Clue, sum.StorytellerCard, sum.Deltas)
}

func (o logObserver) OnGameOver(standings []dixit.Standing) {
	lines := make([]string, len(standings))
	for i, s := range standings {
		lines[i] = fmt.Sprintf("%s=%d", s.Name, s.Score)
	}
	logf(o.cfg, "GAMES: %s is over: %s", o.game, strings.Join(lines, ", "))
}
