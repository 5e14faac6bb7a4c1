/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package dixit

// Phase is a state of the round state machine.
type Phase string

const (
	PhaseSetup              Phase = "setup"
	PhaseStorytellerSelects Phase = "storyteller_selects"
	PhaseContribution       Phase = "contribution_collection"
	PhaseTableShuffle       Phase = "table_shuffle"
	PhaseVoting             Phase = "voting_collection"
	PhaseScoring            Phase = "scoring"
	PhaseCleanup            Phase = "cleanup"
	PhaseGameOver           Phase = "game_over"
)

// Incident records an agent failure that was replaced by a fallback
// decision.
type Incident struct {
	Turn     int
	Phase    Phase
	Seat     int
	Player   string
	Err      error
	Fallback string
}

// Observer is notified of phase transitions and outcomes. Calls are made
// synchronously from the goroutine advancing the game.
type Observer interface {
	OnPhase(State)
	OnIncident(Incident)
	OnRound(RoundSummary)
	OnGameOver([]Standing)
}

// NopObserver ignores every notification.
type NopObserver struct{}

func (NopObserver) OnPhase(State)         {}
func (NopObserver) OnIncident(Incident)   {}
func (NopObserver) OnRound(RoundSummary)  {}
func (NopObserver) OnGameOver([]Standing) {}

// Observers fans notifications out to each observer in order.
type Observers []Observer

func (o Observers) OnPhase(s State) {
	for _, x := range o {
		x.OnPhase(s)
	}
}

func (o Observers) OnIncident(i Incident) {
	for _, x := range o {
		x.OnIncident(i)
	}
}

func (o Observers) OnRound(r RoundSummary) {
	for _, x := range o {
		x.OnRound(r)
	}
}

func (o Observers) OnGameOver(s []Standing) {
	for _, x := range o {
		x.OnGameOver(s)
	}
}
