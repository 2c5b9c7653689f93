// Package replay rebuilds sessions from recorded histories. Because the
// grid, bank, and knobs are captured per session, replaying the same
// (item, response) sequence reproduces every estimate bitwise — the property
// persistence and diagnostics depend on.
package replay

import (
	"fmt"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/config"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/dose"
)

// #region types

// Interaction is a single recorded turn: which item, which raw response.
type Interaction struct {
	ItemNumber int
	Response   int
}

// StepResult captures the owning trait's estimate after one turn.
type StepResult struct {
	ItemNumber int
	Trait      bank.Trait
	Response   int
	Theta      float64
	SE         float64
}

// Result is the outcome of replaying a full interaction sequence.
type Result struct {
	Steps     []StepResult
	Estimates map[bank.Trait]dose.Estimate
	Phase     dose.Phase
}

// FromHistory converts a recorded history into replayable interactions.
func FromHistory(history []dose.HistoryRow) []Interaction {
	out := make([]Interaction, len(history))
	for i, row := range history {
		out[i] = Interaction{ItemNumber: row.ItemNumber, Response: row.Response}
	}
	return out
}

// #endregion types

// #region replay

// Replay feeds interactions in order through a fresh controller built from
// the given bank and config. Operates entirely in memory.
func Replay(b *bank.Bank, cfg config.Config, interactions []Interaction) (Result, error) {
	ctrl, err := dose.NewController(b, cfg)
	if err != nil {
		return Result{}, err
	}

	steps := make([]StepResult, 0, len(interactions))
	for i, inter := range interactions {
		if err := ctrl.ApplyRecorded(inter.ItemNumber, inter.Response); err != nil {
			return Result{}, fmt.Errorf("turn %d (item %d): %w", i+1, inter.ItemNumber, err)
		}
		it, _ := b.Item(inter.ItemNumber)
		est := ctrl.Estimates()[it.Trait]
		steps = append(steps, StepResult{
			ItemNumber: inter.ItemNumber,
			Trait:      it.Trait,
			Response:   inter.Response,
			Theta:      est.Theta,
			SE:         est.SE,
		})
	}

	return Result{
		Steps:     steps,
		Estimates: ctrl.Estimates(),
		Phase:     ctrl.Phase(),
	}, nil
}

// #endregion replay
