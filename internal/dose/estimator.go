package dose

import (
	"fmt"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/posterior"
)

// #region estimator

// traitEstimator wraps one trait's posterior engine with its item
// bookkeeping and monotone done flag.
type traitEstimator struct {
	trait       bank.Trait
	engine      *posterior.Engine
	poolItems   []int // the trait's bank subset, ascending
	used        map[int]bool
	done        bool
	stopReason  StoppingReason
	seThreshold float64
	maxItems    int
}

func newTraitEstimator(trait bank.Trait, b *bank.Bank, grid *posterior.Grid, seThreshold float64, maxItems int) *traitEstimator {
	return &traitEstimator{
		trait:       trait,
		engine:      posterior.NewEngine(grid),
		poolItems:   b.TraitItems(trait),
		used:        make(map[int]bool),
		seThreshold: seThreshold,
		maxItems:    maxItems,
	}
}

// #endregion estimator

// #region views

func (te *traitEstimator) theta() float64 { return te.engine.EAP() }
func (te *traitEstimator) se() float64    { return te.engine.SD() }
func (te *traitEstimator) itemsCount() int { return len(te.used) }

// availableItems returns the trait's unused item numbers, ascending.
func (te *traitEstimator) availableItems() []int {
	avail := make([]int, 0, len(te.poolItems))
	for _, num := range te.poolItems {
		if !te.used[num] {
			avail = append(avail, num)
		}
	}
	return avail
}

func (te *traitEstimator) estimate() Estimate {
	return Estimate{
		Theta:          te.theta(),
		SE:             te.se(),
		Items:          te.itemsCount(),
		Done:           te.done,
		StoppingReason: te.stopReason,
	}
}

// #endregion views

// #region record

// record canonicalizes the raw response (8-r for reverse-flagged items,
// applied here and nowhere else), feeds the posterior engine, and refreshes
// the stopping state. The done flag only ever flips to true.
func (te *traitEstimator) record(it bank.Item, raw int) error {
	if raw < 1 || raw > 7 {
		return fmt.Errorf("%w: %d not in 1..7", ErrInvalidResponse, raw)
	}
	if it.Trait != te.trait {
		return fmt.Errorf("item %d belongs to trait %s, not %s", it.Number, it.Trait, te.trait)
	}
	if te.used[it.Number] {
		return fmt.Errorf("item %d already administered for trait %s", it.Number, te.trait)
	}

	category := raw
	if it.Reverse {
		category = 8 - raw
	}

	if err := te.engine.Update(it, category); err != nil {
		return err
	}

	te.used[it.Number] = true

	if !te.done {
		switch {
		case te.se() < te.seThreshold:
			te.done = true
			te.stopReason = StopSEThreshold
		case te.itemsCount() >= te.maxItems:
			te.done = true
			te.stopReason = StopMaxItems
		}
	}
	return nil
}

// #endregion record
