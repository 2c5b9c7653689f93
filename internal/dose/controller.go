package dose

import (
	"fmt"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/config"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/irt"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/posterior"
)

// #region controller

// Controller is the per-session state machine. It is an explicit state
// machine rather than a coroutine so a session can sit suspended between
// responses indefinitely, be persisted, and be rebuilt by replay.
// Single-threaded per session; the collaborator serializes Respond calls.
type Controller struct {
	bank       *bank.Bank
	grid       *posterior.Grid
	cfg        config.Config
	phase      Phase
	estimators map[bank.Trait]*traitEstimator
	history    []HistoryRow
	current    *PresentedItem
}

// NewController captures the bank, grid, and knobs for one session.
// The config is copied in here; mid-session config changes elsewhere cannot
// affect a running session.
func NewController(b *bank.Bank, cfg config.Config) (*Controller, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid, err := posterior.NewGrid(cfg.ThetaMin, cfg.ThetaMax, cfg.ThetaPoints)
	if err != nil {
		return nil, err
	}
	return &Controller{
		bank:  b,
		grid:  grid,
		cfg:   cfg,
		phase: PhaseAwaitingStart,
	}, nil
}

// #endregion controller

// #region start

// Start initializes the six trait posteriors, selects the first item, and
// moves to awaiting_response.
func (c *Controller) Start() (PresentedItem, error) {
	if c.phase != PhaseAwaitingStart {
		return PresentedItem{}, fmt.Errorf("%w: start in phase %s", ErrProtocolViolation, c.phase)
	}

	c.estimators = make(map[bank.Trait]*traitEstimator, len(bank.CanonicalOrder))
	for _, trait := range bank.CanonicalOrder {
		c.estimators[trait] = newTraitEstimator(trait, c.bank, c.grid, c.cfg.SEThreshold, c.cfg.MaxItemsPerTrait)
	}

	if err := c.advance(); err != nil {
		c.phase = PhaseFailed
		return PresentedItem{}, err
	}
	c.phase = PhaseAwaitingResponse
	return *c.current, nil
}

// #endregion start

// #region respond

// Respond consumes the raw 1..7 response to the current item, updates the
// owning trait's posterior, appends a history row, and either completes the
// session or presents the next item.
//
// Validation failures (wrong phase, out-of-range response) leave the state
// untouched. Numerical faults transition to failed with history preserved.
func (c *Controller) Respond(raw int) (RespondResult, error) {
	if c.phase != PhaseAwaitingResponse {
		return RespondResult{}, fmt.Errorf("%w: respond in phase %s", ErrProtocolViolation, c.phase)
	}
	if raw < 1 || raw > 7 {
		return RespondResult{}, fmt.Errorf("%w: %d not in 1..7", ErrInvalidResponse, raw)
	}

	item, ok := c.bank.Item(c.current.Number)
	if !ok {
		c.phase = PhaseFailed
		return RespondResult{}, fmt.Errorf("current item %d missing from bank", c.current.Number)
	}

	if err := c.recordAndLog(item, raw); err != nil {
		c.phase = PhaseFailed
		return RespondResult{}, err
	}

	if c.allDone() {
		c.phase = PhaseComplete
		c.current = nil
		return RespondResult{
			Action:    ActionComplete,
			Estimates: c.Estimates(),
			Progress:  c.progress(),
		}, nil
	}

	if err := c.advance(); err != nil {
		c.phase = PhaseFailed
		return RespondResult{}, err
	}
	return RespondResult{
		Action:    ActionPresentItem,
		NextItem:  c.current,
		Estimates: c.Estimates(),
		Progress:  c.progress(),
	}, nil
}

// recordAndLog runs the posterior update and appends the history row.
func (c *Controller) recordAndLog(item bank.Item, raw int) error {
	te := c.estimators[item.Trait]

	thetaBefore := te.theta()
	seBefore := te.se()
	info, err := irt.FisherInformation(item, thetaBefore)
	if err != nil {
		return err
	}

	if err := te.record(item, raw); err != nil {
		return err
	}

	c.history = append(c.history, HistoryRow{
		ItemNumber:        item.Number,
		Trait:             item.Trait,
		Response:          raw,
		ThetaBefore:       thetaBefore,
		ThetaAfter:        te.theta(),
		SEBefore:          seBefore,
		SEAfter:           te.se(),
		FisherInformation: info,
		PresentationOrder: len(c.history) + 1,
	})
	return nil
}

// #endregion respond

// #region apply-recorded

// ApplyRecorded feeds one (item, raw response) pair into the session without
// consulting the selector. Used by replay and persistence rebuilds, where the
// presentation order is already fixed by the recorded history.
func (c *Controller) ApplyRecorded(itemNumber, raw int) error {
	if c.phase == PhaseAwaitingStart {
		c.estimators = make(map[bank.Trait]*traitEstimator, len(bank.CanonicalOrder))
		for _, trait := range bank.CanonicalOrder {
			c.estimators[trait] = newTraitEstimator(trait, c.bank, c.grid, c.cfg.SEThreshold, c.cfg.MaxItemsPerTrait)
		}
		c.phase = PhaseAwaitingResponse
		c.current = nil
	}
	if c.phase == PhaseComplete || c.phase == PhaseFailed {
		return fmt.Errorf("%w: apply in phase %s", ErrProtocolViolation, c.phase)
	}
	if raw < 1 || raw > 7 {
		return fmt.Errorf("%w: %d not in 1..7", ErrInvalidResponse, raw)
	}
	item, ok := c.bank.Item(itemNumber)
	if !ok {
		return fmt.Errorf("item %d missing from bank", itemNumber)
	}

	if err := c.recordAndLog(item, raw); err != nil {
		c.phase = PhaseFailed
		return err
	}
	c.current = nil
	if c.allDone() {
		c.phase = PhaseComplete
	}
	return nil
}

// #endregion apply-recorded

// #region rotation

// advance picks the next trait and item and stores it as current.
// Trait selection is fewest-items-first among non-done traits, ties broken
// by canonical order, so every trait sees one item before any sees two.
func (c *Controller) advance() error {
	trait, ok := c.nextTrait()
	if !ok {
		return fmt.Errorf("advance with every trait done")
	}
	te := c.estimators[trait]
	num, err := selectNext(c.bank, te)
	if err != nil {
		return err
	}
	c.current = &PresentedItem{Number: num, Trait: trait}
	return nil
}

func (c *Controller) nextTrait() (bank.Trait, bool) {
	var best bank.Trait
	bestCount, found := 0, false
	for _, trait := range bank.CanonicalOrder {
		te := c.estimators[trait]
		if te.done {
			continue
		}
		if !found || te.itemsCount() < bestCount {
			best, bestCount, found = trait, te.itemsCount(), true
		}
	}
	return best, found
}

func (c *Controller) allDone() bool {
	for _, te := range c.estimators {
		if !te.done {
			return false
		}
	}
	return true
}

// #endregion rotation

// #region views

// Phase returns the state machine phase.
func (c *Controller) Phase() Phase { return c.phase }

// Current returns the item awaiting a response, or nil.
func (c *Controller) Current() *PresentedItem {
	if c.current == nil {
		return nil
	}
	cp := *c.current
	return &cp
}

// Estimates returns the per-trait view. Safe to call in any phase after
// Start; before Start it returns an empty map.
func (c *Controller) Estimates() map[bank.Trait]Estimate {
	out := make(map[bank.Trait]Estimate, len(c.estimators))
	for trait, te := range c.estimators {
		out[trait] = te.estimate()
	}
	return out
}

// History returns a copy of the administered-item log in temporal order.
func (c *Controller) History() []HistoryRow {
	out := make([]HistoryRow, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Controller) progress() Progress {
	completed := 0
	for _, te := range c.estimators {
		if te.done {
			completed++
		}
	}
	return Progress{
		ItemsAdministered: len(c.history),
		TraitsCompleted:   completed,
		TotalTraits:       len(bank.CanonicalOrder),
	}
}

// #endregion views
