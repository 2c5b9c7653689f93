// Package dose implements the adaptive measurement loop: one posterior per
// trait, maximum-Fisher-information item selection, fewest-items-first trait
// rotation, and the session state machine that ties them together.
package dose

import (
	"errors"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
)

// #region errors

var (
	// ErrProtocolViolation means Respond was called in the wrong state.
	// Recoverable: state is unchanged.
	ErrProtocolViolation = errors.New("protocol violation")

	// ErrInvalidResponse means the raw response fell outside 1..7.
	// Recoverable: state is unchanged.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrNoItemsAvailable means the selector was invoked on a trait with no
	// remaining items. Indicates a controller bug; fatal for the session.
	ErrNoItemsAvailable = errors.New("no items available")
)

// #endregion errors

// #region phase

// Phase is the session state machine state.
type Phase string

const (
	PhaseAwaitingStart    Phase = "awaiting_start"
	PhaseAwaitingResponse Phase = "awaiting_response"
	PhaseComplete         Phase = "complete"
	PhaseFailed           Phase = "failed"
)

// #endregion phase

// #region stopping-reason

// StoppingReason distinguishes why a trait stopped collecting items.
type StoppingReason string

const (
	StopNone        StoppingReason = ""
	StopSEThreshold StoppingReason = "se_threshold"
	StopMaxItems    StoppingReason = "max_items"
)

// #endregion stopping-reason

// #region action

// Action tells the collaborator what to do after a response.
type Action string

const (
	ActionPresentItem Action = "present_item"
	ActionComplete    Action = "complete"
)

// #endregion action

// #region presented-item

// PresentedItem identifies the item awaiting a response. Number and trait
// only; statement text lives with the collaborator.
type PresentedItem struct {
	Number int        `json:"number"`
	Trait  bank.Trait `json:"trait"`
}

// #endregion presented-item

// #region estimate

// Estimate is the read-only per-trait view reported after every step.
type Estimate struct {
	Theta          float64        `json:"theta"`
	SE             float64        `json:"se"`
	Items          int            `json:"items"`
	Done           bool           `json:"done"`
	StoppingReason StoppingReason `json:"stopping_reason,omitempty"`
}

// #endregion estimate

// #region history

// HistoryRow records one administered item in true temporal order.
type HistoryRow struct {
	ItemNumber        int        `json:"item_number"`
	Trait             bank.Trait `json:"trait"`
	Response          int        `json:"response"` // raw 1..7, before reversal
	ThetaBefore       float64    `json:"theta_before"`
	ThetaAfter        float64    `json:"theta_after"`
	SEBefore          float64    `json:"se_before"`
	SEAfter           float64    `json:"se_after"`
	FisherInformation float64    `json:"fisher_information"` // at ThetaBefore
	PresentationOrder int        `json:"presentation_order"` // 1-based
}

// #endregion history

// #region progress

// Progress summarizes how far the session has advanced.
type Progress struct {
	ItemsAdministered int `json:"items_administered"`
	TraitsCompleted   int `json:"traits_completed"`
	TotalTraits       int `json:"total_traits"`
}

// #endregion progress

// #region respond-result

// RespondResult is the outcome of one Respond step. NextItem is nil when
// Action is ActionComplete.
type RespondResult struct {
	Action    Action                       `json:"action"`
	NextItem  *PresentedItem               `json:"next_item,omitempty"`
	Estimates map[bank.Trait]Estimate      `json:"estimates"`
	Progress  Progress                     `json:"progress"`
}

// #endregion respond-result
