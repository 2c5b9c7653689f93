package replay

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/config"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a replay fixture.
type Fixture struct {
	Description  string               `json:"description"`
	Config       FixtureConfig        `json:"config"`
	Interactions []FixtureInteraction `json:"interactions"`
	Expected     []FixtureExpected    `json:"expected"`
	// Tolerance for expected-value comparison. Zero means 1e-9.
	Tolerance float64 `json:"tolerance,omitempty"`
}

// FixtureConfig mirrors config.Config with JSON tags.
type FixtureConfig struct {
	SEThreshold      float64 `json:"se_threshold"`
	MaxItemsPerTrait int     `json:"max_items_per_trait"`
	ThetaMin         float64 `json:"theta_min"`
	ThetaMax         float64 `json:"theta_max"`
	ThetaPoints      int     `json:"theta_points"`
}

// FixtureInteraction mirrors Interaction with JSON tags.
type FixtureInteraction struct {
	ItemNumber int `json:"item_number"`
	Response   int `json:"response"`
}

// FixtureExpected pins a trait's final estimate.
type FixtureExpected struct {
	Trait bank.Trait `json:"trait"`
	Theta float64    `json:"theta"`
	SE    float64    `json:"se"`
	Items int        `json:"items"`
	Done  bool       `json:"done"`
}

// #endregion fixture-types

// #region fixture-loader

// LoadFixture reads and parses a JSON fixture file.
func LoadFixture(path string) (*Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	var f Fixture
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture %s: %w", path, err)
	}
	return &f, nil
}

// ToConfig converts the fixture config to a domain config.
func (fc *FixtureConfig) ToConfig() config.Config {
	return config.Config{
		SEThreshold:      fc.SEThreshold,
		MaxItemsPerTrait: fc.MaxItemsPerTrait,
		ThetaMin:         fc.ThetaMin,
		ThetaMax:         fc.ThetaMax,
		ThetaPoints:      fc.ThetaPoints,
	}
}

// ToInteractions converts the fixture turns to domain interactions.
func (f *Fixture) ToInteractions() []Interaction {
	out := make([]Interaction, len(f.Interactions))
	for i, fi := range f.Interactions {
		out[i] = Interaction{ItemNumber: fi.ItemNumber, Response: fi.Response}
	}
	return out
}

// #endregion fixture-loader

// #region check

// Check compares a replay result against the fixture's expectations and
// returns one message per mismatch.
func (f *Fixture) Check(result Result) []string {
	tol := f.Tolerance
	if tol == 0 {
		tol = 1e-9
	}

	var mismatches []string
	for _, exp := range f.Expected {
		est, ok := result.Estimates[exp.Trait]
		if !ok {
			mismatches = append(mismatches, fmt.Sprintf("trait %s: no estimate", exp.Trait))
			continue
		}
		if math.Abs(est.Theta-exp.Theta) > tol {
			mismatches = append(mismatches,
				fmt.Sprintf("trait %s: theta %.10f, want %.10f", exp.Trait, est.Theta, exp.Theta))
		}
		if math.Abs(est.SE-exp.SE) > tol {
			mismatches = append(mismatches,
				fmt.Sprintf("trait %s: se %.10f, want %.10f", exp.Trait, est.SE, exp.SE))
		}
		if est.Items != exp.Items {
			mismatches = append(mismatches,
				fmt.Sprintf("trait %s: items %d, want %d", exp.Trait, est.Items, exp.Items))
		}
		if est.Done != exp.Done {
			mismatches = append(mismatches,
				fmt.Sprintf("trait %s: done %v, want %v", exp.Trait, est.Done, exp.Done))
		}
	}
	return mismatches
}

// #endregion check
