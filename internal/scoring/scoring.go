// Package scoring converts latent estimates to the 1-7 reporting scale,
// scores the fixed-form survey classically, and computes agreement
// statistics between the two paths.
package scoring

import (
	"fmt"
	"math"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/dose"
)

// #region likert-projection

// Likert maps a latent estimate to the 1-7 scale: clip(4 + 0.75*theta, 1, 7).
// The slope and intercept are a documented convention shared with the
// fixed-form comparison; changing them silently invalidates every stored
// comparison, so they are constants rather than knobs.
func Likert(theta float64) float64 {
	v := 4.0 + 0.75*theta
	if v < 1 {
		return 1
	}
	if v > 7 {
		return 7
	}
	return v
}

// TraitScore is the scoring-adapter output for one trait of a completed
// adaptive session.
type TraitScore struct {
	Theta          float64             `json:"theta"`
	SE             float64             `json:"se"`
	Likert         float64             `json:"likert"`
	Items          int                 `json:"items"`
	StoppingReason dose.StoppingReason `json:"stopping_reason"`
}

// FromEstimates projects a completed session's estimates onto the 1-7 scale.
func FromEstimates(estimates map[bank.Trait]dose.Estimate) map[bank.Trait]TraitScore {
	out := make(map[bank.Trait]TraitScore, len(estimates))
	for trait, est := range estimates {
		out[trait] = TraitScore{
			Theta:          est.Theta,
			SE:             est.SE,
			Likert:         Likert(est.Theta),
			Items:          est.Items,
			StoppingReason: est.StoppingReason,
		}
	}
	return out
}

// #endregion likert-projection

// #region classical

// ClassicalScore is one trait's fixed-form result: the reverse-aware simple
// mean of its 1-7 responses.
type ClassicalScore struct {
	Mean     float64 `json:"mean"`
	Items    int     `json:"items"`
	Complete bool    `json:"complete"`
}

// ScoreFixedForm computes per-trait classical scores from a full response
// map (item number -> raw 1..7). Reverse-flagged items contribute 8-r.
func ScoreFixedForm(b *bank.Bank, responses map[int]int) (map[bank.Trait]ClassicalScore, error) {
	for num, raw := range responses {
		if raw < 1 || raw > 7 {
			return nil, fmt.Errorf("%w: item %d response %d", dose.ErrInvalidResponse, num, raw)
		}
		if _, ok := b.Item(num); !ok {
			return nil, fmt.Errorf("item %d missing from bank", num)
		}
	}

	out := make(map[bank.Trait]ClassicalScore, len(bank.CanonicalOrder))
	for _, trait := range bank.CanonicalOrder {
		sum, n := 0.0, 0
		for _, num := range b.TraitItems(trait) {
			raw, ok := responses[num]
			if !ok {
				continue
			}
			it, _ := b.Item(num)
			scored := raw
			if it.Reverse {
				scored = 8 - raw
			}
			sum += float64(scored)
			n++
		}
		score := ClassicalScore{Items: n, Complete: n == bank.ItemsPerTrait}
		if n > 0 {
			score.Mean = sum / float64(n)
		}
		out[trait] = score
	}
	return out, nil
}

// #endregion classical

// #region interpretation

// Interpret maps a 1-7 score to its reporting band.
func Interpret(score float64) string {
	switch {
	case score < 2.5:
		return "Very Low"
	case score < 3.5:
		return "Low"
	case score < 4.5:
		return "Average"
	case score < 5.5:
		return "High"
	default:
		return "Very High"
	}
}

// #endregion interpretation

// #region comparison

// Agreement summarizes how closely two per-trait score sets track each
// other on the shared 1-7 scale.
type Agreement struct {
	Traits     []bank.Trait            `json:"traits"`
	PearsonR   float64                 `json:"pearson_r"`
	MAE        float64                 `json:"mean_absolute_error"`
	RMSE       float64                 `json:"rmse"`
	Difference map[bank.Trait]float64  `json:"trait_differences"` // a - b
}

// Compare computes agreement statistics over the traits present in both
// maps, iterated in canonical order. Pearson r degrades to 0 when either
// side has no variance.
func Compare(a, b map[bank.Trait]float64) Agreement {
	agg := Agreement{Difference: make(map[bank.Trait]float64)}

	var xs, ys []float64
	for _, trait := range bank.CanonicalOrder {
		x, okA := a[trait]
		y, okB := b[trait]
		if !okA || !okB {
			continue
		}
		agg.Traits = append(agg.Traits, trait)
		agg.Difference[trait] = x - y
		xs = append(xs, x)
		ys = append(ys, y)
	}
	if len(xs) == 0 {
		return agg
	}

	sumAbs, sumSq := 0.0, 0.0
	for i := range xs {
		d := xs[i] - ys[i]
		sumAbs += math.Abs(d)
		sumSq += d * d
	}
	n := float64(len(xs))
	agg.MAE = sumAbs / n
	agg.RMSE = math.Sqrt(sumSq / n)
	agg.PearsonR = pearson(xs, ys)
	return agg
}

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	var mx, my float64
	for i := range xs {
		mx += xs[i]
		my += ys[i]
	}
	mx /= n
	my /= n

	var cov, vx, vy float64
	for i := range xs {
		dx, dy := xs[i]-mx, ys[i]-my
		cov += dx * dy
		vx += dx * dx
		vy += dy * dy
	}
	if vx == 0 || vy == 0 {
		return 0
	}
	r := cov / math.Sqrt(vx*vy)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// #endregion comparison
