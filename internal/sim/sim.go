// Package sim validates the adaptive path by Monte Carlo: sample true trait
// levels, simulate GRM responses for both the full fixed form and the
// adaptive session, and compare what each path recovers.
package sim

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/config"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/dose"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/irt"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/scoring"
)

// #region config

// Config controls one simulation run. The seed makes runs reproducible.
type Config struct {
	Participants int           `json:"participants"`
	Seed         int64         `json:"seed"`
	Engine       config.Config `json:"engine"`
}

// DefaultConfig mirrors the original validation study: 1000 virtual
// participants against the reference engine settings.
func DefaultConfig() Config {
	return Config{
		Participants: 1000,
		Seed:         1,
		Engine:       config.Default(),
	}
}

// #endregion config

// #region results

// TraitSummary aggregates one trait across all participants.
type TraitSummary struct {
	AdaptiveCorrTrue float64 `json:"adaptive_r_true"` // adaptive theta vs true theta
	SurveyCorrTrue   float64 `json:"survey_r_true"`   // survey mean vs true theta
	PathMAE          float64 `json:"path_mae"`        // adaptive likert vs survey mean
	PathRMSE         float64 `json:"path_rmse"`
}

// Summary is the full simulation report.
type Summary struct {
	Participants       int                         `json:"participants"`
	Seed               int64                       `json:"seed"`
	MeanItems          float64                     `json:"mean_items_administered"`
	ItemReductionRate  float64                     `json:"item_reduction_rate"`
	Traits             map[bank.Trait]TraitSummary `json:"traits"`
	CompletedSessions  int                         `json:"completed_sessions"`
}

// #endregion results

// #region run

// Run executes the simulation and aggregates per-trait recovery statistics.
func Run(b *bank.Bank, cfg Config) (Summary, error) {
	if cfg.Participants < 2 {
		return Summary{}, fmt.Errorf("sim: need at least 2 participants, got %d", cfg.Participants)
	}
	if err := cfg.Engine.Validate(); err != nil {
		return Summary{}, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))

	type samples struct {
		trueTheta, adaptiveTheta, adaptiveLikert, surveyMean []float64
	}
	perTrait := make(map[bank.Trait]*samples, len(bank.CanonicalOrder))
	for _, trait := range bank.CanonicalOrder {
		perTrait[trait] = &samples{}
	}

	totalItems := 0
	completed := 0

	for p := 0; p < cfg.Participants; p++ {
		truth := make(map[bank.Trait]float64, len(bank.CanonicalOrder))
		for _, trait := range bank.CanonicalOrder {
			truth[trait] = rng.NormFloat64()
		}

		surveyScores, err := simulateSurvey(b, rng, truth)
		if err != nil {
			return Summary{}, err
		}

		estimates, items, err := simulateAdaptive(b, cfg.Engine, rng, truth)
		if err != nil {
			return Summary{}, err
		}
		totalItems += items
		completed++

		for _, trait := range bank.CanonicalOrder {
			s := perTrait[trait]
			s.trueTheta = append(s.trueTheta, truth[trait])
			s.adaptiveTheta = append(s.adaptiveTheta, estimates[trait].Theta)
			s.adaptiveLikert = append(s.adaptiveLikert, scoring.Likert(estimates[trait].Theta))
			s.surveyMean = append(s.surveyMean, surveyScores[trait].Mean)
		}
	}

	summary := Summary{
		Participants:      cfg.Participants,
		Seed:              cfg.Seed,
		MeanItems:         float64(totalItems) / float64(cfg.Participants),
		CompletedSessions: completed,
		Traits:            make(map[bank.Trait]TraitSummary, len(bank.CanonicalOrder)),
	}
	summary.ItemReductionRate = 1 - summary.MeanItems/float64(b.Len())

	for _, trait := range bank.CanonicalOrder {
		s := perTrait[trait]
		mae, rmse := pathError(s.adaptiveLikert, s.surveyMean)
		summary.Traits[trait] = TraitSummary{
			AdaptiveCorrTrue: pearson(s.adaptiveTheta, s.trueTheta),
			SurveyCorrTrue:   pearson(s.surveyMean, s.trueTheta),
			PathMAE:          mae,
			PathRMSE:         rmse,
		}
	}
	return summary, nil
}

// #endregion run

// #region response-model

// sampleResponse draws a raw 1..7 response for an item given the true trait
// level. The GRM governs the canonical direction; reverse-worded items
// observe 8-k on the raw scale.
func sampleResponse(rng *rand.Rand, it bank.Item, trueTheta float64) int {
	probs := irt.CategoryProbs(it, trueTheta)
	u := rng.Float64()
	cum := 0.0
	category := irt.Categories
	for k, p := range probs {
		cum += p
		if u < cum {
			category = k + 1
			break
		}
	}
	if it.Reverse {
		return 8 - category
	}
	return category
}

func simulateSurvey(b *bank.Bank, rng *rand.Rand, truth map[bank.Trait]float64) (map[bank.Trait]scoring.ClassicalScore, error) {
	responses := make(map[int]int, b.Len())
	for _, trait := range bank.CanonicalOrder {
		for _, num := range b.TraitItems(trait) {
			it, _ := b.Item(num)
			responses[num] = sampleResponse(rng, it, truth[trait])
		}
	}
	return scoring.ScoreFixedForm(b, responses)
}

func simulateAdaptive(b *bank.Bank, engineCfg config.Config, rng *rand.Rand, truth map[bank.Trait]float64) (map[bank.Trait]dose.Estimate, int, error) {
	ctrl, err := dose.NewController(b, engineCfg)
	if err != nil {
		return nil, 0, err
	}
	current, err := ctrl.Start()
	if err != nil {
		return nil, 0, err
	}

	items := 0
	for {
		it, _ := b.Item(current.Number)
		raw := sampleResponse(rng, it, truth[current.Trait])
		result, err := ctrl.Respond(raw)
		if err != nil {
			return nil, 0, err
		}
		items++
		if result.Action == dose.ActionComplete {
			return result.Estimates, items, nil
		}
		current = *result.NextItem
	}
}

// #endregion response-model

// #region stats

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	if n < 2 {
		return 0
	}
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
	return cov / math.Sqrt(vx*vy)
}

func pathError(a, b []float64) (mae, rmse float64) {
	if len(a) == 0 {
		return 0, 0
	}
	var sumAbs, sumSq float64
	for i := range a {
		d := a[i] - b[i]
		sumAbs += math.Abs(d)
		sumSq += d * d
	}
	n := float64(len(a))
	return sumAbs / n, math.Sqrt(sumSq / n)
}

// #endregion stats
