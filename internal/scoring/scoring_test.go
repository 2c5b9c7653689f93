package scoring

import (
	"math"
	"testing"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/dose"
)

func TestLikertProjection(t *testing.T) {
	cases := []struct {
		theta float64
		want  float64
	}{
		{0, 4},
		{1, 4.75},
		{-1, 3.25},
		{2, 5.5},
		{-2, 2.5},
		{4, 7},    // upper clip boundary: 4 + 3 = 7 exactly
		{5, 7},    // clipped
		{-5, 1},   // clipped
		{-4.5, 1}, // clipped: 4 - 3.375 < 1
	}
	for _, tc := range cases {
		if got := Likert(tc.theta); math.Abs(got-tc.want) > 1e-12 {
			t.Fatalf("Likert(%v) = %v, want %v", tc.theta, got, tc.want)
		}
	}
}

func TestFromEstimates(t *testing.T) {
	estimates := map[bank.Trait]dose.Estimate{
		bank.Extraversion: {Theta: -2, SE: 0.7, Items: 4, Done: true, StoppingReason: dose.StopMaxItems},
		bank.Openness:     {Theta: 0.4, SE: 0.28, Items: 2, Done: true, StoppingReason: dose.StopSEThreshold},
	}
	scores := FromEstimates(estimates)

	e := scores[bank.Extraversion]
	if e.Likert != 2.5 || e.StoppingReason != dose.StopMaxItems || e.Items != 4 {
		t.Fatalf("extraversion score wrong: %+v", e)
	}
	o := scores[bank.Openness]
	if math.Abs(o.Likert-4.3) > 1e-12 || o.SE != 0.28 {
		t.Fatalf("openness score wrong: %+v", o)
	}
}

func TestScoreFixedFormReverseAware(t *testing.T) {
	b := bank.MiniIPIP6()

	// Extraversion: items 1, 23 straight; 7, 19 reverse.
	// Raw {1:6, 7:2, 19:3, 23:5} scores {6, 6, 5, 5} -> mean 5.5.
	responses := map[int]int{1: 6, 7: 2, 19: 3, 23: 5}
	scores, err := ScoreFixedForm(b, responses)
	if err != nil {
		t.Fatal(err)
	}

	e := scores[bank.Extraversion]
	if math.Abs(e.Mean-5.5) > 1e-12 {
		t.Fatalf("extraversion mean %v, want 5.5", e.Mean)
	}
	if !e.Complete || e.Items != 4 {
		t.Fatalf("extraversion completeness wrong: %+v", e)
	}

	// Untouched traits report incomplete with zero items.
	a := scores[bank.Agreeableness]
	if a.Complete || a.Items != 0 || a.Mean != 0 {
		t.Fatalf("agreeableness should be empty: %+v", a)
	}
}

func TestScoreFixedFormAllMidpoint(t *testing.T) {
	b := bank.MiniIPIP6()
	responses := make(map[int]int, 24)
	for num := 1; num <= 24; num++ {
		responses[num] = 4
	}
	scores, err := ScoreFixedForm(b, responses)
	if err != nil {
		t.Fatal(err)
	}
	// 8-4 = 4: reversal is a no-op at the midpoint.
	for trait, s := range scores {
		if math.Abs(s.Mean-4) > 1e-12 || !s.Complete {
			t.Fatalf("trait %s: %+v", trait, s)
		}
	}
}

func TestScoreFixedFormRejectsBadInput(t *testing.T) {
	b := bank.MiniIPIP6()
	if _, err := ScoreFixedForm(b, map[int]int{1: 8}); err == nil {
		t.Fatal("expected error for response 8")
	}
	if _, err := ScoreFixedForm(b, map[int]int{99: 4}); err == nil {
		t.Fatal("expected error for unknown item")
	}
}

func TestInterpretBands(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{1.0, "Very Low"},
		{2.49, "Very Low"},
		{2.5, "Low"},
		{3.5, "Average"},
		{4.49, "Average"},
		{4.5, "High"},
		{5.5, "Very High"},
		{7.0, "Very High"},
	}
	for _, tc := range cases {
		if got := Interpret(tc.score); got != tc.want {
			t.Fatalf("Interpret(%v) = %q, want %q", tc.score, got, tc.want)
		}
	}
}

func TestCompareIdenticalScores(t *testing.T) {
	a := map[bank.Trait]float64{
		bank.Extraversion: 3, bank.Agreeableness: 5, bank.Conscientiousness: 4,
		bank.Neuroticism: 2, bank.Openness: 6, bank.HonestyHumility: 4.5,
	}
	agg := Compare(a, a)

	if len(agg.Traits) != 6 {
		t.Fatalf("compared %d traits", len(agg.Traits))
	}
	if agg.PearsonR != 1 {
		t.Fatalf("self-comparison r = %v, want 1", agg.PearsonR)
	}
	if agg.MAE != 0 || agg.RMSE != 0 {
		t.Fatalf("self-comparison errors nonzero: %+v", agg)
	}
}

func TestCompareHandComputed(t *testing.T) {
	a := map[bank.Trait]float64{bank.Extraversion: 2, bank.Agreeableness: 4, bank.Conscientiousness: 6}
	b := map[bank.Trait]float64{bank.Extraversion: 3, bank.Agreeableness: 4, bank.Conscientiousness: 5}
	agg := Compare(a, b)

	// Differences: -1, 0, 1 -> MAE 2/3, RMSE sqrt(2/3).
	if math.Abs(agg.MAE-2.0/3.0) > 1e-12 {
		t.Fatalf("MAE %v", agg.MAE)
	}
	if math.Abs(agg.RMSE-math.Sqrt(2.0/3.0)) > 1e-12 {
		t.Fatalf("RMSE %v", agg.RMSE)
	}
	if agg.PearsonR <= 0 {
		t.Fatalf("positively related sets should have positive r, got %v", agg.PearsonR)
	}
	if agg.Difference[bank.Extraversion] != -1 || agg.Difference[bank.Conscientiousness] != 1 {
		t.Fatalf("differences wrong: %+v", agg.Difference)
	}
}

func TestCompareDegenerateVariance(t *testing.T) {
	a := map[bank.Trait]float64{bank.Extraversion: 4, bank.Agreeableness: 4}
	b := map[bank.Trait]float64{bank.Extraversion: 3, bank.Agreeableness: 5}
	if agg := Compare(a, b); agg.PearsonR != 0 {
		t.Fatalf("flat series should give r=0, got %v", agg.PearsonR)
	}
}

func TestCompareDisjointTraits(t *testing.T) {
	a := map[bank.Trait]float64{bank.Extraversion: 4}
	b := map[bank.Trait]float64{bank.Openness: 4}
	agg := Compare(a, b)
	if len(agg.Traits) != 0 || agg.PearsonR != 0 {
		t.Fatalf("disjoint maps should compare nothing: %+v", agg)
	}
}
