package sim

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/config"
)

func smallConfig() Config {
	return Config{
		Participants: 80,
		Seed:         42,
		Engine:       config.Default(),
	}
}

func TestRunDeterministicForSeed(t *testing.T) {
	b := bank.MiniIPIP6()

	s1, err := Run(b, smallConfig())
	if err != nil {
		t.Fatal(err)
	}
	s2, err := Run(b, smallConfig())
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(s1, s2); diff != "" {
		t.Fatalf("same seed produced different summaries:\n%s", diff)
	}
}

func TestRunBasicSanity(t *testing.T) {
	summary, err := Run(bank.MiniIPIP6(), smallConfig())
	if err != nil {
		t.Fatal(err)
	}

	if summary.CompletedSessions != summary.Participants {
		t.Fatalf("%d of %d sessions completed", summary.CompletedSessions, summary.Participants)
	}
	if summary.MeanItems < 6 || summary.MeanItems > 24 {
		t.Fatalf("mean items %v outside [6, 24]", summary.MeanItems)
	}
	if summary.ItemReductionRate < 0 || summary.ItemReductionRate >= 1 {
		t.Fatalf("item reduction rate %v outside [0, 1)", summary.ItemReductionRate)
	}

	for trait, ts := range summary.Traits {
		for name, r := range map[string]float64{
			"adaptive": ts.AdaptiveCorrTrue,
			"survey":   ts.SurveyCorrTrue,
		} {
			if r < -1 || r > 1 {
				t.Fatalf("trait %s: %s correlation %v outside [-1, 1]", trait, name, r)
			}
		}
		// With 80 simulees and four informative items, recovery has to be
		// well clear of chance.
		if ts.AdaptiveCorrTrue < 0.3 {
			t.Fatalf("trait %s: adaptive recovery r=%v implausibly low", trait, ts.AdaptiveCorrTrue)
		}
		if ts.SurveyCorrTrue < 0.3 {
			t.Fatalf("trait %s: survey recovery r=%v implausibly low", trait, ts.SurveyCorrTrue)
		}
		if ts.PathMAE < 0 || ts.PathRMSE < ts.PathMAE {
			t.Fatalf("trait %s: inconsistent path errors %+v", trait, ts)
		}
	}
}

func TestRunRelaxedThresholdReducesItems(t *testing.T) {
	strict := smallConfig()

	relaxed := smallConfig()
	relaxed.Engine.SEThreshold = 0.8

	sStrict, err := Run(bank.MiniIPIP6(), strict)
	if err != nil {
		t.Fatal(err)
	}
	sRelaxed, err := Run(bank.MiniIPIP6(), relaxed)
	if err != nil {
		t.Fatal(err)
	}

	// At 0.3 the cap binds and every session uses all 24 items; at 0.8
	// traits finish early.
	if sStrict.MeanItems != 24 {
		t.Fatalf("strict threshold should exhaust the bank, mean %v", sStrict.MeanItems)
	}
	if sRelaxed.MeanItems >= sStrict.MeanItems {
		t.Fatalf("relaxed threshold saved nothing: %v >= %v", sRelaxed.MeanItems, sStrict.MeanItems)
	}
}

func TestRunRejectsTinyCohort(t *testing.T) {
	cfg := smallConfig()
	cfg.Participants = 1
	if _, err := Run(bank.MiniIPIP6(), cfg); err == nil {
		t.Fatal("expected error for single-participant run")
	}
}
