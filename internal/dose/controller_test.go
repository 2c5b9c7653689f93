package dose

import (
	"errors"
	"math"
	"testing"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/config"
)

// checkInvariants asserts the properties that must hold after every respond:
// bounded estimates, history/count agreement, and complete <=> all done.
func checkInvariants(t *testing.T, ctrl *Controller) {
	t.Helper()

	perTrait := make(map[bank.Trait]int)
	for _, row := range ctrl.History() {
		perTrait[row.Trait]++
	}

	allDone := true
	for trait, est := range ctrl.Estimates() {
		if est.SE < 0 {
			t.Fatalf("trait %s: negative SE %v", trait, est.SE)
		}
		if math.Abs(est.Theta) > 4+1e-9 {
			t.Fatalf("trait %s: theta %v escaped the grid", trait, est.Theta)
		}
		if est.Items != perTrait[trait] {
			t.Fatalf("trait %s: items %d but %d history rows", trait, est.Items, perTrait[trait])
		}
		if est.Items > 4 {
			t.Fatalf("trait %s: %d items exceeds cap", trait, est.Items)
		}
		if !est.Done {
			allDone = false
		}
	}
	if (ctrl.Phase() == PhaseComplete) != allDone {
		t.Fatalf("phase %s disagrees with allDone=%v", ctrl.Phase(), allDone)
	}
}

func TestStartPresentsExtraversionFirst(t *testing.T) {
	// All traits tie at zero items; canonical order puts extraversion first.
	ctrl, err := NewController(bank.MiniIPIP6(), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	first, err := ctrl.Start()
	if err != nil {
		t.Fatal(err)
	}
	if first.Trait != bank.Extraversion {
		t.Fatalf("first item should probe extraversion, got %s", first.Trait)
	}
	if ctrl.Phase() != PhaseAwaitingResponse {
		t.Fatalf("phase %s after start", ctrl.Phase())
	}
}

func TestRoundRobinFairness(t *testing.T) {
	// After the first six responses every trait has exactly one item.
	ctrl, err := NewController(bank.MiniIPIP6(), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 6; i++ {
		if _, err := ctrl.Respond(4); err != nil {
			t.Fatalf("respond %d: %v", i, err)
		}
		checkInvariants(t, ctrl)
	}

	for trait, est := range ctrl.Estimates() {
		if est.Items != 1 {
			t.Fatalf("trait %s has %d items after first pass, want 1", trait, est.Items)
		}
	}
}

func TestAllMidpointSessionCompletesOnMaxItems(t *testing.T) {
	// Mini-IPIP6 discriminations cannot push SE below 0.3 in four items,
	// so an all-4 respondent exhausts every trait's cap.
	ctrl, err := NewController(bank.MiniIPIP6(), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}

	items := 0
	for ctrl.Phase() == PhaseAwaitingResponse {
		result, err := ctrl.Respond(4)
		if err != nil {
			t.Fatalf("respond %d: %v", items, err)
		}
		items++
		checkInvariants(t, ctrl)
		if items > 24 {
			t.Fatal("session exceeded the 24-item ceiling")
		}
		if result.Action == ActionComplete {
			break
		}
	}

	if items != 24 {
		t.Fatalf("expected all 24 items administered, got %d", items)
	}
	for trait, est := range ctrl.Estimates() {
		if est.Items != 4 {
			t.Fatalf("trait %s: %d items, want 4", trait, est.Items)
		}
		if est.StoppingReason != StopMaxItems {
			t.Fatalf("trait %s: stopping reason %q, want max_items", trait, est.StoppingReason)
		}
	}
}

func TestSEMonotoneUnderMidpointResponses(t *testing.T) {
	ctrl, err := NewController(bank.MiniIPIP6(), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	for ctrl.Phase() == PhaseAwaitingResponse {
		if _, err := ctrl.Respond(4); err != nil {
			t.Fatal(err)
		}
	}

	for _, row := range ctrl.History() {
		if row.SEAfter > row.SEBefore+1e-9 {
			t.Fatalf("item %d: SE rose %v -> %v", row.ItemNumber, row.SEBefore, row.SEAfter)
		}
	}
}

func TestRespondBeforeStart(t *testing.T) {
	ctrl, err := NewController(bank.MiniIPIP6(), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	_, err = ctrl.Respond(4)
	if !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("expected ErrProtocolViolation, got %v", err)
	}
	if ctrl.Phase() != PhaseAwaitingStart {
		t.Fatalf("phase changed to %s", ctrl.Phase())
	}
}

func TestDoubleStart(t *testing.T) {
	ctrl, err := NewController(bank.MiniIPIP6(), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.Start(); !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("expected ErrProtocolViolation on second start, got %v", err)
	}
}

func TestInvalidResponseLeavesStateUntouched(t *testing.T) {
	ctrl, err := NewController(bank.MiniIPIP6(), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	first, err := ctrl.Start()
	if err != nil {
		t.Fatal(err)
	}

	for _, raw := range []int{0, 8, -3, 100} {
		_, err := ctrl.Respond(raw)
		if !errors.Is(err, ErrInvalidResponse) {
			t.Fatalf("raw %d: expected ErrInvalidResponse, got %v", raw, err)
		}
		if ctrl.Phase() != PhaseAwaitingResponse {
			t.Fatalf("raw %d moved phase to %s", raw, ctrl.Phase())
		}
		if cur := ctrl.Current(); cur == nil || *cur != first {
			t.Fatalf("raw %d changed current item to %v", raw, cur)
		}
		if len(ctrl.History()) != 0 {
			t.Fatalf("raw %d appended history", raw)
		}
	}

	// A valid retry still works.
	if _, err := ctrl.Respond(4); err != nil {
		t.Fatalf("valid retry failed: %v", err)
	}
}

func TestRespondAfterComplete(t *testing.T) {
	ctrl, err := NewController(bank.MiniIPIP6(), config.Default())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}
	for ctrl.Phase() == PhaseAwaitingResponse {
		if _, err := ctrl.Respond(4); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := ctrl.Respond(4); !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("expected ErrProtocolViolation after complete, got %v", err)
	}
}

func TestConfigCapturedAtConstruction(t *testing.T) {
	cfg := config.Default()
	ctrl, err := NewController(bank.MiniIPIP6(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ctrl.Start(); err != nil {
		t.Fatal(err)
	}

	// Mutating the caller's copy mid-session must not affect the running
	// controller.
	cfg.MaxItemsPerTrait = 1
	for i := 0; i < 6; i++ {
		if _, err := ctrl.Respond(4); err != nil {
			t.Fatal(err)
		}
	}
	if ctrl.Phase() == PhaseComplete {
		t.Fatal("mid-session config mutation leaked into the controller")
	}
}

func TestNewControllerRejectsBadConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ThetaPoints = 5
	if _, err := NewController(bank.MiniIPIP6(), cfg); err == nil {
		t.Fatal("expected config validation error")
	}
}
