// Command replay rebuilds a recorded session and verifies determinism.
// DB mode replays a persisted session's history and compares the rebuilt
// estimates against the stored trajectory; fixture mode runs a JSON fixture
// and checks its pinned expectations.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/replay"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to assessment.db (DB mode)")
	sessionID := flag.String("session", "", "session id to replay (DB mode)")
	fixturePath := flag.String("fixture", "", "path to fixture JSON (fixture mode)")
	flag.Parse()

	dbMode := *dbPath != "" && *sessionID != ""
	fixtureMode := *fixturePath != ""
	if dbMode == fixtureMode {
		fmt.Fprintln(os.Stderr, "usage: replay --db path/to/assessment.db --session <id>")
		fmt.Fprintln(os.Stderr, "       replay --fixture path/to/fixture.json")
		os.Exit(2)
	}

	var exitCode int
	if fixtureMode {
		exitCode = runFixtureMode(*fixturePath)
	} else {
		exitCode = runDBMode(*dbPath, *sessionID)
	}
	os.Exit(exitCode)
}

// #endregion main

// #region db-mode

func runDBMode(dbPath, sessionID string) int {
	st, err := store.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		return 2
	}
	defer st.Close()

	rec, err := st.GetSession(sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get session: %v\n", err)
		return 2
	}
	history, err := st.History(sessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "get history: %v\n", err)
		return 2
	}

	result, err := replay.Replay(bank.MiniIPIP6(), rec.Config, replay.FromHistory(history))
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	mismatches := 0
	for i, step := range result.Steps {
		recorded := history[i]
		drift := math.Abs(step.Theta-recorded.ThetaAfter) + math.Abs(step.SE-recorded.SEAfter)
		status := "ok"
		if drift > 1e-10 {
			status = "DRIFT"
			mismatches++
		}
		fmt.Printf("turn %2d  item %2d (%s)  response %d  theta=%+.6f se=%.6f  %s\n",
			i+1, step.ItemNumber, step.Trait, step.Response, step.Theta, step.SE, status)
	}

	fmt.Printf("\nsession %s: %d turns replayed, %d mismatches, final phase %s\n",
		sessionID, len(result.Steps), mismatches, result.Phase)
	if mismatches > 0 {
		return 1
	}
	return 0
}

// #endregion db-mode

// #region fixture-mode

func runFixtureMode(path string) int {
	f, err := replay.LoadFixture(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load fixture: %v\n", err)
		return 2
	}

	result, err := replay.Replay(bank.MiniIPIP6(), f.Config.ToConfig(), f.ToInteractions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay: %v\n", err)
		return 2
	}

	mismatches := f.Check(result)
	for _, m := range mismatches {
		fmt.Printf("MISMATCH: %s\n", m)
	}

	fmt.Printf("%s: %d turns, %d expectations, %d mismatches\n",
		f.Description, len(result.Steps), len(f.Expected), len(mismatches))
	if len(mismatches) > 0 {
		return 1
	}
	return 0
}

// #endregion fixture-mode
