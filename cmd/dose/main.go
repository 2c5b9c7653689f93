// Command dose runs an adaptive assessment session in the terminal:
// it presents item numbers, reads 1..7 responses from stdin, and persists
// the session, every response, and the final scores to SQLite.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/config"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/dose"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/scoring"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/store"
)

// #region main

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	dbPath := envOr("DOSE_DB", "assessment.db")
	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open store: %v", err)
	}
	defer st.Close()

	b := bank.MiniIPIP6()
	svc := dose.NewService(b, cfg)

	participant := envOr("DOSE_PARTICIPANT", "local")
	start, err := svc.StartSession(participant)
	if err != nil {
		log.Fatalf("failed to start session: %v", err)
	}
	if err := st.CreateSession(start.SessionID, participant, cfg); err != nil {
		log.Fatalf("failed to persist session: %v", err)
	}

	fmt.Println("Adaptive assessment ready.")
	fmt.Printf("  DB: %s | SE threshold: %.2f | max items/trait: %d\n",
		dbPath, cfg.SEThreshold, cfg.MaxItemsPerTrait)
	fmt.Println("Answer each item on a 1-7 scale ('quit' to abandon).")

	scanner := bufio.NewScanner(os.Stdin)
	current := start.CurrentItem

	for {
		fmt.Printf("\nitem %d (trait %s) > ", current.Number, current.Trait)
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "quit" || input == "exit" {
			fmt.Println("Session abandoned; history kept for diagnostics.")
			return
		}

		raw, convErr := strconv.Atoi(input)
		if convErr != nil {
			fmt.Println("Please answer with a number from 1 to 7.")
			continue
		}

		result, err := svc.Respond(start.SessionID, raw)
		if errors.Is(err, dose.ErrInvalidResponse) {
			fmt.Println("Please answer with a number from 1 to 7.")
			continue
		}
		if err != nil {
			st.SetPhase(start.SessionID, dose.PhaseFailed)
			log.Fatalf("session failed: %v", err)
		}

		snap, err := svc.Snapshot(start.SessionID)
		if err != nil {
			log.Fatalf("snapshot: %v", err)
		}
		last := snap.History[len(snap.History)-1]
		if err := st.AppendResponse(start.SessionID, last); err != nil {
			log.Printf("persist response: %v", err)
		}
		fmt.Printf("[%d/%d traits done, %d items] theta=%.3f se=%.3f\n",
			result.Progress.TraitsCompleted, result.Progress.TotalTraits,
			result.Progress.ItemsAdministered, last.ThetaAfter, last.SEAfter)

		if result.Action == dose.ActionComplete {
			finish(st, start.SessionID, result)
			return
		}
		current = *result.NextItem
	}
}

// #endregion main

// #region finish

func finish(st *store.Store, sessionID string, result dose.RespondResult) {
	scores := scoring.FromEstimates(result.Estimates)
	if err := st.SaveResults(sessionID, scores); err != nil {
		log.Printf("persist results: %v", err)
	}
	if err := st.SetPhase(sessionID, dose.PhaseComplete); err != nil {
		log.Printf("persist phase: %v", err)
	}

	fmt.Printf("\nAssessment complete in %d items.\n", result.Progress.ItemsAdministered)
	for _, trait := range bank.CanonicalOrder {
		s := scores[trait]
		fmt.Printf("  %s  theta=%+.3f  se=%.3f  likert=%.2f  (%s, %s after %d items)\n",
			trait, s.Theta, s.SE, s.Likert, scoring.Interpret(s.Likert), s.StoppingReason, s.Items)
	}
}

// #endregion finish

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
