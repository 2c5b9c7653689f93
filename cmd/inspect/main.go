// Command inspect lists persisted sessions and dumps one session's
// estimates, results, and item-by-item history.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/scoring"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/store"
)

// #region main

func main() {
	dbPath := flag.String("db", "assessment.db", "path to assessment.db")
	sessionID := flag.String("session", "", "session id to dump (empty lists sessions)")
	limit := flag.Int("limit", 20, "max sessions to list")
	flag.Parse()

	st, err := store.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(2)
	}
	defer st.Close()

	if *sessionID == "" {
		if err := listSessions(st, *limit); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(2)
		}
		return
	}
	if err := dumpSession(st, *sessionID); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
}

// #endregion main

// #region list

func listSessions(st *store.Store, limit int) error {
	sessions, err := st.ListSessions(limit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("no sessions")
		return nil
	}
	for _, s := range sessions {
		fmt.Printf("%s  %-16s  %-17s  se<%.2f  %s\n",
			s.SessionID, s.ParticipantID, s.Phase, s.Config.SEThreshold,
			s.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}

// #endregion list

// #region dump

func dumpSession(st *store.Store, sessionID string) error {
	rec, err := st.GetSession(sessionID)
	if err != nil {
		return err
	}
	history, err := st.History(sessionID)
	if err != nil {
		return err
	}
	results, err := st.Results(sessionID)
	if err != nil {
		return err
	}

	fmt.Printf("session %s  participant %s  phase %s\n",
		rec.SessionID, rec.ParticipantID, rec.Phase)
	fmt.Printf("knobs: se_threshold=%.2f max_items=%d grid=[%.1f,%.1f]x%d\n\n",
		rec.Config.SEThreshold, rec.Config.MaxItemsPerTrait,
		rec.Config.ThetaMin, rec.Config.ThetaMax, rec.Config.ThetaPoints)

	for _, row := range history {
		fmt.Printf("  %2d. item %2d (%s) response %d  theta %+.3f -> %+.3f  se %.3f -> %.3f  info %.3f\n",
			row.PresentationOrder, row.ItemNumber, row.Trait, row.Response,
			row.ThetaBefore, row.ThetaAfter, row.SEBefore, row.SEAfter,
			row.FisherInformation)
	}

	if len(results) > 0 {
		fmt.Println("\nresults:")
		for _, trait := range bank.CanonicalOrder {
			score, ok := results[trait]
			if !ok {
				continue
			}
			fmt.Printf("  %s  theta=%+.3f se=%.3f likert=%.2f (%s, %s, %d items)\n",
				trait, score.Theta, score.SE, score.Likert,
				scoring.Interpret(score.Likert), score.StoppingReason, score.Items)
		}
	}
	return nil
}

// #endregion dump
