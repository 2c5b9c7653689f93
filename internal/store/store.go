// Package store persists assessment sessions in SQLite: one row per
// session, one row per administered item, and final per-trait results.
// A persisted history plus the session's captured grid and knobs is enough
// to rebuild the session deterministically by replaying record calls.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/config"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/dose"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/scoring"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	session_id      TEXT PRIMARY KEY,
	participant_id  TEXT NOT NULL,
	phase           TEXT NOT NULL,
	se_threshold    REAL NOT NULL,
	max_items       INTEGER NOT NULL,
	theta_min       REAL NOT NULL,
	theta_max       REAL NOT NULL,
	theta_points    INTEGER NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS responses (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id          TEXT NOT NULL,
	item_number         INTEGER NOT NULL,
	trait               TEXT NOT NULL,
	response            INTEGER NOT NULL,
	theta_before        REAL NOT NULL,
	theta_after         REAL NOT NULL,
	se_before           REAL NOT NULL,
	se_after            REAL NOT NULL,
	fisher_information  REAL NOT NULL,
	presentation_order  INTEGER NOT NULL,
	created_at          TEXT NOT NULL,
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
CREATE INDEX IF NOT EXISTS idx_responses_session ON responses(session_id, presentation_order);

CREATE TABLE IF NOT EXISTS results (
	session_id       TEXT NOT NULL,
	trait            TEXT NOT NULL,
	theta            REAL NOT NULL,
	se               REAL NOT NULL,
	likert           REAL NOT NULL,
	items            INTEGER NOT NULL,
	stopping_reason  TEXT NOT NULL,
	created_at       TEXT NOT NULL,
	PRIMARY KEY (session_id, trait),
	FOREIGN KEY (session_id) REFERENCES sessions(session_id)
);
`

// #endregion schema

// #region store-struct

// Store manages assessment sessions in SQLite.
type Store struct {
	db *sql.DB
}

// SessionRecord is one persisted session header with its captured knobs.
type SessionRecord struct {
	SessionID     string
	ParticipantID string
	Phase         dose.Phase
	Config        config.Config
	CreatedAt     time.Time
}

// #endregion store-struct

// #region constructor

// Open opens (or creates) the database and runs migrations.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for inspection tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion constructor

// #region sessions

// CreateSession persists a new session header with its captured config.
func (s *Store) CreateSession(sessionID, participantID string, cfg config.Config) error {
	_, err := s.db.Exec(
		`INSERT INTO sessions (session_id, participant_id, phase, se_threshold, max_items, theta_min, theta_max, theta_points, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, participantID, string(dose.PhaseAwaitingResponse),
		cfg.SEThreshold, cfg.MaxItemsPerTrait, cfg.ThetaMin, cfg.ThetaMax, cfg.ThetaPoints,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// SetPhase updates a session's state machine phase.
func (s *Store) SetPhase(sessionID string, phase dose.Phase) error {
	res, err := s.db.Exec(
		`UPDATE sessions SET phase = ? WHERE session_id = ?`, string(phase), sessionID,
	)
	if err != nil {
		return fmt.Errorf("set phase: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", dose.ErrUnknownSession, sessionID)
	}
	return nil
}

// GetSession loads a session header.
func (s *Store) GetSession(sessionID string) (SessionRecord, error) {
	var rec SessionRecord
	var phase, createdStr string
	err := s.db.QueryRow(
		`SELECT session_id, participant_id, phase, se_threshold, max_items, theta_min, theta_max, theta_points, created_at
		 FROM sessions WHERE session_id = ?`, sessionID,
	).Scan(&rec.SessionID, &rec.ParticipantID, &phase,
		&rec.Config.SEThreshold, &rec.Config.MaxItemsPerTrait,
		&rec.Config.ThetaMin, &rec.Config.ThetaMax, &rec.Config.ThetaPoints,
		&createdStr)
	if err == sql.ErrNoRows {
		return SessionRecord{}, fmt.Errorf("%w: %s", dose.ErrUnknownSession, sessionID)
	}
	if err != nil {
		return SessionRecord{}, fmt.Errorf("get session %s: %w", sessionID, err)
	}
	rec.Phase = dose.Phase(phase)
	rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return rec, nil
}

// ListSessions returns the most recent session headers.
func (s *Store) ListSessions(limit int) ([]SessionRecord, error) {
	rows, err := s.db.Query(
		`SELECT session_id, participant_id, phase, se_threshold, max_items, theta_min, theta_max, theta_points, created_at
		 FROM sessions ORDER BY created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var records []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var phase, createdStr string
		if err := rows.Scan(&rec.SessionID, &rec.ParticipantID, &phase,
			&rec.Config.SEThreshold, &rec.Config.MaxItemsPerTrait,
			&rec.Config.ThetaMin, &rec.Config.ThetaMax, &rec.Config.ThetaPoints,
			&createdStr); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		rec.Phase = dose.Phase(phase)
		rec.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// #endregion sessions

// #region responses

// AppendResponse persists one history row.
func (s *Store) AppendResponse(sessionID string, row dose.HistoryRow) error {
	_, err := s.db.Exec(
		`INSERT INTO responses (session_id, item_number, trait, response, theta_before, theta_after, se_before, se_after, fisher_information, presentation_order, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, row.ItemNumber, string(row.Trait), row.Response,
		row.ThetaBefore, row.ThetaAfter, row.SEBefore, row.SEAfter,
		row.FisherInformation, row.PresentationOrder,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

// History returns a session's administered items in presentation order.
func (s *Store) History(sessionID string) ([]dose.HistoryRow, error) {
	rows, err := s.db.Query(
		`SELECT item_number, trait, response, theta_before, theta_after, se_before, se_after, fisher_information, presentation_order
		 FROM responses WHERE session_id = ? ORDER BY presentation_order ASC`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var history []dose.HistoryRow
	for rows.Next() {
		var row dose.HistoryRow
		var trait string
		if err := rows.Scan(&row.ItemNumber, &trait, &row.Response,
			&row.ThetaBefore, &row.ThetaAfter, &row.SEBefore, &row.SEAfter,
			&row.FisherInformation, &row.PresentationOrder); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		row.Trait = bank.Trait(trait)
		history = append(history, row)
	}
	return history, rows.Err()
}

// #endregion responses

// #region results

// SaveResults persists the scoring-adapter output for a completed session.
func (s *Store) SaveResults(sessionID string, scores map[bank.Trait]scoring.TraitScore) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339Nano)
	for _, trait := range bank.CanonicalOrder {
		score, ok := scores[trait]
		if !ok {
			continue
		}
		_, err := tx.Exec(
			`INSERT INTO results (session_id, trait, theta, se, likert, items, stopping_reason, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(session_id, trait) DO UPDATE SET
			   theta = excluded.theta, se = excluded.se, likert = excluded.likert,
			   items = excluded.items, stopping_reason = excluded.stopping_reason`,
			sessionID, string(trait), score.Theta, score.SE, score.Likert,
			score.Items, string(score.StoppingReason), now,
		)
		if err != nil {
			return fmt.Errorf("insert result %s/%s: %w", sessionID, trait, err)
		}
	}
	return tx.Commit()
}

// Results loads a session's per-trait scores.
func (s *Store) Results(sessionID string) (map[bank.Trait]scoring.TraitScore, error) {
	rows, err := s.db.Query(
		`SELECT trait, theta, se, likert, items, stopping_reason
		 FROM results WHERE session_id = ?`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	out := make(map[bank.Trait]scoring.TraitScore)
	for rows.Next() {
		var trait, reason string
		var score scoring.TraitScore
		if err := rows.Scan(&trait, &score.Theta, &score.SE, &score.Likert,
			&score.Items, &reason); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		score.StoppingReason = dose.StoppingReason(reason)
		out[bank.Trait(trait)] = score
	}
	return out, rows.Err()
}

// #endregion results

// #region rebuild

// RebuildController reconstructs a session's controller by replaying its
// persisted history through a fresh controller built from the same captured
// config. With an identical bank and grid the rebuilt estimates match the
// originals bitwise.
func (s *Store) RebuildController(sessionID string, b *bank.Bank) (*dose.Controller, error) {
	rec, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	history, err := s.History(sessionID)
	if err != nil {
		return nil, err
	}

	ctrl, err := dose.NewController(b, rec.Config)
	if err != nil {
		return nil, err
	}
	for _, row := range history {
		if err := ctrl.ApplyRecorded(row.ItemNumber, row.Response); err != nil {
			return nil, fmt.Errorf("replay item %d: %w", row.ItemNumber, err)
		}
	}
	return ctrl, nil
}

// #endregion rebuild
