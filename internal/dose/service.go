package dose

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/bank"
	"github.com/danielpatrickdp/adaptive-assessment/go-engine/internal/config"
)

// ErrUnknownSession means the session id is not registered with the service.
var ErrUnknownSession = errors.New("unknown session")

// #region service

// Service is the collaborator-facing registry of live sessions. Each session
// is its own Controller with no shared mutable state; the mutex guards only
// the registry map. Serializing Respond calls per session remains the
// collaborator's job.
type Service struct {
	bank *bank.Bank
	cfg  config.Config

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	id            string
	participantID string
	ctrl          *Controller
}

// NewService creates a service over a validated bank and captured config.
func NewService(b *bank.Bank, cfg config.Config) *Service {
	return &Service{
		bank:     b,
		cfg:      cfg,
		sessions: make(map[string]*session),
	}
}

// #endregion service

// #region start-session

// StartResult is the response to StartSession.
type StartResult struct {
	SessionID   string                  `json:"session_id"`
	CurrentItem PresentedItem           `json:"current_item"`
	Estimates   map[bank.Trait]Estimate `json:"estimates"`
}

// StartSession creates a session for the participant and presents its first
// item.
func (s *Service) StartSession(participantID string) (StartResult, error) {
	ctrl, err := NewController(s.bank, s.cfg)
	if err != nil {
		return StartResult{}, err
	}

	first, err := ctrl.Start()
	if err != nil {
		return StartResult{}, fmt.Errorf("start session: %w", err)
	}

	sess := &session{
		id:            uuid.New().String(),
		participantID: participantID,
		ctrl:          ctrl,
	}

	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()

	log.Printf("[DOSE] session %s started for participant %s: first item %d (%s)",
		sess.id, participantID, first.Number, first.Trait)

	return StartResult{
		SessionID:   sess.id,
		CurrentItem: first,
		Estimates:   ctrl.Estimates(),
	}, nil
}

// #endregion start-session

// #region respond

// Respond forwards the raw response to the session's controller.
func (s *Service) Respond(sessionID string, raw int) (RespondResult, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return RespondResult{}, err
	}

	result, err := sess.ctrl.Respond(raw)
	if err != nil {
		if sess.ctrl.Phase() == PhaseFailed {
			log.Printf("[DOSE] session %s failed after %d items: %v",
				sessionID, len(sess.ctrl.history), err)
		}
		return RespondResult{}, err
	}

	if result.Action == ActionComplete {
		log.Printf("[DOSE] session %s complete: %d items administered",
			sessionID, result.Progress.ItemsAdministered)
	}
	return result, nil
}

// #endregion respond

// #region snapshot

// Snapshot is the read-only, idempotent view of a session.
type Snapshot struct {
	SessionID     string                  `json:"session_id"`
	ParticipantID string                  `json:"participant_id"`
	Phase         Phase                   `json:"phase"`
	CurrentItem   *PresentedItem          `json:"current_item,omitempty"`
	Estimates     map[bank.Trait]Estimate `json:"estimates"`
	History       []HistoryRow            `json:"history"`
	Progress      Progress                `json:"progress"`
}

// Snapshot reports estimates and history without mutating anything.
func (s *Service) Snapshot(sessionID string) (Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	ctrl := sess.ctrl
	return Snapshot{
		SessionID:     sess.id,
		ParticipantID: sess.participantID,
		Phase:         ctrl.Phase(),
		CurrentItem:   ctrl.Current(),
		Estimates:     ctrl.Estimates(),
		History:       ctrl.History(),
		Progress:      ctrl.progress(),
	}, nil
}

// #endregion snapshot

// #region lookup

func (s *Service) lookup(sessionID string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSession, sessionID)
	}
	return sess, nil
}

// #endregion lookup
