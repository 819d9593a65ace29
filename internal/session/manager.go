package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rfweber/qsotrainer/internal/qso"
	"github.com/rfweber/qsotrainer/internal/scoring"
	"github.com/rfweber/qsotrainer/pkg/logger"
)

// Record is the persisted form of a finished session: the generated
// exchanges, the configuration they were practiced under, and the final
// scoring summary.
type Record struct {
	ID        string
	CreatedAt time.Time
	Config    Config
	Exchanges []qso.Exchange
	Summary   scoring.SessionSummary
}

// Archiver persists completed session records for later review.
type Archiver interface {
	SaveSession(ctx context.Context, rec Record) error
}

// Event is a session lifecycle notification pushed to connected UIs.
type Event struct {
	SessionID string                  `json:"session_id"`
	Type      string                  `json:"type"` // "state" or "complete"
	State     SessionState            `json:"state"`
	Current   int                     `json:"current"`
	Total     int                     `json:"total"`
	Summary   *scoring.SessionSummary `json:"summary,omitempty"`
}

// EventSink receives session events; the websocket server implements it.
type EventSink interface {
	Publish(event Event)
}

// PlayerFactory builds the audio engine for a new session.
type PlayerFactory func(sessionID string) (TokenPlayer, error)

// Manager owns the live sessions, keyed by ID. Each session remains
// single-consumer; the manager only provides keyed access and wires
// event and archival listeners.
type Manager struct {
	players  PlayerFactory
	archiver Archiver
	events   EventSink
	logger   *logger.Logger

	mu        sync.Mutex
	generator *qso.Generator
	sessions  map[string]*PracticeSession
}

// NewManager creates a session manager. archiver and events may be nil
// when persistence or event push is not wanted.
func NewManager(generator *qso.Generator, players PlayerFactory, archiver Archiver, events EventSink, log *logger.Logger) *Manager {
	return &Manager{
		players:   players,
		archiver:  archiver,
		events:    events,
		logger:    log.Named("session-manager"),
		generator: generator,
		sessions:  make(map[string]*PracticeSession),
	}
}

// CreateParams selects the configuration for a new session.
type CreateParams struct {
	Config  Config
	Region1 string // callsign region filter for the calling station
	Region2 string // callsign region filter for the responding station
	Seed    int64  // non-zero for a reproducible session
}

// Create generates the exchange list and builds a new session around
// it. The returned ID addresses the session in later calls.
func (m *Manager) Create(params CreateParams) (string, *PracticeSession, error) {
	cfg := params.Config.withDefaults()
	if cfg.Count == 0 {
		cfg.Count = DefaultConfig().Count
	}
	if err := cfg.Validate(); err != nil {
		return "", nil, err
	}

	generator := m.generator
	if params.Seed != 0 {
		generator = qso.NewSeededGenerator(params.Seed)
	}

	m.mu.Lock()
	exchanges, err := generator.Exchanges(cfg.Count, qso.GenerateOptions{
		Verbosity: cfg.Verbosity,
		Region1:   params.Region1,
		Region2:   params.Region2,
	})
	m.mu.Unlock()
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate exchanges: %w", err)
	}

	id := uuid.NewString()
	player, err := m.players(id)
	if err != nil {
		return "", nil, fmt.Errorf("failed to build audio engine: %w", err)
	}

	sess, err := New(cfg, exchanges, player, m.logger)
	if err != nil {
		return "", nil, err
	}

	createdAt := time.Now().UTC()
	if m.events != nil {
		sess.OnStateChange(func(state SessionState) {
			current, total := sess.Progress()
			m.events.Publish(Event{
				SessionID: id,
				Type:      "state",
				State:     state,
				Current:   current,
				Total:     total,
			})
		})
	}
	sess.OnComplete(func(summary scoring.SessionSummary) {
		if m.events != nil {
			current, total := sess.Progress()
			m.events.Publish(Event{
				SessionID: id,
				Type:      "complete",
				State:     StateComplete,
				Current:   current,
				Total:     total,
				Summary:   &summary,
			})
		}
		if m.archiver != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			rec := Record{
				ID:        id,
				CreatedAt: createdAt,
				Config:    cfg,
				Exchanges: exchanges,
				Summary:   summary,
			}
			if err := m.archiver.SaveSession(ctx, rec); err != nil {
				m.logger.Error("Failed to archive completed session",
					logger.String("session_id", id),
					logger.Error(err),
				)
			}
		}
	})

	m.mu.Lock()
	m.sessions[id] = sess
	m.mu.Unlock()

	m.logger.Info("Session created",
		logger.String("session_id", id),
		logger.Int("exchanges", cfg.Count),
		logger.String("verbosity", string(cfg.Verbosity)),
	)
	return id, sess, nil
}

// Get returns the session with the given ID.
func (m *Manager) Get(id string) (*PracticeSession, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	return sess, ok
}

// Remove stops and forgets a session. Removing an unknown ID is a
// no-op.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		if err := sess.Close(); err != nil {
			m.logger.Warn("Error closing session on removal",
				logger.String("session_id", id),
				logger.Error(err),
			)
		}
	}
}

// CloseAll stops every live session. Called on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := make([]*PracticeSession, 0, len(m.sessions))
	for _, sess := range m.sessions {
		sessions = append(sessions, sess)
	}
	m.sessions = make(map[string]*PracticeSession)
	m.mu.Unlock()

	for _, sess := range sessions {
		if err := sess.Close(); err != nil {
			m.logger.Warn("Error closing session on shutdown", logger.Error(err))
		}
	}
}
