package session

import (
	"fmt"
	"sync"

	"github.com/rfweber/qsotrainer/internal/qso"
	"github.com/rfweber/qsotrainer/internal/scoring"
	"github.com/rfweber/qsotrainer/pkg/logger"
)

// PracticeSession is the session state machine and playback
// coordinator. It owns the ordered exchange list, the current position,
// at most one playback worker, and the session scorer.
//
// All state transitions are serialized by one lock. The worker never
// takes the lock and never mutates session fields; cancelling
// operations (pause, stop, submit, replay, skip) take effect within at
// most one in-flight token. Callers must not invoke control operations
// concurrently.
type PracticeSession struct {
	cfg    Config
	player TokenPlayer
	logger *logger.Logger

	mu        sync.Mutex
	state     SessionState
	index     int
	exchanges []qso.Exchange
	worker    *playbackWorker
	scorer    *scoring.SessionScorer

	stateListeners    []StateListener
	completeListeners []CompleteListener
}

// New creates a session over an already-generated exchange list. An
// empty list is rejected: a session must never enter READY with no
// work.
func New(cfg Config, exchanges []qso.Exchange, player TokenPlayer, log *logger.Logger) (*PracticeSession, error) {
	if len(exchanges) == 0 {
		return nil, fmt.Errorf("session requires at least one exchange")
	}
	if player == nil {
		return nil, fmt.Errorf("session requires an audio engine")
	}
	cfg = cfg.withDefaults()
	cfg.Count = len(exchanges)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}

	return &PracticeSession{
		cfg:       cfg,
		player:    player,
		logger:    log.Named("practice-session"),
		state:     StateReady,
		exchanges: exchanges,
		scorer:    scoring.NewSessionScorer(),
	}, nil
}

// Start begins playback of the first exchange.
func (s *PracticeSession) Start() error {
	s.mu.Lock()
	if s.state != StateReady {
		defer s.mu.Unlock()
		return &StateError{Op: "start", State: s.state}
	}
	s.spawnLocked()
	s.state = StatePlaying
	s.mu.Unlock()

	s.logger.Info("Session started", logger.Int("exchanges", len(s.exchanges)))
	s.notifyState(StatePlaying)
	return nil
}

// Pause suspends playback at the next token boundary. Pausing an
// already-paused session is a no-op, not an error.
func (s *PracticeSession) Pause() error {
	s.mu.Lock()
	switch s.state {
	case StatePaused:
		s.mu.Unlock()
		return nil
	case StatePlaying:
		if s.worker != nil {
			s.worker.pause()
		}
		s.state = StatePaused
		s.mu.Unlock()
		s.notifyState(StatePaused)
		return nil
	default:
		defer s.mu.Unlock()
		return &StateError{Op: "pause", State: s.state}
	}
}

// Resume continues playback from the suspension point.
func (s *PracticeSession) Resume() error {
	s.mu.Lock()
	if s.state != StatePaused {
		defer s.mu.Unlock()
		return &StateError{Op: "resume", State: s.state}
	}
	if s.worker != nil {
		s.worker.resume()
	}
	s.state = StatePlaying
	s.mu.Unlock()
	s.notifyState(StatePlaying)
	return nil
}

// Replay cancels the current playback and restarts the current exchange
// from the first token.
func (s *PracticeSession) Replay() error {
	s.mu.Lock()
	if s.state != StatePlaying && s.state != StatePaused {
		defer s.mu.Unlock()
		return &StateError{Op: "replay", State: s.state}
	}
	if !s.haltWorkerLocked() {
		return s.hangLocked("replay")
	}
	s.spawnLocked()
	s.state = StatePlaying
	s.mu.Unlock()
	s.notifyState(StatePlaying)
	return nil
}

// Submit grades the caller's transcription of the current exchange.
// It may be called at any time during PLAYING or PAUSED: any active
// playback is cancelled and joined before scoring, the result is
// recorded, and the session advances to the next exchange or COMPLETE.
// Missing answers grade as empty strings; an exchange whose ground
// truth is unusable is recorded as a zero result and the session still
// advances.
func (s *PracticeSession) Submit(answers map[string]string) (scoring.ScoreResult, error) {
	s.mu.Lock()
	if s.state != StatePlaying && s.state != StatePaused {
		defer s.mu.Unlock()
		return scoring.ScoreResult{}, &StateError{Op: "submit", State: s.state}
	}
	if !s.haltWorkerLocked() {
		return scoring.ScoreResult{}, s.hangLocked("submit")
	}

	exchange := s.exchanges[s.index]
	result, err := scoring.ScoreQSO(answers, exchange.GroundTruth, s.cfg.scoringOptions())
	if err != nil {
		// Producer defect: record a flagged zero result and move on
		// rather than aborting the whole session.
		s.logger.Warn("Exchange has unusable ground truth; recording zero result",
			logger.Int("index", s.index),
			logger.Error(err),
		)
		result = scoring.InvalidResult()
	}
	s.scorer.Record(result)
	index := s.index
	notify := s.advanceLocked()
	s.mu.Unlock()

	s.logger.Info("Transcription scored",
		logger.Int("index", index),
		logger.Float64("percentage", result.Percentage),
	)
	notify()
	return result, nil
}

// Skip abandons the current exchange, recording a zero entry marked as
// skipped, and advances.
func (s *PracticeSession) Skip() error {
	s.mu.Lock()
	if s.state != StatePlaying && s.state != StatePaused {
		defer s.mu.Unlock()
		return &StateError{Op: "skip", State: s.state}
	}
	if !s.haltWorkerLocked() {
		return s.hangLocked("skip")
	}

	s.scorer.Record(scoring.SkippedResult(s.exchanges[s.index].GroundTruth))
	index := s.index
	notify := s.advanceLocked()
	s.mu.Unlock()

	s.logger.Info("Exchange skipped", logger.Int("index", index))
	notify()
	return nil
}

// Stop terminates the session. Any active worker is cancelled and
// joined before Stop returns; no playback continues afterwards.
func (s *PracticeSession) Stop() error {
	s.mu.Lock()
	switch s.state {
	case StateReady, StatePlaying, StatePaused:
	default:
		defer s.mu.Unlock()
		return &StateError{Op: "stop", State: s.state}
	}
	if !s.haltWorkerLocked() {
		return s.hangLocked("stop")
	}
	s.state = StateStopped
	s.mu.Unlock()

	s.logger.Info("Session stopped")
	s.notifyState(StateStopped)
	return nil
}

// Close guarantees the worker has fully stopped. Safe to call in any
// state; closing a terminal session is a no-op.
func (s *PracticeSession) Close() error {
	s.mu.Lock()
	if s.state.Terminal() {
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()
	return s.Stop()
}

// State returns the current session state.
func (s *PracticeSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Progress returns the zero-based current exchange index and the total
// exchange count. A completed session reports (total, total).
func (s *PracticeSession) Progress() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index, len(s.exchanges)
}

// CurrentExchange returns the exchange being played, or false after the
// session has finished all exchanges.
func (s *PracticeSession) CurrentExchange() (qso.Exchange, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index >= len(s.exchanges) {
		return qso.Exchange{}, false
	}
	return s.exchanges[s.index], true
}

// Summary returns the scoring summary so far; after COMPLETE it is the
// final session summary.
func (s *PracticeSession) Summary() scoring.SessionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scorer.Summary()
}

// OnStateChange registers a listener for state transitions. Delivery is
// synchronous, in registration order, on the goroutine performing the
// transition.
func (s *PracticeSession) OnStateChange(listener StateListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stateListeners = append(s.stateListeners, listener)
}

// OnComplete registers a listener for the completion summary.
func (s *PracticeSession) OnComplete(listener CompleteListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completeListeners = append(s.completeListeners, listener)
}

// spawnLocked starts a worker for the current exchange. The worker
// receives its token list at spawn and reads no session state.
func (s *PracticeSession) spawnLocked() {
	s.worker = newPlaybackWorker(s.exchanges[s.index].Tokens, s.player, s.logger)
}

// haltWorkerLocked cancels the active worker, if any, and waits for it
// to exit. Returns false only when the worker missed the join grace,
// meaning the audio engine call never returned.
func (s *PracticeSession) haltWorkerLocked() bool {
	if s.worker == nil {
		return true
	}
	w := s.worker
	s.worker = nil
	w.cancel()
	return w.join(s.cfg.JoinGrace)
}

// hangLocked forces the session to STOPPED after a worker failed to
// acknowledge cancellation. It releases the lock, notifies listeners,
// and returns the fatal error for the caller to propagate.
func (s *PracticeSession) hangLocked(op string) error {
	s.state = StateStopped
	s.mu.Unlock()

	s.logger.Error("Playback worker failed to acknowledge cancellation; session forced to stopped",
		logger.String("op", op),
		logger.Duration("join_grace", s.cfg.JoinGrace),
	)
	s.notifyState(StateStopped)
	return &ConcurrencyError{Op: op}
}

// advanceLocked moves past the current exchange: either spawns the next
// worker or completes the session. It returns the notification calls to
// fire once the lock is released.
func (s *PracticeSession) advanceLocked() func() {
	s.index++
	if s.index >= len(s.exchanges) {
		s.state = StateComplete
		summary := s.scorer.Summary()
		return func() {
			s.notifyState(StateComplete)
			s.notifyComplete(summary)
		}
	}
	s.spawnLocked()
	s.state = StatePlaying
	return func() { s.notifyState(StatePlaying) }
}

func (s *PracticeSession) notifyState(state SessionState) {
	s.mu.Lock()
	listeners := append([]StateListener(nil), s.stateListeners...)
	s.mu.Unlock()
	for _, listener := range listeners {
		listener(state)
	}
}

func (s *PracticeSession) notifyComplete(summary scoring.SessionSummary) {
	s.mu.Lock()
	listeners := append([]CompleteListener(nil), s.completeListeners...)
	s.mu.Unlock()
	for _, listener := range listeners {
		listener(summary)
	}
}
