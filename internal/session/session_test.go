package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rfweber/qsotrainer/internal/qso"
	"github.com/rfweber/qsotrainer/internal/scoring"
	"github.com/rfweber/qsotrainer/pkg/logger"
)

// recordingPlayer is an instant fake audio engine that remembers every
// token it was asked to play.
type recordingPlayer struct {
	mu     sync.Mutex
	played []string
}

func (p *recordingPlayer) PlayToken(token string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.played = append(p.played, token)
	return nil
}

func (p *recordingPlayer) tokens() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.played...)
}

// hangingPlayer blocks forever once inside PlayToken, simulating a
// wedged audio backend that never returns. It closes entered on the
// first call so tests can wait until the worker is actually stuck
// inside the engine rather than at a cancellation checkpoint.
type hangingPlayer struct {
	entered chan struct{}
	once    sync.Once
}

func newHangingPlayer() *hangingPlayer {
	return &hangingPlayer{entered: make(chan struct{})}
}

func (p *hangingPlayer) PlayToken(string) error {
	p.once.Do(func() { close(p.entered) })
	<-make(chan struct{})
	return nil
}

// slowPlayer takes a fixed time per token and counts how many calls
// are in flight at once.
type slowPlayer struct {
	delay time.Duration

	mu       sync.Mutex
	inFlight int
	maxSeen  int
}

func (p *slowPlayer) PlayToken(string) error {
	p.mu.Lock()
	p.inFlight++
	if p.inFlight > p.maxSeen {
		p.maxSeen = p.inFlight
	}
	p.mu.Unlock()

	time.Sleep(p.delay)

	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()
	return nil
}

func (p *slowPlayer) maxInFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxSeen
}

func testExchanges(n int) []qso.Exchange {
	exchanges := make([]qso.Exchange, n)
	for i := range exchanges {
		exchanges[i] = qso.Exchange{
			Verbosity: qso.VerbosityMinimal,
			Text:      "CQ CQ DE W1AW",
			Tokens:    []string{"CQ", "CQ", "DE", "W1AW"},
			GroundTruth: map[string]string{
				qso.KeyCallsign1: "W1AW",
				qso.KeyName1:     "JOHN",
				qso.KeyRST1:      "599",
			},
		}
	}
	return exchanges
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.JoinGrace = 500 * time.Millisecond
	return cfg
}

func newTestSession(t *testing.T, n int, player TokenPlayer) *PracticeSession {
	t.Helper()
	sess, err := New(testConfig(), testExchanges(n), player, logger.Nop())
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })
	return sess
}

func TestNewRejectsEmptyExchangeList(t *testing.T) {
	_, err := New(testConfig(), nil, &recordingPlayer{}, logger.Nop())
	if err == nil {
		t.Fatal("expected error for empty exchange list")
	}
}

func TestNewRejectsNilPlayer(t *testing.T) {
	_, err := New(testConfig(), testExchanges(1), nil, logger.Nop())
	if err == nil {
		t.Fatal("expected error for nil player")
	}
}

func TestLifecycleStates(t *testing.T) {
	sess := newTestSession(t, 2, &recordingPlayer{})

	if got := sess.State(); got != StateReady {
		t.Fatalf("initial state = %v, want %v", got, StateReady)
	}
	if err := sess.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if got := sess.State(); got != StatePlaying {
		t.Fatalf("state after start = %v, want %v", got, StatePlaying)
	}

	// Starting twice is invalid.
	var stateErr *StateError
	if err := sess.Start(); !errors.As(err, &stateErr) {
		t.Fatalf("second start: expected StateError, got %v", err)
	}

	if err := sess.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	// Pausing a paused session is a no-op.
	if err := sess.Pause(); err != nil {
		t.Fatalf("double pause: %v", err)
	}
	if err := sess.Resume(); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if err := sess.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if got := sess.State(); got != StateStopped {
		t.Fatalf("state after stop = %v, want %v", got, StateStopped)
	}

	// No operation revives a stopped session.
	if err := sess.Start(); !errors.As(err, &stateErr) {
		t.Fatalf("start after stop: expected StateError, got %v", err)
	}
	if err := sess.Resume(); !errors.As(err, &stateErr) {
		t.Fatalf("resume after stop: expected StateError, got %v", err)
	}
	if _, err := sess.Submit(nil); !errors.As(err, &stateErr) {
		t.Fatalf("submit after stop: expected StateError, got %v", err)
	}
}

func TestStopWhilePaused(t *testing.T) {
	sess := newTestSession(t, 1, &recordingPlayer{})
	if err := sess.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sess.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := sess.Stop(); err != nil {
		t.Fatalf("stop while paused: %v", err)
	}
	if got := sess.State(); got != StateStopped {
		t.Fatalf("state = %v, want %v", got, StateStopped)
	}
}

func TestSubmitDuringPlaybackAdvances(t *testing.T) {
	sess := newTestSession(t, 3, &recordingPlayer{})
	if err := sess.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	result, err := sess.Submit(map[string]string{
		qso.KeyCallsign1: "W1AW",
		qso.KeyName1:     "JOHN",
		qso.KeyRST1:      "599",
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Percentage != 100 {
		t.Fatalf("percentage = %v, want 100", result.Percentage)
	}

	current, total := sess.Progress()
	if current != 1 || total != 3 {
		t.Fatalf("progress = (%d, %d), want (1, 3)", current, total)
	}
	if got := sess.State(); got != StatePlaying {
		t.Fatalf("state after mid-session submit = %v, want %v", got, StatePlaying)
	}
}

func TestSubmitLastExchangeCompletes(t *testing.T) {
	sess := newTestSession(t, 1, &recordingPlayer{})
	if err := sess.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	var completed scoring.SessionSummary
	completeCalled := false
	sess.OnComplete(func(summary scoring.SessionSummary) {
		completed = summary
		completeCalled = true
	})

	if _, err := sess.Submit(map[string]string{qso.KeyCallsign1: "W1AW"}); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := sess.State(); got != StateComplete {
		t.Fatalf("state = %v, want %v", got, StateComplete)
	}
	if !completeCalled {
		t.Fatal("OnComplete listener not called")
	}
	if len(completed.Results) != 1 || completed.TotalElements != 3 {
		t.Fatalf("unexpected summary: %+v", completed)
	}

	current, total := sess.Progress()
	if current != 1 || total != 1 {
		t.Fatalf("progress = (%d, %d), want (1, 1)", current, total)
	}
	if _, ok := sess.CurrentExchange(); ok {
		t.Fatal("completed session should have no current exchange")
	}
}

func TestSkipRecordsZeroAndAdvances(t *testing.T) {
	sess := newTestSession(t, 1, &recordingPlayer{})
	if err := sess.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sess.Skip(); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if got := sess.State(); got != StateComplete {
		t.Fatalf("state = %v, want %v", got, StateComplete)
	}

	summary := sess.Summary()
	if len(summary.Results) != 1 || !summary.Results[0].Skipped {
		t.Fatalf("expected one skipped result, got %+v", summary.Results)
	}
	if summary.AveragePercent != 0 {
		t.Fatalf("average percent = %v, want 0", summary.AveragePercent)
	}
}

func TestSubmitWithUnusableGroundTruth(t *testing.T) {
	exchanges := testExchanges(2)
	exchanges[0].GroundTruth = nil

	sess, err := New(testConfig(), exchanges, &recordingPlayer{}, logger.Nop())
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	t.Cleanup(func() { _ = sess.Close() })

	if err := sess.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	result, err := sess.Submit(map[string]string{qso.KeyCallsign1: "W1AW"})
	if err != nil {
		t.Fatalf("submit over bad ground truth should not error: %v", err)
	}
	if !result.Invalid {
		t.Fatalf("expected invalid result, got %+v", result)
	}

	// The session moved on to the healthy exchange.
	current, _ := sess.Progress()
	if current != 1 || sess.State() != StatePlaying {
		t.Fatalf("session did not advance: index=%d state=%v", current, sess.State())
	}
}

func TestReplayRestartsCurrentExchange(t *testing.T) {
	player := &recordingPlayer{}
	sess := newTestSession(t, 1, player)
	if err := sess.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Wait for the first pass to finish rendering.
	waitFor(t, func() bool { return len(player.tokens()) >= 4 })

	if err := sess.Replay(); err != nil {
		t.Fatalf("replay: %v", err)
	}
	waitFor(t, func() bool { return len(player.tokens()) >= 8 })

	played := player.tokens()
	if played[0] != "CQ" || played[4] != "CQ" {
		t.Fatalf("replay did not restart from the first token: %v", played)
	}
	if got := sess.State(); got != StatePlaying {
		t.Fatalf("state after replay = %v, want %v", got, StatePlaying)
	}
}

func TestHungWorkerForcesStop(t *testing.T) {
	cfg := testConfig()
	cfg.JoinGrace = 50 * time.Millisecond

	player := newHangingPlayer()
	sess, err := New(cfg, testExchanges(1), player, logger.Nop())
	if err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	if err := sess.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	// Wait until the worker is inside the engine call; cancelling any
	// earlier would be acknowledged at the next checkpoint.
	select {
	case <-player.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("worker never reached the audio engine")
	}

	_, err = sess.Submit(map[string]string{qso.KeyCallsign1: "W1AW"})
	var concErr *ConcurrencyError
	if !errors.As(err, &concErr) {
		t.Fatalf("expected ConcurrencyError, got %v", err)
	}
	if got := sess.State(); got != StateStopped {
		t.Fatalf("state = %v, want %v", got, StateStopped)
	}
}

func TestConsecutiveSubmitsMidPlayback(t *testing.T) {
	player := &slowPlayer{delay: 20 * time.Millisecond}
	sess := newTestSession(t, 5, player)
	if err := sess.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	truth := testExchanges(1)[0].GroundTruth
	for i := 0; i < 5; i++ {
		result, err := sess.Submit(map[string]string{qso.KeyCallsign1: "W1AW"})
		if err != nil {
			t.Fatalf("submit %d: %v", i, err)
		}
		if len(result.Elements) != len(truth) {
			t.Fatalf("submit %d: %d elements, want %d", i, len(result.Elements), len(truth))
		}
	}

	if got := sess.State(); got != StateComplete {
		t.Fatalf("state = %v, want %v", got, StateComplete)
	}
	// Each submit joins the previous worker before the next one spawns.
	if got := player.maxInFlight(); got > 1 {
		t.Fatalf("%d workers were in the engine at once", got)
	}
}

func TestStateListenersFireInRegistrationOrder(t *testing.T) {
	sess := newTestSession(t, 1, &recordingPlayer{})

	var order []int
	sess.OnStateChange(func(SessionState) { order = append(order, 1) })
	sess.OnStateChange(func(SessionState) { order = append(order, 2) })

	if err := sess.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("unexpected listener order: %v", order)
	}
}

func TestStateListenerReceivesTransitions(t *testing.T) {
	sess := newTestSession(t, 1, &recordingPlayer{})

	var states []SessionState
	sess.OnStateChange(func(state SessionState) { states = append(states, state) })

	if err := sess.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sess.Pause(); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if err := sess.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []SessionState{StatePlaying, StatePaused, StateStopped}
	if len(states) != len(want) {
		t.Fatalf("states = %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Fatalf("states = %v, want %v", states, want)
		}
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	sess := newTestSession(t, 1, &recordingPlayer{})
	if err := sess.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := sess.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
	if got := sess.State(); got != StateStopped {
		t.Fatalf("state = %v, want %v", got, StateStopped)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}
