package session

import (
	"sync"
	"time"

	"github.com/rfweber/qsotrainer/pkg/logger"
)

// playbackWorker drives one exchange's tokens through the audio engine
// on its own goroutine. It never touches session state: the controller
// observes it only through pause/cancel signals and the done channel.
type playbackWorker struct {
	tokens []string
	player TokenPlayer
	logger *logger.Logger

	mu        sync.Mutex
	cond      *sync.Cond
	paused    bool
	cancelled bool

	done chan struct{}
}

// newPlaybackWorker creates a worker and starts its goroutine. The
// token slice is read once at spawn and never mutated.
func newPlaybackWorker(tokens []string, player TokenPlayer, log *logger.Logger) *playbackWorker {
	w := &playbackWorker{
		tokens: tokens,
		player: player,
		logger: log,
		done:   make(chan struct{}),
	}
	w.cond = sync.NewCond(&w.mu)
	go w.run()
	return w
}

func (w *playbackWorker) run() {
	defer close(w.done)
	for _, token := range w.tokens {
		// Checkpoint: honor pause, exit on cancellation. The only
		// blocking call outside this gate is the audio engine itself.
		if !w.gate() {
			return
		}
		if err := w.player.PlayToken(token); err != nil {
			w.logger.Warn("Playback aborted by audio engine",
				logger.String("token", token),
				logger.Error(err),
			)
			return
		}
	}
}

// gate blocks while paused and reports whether the worker may continue.
func (w *playbackWorker) gate() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	for w.paused && !w.cancelled {
		w.cond.Wait()
	}
	return !w.cancelled
}

// pause suspends playback at the next token boundary.
func (w *playbackWorker) pause() {
	w.mu.Lock()
	w.paused = true
	w.mu.Unlock()
}

// resume releases a paused worker.
func (w *playbackWorker) resume() {
	w.mu.Lock()
	w.paused = false
	w.mu.Unlock()
	w.cond.Broadcast()
}

// cancel requests cooperative termination. The worker exits at its next
// checkpoint; cancel also wakes a paused worker.
func (w *playbackWorker) cancel() {
	w.mu.Lock()
	w.cancelled = true
	w.mu.Unlock()
	w.cond.Broadcast()
}

// join waits for the worker goroutine to exit. It returns false if the
// worker did not exit within the grace period, which can only happen
// when the audio engine call never returns.
func (w *playbackWorker) join(grace time.Duration) bool {
	select {
	case <-w.done:
		return true
	case <-time.After(grace):
		return false
	}
}
