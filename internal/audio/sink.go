package audio

import "time"

// PacedSink consumes PCM16 mono samples in real time: each write
// sleeps for the duration the written samples represent. It stands in
// for a sound device when none is attached, keeping playback, pause,
// and cancellation observable at their real timing.
type PacedSink struct {
	sampleRate int
}

// NewPacedSink creates a sink pacing writes at the given sample rate.
func NewPacedSink(sampleRate int) *PacedSink {
	return &PacedSink{sampleRate: sampleRate}
}

func (s *PacedSink) Write(p []byte) (int, error) {
	samples := len(p) / 2
	time.Sleep(time.Duration(samples) * time.Second / time.Duration(s.sampleRate))
	return len(p), nil
}
