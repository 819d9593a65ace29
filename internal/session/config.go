package session

import (
	"fmt"
	"time"

	"github.com/rfweber/qsotrainer/internal/qso"
	"github.com/rfweber/qsotrainer/internal/scoring"
)

// DefaultJoinGrace bounds how long a cancelling operation waits for the
// playback worker to exit. One token lasts well under a second at any
// practical speed, so exceeding this means the audio engine is hung.
const DefaultJoinGrace = 5 * time.Second

// Config is the immutable per-session configuration.
type Config struct {
	Count          int           // number of exchanges, 1-100
	Verbosity      qso.Verbosity // minimal, medium, chatty
	FuzzyThreshold float64       // minimum similarity for partial credit
	PartialCredit  bool
	CaseSensitive  bool
	JoinGrace      time.Duration // worker cancellation acknowledgment bound
}

// DefaultConfig returns the standard practice configuration.
func DefaultConfig() Config {
	return Config{
		Count:          5,
		Verbosity:      qso.VerbosityMedium,
		FuzzyThreshold: scoring.DefaultFuzzyThreshold,
		PartialCredit:  true,
		JoinGrace:      DefaultJoinGrace,
	}
}

// Validate checks ranges; zero values that have defaults are filled by
// withDefaults before sessions are built.
func (c Config) Validate() error {
	if c.Count < 1 || c.Count > 100 {
		return fmt.Errorf("exchange count must be between 1 and 100, got %d", c.Count)
	}
	if !c.Verbosity.Valid() {
		return fmt.Errorf("invalid verbosity: %q", c.Verbosity)
	}
	if c.FuzzyThreshold < scoring.MinFuzzyThreshold || c.FuzzyThreshold > scoring.MaxFuzzyThreshold {
		return fmt.Errorf("fuzzy threshold must be between %.1f and %.1f, got %g",
			scoring.MinFuzzyThreshold, scoring.MaxFuzzyThreshold, c.FuzzyThreshold)
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.Verbosity == "" {
		c.Verbosity = qso.VerbosityMedium
	}
	if c.FuzzyThreshold == 0 {
		c.FuzzyThreshold = scoring.DefaultFuzzyThreshold
	}
	if c.JoinGrace <= 0 {
		c.JoinGrace = DefaultJoinGrace
	}
	return c
}

func (c Config) scoringOptions() scoring.Options {
	return scoring.Options{
		FuzzyThreshold: c.FuzzyThreshold,
		PartialCredit:  c.PartialCredit,
		CaseSensitive:  c.CaseSensitive,
	}
}
