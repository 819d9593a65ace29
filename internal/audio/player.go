package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/rfweber/qsotrainer/pkg/logger"
)

// Standard CW timing in dit units (PARIS convention).
const (
	dahUnits  = 3
	symbolGap = 1
	charGap   = 3
	wordGap   = 7
)

// Config holds the playback parameters.
type Config struct {
	WPM         int     // words per minute, PARIS timing
	FrequencyHz float64 // sidetone frequency
	SampleRate  int     // output sample rate
}

// DefaultConfig returns sensible CW practice settings.
func DefaultConfig() Config {
	return Config{
		WPM:         20,
		FrequencyHz: 700,
		SampleRate:  44100,
	}
}

// Validate checks the playback parameters.
func (c Config) Validate() error {
	if c.WPM < 5 || c.WPM > 60 {
		return fmt.Errorf("wpm must be between 5 and 60, got %d", c.WPM)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.FrequencyHz <= 0 {
		return fmt.Errorf("tone frequency must be positive, got %f", c.FrequencyHz)
	}
	return nil
}

// Player renders playback tokens as Morse audio, one blocking call per
// token. It implements the session's TokenPlayer collaborator.
type Player struct {
	cfg    Config
	sink   io.Writer
	logger *logger.Logger
}

// NewPlayer creates a Player writing PCM16 mono samples to sink.
func NewPlayer(cfg Config, sink io.Writer, log *logger.Logger) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Player{
		cfg:    cfg,
		sink:   sink,
		logger: log.Named("morse-player"),
	}, nil
}

// ditDuration is the length of one dit: 1.2s / WPM.
func (p *Player) ditDuration() time.Duration {
	return time.Duration(1.2 / float64(p.cfg.WPM) * float64(time.Second))
}

// PlayToken renders one playback token (a word or prosign) followed by
// the inter-word gap. It blocks until the sink has accepted all samples.
func (p *Player) PlayToken(token string) error {
	dit := p.ditDuration()
	var samples []int16

	first := true
	for _, r := range strings.ToUpper(token) {
		code, ok := morseTable[r]
		if !ok {
			continue
		}
		if !first {
			samples = p.appendSilence(samples, time.Duration(charGap)*dit)
		}
		first = false
		for i, symbol := range code {
			if i > 0 {
				samples = p.appendSilence(samples, time.Duration(symbolGap)*dit)
			}
			units := 1
			if symbol == '-' {
				units = dahUnits
			}
			samples = p.appendTone(samples, time.Duration(units)*dit)
		}
	}
	samples = p.appendSilence(samples, time.Duration(wordGap)*dit)

	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	if _, err := p.sink.Write(buf); err != nil {
		return fmt.Errorf("failed to write audio samples: %w", err)
	}
	return nil
}

// TokenDuration reports how long the rendered token plays, including
// the trailing word gap. Used to size cancellation grace periods.
func (p *Player) TokenDuration(token string) time.Duration {
	dit := p.ditDuration()
	var units int
	first := true
	for _, r := range strings.ToUpper(token) {
		code, ok := morseTable[r]
		if !ok {
			continue
		}
		if !first {
			units += charGap
		}
		first = false
		for i, symbol := range code {
			if i > 0 {
				units += symbolGap
			}
			if symbol == '-' {
				units += dahUnits
			} else {
				units++
			}
		}
	}
	units += wordGap
	return time.Duration(units) * dit
}

func (p *Player) sampleCount(d time.Duration) int {
	return int(float64(p.cfg.SampleRate) * d.Seconds())
}

func (p *Player) appendTone(samples []int16, d time.Duration) []int16 {
	n := p.sampleCount(d)
	step := 2 * math.Pi * p.cfg.FrequencyHz / float64(p.cfg.SampleRate)
	for i := 0; i < n; i++ {
		samples = append(samples, int16(math.Sin(float64(i)*step)*math.MaxInt16*0.8))
	}
	return samples
}

func (p *Player) appendSilence(samples []int16, d time.Duration) []int16 {
	n := p.sampleCount(d)
	for i := 0; i < n; i++ {
		samples = append(samples, 0)
	}
	return samples
}
