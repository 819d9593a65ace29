package audio

import (
	"bytes"
	"testing"
	"time"

	"github.com/rfweber/qsotrainer/pkg/logger"
)

func TestToMorse(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"SOS", "... --- ..."},
		{"cq", "-.-. --.-"},
		{"W1AW", ".-- .---- .- .--"},
		{"=", "-...-"},
		{"A@B", ".- -..."},
	}
	for _, tt := range tests {
		if got := ToMorse(tt.text); got != tt.want {
			t.Fatalf("ToMorse(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestMorseRoundTrip(t *testing.T) {
	for _, text := range []string{"SOS", "CQ DE W1AW", "RST 599", "73 = SK"} {
		// Spaces are not encoded, so compare against the collapsed form.
		want := ""
		for _, r := range text {
			if r != ' ' {
				want += string(r)
			}
		}
		if got := FromMorse(ToMorse(text)); got != want {
			t.Fatalf("round trip %q = %q, want %q", text, got, want)
		}
	}
}

func TestNewPlayerValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"wpm too low", Config{WPM: 2, FrequencyHz: 700, SampleRate: 8000}},
		{"wpm too high", Config{WPM: 80, FrequencyHz: 700, SampleRate: 8000}},
		{"zero sample rate", Config{WPM: 20, FrequencyHz: 700}},
		{"zero frequency", Config{WPM: 20, SampleRate: 8000}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPlayer(tt.cfg, &bytes.Buffer{}, logger.Nop()); err == nil {
				t.Fatal("expected config error")
			}
		})
	}
}

func TestTokenDurationParis(t *testing.T) {
	player, err := NewPlayer(Config{WPM: 20, FrequencyHz: 700, SampleRate: 8000}, &bytes.Buffer{}, logger.Nop())
	if err != nil {
		t.Fatalf("new player: %v", err)
	}

	// PARIS is 50 dit units including the word gap; at 20 WPM one dit is
	// 60ms, so the word takes exactly 3 seconds.
	if got := player.TokenDuration("PARIS"); got != 3*time.Second {
		t.Fatalf("TokenDuration(PARIS) = %v, want 3s", got)
	}
}

func TestPlayTokenSampleCount(t *testing.T) {
	var sink bytes.Buffer
	player, err := NewPlayer(Config{WPM: 20, FrequencyHz: 700, SampleRate: 8000}, &sink, logger.Nop())
	if err != nil {
		t.Fatalf("new player: %v", err)
	}

	// "E" is one dit of tone plus the seven-dit word gap: 8 dits of
	// 60ms at 8000 Hz is 3840 samples, two bytes each.
	if err := player.PlayToken("E"); err != nil {
		t.Fatalf("play: %v", err)
	}
	if got := sink.Len(); got != 3840*2 {
		t.Fatalf("rendered %d bytes, want %d", got, 3840*2)
	}
}

func TestPlayTokenSkipsUnknownRunes(t *testing.T) {
	var known, unknown bytes.Buffer

	player, err := NewPlayer(Config{WPM: 20, FrequencyHz: 700, SampleRate: 8000}, &known, logger.Nop())
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if err := player.PlayToken("E"); err != nil {
		t.Fatalf("play: %v", err)
	}

	player2, err := NewPlayer(Config{WPM: 20, FrequencyHz: 700, SampleRate: 8000}, &unknown, logger.Nop())
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if err := player2.PlayToken("E@"); err != nil {
		t.Fatalf("play: %v", err)
	}

	if known.Len() != unknown.Len() {
		t.Fatalf("unknown rune changed output: %d vs %d bytes", known.Len(), unknown.Len())
	}
}

func TestPacedSinkTiming(t *testing.T) {
	sink := NewPacedSink(8000)

	// 800 samples at 8000 Hz is 100ms of audio.
	buf := make([]byte, 800*2)
	start := time.Now()
	n, err := sink.Write(buf)
	elapsed := time.Since(start)

	if err != nil || n != len(buf) {
		t.Fatalf("write = (%d, %v), want (%d, nil)", n, err, len(buf))
	}
	if elapsed < 90*time.Millisecond {
		t.Fatalf("write returned after %v, want about 100ms", elapsed)
	}
}

type failingSink struct{}

func (failingSink) Write([]byte) (int, error) {
	return 0, errWrite
}

var errWrite = &sinkError{}

type sinkError struct{}

func (*sinkError) Error() string { return "sink closed" }

func TestPlayTokenPropagatesSinkError(t *testing.T) {
	player, err := NewPlayer(Config{WPM: 20, FrequencyHz: 700, SampleRate: 8000}, failingSink{}, logger.Nop())
	if err != nil {
		t.Fatalf("new player: %v", err)
	}
	if err := player.PlayToken("E"); err == nil {
		t.Fatal("expected sink error")
	}
}
