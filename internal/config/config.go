// Package config loads the TOML configuration file and applies
// defaults for anything the file leaves out.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/rfweber/qsotrainer/internal/audio"
	"github.com/rfweber/qsotrainer/internal/qso"
	"github.com/rfweber/qsotrainer/internal/session"
)

// Config is the application configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Logging LoggingConfig `toml:"logging"`
	Storage StorageConfig `toml:"storage"`
	Audio   AudioConfig   `toml:"audio"`
	Session SessionConfig `toml:"session"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host               string   `toml:"host"`
	Port               int      `toml:"port"`
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// StorageConfig contains database settings.
type StorageConfig struct {
	Path string `toml:"path"`
}

// AudioConfig contains morse rendering settings.
type AudioConfig struct {
	WPM         int     `toml:"wpm"`
	FrequencyHz float64 `toml:"frequency_hz"`
	SampleRate  int     `toml:"sample_rate"`
}

// SessionConfig contains the defaults applied to new practice
// sessions when a request does not override them.
type SessionConfig struct {
	Count          int     `toml:"count"`
	Verbosity      string  `toml:"verbosity"`
	FuzzyThreshold float64 `toml:"fuzzy_threshold"`
	PartialCredit  bool    `toml:"partial_credit"`
	CaseSensitive  bool    `toml:"case_sensitive"`
	JoinGraceMs    int     `toml:"join_grace_ms"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	sessionDefaults := session.DefaultConfig()
	audioDefaults := audio.DefaultConfig()
	return &Config{
		Server: ServerConfig{
			Host:               "localhost",
			Port:               8080,
			CORSAllowedOrigins: []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Storage: StorageConfig{
			Path: "qsotrainer.db",
		},
		Audio: AudioConfig{
			WPM:         audioDefaults.WPM,
			FrequencyHz: audioDefaults.FrequencyHz,
			SampleRate:  audioDefaults.SampleRate,
		},
		Session: SessionConfig{
			Count:          sessionDefaults.Count,
			Verbosity:      string(sessionDefaults.Verbosity),
			FuzzyThreshold: sessionDefaults.FuzzyThreshold,
			PartialCredit:  sessionDefaults.PartialCredit,
			CaseSensitive:  sessionDefaults.CaseSensitive,
			JoinGraceMs:    int(sessionDefaults.JoinGrace / time.Millisecond),
		},
	}
}

// LoadConfig reads a TOML config from the given path. An empty path or
// a missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the services would
// reject later.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if _, err := c.AudioEngine(); err != nil {
		return err
	}
	if err := c.SessionDefaults().Validate(); err != nil {
		return fmt.Errorf("invalid session defaults: %w", err)
	}
	return nil
}

// AudioEngine returns the audio configuration in the form the player
// takes, validated.
func (c *Config) AudioEngine() (audio.Config, error) {
	cfg := audio.Config{
		WPM:         c.Audio.WPM,
		FrequencyHz: c.Audio.FrequencyHz,
		SampleRate:  c.Audio.SampleRate,
	}
	if err := cfg.Validate(); err != nil {
		return audio.Config{}, fmt.Errorf("invalid audio config: %w", err)
	}
	return cfg, nil
}

// SessionDefaults converts the session section into a session.Config.
func (c *Config) SessionDefaults() session.Config {
	return session.Config{
		Count:          c.Session.Count,
		Verbosity:      qso.Verbosity(c.Session.Verbosity),
		FuzzyThreshold: c.Session.FuzzyThreshold,
		PartialCredit:  c.Session.PartialCredit,
		CaseSensitive:  c.Session.CaseSensitive,
		JoinGrace:      time.Duration(c.Session.JoinGraceMs) * time.Millisecond,
	}
}
