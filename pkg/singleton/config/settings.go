package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Settings configures a registry.
type Settings struct {
	// WaitTimeout bounds how long a caller waits on another caller's
	// construction. Zero means wait until the caller's context ends.
	WaitTimeout time.Duration

	// Metrics enables OpenTelemetry metrics.
	Metrics bool

	// Tracing enables OpenTelemetry spans around builder invocations.
	Tracing bool

	// LogLevel is the minimum level for registry logs.
	LogLevel slog.Level

	// Journal selects the construction journal. An empty driver disables it.
	Journal JournalSettings
}

// JournalSettings selects a journal store.
type JournalSettings struct {
	Driver string
	DSN    string
}

// Defaults returns the settings used when nothing is configured.
func Defaults() Settings {
	return Settings{LogLevel: slog.LevelInfo}
}

// Settings extracts registry settings, starting from Defaults.
func (v Values) Settings() (Settings, error) {
	s := Defaults()
	s.WaitTimeout = v.Duration("wait_timeout", s.WaitTimeout)
	if s.WaitTimeout < 0 {
		return Settings{}, fmt.Errorf("wait_timeout must not be negative: %s", s.WaitTimeout)
	}
	s.Metrics = v.Bool("metrics", s.Metrics)
	s.Tracing = v.Bool("tracing", s.Tracing)

	if v.Has("log_level") {
		level, err := ParseLevel(v.String("log_level", ""))
		if err != nil {
			return Settings{}, err
		}
		s.LogLevel = level
	}

	j := v.Section("journal")
	s.Journal.Driver = strings.ToLower(j.String("driver", ""))
	s.Journal.DSN = j.String("dsn", "")
	switch s.Journal.Driver {
	case "", "memory", "sqlite":
	default:
		return Settings{}, fmt.Errorf("unsupported journal driver: %s", s.Journal.Driver)
	}
	return s, nil
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log_level %q: %w", name, err)
	}
	return level, nil
}
