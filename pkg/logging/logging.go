// Package logging configures the structured logger shared by every
// QuantLab subsystem.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config controls how the process-wide logger is constructed.
type Config struct {
	Level  string // debug, info, warn, error
	Pretty bool   // enable human-readable console output
}

// New builds a zerolog.Logger per cfg. Callers pass the returned logger
// explicitly through constructors; nothing here mutates process-wide state
// unless SetGlobal is called.
func New(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	switch cfg.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.TimeFieldFormat = time.RFC3339

	var output io.Writer = os.Stdout
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: "15:04:05"}
	}

	return zerolog.New(output).Level(level).With().Timestamp().Logger()
}

// SetGlobal installs l as the package-level zerolog logger, for call sites
// that reach for the global log.Logger instead of threading one through.
func SetGlobal(l zerolog.Logger) {
	log.Logger = l
}

// ForRun returns a child logger tagged with an ingest_run_id, used
// throughout the ingestion pipeline so every line in a run's log can be
// grepped by that id alone.
func ForRun(l zerolog.Logger, ingestRunID string) zerolog.Logger {
	return l.With().Str("ingest_run_id", ingestRunID).Logger()
}

// ForRequest returns a child logger tagged with a request_hash, used by the
// access service so cache-hit/miss lines for one request can be correlated.
func ForRequest(l zerolog.Logger, requestHash string) zerolog.Logger {
	return l.With().Str("request_hash", requestHash).Logger()
}
