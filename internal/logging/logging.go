package logging

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Setup configures the global zerolog logger for CLI use.
func Setup(verbose bool) {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	log.Logger = zerolog.New(zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}).With().Timestamp().Logger()
}

// NewRunLogger returns a logger scoped to one triage run, tagged with a fresh
// run ID so interleaved runs stay distinguishable in the output.
func NewRunLogger() zerolog.Logger {
	return log.With().Str("run_id", uuid.NewString()).Logger()
}
