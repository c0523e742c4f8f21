// Package logging configures the process-wide zerolog logger.
//
// Logs always go to stderr. Stdout is reserved for the JSON results the CLI
// emits, so callers can pipe output without filtering log lines.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Options configures log output.
type Options struct {
	// Level is a zerolog level name (debug, info, warn, error). Unknown
	// names fall back to info.
	Level string
	// Pretty switches from JSON lines to the human-readable console writer.
	Pretty bool
	// Writer overrides the destination. Defaults to stderr.
	Writer io.Writer
}

// New builds a logger from opts.
func New(optFns ...func(o *Options)) zerolog.Logger {
	opts := Options{Level: "info"}
	for _, fn := range optFns {
		fn(&opts)
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	if opts.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}
