// Package logger builds the zerolog logger shared by a function's components.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New returns a logger writing to w. Format "console" gives human readable
// output for local runs, anything else writes JSON lines for CloudWatch.
func New(w io.Writer, level, format string) zerolog.Logger {

	if w == nil {
		w = os.Stdout
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}

	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	if err != nil {
		l.Warn().Str("level", level).Msg("invalid log level, defaulting to info")
	}
	return l
}
