package reactor

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewLogger builds the logger described by cfg, writing to stderr.
func NewLogger(cfg Config) zerolog.Logger {
	return newLogger(cfg, os.Stderr)
}

func newLogger(cfg Config, out io.Writer) zerolog.Logger {
	level, ok := parseLevel(cfg.LogLevel)
	if !ok {
		level = zerolog.InfoLevel
	}
	if level == zerolog.Disabled {
		return zerolog.Nop()
	}

	if cfg.LogFormat != LogFormatJSON {
		out = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(out).
		Level(level).
		With().
		Timestamp().
		Str("lib", "reactor").
		Logger()
}
