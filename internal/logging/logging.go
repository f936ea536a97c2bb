// Package logging builds the zerolog logger shared by the CLI and the engine.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/ecotrack/internal/model"
)

// New builds a logger writing to out (stderr when nil).
// An unparseable level falls back to warn; format "json" emits JSON lines,
// anything else a human-readable console format.
func New(cfg model.LoggingConfig, out io.Writer) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}

	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || cfg.Level == "" {
		lvl = zerolog.WarnLevel
	}

	w := out
	if !strings.EqualFold(cfg.Format, "json") {
		w = zerolog.ConsoleWriter{
			Out:        out,
			TimeFormat: time.RFC3339,
			NoColor:    out != os.Stderr,
		}
	}

	return zerolog.New(w).
		Level(lvl).
		With().
		Timestamp().
		Logger()
}

// Level resolves the effective level from flags: verbose forces debug unless
// an explicit level is more detailed.
func Level(configured string, verbose bool) string {
	if !verbose {
		return configured
	}
	if lvl, err := zerolog.ParseLevel(configured); err == nil && lvl < zerolog.DebugLevel {
		return configured
	}
	return zerolog.DebugLevel.String()
}
