package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Output formats
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Options controls how the logger is built
type Options struct {
	Level  string
	Format string
	// Writer defaults to stderr. Stdout carries the tool protocol and must
	// never receive log lines.
	Writer io.Writer
}

// New builds the process logger.
func New(opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if strings.TrimSpace(opts.Level) != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
		if err != nil {
			return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	switch strings.ToLower(opts.Format) {
	case "", FormatJSON:
	case FormatConsole:
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339, NoColor: true}
	default:
		return zerolog.Nop(), fmt.Errorf("unsupported log format: %s", opts.Format)
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

// Component returns a child logger tagged with the component name.
func Component(logger zerolog.Logger, name string) zerolog.Logger {
	return logger.With().Str("component", name).Logger()
}
