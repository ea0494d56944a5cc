// Package logger builds the zerolog loggers used by the thinhttp CLI.
//
// Library packages never log on their own; they take a zerolog.Logger
// through an option and default to zerolog.Nop().
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// DefaultLevel keeps per-request debug events quiet unless asked for.
const DefaultLevel = zerolog.WarnLevel

var (
	once   sync.Once
	logger zerolog.Logger
)

// Get returns the process logger, built on first use from LOG_LEVEL and LOG_FORMAT.
func Get() zerolog.Logger {
	once.Do(func() {
		logger = New(os.Stderr, os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT") != "json")
	})
	return logger
}

// New creates a logger writing to w. An empty or invalid level falls back to
// DefaultLevel. console selects the human-readable writer over JSON lines.
func New(w io.Writer, level string, console bool) zerolog.Logger {
	lvl := ParseLevel(level)

	if console {
		w = zerolog.ConsoleWriter{
			Out:        w,
			TimeFormat: "2006-01-02 15:04:05",
			NoColor:    !isTerminal(w),
		}
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
}

// ParseLevel maps a level name onto a zerolog level.
func ParseLevel(level string) zerolog.Level {
	if level == "" {
		return DefaultLevel
	}
	parsed, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || parsed == zerolog.NoLevel {
		fmt.Fprintf(os.Stderr, "Invalid LOG_LEVEL %q; defaulting to %q\n", level, DefaultLevel.String())
		return DefaultLevel
	}
	return parsed
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
