package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

var level = new(slog.LevelVar)

// NewLogger builds the application logger and installs it as the slog
// default. Output goes to stderr so prompts and replies on stdout stay clean.
func NewLogger(lvl slog.Level) *slog.Logger {
	level.Set(lvl)
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}))
	slog.SetDefault(logger)
	return logger
}

// NewNop returns a logger that discards everything.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a config level name to a slog level. Unknown names fall
// back to info.
func ParseLevel(name string) slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

func SetDebug(enable bool) {
	if enable {
		level.Set(slog.LevelDebug)
	}
}

func DebugLog(format string, v ...interface{}) {
	slog.Debug(fmt.Sprintf(format, v...))
}
