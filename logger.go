package auth

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goliatone/go-errors"
)

// ParseLogLevel accepts debug, info, warn and error
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, errors.Wrap(err, errors.CategoryBadInput, "invalid log level").
			WithMetadata(map[string]any{"level": level})
	}
	return l, nil
}

// NewLogger builds a text or json slog logger writing to w, os.Stderr when nil
func NewLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}

	lvl, err := ParseLogLevel(level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: lvl}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = slog.NewTextHandler(w, opts)
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, errors.New("invalid log format, must be 'json' or 'text'", errors.CategoryBadInput).
			WithMetadata(map[string]any{"format": format})
	}

	return slog.New(handler).With("service", "authsvc"), nil
}
