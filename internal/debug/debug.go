// Package debug carries the debug switch through contexts and installs the
// process-wide slog handler.
package debug

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

type contextKey string

const debugKey contextKey = "debug_enabled"

// Log formats accepted by SetupLogger.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// WithDebug returns a context with debug mode enabled/disabled.
func WithDebug(ctx context.Context, enabled bool) context.Context {
	return context.WithValue(ctx, debugKey, enabled)
}

// IsEnabled returns true if debug mode is enabled in the context.
func IsEnabled(ctx context.Context) bool {
	if ctx == nil {
		return false
	}
	if v, ok := ctx.Value(debugKey).(bool); ok {
		return v
	}
	return false
}

// NewLogger builds a logger writing to w. Debug mode logs at debug level,
// otherwise only warnings and errors get through.
func NewLogger(w io.Writer, debugEnabled bool, format string) (*slog.Logger, error) {
	if w == nil {
		w = os.Stderr
	}
	level := slog.LevelWarn
	if debugEnabled {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", FormatText:
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q (use %q or %q)", format, FormatText, FormatJSON)
	}
}

// SetupLogger installs a NewLogger result as the slog default.
func SetupLogger(w io.Writer, debugEnabled bool, format string) error {
	logger, err := NewLogger(w, debugEnabled, format)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
