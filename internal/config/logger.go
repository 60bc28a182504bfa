package config

import (
	"io"
	"log/slog"
)

// NewLogger builds the process logger. Production emits JSON at info level,
// everything else emits text at debug level with source locations.
func NewLogger(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		AddSource: env == "development",
	}

	if env == "production" {
		opts.Level = slog.LevelInfo
		handler = slog.NewJSONHandler(w, opts)
	} else {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler).With(slog.String("service", "ki-metadata"))
}
