package observability

import (
	"io"
	"log/slog"
)

// NewLogger builds a text slog logger writing to w. Verbose mode lowers the level to debug.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// RequestLogger returns logger annotated with a selection request id.
func RequestLogger(logger *slog.Logger, requestID string) *slog.Logger {
	return logger.With(slog.String("request_id", requestID))
}
