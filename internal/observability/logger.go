package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide logger. Dev runs get human-readable text
// at debug level; everywhere else emits JSON at info for the log pipeline.
func NewLogger(env string) *slog.Logger {
	var handler slog.Handler

	if env == "dev" {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	return slog.New(handler).With("service", "marketplace")
}
