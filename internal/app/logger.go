package app

import (
	"log/slog"
	"os"
)

// NewLogger returns the application logger. LOG_FORMAT=json selects the
// JSON handler for production; anything else ("pretty" by default) logs
// human-readable text.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	if cfg != nil && cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
