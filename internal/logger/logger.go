package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/shiftpay/pos-ledger/internal/config"
)

// NewLogger builds the application's slog logger: JSON lines on stdout at
// the configured level, tagged with the application name and environment.
// An unknown level falls back to info.
func NewLogger(cfg *config.Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Logging.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(
		"app", cfg.Application.Name,
		"env", cfg.Application.Env,
	)
}
