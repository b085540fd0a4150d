package logger

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shiftpay/pos-ledger/internal/config"
)

func newConfig(level string) *config.Config {
	cfg := &config.Config{}
	cfg.Logging.Level = level
	cfg.Application.Name = "pos-ledger"
	cfg.Application.Env = "test"
	return cfg
}

func TestNewLogger_LevelSelection(t *testing.T) {
	tests := []struct {
		level        string
		debugEnabled bool
		warnEnabled  bool
	}{
		{"debug", true, true},
		{"info", false, true},
		{"warn", false, true},
		{"error", false, false},
		{"nonsense", false, true}, // falls back to info
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			log := NewLogger(newConfig(tt.level))
			require.NotNil(t, log)

			ctx := context.Background()
			assert.Equal(t, tt.debugEnabled, log.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.warnEnabled, log.Enabled(ctx, slog.LevelWarn))
			assert.True(t, log.Enabled(ctx, slog.LevelError))
		})
	}
}
