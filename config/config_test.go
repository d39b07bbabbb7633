package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("EMAIL_TEST_MODE", "")
	t.Setenv("LEAD_DISPATCH_TIMEOUT", "")
	t.Setenv("APP_URL", "https://aisajt.rs/")

	cfg := Load()
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "https://aisajt.rs", cfg.AppURL)
	assert.True(t, cfg.EmailTestMode)
	assert.Zero(t, cfg.DispatchTimeout)
	assert.Equal(t, 2*time.Hour, cfg.SessionIdleTTL)
	assert.Equal(t, ProviderResend, cfg.EmailProvider)
	assert.False(t, cfg.IsProduction())
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"true", true},
		{"YES", true},
		{"1", true},
		{"off", false},
		{"0", false},
		{"maybe", true},
		{"", true},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_BOOL", tt.value)
			assert.Equal(t, tt.want, getEnvBool("TEST_BOOL", true))
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("TEST_DURATION", "15s")
	assert.Equal(t, 15*time.Second, getEnvDuration("TEST_DURATION", time.Minute))

	t.Setenv("TEST_DURATION", "30")
	assert.Equal(t, 30*time.Second, getEnvDuration("TEST_DURATION", time.Minute))

	t.Setenv("TEST_DURATION", "soon")
	assert.Equal(t, time.Minute, getEnvDuration("TEST_DURATION", time.Minute))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger("production", "debug")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	logger, err = NewLogger("development", "not-a-level")
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, logger.Core().Enabled(zapcore.InfoLevel))
}
