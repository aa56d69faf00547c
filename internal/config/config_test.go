package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_ReadsEnv(t *testing.T) {
	t.Setenv("PASSWORD_SALT", "pepper")
	t.Setenv("TOKEN_SECRET", "s3cret")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CHAT_OPTIMISTIC_SEND", "false")
	t.Setenv("STORE_BREAKER_TIMEOUT", "5s")
	t.Setenv("METRICS_ADDR", "")

	cfg := New()

	assert.Equal(t, "pepper", cfg.Auth.PasswordSalt)
	assert.Equal(t, "s3cret", cfg.Auth.TokenSecret)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.False(t, cfg.Chat.OptimisticSend)
	assert.Equal(t, 5*time.Second, cfg.Store.BreakerTimeout)
	assert.Empty(t, cfg.Metrics.Addr)
	assert.Equal(t, 2000, cfg.Chat.MaxMessageLength)
	require.NoError(t, cfg.Validate())
}

func TestValidate_MissingSecrets(t *testing.T) {
	t.Setenv("PASSWORD_SALT", "")
	t.Setenv("TOKEN_SECRET", "")

	err := New().Validate()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "PASSWORD_SALT")
	assert.Contains(t, err.Error(), "TOKEN_SECRET")
}

func TestIsTruthy(t *testing.T) {
	for _, v := range []string{"1", "true", "YES", " on "} {
		assert.True(t, isTruthy(v), v)
	}
	for _, v := range []string{"", "0", "off", "nope"} {
		assert.False(t, isTruthy(v), v)
	}
}

func TestValidate_BreakerFailures(t *testing.T) {
	t.Setenv("PASSWORD_SALT", "pepper")
	t.Setenv("TOKEN_SECRET", "s3cret")

	for _, v := range []string{"-1", "0"} {
		t.Setenv("STORE_BREAKER_FAILURES", v)
		err := New().Validate()
		require.Error(t, err, v)
		assert.Contains(t, err.Error(), "STORE_BREAKER_FAILURES")
	}

	t.Setenv("STORE_BREAKER_FAILURES", "3")
	cfg := New()
	assert.Equal(t, 3, cfg.Store.BreakerFailures)
	require.NoError(t, cfg.Validate())
}
