package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "procure")
	t.Setenv("DB_NAME", "procure")
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10, cfg.DB.MaxOpenConns)
	assert.Equal(t, 30*time.Second, cfg.DB.ConnMaxIdleTime)
	assert.Equal(t, 10*time.Second, cfg.DB.ConnectTimeout)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "@every 15m", cfg.Worker.SessionSweepSchedule)
	assert.False(t, cfg.Webhook.Enabled())
	assert.False(t, cfg.Mail.Enabled())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.False(t, cfg.Admin.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("DB_MAX_OPEN_CONNS", "1")
	t.Setenv("WEBHOOK_URL", "https://hooks.example.com/orders")
	t.Setenv("WEBHOOK_TIMEOUT", "3s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com ,")
	t.Setenv("ADMIN_BOOTSTRAP_EMAIL", "root@procure.in")
	t.Setenv("ADMIN_BOOTSTRAP_PASSWORD", "changeme")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.DB.MaxOpenConns)
	assert.True(t, cfg.Webhook.Enabled())
	assert.Equal(t, 3*time.Second, cfg.Webhook.Timeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Admin.Enabled())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		msg  string
	}{
		{name: "missing jwt secret", env: map[string]string{"JWT_SECRET": ""}, msg: "JWT_SECRET"},
		{name: "missing db host", env: map[string]string{"DB_HOST": ""}, msg: "database configuration incomplete"},
		{name: "bad duration", env: map[string]string{"SESSION_TTL": "soon"}, msg: "SESSION_TTL"},
		{name: "negative duration", env: map[string]string{"WEBHOOK_TIMEOUT": "-1s"}, msg: "WEBHOOK_TIMEOUT"},
		{name: "zero pool", env: map[string]string{"DB_MAX_OPEN_CONNS": "0"}, msg: "DB_MAX_OPEN_CONNS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
