package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/arttic/internal/config"
	"github.com/aretw0/arttic/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arttic.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
	assert.Equal(t, 3*time.Second, cfg.ReconnectDelay)
}

func TestLoad_MissingRequiredFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	require.Error(t, err)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
backend_url: http://gpu-box:7860
reconnect_delay: 5s
notices:
  error: 10s
zoom:
  min: 0.5
  max: 2
layouts:
  kind: redis
  redis:
    addr: localhost:6379
    ttl: 24h
`)
	cfg, err := config.Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "http://gpu-box:7860", cfg.BackendURL)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, 10*time.Second, cfg.Notices.Error)
	assert.Equal(t, 3*time.Second, cfg.Notices.Success, "unset fields keep defaults")
	assert.Equal(t, config.Zoom{Min: 0.5, Max: 2}, cfg.Zoom)
	assert.Equal(t, 24*time.Hour, cfg.Layouts.Redis.TTL)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad url", "backend_url: not a url", "backendurl must be a valid URL"},
		{"zero delay", "reconnect_delay: 0s", "reconnectdelay must be greater than 0"},
		{"inverted zoom", "zoom: {min: 4, max: 2}", "zoom.min must be less than max"},
		{"unknown store", "layouts: {kind: s3}", "layouts.kind must be one of: memory file redis"},
		{"redis without addr", "layouts: {kind: redis}", "layouts.redis.addr is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.content), true)
			require.ErrorIs(t, err, validator.ErrInvalid)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
