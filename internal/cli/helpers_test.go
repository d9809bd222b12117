package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arttic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend_url: http://gpu:7860\nreconnect_delay: 5s\n"), 0o644))

	cfg, err := loadConfig(RunOptions{ConfigPath: path})
	require.NoError(t, err)
	assert.Equal(t, "http://gpu:7860", cfg.BackendURL)
	assert.Equal(t, 5*time.Second, cfg.ReconnectDelay)

	cfg, err = loadConfig(RunOptions{ConfigPath: path, BackendURL: "http://other:1", Addr: ":9999", Metrics: true})
	require.NoError(t, err)
	assert.Equal(t, "http://other:1", cfg.BackendURL)
	assert.Equal(t, ":9999", cfg.Introspection.Addr)
	assert.True(t, cfg.Metrics)
}

func TestLoadConfig_ExplicitPathMustExist(t *testing.T) {
	_, err := loadConfig(RunOptions{ConfigPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}

func TestLoadConfig_InvalidOverride(t *testing.T) {
	_, err := loadConfig(RunOptions{BackendURL: "not a url"})
	assert.Error(t, err)
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, handleExecutionError(nil))
	assert.NoError(t, handleExecutionError(fmt.Errorf("serve: %w", context.Canceled)))

	boom := errors.New("boom")
	assert.Equal(t, boom, handleExecutionError(boom))
}
