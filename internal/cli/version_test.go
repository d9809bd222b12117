package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunVersion_PrintsChannel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "arttic.yaml")
	require.NoError(t, os.WriteFile(path, []byte("backend_url: https://gpu:7860/sd\nreconnect_delay: 5s\n"), 0o644))

	var buf bytes.Buffer
	require.NoError(t, RunVersion(RunOptions{ConfigPath: path}, &buf))
	out := buf.String()
	assert.Contains(t, out, "v0.1.0-dev")
	assert.Contains(t, out, ">>> Backend: https://gpu:7860/sd")
	assert.Contains(t, out, ">>> Channel: wss://gpu:7860/sd/ws (reconnect every 5s)")
}

func TestRunVersion_ReportsBadConfig(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RunVersion(RunOptions{BackendURL: "not a url"}, &buf))
	assert.Contains(t, buf.String(), "v0.1.0-dev")
	assert.Contains(t, buf.String(), ">>> Config:")
	assert.NotContains(t, buf.String(), "Channel:")
}
