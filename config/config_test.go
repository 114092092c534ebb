package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadValidStdioConfig(t *testing.T) {
	path := writeConfig(t, `
transport: stdio
logLevel: debug
logPath: /tmp/server.log
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, TransportStdio, cfg.Transport)
	assert.True(t, cfg.Middleware.Logging, "expected the default Middleware.Logging=true to survive a partial override")
}

func TestLoadSocketConfigRequiresSocketPath(t *testing.T) {
	path := writeConfig(t, `
transport: socket
logLevel: info
logPath: /tmp/server.log
`)
	_, err := Load(path)
	assert.Error(t, err, "expected validation to fail without socketPath set")
}

func TestLoadRejectsUnknownTransport(t *testing.T) {
	path := writeConfig(t, `
transport: carrier-pigeon
logLevel: info
logPath: /tmp/server.log
`)
	_, err := Load(path)
	assert.Error(t, err, "expected validation to reject an unknown transport kind")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "expected an error for a missing config file")
}
