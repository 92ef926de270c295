package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func TestConfigInitWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nailtry.yaml")

	output, err := runCommand(t, "config", "init", "--output", path)
	require.NoError(t, err)
	assert.Contains(t, output, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pipeline:")
	assert.Contains(t, string(data), "server:")
	assert.Contains(t, string(data), "models_dir:")
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nailtry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))

	_, err := runCommand(t, "config", "init", "--output", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "refusing to overwrite")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log_level: debug\n", string(data))
}

func TestConfigInitForceOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nailtry.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stale"), 0o644))

	_, err := runCommand(t, "config", "init", "--output", path, "--force")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "pipeline:")
}

func TestConfigShowPrintsEffectiveConfig(t *testing.T) {
	output, err := runCommand(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, output, "pipeline:")
	assert.Contains(t, output, "compositing:")
}
