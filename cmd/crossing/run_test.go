package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crossing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("green_duration: 25\n"), 0o600))

	var out bytes.Buffer
	require.NoError(t, runConfig(&options{configPath: path}, &out))

	assert.Contains(t, out.String(), "green_duration: 25")
	assert.Contains(t, out.String(), "yellow_duration: 5")
}

func TestRunConfig_InvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crossing.yaml")
	require.NoError(t, os.WriteFile(path, []byte("yellow_duration: 0\n"), 0o600))

	assert.Error(t, runConfig(&options{configPath: path}, &bytes.Buffer{}))
}

func TestRunPlan(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runPlan(&out, false))

	assert.Contains(t, out.String(), "digraph SignalPlan")
}

func TestRunHeadless(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fast.yaml")
	cfg := "control_period: 2ms\nmotion_period: 1ms\ndispatch_period: 10ms\nspawn_probability: 0.5\n"
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o600))

	var out bytes.Buffer
	opts := &options{configPath: path, seed: 5, logLevel: "error"}
	require.NoError(t, runHeadless(context.Background(), opts, 50*time.Millisecond, &out))

	assert.Contains(t, out.String(), "Control ticks:")
	assert.Contains(t, out.String(), "Vehicles spawned:")
	assert.Contains(t, out.String(), "fixed_cycle")
	assert.Contains(t, out.String(), "Safety violations: 0")
}

func TestCommandTree(t *testing.T) {
	opts := &options{}
	for _, cmd := range []interface{ Name() string }{runCmd(opts), serveCmd(opts), planCmd(), configCmd(opts)} {
		assert.NotEmpty(t, cmd.Name())
	}
	assert.NotNil(t, runCmd(opts).Flags().Lookup("duration"))
	assert.NotNil(t, serveCmd(opts).Flags().Lookup("port"))
}
