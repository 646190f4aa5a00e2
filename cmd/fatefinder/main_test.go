package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/fatefinder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := execute(t, "version")
	assert.Equal(t, "fatefinder version "+strings.TrimSpace(fatefinder.Version)+"\n", out)
}

func TestGraphCommand(t *testing.T) {
	out := execute(t, "graph")
	assert.Contains(t, out, "stateDiagram-v2")
	assert.Contains(t, out, "error --> home : retry")
}

func TestResultCommands(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FATEFINDER_STORE_PATH", dir)
	t.Setenv("FATEFINDER_LOCALE", "en")
	cfgPath := filepath.Join(dir, "missing.yaml")

	out := execute(t, "result", "show", "--config", cfgPath)
	assert.Contains(t, out, "No saved result")

	out = execute(t, "result", "rm", "--config", cfgPath)
	assert.Contains(t, out, "Removed saved result")
}
