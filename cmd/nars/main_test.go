package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"narsgo/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const tasks = `
steps:
  - term: {op: "-->", args: [robin, bird]}
    truth: [1.0, 0.9]
  - term: {op: "-->", args: [bird, animal]}
    truth: [1.0, 0.9]
  - cycles: 2
  - term: {op: "-->", args: [robin, bird]}
    punctuation: "?"
`

// execute runs the CLI with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// workspace writes a config with the trace store under dir and a task
// file, returning their paths.
func workspace(t *testing.T) (cfgPath, taskPath string) {
	t.Helper()
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Store.DatabasePath = filepath.Join(dir, "trace.db")
	cfgPath = filepath.Join(dir, "narsgo.yaml")
	require.NoError(t, cfg.Save(cfgPath))
	taskPath = filepath.Join(dir, "tasks.yaml")
	require.NoError(t, os.WriteFile(taskPath, []byte(tasks), 0o644))
	return cfgPath, taskPath
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "narsgo.yaml")
	out, err := execute(t, "config", "init", path)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote")

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConfig().Reasoner, cfg.Reasoner)

	_, err = execute(t, "config", "init", path)
	assert.Error(t, err)
	_, err = execute(t, "config", "init", path, "--force")
	assert.NoError(t, err)
}

func TestRunPrintsAnswers(t *testing.T) {
	cfgPath, taskPath := workspace(t)
	out, err := execute(t, "run", taskPath, "--config", cfgPath, "--cycles", "5", "--report")
	require.NoError(t, err)
	assert.Contains(t, out, "=> ")
	assert.Contains(t, out, "robin")
	assert.Contains(t, out, "Beliefs")
}

func TestRunRecordsAndTraces(t *testing.T) {
	cfgPath, taskPath := workspace(t)
	out, err := execute(t, "run", taskPath, "--config", cfgPath, "--cycles", "5", "--record")
	require.NoError(t, err)
	assert.Contains(t, out, "recorded session")

	out, err = execute(t, "trace", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "tasks")

	_, err = execute(t, "trace", "no-such-session", "--config", cfgPath)
	assert.Error(t, err)
}

func TestQuery(t *testing.T) {
	cfgPath, taskPath := workspace(t)
	out, err := execute(t, "query", taskPath, `isa("robin", P)`, "--config", cfgPath, "--cycles", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "P = bird")

	_, err = execute(t, "query", taskPath, "missing(X)", "--config", cfgPath, "--cycles", "1")
	assert.Error(t, err)
}

func TestRunRejectsBadInput(t *testing.T) {
	cfgPath, _ := workspace(t)
	_, err := execute(t, "run", filepath.Join(t.TempDir(), "none.yaml"), "--config", cfgPath)
	assert.Error(t, err)
	_, err = execute(t, "run", "--config", cfgPath)
	assert.Error(t, err)
}
