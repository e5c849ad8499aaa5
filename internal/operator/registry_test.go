package operator

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"narsgo/internal/config"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const greetScript = `package main

import "strings"

func Run(args []string) (string, error) {
	return "hello " + strings.Join(args, " and "), nil
}
`

func newRegistry(t *testing.T, cfg config.OperatorsConfig) *Registry {
	t.Helper()
	r, err := NewRegistry(cfg)
	require.NoError(t, err)
	return r
}

func TestBuiltins(t *testing.T) {
	r := newRegistry(t, config.OperatorsConfig{})
	assert.Equal(t, []string{"^remember", "^say"}, r.Names())

	out, err := r.Execute(context.Background(), "^say", []string{"hi", "there"})
	require.NoError(t, err)
	assert.Equal(t, "hi there", out)

	_, err = r.Execute(context.Background(), "^remember", []string{"milk"})
	require.NoError(t, err)
	_, err = r.Execute(context.Background(), "^remember", []string{"eggs"})
	require.NoError(t, err)
	assert.Equal(t, []string{"milk", "eggs"}, r.Remembered())

	_, err = r.Execute(context.Background(), "^remember", nil)
	assert.Error(t, err)
}

func TestDisabledBuiltin(t *testing.T) {
	r := newRegistry(t, config.OperatorsConfig{Disabled: []string{"^say"}})
	assert.Equal(t, []string{"^remember"}, r.Names())

	_, err := r.Execute(context.Background(), "^say", []string{"x"})
	assert.ErrorIs(t, err, ErrUnknownOperator)
}

func TestRegisterRequiresCaret(t *testing.T) {
	r := newRegistry(t, config.OperatorsConfig{})
	err := r.Register("say", func(context.Context, []string) (string, error) { return "", nil })
	assert.ErrorIs(t, err, ErrInvalidName)
	assert.ErrorIs(t, r.Register("^", nil), ErrInvalidName)
}

func TestExecuteHonoursTimeout(t *testing.T) {
	r := newRegistry(t, config.OperatorsConfig{Timeout: "10ms"})
	require.NoError(t, r.Register("^wait", func(ctx context.Context, _ []string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}))

	_, err := r.Execute(context.Background(), "^wait", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBadTimeout(t *testing.T) {
	_, err := NewRegistry(config.OperatorsConfig{Timeout: "soon"})
	assert.Error(t, err)
}

func TestLoadScript(t *testing.T) {
	r := newRegistry(t, config.OperatorsConfig{})
	require.NoError(t, r.LoadScript("^greet", greetScript))

	out, err := r.Execute(context.Background(), "^greet", []string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, "hello a and b", out)
}

func TestLoadScriptWithoutPackageClause(t *testing.T) {
	r := newRegistry(t, config.OperatorsConfig{})
	code := `func Run(args []string) (string, error) { return "n", nil }`
	require.NoError(t, r.LoadScript("^n", code))

	out, err := r.Execute(context.Background(), "^n", nil)
	require.NoError(t, err)
	assert.Equal(t, "n", out)
}

func TestLoadScriptRejects(t *testing.T) {
	r := newRegistry(t, config.OperatorsConfig{})

	tests := []struct {
		name string
		code string
	}{
		{"forbidden import", "package main\n\nimport \"os\"\n\nfunc Run(args []string) (string, error) { return os.Getenv(\"HOME\"), nil }\n"},
		{"aliased forbidden import", "package main\n\nimport x \"os/exec\"\n\nvar _ = x.Command\n\nfunc Run(args []string) (string, error) { return \"\", nil }\n"},
		{"missing Run", "package main\n\nfunc Other() {}\n"},
		{"wrong signature", "package main\n\nfunc Run(s string) string { return s }\n"},
		{"syntax error", "package main\n\nfunc Run(\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, r.LoadScript("^bad", tt.code))
		})
	}
	assert.NotContains(t, r.Names(), "^bad")
}

func TestScriptTimeout(t *testing.T) {
	r := newRegistry(t, config.OperatorsConfig{Timeout: "5ms"})
	code := `package main

import "time"

func Run(args []string) (string, error) {
	time.Sleep(50 * time.Millisecond)
	return "late", nil
}
`
	require.NoError(t, r.LoadScript("^slow", code))

	_, err := r.Execute(context.Background(), "^slow", nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	// let the abandoned call finish before leak checking
	time.Sleep(100 * time.Millisecond)
}

func TestScriptDirLoading(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.go"), []byte(greetScript), 0o644))

	r := newRegistry(t, config.OperatorsConfig{ScriptDir: dir})
	assert.Contains(t, r.Names(), "^greet")
}
