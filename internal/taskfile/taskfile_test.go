package taskfile

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"narsgo/internal/config"
	"narsgo/internal/core"
	"narsgo/internal/entity"
	"narsgo/internal/language"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const sample = `
steps:
  - term: {op: "-->", args: [robin, bird]}
    truth: [1.0, 0.9]
  - term: {op: "-->", args: [bird, animal]}
    budget: [0.9, 0.8, 0.7]
  - cycles: 10
  - term: {op: "-->", args: [robin, animal]}
    punctuation: "?"
  - term:
      op: "==>"
      args:
        - {op: "-->", args: [$x, bird]}
        - {op: "-->", args: [$x, animal]}
    present: true
`

func inh(s, p string) *language.Term {
	return language.MakeStatement(language.OpInheritance, language.MakeWord(s), language.MakeWord(p))
}

func TestParse(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	require.Len(t, f.Steps, 5)
	assert.Equal(t, 10, f.Steps[2].Cycles)

	in, err := f.Steps[0].Input()
	require.NoError(t, err)
	assert.True(t, in.Content.Equal(inh("robin", "bird")))
	assert.Equal(t, entity.Judgment, in.Punctuation)
	assert.InDelta(t, 0.9, in.Truth.Confidence(), 1e-9)
	assert.Nil(t, in.Budget)

	in, err = f.Steps[1].Input()
	require.NoError(t, err)
	require.NotNil(t, in.Budget)
	assert.InDelta(t, 0.9, in.Budget.Priority(), 1e-9)
	assert.Nil(t, in.Truth, "defaults are left to memory")

	in, err = f.Steps[3].Input()
	require.NoError(t, err)
	assert.Equal(t, entity.Question, in.Punctuation)

	in, err = f.Steps[4].Input()
	require.NoError(t, err)
	assert.Equal(t, language.OpImplication, in.Content.Op())
	assert.True(t, in.Content.HasVar(language.VarIndependent))
	assert.True(t, in.Present)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty step", "steps:\n  - {}\n"},
		{"term and cycles", "steps:\n  - {term: a, cycles: 3}\n"},
		{"short truth", "steps:\n  - {term: a, truth: [1]}\n"},
		{"truth out of range", "steps:\n  - {term: a, truth: [1.5, 0.9]}\n"},
		{"certain confidence", "steps:\n  - {term: a, truth: [1, 1]}\n"},
		{"bad budget", "steps:\n  - {term: a, budget: [0.5, 0.5]}\n"},
		{"nan budget", "steps:\n  - {term: a, budget: [.nan, 0.5, 0.5]}\n"},
		{"nan truth", "steps:\n  - {term: a, truth: [.nan, 0.9]}\n"},
		{"op missing", "steps:\n  - term: {args: [a, b]}\n"},
		{"term as list", "steps:\n  - term: [a, b]\n"},
		{"not yaml", "steps: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestInputRejects(t *testing.T) {
	tests := []struct {
		name string
		step Step
		want error
	}{
		{"unknown op", Step{Term: &TermSpec{Op: "@@", Args: []TermSpec{{Word: "a"}, {Word: "b"}}}}, language.ErrUnknownOperator},
		{"reflexive", Step{Term: &TermSpec{Op: "-->", Args: []TermSpec{{Word: "a"}, {Word: "a"}}}}, language.ErrInvalidTerm},
		{"bad punctuation", Step{Term: &TermSpec{Word: "a"}, Punctuation: ";"}, ErrInvalidStep},
		{"question with truth", Step{Term: &TermSpec{Word: "a"}, Punctuation: "?", Truth: []float64{1, 0.9}}, ErrInvalidStep},
		{"directive", Step{Cycles: 2}, ErrInvalidStep},
		{"nan budget", Step{Term: &TermSpec{Word: "a"}, Budget: []float64{math.NaN(), 0.5, 0.5}}, ErrInvalidStep},
		{"budget out of range", Step{Term: &TermSpec{Word: "a"}, Budget: []float64{2, 0.5, 0.5}}, ErrInvalidStep},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.step.Input()
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLoadAndPlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	f, err := Load(path)
	require.NoError(t, err)

	m, err := core.NewMemory(config.DefaultConfig())
	require.NoError(t, err)

	inputs, err := Play(context.Background(), m, f)
	require.NoError(t, err)
	assert.Len(t, inputs, 4)
	assert.NotNil(t, m.Concept(inh("robin", "bird")), "cycles ran between inputs")
	assert.Equal(t, 2, m.PendingInput(), "trailing inputs wait for the next cycle")
}

func TestPlayStopsOnCancel(t *testing.T) {
	f, err := Parse([]byte(sample))
	require.NoError(t, err)
	m, err := core.NewMemory(config.DefaultConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	inputs, err := Play(ctx, m, f)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, inputs, 2)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.Error(t, err)
}
