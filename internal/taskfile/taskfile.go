// Package taskfile loads YAML task files: structured terms with their
// punctuation, truth and budget, interleaved with cycle directives.
//
//	steps:
//	  - term: {op: "-->", args: [robin, bird]}
//	    truth: [1.0, 0.9]
//	  - term: {op: "-->", args: [bird, animal]}
//	  - cycles: 100
//	  - term: {op: "-->", args: [robin, animal]}
//	    punctuation: "?"
package taskfile

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"narsgo/internal/core"
	"narsgo/internal/entity"
	"narsgo/internal/language"
	"narsgo/internal/logging"
)

// ErrInvalidStep is returned for steps that are neither a task nor a
// cycle directive.
var ErrInvalidStep = errors.New("invalid step")

// TermSpec is a term written as a bare word or as {op, args}.
type TermSpec struct {
	Word string
	Op   string
	Args []TermSpec
}

// UnmarshalYAML accepts a scalar word or a mapping with op and args.
func (ts *TermSpec) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		ts.Word = node.Value
		return nil
	case yaml.MappingNode:
		var raw struct {
			Op   string     `yaml:"op"`
			Args []TermSpec `yaml:"args"`
		}
		if err := node.Decode(&raw); err != nil {
			return err
		}
		if raw.Op == "" {
			return fmt.Errorf("line %d: compound term without op", node.Line)
		}
		ts.Op, ts.Args = raw.Op, raw.Args
		return nil
	}
	return fmt.Errorf("line %d: a term is a word or {op, args}", node.Line)
}

// Term builds the term described by s.
func (ts TermSpec) Term() (*language.Term, error) {
	if ts.Op == "" {
		t := language.MakeWord(ts.Word)
		if t == nil {
			return nil, fmt.Errorf("%w: word %q", language.ErrInvalidTerm, ts.Word)
		}
		return t, nil
	}
	args := make([]*language.Term, 0, len(ts.Args))
	for _, a := range ts.Args {
		t, err := a.Term()
		if err != nil {
			return nil, err
		}
		args = append(args, t)
	}
	return language.MakeBySymbol(ts.Op, args)
}

// Step is one entry of a task file.
type Step struct {
	Term        *TermSpec `yaml:"term"`
	Punctuation string    `yaml:"punctuation"`
	Truth       []float64 `yaml:"truth"`
	Budget      []float64 `yaml:"budget"`
	Present     bool      `yaml:"present"`
	Cycles      int       `yaml:"cycles"`
}

// File is a parsed task file.
type File struct {
	Steps []Step `yaml:"steps"`
}

// Load reads and validates a task file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates task file contents.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse task file: %w", err)
	}
	for i, s := range f.Steps {
		if err := s.validate(); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return &f, nil
}

func (s Step) validate() error {
	switch {
	case s.Term == nil && s.Cycles <= 0:
		return fmt.Errorf("%w: needs a term or a positive cycles count", ErrInvalidStep)
	case s.Term != nil && s.Cycles != 0:
		return fmt.Errorf("%w: term and cycles are separate steps", ErrInvalidStep)
	case s.Truth != nil && len(s.Truth) != 2:
		return fmt.Errorf("%w: truth is [frequency, confidence]", ErrInvalidStep)
	case s.Budget != nil && len(s.Budget) != 3:
		return fmt.Errorf("%w: budget is [priority, durability, quality]", ErrInvalidStep)
	}
	for _, v := range append(append([]float64{}, s.Truth...), s.Budget...) {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: %v is outside [0, 1]", ErrInvalidStep, v)
		}
	}
	if len(s.Truth) == 2 && s.Truth[1] >= 1 {
		return fmt.Errorf("%w: confidence must be below 1", ErrInvalidStep)
	}
	return nil
}

// Input converts a task step into a memory input. Missing punctuation
// means a judgment.
func (s Step) Input() (core.InputSpec, error) {
	if s.Term == nil {
		return core.InputSpec{}, fmt.Errorf("%w: not a task", ErrInvalidStep)
	}
	if err := s.validate(); err != nil {
		return core.InputSpec{}, err
	}
	content, err := s.Term.Term()
	if err != nil {
		return core.InputSpec{}, err
	}
	punct := entity.Judgment
	if s.Punctuation != "" {
		p, ok := entity.ParsePunctuation(s.Punctuation)
		if !ok {
			return core.InputSpec{}, fmt.Errorf("%w: punctuation %q", ErrInvalidStep, s.Punctuation)
		}
		punct = p
	}
	spec := core.InputSpec{Content: content, Punctuation: punct, Present: s.Present}
	if len(s.Truth) == 2 {
		if !punct.HasTruth() {
			return core.InputSpec{}, fmt.Errorf("%w: %s has no truth value", ErrInvalidStep, punct)
		}
		spec.Truth = entity.NewTruth(s.Truth[0], s.Truth[1])
	}
	if len(s.Budget) == 3 {
		spec.Budget = entity.NewBudget(s.Budget[0], s.Budget[1], s.Budget[2])
	}
	return spec, nil
}

// Play feeds the steps to m in order, running cycles where the file asks
// for them. It returns the input tasks.
func Play(ctx context.Context, m *core.Memory, f *File) ([]*entity.Task, error) {
	var inputs []*entity.Task
	for i, s := range f.Steps {
		if s.Cycles > 0 {
			if err := m.Run(ctx, s.Cycles); err != nil {
				return inputs, err
			}
			continue
		}
		spec, err := s.Input()
		if err != nil {
			return inputs, fmt.Errorf("step %d: %w", i+1, err)
		}
		task, err := m.Input(spec)
		if err != nil {
			return inputs, fmt.Errorf("step %d: %w", i+1, err)
		}
		inputs = append(inputs, task)
	}
	logging.MemoryDebug("played %d steps, %d inputs", len(f.Steps), len(inputs))
	return inputs, nil
}
