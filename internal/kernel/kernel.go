// Package kernel exports the beliefs of a memory as Datalog facts and
// evaluates Mangle rules over them.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/mangle/analysis"
	"github.com/google/mangle/ast"
	"github.com/google/mangle/engine"
	"github.com/google/mangle/factstore"
	"github.com/google/mangle/parse"

	"narsgo/internal/config"
	"narsgo/internal/entity"
	"narsgo/internal/logging"
)

var (
	// ErrNotEvaluated is returned by queries before the first Evaluate.
	ErrNotEvaluated = errors.New("kernel has not been evaluated")
	// ErrUnknownPredicate is returned for predicates no rule or
	// declaration defines.
	ErrUnknownPredicate = errors.New("unknown predicate")
)

// defaultFactLimit caps derived facts when the config sets no limit.
const defaultFactLimit = 100000

// Fact is one derived or exported fact.
type Fact struct {
	Predicate string
	Args      []any
}

// String returns the Datalog form of the fact.
func (f Fact) String() string {
	args := make([]string, 0, len(f.Args))
	for _, arg := range f.Args {
		switch v := arg.(type) {
		case string:
			if strings.HasPrefix(v, "/") {
				args = append(args, v)
			} else {
				args = append(args, fmt.Sprintf("%q", v))
			}
		default:
			args = append(args, fmt.Sprintf("%v", v))
		}
	}
	return fmt.Sprintf("%s(%s).", f.Predicate, strings.Join(args, ", "))
}

// Stats describes the last evaluation.
type Stats struct {
	Beliefs  int
	Exported int
	Strata   int
	Duration time.Duration
}

// Kernel holds a Mangle program made of the belief schema and user rules.
// Safe for concurrent use.
type Kernel struct {
	factLimit int
	timeout   time.Duration

	mu             sync.RWMutex
	units          []parse.SourceUnit
	programInfo    *analysis.ProgramInfo
	predicateIndex map[string]ast.PredicateSym
	store          factstore.FactStore
}

// New returns a kernel with the belief schema and the rules at
// cfg.RulesPath, if any.
func New(cfg config.KernelConfig) (*Kernel, error) {
	k := &Kernel{factLimit: cfg.FactLimit, timeout: cfg.GetQueryTimeout()}
	if err := k.AddRules(schema); err != nil {
		return nil, err
	}
	if cfg.RulesPath != "" {
		data, err := os.ReadFile(cfg.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read rules %s: %w", cfg.RulesPath, err)
		}
		if err := k.AddRules(string(data)); err != nil {
			return nil, fmt.Errorf("failed to load rules %s: %w", cfg.RulesPath, err)
		}
		logging.Kernel("loaded rules from %s", cfg.RulesPath)
	}
	return k, nil
}

// AddRules parses src and adds its declarations and clauses to the
// program. The program is left unchanged when src does not analyze.
func (k *Kernel) AddRules(src string) error {
	unit, err := parse.Unit(strings.NewReader(src))
	if err != nil {
		return fmt.Errorf("failed to parse rules: %w", err)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	units := append(slices.Clone(k.units), unit)
	var merged parse.SourceUnit
	for _, u := range units {
		merged.Clauses = append(merged.Clauses, u.Clauses...)
		merged.Decls = append(merged.Decls, u.Decls...)
	}
	programInfo, err := analysis.AnalyzeOneUnit(merged, nil)
	if err != nil {
		logging.Get(logging.CategoryKernel).Error("rule analysis failed: %v", err)
		return fmt.Errorf("failed to analyze rules: %w", err)
	}

	k.units = units
	k.programInfo = programInfo
	k.predicateIndex = make(map[string]ast.PredicateSym, len(programInfo.Decls))
	for sym := range programInfo.Decls {
		k.predicateIndex[sym.Symbol] = sym
	}
	k.store = nil
	logging.KernelDebug("program has %d clauses, %d predicates", len(merged.Clauses), len(k.predicateIndex))
	return nil
}

// Predicates lists the predicates the program knows.
func (k *Kernel) Predicates() []string {
	k.mu.RLock()
	defer k.mu.RUnlock()
	names := make([]string, 0, len(k.predicateIndex))
	for name := range k.predicateIndex {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Evaluate replaces the facts with beliefs and runs the program to a
// fixpoint.
func (k *Kernel) Evaluate(ctx context.Context, beliefs []*entity.Sentence) (Stats, error) {
	timer := logging.StartTimer(logging.CategoryKernel, "Evaluate")
	defer timer.Stop()

	x := newExporter()
	for _, b := range beliefs {
		if err := x.belief(b); err != nil {
			return Stats{}, err
		}
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	store := factstore.NewSimpleInMemoryStore()
	for _, atom := range x.atoms {
		store.Add(atom)
	}

	ctx, cancel := context.WithTimeout(ctx, k.timeout)
	defer cancel()

	limit := k.factLimit
	if limit <= 0 {
		limit = defaultFactLimit
	}
	type result struct {
		strata int
		err    error
	}
	done := make(chan result, 1)
	programInfo := k.programInfo
	start := time.Now()
	go func() {
		stats, err := engine.EvalProgramWithStats(programInfo, store, engine.WithCreatedFactLimit(limit))
		done <- result{len(stats.Strata), err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		return Stats{}, fmt.Errorf("evaluation timed out after %v: %w", time.Since(start), ctx.Err())
	}
	if res.err != nil {
		logging.Get(logging.CategoryKernel).Error("evaluation failed: %v", res.err)
		return Stats{}, fmt.Errorf("failed to evaluate program: %w", res.err)
	}

	k.store = store
	stats := Stats{
		Beliefs:  len(beliefs),
		Exported: len(x.atoms),
		Strata:   res.strata,
		Duration: time.Since(start),
	}
	logging.Kernel("evaluated %d beliefs (%d facts, %d strata) in %v",
		stats.Beliefs, stats.Exported, stats.Strata, stats.Duration)
	return stats, nil
}

// Facts returns every fact of predicate, sorted.
func (k *Kernel) Facts(predicate string) ([]Fact, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.store == nil {
		return nil, ErrNotEvaluated
	}
	sym, ok := k.predicateIndex[predicate]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPredicate, predicate)
	}

	var out []Fact
	err := k.store.GetFacts(ast.NewQuery(sym), func(a ast.Atom) error {
		out = append(out, atomToFact(a))
		return nil
	})
	sortFacts(out)
	return out, err
}

// Binding maps query variables to values.
type Binding map[string]any

// Query matches a pattern such as isa("robin", P) against the facts and
// returns one binding per match. The pattern may be a bare predicate name.
func (k *Kernel) Query(query string) ([]Binding, error) {
	pattern, err := parseQuery(query)
	if err != nil {
		return nil, err
	}
	pred := pattern.Predicate.Symbol

	k.mu.RLock()
	defer k.mu.RUnlock()
	if k.store == nil {
		return nil, ErrNotEvaluated
	}
	sym, ok := k.predicateIndex[pred]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPredicate, pred)
	}
	if pattern.Predicate.Arity != sym.Arity {
		if len(pattern.Args) > 0 {
			return nil, fmt.Errorf("%s takes %d arguments, got %d", pred, sym.Arity, len(pattern.Args))
		}
		pattern = ast.NewAtom(pred)
	}

	var out []Binding
	var keys []string
	err = k.store.GetFacts(ast.NewQuery(sym), func(a ast.Atom) error {
		b, ok := match(pattern, a)
		if !ok {
			return nil
		}
		out = append(out, b)
		keys = append(keys, atomToFact(a).String())
		return nil
	})
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	slices.SortFunc(idx, func(a, b int) int { return strings.Compare(keys[a], keys[b]) })
	sorted := make([]Binding, len(out))
	for i, j := range idx {
		sorted[i] = out[j]
	}
	return sorted, nil
}

func parseQuery(query string) (ast.Atom, error) {
	clean := strings.TrimSpace(query)
	clean = strings.TrimPrefix(clean, "?")
	clean = strings.TrimSpace(strings.TrimSuffix(clean, "."))
	if clean == "" {
		return ast.Atom{}, fmt.Errorf("empty query")
	}
	if !strings.Contains(clean, "(") {
		return ast.NewAtom(clean), nil
	}
	atom, err := parse.Atom(clean)
	if err != nil {
		return ast.Atom{}, fmt.Errorf("failed to parse query %q: %w", query, err)
	}
	return atom, nil
}

// match unifies pattern with a ground fact. Repeated variables must bind
// to equal constants; _ matches anything.
func match(pattern, fact ast.Atom) (Binding, bool) {
	b := Binding{}
	if len(pattern.Args) == 0 {
		for i, arg := range fact.Args {
			b[fmt.Sprintf("_%d", i)] = termValue(arg)
		}
		return b, true
	}
	bound := make(map[string]ast.Constant)
	for i, p := range pattern.Args {
		c, ok := fact.Args[i].(ast.Constant)
		if !ok {
			return nil, false
		}
		switch v := p.(type) {
		case ast.Variable:
			if v.Symbol == "_" {
				continue
			}
			if prev, seen := bound[v.Symbol]; seen {
				if !prev.Equals(c) {
					return nil, false
				}
				continue
			}
			bound[v.Symbol] = c
			b[v.Symbol] = termValue(c)
		case ast.Constant:
			if !v.Equals(c) {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return b, true
}

func atomToFact(a ast.Atom) Fact {
	args := make([]any, len(a.Args))
	for i, t := range a.Args {
		args[i] = termValue(t)
	}
	return Fact{Predicate: a.Predicate.Symbol, Args: args}
}

func termValue(t ast.BaseTerm) any {
	c, ok := t.(ast.Constant)
	if !ok {
		return fmt.Sprintf("%v", t)
	}
	switch c.Type {
	case ast.NameType, ast.StringType, ast.BytesType:
		return c.Symbol
	case ast.NumberType:
		return c.NumValue
	case ast.Float64Type:
		return c.Float64Value
	}
	return c.Symbol
}

func sortFacts(fs []Fact) {
	slices.SortFunc(fs, func(a, b Fact) int { return strings.Compare(a.String(), b.String()) })
}
