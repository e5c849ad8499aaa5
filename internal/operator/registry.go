// Package operator holds the operations the executive can carry out:
// builtin operators plus Go source operators interpreted at runtime.
package operator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"narsgo/internal/config"
	"narsgo/internal/logging"
)

var (
	// ErrUnknownOperator is returned for operators that are not registered.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrInvalidName is returned for operator names without the ^ prefix.
	ErrInvalidName = errors.New("operator names start with ^")
)

// Func carries out an operation with the names of its arguments.
type Func func(ctx context.Context, args []string) (string, error)

// Registry maps operator names such as "^say" to their implementations.
// It is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	ops     map[string]Func
	timeout time.Duration

	rememberMu sync.Mutex
	remembered []string
}

// NewRegistry returns a registry with the builtin operators not listed in
// cfg.Disabled, plus the scripts found in cfg.ScriptDir.
func NewRegistry(cfg config.OperatorsConfig) (*Registry, error) {
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, fmt.Errorf("failed to parse operator timeout: %w", err)
	}
	r := &Registry{ops: make(map[string]Func), timeout: timeout}

	builtins := map[string]Func{
		"^say":      r.say,
		"^remember": r.remember,
	}
	for name, fn := range builtins {
		if slices.Contains(cfg.Disabled, name) {
			logging.Operator("builtin %s disabled", name)
			continue
		}
		r.ops[name] = fn
	}

	if cfg.ScriptDir != "" {
		n, err := r.LoadScripts(cfg.ScriptDir)
		if err != nil {
			return nil, err
		}
		logging.Operator("loaded %d scripted operators from %s", n, cfg.ScriptDir)
	}
	return r, nil
}

// Register adds or replaces an operator.
func (r *Registry) Register(name string, fn Func) error {
	if !strings.HasPrefix(name, "^") || len(name) < 2 {
		return fmt.Errorf("failed to register %q: %w", name, ErrInvalidName)
	}
	r.mu.Lock()
	r.ops[name] = fn
	r.mu.Unlock()
	return nil
}

// Names lists the registered operators in order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.ops))
	for name := range r.ops {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Execute runs op, bounded by the registry timeout and ctx.
func (r *Registry) Execute(ctx context.Context, op string, args []string) (string, error) {
	r.mu.RLock()
	fn, ok := r.ops[op]
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("failed to execute %s: %w", op, ErrUnknownOperator)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	timer := logging.StartTimer(logging.CategoryOperator, op)
	defer timer.Stop()
	out, err := fn(ctx, args)
	if err != nil {
		return "", fmt.Errorf("failed to execute %s: %w", op, err)
	}
	return out, nil
}

// Remembered returns what ^remember has stored, oldest first.
func (r *Registry) Remembered() []string {
	r.rememberMu.Lock()
	defer r.rememberMu.Unlock()
	return slices.Clone(r.remembered)
}

func (r *Registry) say(_ context.Context, args []string) (string, error) {
	msg := strings.Join(args, " ")
	logging.Operator("^say %s", msg)
	return msg, nil
}

func (r *Registry) remember(_ context.Context, args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("nothing to remember")
	}
	item := strings.Join(args, " ")
	r.rememberMu.Lock()
	r.remembered = append(r.remembered, item)
	r.rememberMu.Unlock()
	return "remembered " + item, nil
}
