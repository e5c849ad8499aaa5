package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"narsgo/internal/config"
	"narsgo/internal/core"
	"narsgo/internal/events"
	"narsgo/internal/logging"
	"narsgo/internal/operator"
	"narsgo/internal/store"
	"narsgo/internal/taskfile"
)

// answer is one answer to an input question.
type answer struct {
	Cycle      int64
	Question   string
	Answer     string
	Frequency  float64
	Confidence float64
}

// session wires a memory to its operators, the trace store and the config
// watcher for the length of one command.
type session struct {
	mem     *core.Memory
	ops     *operator.Registry
	st      *store.Store
	rec     *store.Session
	watcher *config.Watcher
	subs    []*events.Subscription

	mu       sync.Mutex
	answers  []answer
	executed []string
	outputs  int
}

func (a *app) startSession(ctx context.Context, name string, record bool) (*session, error) {
	ops, err := operator.NewRegistry(a.cfg.Operators)
	if err != nil {
		return nil, err
	}
	mem, err := core.NewMemory(a.cfg, core.WithOperators(ops))
	if err != nil {
		return nil, err
	}
	s := &session{mem: mem, ops: ops}
	bus := mem.Bus()
	s.subs = append(s.subs,
		bus.Subscribe(events.Answer, s.onAnswer),
		bus.Subscribe(events.Execute, s.onExecute),
		bus.Subscribe(events.Output, func(events.Event) {
			s.mu.Lock()
			s.outputs++
			s.mu.Unlock()
		}),
	)

	if record || a.cfg.Store.Enabled {
		s.st, err = store.Open(a.cfg.Store)
		if err != nil {
			s.close()
			return nil, err
		}
		s.rec, err = s.st.NewSession(name, a.cfg.Store.RecordCycles)
		if err != nil {
			s.close()
			return nil, err
		}
		s.rec.Attach(bus)
	}

	if _, err := os.Stat(a.configPath); err == nil {
		s.watcher, err = config.Watch(ctx, a.configPath, func(cfg *config.Config) {
			if err := mem.ApplyConfig(cfg.Reasoner); err != nil {
				logging.ConfigWarn("reload not applied: %v", err)
			}
		})
		if err != nil {
			logging.ConfigWarn("config hot reload disabled: %v", err)
		}
	}
	logging.Boot("session %s started", name)
	return s, nil
}

func (s *session) onAnswer(e events.Event) {
	if e.Task == nil || e.Sentence == nil {
		return
	}
	a := answer{Cycle: e.Cycle, Question: e.Task.Sentence().String(), Answer: e.Sentence.String()}
	if t := e.Sentence.Truth(); t != nil {
		a.Frequency, a.Confidence = t.Frequency(), t.Confidence()
	}
	s.mu.Lock()
	s.answers = append(s.answers, a)
	s.mu.Unlock()
}

func (s *session) onExecute(e events.Event) {
	line := e.Message
	if e.Task != nil {
		line = fmt.Sprintf("%s -> %s", e.Task.Content(), e.Message)
	}
	s.mu.Lock()
	s.executed = append(s.executed, line)
	s.mu.Unlock()
}

// play feeds the task file, then runs extra cycles.
func (s *session) play(ctx context.Context, f *taskfile.File, extra int) error {
	if _, err := taskfile.Play(ctx, s.mem, f); err != nil {
		return err
	}
	if extra > 0 {
		return s.mem.Run(ctx, extra)
	}
	return nil
}

// Answers returns a copy of the answers seen so far.
func (s *session) Answers() []answer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]answer(nil), s.answers...)
}

func (s *session) Executed() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.executed...)
}

func (s *session) Outputs() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outputs
}

// close snapshots the beliefs into the trace store and releases
// everything the session holds.
func (s *session) close() error {
	var errs []error
	for _, sub := range s.subs {
		sub.Unsubscribe()
	}
	if s.watcher != nil {
		errs = append(errs, s.watcher.Close())
	}
	if s.rec != nil {
		errs = append(errs, s.rec.SnapshotBeliefs(s.mem.Time(), s.mem.Beliefs()))
		errs = append(errs, s.rec.End())
	}
	if s.st != nil {
		errs = append(errs, s.st.Close())
	}
	return errors.Join(errs...)
}
