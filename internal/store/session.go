package store

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"narsgo/internal/entity"
	"narsgo/internal/events"
	"narsgo/internal/logging"
)

// Session records one run of the reasoner.
type Session struct {
	ID    string
	Name  string
	store *Store

	recordCycles bool
	sub          *events.Subscription
	lastCycle    atomic.Int64
	failures     atomic.Int64
}

// NewSession starts a session named name. Cycle start and end events are
// recorded only when recordCycles is set.
func (s *Store) NewSession(name string, recordCycles bool) (*Session, error) {
	sess := &Session{ID: uuid.New().String(), Name: name, store: s, recordCycles: recordCycles}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec(`INSERT INTO sessions (id, name, started_at) VALUES (?, ?, ?)`,
		sess.ID, name, time.Now().UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	logging.Store("session %s started (%s)", sess.ID, name)
	return sess, nil
}

// Attach subscribes the session to every event on bus. Detach stops it.
func (sess *Session) Attach(bus *events.Bus) {
	sess.sub = bus.SubscribeAll(sess.record)
}

// Detach unsubscribes from the bus. Safe to call more than once.
func (sess *Session) Detach() {
	sess.sub.Unsubscribe()
}

// Failures counts events that could not be written.
func (sess *Session) Failures() int64 { return sess.failures.Load() }

func (sess *Session) record(e events.Event) {
	if e.Cycle > sess.lastCycle.Load() {
		sess.lastCycle.Store(e.Cycle)
	}
	if !sess.recordCycles && (e.Type == events.CycleStart || e.Type == events.CycleEnd) {
		return
	}
	if err := sess.RecordEvent(e); err != nil {
		sess.failures.Add(1)
		logging.Get(logging.CategoryStore).Warn("failed to record %s: %v", e.Type, err)
	}
}

// RecordEvent writes one event, plus an answer row for Answer events.
func (sess *Session) RecordEvent(e events.Event) error {
	term, sentence := "", ""
	switch {
	case e.Term != nil:
		term = e.Term.Name()
	case e.Task != nil:
		term = e.Task.Content().Name()
	}
	switch {
	case e.Sentence != nil:
		sentence = e.Sentence.String()
	case e.Task != nil:
		sentence = e.Task.Sentence().String()
	}

	st := sess.store
	st.mu.Lock()
	defer st.mu.Unlock()

	_, err := st.db.Exec(`INSERT INTO events (session_id, cycle, type, term, sentence, message)
		VALUES (?, ?, ?, ?, ?, ?)`, sess.ID, e.Cycle, string(e.Type), term, sentence, e.Message)
	if err != nil {
		return fmt.Errorf("failed to insert event: %w", err)
	}
	if e.Type != events.Answer || e.Task == nil || e.Sentence == nil {
		return nil
	}
	var f, c any
	if t := e.Sentence.Truth(); t != nil {
		f, c = t.Frequency(), t.Confidence()
	}
	_, err = st.db.Exec(`INSERT INTO answers (session_id, cycle, question, answer, frequency, confidence)
		VALUES (?, ?, ?, ?, ?, ?)`, sess.ID, e.Cycle, e.Task.Sentence().String(), e.Sentence.String(), f, c)
	if err != nil {
		return fmt.Errorf("failed to insert answer: %w", err)
	}
	return nil
}

// SnapshotBeliefs records the given beliefs as of cycle in one
// transaction.
func (sess *Session) SnapshotBeliefs(cycle int64, beliefs []*entity.Sentence) error {
	timer := logging.StartTimer(logging.CategoryStore, "SnapshotBeliefs")
	defer timer.Stop()

	st := sess.store
	st.mu.Lock()
	defer st.mu.Unlock()

	tx, err := st.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO beliefs (session_id, cycle, term, frequency, confidence)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot: %w", err)
	}
	defer stmt.Close()

	for _, b := range beliefs {
		t := b.Truth()
		if t == nil {
			continue
		}
		if _, err := stmt.Exec(sess.ID, cycle, b.Content().Name(), t.Frequency(), t.Confidence()); err != nil {
			return fmt.Errorf("failed to insert belief: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	logging.StoreDebug("snapshot of %d beliefs at cycle %d", len(beliefs), cycle)
	return nil
}

// End detaches the session and records the last cycle seen.
func (sess *Session) End() error {
	sess.Detach()
	st := sess.store
	st.mu.Lock()
	defer st.mu.Unlock()
	_, err := st.db.Exec(`UPDATE sessions SET ended_at = ?, cycles = ? WHERE id = ?`,
		time.Now().UnixMilli(), sess.lastCycle.Load(), sess.ID)
	if err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}
	return nil
}
