package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// SessionInfo describes a recorded session.
type SessionInfo struct {
	ID        string
	Name      string
	StartedAt time.Time
	EndedAt   *time.Time
	Cycles    int64
	Events    int64
}

// EventRecord is one recorded event.
type EventRecord struct {
	Cycle    int64
	Type     string
	Term     string
	Sentence string
	Message  string
}

// AnswerRecord is one recorded answer to an input question.
type AnswerRecord struct {
	Cycle      int64
	Question   string
	Answer     string
	Frequency  float64
	Confidence float64
}

// BeliefRecord is one belief of a snapshot.
type BeliefRecord struct {
	Cycle      int64
	Term       string
	Frequency  float64
	Confidence float64
}

// Sessions lists sessions, newest first.
func (s *Store) Sessions() ([]SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`
		SELECT s.id, s.name, s.started_at, s.ended_at, s.cycles,
		       (SELECT COUNT(*) FROM events e WHERE e.session_id = s.id)
		FROM sessions s ORDER BY s.started_at DESC, s.rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionInfo
	for rows.Next() {
		var info SessionInfo
		var started int64
		var ended sql.NullInt64
		if err := rows.Scan(&info.ID, &info.Name, &started, &ended, &info.Cycles, &info.Events); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		info.StartedAt = time.UnixMilli(started)
		if ended.Valid {
			t := time.UnixMilli(ended.Int64)
			info.EndedAt = &t
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Session looks up one session. A unique id prefix is accepted.
func (s *Store) Session(id string) (SessionInfo, error) {
	all, err := s.Sessions()
	if err != nil {
		return SessionInfo{}, err
	}
	var found []SessionInfo
	for _, info := range all {
		if info.ID == id {
			return info, nil
		}
		if strings.HasPrefix(info.ID, id) {
			found = append(found, info)
		}
	}
	if len(found) != 1 {
		return SessionInfo{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return found[0], nil
}

// EventFilter narrows Events. Zero values match everything.
type EventFilter struct {
	Types []string
	Term  string
	Limit int
}

// Events returns the events of a session in emission order.
func (s *Store) Events(sessionID string, f EventFilter) ([]EventRecord, error) {
	query := `SELECT cycle, type, COALESCE(term, ''), COALESCE(sentence, ''), COALESCE(message, '')
		FROM events WHERE session_id = ?`
	args := []any{sessionID}
	if len(f.Types) > 0 {
		query += " AND type IN (" + strings.TrimSuffix(strings.Repeat("?,", len(f.Types)), ",") + ")"
		for _, t := range f.Types {
			args = append(args, t)
		}
	}
	if f.Term != "" {
		query += " AND term = ?"
		args = append(args, f.Term)
	}
	query += " ORDER BY id"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []EventRecord
	for rows.Next() {
		var r EventRecord
		if err := rows.Scan(&r.Cycle, &r.Type, &r.Term, &r.Sentence, &r.Message); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Answers returns the answers recorded in a session.
func (s *Store) Answers(sessionID string) ([]AnswerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT cycle, question, answer, COALESCE(frequency, 0), COALESCE(confidence, 0)
		FROM answers WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query answers: %w", err)
	}
	defer rows.Close()

	var out []AnswerRecord
	for rows.Next() {
		var r AnswerRecord
		if err := rows.Scan(&r.Cycle, &r.Question, &r.Answer, &r.Frequency, &r.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan answer: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Beliefs returns the latest belief snapshot of a session.
func (s *Store) Beliefs(sessionID string) ([]BeliefRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query(`SELECT cycle, term, frequency, confidence FROM beliefs
		WHERE session_id = ? AND cycle = (SELECT MAX(cycle) FROM beliefs WHERE session_id = ?)
		ORDER BY term`, sessionID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query beliefs: %w", err)
	}
	defer rows.Close()

	var out []BeliefRecord
	for rows.Next() {
		var r BeliefRecord
		if err := rows.Scan(&r.Cycle, &r.Term, &r.Frequency, &r.Confidence); err != nil {
			return nil, fmt.Errorf("failed to scan belief: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
