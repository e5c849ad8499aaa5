package language

import "sync"

// Table interns terms by canonical name so that structurally equal terms
// share one allocation within a reasoning session.
type Table struct {
	mu    sync.RWMutex
	terms map[string]*Term
}

// NewTable returns an empty interning table.
func NewTable() *Table {
	return &Table{terms: make(map[string]*Term)}
}

// Intern returns the canonical instance for t.
func (tb *Table) Intern(t *Term) *Term {
	if t == nil {
		return nil
	}
	tb.mu.RLock()
	if existing, ok := tb.terms[t.name]; ok {
		tb.mu.RUnlock()
		return existing
	}
	tb.mu.RUnlock()

	tb.mu.Lock()
	defer tb.mu.Unlock()
	if existing, ok := tb.terms[t.name]; ok {
		return existing
	}
	tb.terms[t.name] = t
	return t
}

// Lookup returns the interned term with the given name.
func (tb *Table) Lookup(name string) (*Term, bool) {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	t, ok := tb.terms[name]
	return t, ok
}

// Forget drops the entry for name.
func (tb *Table) Forget(name string) {
	tb.mu.Lock()
	delete(tb.terms, name)
	tb.mu.Unlock()
}

// Len returns the number of interned terms.
func (tb *Table) Len() int {
	tb.mu.RLock()
	defer tb.mu.RUnlock()
	return len(tb.terms)
}

// Clear empties the table.
func (tb *Table) Clear() {
	tb.mu.Lock()
	tb.terms = make(map[string]*Term)
	tb.mu.Unlock()
}
