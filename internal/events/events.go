// Package events is the observer boundary of the reasoner. Memory emits
// typed events on a Bus; loggers, recorders and the CLI subscribe.
package events

import (
	"sort"
	"sync"

	"narsgo/internal/entity"
	"narsgo/internal/language"
)

// Type names an event.
type Type string

const (
	CycleStart            Type = "cycle_start"
	CycleEnd              Type = "cycle_end"
	TaskInput             Type = "task_input"
	TaskAdd               Type = "task_add"
	TaskRemove            Type = "task_remove"
	TaskDerived           Type = "task_derived"
	ConceptNew            Type = "concept_new"
	ConceptForget         Type = "concept_forget"
	ConceptBeliefAdd      Type = "concept_belief_add"
	ConceptBeliefRemove   Type = "concept_belief_remove"
	ConceptGoalAdd        Type = "concept_goal_add"
	ConceptGoalRemove     Type = "concept_goal_remove"
	ConceptQuestionAdd    Type = "concept_question_add"
	ConceptQuestionRemove Type = "concept_question_remove"
	BeliefSelect          Type = "belief_select"
	Solution              Type = "solution"
	Answer                Type = "answer"
	Output                Type = "output"
	Execute               Type = "execute"
	Revision              Type = "revision"
	Reset                 Type = "reset"
)

// AllTypes lists every event type in declaration order.
var AllTypes = []Type{
	CycleStart, CycleEnd, TaskInput, TaskAdd, TaskRemove, TaskDerived,
	ConceptNew, ConceptForget, ConceptBeliefAdd, ConceptBeliefRemove,
	ConceptGoalAdd, ConceptGoalRemove, ConceptQuestionAdd, ConceptQuestionRemove,
	BeliefSelect, Solution, Answer, Output, Execute, Revision, Reset,
}

// Event carries whatever the emitter has at hand; unused fields are nil.
type Event struct {
	Type  Type
	Cycle int64
	// Term is the concept term for concept events.
	Term *language.Term
	Task *entity.Task
	// Sentence is the belief, solution or removed item.
	Sentence *entity.Sentence
	// Related is a second task: the question answered by a solution or
	// the parent of a derivation.
	Related *entity.Task
	// Message is free text, used by Execute and Output.
	Message string
}

// Handler receives events on the emitting goroutine.
type Handler func(Event)

// Subscription detaches a handler.
type Subscription struct {
	bus  *Bus
	id   uint64
	once sync.Once
}

// Unsubscribe is idempotent.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() { s.bus.remove(s.id) })
}

type handlerEntry struct {
	id  uint64
	typ Type
	all bool
	fn  Handler
}

// Bus dispatches events synchronously, in subscription order.
type Bus struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]handlerEntry
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[uint64]handlerEntry)}
}

// Subscribe registers fn for one event type.
func (b *Bus) Subscribe(typ Type, fn Handler) *Subscription {
	return b.add(handlerEntry{typ: typ, fn: fn})
}

// SubscribeAll registers fn for every event type.
func (b *Bus) SubscribeAll(fn Handler) *Subscription {
	return b.add(handlerEntry{all: true, fn: fn})
}

func (b *Bus) add(e handlerEntry) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	e.id = b.nextID
	b.handlers[e.id] = e
	return &Subscription{bus: b, id: e.id}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.handlers, id)
}

// Active reports whether anything listens for typ.
func (b *Bus) Active(typ Type) bool {
	if b == nil {
		return false
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, h := range b.handlers {
		if h.all || h.typ == typ {
			return true
		}
	}
	return false
}

// Emit calls every matching handler. A nil bus drops the event.
func (b *Bus) Emit(e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	matched := make([]handlerEntry, 0, len(b.handlers))
	for _, h := range b.handlers {
		if h.all || h.typ == e.Type {
			matched = append(matched, h)
		}
	}
	b.mu.RUnlock()
	sort.Slice(matched, func(i, j int) bool { return matched[i].id < matched[j].id })
	for _, h := range matched {
		h.fn(e)
	}
}

// Len is the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.handlers)
}
