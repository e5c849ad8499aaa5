package entity

import (
	"sync"

	"narsgo/internal/language"
)

// Item is anything a Bag can hold: a unique key and a budget.
type Item interface {
	Key() string
	Budget() *Budget
}

// Task is a sentence with a budget and its derivation parentage.
type Task struct {
	sentence     *Sentence
	budget       *Budget
	parentTask   *Task
	parentBelief *Sentence

	mu           sync.RWMutex
	bestSolution *Sentence
}

// NewTask creates a task. A nil parent marks an input task.
func NewTask(s *Sentence, b *Budget, parent *Task, parentBelief *Sentence) *Task {
	return &Task{sentence: s, budget: b, parentTask: parent, parentBelief: parentBelief}
}

// NewActivatedTask creates a task re-activating a belief that solved parent.
func NewActivatedTask(s *Sentence, b *Budget, parent *Task, parentBelief, solution *Sentence) *Task {
	t := NewTask(s, b, parent, parentBelief)
	t.bestSolution = solution
	return t
}

func (t *Task) Key() string                { return t.sentence.Key() }
func (t *Task) Budget() *Budget            { return t.budget }
func (t *Task) Sentence() *Sentence        { return t.sentence }
func (t *Task) Content() *language.Term    { return t.sentence.content }
func (t *Task) ParentTask() *Task          { return t.parentTask }
func (t *Task) ParentBelief() *Sentence    { return t.parentBelief }
func (t *Task) IsInput() bool              { return t.parentTask == nil }
func (t *Task) Priority() float64          { return t.budget.Priority() }
func (t *Task) AboveThreshold() bool       { return t.budget.AboveThreshold() }

// BestSolution returns the best answer found so far, if any.
func (t *Task) BestSolution() *Sentence {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.bestSolution
}

// SetBestSolution records a new best answer.
func (t *Task) SetBestSolution(s *Sentence) {
	t.mu.Lock()
	t.bestSolution = s
	t.mu.Unlock()
}

func (t *Task) String() string {
	return t.budget.String() + " " + t.sentence.String()
}
