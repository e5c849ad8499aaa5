package core

import (
	"fmt"
	"slices"
	"strings"

	"narsgo/internal/entity"
	"narsgo/internal/language"
	"narsgo/internal/logging"
)

// BudgetState is a budget triple.
type BudgetState struct {
	Priority   float64
	Durability float64
	Quality    float64
}

// SentenceState is a sentence with its evidence. Frequency, Confidence
// and Analytic are zero for questions and quests.
type SentenceState struct {
	Content     *language.Term
	Punctuation entity.Punctuation
	Frequency   float64
	Confidence  float64
	Analytic    bool
	Base        []int64
	Creation    int64
	Occurrence  int64
}

// TaskState is a task. Parent is the sentence of the parent task; its own
// ancestry is not kept.
type TaskState struct {
	Sentence     SentenceState
	Budget       BudgetState
	Parent       *SentenceState
	ParentBelief *SentenceState
	BestSolution *SentenceState
}

// TaskLinkState is a task link. Task indexes Snapshot.Tasks.
type TaskLinkState struct {
	Key          string
	Type         entity.LinkType
	Index        []int
	Budget       BudgetState
	Task         int
	RecordLength int
	Records      []entity.LinkRecord
}

// TermLinkState is a term link.
type TermLinkState struct {
	Key    string
	Type   entity.LinkType
	Index  []int
	Budget BudgetState
	Target *language.Term
}

// ConceptState is the state of one concept. Questions and Quests index
// Snapshot.Tasks, oldest first.
type ConceptState struct {
	Name      string
	Term      *language.Term
	Budget    BudgetState
	Beliefs   []SentenceState
	Desires   []SentenceState
	Questions []int
	Quests    []int
	TaskLinks []TaskLinkState
	TermLinks []TermLinkState
}

// Snapshot is the state of memory between cycles. Tasks held in several
// places appear once in Tasks. Concepts, links and novel tasks are sorted
// by key so equal memories give equal snapshots.
type Snapshot struct {
	Time       int64
	Serial     int64
	Tasks      []TaskState
	Concepts   []ConceptState
	NovelTasks []int
	NewTasks   []int
	Input      []int
}

// Snapshot captures the state of memory between cycles.
func (m *Memory) Snapshot() Snapshot {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	w := &snapshotWriter{ids: make(map[*entity.Task]int)}
	w.snap.Time = m.clock.Load()
	w.snap.Serial = m.serial.Load()

	concepts := m.Concepts()
	slices.SortFunc(concepts, func(a, b *Concept) int { return strings.Compare(a.Key(), b.Key()) })
	for _, c := range concepts {
		w.snap.Concepts = append(w.snap.Concepts, w.concept(c))
	}

	m.conceptMu.RLock()
	novel := m.novelTasks.Items()
	m.conceptMu.RUnlock()
	slices.SortFunc(novel, func(a, b *entity.Task) int { return strings.Compare(a.Key(), b.Key()) })
	w.snap.NovelTasks = w.tasks(novel)

	m.newMu.Lock()
	pending := slices.Clone(m.newTasks)
	m.newMu.Unlock()
	w.snap.NewTasks = w.tasks(pending)

	m.inputMu.Lock()
	input := slices.Clone(m.inputBuffer)
	m.inputMu.Unlock()
	w.snap.Input = w.tasks(input)
	return w.snap
}

// Concept returns the state of the concept named term.
func (s Snapshot) Concept(term string) (ConceptState, bool) {
	i, ok := slices.BinarySearchFunc(s.Concepts, term, func(c ConceptState, t string) int {
		return strings.Compare(c.Name, t)
	})
	if !ok {
		return ConceptState{}, false
	}
	return s.Concepts[i], true
}

type snapshotWriter struct {
	snap Snapshot
	ids  map[*entity.Task]int
}

func (w *snapshotWriter) task(t *entity.Task) int {
	if id, ok := w.ids[t]; ok {
		return id
	}
	st := TaskState{
		Sentence:     sentenceState(t.Sentence()),
		Budget:       budgetState(t.Budget()),
		ParentBelief: optionalSentence(t.ParentBelief()),
		BestSolution: optionalSentence(t.BestSolution()),
	}
	if p := t.ParentTask(); p != nil {
		st.Parent = optionalSentence(p.Sentence())
	}
	id := len(w.snap.Tasks)
	w.snap.Tasks = append(w.snap.Tasks, st)
	w.ids[t] = id
	return id
}

func (w *snapshotWriter) tasks(ts []*entity.Task) []int {
	var out []int
	for _, t := range ts {
		out = append(out, w.task(t))
	}
	return out
}

func (w *snapshotWriter) concept(c *Concept) ConceptState {
	st := ConceptState{
		Name:      c.Key(),
		Term:      c.term,
		Budget:    budgetState(c.budget),
		Questions: w.tasks(c.Questions()),
		Quests:    w.tasks(c.Quests()),
	}
	for _, b := range c.Beliefs() {
		st.Beliefs = append(st.Beliefs, sentenceState(b))
	}
	for _, g := range c.Desires() {
		st.Desires = append(st.Desires, sentenceState(g))
	}

	taskLinks := c.TaskLinks()
	slices.SortFunc(taskLinks, func(a, b *entity.TaskLink) int { return strings.Compare(a.Key(), b.Key()) })
	for _, l := range taskLinks {
		st.TaskLinks = append(st.TaskLinks, TaskLinkState{
			Key:          l.Key(),
			Type:         l.Type(),
			Index:        slices.Clone(l.Indices()),
			Budget:       budgetState(l.Budget()),
			Task:         w.task(l.Task()),
			RecordLength: l.RecordLength(),
			Records:      l.Records(),
		})
	}
	termLinks := c.TermLinks()
	slices.SortFunc(termLinks, func(a, b *entity.TermLink) int { return strings.Compare(a.Key(), b.Key()) })
	for _, l := range termLinks {
		st.TermLinks = append(st.TermLinks, TermLinkState{
			Key:    l.Key(),
			Type:   l.Type(),
			Index:  slices.Clone(l.Indices()),
			Budget: budgetState(l.Budget()),
			Target: l.Target(),
		})
	}
	return st
}

func budgetState(b *entity.Budget) BudgetState {
	p, d, q := b.Values()
	return BudgetState{Priority: p, Durability: d, Quality: q}
}

func sentenceState(s *entity.Sentence) SentenceState {
	st := SentenceState{
		Content:     s.Content(),
		Punctuation: s.Punctuation(),
		Base:        s.Stamp().Base(),
		Creation:    s.Stamp().Creation(),
		Occurrence:  s.Stamp().Occurrence(),
	}
	if t := s.Truth(); t != nil {
		st.Frequency, st.Confidence, st.Analytic = t.Frequency(), t.Confidence(), t.IsAnalytic()
	}
	return st
}

func optionalSentence(s *entity.Sentence) *SentenceState {
	if s == nil {
		return nil
	}
	st := sentenceState(s)
	return &st
}

// Restore replaces the contents of memory with snap. The clock and the
// serial counter resume from the snapshot, so new input never reuses
// restored evidence. On error memory is left empty.
func (m *Memory) Restore(snap Snapshot) error {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()
	m.clear()

	r := &restorer{snap: snap, tasks: make([]*entity.Task, len(snap.Tasks))}
	if err := m.restore(r); err != nil {
		m.clear()
		return fmt.Errorf("failed to restore snapshot: %w", err)
	}
	m.clock.Store(snap.Time)
	m.serial.Store(snap.Serial)
	logging.Memory("memory restored: time=%d concepts=%d tasks=%d", snap.Time, len(snap.Concepts), len(snap.Tasks))
	return nil
}

func (m *Memory) restore(r *restorer) error {
	for i, cs := range r.snap.Concepts {
		c, err := m.restoreConcept(r, cs)
		if err != nil {
			return fmt.Errorf("concept %d: %w", i, err)
		}
		m.conceptMu.Lock()
		overflow, evicted := m.concepts.PutIn(c)
		m.conceptMu.Unlock()
		if evicted {
			m.forgetConcept(overflow)
		}
	}

	novel, err := r.taskList(r.snap.NovelTasks)
	if err != nil {
		return fmt.Errorf("novel tasks: %w", err)
	}
	m.conceptMu.Lock()
	for _, t := range novel {
		m.novelTasks.PutIn(t)
	}
	m.conceptMu.Unlock()

	pending, err := r.taskList(r.snap.NewTasks)
	if err != nil {
		return fmt.Errorf("new tasks: %w", err)
	}
	input, err := r.taskList(r.snap.Input)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	m.newMu.Lock()
	m.newTasks = pending
	m.newMu.Unlock()
	m.inputMu.Lock()
	m.inputBuffer = input
	m.inputMu.Unlock()
	return nil
}

func (m *Memory) restoreConcept(r *restorer, cs ConceptState) (*Concept, error) {
	if cs.Term == nil {
		return nil, language.ErrInvalidTerm
	}
	c := m.newConcept(m.terms.Intern(cs.Term))
	budget, err := restoreBudget(cs.Budget)
	if err != nil {
		return nil, err
	}
	c.budget = budget

	if c.beliefs, err = restoreSentences(cs.Beliefs); err != nil {
		return nil, fmt.Errorf("beliefs: %w", err)
	}
	if c.desires, err = restoreSentences(cs.Desires); err != nil {
		return nil, fmt.Errorf("desires: %w", err)
	}
	if c.questions, err = r.taskList(cs.Questions); err != nil {
		return nil, fmt.Errorf("questions: %w", err)
	}
	if c.quests, err = r.taskList(cs.Quests); err != nil {
		return nil, fmt.Errorf("quests: %w", err)
	}

	for _, ls := range cs.TaskLinks {
		task, err := r.task(ls.Task)
		if err != nil {
			return nil, fmt.Errorf("task link %s: %w", ls.Key, err)
		}
		b, err := restoreBudget(ls.Budget)
		if err != nil {
			return nil, fmt.Errorf("task link %s: %w", ls.Key, err)
		}
		c.taskLinks.PutIn(entity.RestoreTaskLink(task, ls.Type, slices.Clone(ls.Index), b, ls.RecordLength, ls.Records))
	}
	for _, ls := range cs.TermLinks {
		if ls.Target == nil {
			return nil, fmt.Errorf("term link %s: %w", ls.Key, language.ErrInvalidTerm)
		}
		b, err := restoreBudget(ls.Budget)
		if err != nil {
			return nil, fmt.Errorf("term link %s: %w", ls.Key, err)
		}
		c.termLinks.PutIn(entity.RestoreTermLink(ls.Target, ls.Type, slices.Clone(ls.Index), b))
	}
	return c, nil
}

// restorer rebuilds each task of a snapshot once, so that links and
// queues referring to the same index share one task.
type restorer struct {
	snap  Snapshot
	tasks []*entity.Task
}

func (r *restorer) task(id int) (*entity.Task, error) {
	if id < 0 || id >= len(r.snap.Tasks) {
		return nil, fmt.Errorf("task index %d out of range", id)
	}
	if t := r.tasks[id]; t != nil {
		return t, nil
	}
	ts := r.snap.Tasks[id]
	s, err := restoreSentence(ts.Sentence)
	if err != nil {
		return nil, err
	}
	b, err := restoreBudget(ts.Budget)
	if err != nil {
		return nil, err
	}
	parentBelief, err := restoreOptional(ts.ParentBelief)
	if err != nil {
		return nil, fmt.Errorf("parent belief: %w", err)
	}
	solution, err := restoreOptional(ts.BestSolution)
	if err != nil {
		return nil, fmt.Errorf("best solution: %w", err)
	}
	var parent *entity.Task
	if ts.Parent != nil {
		ps, err := restoreSentence(*ts.Parent)
		if err != nil {
			return nil, fmt.Errorf("parent: %w", err)
		}
		parent = entity.NewTask(ps, entity.NewBudget(0, 0, 0), nil, nil)
	}
	t := entity.NewActivatedTask(s, b, parent, parentBelief, solution)
	r.tasks[id] = t
	return t, nil
}

func (r *restorer) taskList(ids []int) ([]*entity.Task, error) {
	var out []*entity.Task
	for _, id := range ids {
		t, err := r.task(id)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func restoreBudget(b BudgetState) (*entity.Budget, error) {
	for _, v := range []float64{b.Priority, b.Durability, b.Quality} {
		if v < 0 || v > 1 || v != v {
			return nil, fmt.Errorf("budget %v out of range", b)
		}
	}
	return entity.NewBudget(b.Priority, b.Durability, b.Quality), nil
}

func restoreSentence(st SentenceState) (*entity.Sentence, error) {
	if st.Content == nil {
		return nil, language.ErrInvalidTerm
	}
	if _, ok := entity.ParsePunctuation(st.Punctuation.String()); !ok {
		return nil, fmt.Errorf("unknown punctuation %q", st.Punctuation.String())
	}
	var truth *entity.Truth
	if st.Punctuation.HasTruth() {
		if st.Analytic {
			truth = entity.NewAnalyticTruth(st.Frequency, st.Confidence)
		} else {
			truth = entity.NewTruth(st.Frequency, st.Confidence)
		}
	}
	stamp := entity.RestoreStamp(st.Base, st.Creation, st.Occurrence)
	return entity.NewSentence(st.Content, st.Punctuation, truth, stamp), nil
}

func restoreOptional(st *SentenceState) (*entity.Sentence, error) {
	if st == nil {
		return nil, nil
	}
	return restoreSentence(*st)
}

func restoreSentences(states []SentenceState) ([]*entity.Sentence, error) {
	var out []*entity.Sentence
	for _, st := range states {
		s, err := restoreSentence(st)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}
