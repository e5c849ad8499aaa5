package core

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"narsgo/internal/config"
	"narsgo/internal/entity"
	"narsgo/internal/events"
	"narsgo/internal/inference"
	"narsgo/internal/language"
	"narsgo/internal/logging"
	"narsgo/internal/storage"
)

// Memory is one reasoning session: the concept bag, the task queues, the
// clock, and the parameters that drive every cycle.
type Memory struct {
	param     *Param
	bags      config.BagsConfig
	reasoner  config.ReasonerConfig
	curve     storage.Curve
	bus       *events.Bus
	executive Executive
	operators OperatorExecutor

	terms *language.Table

	// cycleMu serializes cycles and resets.
	cycleMu sync.Mutex

	// conceptMu guards the concept bag together with firing, the concepts
	// taken out of the bag for the current cycle.
	conceptMu  sync.RWMutex
	concepts   storage.Bag[*Concept]
	firing     map[string]*Concept
	novelTasks storage.Bag[*entity.Task]

	inputMu     sync.Mutex
	inputBuffer []*entity.Task

	newMu    sync.Mutex
	newTasks []*entity.Task

	clock   atomic.Int64
	serial  atomic.Int64
	bagSeed atomic.Uint64

	rngMu sync.Mutex
	rng   *rand.Rand
}

// Option configures a Memory.
type Option func(*Memory)

// WithBus publishes memory events on bus instead of a private one.
func WithBus(bus *events.Bus) Option {
	return func(m *Memory) { m.bus = bus }
}

// WithOperators routes executed operations to ops.
func WithOperators(ops OperatorExecutor) Option {
	return func(m *Memory) { m.operators = ops }
}

// WithExecutive replaces the default threshold executive.
func WithExecutive(e Executive) Option {
	return func(m *Memory) { m.executive = e }
}

// NewMemory creates an empty memory configured by cfg.
func NewMemory(cfg *config.Config, opts ...Option) (*Memory, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Reasoner.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reasoner config: %w", err)
	}
	if err := cfg.Bags.Validate(); err != nil {
		return nil, fmt.Errorf("invalid bags config: %w", err)
	}
	curve, err := storage.CurveByName(cfg.Reasoner.Curve)
	if err != nil {
		return nil, err
	}
	m := &Memory{
		param:    NewParam(cfg.Reasoner),
		bags:     cfg.Bags,
		reasoner: cfg.Reasoner,
		curve:    curve,
		terms:    language.NewTable(),
		firing:   make(map[string]*Concept),
		rng:      rand.New(rand.NewPCG(cfg.Reasoner.Seed, 0x6e617273)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.bus == nil {
		m.bus = events.NewBus()
	}
	if m.executive == nil {
		m.executive = NewThresholdExecutive()
	}
	m.initBags()
	logging.Boot("memory created: bag_kind=%s threads=%d seed=%d",
		cfg.Reasoner.BagKind, cfg.Reasoner.Threads, cfg.Reasoner.Seed)
	return m, nil
}

func (m *Memory) initBags() {
	m.concepts = newBag[*Concept](m, m.bags.ConceptLevels, m.bags.ConceptCapacity,
		m.param.ForgetCycles(&m.param.ConceptForgetDurations))
	m.novelTasks = newBag[*entity.Task](m, m.bags.ConceptLevels, m.bags.NovelTaskCapacity,
		m.param.ForgetCycles(&m.param.NewTaskForgetDurations))
}

// newBag builds a bag of the configured kind. Every curve bag draws from
// its own generator derived from the session seed.
func newBag[E entity.Item](m *Memory, levels, capacity int, forget storage.ForgetFunc) storage.Bag[E] {
	if m.reasoner.BagKind != "curve" {
		return storage.NewLevelBag[E](levels, capacity, forget)
	}
	var opt storage.CurveOption
	if m.reasoner.RandomSelection {
		opt = storage.WithRandom(rand.New(rand.NewPCG(m.reasoner.Seed, m.bagSeed.Add(1))))
	} else {
		opt = storage.WithScan(1 / float64(capacity))
	}
	return storage.NewCurveBag[E](capacity, m.curve, forget, opt)
}

func (m *Memory) Param() *Param       { return m.param }
func (m *Memory) Bus() *events.Bus    { return m.bus }
func (m *Memory) Time() int64         { return m.clock.Load() }
func (m *Memory) Executive() Executive { return m.executive }

// ApplyConfig pushes a reloaded reasoner section into the live Param.
// Bag kind, curve and seed are fixed when memory is created.
func (m *Memory) ApplyConfig(rc config.ReasonerConfig) error {
	if err := rc.Validate(); err != nil {
		return fmt.Errorf("invalid reasoner config: %w", err)
	}
	m.param.Apply(rc)
	logging.Memory("reasoner parameters updated")
	return nil
}

func (m *Memory) emit(e events.Event) {
	e.Cycle = m.clock.Load()
	m.bus.Emit(e)
}

func (m *Memory) randFloat() float64 {
	m.rngMu.Lock()
	defer m.rngMu.Unlock()
	return m.rng.Float64()
}

// InputSpec describes an input sentence. Nil Truth and Budget take the
// defaults of the punctuation.
type InputSpec struct {
	Content     *language.Term
	Punctuation entity.Punctuation
	Truth       *entity.Truth
	Budget      *entity.Budget
	// Present makes the sentence occur at the current time instead of
	// eternally.
	Present bool
}

// NewTask builds an input task with a fresh evidential serial.
func (m *Memory) NewTask(spec InputSpec) (*entity.Task, error) {
	if spec.Content == nil || spec.Content.IsVariable() {
		return nil, fmt.Errorf("failed to build input task: %w", language.ErrInvalidTerm)
	}
	truth := spec.Truth
	budget := spec.Budget
	var p, d float64
	switch spec.Punctuation {
	case entity.Judgment:
		if truth == nil {
			truth = entity.NewTruth(1, entity.DefaultJudgmentConfidence)
		}
		p, d = entity.DefaultJudgmentPriority, entity.DefaultJudgmentDurability
	case entity.Goal:
		if truth == nil {
			truth = entity.NewTruth(1, entity.DefaultGoalConfidence)
		}
		p, d = entity.DefaultGoalPriority, entity.DefaultGoalDurability
	case entity.Question, entity.Quest:
		truth = nil
		p, d = entity.DefaultQuestionPriority, entity.DefaultQuestionDurability
	default:
		return nil, fmt.Errorf("failed to build input task: unknown punctuation %q", string(spec.Punctuation))
	}
	if budget == nil {
		q := 1.0
		if truth != nil {
			q = inference.TruthToQuality(truth)
		}
		budget = entity.NewBudget(p, d, q)
	}
	now := m.clock.Load()
	occurrence := entity.Eternal
	if spec.Present {
		occurrence = now
	}
	stamp := entity.NewStamp(m.serial.Add(1), now, occurrence)
	return entity.NewTask(entity.NewSentence(spec.Content, spec.Punctuation, truth, stamp), budget, nil, nil), nil
}

// Input builds an input task and queues it.
func (m *Memory) Input(spec InputSpec) (*entity.Task, error) {
	t, err := m.NewTask(spec)
	if err != nil {
		return nil, err
	}
	m.InputTask(t)
	return t, nil
}

// InputTask queues a task for the next cycles. Safe for concurrent use,
// including while cycles run.
func (m *Memory) InputTask(t *entity.Task) {
	m.inputMu.Lock()
	m.inputBuffer = append(m.inputBuffer, t)
	m.inputMu.Unlock()
}

// PendingInput is the number of input tasks not yet taken in.
func (m *Memory) PendingInput() int {
	m.inputMu.Lock()
	defer m.inputMu.Unlock()
	return len(m.inputBuffer)
}

// Run executes n cycles, stopping early when ctx is cancelled.
func (m *Memory) Run(ctx context.Context, n int) error {
	timer := logging.StartTimer(logging.CategoryMemory, "run")
	defer timer.Stop()
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		m.Cycle()
	}
	return nil
}

// Cycle runs one working cycle: take in input, process new tasks, process
// novel tasks, then fire concepts.
func (m *Memory) Cycle() {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()

	now := m.clock.Load()
	m.emit(events.Event{Type: events.CycleStart})
	m.processInput()
	m.processNewTasks(now)
	m.processNovelTasks(now)
	m.fireConcepts(now)
	m.emit(events.Event{Type: events.CycleEnd})
	m.clock.Add(1)
}

func (m *Memory) processInput() {
	n := int(m.param.CycleInputTasks.Load())
	m.inputMu.Lock()
	k := min(n, len(m.inputBuffer))
	batch := slices.Clone(m.inputBuffer[:k])
	m.inputBuffer = slices.Delete(m.inputBuffer, 0, k)
	m.inputMu.Unlock()
	for _, t := range batch {
		m.emit(events.Event{Type: events.TaskInput, Task: t})
		m.addNewTask(t)
	}
}

func (m *Memory) addNewTask(t *entity.Task) {
	m.newMu.Lock()
	m.newTasks = append(m.newTasks, t)
	m.newMu.Unlock()
	m.emit(events.Event{Type: events.TaskAdd, Task: t})
}

// processNewTasks routes every queued task: input tasks and tasks whose
// concept exists are processed at once; other judgments wait in the novel
// task bag if they are expected enough.
func (m *Memory) processNewTasks(now int64) {
	m.newMu.Lock()
	batch := m.newTasks
	m.newTasks = nil
	m.newMu.Unlock()

	for _, t := range batch {
		if t.IsInput() || m.Concept(t.Content()) != nil {
			m.immediateProcess(t, now)
			continue
		}
		s := t.Sentence()
		if !s.IsJudgment() {
			continue
		}
		if s.Truth().Expectation() > entity.DefaultCreationExpectation {
			if overflow, ok := m.novelTasks.PutIn(t); ok {
				m.emit(events.Event{Type: events.TaskRemove, Task: overflow, Message: "novel bag overflow"})
			}
		} else {
			m.emit(events.Event{Type: events.TaskRemove, Task: t, Message: "neglected"})
		}
	}
}

func (m *Memory) processNovelTasks(now int64) {
	for i := m.param.CycleMemory.Load(); i > 0; i-- {
		t, ok := m.novelTasks.TakeOut()
		if !ok {
			return
		}
		m.immediateProcess(t, now)
	}
}

func (m *Memory) immediateProcess(t *entity.Task, now int64) {
	ctx := newContext(m, now)
	ctx.task = t
	if c := m.Conceptualize(t.Budget(), t.Content()); c != nil {
		ctx.concept = c
		c.directProcess(ctx, t)
	}
	m.collect(ctx)
}

func (m *Memory) collect(ctx *Context) {
	for _, t := range ctx.derived {
		m.addNewTask(t)
	}
}

// fireConcepts takes CycleConceptsFired concepts out of the bag, fires
// them, sequentially or on up to Threads goroutines, and puts them back.
func (m *Memory) fireConcepts(now int64) {
	n := int(m.param.CycleConceptsFired.Load())
	m.conceptMu.Lock()
	batch := make([]*Concept, 0, n)
	for i := 0; i < n; i++ {
		c, ok := m.concepts.TakeOut()
		if !ok {
			break
		}
		m.firing[c.Key()] = c
		batch = append(batch, c)
	}
	m.conceptMu.Unlock()

	contexts := make([]*Context, len(batch))
	for i := range contexts {
		contexts[i] = newContext(m, now)
	}
	if threads := int(m.param.Threads.Load()); threads > 1 && len(batch) > 1 {
		var g errgroup.Group
		g.SetLimit(threads)
		for i, c := range batch {
			g.Go(func() error {
				c.fire(contexts[i])
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, c := range batch {
			c.fire(contexts[i])
		}
	}

	var forgotten []*Concept
	m.conceptMu.Lock()
	for _, c := range batch {
		delete(m.firing, c.Key())
		if overflow, ok := m.concepts.PutBack(c); ok {
			forgotten = append(forgotten, overflow)
		}
	}
	m.conceptMu.Unlock()
	for _, c := range forgotten {
		m.forgetConcept(c)
	}
	for _, ctx := range contexts {
		m.collect(ctx)
	}
}

// Concept returns the live concept of t, or nil.
func (m *Memory) Concept(t *language.Term) *Concept {
	if t == nil {
		return nil
	}
	key := t.Name()
	m.conceptMu.RLock()
	defer m.conceptMu.RUnlock()
	if c, ok := m.firing[key]; ok {
		return c
	}
	c, _ := m.concepts.Get(key)
	return c
}

// Concepts returns every live concept.
func (m *Memory) Concepts() []*Concept {
	m.conceptMu.RLock()
	defer m.conceptMu.RUnlock()
	out := m.concepts.Items()
	for _, c := range m.firing {
		out = append(out, c)
	}
	return out
}

func (m *Memory) conceptActivation(t *language.Term) float64 {
	if c := m.Concept(t); c != nil {
		return c.budget.Priority()
	}
	return 0
}

// Conceptualize returns the concept of t, creating it if needed, and
// activates it with budget. It returns nil for variables and for a new
// concept that could not win a place in the bag.
func (m *Memory) Conceptualize(budget *entity.Budget, t *language.Term) *Concept {
	if t == nil || t.IsVariable() {
		return nil
	}
	t = m.terms.Intern(t)
	key := t.Name()

	m.conceptMu.Lock()
	if c, ok := m.firing[key]; ok {
		inference.Activate(c.budget, budget, c.Quality())
		m.conceptMu.Unlock()
		return c
	}
	c, ok := m.concepts.PickOut(key)
	created := !ok
	if created {
		c = m.newConcept(t)
	}
	inference.Activate(c.budget, budget, c.Quality())
	overflow, evicted := m.concepts.PutIn(c)
	m.conceptMu.Unlock()

	if created {
		logging.ConceptDebug("new concept %s", t)
		m.emit(events.Event{Type: events.ConceptNew, Term: t})
	}
	if evicted {
		m.forgetConcept(overflow)
		if overflow == c {
			return nil
		}
	}
	return c
}

// conceptActivate raises the budget of a live concept, re-filing it in
// the bag.
func (m *Memory) conceptActivate(c *Concept, budget *entity.Budget) {
	m.conceptMu.Lock()
	if fc, ok := m.firing[c.Key()]; ok {
		inference.Activate(fc.budget, budget, fc.Quality())
		m.conceptMu.Unlock()
		return
	}
	stored, ok := m.concepts.PickOut(c.Key())
	if !ok {
		m.conceptMu.Unlock()
		return
	}
	inference.Activate(stored.budget, budget, stored.Quality())
	overflow, evicted := m.concepts.PutIn(stored)
	m.conceptMu.Unlock()
	if evicted {
		m.forgetConcept(overflow)
	}
}

func (m *Memory) newConcept(t *language.Term) *Concept {
	return &Concept{
		term:   t,
		budget: entity.NewBudget(0.01, 0.01, 0.01),
		mem:    m,
		taskLinks: newBag[*entity.TaskLink](m, m.bags.TaskLinkLevels, m.bags.TaskLinkCapacity,
			m.param.ForgetCycles(&m.param.TaskForgetDurations)),
		termLinks: newBag[*entity.TermLink](m, m.bags.TermLinkLevels, m.bags.TermLinkCapacity,
			m.param.ForgetCycles(&m.param.BeliefForgetDurations)),
		templates: entity.PrepareComponentLinks(t),
	}
}

func (m *Memory) forgetConcept(c *Concept) {
	c.end()
	m.terms.Forget(c.Key())
	m.emit(events.Event{Type: events.ConceptForget, Term: c.term})
}

// Beliefs returns every belief of every live concept.
func (m *Memory) Beliefs() []*entity.Sentence {
	var out []*entity.Sentence
	for _, c := range m.Concepts() {
		out = append(out, c.Beliefs()...)
	}
	return out
}

// Reset empties memory, restarts the clock and reseeds the random source.
func (m *Memory) Reset() {
	m.cycleMu.Lock()
	defer m.cycleMu.Unlock()
	m.clear()
	m.emit(events.Event{Type: events.Reset})
	logging.Memory("memory reset")
}

// clear empties memory. Callers hold cycleMu.
func (m *Memory) clear() {
	m.conceptMu.Lock()
	live := m.concepts.Items()
	m.concepts.Clear()
	m.novelTasks.Clear()
	m.firing = make(map[string]*Concept)
	m.conceptMu.Unlock()
	for _, c := range live {
		c.end()
	}

	m.inputMu.Lock()
	m.inputBuffer = nil
	m.inputMu.Unlock()
	m.newMu.Lock()
	m.newTasks = nil
	m.newMu.Unlock()

	m.terms.Clear()
	m.clock.Store(0)
	m.serial.Store(0)
	m.rngMu.Lock()
	m.rng = rand.New(rand.NewPCG(m.reasoner.Seed, 0x6e617273))
	m.rngMu.Unlock()
}
