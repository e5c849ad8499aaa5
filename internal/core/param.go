package core

import (
	"math"
	"sync/atomic"

	"narsgo/internal/config"
	"narsgo/internal/storage"
)

// AtomicFloat is a float64 that can be read and written concurrently.
type AtomicFloat struct {
	bits atomic.Uint64
}

// NewAtomicFloat returns an AtomicFloat holding v.
func NewAtomicFloat(v float64) *AtomicFloat {
	f := &AtomicFloat{}
	f.Store(v)
	return f
}

func (f *AtomicFloat) Load() float64   { return math.Float64frombits(f.bits.Load()) }
func (f *AtomicFloat) Store(v float64) { f.bits.Store(math.Float64bits(v)) }

// Param holds the reasoning parameters. Every field may be changed while
// the reasoner runs; readers always see a whole value.
type Param struct {
	NoiseLevel atomic.Int64
	Duration   atomic.Int64

	ConceptForgetDurations AtomicFloat
	BeliefForgetDurations  AtomicFloat
	TaskForgetDurations    AtomicFloat
	NewTaskForgetDurations AtomicFloat

	DecisionThreshold AtomicFloat

	CycleInputTasks    atomic.Int64
	CycleMemory        atomic.Int64
	CycleConceptsFired atomic.Int64

	ContrapositionPriority AtomicFloat

	TermLinkMaxMatched   atomic.Int64
	TermLinkMaxReasoned  atomic.Int64
	TermLinkRecordLength atomic.Int64

	ConceptBeliefsMax   atomic.Int64
	ConceptQuestionsMax atomic.Int64
	ConceptGoalsMax     atomic.Int64

	Threads atomic.Int64
}

// NewParam returns parameters initialized from rc.
func NewParam(rc config.ReasonerConfig) *Param {
	p := &Param{}
	p.Apply(rc)
	return p
}

// Apply copies every knob of rc into p.
func (p *Param) Apply(rc config.ReasonerConfig) {
	p.NoiseLevel.Store(int64(rc.NoiseLevel))
	p.Duration.Store(int64(rc.Duration))
	p.ConceptForgetDurations.Store(rc.ConceptForgetDurations)
	p.BeliefForgetDurations.Store(rc.BeliefForgetDurations)
	p.TaskForgetDurations.Store(rc.TaskForgetDurations)
	p.NewTaskForgetDurations.Store(rc.NewTaskForgetDurations)
	p.DecisionThreshold.Store(rc.DecisionThreshold)
	p.CycleInputTasks.Store(int64(rc.CycleInputTasks))
	p.CycleMemory.Store(int64(rc.CycleMemory))
	p.CycleConceptsFired.Store(int64(rc.CycleConceptsFired))
	p.ContrapositionPriority.Store(rc.ContrapositionPriority)
	p.TermLinkMaxMatched.Store(int64(rc.TermLinkMaxMatched))
	p.TermLinkMaxReasoned.Store(int64(rc.TermLinkMaxReasoned))
	p.TermLinkRecordLength.Store(int64(rc.TermLinkRecordLength))
	p.ConceptBeliefsMax.Store(int64(rc.ConceptBeliefsMax))
	p.ConceptQuestionsMax.Store(int64(rc.ConceptQuestionsMax))
	p.ConceptGoalsMax.Store(int64(rc.ConceptGoalsMax))
	p.Threads.Store(int64(rc.Threads))
}

// ForgetCycles converts a rate in durations into a bag ForgetFunc that
// follows later changes to either value.
func (p *Param) ForgetCycles(durations *AtomicFloat) storage.ForgetFunc {
	return func() float64 {
		return durations.Load() * float64(p.Duration.Load())
	}
}
