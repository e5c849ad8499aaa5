package config

import "fmt"

// ReasonerConfig holds the runtime-adjustable reasoning parameters.
type ReasonerConfig struct {
	// Percentage of derived tasks reported as output (0..100)
	NoiseLevel int `yaml:"noise_level" json:"noise_level"`
	// Cycles per duration
	Duration int `yaml:"duration" json:"duration"`

	// Forgetting rates per bag, in durations
	ConceptForgetDurations float64 `yaml:"concept_forget_durations" json:"concept_forget_durations"`
	BeliefForgetDurations  float64 `yaml:"belief_forget_durations" json:"belief_forget_durations"`
	TaskForgetDurations    float64 `yaml:"task_forget_durations" json:"task_forget_durations"`
	NewTaskForgetDurations float64 `yaml:"new_task_forget_durations" json:"new_task_forget_durations"`

	// Minimum desire expectation for executing an operation
	DecisionThreshold float64 `yaml:"decision_threshold" json:"decision_threshold"`

	// Per-cycle work bounds
	CycleInputTasks    int `yaml:"cycle_input_tasks" json:"cycle_input_tasks"`
	CycleMemory        int `yaml:"cycle_memory" json:"cycle_memory"`
	CycleConceptsFired int `yaml:"cycle_concepts_fired" json:"cycle_concepts_fired"`

	// Percent chance of trying contraposition on an implication judgment
	ContrapositionPriority float64 `yaml:"contraposition_priority" json:"contraposition_priority"`

	TermLinkMaxMatched   int `yaml:"term_link_max_matched" json:"term_link_max_matched"`
	TermLinkMaxReasoned  int `yaml:"term_link_max_reasoned" json:"term_link_max_reasoned"`
	TermLinkRecordLength int `yaml:"term_link_record_length" json:"term_link_record_length"`

	ConceptBeliefsMax   int `yaml:"concept_beliefs_max" json:"concept_beliefs_max"`
	ConceptQuestionsMax int `yaml:"concept_questions_max" json:"concept_questions_max"`
	ConceptGoalsMax     int `yaml:"concept_goals_max" json:"concept_goals_max"`

	// Concepts fired in parallel per cycle; 1 keeps cycles deterministic
	Threads int `yaml:"threads" json:"threads"`
	// Seed for every random source of the reasoner
	Seed uint64 `yaml:"seed" json:"seed"`

	// BagKind selects "discrete" level bags or "curve" bags
	BagKind string `yaml:"bag_kind" json:"bag_kind"`
	// Curve is "cubic" or "quadratic" for curve bags
	Curve string `yaml:"curve" json:"curve"`
	// RandomSelection draws curve positions at random instead of scanning
	RandomSelection bool `yaml:"random_selection" json:"random_selection"`
}

// DefaultReasonerConfig returns the standard parameter set.
func DefaultReasonerConfig() ReasonerConfig {
	return ReasonerConfig{
		NoiseLevel:             100,
		Duration:               5,
		ConceptForgetDurations: 2,
		BeliefForgetDurations:  10,
		TaskForgetDurations:    4,
		NewTaskForgetDurations: 2,
		DecisionThreshold:      0.30,
		CycleInputTasks:        1,
		CycleMemory:            1,
		CycleConceptsFired:     1,
		ContrapositionPriority: 30,
		TermLinkMaxMatched:     10,
		TermLinkMaxReasoned:    3,
		TermLinkRecordLength:   10,
		ConceptBeliefsMax:      7,
		ConceptQuestionsMax:    5,
		ConceptGoalsMax:        7,
		Threads:                1,
		Seed:                   1,
		BagKind:                "discrete",
		Curve:                  "cubic",
		RandomSelection:        true,
	}
}

// Validate checks ranges.
func (r ReasonerConfig) Validate() error {
	if r.NoiseLevel < 0 || r.NoiseLevel > 100 {
		return fmt.Errorf("noise_level must be in [0,100], got %d", r.NoiseLevel)
	}
	if r.Duration < 1 {
		return fmt.Errorf("duration must be >= 1")
	}
	for name, v := range map[string]float64{
		"concept_forget_durations":  r.ConceptForgetDurations,
		"belief_forget_durations":   r.BeliefForgetDurations,
		"task_forget_durations":     r.TaskForgetDurations,
		"new_task_forget_durations": r.NewTaskForgetDurations,
	} {
		if v <= 0 {
			return fmt.Errorf("%s must be > 0", name)
		}
	}
	if r.DecisionThreshold < 0 || r.DecisionThreshold > 1 {
		return fmt.Errorf("decision_threshold must be in [0,1]")
	}
	if r.ContrapositionPriority < 0 || r.ContrapositionPriority > 100 {
		return fmt.Errorf("contraposition_priority must be in [0,100]")
	}
	for name, v := range map[string]int{
		"cycle_input_tasks":       r.CycleInputTasks,
		"cycle_memory":            r.CycleMemory,
		"cycle_concepts_fired":    r.CycleConceptsFired,
		"term_link_max_matched":   r.TermLinkMaxMatched,
		"term_link_max_reasoned":  r.TermLinkMaxReasoned,
		"term_link_record_length": r.TermLinkRecordLength,
		"concept_beliefs_max":     r.ConceptBeliefsMax,
		"concept_questions_max":   r.ConceptQuestionsMax,
		"concept_goals_max":       r.ConceptGoalsMax,
		"threads":                 r.Threads,
	} {
		if v < 1 {
			return fmt.Errorf("%s must be >= 1", name)
		}
	}
	switch r.BagKind {
	case "discrete", "curve":
	default:
		return fmt.Errorf("invalid bag_kind: %s (valid: discrete, curve)", r.BagKind)
	}
	switch r.Curve {
	case "cubic", "quadratic":
	default:
		return fmt.Errorf("invalid curve: %s (valid: cubic, quadratic)", r.Curve)
	}
	return nil
}
