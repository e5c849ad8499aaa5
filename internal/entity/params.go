// Package entity holds the budgeted value types that flow through memory:
// truth values, budgets, stamps, sentences, tasks and links.
package entity

// Fixed system parameters.
const (
	// Horizon is the evidential horizon K used by w2c and c2w.
	Horizon = 1.0
	// TruthEpsilon is the resolution used to compare truth values.
	TruthEpsilon = 0.01
	// BudgetThreshold is the minimum summary for an item to stay active.
	BudgetThreshold = 0.01
	// BagThreshold is the relative quality threshold used when forgetting.
	BagThreshold = 0.1
	// Reliance is the confidence of analytic structural rules.
	Reliance = 0.9
	// MaxEvidentialBase bounds the length of a stamp's evidential base.
	MaxEvidentialBase = 20
	// MaxConfidence is the highest representable confidence.
	MaxConfidence = 0.9999

	DefaultJudgmentConfidence  = 0.9
	DefaultJudgmentPriority    = 0.8
	DefaultJudgmentDurability  = 0.5
	DefaultQuestionPriority    = 0.9
	DefaultQuestionDurability  = 0.9
	DefaultGoalConfidence      = 0.9
	DefaultGoalPriority        = 0.9
	DefaultGoalDurability      = 0.9
	DefaultCreationExpectation = 0.66
	DiscountRate               = 0.5
)
