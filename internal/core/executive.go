package core

import (
	"context"
	"time"

	"narsgo/internal/entity"
	"narsgo/internal/events"
	"narsgo/internal/language"
	"narsgo/internal/logging"
)

// OperatorExecutor runs the operator named op with the words of the
// operation's argument product.
type OperatorExecutor interface {
	Execute(ctx context.Context, op string, args []string) (string, error)
}

// Executive decides what to do with goals once a concept has accepted
// them.
type Executive interface {
	// DecisionMaking is called for goals whose content is an operation.
	DecisionMaking(ctx *Context, task *entity.Task, c *Concept)
	// DecisionPlanning is called for every other goal.
	DecisionPlanning(ctx *Context, task *entity.Task, c *Concept)
}

// ThresholdExecutive executes an operation as soon as the desire of its
// concept is expected enough. It does no planning.
type ThresholdExecutive struct {
	// Timeout bounds a single operator call.
	Timeout time.Duration
}

// NewThresholdExecutive returns an executive with a two second operator
// timeout.
func NewThresholdExecutive() *ThresholdExecutive {
	return &ThresholdExecutive{Timeout: 2 * time.Second}
}

func (e *ThresholdExecutive) DecisionMaking(ctx *Context, task *entity.Task, c *Concept) {
	desire := c.Desire()
	if desire == nil || desire.Expectation() < ctx.mem.param.DecisionThreshold.Load() {
		return
	}
	ops := ctx.mem.operators
	if ops == nil {
		logging.Get(logging.CategoryOperator).Debug("no operators configured, skipping %s", c.term)
		return
	}
	name := c.term.OperationName()
	args := operationArgs(c.term)

	callCtx, cancel := context.WithTimeout(context.Background(), e.Timeout)
	defer cancel()
	result, err := ops.Execute(callCtx, name, args)
	if err != nil {
		logging.Get(logging.CategoryOperator).Warn("operator %s failed: %v", name, err)
		return
	}
	logging.Operator("executed %s %v -> %q", name, args, result)
	ctx.emit(events.Event{Type: events.Execute, Term: c.term, Task: task, Message: result})
	e.feedback(ctx, c.term)
}

// DecisionPlanning leaves non-operation goals to later derivations.
func (e *ThresholdExecutive) DecisionPlanning(ctx *Context, task *entity.Task, c *Concept) {
	logging.Get(logging.CategoryOperator).Debug("goal %s is not an operation", c.term)
}

// feedback reports the executed operation back as a present judgment.
func (e *ThresholdExecutive) feedback(ctx *Context, op *language.Term) {
	t, err := ctx.mem.NewTask(InputSpec{
		Content:     op,
		Punctuation: entity.Judgment,
		Present:     true,
	})
	if err != nil {
		return
	}
	ctx.mem.InputTask(t)
}

// operationArgs lists the names of the argument product of an operation
// term.
func operationArgs(op *language.Term) []string {
	product := op.Subject()
	args := make([]string, 0, product.Size())
	for _, a := range product.Components() {
		args = append(args, a.Name())
	}
	return args
}
