package core

import (
	"narsgo/internal/entity"
	"narsgo/internal/events"
	"narsgo/internal/inference"
	"narsgo/internal/language"
	"narsgo/internal/logging"
)

// Context carries the premises of one processing step: the concept being
// worked on, the current task and, while firing, the task link, term link
// and belief. Derivations are buffered in the context and handed to
// Memory once the step is over, so concepts firing in parallel never
// share a context.
type Context struct {
	mem *Memory
	now int64

	concept    *Concept
	task       *entity.Task
	taskLink   *entity.TaskLink
	belief     *entity.Sentence
	beliefLink *entity.TermLink
	newStamp   *entity.Stamp

	derived []*entity.Task
}

func newContext(m *Memory, now int64) *Context {
	return &Context{mem: m, now: now}
}

// Derived returns the tasks produced so far.
func (c *Context) Derived() []*entity.Task { return c.derived }

// Now is the memory time the context works at.
func (c *Context) Now() int64 { return c.now }

// Task is the task under processing.
func (c *Context) Task() *entity.Task { return c.task }

func (c *Context) emit(e events.Event) {
	c.mem.emit(e)
}

// validContent rejects absent terms and bare variables, neither of which
// can be the content of a sentence.
func validContent(t *language.Term) *language.Term {
	if t == nil || t.IsVariable() {
		return nil
	}
	return language.RenameVariables(t)
}

// doublePremiseTask derives a task from the current task and belief. The
// evidential base is the merged stamp computed when the belief was
// selected; without one the derivation would reuse evidence and is
// dropped.
func (c *Context) doublePremiseTask(content *language.Term, truth *entity.Truth, budget *entity.Budget) {
	if budget == nil || !budget.AboveThreshold() || c.newStamp == nil {
		return
	}
	if content = validContent(content); content == nil {
		return
	}
	punct := c.task.Sentence().Punctuation()
	if punct.HasTruth() && truth == nil {
		return
	}
	s := entity.NewSentence(content, punct, truth, c.newStamp)
	c.derivedTask(entity.NewTask(s, budget, c.task, c.belief))
}

// singlePremiseTask derives a task from the current task alone, with its
// punctuation.
func (c *Context) singlePremiseTask(content *language.Term, truth *entity.Truth, budget *entity.Budget) {
	c.singlePremiseTaskAs(content, c.task.Sentence().Punctuation(), truth, budget)
}

func (c *Context) singlePremiseTaskAs(content *language.Term, punct entity.Punctuation, truth *entity.Truth, budget *entity.Budget) {
	if budget == nil || !budget.AboveThreshold() {
		return
	}
	if content = validContent(content); content == nil {
		return
	}
	if parent := c.task.ParentTask(); parent != nil && content.Equal(parent.Content()) {
		return
	}
	if punct.HasTruth() && truth == nil {
		return
	}
	ts := c.task.Sentence()
	var stamp *entity.Stamp
	if ts.IsJudgment() || c.belief == nil {
		stamp = entity.DeriveStamp(ts.Stamp(), c.now)
	} else {
		// answers to questions keep the evidence of the belief they came from
		stamp = entity.DeriveStamp(c.belief.Stamp(), c.now)
	}
	s := entity.NewSentence(content, punct, truth, stamp)
	c.derivedTask(entity.NewTask(s, budget, c.task, nil))
}

// projectedTask re-inputs a belief projected to another occurrence time.
func (c *Context) projectedTask(s *entity.Sentence, budget *entity.Budget) {
	if !budget.AboveThreshold() {
		return
	}
	c.derivedTask(entity.NewTask(s, budget.Clone(), c.task, nil))
}

// activatedTask re-activates a belief that solved the current problem.
func (c *Context) activatedTask(budget *entity.Budget, solution, candidateBelief *entity.Sentence) {
	s := entity.NewSentence(solution.Content(), solution.Punctuation(), solution.Truth(), solution.Stamp())
	c.derived = append(c.derived, entity.NewActivatedTask(s, budget, c.task, candidateBelief, solution))
}

func (c *Context) derivedTask(t *entity.Task) {
	if !t.AboveThreshold() {
		return
	}
	if truth := t.Sentence().Truth(); truth != nil && truth.Confidence() == 0 {
		return
	}
	logging.InferenceDebug("derived %s", t)
	c.emit(events.Event{Type: events.TaskDerived, Task: t, Related: c.task})
	noise := c.mem.param.NoiseLevel.Load()
	if t.Budget().Summary() >= float64(100-noise)/100 {
		c.emit(events.Event{Type: events.Output, Task: t})
	}
	c.derived = append(c.derived, t)
}

// budgetInference is the common core of the budget functions: the budget
// follows the current task link, discounted by complexity, and the belief
// link is reinforced by the quality of what it helped derive.
func (c *Context) budgetInference(qual float64, complexity int) *entity.Budget {
	var source *entity.Budget
	if c.taskLink != nil {
		source = c.taskLink.Budget()
	} else {
		source = c.task.Budget()
	}
	p, d, _ := source.Values()
	cx := float64(max(complexity, 1))
	d /= cx
	quality := qual / cx
	if c.beliefLink != nil {
		link := c.beliefLink.Budget()
		bp, bd, _ := link.Values()
		p = entity.Or(p, bp)
		d = entity.And(d, bd)
		activation := c.mem.conceptActivation(c.beliefLink.Target())
		link.IncPriority(entity.Or(quality, activation))
		link.IncDurability(quality)
	}
	return entity.NewClampedBudget(p, d, quality)
}

func (c *Context) forward(truth *entity.Truth) *entity.Budget {
	return c.budgetInference(inference.TruthToQuality(truth), 1)
}

func (c *Context) backward(truth *entity.Truth) *entity.Budget {
	return c.budgetInference(inference.TruthToQuality(truth), 1)
}

func (c *Context) backwardWeak(truth *entity.Truth) *entity.Budget {
	return c.budgetInference(entity.W2C(1)*inference.TruthToQuality(truth), 1)
}

func (c *Context) compoundForward(truth *entity.Truth, content *language.Term) *entity.Budget {
	if content == nil {
		return nil
	}
	return c.budgetInference(inference.TruthToQuality(truth), content.Complexity())
}

func (c *Context) compoundBackward(content *language.Term) *entity.Budget {
	if content == nil {
		return nil
	}
	return c.budgetInference(1, content.Complexity())
}

func (c *Context) compoundBackwardWeak(content *language.Term) *entity.Budget {
	if content == nil {
		return nil
	}
	return c.budgetInference(entity.W2C(1), content.Complexity())
}

// reviseBudget is ReviseBudget plus, when fired through links, feedback
// that weakens the links by how little the revision changed.
func (c *Context) reviseBudget(tTruth, bTruth, truth *entity.Truth, feedbackToLinks bool) *entity.Budget {
	if feedbackToLinks && c.taskLink != nil {
		difT := truth.ExpDifAbs(tTruth)
		c.taskLink.Budget().DecPriority(1 - difT)
		c.taskLink.Budget().DecDurability(1 - difT)
		if c.beliefLink != nil {
			difB := truth.ExpDifAbs(bTruth)
			c.beliefLink.Budget().DecPriority(1 - difB)
			c.beliefLink.Budget().DecDurability(1 - difB)
		}
	}
	return inference.ReviseBudget(tTruth, bTruth, truth, c.task)
}
