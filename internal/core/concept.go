package core

import (
	"slices"
	"sync"
	"sync/atomic"

	"narsgo/internal/entity"
	"narsgo/internal/events"
	"narsgo/internal/inference"
	"narsgo/internal/language"
	"narsgo/internal/logging"
	"narsgo/internal/storage"
)

// Concept is the memory node of one term. It owns the task links and term
// links that connect it to the rest of memory, plus bounded tables of
// beliefs, desires, questions and quests about the term.
type Concept struct {
	term   *language.Term
	budget *entity.Budget
	mem    *Memory

	taskLinks storage.Bag[*entity.TaskLink]
	termLinks storage.Bag[*entity.TermLink]
	// templates are built once; they tell how this term's components link back.
	templates []*entity.TermLink
	// ended is set once the concept leaves memory; it takes no new links.
	ended atomic.Bool

	mu        sync.RWMutex
	beliefs   []*entity.Sentence
	desires   []*entity.Sentence
	questions []*entity.Task
	quests    []*entity.Task
}

func (c *Concept) Key() string            { return c.term.Name() }
func (c *Concept) Budget() *entity.Budget { return c.budget }
func (c *Concept) Term() *language.Term   { return c.term }

// Beliefs returns the belief table, highest rank first.
func (c *Concept) Beliefs() []*entity.Sentence {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.beliefs)
}

// Desires returns the desire table, highest rank first.
func (c *Concept) Desires() []*entity.Sentence {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.desires)
}

// Questions returns the pending questions, oldest first.
func (c *Concept) Questions() []*entity.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.questions)
}

// Quests returns the pending quests, oldest first.
func (c *Concept) Quests() []*entity.Task {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.quests)
}

func (c *Concept) TaskLinks() []*entity.TaskLink { return c.taskLinks.Items() }
func (c *Concept) TermLinks() []*entity.TermLink { return c.termLinks.Items() }

// Quality is high for simple concepts and for concepts with strong term
// links.
func (c *Concept) Quality() float64 {
	return entity.Or(c.termLinks.AveragePriority(), 1/float64(c.term.Complexity()))
}

// Desire returns the truth of the strongest desire, or nil.
func (c *Concept) Desire() *entity.Truth {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.desires) == 0 {
		return nil
	}
	return c.desires[0].Truth()
}

// directProcess handles a task whose content is this concept's term. It
// reports false for tasks it refuses.
func (c *Concept) directProcess(ctx *Context, task *entity.Task) bool {
	switch task.Sentence().Punctuation() {
	case entity.Judgment:
		c.processJudgment(ctx, task)
	case entity.Goal:
		if !c.processGoal(ctx, task) {
			return false
		}
	case entity.Question, entity.Quest:
		c.processQuestion(ctx, task)
	default:
		return false
	}
	if task.AboveThreshold() {
		c.linkToTask(ctx, task)
	}
	return true
}

func (c *Concept) processJudgment(ctx *Context, task *entity.Task) {
	judg := task.Sentence()
	old := selectCandidate(judg, c.Beliefs(), ctx.now)
	if old != nil {
		if judg.Stamp().Equal(old.Stamp()) {
			if parent := task.ParentTask(); parent != nil && parent.Sentence().IsJudgment() {
				task.Budget().DecPriority(0)
			}
			return
		}
		if revisible(judg, old) {
			c.reviseWith(ctx, task, old)
		}
	}
	if !task.AboveThreshold() {
		return
	}
	for _, q := range c.Questions() {
		trySolution(ctx, judg, q)
	}
	c.mu.Lock()
	var removed *entity.Sentence
	var added bool
	c.beliefs, removed, added = addToTable(c.beliefs, judg, int(c.mem.param.ConceptBeliefsMax.Load()))
	c.mu.Unlock()
	if removed != nil {
		c.emit(events.Event{Type: events.ConceptBeliefRemove, Sentence: removed, Task: task})
	}
	if added {
		c.emit(events.Event{Type: events.ConceptBeliefAdd, Sentence: judg, Task: task})
	}
}

// reviseWith revises the task against old, projected to the task's time.
func (c *Concept) reviseWith(ctx *Context, task *entity.Task, old *entity.Sentence) {
	s := task.Sentence()
	ctx.newStamp = entity.MergeStamps(s.Stamp(), old.Stamp(), ctx.now)
	if ctx.newStamp == nil {
		return
	}
	projected := old.Projection(s.OccurrenceTime(), ctx.now)
	if projected.OccurrenceTime() != old.OccurrenceTime() {
		ctx.projectedTask(projected, task.Budget())
	}
	ctx.belief = projected
	revision(ctx, s, projected, false)
}

func (c *Concept) processGoal(ctx *Context, task *entity.Task) bool {
	goal := task.Sentence()
	old := selectCandidate(goal, c.Desires(), ctx.now)
	if old != nil {
		if goal.Stamp().Equal(old.Stamp()) {
			return false
		}
		if revisible(goal, old) {
			c.reviseWith(ctx, task, old)
		}
	}
	if !task.AboveThreshold() {
		return true
	}
	if belief := selectCandidate(goal, c.Beliefs(), ctx.now); belief != nil {
		trySolution(ctx, belief, task)
	}
	if !task.AboveThreshold() {
		return true
	}
	c.mu.Lock()
	var removed *entity.Sentence
	var added bool
	c.desires, removed, added = addToTable(c.desires, goal, int(c.mem.param.ConceptGoalsMax.Load()))
	c.mu.Unlock()
	if removed != nil {
		c.emit(events.Event{Type: events.ConceptGoalRemove, Sentence: removed, Task: task})
	}
	if added {
		c.emit(events.Event{Type: events.ConceptGoalAdd, Sentence: goal, Task: task})
	}
	if c.term.IsOperation() {
		c.mem.executive.DecisionMaking(ctx, task, c)
	} else {
		c.mem.executive.DecisionPlanning(ctx, task, c)
	}
	return true
}

func (c *Concept) processQuestion(ctx *Context, task *entity.Task) {
	ques := task.Sentence()
	capacity := int(c.mem.param.ConceptQuestionsMax.Load())

	c.mu.Lock()
	list := &c.questions
	if ques.IsQuest() {
		list = &c.quests
	}
	var existing, removed *entity.Task
	for _, t := range *list {
		if t.Sentence().EqualContent(ques) {
			existing = t
			break
		}
	}
	if existing == nil {
		if len(*list)+1 > capacity {
			removed = (*list)[0]
			*list = slices.Delete(*list, 0, 1)
		}
		*list = append(*list, task)
	} else {
		task, ques = existing, existing.Sentence()
	}
	c.mu.Unlock()

	if removed != nil {
		c.emit(events.Event{Type: events.ConceptQuestionRemove, Task: removed})
	}
	if existing == nil {
		c.emit(events.Event{Type: events.ConceptQuestionAdd, Task: task})
	}

	var candidates []*entity.Sentence
	if ques.IsQuestion() {
		candidates = c.Beliefs()
	} else {
		candidates = c.Desires()
	}
	if answer := selectCandidate(ques, candidates, ctx.now); answer != nil {
		trySolution(ctx, answer, task)
	}
}

// selectCandidate returns the table entry that best answers query.
func selectCandidate(query *entity.Sentence, table []*entity.Sentence, now int64) *entity.Sentence {
	var candidate *entity.Sentence
	best := 0.0
	for _, s := range table {
		if q := inference.SolutionQuality(query, s, now); q > best {
			best, candidate = q, s
		}
	}
	return candidate
}

// addToTable inserts s into a rank-sorted table of the given capacity. It
// returns the new table, the entry pushed out if any, and whether s was
// stored. An entry equivalent to s makes the insertion a no-op.
func addToTable(table []*entity.Sentence, s *entity.Sentence, capacity int) ([]*entity.Sentence, *entity.Sentence, bool) {
	rank := inference.RankBelief(s)
	i := 0
	for ; i < len(table); i++ {
		if rank >= inference.RankBelief(table[i]) {
			if s.EquivalentTo(table[i]) {
				return table, nil, false
			}
			break
		}
	}
	if i == len(table) {
		if len(table) >= capacity {
			return table, nil, false
		}
		return append(table, s), nil, true
	}
	table = slices.Insert(table, i, s)
	if len(table) > capacity {
		removed := table[len(table)-1]
		return table[:len(table)-1], removed, true
	}
	return table, nil, true
}

// linkToTask links the task to this concept and, through the templates,
// to the concepts of its components.
func (c *Concept) linkToTask(ctx *Context, task *entity.Task) {
	budget := task.Budget()
	recordLength := int(c.mem.param.TermLinkRecordLength.Load())
	c.insertTaskLink(entity.NewTaskLink(task, nil, budget.Clone(), recordLength))
	if len(c.templates) == 0 {
		return
	}
	sub := inference.DistributeAmongLinks(budget, len(c.templates))
	if !sub.AboveThreshold() {
		return
	}
	for _, tmpl := range c.templates {
		component := c.mem.Conceptualize(sub, tmpl.Target())
		if component == nil {
			continue
		}
		component.insertTaskLink(entity.NewTaskLink(task, tmpl, sub.Clone(), recordLength))
	}
	c.buildTermLinks(budget)
}

func (c *Concept) insertTaskLink(link *entity.TaskLink) {
	if c.ended.Load() {
		return
	}
	c.taskLinks.PutIn(link)
	c.mem.conceptActivate(c, link.Budget())
}

func (c *Concept) insertTermLink(link *entity.TermLink) {
	if c.ended.Load() {
		return
	}
	c.termLinks.PutIn(link)
}

// buildTermLinks links this concept and the concepts of its components in
// both directions, recursing into compound components while the
// distributed budget stays above threshold.
func (c *Concept) buildTermLinks(budget *entity.Budget) {
	if len(c.templates) == 0 {
		return
	}
	sub := inference.DistributeAmongLinks(budget, len(c.templates))
	if !sub.AboveThreshold() {
		return
	}
	for _, tmpl := range c.templates {
		if tmpl.Type() == entity.LinkTransform {
			continue
		}
		target := tmpl.Target()
		other := c.mem.Conceptualize(sub, target)
		if other == nil {
			continue
		}
		c.insertTermLink(entity.NewTermLink(target, tmpl, sub.Clone()))
		other.insertTermLink(entity.NewTermLink(c.term, tmpl, sub.Clone()))
		if target.IsCompound() {
			other.buildTermLinks(sub)
		}
	}
}

// getBelief selects a belief to pair with task. The merged stamp is left
// in ctx for the derivations that follow.
func (c *Concept) getBelief(ctx *Context, task *entity.Task) *entity.Sentence {
	ts := task.Sentence()
	for _, b := range c.Beliefs() {
		stamp := entity.MergeStamps(ts.Stamp(), b.Stamp(), ctx.now)
		if stamp == nil {
			continue
		}
		ctx.newStamp = stamp
		c.emit(events.Event{Type: events.BeliefSelect, Sentence: b, Task: task})
		projected := b.Projection(ts.OccurrenceTime(), ctx.now)
		if projected.OccurrenceTime() != b.OccurrenceTime() {
			ctx.projectedTask(projected, task.Budget())
		}
		return projected
	}
	return nil
}

// fire takes one task link and reasons with it against up to
// TermLinkMaxReasoned novel term links.
func (c *Concept) fire(ctx *Context) {
	link, ok := c.taskLinks.TakeOut()
	if !ok {
		return
	}
	if link.Budget().AboveThreshold() {
		ctx.concept = c
		ctx.taskLink = link
		ctx.task = link.Task()
		c.reason(ctx, link)
	}
	c.taskLinks.PutBack(link)
}

func (c *Concept) reason(ctx *Context, taskLink *entity.TaskLink) {
	if taskLink.Type() == entity.LinkTransform {
		ctx.belief, ctx.beliefLink = nil, nil
		transformTask(ctx, taskLink)
		return
	}
	for n := c.mem.param.TermLinkMaxReasoned.Load(); n > 0; n-- {
		termLink := c.selectTermLink(taskLink, ctx.now)
		if termLink == nil {
			return
		}
		ctx.beliefLink = termLink
		ctx.belief, ctx.newStamp = nil, nil
		reason(ctx, taskLink, termLink)
		c.termLinks.PutBack(termLink)
	}
}

// selectTermLink takes out a term link that is novel for taskLink,
// putting back the ones that are not.
func (c *Concept) selectTermLink(taskLink *entity.TaskLink, now int64) *entity.TermLink {
	toMatch := min(int(c.mem.param.TermLinkMaxMatched.Load()), c.termLinks.Size())
	for i := 0; i < toMatch; i++ {
		termLink, ok := c.termLinks.TakeOut()
		if !ok {
			return nil
		}
		if taskLink.Novel(termLink, now) {
			return termLink
		}
		c.termLinks.PutBack(termLink)
	}
	return nil
}

// end releases everything the concept holds once it leaves memory.
func (c *Concept) end() {
	c.ended.Store(true)
	c.mu.Lock()
	c.beliefs, c.desires, c.questions, c.quests = nil, nil, nil, nil
	c.mu.Unlock()
	c.taskLinks.Clear()
	c.termLinks.Clear()
	logging.ConceptDebug("concept %s ended", c.term)
}

func (c *Concept) emit(e events.Event) {
	e.Term = c.term
	c.mem.emit(e)
}

func (c *Concept) String() string {
	return c.budget.String() + " " + c.term.Name()
}
