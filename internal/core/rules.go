package core

import (
	"narsgo/internal/entity"
	"narsgo/internal/language"
)

// reason dispatches a task link and a term link to the rules that apply
// to the pair of link types.
func reason(ctx *Context, tLink *entity.TaskLink, bLink *entity.TermLink) {
	task := ctx.task
	taskSentence := task.Sentence()
	taskTerm := taskSentence.Content()
	beliefTerm := bLink.Target()

	if taskTerm.Op() == language.OpImplication && taskSentence.IsJudgment() {
		contrapositionAttempts(ctx, taskTerm, taskSentence)
	}
	if language.EqualSubTermsInRespectToImageAndProduct(taskTerm, beliefTerm) {
		return
	}

	before := len(ctx.derived)
	if bc := ctx.mem.Concept(beliefTerm); bc != nil {
		ctx.belief = bc.getBelief(ctx, task)
	}
	belief := ctx.belief
	if belief != nil {
		beliefTerm = belief.Content()
		match(ctx)
		if len(ctx.derived) > before {
			return
		}
	}

	tIndex, bIndex := tLink.Index(0), bLink.Index(0)
	switch tLink.Type() {
	case entity.LinkSelf:
		switch bLink.Type() {
		case entity.LinkComponent:
			if taskTerm.IsCompound() {
				compoundAndSelf(ctx, taskTerm, beliefTerm, true, bIndex)
			}
		case entity.LinkCompound:
			if beliefTerm.IsCompound() {
				compoundAndSelf(ctx, beliefTerm, taskTerm, false, bIndex)
			}
		case entity.LinkComponentStatement:
			if belief != nil {
				detachment(ctx, taskSentence, belief, bIndex)
			}
		case entity.LinkCompoundStatement:
			if belief != nil {
				detachment(ctx, belief, taskSentence, bIndex)
			}
		case entity.LinkComponentCondition:
			if belief != nil && taskTerm.Op() == language.OpImplication {
				conditionalDedInd(ctx, taskTerm, bLink.Index(1), beliefTerm, tIndex)
			}
		case entity.LinkCompoundCondition:
			if belief != nil && taskTerm.Op() == language.OpImplication && beliefTerm.Op() == language.OpImplication {
				conditionalDedInd(ctx, beliefTerm, bLink.Index(1), taskTerm, tIndex)
			}
		}

	case entity.LinkCompound:
		switch bLink.Type() {
		case entity.LinkCompound:
			if taskTerm.IsCompound() && beliefTerm.IsCompound() {
				compoundAndCompound(ctx, taskTerm, beliefTerm)
			}
		case entity.LinkCompoundStatement:
			if taskTerm.IsCompound() && beliefTerm.IsStatement() {
				compoundAndStatement(ctx, taskTerm, tIndex, beliefTerm, bIndex)
			}
		case entity.LinkCompoundCondition:
			if belief == nil || beliefTerm.Op() != language.OpImplication {
				return
			}
			if u0, u1, ok := language.Unify(language.VarIndependent, beliefTerm.Subject(), taskTerm, beliefTerm, taskTerm); ok {
				detachmentWithVar(ctx, belief.WithContent(u0), taskSentence.WithContent(u1), bIndex)
			} else {
				conditionalDedInd(ctx, beliefTerm, bIndex, taskTerm, -1)
			}
		}

	case entity.LinkCompoundStatement:
		switch bLink.Type() {
		case entity.LinkComponent:
			if taskTerm.IsStatement() {
				componentAndStatement(ctx, ctx.concept.term, bIndex, taskTerm, tIndex)
			}
		case entity.LinkCompound:
			if beliefTerm.IsCompound() && taskTerm.IsStatement() {
				compoundAndStatement(ctx, beliefTerm, bIndex, taskTerm, tIndex)
			}
		case entity.LinkCompoundStatement:
			if belief != nil && taskTerm.IsStatement() && beliefTerm.IsStatement() {
				syllogisms(ctx, tLink, bLink, taskTerm, beliefTerm)
			}
		case entity.LinkCompoundCondition:
			if belief != nil && beliefTerm.Op() == language.OpImplication && taskTerm.IsStatement() {
				conditionalDedIndWithVar(ctx, beliefTerm, bLink.Index(1), taskTerm, tIndex)
			}
		}

	case entity.LinkCompoundCondition:
		switch bLink.Type() {
		case entity.LinkCompound:
			if belief != nil {
				detachmentWithVar(ctx, taskSentence, belief, tIndex)
			}
		case entity.LinkCompoundStatement:
			if belief != nil && taskTerm.Op() == language.OpImplication && beliefTerm.IsStatement() {
				conditionalDedIndWithVar(ctx, taskTerm, tIndex, beliefTerm, bIndex)
			}
		}
	}
}

// figure encodes the positions of the shared term in two statements: 11
// for subject and subject, 12 for subject and predicate, and so on.
func figure(i1, i2 int) int {
	return (i1+1)*10 + (i2 + 1)
}

// syllogisms handles two statements sharing a term.
func syllogisms(ctx *Context, tLink *entity.TaskLink, bLink *entity.TermLink, taskTerm, beliefTerm *language.Term) {
	ts, belief := ctx.task.Sentence(), ctx.belief
	tIndex, bIndex := tLink.Index(0), bLink.Index(0)
	switch taskTerm.Op() {
	case language.OpInheritance:
		switch beliefTerm.Op() {
		case language.OpInheritance:
			asymmetricAsymmetric(ctx, ts, belief, figure(tIndex, bIndex))
		case language.OpSimilarity:
			asymmetricSymmetric(ctx, ts, belief, figure(tIndex, bIndex))
		default:
			detachmentWithVar(ctx, belief, ts, bIndex)
		}
	case language.OpSimilarity:
		switch beliefTerm.Op() {
		case language.OpInheritance:
			asymmetricSymmetric(ctx, belief, ts, figure(bIndex, tIndex))
		case language.OpSimilarity:
			symmetricSymmetric(ctx, belief, ts, figure(bIndex, tIndex))
		}
	case language.OpImplication:
		switch beliefTerm.Op() {
		case language.OpImplication:
			asymmetricAsymmetric(ctx, ts, belief, figure(tIndex, bIndex))
		case language.OpEquivalence:
			asymmetricSymmetric(ctx, ts, belief, figure(tIndex, bIndex))
		case language.OpInheritance:
			detachmentWithVar(ctx, ts, belief, tIndex)
		}
	case language.OpEquivalence:
		switch beliefTerm.Op() {
		case language.OpImplication:
			asymmetricSymmetric(ctx, belief, ts, figure(bIndex, tIndex))
		case language.OpEquivalence:
			symmetricSymmetric(ctx, belief, ts, figure(bIndex, tIndex))
		case language.OpInheritance:
			detachmentWithVar(ctx, ts, belief, tIndex)
		}
	}
}

// asymmetricAsymmetric: two inheritances or two implications.
func asymmetricAsymmetric(ctx *Context, taskSentence, belief *entity.Sentence, fig int) {
	ts, bs := taskSentence.Content(), belief.Content()
	switch fig {
	case 11:
		u0, u1, ok := language.Unify(language.VarIndependent, ts.Subject(), bs.Subject(), ts, bs)
		if !ok || u0.Equal(u1) || !u0.IsStatement() || !u1.IsStatement() {
			return
		}
		abdIndCom(ctx, u1.Predicate(), u0.Predicate(), taskSentence, belief)
		composeCompound(ctx, u0, u1, 0)
		introVarOuter(ctx, u0, u1, 0)
	case 12:
		u0, u1, ok := language.Unify(language.VarIndependent, ts.Subject(), bs.Predicate(), ts, bs)
		if !ok || u0.Equal(u1) || !u0.IsStatement() || !u1.IsStatement() {
			return
		}
		t1, t2 := u1.Subject(), u0.Predicate()
		if language.HasSubstitute(language.VarQuery, t1, t2) {
			matchReverse(ctx)
		} else {
			dedExe(ctx, t1, t2, taskSentence, belief)
		}
	case 21:
		u0, u1, ok := language.Unify(language.VarIndependent, ts.Predicate(), bs.Subject(), ts, bs)
		if !ok || u0.Equal(u1) || !u0.IsStatement() || !u1.IsStatement() {
			return
		}
		t1, t2 := u0.Subject(), u1.Predicate()
		if language.HasSubstitute(language.VarQuery, t1, t2) {
			matchReverse(ctx)
		} else {
			dedExe(ctx, t1, t2, taskSentence, belief)
		}
	case 22:
		u0, u1, ok := language.Unify(language.VarIndependent, ts.Predicate(), bs.Predicate(), ts, bs)
		if !ok || u0.Equal(u1) || !u0.IsStatement() || !u1.IsStatement() {
			return
		}
		abdIndCom(ctx, u0.Subject(), u1.Subject(), taskSentence, belief)
		composeCompound(ctx, u0, u1, 1)
		introVarOuter(ctx, u0, u1, 1)
	}
}

// asymmetricSymmetric: an inheritance (or implication) against a
// similarity (or equivalence).
func asymmetricSymmetric(ctx *Context, asym, sym *entity.Sentence, fig int) {
	as, ss := asym.Content(), sym.Content()
	var t1, t2 *language.Term
	switch fig {
	case 11:
		u0, u1, ok := language.Unify(language.VarIndependent, as.Subject(), ss.Subject(), as, ss)
		if !ok || !u0.IsStatement() || !u1.IsStatement() {
			return
		}
		t1, t2 = u0.Predicate(), u1.Predicate()
		if language.HasSubstitute(language.VarQuery, t1, t2) {
			matchAsymSym(ctx, asym, sym)
			return
		}
		analogy(ctx, t2, t1, asym, sym)
	case 12:
		u0, u1, ok := language.Unify(language.VarIndependent, as.Subject(), ss.Predicate(), as, ss)
		if !ok || !u0.IsStatement() || !u1.IsStatement() {
			return
		}
		t1, t2 = u0.Predicate(), u1.Subject()
		if language.HasSubstitute(language.VarQuery, t1, t2) {
			matchAsymSym(ctx, asym, sym)
			return
		}
		analogy(ctx, t2, t1, asym, sym)
	case 21:
		u0, u1, ok := language.Unify(language.VarIndependent, as.Predicate(), ss.Subject(), as, ss)
		if !ok || !u0.IsStatement() || !u1.IsStatement() {
			return
		}
		t1, t2 = u0.Subject(), u1.Predicate()
		if language.HasSubstitute(language.VarQuery, t1, t2) {
			matchAsymSym(ctx, asym, sym)
			return
		}
		analogy(ctx, t1, t2, asym, sym)
	case 22:
		u0, u1, ok := language.Unify(language.VarIndependent, as.Predicate(), ss.Predicate(), as, ss)
		if !ok || !u0.IsStatement() || !u1.IsStatement() {
			return
		}
		t1, t2 = u0.Subject(), u1.Subject()
		if language.HasSubstitute(language.VarQuery, t1, t2) {
			matchAsymSym(ctx, asym, sym)
			return
		}
		analogy(ctx, t1, t2, asym, sym)
	}
}

// symmetricSymmetric: two similarities or two equivalences.
func symmetricSymmetric(ctx *Context, belief, taskSentence *entity.Sentence, fig int) {
	bs, ts := belief.Content(), taskSentence.Content()
	var ok bool
	var u0, u1 *language.Term
	switch fig {
	case 11:
		u0, u1, ok = language.Unify(language.VarIndependent, bs.Subject(), ts.Subject(), bs, ts)
		if ok && u0.IsStatement() && u1.IsStatement() {
			resemblance(ctx, u0.Predicate(), u1.Predicate(), belief, taskSentence)
		}
	case 12:
		u0, u1, ok = language.Unify(language.VarIndependent, bs.Subject(), ts.Predicate(), bs, ts)
		if ok && u0.IsStatement() && u1.IsStatement() {
			resemblance(ctx, u0.Predicate(), u1.Subject(), belief, taskSentence)
		}
	case 21:
		u0, u1, ok = language.Unify(language.VarIndependent, bs.Predicate(), ts.Subject(), bs, ts)
		if ok && u0.IsStatement() && u1.IsStatement() {
			resemblance(ctx, u0.Subject(), u1.Predicate(), belief, taskSentence)
		}
	case 22:
		u0, u1, ok = language.Unify(language.VarIndependent, bs.Predicate(), ts.Predicate(), bs, ts)
		if ok && u0.IsStatement() && u1.IsStatement() {
			resemblance(ctx, u0.Subject(), u1.Subject(), belief, taskSentence)
		}
	}
}

// detachmentWithVar unifies the independent variables of one side of an
// implication or equivalence with the other premise before detaching.
func detachmentWithVar(ctx *Context, mainSentence, subSentence *entity.Sentence, index int) {
	if mainSentence == nil || subSentence == nil || ctx.belief == nil {
		return
	}
	statement := mainSentence.Content()
	if !statement.IsStatement() || index < 0 || index > 1 {
		return
	}
	component := statement.Component(index)
	content := subSentence.Content()
	if component.Op() != language.OpInheritance && component.Op() != language.OpNegation {
		return
	}
	if component.IsConstant() {
		detachment(ctx, mainSentence, subSentence, index)
		return
	}
	u0, u1, ok := language.Unify(language.VarIndependent, component, content, statement, content)
	if !ok {
		return
	}
	detachment(ctx, mainSentence.WithContent(u0), subSentence.WithContent(u1), index)
}

// conditionalDedIndWithVar unifies a condition of a conditional with the
// other statement before conditional deduction or induction.
func conditionalDedIndWithVar(ctx *Context, conditional *language.Term, index int, statement *language.Term, side int) {
	cond := conditional.Subject()
	if cond.IsAtom() || index < 0 || index >= cond.Size() {
		return
	}
	component := cond.Component(index)
	var component2 *language.Term
	switch statement.Op() {
	case language.OpInheritance:
		component2 = statement
		side = -1
	case language.OpImplication:
		if side < 0 || side > 1 {
			return
		}
		component2 = statement.Component(side)
	}
	if component2 == nil {
		return
	}
	u0, u1, ok := language.Unify(language.VarIndependent, component, component2, conditional, statement)
	if !ok {
		u0, u1, ok = language.Unify(language.VarDependent, component, component2, conditional, statement)
	}
	if ok && u0.Op() == language.OpImplication {
		conditionalDedInd(ctx, u0, index, u1, side)
	}
}

// compoundAndSelf reasons between a compound and one of its components.
func compoundAndSelf(ctx *Context, compound, component *language.Term, compoundTask bool, index int) {
	switch compound.Op() {
	case language.OpConjunction, language.OpDisjunction:
		if ctx.belief != nil {
			decomposeStatement(ctx, compound, component, compoundTask, index)
		} else if compound.ContainsComponent(component) {
			structuralCompound(ctx, compound, component, compoundTask)
		}
	case language.OpNegation:
		if compoundTask {
			transformNegation(ctx, compound.Component(0))
		} else {
			transformNegation(ctx, compound)
		}
	}
}

// compoundAndCompound handles two compounds of the same operator where one
// contains the other.
func compoundAndCompound(ctx *Context, taskTerm, beliefTerm *language.Term) {
	if taskTerm.Op() != beliefTerm.Op() {
		return
	}
	switch {
	case taskTerm.Size() > beliefTerm.Size():
		compoundAndSelf(ctx, taskTerm, beliefTerm, true, -1)
	case taskTerm.Size() < beliefTerm.Size():
		compoundAndSelf(ctx, beliefTerm, taskTerm, false, -1)
	}
}

// compoundAndStatement reasons between a compound and a statement that
// shares a component with it.
func compoundAndStatement(ctx *Context, compound *language.Term, index int, statement *language.Term, side int) {
	if index < 0 || index >= compound.Size() || side < 0 || side > 1 {
		return
	}
	component := compound.Component(index)
	task := ctx.task
	if component.Op() == statement.Op() {
		if compound.Op() != language.OpConjunction || ctx.belief == nil {
			return
		}
		compoundTask := !statement.Equal(task.Content())
		if u0, u1, ok := language.Unify(language.VarDependent, component, statement, compound, statement); ok {
			elimiVarDep(ctx, u0, u1, compoundTask)
		} else if u0, u1, ok := language.Unify(language.VarQuery, component, statement, compound, statement); ok && !task.Sentence().IsJudgment() {
			decomposeStatement(ctx, u0, u1, true, index)
		}
		return
	}
	if task.Sentence().IsJudgment() {
		if statement.Op() == language.OpInheritance {
			structuralCompose1(ctx, compound, index, statement)
			if compound.Op() != language.OpSetExt && compound.Op() != language.OpSetInt && compound.Op() != language.OpNegation {
				structuralCompose2(ctx, compound, index, statement, side)
			}
		} else if statement.Op() == language.OpSimilarity && compound.Op() != language.OpConjunction {
			structuralCompose2(ctx, compound, index, statement, side)
		}
	}
}

// componentAndStatement reasons between a statement and a compound
// component of it.
func componentAndStatement(ctx *Context, compound *language.Term, index int, statement *language.Term, side int) {
	if !compound.IsCompound() || !statement.IsStatement() {
		return
	}
	switch statement.Op() {
	case language.OpInheritance:
		if index >= 0 && index < compound.Size() {
			structuralDecompose1(ctx, compound, index, statement)
		}
		if compound.Op() != language.OpSetExt && compound.Op() != language.OpSetInt {
			structuralDecompose2(ctx, statement, index)
		} else {
			transformSetRelation(ctx, compound, statement, side)
		}
	case language.OpSimilarity:
		structuralDecompose2(ctx, statement, index)
		if compound.Op() == language.OpSetExt || compound.Op() == language.OpSetInt {
			transformSetRelation(ctx, compound, statement, side)
		}
	case language.OpImplication:
		if compound.Op() == language.OpNegation {
			contraposition(ctx, statement, ctx.task.Sentence())
		}
	}
}

// transformTask rewrites an inheritance nested in the task content between
// its product and image forms.
func transformTask(ctx *Context, tLink *entity.TaskLink) {
	content := ctx.task.Content()
	indices := tLink.Indices()
	inh := content
	switch {
	case len(indices) == 2 || content.Op() == language.OpInheritance:
		// the inheritance is the content itself
	case len(indices) == 3:
		if !content.IsCompound() || indices[0] >= content.Size() {
			return
		}
		inh = content.Component(indices[0])
	case len(indices) == 4:
		if !content.IsCompound() || indices[0] >= content.Size() {
			return
		}
		cond := content.Component(indices[0])
		conditional := (content.Op() == language.OpImplication && indices[0] == 0) || content.Op() == language.OpEquivalence
		if cond.Op() != language.OpConjunction || !conditional || indices[1] >= cond.Size() {
			return
		}
		inh = cond.Component(indices[1])
	default:
		return
	}
	if inh.Op() != language.OpInheritance {
		return
	}
	transformProductImage(ctx, inh, content, indices)
}
