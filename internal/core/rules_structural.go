package core

import (
	"narsgo/internal/entity"
	"narsgo/internal/inference"
	"narsgo/internal/language"
)

// remake rebuilds compound with new components, keeping the relation
// index of images.
func remake(compound *language.Term, comps []*language.Term) *language.Term {
	if compound.Op().IsImage() {
		return language.MakeImage(compound.Op(), comps, compound.RelationIndex())
	}
	return language.Make(compound.Op(), comps...)
}

// switchOrder reports whether the component at index sits on the reversed
// side of compound: the subtrahend of a difference or a non-relation
// argument of an image.
func switchOrder(compound *language.Term, index int) bool {
	switch compound.Op() {
	case language.OpDifferenceExt, language.OpDifferenceInt:
		return index == 1
	case language.OpImageExt, language.OpImageInt:
		return index != compound.RelationIndex()
	}
	return false
}

// structuralCompose2: {<S --> P>, S@(S&T)} |- <(S&T) --> (P&T)>.
func structuralCompose2(ctx *Context, compound *language.Term, index int, statement *language.Term, side int) {
	if side < 0 || side > 1 || index < 0 || index >= compound.Size() || compound.Equal(statement.Component(side)) {
		return
	}
	sub, pred := statement.Subject(), statement.Predicate()
	comps := compound.Components()
	if (side == 0 && compound.ContainsComponent(pred)) || (side == 1 && compound.ContainsComponent(sub)) {
		return
	}
	if side == 0 {
		if compound.ContainsComponent(sub) {
			sub = compound
			comps[index] = pred
			pred = remake(compound, comps)
		}
	} else if compound.ContainsComponent(pred) {
		comps[index] = sub
		sub = remake(compound, comps)
		pred = compound
	}
	if sub == nil || pred == nil {
		return
	}
	var content *language.Term
	if switchOrder(compound, index) {
		content = language.MakeLike(statement, pred, sub)
	} else {
		content = language.MakeLike(statement, sub, pred)
	}
	if content == nil {
		return
	}
	s := ctx.task.Sentence()
	truth := s.Truth()
	var budget *entity.Budget
	if isQuery(s) {
		budget = ctx.compoundBackwardWeak(content)
	} else {
		if compound.Size() > 1 {
			truth = inference.DeductionReliance(truth, entity.Reliance)
		}
		budget = ctx.compoundForward(truth, content)
	}
	ctx.singlePremiseTask(content, truth, budget)
}

// structuralDecompose2: <(S*T) --> (P*T)> |- <S --> P>.
func structuralDecompose2(ctx *Context, statement *language.Term, index int) {
	subj, pred := statement.Subject(), statement.Predicate()
	if subj.Op() != pred.Op() || subj.IsAtom() || subj.Op().IsStatement() {
		return
	}
	if index < 0 || subj.Size() != pred.Size() || index >= subj.Size() {
		return
	}
	t1, t2 := subj.Component(index), pred.Component(index)
	var content *language.Term
	if switchOrder(subj, index) {
		content = language.MakeLike(statement, t2, t1)
	} else {
		content = language.MakeLike(statement, t1, t2)
	}
	if content == nil {
		return
	}
	s := ctx.task.Sentence()
	if subj.Op() != language.OpProduct && subj.Size() > 1 && s.IsJudgment() {
		return
	}
	var budget *entity.Budget
	if isQuery(s) {
		budget = ctx.compoundBackward(content)
	} else {
		budget = ctx.compoundForward(s.Truth(), content)
	}
	ctx.singlePremiseTask(content, s.Truth(), budget)
}

// structuralCompose1: {<S --> P>, P@(P|Q)} |- <S --> (P|Q)>.
func structuralCompose1(ctx *Context, compound *language.Term, index int, statement *language.Term) {
	s := ctx.task.Sentence()
	if !s.IsJudgment() || index < 0 || index >= compound.Size() {
		return
	}
	component := compound.Component(index)
	truthDed := inference.DeductionReliance(s.Truth(), entity.Reliance)
	truthNDed := inference.Negation(truthDed)
	subj, pred := statement.Subject(), statement.Predicate()
	switch {
	case component.Equal(subj):
		switch compound.Op() {
		case language.OpIntersectionExt:
			structuralStatement(ctx, statement, compound, pred, truthDed)
		case language.OpDifferenceExt:
			if index == 0 {
				structuralStatement(ctx, statement, compound, pred, truthDed)
			}
		case language.OpDifferenceInt:
			if index == 1 {
				structuralStatement(ctx, statement, compound, pred, truthNDed)
			}
		}
	case component.Equal(pred):
		switch compound.Op() {
		case language.OpIntersectionInt:
			structuralStatement(ctx, statement, subj, compound, truthDed)
		case language.OpDifferenceExt:
			if index == 1 {
				structuralStatement(ctx, statement, subj, compound, truthNDed)
			}
		case language.OpDifferenceInt:
			if index == 0 {
				structuralStatement(ctx, statement, subj, compound, truthDed)
			}
		}
	}
}

// structuralDecompose1: <(S|T) --> P> |- <S --> P>.
func structuralDecompose1(ctx *Context, compound *language.Term, index int, statement *language.Term) {
	s := ctx.task.Sentence()
	if !s.IsJudgment() || index < 0 || index >= compound.Size() {
		return
	}
	component := compound.Component(index)
	truthDed := inference.DeductionReliance(s.Truth(), entity.Reliance)
	truthNDed := inference.Negation(truthDed)
	subj, pred := statement.Subject(), statement.Predicate()
	switch {
	case compound.Equal(subj):
		switch compound.Op() {
		case language.OpIntersectionInt:
			structuralStatement(ctx, statement, component, pred, truthDed)
		case language.OpSetExt:
			if compound.Size() > 1 {
				structuralStatement(ctx, statement, language.Make(language.OpSetExt, component), pred, truthDed)
			}
		case language.OpDifferenceInt:
			if index == 0 {
				structuralStatement(ctx, statement, component, pred, truthDed)
			} else {
				structuralStatement(ctx, statement, component, pred, truthNDed)
			}
		}
	case compound.Equal(pred):
		switch compound.Op() {
		case language.OpIntersectionExt:
			structuralStatement(ctx, statement, subj, component, truthDed)
		case language.OpSetInt:
			if compound.Size() > 1 {
				structuralStatement(ctx, statement, subj, language.Make(language.OpSetInt, component), truthDed)
			}
		case language.OpDifferenceExt:
			if index == 0 {
				structuralStatement(ctx, statement, subj, component, truthDed)
			} else {
				structuralStatement(ctx, statement, subj, component, truthNDed)
			}
		}
	}
}

func structuralStatement(ctx *Context, like, subject, predicate *language.Term, truth *entity.Truth) {
	if subject == nil || predicate == nil {
		return
	}
	content := language.MakeLike(like, subject, predicate)
	if content == nil {
		return
	}
	ctx.singlePremiseTask(content, truth, ctx.compoundForward(truth, content))
}

// transformSetRelation: <{S} --> {P}> |- <{S} <-> {P}> and back.
func transformSetRelation(ctx *Context, compound, statement *language.Term, side int) {
	if compound.Size() > 1 {
		return
	}
	ext := (compound.Op() == language.OpSetExt && side == 0) || (compound.Op() == language.OpSetInt && side == 1)
	if statement.Op() == language.OpInheritance && ext {
		return
	}
	sub, pred := statement.Subject(), statement.Predicate()
	var content *language.Term
	switch {
	case statement.Op() == language.OpInheritance:
		content = language.MakeStatement(language.OpSimilarity, sub, pred)
	case ext:
		content = language.MakeStatement(language.OpInheritance, pred, sub)
	default:
		content = language.MakeStatement(language.OpInheritance, sub, pred)
	}
	if content == nil {
		return
	}
	s := ctx.task.Sentence()
	var budget *entity.Budget
	if s.IsJudgment() {
		budget = ctx.compoundForward(s.Truth(), content)
	} else {
		budget = ctx.compoundBackward(content)
	}
	ctx.singlePremiseTask(content, s.Truth(), budget)
}

// transformNegation: A |- (--, A).
func transformNegation(ctx *Context, content *language.Term) {
	s := ctx.task.Sentence()
	truth := s.Truth()
	if s.IsJudgment() {
		truth = inference.Negation(truth)
	}
	var budget *entity.Budget
	if isQuery(s) {
		budget = ctx.compoundBackward(content)
	} else {
		budget = ctx.compoundForward(truth, content)
	}
	ctx.singlePremiseTask(content, truth, budget)
}

// contraposition: <A ==> B> |- <(--, B) ==> (--, A)>.
func contraposition(ctx *Context, statement *language.Term, sentence *entity.Sentence) {
	subj, pred := statement.Subject(), statement.Predicate()
	content := language.MakeLike(statement, language.Make(language.OpNegation, pred), language.Make(language.OpNegation, subj))
	if content == nil {
		return
	}
	implication := content.Op() == language.OpImplication
	if isQuery(sentence) {
		var budget *entity.Budget
		if implication {
			budget = ctx.compoundBackwardWeak(content)
		} else {
			budget = ctx.compoundBackward(content)
		}
		ctx.singlePremiseTaskAs(content, entity.Question, nil, budget)
		return
	}
	truth := sentence.Truth()
	if truth == nil {
		return
	}
	if implication {
		truth = inference.Contraposition(truth)
	}
	ctx.singlePremiseTaskAs(content, entity.Judgment, truth, ctx.compoundForward(truth, content))
}

// contrapositionAttempts tries contraposition on ContrapositionPriority
// percent of implication judgments.
func contrapositionAttempts(ctx *Context, statement *language.Term, sentence *entity.Sentence) {
	if ctx.mem.randFloat()*100 < ctx.mem.param.ContrapositionPriority.Load() {
		contraposition(ctx, statement, sentence)
	}
}

// structuralCompound: (&&, A, B) |- A, and A |- (&&, A, B) for questions.
func structuralCompound(ctx *Context, compound, component *language.Term, compoundTask bool) {
	if !component.IsConstant() {
		return
	}
	content := compound
	if compoundTask {
		content = component
	}
	s := ctx.task.Sentence()
	truth := s.Truth()
	var budget *entity.Budget
	if isQuery(s) {
		budget = ctx.compoundBackward(content)
	} else {
		if s.IsJudgment() == (compoundTask == (compound.Op() == language.OpConjunction)) {
			truth = inference.DeductionReliance(truth, entity.Reliance)
		} else {
			truth = inference.Negation(inference.DeductionReliance(inference.Negation(truth), entity.Reliance))
		}
		budget = ctx.compoundForward(truth, content)
	}
	ctx.singlePremiseTask(content, truth, budget)
}

// transformProductImage rewrites inh between its product and image forms.
// indices locate inh inside oldContent: the last two give the side of inh
// and the position inside that side.
func transformProductImage(ctx *Context, inh, oldContent *language.Term, indices []int) {
	if inh.Equal(oldContent) {
		if inh.Subject().IsCompound() {
			transformSubjectPI(ctx, inh.Subject(), inh.Predicate())
		}
		if inh.Predicate().IsCompound() {
			transformPredicatePI(ctx, inh.Subject(), inh.Predicate())
		}
		return
	}
	if len(indices) < 2 {
		return
	}
	index, side := indices[len(indices)-1], indices[len(indices)-2]
	if side < 0 || side > 1 {
		return
	}
	comp := inh.Component(side)
	if comp.IsAtom() || index < 0 || index >= comp.Size() {
		return
	}
	var subject, predicate *language.Term
	switch {
	case comp.Op() == language.OpProduct:
		if side == 0 {
			subject = comp.Component(index)
			predicate = language.ImageFromProduct(language.OpImageExt, comp, inh.Predicate(), index)
		} else {
			subject = language.ImageFromProduct(language.OpImageInt, comp, inh.Subject(), index)
			predicate = comp.Component(index)
		}
	case comp.Op() == language.OpImageExt && side == 1:
		if index == comp.RelationIndex() {
			subject = language.ProductFromImage(comp, inh.Subject(), index)
			predicate = comp.Component(index)
		} else {
			subject = comp.Component(index)
			predicate = language.ImageFromImage(comp, inh.Subject(), index)
		}
	case comp.Op() == language.OpImageInt && side == 0:
		if index == comp.RelationIndex() {
			subject = comp.Component(index)
			predicate = language.ProductFromImage(comp, inh.Predicate(), index)
		} else {
			subject = language.ImageFromImage(comp, inh.Predicate(), index)
			predicate = comp.Component(index)
		}
	default:
		return
	}
	newInh := language.MakeStatement(language.OpInheritance, subject, predicate)
	if newInh == nil {
		return
	}

	var content *language.Term
	switch {
	case len(indices) == 2:
		content = newInh
	case oldContent.IsStatement() && indices[0] == 1:
		content = language.MakeLike(oldContent, oldContent.Subject(), newInh)
	default:
		cond := oldContent.Component(0)
		conditional := oldContent.Op() == language.OpImplication || oldContent.Op() == language.OpEquivalence
		if conditional && cond.Op() == language.OpConjunction && len(indices) == 4 {
			comps := cond.Components()
			if indices[1] >= len(comps) {
				return
			}
			comps[indices[1]] = newInh
			content = language.MakeLike(oldContent, language.Make(language.OpConjunction, comps...), oldContent.Predicate())
			break
		}
		comps := oldContent.Components()
		if indices[0] >= len(comps) {
			return
		}
		comps[indices[0]] = newInh
		switch {
		case oldContent.Op() == language.OpConjunction:
			content = language.Make(language.OpConjunction, comps...)
		case conditional:
			content = language.MakeLike(oldContent, comps[0], comps[1])
		}
	}
	if content == nil {
		return
	}
	s := ctx.task.Sentence()
	var budget *entity.Budget
	if isQuery(s) {
		budget = ctx.compoundBackward(content)
	} else {
		budget = ctx.compoundForward(s.Truth(), content)
	}
	ctx.singlePremiseTask(content, s.Truth(), budget)
}

// transformSubjectPI: <(*, S, M) --> P> |- <S --> (/, P, _, M)>, and the
// image forms back to the product.
func transformSubjectPI(ctx *Context, subject, predicate *language.Term) {
	switch subject.Op() {
	case language.OpProduct:
		for i := range subject.Size() {
			pi := language.ImageFromProduct(language.OpImageExt, subject, predicate, i)
			derivePI(ctx, language.MakeStatement(language.OpInheritance, subject.Component(i), pi))
		}
	case language.OpImageInt:
		rel := subject.RelationIndex()
		for i := range subject.Size() {
			var s, p *language.Term
			if i == rel {
				s = subject.Component(rel)
				p = language.ProductFromImage(subject, predicate, rel)
			} else {
				s = language.ImageFromImage(subject, predicate, i)
				p = subject.Component(i)
			}
			derivePI(ctx, language.MakeStatement(language.OpInheritance, s, p))
		}
	}
}

// transformPredicatePI: <S --> (*, P, M)> |- <(\, S, _, M) --> P>, and the
// image forms back to the product.
func transformPredicatePI(ctx *Context, subject, predicate *language.Term) {
	switch predicate.Op() {
	case language.OpProduct:
		for i := range predicate.Size() {
			pi := language.ImageFromProduct(language.OpImageInt, predicate, subject, i)
			derivePI(ctx, language.MakeStatement(language.OpInheritance, pi, predicate.Component(i)))
		}
	case language.OpImageExt:
		rel := predicate.RelationIndex()
		for i := range predicate.Size() {
			var s, p *language.Term
			if i == rel {
				s = language.ProductFromImage(predicate, subject, rel)
				p = predicate.Component(rel)
			} else {
				s = predicate.Component(i)
				p = language.ImageFromImage(predicate, subject, i)
			}
			derivePI(ctx, language.MakeStatement(language.OpInheritance, s, p))
		}
	}
}

func derivePI(ctx *Context, inh *language.Term) {
	if inh == nil {
		return
	}
	s := ctx.task.Sentence()
	var budget *entity.Budget
	if s.Truth() == nil {
		budget = ctx.compoundBackward(inh)
	} else {
		budget = ctx.compoundForward(s.Truth(), inh)
	}
	ctx.singlePremiseTask(inh, s.Truth(), budget)
}
