package language

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownOperator is returned for a connector symbol with no operator.
	ErrUnknownOperator = errors.New("unknown operator")
	// ErrInvalidTerm is returned when normalization rejects a term.
	ErrInvalidTerm = errors.New("invalid term")
)

// MakeWord returns an atom. Names starting with a variable prefix become
// variables.
func MakeWord(name string) *Term {
	if name == "" {
		return nil
	}
	switch name[0] {
	case VarIndependent, VarDependent, VarQuery:
		if len(name) == 1 {
			return nil
		}
		return newTerm(OpVariable, name, nil, 0)
	}
	return newTerm(OpWord, name, nil, 0)
}

// MakeVariable returns a variable of the given type and local name.
func MakeVariable(varType byte, name string) *Term {
	return newTerm(OpVariable, string(varType)+name, nil, 0)
}

// Make builds a term for op, applying the normalization rules of the
// operator. It returns nil when the result would be invalid.
func Make(op Operator, comps ...*Term) *Term {
	for _, c := range comps {
		if c == nil {
			return nil
		}
	}
	switch op {
	case OpInheritance, OpSimilarity, OpImplication, OpEquivalence:
		if len(comps) != 2 {
			return nil
		}
		return MakeStatement(op, comps[0], comps[1])
	case OpSetExt, OpSetInt:
		return makeSet(op, comps)
	case OpIntersectionExt:
		return makeIntersection(op, OpSetInt, OpSetExt, comps)
	case OpIntersectionInt:
		return makeIntersection(op, OpSetExt, OpSetInt, comps)
	case OpDifferenceExt:
		return makeDifference(op, OpSetExt, comps)
	case OpDifferenceInt:
		return makeDifference(op, OpSetInt, comps)
	case OpConjunction, OpDisjunction:
		return makeJunction(op, comps)
	case OpNegation:
		if len(comps) != 1 {
			return nil
		}
		if comps[0].op == OpNegation {
			return comps[0].components[0]
		}
		return build(OpNegation, comps, 0)
	case OpProduct:
		if len(comps) == 0 {
			return nil
		}
		return build(OpProduct, comps, 0)
	case OpImageExt, OpImageInt:
		// Without an explicit index the first component is the relation.
		return MakeImage(op, comps, 0)
	}
	return nil
}

// MakeStatement builds a statement, rejecting invalid ones.
func MakeStatement(op Operator, subject, predicate *Term) *Term {
	if subject == nil || predicate == nil {
		return nil
	}
	if InvalidStatement(subject, predicate) {
		return nil
	}
	switch op {
	case OpInheritance:
		return build(op, []*Term{subject, predicate}, 0)
	case OpSimilarity:
		if subject.Compare(predicate) > 0 {
			subject, predicate = predicate, subject
		}
		return build(op, []*Term{subject, predicate}, 0)
	case OpImplication:
		if subject.op == OpImplication || subject.op == OpEquivalence || predicate.op == OpEquivalence {
			return nil
		}
		if predicate.op == OpImplication {
			oldCondition := predicate.Subject()
			if oldCondition.op == OpConjunction && oldCondition.ContainsComponent(subject) {
				return nil
			}
			return MakeStatement(OpImplication, Make(OpConjunction, subject, oldCondition), predicate.Predicate())
		}
		return build(op, []*Term{subject, predicate}, 0)
	case OpEquivalence:
		if subject.op == OpImplication || subject.op == OpEquivalence ||
			predicate.op == OpImplication || predicate.op == OpEquivalence {
			return nil
		}
		if subject.Compare(predicate) > 0 {
			subject, predicate = predicate, subject
		}
		return build(op, []*Term{subject, predicate}, 0)
	}
	return nil
}

// MakeLike builds a statement with the same copula as like.
func MakeLike(like, subject, predicate *Term) *Term {
	return MakeStatement(like.op, subject, predicate)
}

// MakeSymmetric builds the symmetric counterpart of like: similarity for
// inheritance, equivalence for implication.
func MakeSymmetric(like, subject, predicate *Term) *Term {
	switch like.op {
	case OpInheritance, OpSimilarity:
		return MakeStatement(OpSimilarity, subject, predicate)
	case OpImplication, OpEquivalence:
		return MakeStatement(OpEquivalence, subject, predicate)
	}
	return nil
}

// MakeImage builds an image whose relation sits at relIndex.
func MakeImage(op Operator, comps []*Term, relIndex int) *Term {
	if len(comps) < 2 || relIndex < 0 || relIndex >= len(comps) {
		return nil
	}
	for _, c := range comps {
		if c == nil {
			return nil
		}
	}
	return build(op, comps, relIndex)
}

// ImageFromProduct turns product (*,a,b) into (/,relation,_,b) for index 0.
func ImageFromProduct(op Operator, product, relation *Term, index int) *Term {
	comps := product.Components()
	comps[index] = relation
	return MakeImage(op, comps, index)
}

// ImageFromImage moves the placeholder of image to index, filling the old
// slot with component.
func ImageFromImage(image, component *Term, index int) *Term {
	comps := image.Components()
	relation := comps[image.relIndex]
	comps[image.relIndex] = component
	comps[index] = relation
	return MakeImage(image.op, comps, index)
}

// ProductFromImage rebuilds the product of image with component at index.
func ProductFromImage(image, component *Term, index int) *Term {
	comps := image.Components()
	comps[index] = component
	return Make(OpProduct, comps...)
}

// MakeBySymbol builds a term from a Narsese connector symbol. It accepts
// the instance/property shorthands and image arguments with a placeholder.
func MakeBySymbol(symbol string, args []*Term) (*Term, error) {
	var t *Term
	switch symbol {
	case "{--":
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %s needs 2 arguments", ErrInvalidTerm, symbol)
		}
		t = MakeStatement(OpInheritance, Make(OpSetExt, args[0]), args[1])
	case "--]":
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %s needs 2 arguments", ErrInvalidTerm, symbol)
		}
		t = MakeStatement(OpInheritance, args[0], Make(OpSetInt, args[1]))
	case "{-]":
		if len(args) != 2 {
			return nil, fmt.Errorf("%w: %s needs 2 arguments", ErrInvalidTerm, symbol)
		}
		t = MakeStatement(OpInheritance, Make(OpSetExt, args[0]), Make(OpSetInt, args[1]))
	case "/", `\`:
		op := OpImageExt
		if symbol == `\` {
			op = OpImageInt
		}
		if len(args) < 2 {
			return nil, fmt.Errorf("%w: image needs a relation and arguments", ErrInvalidTerm)
		}
		rel := -1
		comps := make([]*Term, 0, len(args)-1)
		for i, a := range args[1:] {
			if a != nil && a.name == ImagePlaceholder {
				rel = i
				a = args[0]
			}
			comps = append(comps, a)
		}
		if rel < 0 {
			return nil, fmt.Errorf("%w: image without placeholder", ErrInvalidTerm)
		}
		t = MakeImage(op, comps, rel)
	default:
		op, ok := ParseOperator(symbol)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOperator, symbol)
		}
		t = Make(op, args...)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: (%s %s)", ErrInvalidTerm, symbol, joinNames(args))
	}
	return t, nil
}

// ParseOperator maps a connector symbol to its operator.
func ParseOperator(symbol string) (Operator, bool) {
	for op, s := range operatorSymbols {
		if s == symbol {
			return op, true
		}
	}
	switch symbol {
	case "{":
		return OpSetExt, true
	case "[":
		return OpSetInt, true
	}
	return 0, false
}

// InvalidStatement rejects reflexive statements and statements whose two
// sides are mutually inverse.
func InvalidStatement(subject, predicate *Term) bool {
	if subject.Equal(predicate) {
		return true
	}
	if invalidReflexive(subject, predicate) || invalidReflexive(predicate, subject) {
		return true
	}
	if subject.IsStatement() && predicate.IsStatement() {
		if subject.Subject().Equal(predicate.Predicate()) && subject.Predicate().Equal(predicate.Subject()) {
			return true
		}
	}
	return false
}

func invalidReflexive(container, t *Term) bool {
	if container.IsAtom() || container.op.IsImage() {
		return false
	}
	return container.ContainsComponent(t)
}

// ReduceComponents removes the components of c (or c itself) from compound.
// A single survivor replaces the compound. Returns nil if nothing is left.
func ReduceComponents(compound, c *Term) *Term {
	list := compound.Components()
	var kept []*Term
	if compound.op == c.op {
		for _, x := range list {
			if !c.ContainsComponent(x) {
				kept = append(kept, x)
			}
		}
	} else {
		for _, x := range list {
			if !x.Equal(c) {
				kept = append(kept, x)
			}
		}
	}
	if len(kept) == len(list) {
		return nil
	}
	switch len(kept) {
	case 0:
		return nil
	case 1:
		if compound.op == OpConjunction || compound.op == OpDisjunction ||
			compound.op == OpIntersectionExt || compound.op == OpIntersectionInt ||
			compound.op == OpDifferenceExt || compound.op == OpDifferenceInt {
			return kept[0]
		}
	}
	if compound.op.IsImage() {
		return nil
	}
	return Make(compound.op, kept...)
}

// SetComponent replaces (or removes, for nil) the component at index.
// Components of the same operator are spliced in.
func SetComponent(compound *Term, index int, t *Term) *Term {
	list := compound.Components()
	list = append(list[:index:index], list[index+1:]...)
	if t != nil {
		if t.op == compound.op && compound.op.IsCommutative() {
			list = append(list, t.components...)
		} else {
			tail := append([]*Term{t}, list[index:]...)
			list = append(list[:index:index], tail...)
		}
	}
	if compound.op.IsImage() {
		if len(list) != compound.Size() {
			return nil
		}
		return MakeImage(compound.op, list, compound.relIndex)
	}
	if len(list) == 1 && (compound.op == OpConjunction || compound.op == OpDisjunction) {
		return list[0]
	}
	return Make(compound.op, list...)
}

func build(op Operator, comps []*Term, relIndex int) *Term {
	return newTerm(op, makeName(op, comps, relIndex), comps, relIndex)
}

func makeSet(op Operator, comps []*Term) *Term {
	set := sortedUnique(comps)
	if len(set) == 0 {
		return nil
	}
	return build(op, set, 0)
}

// makeIntersection merges nested intersections. For two sets of the same
// kind it returns a set: union for unionKind, intersection for interKind.
func makeIntersection(op, unionKind, interKind Operator, comps []*Term) *Term {
	if len(comps) == 2 {
		a, b := comps[0], comps[1]
		if a.op == unionKind && b.op == unionKind {
			return makeSet(unionKind, append(a.Components(), b.components...))
		}
		if a.op == interKind && b.op == interKind {
			var both []*Term
			for _, x := range a.components {
				if b.ContainsComponent(x) {
					both = append(both, x)
				}
			}
			return makeSet(interKind, both)
		}
	}
	var flat []*Term
	for _, c := range comps {
		if c.op == op {
			flat = append(flat, c.components...)
		} else {
			flat = append(flat, c)
		}
	}
	flat = sortedUnique(flat)
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return build(op, flat, 0)
}

func makeDifference(op, setKind Operator, comps []*Term) *Term {
	if len(comps) != 2 {
		return nil
	}
	a, b := comps[0], comps[1]
	if a.Equal(b) {
		return nil
	}
	if a.op == setKind && b.op == setKind {
		var rest []*Term
		for _, x := range a.components {
			if !b.ContainsComponent(x) {
				rest = append(rest, x)
			}
		}
		return makeSet(setKind, rest)
	}
	return build(op, []*Term{a, b}, 0)
}

func makeJunction(op Operator, comps []*Term) *Term {
	var flat []*Term
	for _, c := range comps {
		if c.op == op {
			flat = append(flat, c.components...)
		} else {
			flat = append(flat, c)
		}
	}
	flat = sortedUnique(flat)
	switch len(flat) {
	case 0:
		return nil
	case 1:
		return flat[0]
	}
	return build(op, flat, 0)
}

func sortedUnique(comps []*Term) []*Term {
	out := make([]*Term, 0, len(comps))
	out = append(out, comps...)
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	n := 0
	for i, c := range out {
		if i > 0 && c.Equal(out[n-1]) {
			continue
		}
		out[n] = c
		n++
	}
	return out[:n]
}

func joinNames(ts []*Term) string {
	names := make([]string, len(ts))
	for i, t := range ts {
		if t == nil {
			names[i] = "<nil>"
		} else {
			names[i] = t.name
		}
	}
	return strings.Join(names, " ")
}
