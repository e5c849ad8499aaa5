// Package language implements the term data model: atoms, variables and
// compound terms as a single tagged struct over an Operator enum.
package language

import (
	"hash/fnv"
	"strings"
)

// Operator tags the variant of a Term.
type Operator int

const (
	OpWord Operator = iota
	OpVariable
	OpInheritance
	OpSimilarity
	OpImplication
	OpEquivalence
	OpConjunction
	OpDisjunction
	OpNegation
	OpSetExt
	OpSetInt
	OpIntersectionExt
	OpIntersectionInt
	OpDifferenceExt
	OpDifferenceInt
	OpProduct
	OpImageExt
	OpImageInt
)

var operatorSymbols = map[Operator]string{
	OpInheritance:     "-->",
	OpSimilarity:      "<->",
	OpImplication:     "==>",
	OpEquivalence:     "<=>",
	OpConjunction:     "&&",
	OpDisjunction:     "||",
	OpNegation:        "--",
	OpSetExt:          "{}",
	OpSetInt:          "[]",
	OpIntersectionExt: "&",
	OpIntersectionInt: "|",
	OpDifferenceExt:   "-",
	OpDifferenceInt:   "~",
	OpProduct:         "*",
	OpImageExt:        "/",
	OpImageInt:        `\`,
}

// Symbol returns the Narsese connector for op, or "" for atoms.
func (op Operator) Symbol() string { return operatorSymbols[op] }

func (op Operator) String() string {
	switch op {
	case OpWord:
		return "word"
	case OpVariable:
		return "variable"
	}
	return op.Symbol()
}

// IsStatement reports whether op is a copula.
func (op Operator) IsStatement() bool {
	switch op {
	case OpInheritance, OpSimilarity, OpImplication, OpEquivalence:
		return true
	}
	return false
}

// IsCommutative reports whether component order is irrelevant for op.
func (op Operator) IsCommutative() bool {
	switch op {
	case OpSimilarity, OpEquivalence, OpConjunction, OpDisjunction,
		OpSetExt, OpSetInt, OpIntersectionExt, OpIntersectionInt:
		return true
	}
	return false
}

// IsImage reports whether op is one of the two image operators.
func (op Operator) IsImage() bool { return op == OpImageExt || op == OpImageInt }

// Variable prefixes.
const (
	VarIndependent byte = '$'
	VarDependent   byte = '#'
	VarQuery       byte = '?'
)

// ImagePlaceholder marks the relation slot in image arguments.
const ImagePlaceholder = "_"

type varFlags uint8

const (
	hasIndep varFlags = 1 << iota
	hasDep
	hasQuery
)

// Term is an immutable symbolic term. Two structurally equal terms always
// have identical names and hashes.
type Term struct {
	op         Operator
	name       string
	components []*Term
	relIndex   int
	complexity int
	vars       varFlags
	hash       uint64
}

func newTerm(op Operator, name string, comps []*Term, relIndex int) *Term {
	t := &Term{op: op, name: name, components: comps, relIndex: relIndex, complexity: 1}
	switch op {
	case OpVariable:
		switch name[0] {
		case VarIndependent:
			t.vars = hasIndep
		case VarDependent:
			t.vars = hasDep
		case VarQuery:
			t.vars = hasQuery
		}
	case OpWord:
	default:
		for _, c := range comps {
			t.complexity += c.complexity
			t.vars |= c.vars
		}
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	t.hash = h.Sum64()
	return t
}

// Op returns the operator tag.
func (t *Term) Op() Operator { return t.op }

// Name returns the canonical name.
func (t *Term) Name() string { return t.name }

func (t *Term) String() string { return t.name }

// Hash returns the structural hash computed at construction.
func (t *Term) Hash() uint64 { return t.hash }

// Complexity is 1 for atoms and 1 plus the sum of children otherwise.
func (t *Term) Complexity() int { return t.complexity }

// Size is the number of direct components.
func (t *Term) Size() int { return len(t.components) }

// Component returns the i-th component.
func (t *Term) Component(i int) *Term { return t.components[i] }

// Components returns a copy of the component list.
func (t *Term) Components() []*Term {
	out := make([]*Term, len(t.components))
	copy(out, t.components)
	return out
}

// RelationIndex is the placeholder position of an image.
func (t *Term) RelationIndex() int { return t.relIndex }

// Relation returns the relation of an image.
func (t *Term) Relation() *Term { return t.components[t.relIndex] }

func (t *Term) IsAtom() bool      { return t.op == OpWord || t.op == OpVariable }
func (t *Term) IsCompound() bool  { return !t.IsAtom() }
func (t *Term) IsVariable() bool  { return t.op == OpVariable }
func (t *Term) IsStatement() bool { return t.op.IsStatement() }

// IsConstant reports whether the term contains no variables.
func (t *Term) IsConstant() bool { return t.vars == 0 }

// HasVar reports whether the term contains a variable of the given type.
func (t *Term) HasVar(varType byte) bool {
	switch varType {
	case VarIndependent:
		return t.vars&hasIndep != 0
	case VarDependent:
		return t.vars&hasDep != 0
	case VarQuery:
		return t.vars&hasQuery != 0
	}
	return false
}

// VarType returns the prefix of a variable, or 0.
func (t *Term) VarType() byte {
	if t.op != OpVariable {
		return 0
	}
	return t.name[0]
}

// Subject of a statement.
func (t *Term) Subject() *Term { return t.components[0] }

// Predicate of a statement.
func (t *Term) Predicate() *Term { return t.components[1] }

// Equal compares by canonical name.
func (t *Term) Equal(o *Term) bool {
	if t == o {
		return true
	}
	if t == nil || o == nil {
		return false
	}
	return t.hash == o.hash && t.name == o.name
}

// Compare orders terms by canonical name.
func (t *Term) Compare(o *Term) int { return strings.Compare(t.name, o.name) }

// ContainsComponent reports whether c is a direct component of t.
func (t *Term) ContainsComponent(c *Term) bool {
	for _, x := range t.components {
		if x.Equal(c) {
			return true
		}
	}
	return false
}

// ContainsTerm reports whether c occurs anywhere inside t.
func (t *Term) ContainsTerm(c *Term) bool {
	for _, x := range t.components {
		if x.Equal(c) || x.ContainsTerm(c) {
			return true
		}
	}
	return false
}

// ContainsAllComponents reports whether every component of c (or c itself
// when its operator differs) is a component of t.
func (t *Term) ContainsAllComponents(c *Term) bool {
	if c.op != t.op {
		return t.ContainsComponent(c)
	}
	for _, x := range c.components {
		if !t.ContainsComponent(x) {
			return false
		}
	}
	return true
}

// IndexOf returns the position of c among the direct components, or -1.
func (t *Term) IndexOf(c *Term) int {
	for i, x := range t.components {
		if x.Equal(c) {
			return i
		}
	}
	return -1
}

// IsOperation reports whether t has the form <(*,args) --> ^op>.
func (t *Term) IsOperation() bool {
	if t.op != OpInheritance {
		return false
	}
	pred := t.Predicate()
	return pred.op == OpWord && strings.HasPrefix(pred.name, "^") && t.Subject().op == OpProduct
}

// OperationName returns the operator of an operation term, e.g. "^say".
func (t *Term) OperationName() string {
	if !t.IsOperation() {
		return ""
	}
	return t.Predicate().name
}

func makeName(op Operator, comps []*Term, relIndex int) string {
	var sb strings.Builder
	switch {
	case op.IsStatement():
		sb.WriteByte('<')
		sb.WriteString(comps[0].name)
		sb.WriteByte(' ')
		sb.WriteString(op.Symbol())
		sb.WriteByte(' ')
		sb.WriteString(comps[1].name)
		sb.WriteByte('>')
	case op == OpSetExt || op == OpSetInt:
		sym := op.Symbol()
		sb.WriteByte(sym[0])
		for i, c := range comps {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(c.name)
		}
		sb.WriteByte(sym[1])
	case op.IsImage():
		sb.WriteByte('(')
		sb.WriteString(op.Symbol())
		sb.WriteByte(',')
		sb.WriteString(comps[relIndex].name)
		for i, c := range comps {
			sb.WriteByte(',')
			if i == relIndex {
				sb.WriteString(ImagePlaceholder)
			} else {
				sb.WriteString(c.name)
			}
		}
		sb.WriteByte(')')
	default:
		sb.WriteByte('(')
		sb.WriteString(op.Symbol())
		for _, c := range comps {
			sb.WriteByte(',')
			sb.WriteString(c.name)
		}
		sb.WriteByte(')')
	}
	return sb.String()
}
