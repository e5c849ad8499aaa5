package kernel

import (
	"fmt"
	"math"

	"github.com/google/mangle/ast"

	"narsgo/internal/entity"
	"narsgo/internal/language"
)

// schema declares the predicates beliefs are exported as, plus a few
// derived predicates available to every query.
const schema = `
Decl statement(Name, Copula, Subject, Predicate).
Decl belief(Name, FreqPct, ConfPct).
Decl compound(Name, Op).
Decl component(Name, Index, Child).

believed(S, Copula, P) :- statement(N, Copula, S, P), belief(N, _, _).
confident(N) :- belief(N, _, C), :gt(C, 50).
isa(S, P) :- believed(S, /inheritance, P).
isa(S, P) :- isa(S, M), believed(M, /inheritance, P).
`

var opNames = map[language.Operator]string{
	language.OpInheritance:     "/inheritance",
	language.OpSimilarity:      "/similarity",
	language.OpImplication:     "/implication",
	language.OpEquivalence:     "/equivalence",
	language.OpConjunction:     "/conjunction",
	language.OpDisjunction:     "/disjunction",
	language.OpNegation:        "/negation",
	language.OpSetExt:          "/ext_set",
	language.OpSetInt:          "/int_set",
	language.OpIntersectionExt: "/ext_intersection",
	language.OpIntersectionInt: "/int_intersection",
	language.OpDifferenceExt:   "/ext_difference",
	language.OpDifferenceInt:   "/int_difference",
	language.OpProduct:         "/product",
	language.OpImageExt:        "/ext_image",
	language.OpImageInt:        "/int_image",
}

// OpName is the name constant an operator is exported as.
func OpName(op language.Operator) string { return opNames[op] }

// pct maps a truth component to a whole percentage.
func pct(v float64) int64 { return int64(math.Round(v * 100)) }

// exporter turns beliefs into atoms, describing each term once.
type exporter struct {
	seen  map[string]bool
	atoms []ast.Atom
}

func newExporter() *exporter {
	return &exporter{seen: make(map[string]bool)}
}

func (x *exporter) belief(s *entity.Sentence) error {
	t := s.Truth()
	if t == nil {
		return nil
	}
	if err := x.term(s.Content()); err != nil {
		return err
	}
	name := s.Content().Name()
	x.atoms = append(x.atoms, ast.NewAtom("belief",
		ast.String(name), ast.Number(pct(t.Frequency())), ast.Number(pct(t.Confidence()))))
	return nil
}

func (x *exporter) term(t *language.Term) error {
	if t.IsAtom() || x.seen[t.Name()] {
		return nil
	}
	x.seen[t.Name()] = true

	op, err := ast.Name(OpName(t.Op()))
	if err != nil {
		return fmt.Errorf("failed to export %s: %w", t, err)
	}
	name := ast.String(t.Name())
	if t.IsStatement() {
		x.atoms = append(x.atoms, ast.NewAtom("statement",
			name, op, ast.String(t.Subject().Name()), ast.String(t.Predicate().Name())))
	} else {
		x.atoms = append(x.atoms, ast.NewAtom("compound", name, op))
	}
	for i, c := range t.Components() {
		x.atoms = append(x.atoms, ast.NewAtom("component", name, ast.Number(int64(i)), ast.String(c.Name())))
		if err := x.term(c); err != nil {
			return err
		}
	}
	return nil
}
