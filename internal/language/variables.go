package language

import "strconv"

// Substitution maps variable names to replacement terms.
type Substitution map[string]*Term

// Unify finds substitutions of varType variables that make t1 and t2 equal
// and applies them to c1 and c2 respectively. ok is false when no
// unification exists or a substituted compound turns invalid.
func Unify(varType byte, t1, t2, c1, c2 *Term) (u1, u2 *Term, ok bool) {
	map1, map2 := Substitution{}, Substitution{}
	if !findSubstitute(varType, t1, t2, map1, map2) {
		return c1, c2, false
	}
	u1, u2 = c1, c2
	if len(map1) > 0 {
		if u1 = RenameVariables(ApplySubstitute(c1, map1)); u1 == nil {
			return c1, c2, false
		}
	}
	if len(map2) > 0 {
		if u2 = RenameVariables(ApplySubstitute(c2, map2)); u2 == nil {
			return c1, c2, false
		}
	}
	return u1, u2, true
}

// HasSubstitute reports whether t1 and t2 unify on varType variables.
func HasSubstitute(varType byte, t1, t2 *Term) bool {
	return findSubstitute(varType, t1, t2, Substitution{}, Substitution{})
}

func findSubstitute(varType byte, t1, t2 *Term, map1, map2 Substitution) bool {
	if t1.VarType() == varType {
		if bound, ok := map1[t1.name]; ok {
			return findSubstitute(varType, bound, t2, map1, map2)
		}
		if t2.VarType() == varType {
			common := MakeVariable(varType, t1.name[1:]+t2.name[1:])
			map1[t1.name] = common
			map2[t2.name] = common
		} else {
			map1[t1.name] = t2
		}
		return true
	}
	if t2.VarType() == varType {
		if bound, ok := map2[t2.name]; ok {
			return findSubstitute(varType, t1, bound, map1, map2)
		}
		map2[t2.name] = t1
		return true
	}
	if t1.IsCompound() && t1.op == t2.op && len(t1.components) == len(t2.components) {
		if t1.op.IsImage() && t1.relIndex != t2.relIndex {
			return false
		}
		for i := range t1.components {
			if !findSubstitute(varType, t1.components[i], t2.components[i], map1, map2) {
				return false
			}
		}
		return true
	}
	return t1.Equal(t2)
}

// ApplySubstitute rebuilds t with every mapped variable replaced.
// Returns nil if the rebuilt term is invalid.
func ApplySubstitute(t *Term, subs Substitution) *Term {
	if t == nil {
		return nil
	}
	if r, ok := subs[t.name]; ok && t.IsVariable() {
		return r
	}
	if t.IsAtom() || t.IsConstant() {
		return t
	}
	comps := make([]*Term, len(t.components))
	changed := false
	for i, c := range t.components {
		comps[i] = ApplySubstitute(c, subs)
		if comps[i] == nil {
			return nil
		}
		if comps[i] != c {
			changed = true
		}
	}
	if !changed {
		return t
	}
	if t.op.IsImage() {
		return MakeImage(t.op, comps, t.relIndex)
	}
	return Make(t.op, comps...)
}

// RenameVariables gives the variables of t canonical names in order of
// first occurrence: $1, #2, ?3 ...
func RenameVariables(t *Term) *Term {
	if t == nil || t.IsConstant() {
		return t
	}
	subs := Substitution{}
	collectVariables(t, subs)
	return ApplySubstitute(t, subs)
}

func collectVariables(t *Term, subs Substitution) {
	if t.IsVariable() {
		if _, ok := subs[t.name]; !ok {
			subs[t.name] = MakeVariable(t.name[0], strconv.Itoa(len(subs)+1))
		}
		return
	}
	for _, c := range t.components {
		collectVariables(c, subs)
	}
}

// EqualSubTermsInRespectToImageAndProduct reports whether a and b are
// inheritance statements encoding the same relation through different
// product/image forms, e.g. <(*,a,b) --> r> and <a --> (/,r,_,b)>.
func EqualSubTermsInRespectToImageAndProduct(a, b *Term) bool {
	if a == nil || b == nil || a.op != OpInheritance || b.op != OpInheritance {
		return false
	}
	if a.Equal(b) {
		return false
	}
	return sameAtoms(a, b)
}

func sameAtoms(a, b *Term) bool {
	set := map[string]int{}
	countAtoms(a, set, 1)
	countAtoms(b, set, -1)
	for _, n := range set {
		if n != 0 {
			return false
		}
	}
	return hasProductOrImage(a) && hasProductOrImage(b)
}

func countAtoms(t *Term, set map[string]int, delta int) {
	if t.IsAtom() {
		set[t.name] += delta
		return
	}
	for _, c := range t.components {
		countAtoms(c, set, delta)
	}
}

func hasProductOrImage(t *Term) bool {
	for _, c := range t.components {
		if c.op == OpProduct || c.op.IsImage() {
			return true
		}
	}
	return false
}
