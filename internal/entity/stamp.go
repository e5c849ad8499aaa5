package entity

import (
	"math"
	"strconv"
	"strings"
)

// Eternal marks a stamp without an occurrence time.
const Eternal int64 = math.MinInt64

// Stamp records the provenance of a sentence.
type Stamp struct {
	base       []int64
	creation   int64
	occurrence int64
}

// NewStamp creates an input stamp holding a single serial.
func NewStamp(serial, creation, occurrence int64) *Stamp {
	return &Stamp{base: []int64{serial}, creation: creation, occurrence: occurrence}
}

// RestoreStamp rebuilds a stamp from a saved evidential base. The base is
// copied and truncated to MaxEvidentialBase.
func RestoreStamp(base []int64, creation, occurrence int64) *Stamp {
	n := min(len(base), MaxEvidentialBase)
	b := make([]int64, n)
	copy(b, base[:n])
	return &Stamp{base: b, creation: creation, occurrence: occurrence}
}

// DeriveStamp copies the evidence of s with a new creation time.
func DeriveStamp(s *Stamp, creation int64) *Stamp {
	base := make([]int64, len(s.base))
	copy(base, s.base)
	return &Stamp{base: base, creation: creation, occurrence: s.occurrence}
}

// MergeStamps interleaves two evidential bases, bounded by
// MaxEvidentialBase. It returns nil when the bases overlap, which blocks
// derivations that would reuse the same evidence.
func MergeStamps(first, second *Stamp, creation int64) *Stamp {
	if first == nil || second == nil || first.Overlaps(second) {
		return nil
	}
	n := min(len(first.base)+len(second.base), MaxEvidentialBase)
	base := make([]int64, 0, n)
	i1, i2 := 0, 0
	for i2 < len(second.base) && len(base) < n {
		base = append(base, second.base[i2])
		i2++
		if i1 < len(first.base) && len(base) < n {
			base = append(base, first.base[i1])
			i1++
		}
	}
	for i1 < len(first.base) && len(base) < n {
		base = append(base, first.base[i1])
		i1++
	}
	return &Stamp{base: base, creation: creation, occurrence: first.occurrence}
}

// Overlaps reports whether the two stamps share any serial.
func (s *Stamp) Overlaps(o *Stamp) bool {
	for _, a := range s.base {
		for _, b := range o.base {
			if a == b {
				return true
			}
		}
	}
	return false
}

// Base returns a copy of the evidential base.
func (s *Stamp) Base() []int64 {
	out := make([]int64, len(s.base))
	copy(out, s.base)
	return out
}

func (s *Stamp) BaseLength() int    { return len(s.base) }
func (s *Stamp) Creation() int64    { return s.creation }
func (s *Stamp) Occurrence() int64  { return s.occurrence }
func (s *Stamp) IsEternal() bool    { return s.occurrence == Eternal }

// WithOccurrence returns a copy with another occurrence time.
func (s *Stamp) WithOccurrence(t int64) *Stamp {
	c := DeriveStamp(s, s.creation)
	c.occurrence = t
	return c
}

// Equal compares evidential bases as sets and occurrence times.
func (s *Stamp) Equal(o *Stamp) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.occurrence != o.occurrence {
		return false
	}
	return sameSet(s.base, o.base)
}

func sameSet(a, b []int64) bool {
	in := func(x int64, set []int64) bool {
		for _, y := range set {
			if x == y {
				return true
			}
		}
		return false
	}
	for _, x := range a {
		if !in(x, b) {
			return false
		}
	}
	for _, x := range b {
		if !in(x, a) {
			return false
		}
	}
	return true
}

func (s *Stamp) String() string {
	parts := make([]string, len(s.base))
	for i, x := range s.base {
		parts[i] = strconv.FormatInt(x, 10)
	}
	occ := "eternal"
	if !s.IsEternal() {
		occ = strconv.FormatInt(s.occurrence, 10)
	}
	return "{" + strconv.FormatInt(s.creation, 10) + " : " + occ + " : " + strings.Join(parts, ";") + "}"
}
