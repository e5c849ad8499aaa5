package entity

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"narsgo/internal/language"
)

// LinkType encodes the structural relation of a link. Odd types point from
// a compound to a component, even types from a component to a compound.
type LinkType int

const (
	LinkSelf               LinkType = 0
	LinkComponent          LinkType = 1
	LinkCompound           LinkType = 2
	LinkComponentStatement LinkType = 3
	LinkCompoundStatement  LinkType = 4
	LinkComponentCondition LinkType = 5
	LinkCompoundCondition  LinkType = 6
	LinkTransform          LinkType = 8
)

func (lt LinkType) String() string {
	switch lt {
	case LinkSelf:
		return "self"
	case LinkComponent:
		return "component"
	case LinkCompound:
		return "compound"
	case LinkComponentStatement:
		return "component-statement"
	case LinkCompoundStatement:
		return "compound-statement"
	case LinkComponentCondition:
		return "component-condition"
	case LinkCompoundCondition:
		return "compound-condition"
	case LinkTransform:
		return "transform"
	}
	return "link-" + strconv.Itoa(int(lt))
}

func linkKey(lt LinkType, index []int) string {
	var sb strings.Builder
	if lt%2 == 1 {
		sb.WriteString(" @(")
	} else {
		sb.WriteString(" _@(")
	}
	sb.WriteString("T" + strconv.Itoa(int(lt)))
	for _, i := range index {
		sb.WriteString("-" + strconv.Itoa(i+1))
	}
	if lt%2 == 1 {
		sb.WriteString(")_ ")
	} else {
		sb.WriteString(") ")
	}
	return sb.String()
}

// TermLink is a budgeted link from a concept to a related term. Without a
// budget it serves as a template built once per compound concept.
type TermLink struct {
	target *language.Term
	typ    LinkType
	index  []int
	budget *Budget
	key    string
}

// NewTemplate creates a link template towards target.
func NewTemplate(target *language.Term, typ LinkType, index ...int) *TermLink {
	return &TermLink{target: target, typ: typ, index: index, key: linkKey(typ, index) + target.Name()}
}

// NewTermLink instantiates template for the concept of t. When t is the
// template's target the link points back to the compound, one type lower.
func NewTermLink(t *language.Term, template *TermLink, budget *Budget) *TermLink {
	typ := template.typ
	if template.target.Equal(t) {
		typ--
	}
	return &TermLink{target: t, typ: typ, index: template.index, budget: budget, key: linkKey(typ, template.index) + t.Name()}
}

// RestoreTermLink rebuilds a saved term link.
func RestoreTermLink(target *language.Term, typ LinkType, index []int, budget *Budget) *TermLink {
	return &TermLink{target: target, typ: typ, index: index, budget: budget, key: linkKey(typ, index) + target.Name()}
}

func (l *TermLink) Key() string             { return l.key }
func (l *TermLink) Budget() *Budget         { return l.budget }
func (l *TermLink) Target() *language.Term  { return l.target }
func (l *TermLink) Type() LinkType          { return l.typ }
func (l *TermLink) Indices() []int          { return l.index }

// Index returns the i-th index or -1.
func (l *TermLink) Index(i int) int {
	if i < len(l.index) {
		return l.index[i]
	}
	return -1
}

func (l *TermLink) String() string {
	if l.budget == nil {
		return l.key
	}
	return l.budget.String() + " " + l.key
}

// LinkRecord notes when a term link was last fired with a task link.
type LinkRecord struct {
	Key  string
	Time int64
}

// TaskLink is a budgeted link from a concept to a task, remembering which
// term links it was recently fired with.
type TaskLink struct {
	target       *Task
	typ          LinkType
	index        []int
	budget       *Budget
	key          string
	recordLength int

	mu      sync.Mutex
	records []LinkRecord
}

// NewTaskLink links task through template; a nil template makes a SELF link.
func NewTaskLink(task *Task, template *TermLink, budget *Budget, recordLength int) *TaskLink {
	typ, index := LinkSelf, []int(nil)
	if template != nil {
		typ, index = template.typ, template.index
	}
	return &TaskLink{
		target:       task,
		typ:          typ,
		index:        index,
		budget:       budget,
		key:          linkKey(typ, index) + task.Key(),
		recordLength: recordLength,
	}
}

// RestoreTaskLink rebuilds a saved task link with its firing records.
func RestoreTaskLink(task *Task, typ LinkType, index []int, budget *Budget, recordLength int, records []LinkRecord) *TaskLink {
	return &TaskLink{
		target:       task,
		typ:          typ,
		index:        index,
		budget:       budget,
		key:          linkKey(typ, index) + task.Key(),
		recordLength: recordLength,
		records:      slices.Clone(records),
	}
}

func (l *TaskLink) Key() string     { return l.key }
func (l *TaskLink) Budget() *Budget { return l.budget }
func (l *TaskLink) Task() *Task     { return l.target }
func (l *TaskLink) Type() LinkType  { return l.typ }
func (l *TaskLink) Indices() []int  { return l.index }

// RecordLength is the number of cycles a firing stays recorded.
func (l *TaskLink) RecordLength() int { return l.recordLength }

// Index returns the i-th index or -1.
func (l *TaskLink) Index(i int) int {
	if i < len(l.index) {
		return l.index[i]
	}
	return -1
}

// Novel reports whether termLink has not been used with this task link in
// the last recordLength cycles, and records the use.
func (l *TaskLink) Novel(termLink *TermLink, now int64) bool {
	if termLink.target.Equal(l.target.Content()) {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i := range l.records {
		r := &l.records[i]
		if r.Key == termLink.key {
			if now < r.Time+int64(l.recordLength) {
				return false
			}
			r.Time = now
			return true
		}
	}
	l.records = append(l.records, LinkRecord{Key: termLink.key, Time: now})
	if len(l.records) > l.recordLength {
		l.records = l.records[1:]
	}
	return true
}

// Records returns the firing records, oldest first.
func (l *TaskLink) Records() []LinkRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.records)
}

func (l *TaskLink) String() string { return l.budget.String() + " " + l.key }

// PrepareComponentLinks builds the link templates of a compound term,
// reaching third-level components under products and images.
func PrepareComponentLinks(t *language.Term) []*TermLink {
	if t.IsAtom() {
		return nil
	}
	typ := LinkCompound
	if t.IsStatement() {
		typ = LinkCompoundStatement
	}
	var links []*TermLink
	return prepareComponentLinks(t, typ, t, links)
}

func linkable(t *language.Term) bool { return !t.IsVariable() }

func isProductOrImage(t *language.Term) bool {
	return t.Op() == language.OpProduct || t.Op().IsImage()
}

func prepareComponentLinks(t *language.Term, typ LinkType, term *language.Term, links []*TermLink) []*TermLink {
	for i := 0; i < term.Size(); i++ {
		t1 := term.Component(i)
		if linkable(t1) {
			links = append(links, NewTemplate(t1, typ, i))
		}
		condition := t.Op() == language.OpEquivalence || (t.Op() == language.OpImplication && i == 0)
		if condition && (t1.Op() == language.OpConjunction || t1.Op() == language.OpNegation) {
			links = prepareComponentLinks(t1, LinkCompoundCondition, t1, links)
			continue
		}
		if t1.IsAtom() {
			continue
		}
		for j := 0; j < t1.Size(); j++ {
			t2 := t1.Component(j)
			if linkable(t2) {
				switch {
				case isProductOrImage(t1) && typ == LinkCompoundCondition:
					links = append(links, NewTemplate(t2, LinkTransform, 0, i, j))
				case isProductOrImage(t1):
					links = append(links, NewTemplate(t2, LinkTransform, i, j))
				default:
					links = append(links, NewTemplate(t2, typ, i, j))
				}
			}
			if !isProductOrImage(t2) {
				continue
			}
			for k := 0; k < t2.Size(); k++ {
				t3 := t2.Component(k)
				if !linkable(t3) {
					continue
				}
				if typ == LinkCompoundCondition {
					links = append(links, NewTemplate(t3, LinkTransform, 0, i, j, k))
				} else {
					links = append(links, NewTemplate(t3, LinkTransform, i, j, k))
				}
			}
		}
	}
	return links
}
