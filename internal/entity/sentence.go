package entity

import (
	"math"
	"strconv"

	"narsgo/internal/language"
)

// Punctuation is the sentence kind.
type Punctuation byte

const (
	Judgment Punctuation = '.'
	Question Punctuation = '?'
	Goal     Punctuation = '!'
	Quest    Punctuation = '@'
)

// ParsePunctuation accepts the symbol or the kind name.
func ParsePunctuation(s string) (Punctuation, bool) {
	switch s {
	case ".", "judgment", "belief":
		return Judgment, true
	case "?", "question":
		return Question, true
	case "!", "goal":
		return Goal, true
	case "@", "quest":
		return Quest, true
	}
	return 0, false
}

func (p Punctuation) String() string { return string(p) }

// HasTruth reports whether sentences of this kind carry a truth value.
func (p Punctuation) HasTruth() bool { return p == Judgment || p == Goal }

// Sentence is a term with punctuation, truth and stamp. Sentences are
// compared by key, never by identity.
type Sentence struct {
	content   *language.Term
	punct     Punctuation
	truth     *Truth
	stamp     *Stamp
	revisible bool
	key       string
}

// NewSentence renames variables canonically and drops the truth of
// questions and quests.
func NewSentence(content *language.Term, punct Punctuation, truth *Truth, stamp *Stamp) *Sentence {
	content = language.RenameVariables(content)
	if !punct.HasTruth() {
		truth = nil
	}
	s := &Sentence{content: content, punct: punct, truth: truth, stamp: stamp}
	s.revisible = !(content.Op() == language.OpConjunction && content.HasVar(language.VarDependent))
	s.key = s.makeKey()
	return s
}

func (s *Sentence) makeKey() string {
	k := s.content.Name() + string(s.punct)
	if s.truth != nil {
		k += " " + s.truth.String()
	}
	if !s.stamp.IsEternal() {
		k += " :" + strconv.FormatInt(s.stamp.Occurrence(), 10) + ":"
	}
	return k
}

func (s *Sentence) Content() *language.Term { return s.content }
func (s *Sentence) Punctuation() Punctuation { return s.punct }
func (s *Sentence) Truth() *Truth            { return s.truth }
func (s *Sentence) Stamp() *Stamp            { return s.stamp }
func (s *Sentence) Key() string              { return s.key }
func (s *Sentence) Revisible() bool          { return s.revisible }
func (s *Sentence) IsJudgment() bool         { return s.punct == Judgment }
func (s *Sentence) IsQuestion() bool         { return s.punct == Question }
func (s *Sentence) IsGoal() bool             { return s.punct == Goal }
func (s *Sentence) IsQuest() bool            { return s.punct == Quest }
func (s *Sentence) OccurrenceTime() int64    { return s.stamp.Occurrence() }
func (s *Sentence) IsEternal() bool          { return s.stamp.IsEternal() }

// EqualContent compares content terms.
func (s *Sentence) EqualContent(o *Sentence) bool { return s.content.Equal(o.content) }

// EquivalentTo compares truth and stamp, ignoring creation time.
func (s *Sentence) EquivalentTo(o *Sentence) bool {
	return s.content.Equal(o.content) && s.truth.Equal(o.truth) && s.stamp.Equal(o.stamp)
}

// WithContent clones s with another content term.
func (s *Sentence) WithContent(t *language.Term) *Sentence {
	return NewSentence(t, s.punct, s.truth, s.stamp)
}

// Projection projects s to targetTime as seen at now. A temporal sentence
// whose eternalized truth beats the projected one becomes eternal.
func (s *Sentence) Projection(targetTime, now int64) *Sentence {
	truth, eternalized := s.projectTruth(targetTime, now)
	stamp := s.stamp
	if !s.stamp.IsEternal() {
		if eternalized {
			stamp = s.stamp.WithOccurrence(Eternal)
		} else {
			stamp = s.stamp.WithOccurrence(targetTime)
		}
	}
	return NewSentence(s.content, s.punct, truth, stamp)
}

// ProjectionTruth returns the truth of s projected to targetTime.
func (s *Sentence) ProjectionTruth(targetTime, now int64) *Truth {
	t, _ := s.projectTruth(targetTime, now)
	return t
}

func (s *Sentence) projectTruth(targetTime, now int64) (*Truth, bool) {
	if s.truth == nil {
		return nil, false
	}
	if s.stamp.IsEternal() {
		return s.truth.Clone(), false
	}
	eternal := Eternalize(s.truth)
	if targetTime == Eternal {
		return eternal, true
	}
	factor := TemporalProjection(s.stamp.occurrence, targetTime, now)
	projected := factor * s.truth.confidence
	if projected > eternal.confidence {
		return NewTruth(s.truth.frequency, projected), false
	}
	return eternal, true
}

// Eternalize converts the confidence of a temporal truth to its eternal
// counterpart.
func Eternalize(t *Truth) *Truth {
	return NewAnalyticTruth(t.frequency, W2C(t.confidence))
}

// TemporalProjection is 1 - |s-t| / (|s-now| + |t-now|).
func TemporalProjection(source, target, now int64) float64 {
	den := math.Abs(float64(source-now)) + math.Abs(float64(target-now))
	if den == 0 {
		return 1
	}
	return 1 - math.Abs(float64(source-target))/den
}

func (s *Sentence) String() string { return s.key }
