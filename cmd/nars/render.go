package main

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"narsgo/internal/entity"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	truthStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	opStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("213"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w, headerStyle.Render(title))
}

func printAnswers(w io.Writer, answers []answer) {
	if len(answers) == 0 {
		fmt.Fprintln(w, warnStyle.Render("no answers"))
		return
	}
	for _, a := range answers {
		fmt.Fprintf(w, "%s  %s  %s\n",
			truthStyle.Render(fmt.Sprintf("[%d]", a.Cycle)),
			a.Question,
			answerStyle.Render("=> "+a.Answer))
	}
}

func printExecuted(w io.Writer, executed []string) {
	for _, e := range executed {
		fmt.Fprintln(w, opStyle.Render("^ "+e))
	}
}

// reportData is what the markdown session report summarizes.
type reportData struct {
	Name     string
	Cycles   int64
	Concepts int
	Outputs  int
	Answers  []answer
	Executed []string
	Beliefs  []*entity.Sentence
	Top      int
}

// markdownReport builds the session report. Beliefs are listed by
// descending confidence.
func markdownReport(d reportData) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Session %s\n\n", d.Name)
	fmt.Fprintf(&sb, "- cycles: %d\n- concepts: %d\n- derived outputs: %d\n\n", d.Cycles, d.Concepts, d.Outputs)

	sb.WriteString("## Answers\n\n")
	if len(d.Answers) == 0 {
		sb.WriteString("_none_\n\n")
	} else {
		sb.WriteString("| cycle | question | answer |\n|---|---|---|\n")
		for _, a := range d.Answers {
			fmt.Fprintf(&sb, "| %d | `%s` | `%s` |\n", a.Cycle, a.Question, a.Answer)
		}
		sb.WriteString("\n")
	}

	if len(d.Executed) > 0 {
		sb.WriteString("## Operations\n\n")
		for _, e := range d.Executed {
			fmt.Fprintf(&sb, "- `%s`\n", e)
		}
		sb.WriteString("\n")
	}

	beliefs := slices.Clone(d.Beliefs)
	slices.SortStableFunc(beliefs, func(a, b *entity.Sentence) int {
		ca, cb := a.Truth().Confidence(), b.Truth().Confidence()
		switch {
		case ca > cb:
			return -1
		case ca < cb:
			return 1
		}
		return strings.Compare(a.String(), b.String())
	})
	if d.Top > 0 && len(beliefs) > d.Top {
		beliefs = beliefs[:d.Top]
	}
	sb.WriteString("## Beliefs\n\n")
	if len(beliefs) == 0 {
		sb.WriteString("_none_\n")
	} else {
		sb.WriteString("| belief | frequency | confidence |\n|---|---|---|\n")
		for _, b := range beliefs {
			fmt.Fprintf(&sb, "| `%s` | %.2f | %.2f |\n", b.Content(), b.Truth().Frequency(), b.Truth().Confidence())
		}
	}
	return sb.String()
}

// renderMarkdown renders md for the terminal, falling back to the plain
// markdown if rendering fails.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}
