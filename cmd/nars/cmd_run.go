package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"narsgo/internal/taskfile"
)

type runOptions struct {
	cycles int
	record bool
	report bool
	top    int
}

func (o *runOptions) bind(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&o.cycles, "cycles", "n", 100, "Cycles to run after the task file")
	cmd.Flags().BoolVar(&o.record, "record", false, "Record the session in the trace store")
}

func newRunCmd(a *app) *cobra.Command {
	opts := &runOptions{}
	cmd := &cobra.Command{
		Use:   "run [task-file]",
		Short: "Run a task file and print the answers",
		Long: `Feeds the judgments, questions and goals of a YAML task file into
memory, running the cycles the file asks for, then --cycles more.

Example:
  nars run examples/animals.yaml --cycles 500 --report`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			return a.run(ctx, cmd, args[0], opts)
		},
	}
	opts.bind(cmd)
	cmd.Flags().BoolVar(&opts.report, "report", false, "Print a markdown session report")
	cmd.Flags().IntVar(&opts.top, "top", 20, "Beliefs listed in the report")
	return cmd
}

func (a *app) run(ctx context.Context, cmd *cobra.Command, path string, opts *runOptions) error {
	f, err := taskfile.Load(path)
	if err != nil {
		return err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	s, err := a.startSession(ctx, name, opts.record)
	if err != nil {
		return err
	}
	playErr := s.play(ctx, f, opts.cycles)

	w := cmd.OutOrStdout()
	printHeader(w, fmt.Sprintf("%s: %d cycles", name, s.mem.Time()))
	printAnswers(w, s.Answers())
	printExecuted(w, s.Executed())
	if opts.report {
		fmt.Fprint(w, renderMarkdown(markdownReport(reportData{
			Name:     name,
			Cycles:   s.mem.Time(),
			Concepts: len(s.mem.Concepts()),
			Outputs:  s.Outputs(),
			Answers:  s.Answers(),
			Executed: s.Executed(),
			Beliefs:  s.mem.Beliefs(),
			Top:      opts.top,
		})))
	}
	if s.rec != nil {
		fmt.Fprintf(w, "recorded session %s\n", s.rec.ID)
	}
	if err := s.close(); err != nil {
		return err
	}
	return playErr
}
