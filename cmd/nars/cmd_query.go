package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"narsgo/internal/kernel"
	"narsgo/internal/taskfile"
)

func newQueryCmd(a *app) *cobra.Command {
	opts := &runOptions{}
	var rulesPath string
	cmd := &cobra.Command{
		Use:   "query [task-file] [pattern]",
		Short: "Run a task file, then query the beliefs with Datalog",
		Long: `Runs a task file like "run", exports the resulting beliefs to the
Mangle kernel and prints the bindings of a query pattern.

Beliefs are exported as statement(Name, Copula, Subject, Predicate),
belief(Name, FreqPct, ConfPct), compound(Name, Op) and
component(Name, Index, Child). The derived predicates believed/3,
confident/1 and isa/2 are always available.

Example:
  nars query examples/animals.yaml 'isa("robin", P)'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			f, err := taskfile.Load(args[0])
			if err != nil {
				return err
			}
			kcfg := a.cfg.Kernel
			if rulesPath != "" {
				kcfg.RulesPath = rulesPath
			}
			k, err := kernel.New(kcfg)
			if err != nil {
				return err
			}

			s, err := a.startSession(ctx, "query", opts.record)
			if err != nil {
				return err
			}
			if err := s.play(ctx, f, opts.cycles); err != nil {
				s.close()
				return err
			}
			stats, err := k.Evaluate(ctx, s.mem.Beliefs())
			if cerr := s.close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			bindings, err := k.Query(args[1])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			printHeader(w, fmt.Sprintf("%s: %d beliefs, %d facts, %d results",
				args[1], stats.Beliefs, stats.Exported, len(bindings)))
			for _, b := range bindings {
				fmt.Fprintln(w, answerStyle.Render(formatBinding(b)))
			}
			return nil
		},
	}
	opts.bind(cmd)
	cmd.Flags().StringVar(&rulesPath, "rules", "", "Mangle rules file added to the program")
	return cmd
}

// formatBinding prints variables in name order.
func formatBinding(b kernel.Binding) string {
	names := make([]string, 0, len(b))
	for name := range b {
		names = append(names, name)
	}
	slices.Sort(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s = %v", name, b[name]))
	}
	if len(parts) == 0 {
		return "true"
	}
	return strings.Join(parts, ", ")
}
