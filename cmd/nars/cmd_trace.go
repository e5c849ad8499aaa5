package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"narsgo/internal/store"
)

func newTraceCmd(a *app) *cobra.Command {
	var (
		types []string
		term  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "trace [session-id]",
		Short: "List recorded sessions or the events of one",
		Long: `Without arguments, lists the sessions in the trace store. With a
session id (or a unique prefix of one), prints its answers and events.

Example:
  nars trace
  nars trace 3f2a --type task_derived --limit 50`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(a.cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close()
			w := cmd.OutOrStdout()

			if len(args) == 0 {
				sessions, err := st.Sessions()
				if err != nil {
					return err
				}
				if len(sessions) == 0 {
					fmt.Fprintln(w, warnStyle.Render("no recorded sessions"))
				}
				for _, s := range sessions {
					fmt.Fprintf(w, "%s  %-20s %s  %s\n",
						headerStyle.Render(s.ID), s.Name,
						s.StartedAt.Format(time.DateTime),
						truthStyle.Render(fmt.Sprintf("%d cycles, %d events", s.Cycles, s.Events)))
				}
				return nil
			}

			info, err := st.Session(args[0])
			if err != nil {
				return err
			}
			printHeader(w, fmt.Sprintf("%s (%s)", info.ID, info.Name))

			answers, err := st.Answers(info.ID)
			if err != nil {
				return err
			}
			for _, ans := range answers {
				fmt.Fprintf(w, "%s  %s  %s\n", truthStyle.Render(fmt.Sprintf("[%d]", ans.Cycle)),
					ans.Question, answerStyle.Render("=> "+ans.Answer))
			}

			evs, err := st.Events(info.ID, store.EventFilter{Types: types, Term: term, Limit: limit})
			if err != nil {
				return err
			}
			for _, e := range evs {
				text := e.Sentence
				if text == "" {
					text = e.Term
				}
				if e.Message != "" {
					text += " " + opStyle.Render(e.Message)
				}
				fmt.Fprintf(w, "%s %-24s %s\n", truthStyle.Render(fmt.Sprintf("%6d", e.Cycle)), e.Type, text)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&types, "type", nil, "Only these event types")
	cmd.Flags().StringVar(&term, "term", "", "Only events about this term")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum events to print (0 for all)")
	return cmd
}
