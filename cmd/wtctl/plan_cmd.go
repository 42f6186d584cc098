package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/wtctl/internal/log"
	"github.com/raphi011/wtctl/internal/output"
	"github.com/raphi011/wtctl/internal/report"
)

func newPlanCmd() *cobra.Command {
	var format formatFlag

	cmd := &cobra.Command{
		Use:     "plan",
		Short:   "Report state and the proposed cleanup plan",
		GroupID: GroupAudit,
		Args:    cobra.NoArgs,
		Long: `Collect state, classify every entity and print the state report followed
by the proposed plan. Nothing in the repository is changed.

Edit the ACTION column of the PLAN section (REMOVE/DROP/DELETE/KEEP) and pass
the file to "wtctl cleanup --plan" to decide the ASK items.`,
		Example: `  wtctl plan                  # State and plan as text
  wtctl plan > plan.txt       # Save for editing
  wtctl plan --format pretty  # Colored tables`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)

			f, err := format.parse()
			if err != nil {
				return err
			}

			s, err := openSession(dirFlag, cfg, noPR)
			if err != nil {
				return err
			}
			state, err := s.collect(ctx)
			if err != nil {
				return err
			}
			p := s.propose(state)
			l.Debug("plan", "items", len(p.Items), "mutations", p.Mutations(), "ask", len(p.Unresolved()))

			return render(output.FromContext(ctx), f, report.Document{State: state, Plan: p})
		},
	}

	format.register(cmd)

	return cmd
}
