package main

import (
	"bytes"
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/raphi011/wtctl/internal/log"
	"github.com/raphi011/wtctl/internal/output"
	"github.com/raphi011/wtctl/internal/report"
)

func newConsolidateCmd() *cobra.Command {
	var (
		format     formatFlag
		copyReport bool
	)

	cmd := &cobra.Command{
		Use:     "consolidate",
		Short:   "Report worktrees, stashes and branches",
		Aliases: []string{"report"},
		GroupID: GroupAudit,
		Args:    cobra.NoArgs,
		Long: `Collect the state of every worktree, stash and local branch and write it
as a report. Nothing in the repository is changed.

The text format is a line-oriented protocol with one "=== NAME ===" section
per entity kind; fields are separated by " | ".`,
		Example: `  wtctl consolidate                  # Text report on stdout
  wtctl consolidate --format pretty  # Colored tables
  wtctl consolidate --format json    # For scripts
  wtctl consolidate --copy           # Also copy the text report`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			l := log.FromContext(ctx)
			out := output.FromContext(ctx)

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

			var copied *bytes.Buffer
			if copyReport && f == report.FormatText {
				out, copied = out.Capture()
			}
			if err := render(out, f, report.Document{State: state}); err != nil {
				return err
			}
			if !copyReport {
				return nil
			}

			if copied == nil {
				copied = &bytes.Buffer{}
				if err := report.WriteState(copied, state); err != nil {
					return err
				}
			}
			if err := clipboard.WriteAll(copied.String()); err != nil {
				return fmt.Errorf("copy report to clipboard: %w", err)
			}
			l.Printf("Report copied to clipboard\n")
			return nil
		},
	}

	format.register(cmd)
	cmd.Flags().BoolVarP(&copyReport, "copy", "c", false, "Also copy the text report to the clipboard")

	return cmd
}
