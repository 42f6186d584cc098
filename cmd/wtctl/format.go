package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/wtctl/internal/output"
	"github.com/raphi011/wtctl/internal/report"
)

// formatFlag is the --format value shared by the audit commands.
type formatFlag struct {
	value string
}

func (f *formatFlag) register(cmd *cobra.Command) {
	names := make([]string, len(report.Formats))
	for i, name := range report.Formats {
		names[i] = string(name)
	}
	cmd.Flags().StringVar(&f.value, "format", string(report.FormatText), "Output format: "+strings.Join(names, ", "))
	_ = cmd.RegisterFlagCompletionFunc("format", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return names, cobra.ShellCompDirectiveNoFileComp
	})
}

func (f *formatFlag) parse() (report.Format, error) {
	return report.ParseFormat(f.value)
}

// render writes doc to stdout.
func render(out *output.Printer, f report.Format, doc report.Document) error {
	return report.Render(out.Writer(), f, doc, report.Options{Theme: cfg.UI.Theme})
}
