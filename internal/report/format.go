// Package report renders collected state, plans and execution results.
//
// The text format is the data contract with the decision-maker: fixed
// section headers, one pipe-delimited row per record, fields escaped so
// they never contain an unescaped delimiter. JSON and YAML carry the same
// records with all fields. The pretty format is presentation only.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/colorprofile"
	"gopkg.in/yaml.v3"

	"github.com/raphi011/wtctl/internal/execute"
	"github.com/raphi011/wtctl/internal/inventory"
	"github.com/raphi011/wtctl/internal/plan"
	"github.com/raphi011/wtctl/internal/ui/static"
	"github.com/raphi011/wtctl/internal/ui/styles"
)

// Format selects a renderer.
type Format string

const (
	FormatText   Format = "text"
	FormatJSON   Format = "json"
	FormatYAML   Format = "yaml"
	FormatPretty Format = "pretty"
)

// Formats lists the accepted --format values.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatPretty}

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	names := make([]string, len(Formats))
	for i, f := range Formats {
		names[i] = string(f)
	}
	return "", fmt.Errorf("invalid format %q (valid: %s)", s, strings.Join(names, ", "))
}

// Document is everything one command reports. Nil parts are omitted.
// Text output orders sections as results, state, plan.
type Document struct {
	Result *execute.Result  `json:"result,omitempty" yaml:"result,omitempty"`
	State  *inventory.State `json:"state,omitempty" yaml:"state,omitempty"`
	Plan   *plan.Plan       `json:"plan,omitempty" yaml:"plan,omitempty"`
}

// Options tune rendering.
type Options struct {
	// Theme names the pretty renderer's palette.
	Theme string
	// Environ is consulted for color support (NO_COLOR, TERM, ...);
	// nil means os.Environ().
	Environ []string
}

// Render writes doc to w in format f.
func Render(w io.Writer, f Format, doc Document, opts Options) error {
	switch f {
	case FormatText, "":
		return writeText(w, doc)
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case FormatPretty:
		environ := opts.Environ
		if environ == nil {
			environ = os.Environ()
		}
		return writePretty(colorprofile.NewWriter(w, environ), doc, styles.ForName(opts.Theme))
	}
	return fmt.Errorf("invalid format %q", f)
}

func writeText(w io.Writer, doc Document) error {
	var parts []func(io.Writer) error
	if doc.Result != nil {
		parts = append(parts, func(w io.Writer) error { return WriteResults(w, doc.Result) })
	}
	if doc.State != nil {
		parts = append(parts, func(w io.Writer) error { return WriteState(w, doc.State) })
	}
	if doc.Plan != nil {
		parts = append(parts, func(w io.Writer) error { return WritePlan(w, doc.Plan) })
	}
	for i, write := range parts {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := write(w); err != nil {
			return err
		}
	}
	return nil
}

func writePretty(w io.Writer, doc Document, st styles.Styles) error {
	var b strings.Builder
	section := func(title, body string) {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString(st.Title.Render(title) + "\n")
		if body == "" {
			body = st.Muted.Render("  none") + "\n"
		}
		b.WriteString(body)
	}

	if r := doc.Result; r != nil {
		rows := make([][]string, len(r.Items))
		for i, it := range r.Items {
			rows[i] = static.ResultRow(i, it, st)
		}
		section("Results", static.RenderTable(static.ResultHeaders, rows, st.Header)+static.Summary(r, st)+"\n")
	}
	if s := doc.State; s != nil {
		rows := make([][]string, len(s.Worktrees))
		for i, wt := range s.Worktrees {
			rows[i] = static.WorktreeRow(wt, st)
		}
		section("Worktrees", static.RenderTable(static.WorktreeHeaders, rows, st.Header))

		rows = make([][]string, len(s.Stashes))
		for i, stash := range s.Stashes {
			rows[i] = static.StashRow(stash, st)
		}
		section("Stashes", static.RenderTable(static.StashHeaders, rows, st.Header))

		rows = make([][]string, len(s.Branches))
		for i, br := range s.Branches {
			rows[i] = static.BranchRow(br, st)
		}
		section("Branches", static.RenderTable(static.BranchHeaders, rows, st.Header))

		if len(s.Anomalies) > 0 {
			var ab strings.Builder
			for _, a := range s.Anomalies {
				ab.WriteString(st.Warning.Render("  ! "+a.Error()) + "\n")
			}
			section("Anomalies", ab.String())
		}
	}
	if p := doc.Plan; p != nil {
		rows := make([][]string, len(p.Items))
		for i, it := range p.Items {
			rows[i] = static.PlanRow(i, it, st)
		}
		section("Plan", static.RenderTable(static.PlanHeaders, rows, st.Header))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
