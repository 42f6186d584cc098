package report

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/raphi011/wtctl/internal/execute"
	"github.com/raphi011/wtctl/internal/inventory"
	"github.com/raphi011/wtctl/internal/plan"
)

// Section headers and column rows of the text protocol.
const (
	WorktreesHeader = "=== WORKTREES ==="
	WorktreeColumns = "PATH | BRANCH | COMMIT | DIRTY | TRACKING | PR_STATUS"
	StashesHeader   = "=== STASHES ==="
	StashColumns    = "INDEX | BRANCH | MESSAGE | STAT"
	BranchesHeader  = "=== BRANCHES ==="
	BranchColumns   = "NAME | TRACKING | STATUS | HAS_WORKTREE"
	PlanHeader      = "=== PLAN ==="
	PlanColumns     = "ORDER | ACTION | KIND | TARGET | COMMIT | DEFAULT | REASON"
	ResultsHeader   = "=== RESULTS ==="
	ResultColumns   = "ORDER | ACTION | KIND | TARGET | OUTCOME | ERROR"
)

// none fills the COMMIT and DEFAULT columns of items without a value.
const none = "-"

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}

// ErrMalformed is wrapped by every parse error.
var ErrMalformed = errors.New("malformed report")

// ParseError locates a problem in a text report.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: line %d: %s", ErrMalformed, e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrMalformed }

// lineWriter accumulates the first write error.
type lineWriter struct {
	w   io.Writer
	err error
}

func (lw *lineWriter) line(s string) {
	if lw.err != nil {
		return
	}
	_, lw.err = io.WriteString(lw.w, s+"\n")
}

// WriteState writes the three-section state report. Sections are
// separated by a blank line.
func WriteState(w io.Writer, s *inventory.State) error {
	lw := &lineWriter{w: w}

	lw.line(WorktreesHeader)
	lw.line(WorktreeColumns)
	for _, wt := range s.Worktrees {
		lw.line(joinRow(wt.Path, wt.Branch, wt.HeadCommit, wt.Dirty.String(), string(wt.Tracking), wt.PR.String()))
	}

	lw.line("")
	lw.line(StashesHeader)
	lw.line(StashColumns)
	for _, st := range s.Stashes {
		lw.line(joinRow(strconv.Itoa(st.Index), st.Branch, st.Message, st.DiffStat))
	}

	lw.line("")
	lw.line(BranchesHeader)
	lw.line(BranchColumns)
	for _, b := range s.Branches {
		lw.line(joinRow(b.Name, string(b.Tracking), string(b.Status), strconv.FormatBool(b.HasWorktree)))
	}
	return lw.err
}

// WritePlan writes the plan section. ORDER is 1-based.
func WritePlan(w io.Writer, p *plan.Plan) error {
	lw := &lineWriter{w: w}
	lw.line(PlanHeader)
	lw.line(PlanColumns)
	for i, it := range p.Items {
		lw.line(joinRow(strconv.Itoa(i+1), string(it.Action), string(it.Kind), it.Target, orNone(it.Commit), orNone(string(it.Default)), it.Reason))
	}
	return lw.err
}

// WriteResults writes the results section of an execution run.
func WriteResults(w io.Writer, r *execute.Result) error {
	lw := &lineWriter{w: w}
	lw.line(ResultsHeader)
	lw.line(ResultColumns)
	for i, it := range r.Items {
		lw.line(joinRow(strconv.Itoa(i+1), string(it.Action), string(it.Kind), it.Target, it.Outcome.String(), it.Error))
	}
	return lw.err
}

type section int

const (
	sectionNone section = iota
	sectionWorktrees
	sectionStashes
	sectionBranches
	sectionPlan
	sectionOther
)

var sections = map[string]struct {
	id      section
	columns string
}{
	WorktreesHeader: {sectionWorktrees, WorktreeColumns},
	StashesHeader:   {sectionStashes, StashColumns},
	BranchesHeader:  {sectionBranches, BranchColumns},
	PlanHeader:      {sectionPlan, PlanColumns},
	ResultsHeader:   {sectionOther, ResultColumns},
}

// scanner walks a report section by section. Blank lines and unknown
// sections are skipped; each known section must start with its column row.
type scanner struct {
	sc      *bufio.Scanner
	lineNo  int
	current section
	columns string
	seen    map[section]bool
}

func newScanner(r io.Reader) *scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &scanner{sc: sc, seen: make(map[section]bool)}
}

// next returns the fields of the next data row and the section it belongs to.
func (s *scanner) next() (section, []string, error) {
	for s.sc.Scan() {
		s.lineNo++
		line := strings.TrimSuffix(s.sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "=== ") && strings.HasSuffix(line, " ===") {
			sec, ok := sections[line]
			if !ok {
				s.current, s.columns = sectionOther, ""
				continue
			}
			s.current, s.columns = sec.id, sec.columns
			s.seen[sec.id] = true
			if !s.sc.Scan() {
				return sectionNone, nil, s.errorf("missing column row after %s", line)
			}
			s.lineNo++
			if got := strings.TrimSuffix(s.sc.Text(), "\r"); got != s.columns {
				return sectionNone, nil, s.errorf("column row %q, want %q", got, s.columns)
			}
			continue
		}
		if s.current == sectionNone {
			return sectionNone, nil, s.errorf("row outside of any section")
		}
		if s.current == sectionOther {
			continue
		}
		fields := splitRow(line)
		if want := strings.Count(s.columns, "|") + 1; len(fields) != want {
			return sectionNone, nil, s.errorf("%d fields, want %d", len(fields), want)
		}
		return s.current, fields, nil
	}
	if err := s.sc.Err(); err != nil {
		return sectionNone, nil, err
	}
	return sectionNone, nil, io.EOF
}

func (s *scanner) errorf(format string, args ...any) error {
	return &ParseError{Line: s.lineNo, Reason: fmt.Sprintf(format, args...)}
}

// ParseState reads a state report written by WriteState. Fields the
// protocol does not carry (current/primary flags, stash times, anomalies)
// are left zero.
func ParseState(r io.Reader) (*inventory.State, error) {
	s := newScanner(r)
	state := &inventory.State{}
	for {
		sec, f, err := s.next()
		if errors.Is(err, io.EOF) {
			return state, nil
		}
		if err != nil {
			return nil, err
		}

		switch sec {
		case sectionWorktrees:
			wt, err := parseWorktreeRow(f)
			if err != nil {
				return nil, s.errorf("%v", err)
			}
			state.Worktrees = append(state.Worktrees, wt)
		case sectionStashes:
			idx, err := parseStashIndex(f[0])
			if err != nil {
				return nil, s.errorf("%v", err)
			}
			state.Stashes = append(state.Stashes, inventory.StashRecord{Index: idx, Branch: f[1], Message: f[2], DiffStat: f[3]})
		case sectionBranches:
			b, err := parseBranchRow(f)
			if err != nil {
				return nil, s.errorf("%v", err)
			}
			state.Branches = append(state.Branches, b)
		}
	}
}

func parseWorktreeRow(f []string) (inventory.WorktreeRecord, error) {
	dirty, err := inventory.ParseDirtyState(f[3])
	if err != nil {
		return inventory.WorktreeRecord{}, err
	}
	tracking, err := inventory.ParseTracking(f[4])
	if err != nil {
		return inventory.WorktreeRecord{}, err
	}
	pr, err := inventory.ParsePRStatus(f[5])
	if err != nil {
		return inventory.WorktreeRecord{}, err
	}
	return inventory.WorktreeRecord{Path: f[0], Branch: f[1], HeadCommit: f[2], Dirty: dirty, Tracking: tracking, PR: pr}, nil
}

func parseBranchRow(f []string) (inventory.BranchRecord, error) {
	tracking, err := inventory.ParseTracking(f[1])
	if err != nil {
		return inventory.BranchRecord{}, err
	}
	hasWT, err := strconv.ParseBool(f[3])
	if err != nil {
		return inventory.BranchRecord{}, fmt.Errorf("invalid HAS_WORKTREE %q", f[3])
	}
	return inventory.BranchRecord{Name: f[0], Tracking: tracking, Status: inventory.BranchStatus(f[2]), HasWorktree: hasWT}, nil
}

// parseStashIndex accepts "3" and "stash@{3}".
func parseStashIndex(s string) (int, error) {
	s = strings.TrimSuffix(strings.TrimPrefix(s, "stash@{"), "}")
	idx, err := strconv.Atoi(s)
	if err != nil || idx < 0 {
		return 0, fmt.Errorf("invalid stash index %q", s)
	}
	return idx, nil
}

// ParsePlan reads the plan section of a report, typically one written by
// WritePlan and edited by the decision-maker, and returns the decisions it
// carries. Rows still marked ASK are returned as listed but undecided.
// Other sections are ignored.
func ParsePlan(r io.Reader) (plan.Decisions, error) {
	s := newScanner(r)
	decisions := plan.Decisions{}
	for {
		sec, f, err := s.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if sec != sectionPlan {
			continue
		}

		action, err := plan.ParseAction(f[1])
		if err != nil {
			return nil, s.errorf("%v", err)
		}
		kind, err := plan.ParseKind(f[2])
		if err != nil {
			return nil, s.errorf("%v", err)
		}
		if f[3] == "" {
			return nil, s.errorf("empty target")
		}
		commit := f[4]
		if commit == none {
			commit = ""
		}
		key := plan.Key{Kind: kind, Target: f[3]}
		if _, dup := decisions[key]; dup {
			return nil, s.errorf("duplicate row for %s", key)
		}
		decisions[key] = plan.Decision{Action: action, Commit: commit}
	}
	if !s.seen[sectionPlan] {
		return nil, s.errorf("no %s section", PlanHeader)
	}
	return decisions, nil
}
