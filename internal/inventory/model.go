package inventory

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/raphi011/wtctl/internal/forge"
	"github.com/raphi011/wtctl/internal/git"
)

// Detached is the branch name recorded for worktrees on a detached HEAD.
const Detached = "detached"

// EmptyStat is the diff stat recorded for stashes without changes.
const EmptyStat = "empty"

// DirtyState counts a worktree's uncommitted changes.
type DirtyState struct {
	Modified  int
	Untracked int
	Unknown   bool // status could not be read; never treated as clean
}

// Clean reports whether the worktree has no uncommitted changes.
func (d DirtyState) Clean() bool {
	return !d.Unknown && d.Modified == 0 && d.Untracked == 0
}

// String formats the state as "clean", "dirty(<m>mod,<u>new)" or "unknown".
func (d DirtyState) String() string {
	switch {
	case d.Unknown:
		return "unknown"
	case d.Clean():
		return "clean"
	}
	return fmt.Sprintf("dirty(%dmod,%dnew)", d.Modified, d.Untracked)
}

// MarshalText implements encoding.TextMarshaler.
func (d DirtyState) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DirtyState) UnmarshalText(b []byte) error {
	v, err := ParseDirtyState(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// ParseDirtyState is the inverse of DirtyState.String.
func ParseDirtyState(s string) (DirtyState, error) {
	switch s {
	case "clean":
		return DirtyState{}, nil
	case "unknown":
		return DirtyState{Unknown: true}, nil
	}
	var d DirtyState
	if _, err := fmt.Sscanf(s, "dirty(%dmod,%dnew)", &d.Modified, &d.Untracked); err != nil {
		return DirtyState{}, fmt.Errorf("invalid dirty state %q", s)
	}
	return d, nil
}

// Tracking is the relationship between a local branch and its upstream.
type Tracking string

const (
	TrackingNoRemote Tracking = "no-remote"
	TrackingGone     Tracking = "gone"
	TrackingAhead    Tracking = "ahead"
	TrackingBehind   Tracking = "behind"
	TrackingUpToDate Tracking = "up-to-date"
	TrackingNA       Tracking = "n/a"
)

// ParseTracking validates a tracking value.
func ParseTracking(s string) (Tracking, error) {
	switch t := Tracking(s); t {
	case TrackingNoRemote, TrackingGone, TrackingAhead, TrackingBehind, TrackingUpToDate, TrackingNA:
		return t, nil
	}
	return "", fmt.Errorf("invalid tracking %q", s)
}

// TrackingFromAnnotation maps an upstream name and git's track annotation
// ("[gone]", "ahead 2, behind 1", ...) to a Tracking value. A branch that
// is both ahead and behind counts as ahead.
func TrackingFromAnnotation(upstream, track string) Tracking {
	switch {
	case strings.Contains(track, "gone"):
		return TrackingGone
	case upstream == "":
		return TrackingNoRemote
	case strings.Contains(track, "ahead"):
		return TrackingAhead
	case strings.Contains(track, "behind"):
		return TrackingBehind
	}
	return TrackingUpToDate
}

// BranchStatus summarises a branch's divergence from its upstream.
type BranchStatus string

const (
	StatusGone      BranchStatus = "gone"
	StatusAhead     BranchStatus = "ahead"
	StatusBehind    BranchStatus = "behind"
	StatusUpToDate  BranchStatus = "up-to-date"
	StatusLocalOnly BranchStatus = "local-only"
)

// Status returns the branch status implied by t.
func (t Tracking) Status() BranchStatus {
	switch t {
	case TrackingGone:
		return StatusGone
	case TrackingAhead:
		return StatusAhead
	case TrackingBehind:
		return StatusBehind
	case TrackingUpToDate:
		return StatusUpToDate
	}
	return StatusLocalOnly
}

// PRStatus is the state of the pull request associated with a branch.
// The zero value means no PR was found.
type PRStatus struct {
	State  string // forge.PRStateOpen, ..., or PRStateNA; empty for none
	Number int
}

// PRStateNA marks records for which a PR lookup makes no sense.
const PRStateNA = "n/a"

// PRNone is the status of branches without a pull request.
var PRNone = PRStatus{}

// PRNotApplicable is the status of detached worktrees.
var PRNotApplicable = PRStatus{State: PRStateNA}

// PRFromInfo converts a forge lookup result.
func PRFromInfo(info *forge.PRInfo) PRStatus {
	if info == nil {
		return PRNone
	}
	return PRStatus{State: info.State, Number: info.Number}
}

// None reports whether no pull request is associated.
func (p PRStatus) None() bool { return p.State == "" }

// Merged reports whether the pull request was merged.
func (p PRStatus) Merged() bool { return p.State == forge.PRStateMerged }

// Open reports whether the pull request is open.
func (p PRStatus) Open() bool { return p.State == forge.PRStateOpen }

// String formats the status as "none", "n/a" or "<STATE>#<n>".
func (p PRStatus) String() string {
	switch p.State {
	case "":
		return "none"
	case PRStateNA:
		return PRStateNA
	}
	return fmt.Sprintf("%s#%d", p.State, p.Number)
}

// MarshalText implements encoding.TextMarshaler.
func (p PRStatus) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *PRStatus) UnmarshalText(b []byte) error {
	v, err := ParsePRStatus(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePRStatus is the inverse of PRStatus.String.
func ParsePRStatus(s string) (PRStatus, error) {
	switch s {
	case "none":
		return PRNone, nil
	case PRStateNA:
		return PRNotApplicable, nil
	}
	state, num, ok := strings.Cut(s, "#")
	if !ok {
		return PRStatus{}, fmt.Errorf("invalid PR status %q", s)
	}
	n, err := strconv.Atoi(num)
	if err != nil || n < 0 {
		return PRStatus{}, fmt.Errorf("invalid PR number in %q", s)
	}
	switch state {
	case forge.PRStateOpen, forge.PRStateMerged, forge.PRStateClosed:
	default:
		return PRStatus{}, fmt.Errorf("invalid PR state in %q", s)
	}
	return PRStatus{State: state, Number: n}, nil
}

// WorktreeRecord is one worktree of the repository.
type WorktreeRecord struct {
	Path       string     `json:"path" yaml:"path"`
	Branch     string     `json:"branch" yaml:"branch"` // Detached for a detached HEAD
	HeadCommit string     `json:"commit" yaml:"commit"`
	Dirty      DirtyState `json:"dirty" yaml:"dirty"`
	Tracking   Tracking   `json:"tracking" yaml:"tracking"`
	PR         PRStatus   `json:"pr_status" yaml:"pr_status"`
	IsCurrent  bool       `json:"is_current" yaml:"is_current"`
	IsPrimary  bool       `json:"is_primary" yaml:"is_primary"`
	Locked     bool       `json:"locked,omitempty" yaml:"locked,omitempty"`
	Prunable   bool       `json:"prunable,omitempty" yaml:"prunable,omitempty"`
}

// IsDetached reports whether the worktree has no branch checked out.
func (w WorktreeRecord) IsDetached() bool {
	return w.Branch == Detached
}

// StashRecord is one stash entry.
type StashRecord struct {
	Index     int       `json:"index" yaml:"index"`
	Branch    string    `json:"branch" yaml:"branch"`
	Message   string    `json:"message" yaml:"message"`
	DiffStat  string    `json:"stat" yaml:"stat"` // EmptyStat when the stash has no diff
	Commit    string    `json:"commit,omitempty" yaml:"commit,omitempty"`
	CreatedAt time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
}

// Ref returns the stash reference, e.g. "stash@{1}".
func (s StashRecord) Ref() string {
	return git.StashRef(s.Index)
}

// BranchRecord is one local branch.
type BranchRecord struct {
	Name        string       `json:"name" yaml:"name"`
	Tracking    Tracking     `json:"tracking" yaml:"tracking"`
	Status      BranchStatus `json:"status" yaml:"status"`
	HasWorktree bool         `json:"has_worktree" yaml:"has_worktree"`
	IsCurrent   bool         `json:"is_current" yaml:"is_current"`
	Upstream    string       `json:"upstream,omitempty" yaml:"upstream,omitempty"`
	PR          PRStatus     `json:"pr_status" yaml:"pr_status"`
}

// Anomaly kinds.
const (
	AnomalyWorktreeEntry = "worktree-entry"
	AnomalyStatus        = "status"
	AnomalyTracking      = "tracking"
	AnomalyStashList     = "stash-list"
	AnomalyStashEntry    = "stash-entry"
	AnomalyStashStat     = "stash-stat"
	AnomalyBranchList    = "branch-list"
	AnomalyBranchEntry   = "branch-entry"
	AnomalyPRLookup      = "pr-lookup"
)

// Anomaly records an entry that was skipped or degraded during collection.
type Anomaly struct {
	Kind   string `json:"kind" yaml:"kind"`
	Target string `json:"target" yaml:"target"`
	Reason string `json:"reason" yaml:"reason"`
}

func (a Anomaly) Error() string {
	return fmt.Sprintf("%s %s: %s", a.Kind, a.Target, a.Reason)
}

// State is everything collected in one run.
type State struct {
	Worktrees   []WorktreeRecord `json:"worktrees" yaml:"worktrees"`
	Stashes     []StashRecord    `json:"stashes" yaml:"stashes"`
	Branches    []BranchRecord   `json:"branches" yaml:"branches"`
	Anomalies   []Anomaly        `json:"anomalies,omitempty" yaml:"anomalies,omitempty"`
	CollectedAt time.Time        `json:"collected_at,omitzero" yaml:"collected_at,omitempty"`
}

// Current returns the current worktree, or nil.
func (s *State) Current() *WorktreeRecord {
	for i := range s.Worktrees {
		if s.Worktrees[i].IsCurrent {
			return &s.Worktrees[i]
		}
	}
	return nil
}

// WorktreeForBranch returns the worktree that has branch checked out, or nil.
func (s *State) WorktreeForBranch(branch string) *WorktreeRecord {
	for i := range s.Worktrees {
		if !s.Worktrees[i].IsDetached() && s.Worktrees[i].Branch == branch {
			return &s.Worktrees[i]
		}
	}
	return nil
}

// Branch returns the branch record named name, or nil.
func (s *State) Branch(name string) *BranchRecord {
	for i := range s.Branches {
		if s.Branches[i].Name == name {
			return &s.Branches[i]
		}
	}
	return nil
}
