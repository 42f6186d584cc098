package classify

import (
	"regexp"
	"slices"
	"time"

	"github.com/raphi011/wtctl/internal/config"
)

// Policy holds the knobs of the decision tables.
type Policy struct {
	// DefaultBranches are main-line branches: protected, and their old
	// stashes are dropped.
	DefaultBranches []string
	// ProtectedBranches are never proposed for deletion.
	ProtectedBranches []string
	// TempStash matches messages of throwaway stashes.
	TempStash []*regexp.Regexp
	// StaleAfter is the age after which a default-branch stash is stale.
	StaleAfter time.Duration
	// Now is the reference time for stash ages.
	Now time.Time
}

// PolicyFromConfig builds a Policy from the [cleanup] config section.
// defaultBranch, when known from the remote, is added to the default branches.
func PolicyFromConfig(cfg config.CleanupConfig, defaultBranch string, now time.Time) Policy {
	defaults := slices.Clone(cfg.DefaultBranches)
	if defaultBranch != "" && !slices.Contains(defaults, defaultBranch) {
		defaults = append(defaults, defaultBranch)
	}
	return Policy{
		DefaultBranches:   defaults,
		ProtectedBranches: slices.Clone(cfg.ProtectedBranches),
		TempStash:         cfg.TempStashMatchers(),
		StaleAfter:        cfg.StaleAfter(),
		Now:               now,
	}
}

func (p Policy) isDefault(branch string) bool {
	return slices.Contains(p.DefaultBranches, branch)
}

func (p Policy) isProtected(branch string) bool {
	return p.isDefault(branch) || slices.Contains(p.ProtectedBranches, branch)
}

func (p Policy) isTempStash(msg string) bool {
	for _, re := range p.TempStash {
		if re.MatchString(msg) {
			return true
		}
	}
	return false
}

func (p Policy) isStale(created time.Time) bool {
	return !created.IsZero() && p.Now.Sub(created) > p.StaleAfter
}
