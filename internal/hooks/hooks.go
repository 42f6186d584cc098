package hooks

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/raphi011/wtctl/internal/cmd"
	"github.com/raphi011/wtctl/internal/config"
	"github.com/raphi011/wtctl/internal/log"
	"github.com/raphi011/wtctl/internal/plan"
)

// shellQuote escapes a string for safe use in shell commands.
// It wraps the value in single quotes and escapes any embedded single quotes.
func shellQuote(s string) string {
	// e.g., "it's" becomes 'it'\''s'
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// Trigger identifies which cleanup action fired the hook.
type Trigger string

const (
	TriggerRemove Trigger = "remove" // worktree removed
	TriggerDrop   Trigger = "drop"   // stash dropped
	TriggerDelete Trigger = "delete" // branch deleted
	// TriggerCleanup in a hook's "on" list matches every action.
	TriggerCleanup Trigger = "cleanup"
)

// TriggerFor maps a mutating action to its trigger.
func TriggerFor(a plan.Action) (Trigger, bool) {
	switch a {
	case plan.ActionRemove:
		return TriggerRemove, true
	case plan.ActionDrop:
		return TriggerDrop, true
	case plan.ActionDelete:
		return TriggerDelete, true
	}
	return "", false
}

// Context holds the values for placeholder substitution
type Context struct {
	Kind   string            // worktree, stash or branch
	Target string            // worktree path, stash ref or branch name
	Action string            // REMOVE, DROP or DELETE
	Branch string            // associated branch, may be empty
	Path   string            // worktree path for worktree items
	Repo   string            // repository root
	Env    map[string]string // custom variables from --arg key=value flags
	DryRun bool              // if true, log the command instead of executing
}

// ContextFor builds the substitution context for an executed item.
func ContextFor(item plan.ActionItem, repo string, env map[string]string) Context {
	c := Context{
		Kind:   string(item.Kind),
		Target: item.Target,
		Action: string(item.Action),
		Branch: item.Branch,
		Repo:   repo,
		Env:    env,
	}
	if item.Kind == plan.KindWorktree {
		c.Path = item.Target
	}
	return c
}

// HookMatch represents a hook that matched the current action
type HookMatch struct {
	Hook *config.Hook
	Name string
}

// SelectHooks returns the hooks whose "on" list matches trigger, ordered by
// name. Hooks without "on" never run automatically.
func SelectHooks(cfg config.HooksConfig, noHook bool, trigger Trigger) []HookMatch {
	if noHook {
		return nil
	}

	var matches []HookMatch
	for name, hook := range cfg.Hooks {
		if hook.IsEnabled() && len(hook.On) > 0 && hookMatchesTrigger(hook, trigger) {
			hookCopy := hook
			matches = append(matches, HookMatch{Hook: &hookCopy, Name: name})
		}
	}
	slices.SortFunc(matches, func(a, b HookMatch) int { return strings.Compare(a.Name, b.Name) })
	return matches
}

func hookMatchesTrigger(hook config.Hook, trigger Trigger) bool {
	for _, on := range hook.On {
		if on == string(TriggerCleanup) || on == string(trigger) {
			return true
		}
	}
	return false
}

// Runner runs configured hooks after successful cleanup actions.
// The zero value runs nothing.
type Runner struct {
	Config config.HooksConfig
	Exec   cmd.Runner
	Repo   string // repository root; hooks run from here
	Env    map[string]string
	NoHook bool
	DryRun bool
}

// AfterAction runs every hook matching item's action. Failures are logged as
// warnings and never affect the item's outcome.
func (r *Runner) AfterAction(ctx context.Context, item plan.ActionItem) {
	trigger, ok := TriggerFor(item.Action)
	if !ok {
		return
	}
	hc := ContextFor(item, r.Repo, r.Env)
	hc.DryRun = r.DryRun
	RunForEach(ctx, r.Exec, SelectHooks(r.Config, r.NoHook, trigger), hc, r.Repo)
}

// RunForEach runs all matched hooks for a single item.
// Logs failures as warnings with target context.
func RunForEach(ctx context.Context, runner cmd.Runner, matches []HookMatch, hc Context, workDir string) {
	for _, match := range matches {
		if err := runHook(ctx, runner, match.Name, match.Hook, hc, workDir); err != nil {
			log.FromContext(ctx).Warnf("hook %q failed for %s %s: %v", match.Name, hc.Kind, hc.Target, err)
		}
	}
}

// runHook executes a single hook with variable substitution. Hook output
// goes to the diagnostic stream so stdout keeps only the report.
func runHook(ctx context.Context, runner cmd.Runner, name string, hook *config.Hook, hc Context, workDir string) error {
	command := SubstitutePlaceholders(hook.Command, hc)
	l := log.FromContext(ctx)

	if hc.DryRun {
		l.Printf("[dry-run] %s: %s\n", name, command)
		return nil
	}
	if runner == nil {
		runner = cmd.Exec{}
	}

	l.Debug("running hook", "name", name, "target", hc.Target)
	out, err := runner.Output(ctx, workDir, "sh", "-c", command)
	if len(out) > 0 {
		l.Printf("%s", out)
	}
	if err != nil {
		return err
	}

	if hook.Description != "" {
		l.Printf("  ✓ %s\n", hook.Description)
	}
	return nil
}

// ParseEnv parses a slice of "key=value" strings into a map.
// Returns an error if any entry doesn't contain "=".
func ParseEnv(envSlice []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, e := range envSlice {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("invalid env format %q: expected KEY=VALUE", e)
		}
		if key == "" {
			return nil, fmt.Errorf("invalid env format %q: key cannot be empty", e)
		}
		result[key] = value
	}
	return result, nil
}

// placeholderRegex matches {key}, {key:raw}, or {key:-default}.
//   - {key}           - value is shell-quoted
//   - {key:raw}       - value is used as-is (no quoting)
//   - {key:-default}  - value is shell-quoted, uses default if key not set
var placeholderRegex = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(?:(:raw)|:-([^}]*))?\}`)

// SubstitutePlaceholders replaces {placeholder} with shell-quoted values from Context.
// Values are properly escaped to prevent command injection. The command is
// scanned once, so braces inside a substituted value are never expanded.
//
// Static placeholders: {kind}, {target}, {action}, {branch}, {path}, {repo}.
// An empty static value counts as not set. Env placeholders come from
// Context.Env; static names take precedence.
func SubstitutePlaceholders(command string, hc Context) string {
	static := map[string]string{
		"kind":   hc.Kind,
		"target": hc.Target,
		"action": hc.Action,
		"branch": hc.Branch,
		"path":   hc.Path,
		"repo":   hc.Repo,
	}

	return placeholderRegex.ReplaceAllStringFunc(command, func(match string) string {
		submatch := placeholderRegex.FindStringSubmatch(match)
		if submatch == nil {
			return match
		}
		key := submatch[1]
		isRaw := submatch[2] == ":raw"
		defaultVal := submatch[3]

		val := defaultVal
		if v, ok := static[key]; ok {
			if v != "" {
				val = v
			}
		} else if v, ok := hc.Env[key]; ok {
			val = v
		}
		if isRaw {
			return val
		}
		return shellQuote(val)
	})
}
