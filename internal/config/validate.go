package config

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// Valid enum values for configuration fields.
var (
	ValidForgeTypes   = []string{"github", "gitlab"}
	ValidThemes       = []string{"default", "dracula", "nord", "gruvbox", "none"}
	ValidHookTriggers = []string{"remove", "drop", "delete", "cleanup"}
)

func validate(cfg Config) error {
	if err := validateCleanup(&cfg.Cleanup.StaleStashDays, cfg.Cleanup.TempStashPatterns, ""); err != nil {
		return err
	}
	if err := validateEnum(cfg.PR.Forge, "pr.forge", ValidForgeTypes); err != nil {
		return err
	}
	for host, forgeType := range cfg.Hosts {
		if !slices.Contains(ValidForgeTypes, forgeType) {
			return fmt.Errorf("invalid forge type %q for host %q: must be %s", forgeType, host, formatOptions(ValidForgeTypes))
		}
	}
	if err := validateEnum(cfg.UI.Theme, "ui.theme", ValidThemes); err != nil {
		return err
	}
	return validateHooks(cfg.Hooks, "")
}

// validateCleanup checks the cleanup knobs shared by the global and the
// per-repo file. A nil staleDays is unset. contextInfo names the file in
// error messages.
func validateCleanup(staleDays *int, patterns []string, contextInfo string) error {
	if staleDays != nil && *staleDays < 1 {
		return withContext(fmt.Errorf("invalid cleanup.stale_stash_days %d: must be at least 1", *staleDays), contextInfo)
	}
	for i, p := range patterns {
		if _, err := regexp.Compile(p); err != nil {
			return withContext(fmt.Errorf("invalid cleanup.temp_stash_patterns[%d] %q: %w", i, p, err), contextInfo)
		}
	}
	return nil
}

// validateHooks checks every enabled hook. Disabled entries only switch off
// an inherited hook and need no command.
func validateHooks(hc HooksConfig, contextInfo string) error {
	for name, hook := range hc.Hooks {
		if !hook.IsEnabled() {
			continue
		}
		if hook.Command == "" {
			return withContext(fmt.Errorf("hook %q has no command", name), contextInfo)
		}
		for _, on := range hook.On {
			if !slices.Contains(ValidHookTriggers, on) {
				return withContext(fmt.Errorf("hook %q: invalid on value %q: must be %s", name, on, formatOptions(ValidHookTriggers)), contextInfo)
			}
		}
	}
	return nil
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

func withContext(err error, contextInfo string) error {
	if contextInfo == "" {
		return err
	}
	return fmt.Errorf("%w (in %s)", err, contextInfo)
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
