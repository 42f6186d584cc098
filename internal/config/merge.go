package config

import (
	"maps"
	"slices"
)

// MergeLocal merges a local per-repo config into a global config,
// returning a new Config without mutating the global.
// Returns global unchanged if local is nil.
func MergeLocal(global Config, local *LocalConfig) Config {
	if local == nil {
		return global
	}

	// Fields not listed in LocalConfig (Hosts, UI) are inherited as-is.
	merged := global

	// Merge hooks by name: local overrides/adds, enabled=false removes
	merged.Hooks = mergeHooks(global.Hooks, local.Hooks)

	// Merge cleanup policy
	if local.Cleanup.StaleStashDays != nil {
		merged.Cleanup.StaleStashDays = *local.Cleanup.StaleStashDays
	}
	if len(local.Cleanup.DefaultBranches) > 0 {
		merged.Cleanup.DefaultBranches = slices.Clone(local.Cleanup.DefaultBranches)
	}
	if len(local.Cleanup.ProtectedBranches) > 0 {
		merged.Cleanup.ProtectedBranches = appendUnique(global.Cleanup.ProtectedBranches, local.Cleanup.ProtectedBranches)
	}
	if len(local.Cleanup.TempStashPatterns) > 0 {
		merged.Cleanup.TempStashPatterns = appendUnique(global.Cleanup.TempStashPatterns, local.Cleanup.TempStashPatterns)
	}

	// Merge PR lookup (replace)
	if local.PR.Lookup != nil {
		merged.PR.Lookup = *local.PR.Lookup
	}
	if local.PR.Forge != "" {
		merged.PR.Forge = local.PR.Forge
	}

	return merged
}

// mergeHooks merges local hooks into global hooks.
// Local hooks with the same name override global hooks.
// Local hooks with enabled=false remove the global hook.
func mergeHooks(global, local HooksConfig) HooksConfig {
	merged := HooksConfig{
		Hooks: make(map[string]Hook, len(global.Hooks)),
	}

	// Copy global hooks
	maps.Copy(merged.Hooks, global.Hooks)

	// Overlay local hooks
	for name, hook := range local.Hooks {
		if !hook.IsEnabled() {
			// Disable: remove from merged
			delete(merged.Hooks, name)
			continue
		}
		merged.Hooks[name] = hook
	}

	return merged
}

// appendUnique appends items from extra to base, skipping duplicates.
// Returns a new slice (never mutates base).
func appendUnique(base, extra []string) []string {
	seen := make(map[string]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}

	result := make([]string, len(base))
	copy(result, base)

	for _, v := range extra {
		if !seen[v] {
			result = append(result, v)
			seen[v] = true
		}
	}

	return result
}
