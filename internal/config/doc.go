// Package config handles loading and validation of wtctl configuration.
//
// Configuration is read from ~/.config/wtctl/config.toml. The location can be
// overridden with the --config flag or the WTCTL_CONFIG environment variable.
// A missing file yields [Default]; a malformed one is an error.
//
// # Key Settings
//
//   - cleanup.stale_stash_days: days after which a default-branch stash is stale (default 30, at least 1)
//   - cleanup.default_branches: main-line branch names (default main, master)
//   - cleanup.protected_branches: branches never proposed for deletion
//   - cleanup.temp_stash_patterns: regexps for throwaway stash messages
//   - pr.lookup: enable the best-effort gh/glab pull request lookup
//   - pr.forge: force "github" or "gitlab" instead of detecting from origin
//   - ui.theme: color theme for the pretty renderer
//
// # Hooks Configuration
//
// Hooks are defined in [hooks.NAME] sections and run after each successful
// cleanup action:
//
//	[hooks.notify]
//	command = "echo removed {target}"
//	on = ["remove", "delete"]
//
// # Per-repo Overrides
//
// A .wtctl.toml at the repository root is merged over the global config by
// [MergeLocal]: scalars replace, protected branches and temp stash patterns
// are appended, hooks merge by name and enabled = false drops an inherited
// hook.
//
// # Host Mappings
//
// The [hosts] section maps custom domains to forge types for self-hosted
// GitHub Enterprise or GitLab instances.
package config
