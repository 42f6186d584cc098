package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-repo config file at the repository root.
const LocalConfigFileName = ".wtctl.toml"

// LocalConfig holds per-repo configuration overrides from .wtctl.toml.
// Pointer fields and zero-value strings indicate "not set" (inherit from global).
type LocalConfig struct {
	Hooks   HooksConfig  `toml:"-"` // merge by name into global
	Cleanup LocalCleanup `toml:"cleanup"`
	PR      LocalPR      `toml:"pr"`
}

// LocalCleanup holds local cleanup policy overrides
type LocalCleanup struct {
	StaleStashDays    *int     `toml:"stale_stash_days"`
	DefaultBranches   []string `toml:"default_branches"`    // replaces global
	ProtectedBranches []string `toml:"protected_branches"`  // appended to global
	TempStashPatterns []string `toml:"temp_stash_patterns"` // appended to global
}

// LocalPR holds local pull request lookup overrides
type LocalPR struct {
	Lookup *bool  `toml:"lookup"`
	Forge  string `toml:"forge"`
}

// rawLocalConfig is used for initial TOML parsing before processing hooks
type rawLocalConfig struct {
	Hooks   map[string]any `toml:"hooks"`
	Cleanup LocalCleanup   `toml:"cleanup"`
	PR      LocalPR        `toml:"pr"`
}

// LoadLocal reads a per-repo .wtctl.toml config from the given repo path.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(repoPath string) (*LocalConfig, error) {
	configFile := filepath.Join(repoPath, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var raw rawLocalConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}

	local := &LocalConfig{
		Hooks:   parseHooksConfig(raw.Hooks),
		Cleanup: raw.Cleanup,
		PR:      raw.PR,
	}

	if err := validateCleanup(local.Cleanup.StaleStashDays, local.Cleanup.TempStashPatterns, configFile); err != nil {
		return nil, err
	}
	if err := validateEnum(local.PR.Forge, "pr.forge", ValidForgeTypes); err != nil {
		return nil, withContext(err, configFile)
	}
	if err := validateHooks(local.Hooks, configFile); err != nil {
		return nil, err
	}

	return local, nil
}

// defaultLocalConfig is the template for wtctl config init --local
const defaultLocalConfig = `# wtctl local config (per-repo overrides)
# Place this file at the root of the repository.
# Settings here override the global config for this repo only.

# Cleanup policy
# [cleanup]
# stale_stash_days = 14
# default_branches = ["develop"]          # replaces the global list
# protected_branches = ["release"]        # added to the global list
# temp_stash_patterns = ['^On \w+: ci']   # added to the global list

# Pull request lookup
# [pr]
# lookup = false
# forge = "gitlab"

# Hooks - add repo-specific hooks or override global hooks
# Set enabled = false to disable a global hook for this repo
#
# [hooks.reindex]
# command = "make index"
# description = "Rebuild the code index"
# on = ["remove"]
#
# [hooks.global-hook-name]
# enabled = false  # Disable this global hook for this repo
`

// DefaultLocalConfig returns the default local configuration template content.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}

// InitLocal writes the local config template to repoPath.
// If force is true, overwrites an existing file.
func InitLocal(repoPath string, force bool) (string, error) {
	path := filepath.Join(repoPath, LocalConfigFileName)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("local config already exists: " + path)
		}
	}
	if err := os.WriteFile(path, []byte(defaultLocalConfig), 0644); err != nil {
		return "", err
	}
	return path, nil
}
