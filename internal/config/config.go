package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/BurntSushi/toml"
)

// Hook defines a shell command run after cleanup actions
type Hook struct {
	Command     string   `toml:"command"`
	Description string   `toml:"description"`
	On          []string `toml:"on"`      // actions this hook runs on: "remove", "drop", "delete", "cleanup" (all)
	Enabled     *bool    `toml:"enabled"` // nil means enabled; false disables an inherited hook
}

// IsEnabled reports whether the hook should run.
func (h Hook) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// HooksConfig holds hook-related configuration
type HooksConfig struct {
	Hooks map[string]Hook `toml:"-"` // parsed from [hooks.NAME] sections
}

// CleanupConfig holds the classification policy knobs
type CleanupConfig struct {
	StaleStashDays    int      `toml:"stale_stash_days"`    // stashes on a default branch older than this are stale
	DefaultBranches   []string `toml:"default_branches"`    // main-line branch names
	ProtectedBranches []string `toml:"protected_branches"`  // never proposed for deletion
	TempStashPatterns []string `toml:"temp_stash_patterns"` // regexps matching throwaway stash messages
}

// PRConfig controls the best-effort pull request lookup
type PRConfig struct {
	Lookup bool   `toml:"lookup"`
	Forge  string `toml:"forge"` // "github", "gitlab" or empty for auto-detection
}

// UIConfig holds presentation settings for the pretty renderer
type UIConfig struct {
	Theme string `toml:"theme"` // "default", "dracula", "nord", "gruvbox", "none"
}

// Config holds the wtctl configuration
type Config struct {
	Cleanup CleanupConfig
	PR      PRConfig
	Hosts   map[string]string // domain -> forge type mapping
	UI      UIConfig
	Hooks   HooksConfig
}

// Defaults for the cleanup policy.
const (
	DefaultStaleStashDays = 30
)

// DefaultBranches are the branch names treated as the main line when not configured.
var DefaultBranches = []string{"main", "master"}

// DefaultTempStashPatterns match messages of stashes created only to switch branches.
var DefaultTempStashPatterns = []string{
	`(?i)temp(orary)? stash`,
	`(?i)branch switch`,
	`(?i)autostash`,
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Cleanup: CleanupConfig{
			StaleStashDays:    DefaultStaleStashDays,
			DefaultBranches:   append([]string(nil), DefaultBranches...),
			TempStashPatterns: append([]string(nil), DefaultTempStashPatterns...),
		},
		PR: PRConfig{Lookup: true},
		UI: UIConfig{Theme: "default"},
		Hooks: HooksConfig{
			Hooks: map[string]Hook{},
		},
	}
}

// StaleAfter returns the stash age after which a default-branch stash is stale.
func (c CleanupConfig) StaleAfter() time.Duration {
	return time.Duration(c.StaleStashDays) * 24 * time.Hour
}

// TempStashMatchers compiles TempStashPatterns. Patterns are validated by
// Load, so invalid entries are skipped here.
func (c CleanupConfig) TempStashMatchers() []*regexp.Regexp {
	var out []*regexp.Regexp
	for _, p := range c.TempStashPatterns {
		if re, err := regexp.Compile(p); err == nil {
			out = append(out, re)
		}
	}
	return out
}

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "WTCTL_CONFIG"

// Path returns the config file path: flagPath if set, then $WTCTL_CONFIG,
// then ~/.config/wtctl/config.toml.
func Path(flagPath string) (string, error) {
	if flagPath != "" {
		return flagPath, nil
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "wtctl", "config.toml"), nil
}

// rawConfig is used for initial TOML parsing before processing hooks
type rawConfig struct {
	Cleanup struct {
		StaleStashDays    *int     `toml:"stale_stash_days"`
		DefaultBranches   []string `toml:"default_branches"`
		ProtectedBranches []string `toml:"protected_branches"`
		TempStashPatterns []string `toml:"temp_stash_patterns"`
	} `toml:"cleanup"`
	PR struct {
		Lookup *bool  `toml:"lookup"`
		Forge  string `toml:"forge"`
	} `toml:"pr"`
	Hosts map[string]string `toml:"hosts"`
	UI    UIConfig          `toml:"ui"`
	Hooks map[string]any    `toml:"hooks"`
}

// Load reads the config file resolved by Path.
// Returns Default() if the file doesn't exist (no error).
// Returns an error only if the file exists but is invalid.
func Load(flagPath string) (Config, error) {
	path, err := Path(flagPath)
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads and validates a config file at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML config data, applies defaults and validates the result.
func Parse(data []byte) (Config, error) {
	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg := Default()
	if raw.Cleanup.StaleStashDays != nil {
		cfg.Cleanup.StaleStashDays = *raw.Cleanup.StaleStashDays
	}
	if len(raw.Cleanup.DefaultBranches) > 0 {
		cfg.Cleanup.DefaultBranches = raw.Cleanup.DefaultBranches
	}
	cfg.Cleanup.ProtectedBranches = raw.Cleanup.ProtectedBranches
	if raw.Cleanup.TempStashPatterns != nil {
		cfg.Cleanup.TempStashPatterns = raw.Cleanup.TempStashPatterns
	}
	if raw.PR.Lookup != nil {
		cfg.PR.Lookup = *raw.PR.Lookup
	}
	cfg.PR.Forge = raw.PR.Forge
	cfg.Hosts = raw.Hosts
	if raw.UI.Theme != "" {
		cfg.UI.Theme = raw.UI.Theme
	}
	cfg.Hooks = parseHooksConfig(raw.Hooks)

	if err := validate(cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// parseHooksConfig extracts HooksConfig from raw TOML map
// Handles [hooks.NAME] sections
func parseHooksConfig(raw map[string]any) HooksConfig {
	hc := HooksConfig{
		Hooks: make(map[string]Hook),
	}

	for key, value := range raw {
		hookMap, ok := value.(map[string]any)
		if !ok {
			continue
		}
		hook := Hook{}
		if cmd, ok := hookMap["command"].(string); ok {
			hook.Command = cmd
		}
		if desc, ok := hookMap["description"].(string); ok {
			hook.Description = desc
		}
		if enabled, ok := hookMap["enabled"].(bool); ok {
			hook.Enabled = &enabled
		}
		if on, ok := hookMap["on"].([]any); ok {
			for _, v := range on {
				if s, ok := v.(string); ok {
					hook.On = append(hook.On, s)
				}
			}
		}
		hc.Hooks[key] = hook
	}

	return hc
}

const defaultConfig = `# wtctl configuration

[cleanup]
# Stashes on a default branch older than this many days are proposed for DROP.
stale_stash_days = 30

# Branch names treated as the main line of development.
default_branches = ["main", "master"]

# Branches that are never proposed for deletion, in addition to default_branches.
# protected_branches = ["release"]

# Regular expressions matching throwaway stash messages (e.g. stashes taken
# just to switch branches). Matching stashes are proposed for DROP.
temp_stash_patterns = ['(?i)temp(orary)? stash', '(?i)branch switch', '(?i)autostash']

[pr]
# Look up pull/merge request state with gh or glab. Failures degrade to "none".
lookup = true
# forge = "github"   # force a forge instead of detecting it from the origin URL

# Host mappings for self-hosted GitHub Enterprise or GitLab instances
# [hosts]
# "github.mycompany.com" = "github"
# "gitlab.internal.corp" = "gitlab"

[ui]
# Theme for --format pretty: default, dracula, nord, gruvbox, none
theme = "default"

# Hooks run after each successful cleanup action, from the repository root.
# "on" values: "remove" (worktree), "drop" (stash), "delete" (branch), "cleanup" (all)
#
# [hooks.notify]
# command = "echo 'cleaned {kind} {target}' >> ~/.wtctl.log"
# description = "Log cleaned entities"
# on = ["cleanup"]
#
# Placeholders: {kind} {target} {action} {branch} {path} {repo}
`

// DefaultFile returns the commented default config written by Init.
func DefaultFile() string {
	return defaultConfig
}

// Init creates a default config file at path (resolved by Path when empty).
// If force is true, overwrites an existing file.
// Returns the path to the created file.
func Init(flagPath string, force bool) (string, error) {
	path, err := Path(flagPath)
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", err
	}

	if err := os.WriteFile(path, []byte(defaultConfig), 0644); err != nil {
		return "", err
	}

	return path, nil
}
