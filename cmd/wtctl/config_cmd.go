package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphi011/wtctl/internal/config"
	"github.com/raphi011/wtctl/internal/git"
	"github.com/raphi011/wtctl/internal/log"
	"github.com/raphi011/wtctl/internal/output"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage wtctl configuration.

Config file: ~/.config/wtctl/config.toml
Override with $` + config.EnvConfigPath + ` or --config.`,
		Example: `  wtctl config init     # Create default config
  wtctl config init -s  # Print default config`,
	}

	cmd.AddCommand(newConfigInitCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var (
		force  bool
		stdout bool
		local  bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create default config file",
		Args:  cobra.NoArgs,
		Long: `Create default config file.

Without flags, creates the global config file.
With --local, creates per-repo overrides at .wtctl.toml in the repository root.`,
		Example: `  wtctl config init          # Create global config
  wtctl config init --local  # Create per-repo overrides
  wtctl config init -f       # Overwrite existing config
  wtctl config init -s       # Print config to stdout`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if stdout {
				content := config.DefaultFile()
				if local {
					content = config.DefaultLocalConfig()
				}
				output.FromContext(ctx).Print(content)
				return nil
			}

			var (
				path string
				err  error
			)
			if local {
				path, err = initLocalConfig(force)
			} else {
				path, err = config.Init(configPath, force)
			}
			if err != nil {
				return fmt.Errorf("init config: %w", err)
			}
			log.FromContext(ctx).Printf("Created config file: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing config")
	cmd.Flags().BoolVarP(&stdout, "stdout", "s", false, "Print config to stdout")
	cmd.Flags().BoolVar(&local, "local", false, "Create per-repo "+config.LocalConfigFileName+" instead of global config")

	return cmd
}

// initLocalConfig writes the per-repo template to the root of the repository
// selected by -C or the working directory.
func initLocalConfig(force bool) (string, error) {
	dir := dirFlag
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		dir = wd
	}
	info, err := git.Open(dir)
	if err != nil {
		return "", err
	}
	return config.InitLocal(info.Root, force)
}
