// Package cli implements the talon command-line interface.
//
// The package is organized around Cobra commands, with each command
// delegating to an internal package for the actual work:
//
//	talon shell              - Interactive batch remote-execution shell
//	talon hosts search       - Search devices, print or export as CSV
//	talon contain/uncontain  - Network containment actions
//	talon maintenance-token  - Fetch sensor maintenance tokens
//	talon policies ...       - Policy list/describe/export/import
//	talon users ...          - User accounts and role grants
//	talon filters            - Document the host filter keys
//	talon profiles ...       - Manage auth profiles in config.yaml
//
// Global flags (--config-dir, --profile, --verbose) are defined on the root
// command. Device selection flags (-d, --device-id-file, -f) are shared by
// the commands that target device sets; see flags.go.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talonops/talon/internal/config"
	"github.com/talonops/talon/internal/logger"
)

// Global flags available to all subcommands.
var (
	configDirFlag string
	profileFlag   string
	verboseFlag   bool
)

// rootCmd is the base command all subcommands hang off.
var rootCmd = &cobra.Command{
	Use:   "talon",
	Short: "Operator toolkit for the Talon endpoint security platform",
	Long: `talon is an operator toolkit for the Talon endpoint security platform.

It multiplexes remote-execution sessions across many endpoints at once,
searches and contains hosts, and manages policies, users, and sensor
maintenance tokens.

Get started:
  talon profiles new       Create an auth profile
  talon hosts search       Find devices
  talon shell -f OS=Linux  Open a batch shell on every Linux host`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verboseFlag {
			os.Setenv("TALON_DEBUG", "1")
			logger.SetDefault(logger.NewEnvLogger("talon"))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDirFlag, "config-dir", "",
		"config directory (default ~/.talon, or $TALON_CONFIG_DIR)")
	rootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "",
		"auth profile to use (default: the config file's default profile)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false,
		"enable debug logging")

	rootCmd.AddCommand(completionCmd)
}

// ConfigDir resolves the configuration directory from the flag or defaults.
func ConfigDir() string {
	if configDirFlag != "" {
		return configDirFlag
	}
	return config.DefaultDir()
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// completionCmd generates shell completion scripts.
var completionCmd = &cobra.Command{
	Use:       "completion [bash|zsh|fish|powershell]",
	Short:     "Generate shell completion script",
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return rootCmd.GenBashCompletion(os.Stdout)
		case "zsh":
			return rootCmd.GenZshCompletion(os.Stdout)
		case "fish":
			return rootCmd.GenFishCompletion(os.Stdout, true)
		default:
			return rootCmd.GenPowerShellCompletion(os.Stdout)
		}
	},
}
