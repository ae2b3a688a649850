package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/talonops/talon/internal/config"
	"github.com/talonops/talon/internal/shell"
	"github.com/talonops/talon/internal/ui"
)

var (
	shellDeviceFlags DeviceFlags
	shellQueueFlag   bool
	shellTimeoutFlag int
	shellScriptFlag  string
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Open a batch remote-execution shell on the selected devices",
	Long: `Open an interactive shell that multiplexes every command across all
selected devices at once. Each command's per-device output is written to a
CSV audit log; the first host's output is echoed to the screen.

Device selection (pick one):
  -d aid1,aid2             explicit device IDs
  --device-id-file ids.txt device IDs from a file
  -f Hostname=WEB-*        devices matching a filter

With no selector, every device in the tenant is targeted.

Examples:
  talon shell -f OS=Linux
  talon shell -d aid1,aid2 -q -t 60
  talon shell -f Tag=critical-assets -s triage-commands.txt`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := connectClient(ctx)
		if err != nil {
			return err
		}

		ids, matchedAll, err := ResolveDeviceIDs(ctx, client.Hosts, &shellDeviceFlags)
		if err != nil {
			return err
		}
		if matchedAll {
			warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)
			fmt.Println(warnStyle.Render(fmt.Sprintf(
				"No device selector given: connecting to all %d device(s) in the tenant.", len(ids))))
		}

		logDir, err := config.LogDir(ConfigDir())
		if err != nil {
			return err
		}
		csvPath := filepath.Join(logDir,
			fmt.Sprintf("shell_%s.csv", time.Now().Format("2006-01-02_15-04-05")))

		opts := shell.Options{
			Client:        client,
			DeviceIDs:     ids,
			CSVPath:       csvPath,
			Timeout:       time.Duration(shellTimeoutFlag) * time.Second,
			Queueing:      shellQueueFlag,
			StartupScript: shellScriptFlag,
		}
		// Piped stdin drives the shell line by line instead of the
		// interactive editor.
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			opts.Input = os.Stdin
		}

		prompt, err := shell.NewPrompt(ctx, opts)
		if err != nil {
			return err
		}
		return prompt.Run(ctx)
	},
}

func init() {
	AddDeviceFlags(shellCmd, &shellDeviceFlags)
	shellCmd.Flags().BoolVarP(&shellQueueFlag, "queueing", "q", false,
		"queue commands for offline devices (delivered when they reconnect)")
	shellCmd.Flags().IntVarP(&shellTimeoutFlag, "timeout", "t", 30,
		"per-command timeout in seconds")
	shellCmd.Flags().StringVarP(&shellScriptFlag, "script", "s", "",
		"run a file of shell commands before reading input")

	rootCmd.AddCommand(shellCmd)
}
