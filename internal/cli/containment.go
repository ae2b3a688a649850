package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/talonops/talon/internal/api"
	"github.com/talonops/talon/internal/containment"
	"github.com/talonops/talon/internal/ui"
)

var (
	containDeviceFlags   DeviceFlags
	uncontainDeviceFlags DeviceFlags
	containYesFlag       bool
	uncontainYesFlag     bool
)

var containCmd = &cobra.Command{
	Use:   "contain",
	Short: "Network-contain the selected devices",
	Long: `Network-contain the selected devices: contained devices can only reach
the platform cloud until containment is lifted.

Examples:
  talon contain -d aid1,aid2
  talon contain -f Hostname=WEB-COMPROMISED-01
  talon contain -f Tag=breach-scope --yes`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContainment(cmd.Context(), api.ActionContain, &containDeviceFlags, containYesFlag)
	},
}

var uncontainCmd = &cobra.Command{
	Use:   "uncontain",
	Short: "Lift network containment from the selected devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runContainment(cmd.Context(), api.ActionLiftContainment, &uncontainDeviceFlags, uncontainYesFlag)
	},
}

func runContainment(ctx context.Context, action string, flags *DeviceFlags, skipConfirm bool) error {
	client, err := connectClient(ctx)
	if err != nil {
		return err
	}

	ids, matchedAll, err := ResolveDeviceIDs(ctx, client.Hosts, flags)
	if err != nil {
		return err
	}

	verb := "Contain"
	if action == api.ActionLiftContainment {
		verb = "Lift containment from"
	}

	if matchedAll {
		warnStyle := lipgloss.NewStyle().Foreground(ui.ColorWarning)
		fmt.Println(warnStyle.Render(fmt.Sprintf(
			"No device selector given: this targets all %d device(s) in the tenant.", len(ids))))
	}

	if !skipConfirm && term.IsTerminal(int(os.Stdin.Fd())) {
		proceed := false
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("%s %d device(s)?", verb, len(ids))).
					Affirmative("Proceed").
					Negative("Abort").
					Value(&proceed),
			),
		)
		if formErr := form.Run(); formErr != nil || !proceed {
			fmt.Println("Aborted. No action was taken.")
			return nil
		}
	}

	var report *containment.Report
	if action == api.ActionLiftContainment {
		report, err = containment.Lift(ctx, client.Hosts, ids)
	} else {
		report, err = containment.Contain(ctx, client.Hosts, ids)
	}
	if report != nil {
		printContainmentReport(report)
	}
	return err
}

func printContainmentReport(report *containment.Report) {
	fmt.Printf("%d of %d device(s) succeeded.\n", len(report.Succeeded), report.Requested)
	if len(report.Errors) > 0 {
		fmt.Println(containment.ReportTable(report))
	}
}

func init() {
	AddDeviceFlags(containCmd, &containDeviceFlags)
	containCmd.Flags().BoolVarP(&containYesFlag, "yes", "y", false,
		"skip the confirmation prompt")

	AddDeviceFlags(uncontainCmd, &uncontainDeviceFlags)
	uncontainCmd.Flags().BoolVarP(&uncontainYesFlag, "yes", "y", false,
		"skip the confirmation prompt")

	rootCmd.AddCommand(containCmd)
	rootCmd.AddCommand(uncontainCmd)
}
