package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talonops/talon/internal/api"
	"github.com/talonops/talon/internal/errors"
	"github.com/talonops/talon/internal/hosts"
)

var (
	hostsSearchFilters []string
	hostsSearchExport  string
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Search and inspect devices",
}

var hostsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search devices by filter, print a table or export CSV",
	Long: `Search the tenant's devices. With no filter, every device is listed.

Examples:
  talon hosts search
  talon hosts search -f OS=Windows -f Domain=CORP.EXAMPLE.COM
  talon hosts search -f OnlineState=online -e devices.csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		filter, err := api.ParseFilters(hostsSearchFilters)
		if err != nil {
			return err
		}

		client, err := connectClient(ctx)
		if err != nil {
			return err
		}

		devices, err := hosts.Search(ctx, client.Hosts, filter)
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("No devices matched.")
			return nil
		}

		if hostsSearchExport != "" {
			file, createErr := os.Create(hostsSearchExport)
			if createErr != nil {
				return errors.WrapWithCode(createErr, errors.ErrExec,
					"Cannot create export file "+hostsSearchExport,
					"Check the path and directory permissions")
			}
			defer file.Close()
			if exportErr := hosts.ExportCSV(file, devices); exportErr != nil {
				return exportErr
			}
			fmt.Printf("Exported %d device(s) to %s\n", len(devices), hostsSearchExport)
			return nil
		}

		fmt.Println(hosts.Table(devices))
		fmt.Printf("\n%d device(s)\n", len(devices))
		return nil
	},
}

func init() {
	hostsSearchCmd.Flags().StringArrayVarP(&hostsSearchFilters, "filter", "f", nil,
		"device filter as key=value (repeatable; see 'talon filters')")
	hostsSearchCmd.Flags().StringVarP(&hostsSearchExport, "export", "e", "",
		"write results to a CSV file instead of printing a table")

	hostsCmd.AddCommand(hostsSearchCmd)
	rootCmd.AddCommand(hostsCmd)
}
