package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talonops/talon/internal/maintenance"
)

var (
	maintenanceDeviceFlags DeviceFlags
	maintenanceBulkFlag    bool
)

var maintenanceTokenCmd = &cobra.Command{
	Use:   "maintenance-token",
	Short: "Fetch sensor maintenance tokens",
	Long: `Fetch the maintenance token needed to modify or remove a sensor.

With -b the tenant-wide bulk token is fetched; otherwise tokens are fetched
per device for the selected device set.

Examples:
  talon maintenance-token -b
  talon maintenance-token -d aid1,aid2
  talon maintenance-token -f Hostname=DECOM-*`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, err := connectClient(ctx)
		if err != nil {
			return err
		}

		if maintenanceBulkFlag {
			token, bulkErr := maintenance.Bulk(ctx, client.Hosts)
			if bulkErr != nil {
				return bulkErr
			}
			fmt.Printf("Bulk maintenance token: %s\n", token)
			return nil
		}

		ids, _, err := ResolveDeviceIDs(ctx, client.Hosts, &maintenanceDeviceFlags)
		if err != nil {
			return err
		}
		rows, err := maintenance.ForDevices(ctx, client.Hosts, ids)
		if err != nil {
			return err
		}
		fmt.Println(maintenance.Table(rows))
		return nil
	},
}

func init() {
	AddDeviceFlags(maintenanceTokenCmd, &maintenanceDeviceFlags)
	maintenanceTokenCmd.Flags().BoolVarP(&maintenanceBulkFlag, "bulk", "b", false,
		"fetch the tenant-wide bulk token instead of per-device tokens")

	rootCmd.AddCommand(maintenanceTokenCmd)
}
