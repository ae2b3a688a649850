package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talonops/talon/internal/api"
	"github.com/talonops/talon/internal/ui"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the host filter keys accepted by -f",
	Run: func(cmd *cobra.Command, args []string) {
		columns := []ui.TableColumn{
			{Title: "Key", Width: 12},
			{Title: "Matches", Width: 50},
			{Title: "Example", Width: 36},
		}
		rows := make([][]string, 0, len(api.HostFilterAttributes))
		for _, attr := range api.HostFilterAttributes {
			rows = append(rows, []string{attr.Name, attr.Description, attr.Example})
		}
		fmt.Println(ui.RenderSimpleTable(columns, rows))
		fmt.Println("\nCombine filters by repeating -f; comma-delimit values to match any of them.")
	},
}

func init() {
	rootCmd.AddCommand(filtersCmd)
}
