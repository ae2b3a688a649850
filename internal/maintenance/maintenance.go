// Package maintenance fetches sensor maintenance tokens, either per device
// or the tenant-wide bulk token.
package maintenance

import (
	"context"
	"sort"

	"github.com/talonops/talon/internal/api"
	"github.com/talonops/talon/internal/errors"
	"github.com/talonops/talon/internal/ui"
)

// TokenRow is the outcome of one per-device token request. Err is set when
// the platform refused the request for that device; the run continues.
type TokenRow struct {
	DeviceID string
	Hostname string
	Token    string
	Err      error
}

// Bulk fetches the tenant-wide maintenance token.
func Bulk(ctx context.Context, dir api.DeviceDirectory) (string, error) {
	token, err := dir.BulkMaintenanceToken(ctx)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrAPI,
			"Failed to fetch the bulk maintenance token",
			"Check API permissions for sensor update policies")
	}
	return token, nil
}

// ForDevices fetches a maintenance token for each device, resolving
// hostnames in one directory call first. Rows come back sorted by hostname
// so output is stable; a device the platform refuses still gets a row.
func ForDevices(ctx context.Context, dir api.DeviceDirectory, deviceIDs []string) ([]TokenRow, error) {
	devices, err := dir.Describe(ctx, deviceIDs)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrAPI,
			"Failed to load device details", "")
	}

	rows := make([]TokenRow, 0, len(deviceIDs))
	for _, id := range deviceIDs {
		row := TokenRow{DeviceID: id, Hostname: devices[id].Hostname}
		row.Token, row.Err = dir.MaintenanceToken(ctx, id)
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Hostname != rows[j].Hostname {
			return rows[i].Hostname < rows[j].Hostname
		}
		return rows[i].DeviceID < rows[j].DeviceID
	})
	return rows, nil
}

// Table renders token rows for terminal display.
func Table(rows []TokenRow) string {
	columns := []ui.TableColumn{
		{Title: "Hostname", Width: 20},
		{Title: "Device ID", Width: 34},
		{Title: "Maintenance Token", Width: 28},
	}
	rendered := make([][]string, 0, len(rows))
	for _, row := range rows {
		token := row.Token
		if row.Err != nil {
			token = "unavailable"
		}
		rendered = append(rendered, []string{row.Hostname, row.DeviceID, token})
	}
	return ui.RenderSimpleTable(columns, rendered)
}
