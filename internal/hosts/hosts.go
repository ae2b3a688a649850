// Package hosts implements host search: filter-driven device discovery with
// table output and CSV export.
package hosts

import (
	"context"
	"encoding/csv"
	"io"
	"sort"
	"strings"

	"github.com/talonops/talon/internal/api"
	"github.com/talonops/talon/internal/errors"
	"github.com/talonops/talon/internal/ui"
)

// describeBatchSize caps how many device IDs are resolved per directory call.
const describeBatchSize = 500

// csvHeader is the column layout of a host search export.
var csvHeader = []string{
	"aid", "hostname", "last_seen", "local_ip", "os_version",
	"machine_domain", "containment_status", "grouping_tags",
}

// Search resolves a filter to full device records, sorted by hostname then
// device ID so output is stable across runs.
func Search(ctx context.Context, dir api.DeviceDirectory, filter *api.Filter) ([]api.Device, error) {
	ids, err := dir.QueryDeviceIDs(ctx, filter.Query())
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrAPI,
			"Failed to search for devices",
			"Check API permissions for hosts, and run 'talon filters' to review filter syntax")
	}
	if len(ids) == 0 {
		return nil, nil
	}

	devices := make([]api.Device, 0, len(ids))
	for start := 0; start < len(ids); start += describeBatchSize {
		end := start + describeBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch, describeErr := dir.Describe(ctx, ids[start:end])
		if describeErr != nil {
			return nil, errors.WrapWithCode(describeErr, errors.ErrAPI,
				"Failed to load device details", "")
		}
		for _, device := range batch {
			devices = append(devices, device)
		}
	}

	sort.Slice(devices, func(i, j int) bool {
		if devices[i].Hostname != devices[j].Hostname {
			return devices[i].Hostname < devices[j].Hostname
		}
		return devices[i].ID < devices[j].ID
	})
	return devices, nil
}

// Table renders devices for terminal display.
func Table(devices []api.Device) string {
	columns := []ui.TableColumn{
		{Title: "Hostname", Width: 20},
		{Title: "Device ID", Width: 34},
		{Title: "OS Version", Width: 24},
		{Title: "Local IP", Width: 16},
		{Title: "Domain", Width: 20},
		{Title: "Containment", Width: 12},
		{Title: "Last Seen", Width: 22},
	}
	rows := make([][]string, 0, len(devices))
	for _, d := range devices {
		rows = append(rows, []string{
			d.Hostname, d.ID, d.OSVersion, d.LocalIP,
			d.MachineDomain, d.ContainmentStatus, d.LastSeen,
		})
	}
	return ui.RenderSimpleTable(columns, rows)
}

// ExportCSV writes devices in the documented export layout. Grouping tags
// are joined with semicolons so the column stays a single CSV field.
func ExportCSV(w io.Writer, devices []api.Device) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return errors.WrapWithCode(err, errors.ErrExec, "Failed to write the CSV export", "")
	}
	for _, d := range devices {
		record := []string{
			d.ID, d.Hostname, d.LastSeen, d.LocalIP, d.OSVersion,
			d.MachineDomain, d.ContainmentStatus, strings.Join(d.Tags, ";"),
		}
		if err := writer.Write(record); err != nil {
			return errors.WrapWithCode(err, errors.ErrExec, "Failed to write the CSV export", "")
		}
	}
	writer.Flush()
	return writer.Error()
}
