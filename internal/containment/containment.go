// Package containment performs network containment actions against batches
// of devices and aggregates the per-device outcomes.
package containment

import (
	"context"
	"fmt"

	"github.com/talonops/talon/internal/api"
	"github.com/talonops/talon/internal/errors"
	"github.com/talonops/talon/internal/ui"
)

// batchSize is the maximum device count per host-action call.
const batchSize = 100

// Report aggregates the outcomes of every batch of one containment run.
type Report struct {
	Requested int
	Succeeded []string
	Errors    []api.ActionError
}

// Failed reports how many devices did not complete the action.
func (r *Report) Failed() int {
	return r.Requested - len(r.Succeeded)
}

// Contain network-contains the given devices.
func Contain(ctx context.Context, dir api.DeviceDirectory, deviceIDs []string) (*Report, error) {
	return perform(ctx, dir, api.ActionContain, deviceIDs)
}

// Lift removes network containment from the given devices.
func Lift(ctx context.Context, dir api.DeviceDirectory, deviceIDs []string) (*Report, error) {
	return perform(ctx, dir, api.ActionLiftContainment, deviceIDs)
}

// perform partitions the device set into batches and runs the action against
// each. A failing batch aborts the run; the report still carries everything
// that completed before the failure.
func perform(ctx context.Context, dir api.DeviceDirectory, action string, deviceIDs []string) (*Report, error) {
	report := &Report{Requested: len(deviceIDs)}

	for start := 0; start < len(deviceIDs); start += batchSize {
		end := start + batchSize
		if end > len(deviceIDs) {
			end = len(deviceIDs)
		}

		outcome, err := dir.PerformAction(ctx, action, deviceIDs[start:end])
		if err != nil {
			return report, errors.WrapWithCode(err, errors.ErrAPI,
				fmt.Sprintf("Failed to %s %d device(s)", describeAction(action), end-start),
				"Check API permissions for host actions")
		}
		report.Succeeded = append(report.Succeeded, outcome.Succeeded...)
		report.Errors = append(report.Errors, outcome.Errors...)
	}
	return report, nil
}

func describeAction(action string) string {
	if action == api.ActionLiftContainment {
		return "uncontain"
	}
	return "contain"
}

// ErrorMessage maps a platform action error to operator-facing text. The
// platform answers 409 when a device is already in (or leaving) the requested
// state, which reads as a conflict code without this translation.
func ErrorMessage(e api.ActionError) string {
	if e.Code == 409 {
		return "Device is in an incompatible containment state"
	}
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("Action failed with code %d", e.Code)
}

// ReportTable renders a report's error detail for terminal display.
func ReportTable(report *Report) string {
	columns := []ui.TableColumn{
		{Title: "Code", Width: 6},
		{Title: "Detail", Width: 50},
	}
	rows := make([][]string, 0, len(report.Errors))
	for _, e := range report.Errors {
		rows = append(rows, []string{fmt.Sprintf("%d", e.Code), ErrorMessage(e)})
	}
	return ui.RenderSimpleTable(columns, rows)
}
