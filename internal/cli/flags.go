package cli

import (
	"context"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/talonops/talon/internal/api"
	"github.com/talonops/talon/internal/errors"
)

// DeviceFlags holds the device-selection flags shared by shell, contain,
// uncontain, and maintenance-token. The three selectors are mutually
// exclusive; with none given, every device in the tenant is selected.
type DeviceFlags struct {
	IDList  string
	IDFile  string
	Filters []string
}

// AddDeviceFlags registers -d, --device-id-file, and -f on a command.
func AddDeviceFlags(cmd *cobra.Command, flags *DeviceFlags) {
	cmd.Flags().StringVarP(&flags.IDList, "device-id-list", "d", "",
		"comma-delimited list of device IDs to target")
	cmd.Flags().StringVar(&flags.IDFile, "device-id-file", "",
		"file containing device IDs, one per line")
	cmd.Flags().StringArrayVarP(&flags.Filters, "filter", "f", nil,
		"device filter as key=value (repeatable; see 'talon filters')")
}

func (f *DeviceFlags) selectorCount() int {
	count := 0
	if f.IDList != "" {
		count++
	}
	if f.IDFile != "" {
		count++
	}
	if len(f.Filters) > 0 {
		count++
	}
	return count
}

// ResolveDeviceIDs turns the selection flags into a concrete device ID list.
// matchedAll reports that no selector was given and the whole tenant was
// queried, so callers can warn before acting on everything.
func ResolveDeviceIDs(ctx context.Context, dir api.DeviceDirectory, flags *DeviceFlags) (ids []string, matchedAll bool, err error) {
	if flags.selectorCount() > 1 {
		return nil, false, errors.New(errors.ErrConfig,
			"Only one of -d, --device-id-file, and -f may be given",
			"Pick a single way to select devices")
	}

	switch {
	case flags.IDList != "":
		ids = splitIDList(flags.IDList)

	case flags.IDFile != "":
		ids, err = readIDFile(flags.IDFile)
		if err != nil {
			return nil, false, err
		}

	default:
		filter, parseErr := api.ParseFilters(flags.Filters)
		if parseErr != nil {
			return nil, false, parseErr
		}
		ids, err = dir.QueryDeviceIDs(ctx, filter.Query())
		if err != nil {
			return nil, false, errors.WrapWithCode(err, errors.ErrAPI,
				"Failed to search for devices", "")
		}
		matchedAll = filter.Empty()
	}

	ids = dedupIDs(ids)
	if len(ids) == 0 {
		return nil, false, errors.New(errors.ErrConfig,
			"No devices matched the selection",
			"Run 'talon hosts search' to see the devices in this tenant")
	}
	return ids, matchedAll, nil
}

func splitIDList(list string) []string {
	var ids []string
	for _, id := range strings.Split(list, ",") {
		id = strings.TrimSpace(id)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// readIDFile loads device IDs one per line; blanks and # comments are skipped.
func readIDFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot read device ID file "+path,
			"Check that the file exists and is readable")
	}

	var ids []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	return ids, nil
}

func dedupIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
