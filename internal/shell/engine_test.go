package shell

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonops/talon/internal/api"
	apitesting "github.com/talonops/talon/internal/api/testing"
	"github.com/talonops/talon/internal/logger"
)

func newTestEngine(t *testing.T, exec *apitesting.FakeExecutor, devices map[string]api.Device) (*Engine, *AuditLog, *bytes.Buffer) {
	t.Helper()

	audit, err := NewAuditLog(filepath.Join(t.TempDir(), "audit.csv"))
	require.NoError(t, err)
	t.Cleanup(func() { audit.Close() })

	out := &bytes.Buffer{}
	engine := NewEngine(
		exec,
		audit,
		NewMetadataCache(devices),
		NewConsole(out, out),
		logger.Noop(),
		func() time.Duration { return 30 * time.Second },
		nil,
	)
	return engine, audit, out
}

func TestRunGenericAuditsEveryDevice(t *testing.T) {
	exec := apitesting.NewFakeExecutor().
		AddDevice(&apitesting.FakeDevice{
			Device: api.Device{ID: "aid-1", Hostname: "WEB-1", Platform: api.PlatformLinux},
			Responses: map[string]api.CommandResult{
				"ps": {Complete: true, Stdout: "PID 1 init"},
			},
		}).
		AddDevice(&apitesting.FakeDevice{
			Device: api.Device{ID: "aid-2", Hostname: "WEB-2", Platform: api.PlatformLinux},
			Responses: map[string]api.CommandResult{
				"ps": {Complete: true, Stdout: "PID 1 systemd"},
			},
		})

	devices := map[string]api.Device{
		"aid-1": {ID: "aid-1", Hostname: "WEB-1"},
		"aid-2": {ID: "aid-2", Hostname: "WEB-2"},
	}
	engine, audit, out := newTestEngine(t, exec, devices)

	stdout, _, ok, err := engine.RunGeneric(context.Background(), "ps")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Contains(t, []string{"PID 1 init", "PID 1 systemd"}, stdout)

	assert.Equal(t, 2, audit.Rows())
	assert.Equal(t, []string{"ps"}, exec.RunCalls)
	assert.Contains(t, out.String(), "Executing command: ps")
	assert.Contains(t, out.String(), "(Output from the remaining 1 host(s) was written to the CSV output file)")
}

func TestRunGenericRepresentativeOutputComesFromACompleteResult(t *testing.T) {
	// Many offline devices and one online one: the representative output
	// must be the complete result regardless of map iteration order.
	exec := apitesting.NewFakeExecutor().
		AddDevice(&apitesting.FakeDevice{
			Device: api.Device{ID: "aid-live", Hostname: "LIVE", Platform: api.PlatformLinux},
			Responses: map[string]api.CommandResult{
				"env": {Complete: true, Stdout: "PATH=/usr/bin"},
			},
		})
	devices := map[string]api.Device{
		"aid-live": {ID: "aid-live", Hostname: "LIVE"},
	}
	for _, aid := range []string{"aid-d1", "aid-d2", "aid-d3", "aid-d4"} {
		exec.AddDevice(&apitesting.FakeDevice{
			Device:  api.Device{ID: aid, Platform: api.PlatformLinux},
			Offline: true,
		})
		devices[aid] = api.Device{ID: aid}
	}

	engine, audit, _ := newTestEngine(t, exec, devices)

	for i := 0; i < 5; i++ {
		stdout, stderr, ok, err := engine.RunGeneric(context.Background(), "env")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "PATH=/usr/bin", stdout)
		assert.Empty(t, stderr)
	}
	assert.Equal(t, 25, audit.Rows())
}

func TestRunGenericNoCompleteResults(t *testing.T) {
	exec := apitesting.NewFakeExecutor().
		AddDevice(&apitesting.FakeDevice{
			Device:  api.Device{ID: "aid-1", Hostname: "GONE-1"},
			Offline: true,
		}).
		AddDevice(&apitesting.FakeDevice{
			Device:  api.Device{ID: "aid-2", Hostname: "GONE-2"},
			Offline: true,
		})
	devices := map[string]api.Device{
		"aid-1": {ID: "aid-1", Hostname: "GONE-1"},
		"aid-2": {ID: "aid-2", Hostname: "GONE-2"},
	}
	engine, _, out := newTestEngine(t, exec, devices)

	_, _, ok, err := engine.RunGeneric(context.Background(), "ps")
	require.NoError(t, err)
	assert.False(t, ok)

	// Both devices failed with the same message; the digest lists it once.
	assert.Equal(t, 1, strings.Count(out.String(), "-> Device is offline"))
	assert.Contains(t, out.String(), "At least one error was detected.")
}

func TestRunGenericUnknownDeviceGetsPlaceholderHostname(t *testing.T) {
	exec := apitesting.NewFakeExecutor().
		AddDevice(&apitesting.FakeDevice{
			Device: api.Device{ID: "aid-ghost"},
			Responses: map[string]api.CommandResult{
				"ps": {Complete: true, Stdout: "ok"},
			},
		})

	engine, audit, _ := newTestEngine(t, exec, map[string]api.Device{})

	_, _, ok, err := engine.RunGeneric(context.Background(), "ps")
	require.NoError(t, err)
	assert.True(t, ok)
	require.NoError(t, audit.Flush())

	records := readAuditCSV(t, audit.Path())
	require.Len(t, records, 2)
	assert.Equal(t, UnknownHostname, records[1][3])
}

func TestRunGenericRowNumbersIncreaseAcrossCommands(t *testing.T) {
	exec := apitesting.NewFakeExecutor().
		AddDevice(&apitesting.FakeDevice{
			Device: api.Device{ID: "aid-1", Hostname: "ONE"},
		})
	devices := map[string]api.Device{"aid-1": {ID: "aid-1", Hostname: "ONE"}}
	engine, audit, _ := newTestEngine(t, exec, devices)

	for _, command := range []string{"ps", "env", "ls ."} {
		_, _, _, err := engine.RunGeneric(context.Background(), command)
		require.NoError(t, err)
	}

	records := readAuditCSV(t, audit.Path())
	require.Len(t, records, 4)
	for i, record := range records[1:] {
		assert.Equal(t, []string{"1", "2", "3"}[i], record[0])
	}
	assert.Equal(t, "ps", records[1][1])
	assert.Equal(t, "env", records[2][1])
	assert.Equal(t, "ls .", records[3][1])
}
