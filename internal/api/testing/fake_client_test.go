package testing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonops/talon/internal/api"
)

// The fakes must satisfy the capability surfaces they stand in for.
var (
	_ api.RemoteExecutor  = (*FakeExecutor)(nil)
	_ api.DeviceDirectory = (*FakeDirectory)(nil)
	_ api.ScriptStore     = (*FakeScriptStore)(nil)
	_ api.Downloader      = (*FakeDownloader)(nil)
	_ api.PolicyStore     = (*FakePolicyStore)(nil)
	_ api.UserDirectory   = (*FakeUserDirectory)(nil)
)

func TestFakeExecutorConnectRespectsQueueing(t *testing.T) {
	exec := NewFakeExecutor()
	exec.AddDevice(&FakeDevice{
		Device:  api.Device{ID: "aid-1", Platform: api.PlatformLinux},
		Offline: true,
	})

	results, err := exec.Connect(context.Background(), []string{"aid-1"}, false, time.Second)
	require.NoError(t, err)
	assert.False(t, results["aid-1"].Connected())

	results, err = exec.Connect(context.Background(), []string{"aid-1"}, true, time.Second)
	require.NoError(t, err)
	assert.True(t, results["aid-1"].OfflineQueued)
	assert.True(t, results["aid-1"].Connected())
	assert.Equal(t, 2, exec.Connects())
}

func TestFakeExecutorQueuedGetCompletesLater(t *testing.T) {
	exec := NewFakeExecutor()
	exec.AddDevice(&FakeDevice{
		Device:  api.Device{ID: "aid-1", Platform: api.PlatformWindows},
		Offline: true,
	})

	requests, err := exec.Get(context.Background(), `C:\evidence.zip`, time.Second)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.True(t, requests[0].Devices["aid-1"].OfflineQueued)

	files, err := exec.GetStatus(context.Background(), requests[0].ID, time.Second)
	require.NoError(t, err)
	assert.Empty(t, files, "nothing uploaded while the device is offline")

	exec.CompleteQueuedGet(requests[0].ID, "aid-1", `C:\evidence.zip`)
	files, err = exec.GetStatus(context.Background(), requests[0].ID, time.Second)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "aid-1", files[0].DeviceID)
	assert.Len(t, files[0].SHA256, 64)
}
