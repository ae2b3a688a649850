package maintenance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonops/talon/internal/api"
	apitesting "github.com/talonops/talon/internal/api/testing"
)

func TestBulkToken(t *testing.T) {
	dir := apitesting.NewFakeDirectory()
	dir.BulkToken = "BULK-TOKEN-1234"

	token, err := Bulk(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, "BULK-TOKEN-1234", token)
}

func TestForDevicesSortsAndContinuesOnRefusal(t *testing.T) {
	dir := apitesting.NewFakeDirectory()
	dir.AddDevice(api.Device{ID: "aid-1", Hostname: "WEB-2"})
	dir.AddDevice(api.Device{ID: "aid-2", Hostname: "WEB-1"})
	dir.Tokens["aid-1"] = "TOKEN-A"
	// aid-2 has no token scripted, so the fake refuses it.

	rows, err := ForDevices(context.Background(), dir, []string{"aid-1", "aid-2"})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "WEB-1", rows[0].Hostname)
	assert.Error(t, rows[0].Err)
	assert.Empty(t, rows[0].Token)

	assert.Equal(t, "WEB-2", rows[1].Hostname)
	require.NoError(t, rows[1].Err)
	assert.Equal(t, "TOKEN-A", rows[1].Token)
}

func TestForDevicesUnknownDeviceGetsEmptyHostname(t *testing.T) {
	dir := apitesting.NewFakeDirectory()
	dir.Tokens["aid-gone"] = "TOKEN-X"

	rows, err := ForDevices(context.Background(), dir, []string{"aid-gone"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Empty(t, rows[0].Hostname)
	assert.Equal(t, "TOKEN-X", rows[0].Token)
}

func TestTableMarksRefusedTokens(t *testing.T) {
	rows := []TokenRow{
		{DeviceID: "aid-1", Hostname: "WEB-1", Token: "TOKEN-A"},
		{DeviceID: "aid-2", Hostname: "WEB-2", Err: assert.AnError},
	}

	rendered := Table(rows)
	assert.Contains(t, rendered, "TOKEN-A")
	assert.Contains(t, rendered, "unavailable")
}
