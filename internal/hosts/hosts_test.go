package hosts

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonops/talon/internal/api"
	apitesting "github.com/talonops/talon/internal/api/testing"
)

func TestSearchSortsByHostname(t *testing.T) {
	dir := apitesting.NewFakeDirectory()
	dir.AddDevice(api.Device{ID: "aid-2", Hostname: "WEB-2"})
	dir.AddDevice(api.Device{ID: "aid-1", Hostname: "DC-1"})
	dir.AddDevice(api.Device{ID: "aid-3", Hostname: "WEB-1"})

	devices, err := Search(context.Background(), dir, nil)
	require.NoError(t, err)
	require.Len(t, devices, 3)
	assert.Equal(t, "DC-1", devices[0].Hostname)
	assert.Equal(t, "WEB-1", devices[1].Hostname)
	assert.Equal(t, "WEB-2", devices[2].Hostname)
}

func TestSearchEmptyTenant(t *testing.T) {
	dir := apitesting.NewFakeDirectory()

	devices, err := Search(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Empty(t, devices)
	assert.Empty(t, dir.DescribeCalls, "no IDs means no describe call")
}

func TestSearchBatchesDescribeCalls(t *testing.T) {
	dir := apitesting.NewFakeDirectory()
	for i := 0; i < describeBatchSize+50; i++ {
		dir.AddDevice(api.Device{
			ID:       fmt.Sprintf("aid-%04d", i),
			Hostname: fmt.Sprintf("HOST-%04d", i),
		})
	}

	devices, err := Search(context.Background(), dir, nil)
	require.NoError(t, err)
	assert.Len(t, devices, describeBatchSize+50)
	require.Len(t, dir.DescribeCalls, 2)
	assert.Len(t, dir.DescribeCalls[0], describeBatchSize)
	assert.Len(t, dir.DescribeCalls[1], 50)
}

func TestExportCSV(t *testing.T) {
	devices := []api.Device{
		{
			ID: "aid-1", Hostname: "WEB-1", LastSeen: "2026-08-01T10:00:00Z",
			LocalIP: "10.0.0.5", OSVersion: "Windows Server 2022",
			MachineDomain: "CORP", ContainmentStatus: "normal",
			Tags: []string{"critical", "dmz"},
		},
		{ID: "aid-2", Hostname: "WEB-2"},
	}

	var buf bytes.Buffer
	require.NoError(t, ExportCSV(&buf, devices))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, csvHeader, records[0])
	assert.Equal(t, []string{
		"aid-1", "WEB-1", "2026-08-01T10:00:00Z", "10.0.0.5",
		"Windows Server 2022", "CORP", "normal", "critical;dmz",
	}, records[1])
	assert.Equal(t, "", records[2][7], "no tags exports an empty column")
}

func TestTableIncludesEveryDevice(t *testing.T) {
	devices := []api.Device{
		{ID: "aid-1", Hostname: "WEB-1", OSVersion: "Ubuntu 24.04"},
		{ID: "aid-2", Hostname: "WEB-2", OSVersion: "RHEL 9"},
	}

	rendered := Table(devices)
	assert.Contains(t, rendered, "WEB-1")
	assert.Contains(t, rendered, "WEB-2")
	assert.Contains(t, rendered, "Hostname")
}
