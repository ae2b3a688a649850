package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonops/talon/internal/api"
	apitesting "github.com/talonops/talon/internal/api/testing"
	"github.com/talonops/talon/internal/errors"
)

func TestResolveDeviceIDsRejectsMultipleSelectors(t *testing.T) {
	dir := apitesting.NewFakeDirectory()

	tests := []struct {
		name  string
		flags DeviceFlags
	}{
		{"list and file", DeviceFlags{IDList: "aid-1", IDFile: "ids.txt"}},
		{"list and filter", DeviceFlags{IDList: "aid-1", Filters: []string{"OS=Linux"}}},
		{"file and filter", DeviceFlags{IDFile: "ids.txt", Filters: []string{"OS=Linux"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ResolveDeviceIDs(context.Background(), dir, &tt.flags)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
}

func TestResolveDeviceIDsFromList(t *testing.T) {
	dir := apitesting.NewFakeDirectory()

	ids, matchedAll, err := ResolveDeviceIDs(context.Background(), dir,
		&DeviceFlags{IDList: "aid-1, aid-2,aid-1,,aid-3"})
	require.NoError(t, err)
	assert.False(t, matchedAll)
	assert.Equal(t, []string{"aid-1", "aid-2", "aid-3"}, ids, "duplicates and blanks are dropped")
}

func TestResolveDeviceIDsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ids.txt")
	content := "# compromised hosts\naid-1\n\naid-2\naid-1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	dir := apitesting.NewFakeDirectory()
	ids, matchedAll, err := ResolveDeviceIDs(context.Background(), dir, &DeviceFlags{IDFile: path})
	require.NoError(t, err)
	assert.False(t, matchedAll)
	assert.Equal(t, []string{"aid-1", "aid-2"}, ids)
}

func TestResolveDeviceIDsFromMissingFile(t *testing.T) {
	dir := apitesting.NewFakeDirectory()

	_, _, err := ResolveDeviceIDs(context.Background(), dir,
		&DeviceFlags{IDFile: "/nonexistent/ids.txt"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestResolveDeviceIDsFromFilter(t *testing.T) {
	dir := apitesting.NewFakeDirectory()
	dir.AddDevice(api.Device{ID: "aid-1", Hostname: "WEB-1"})
	dir.AddDevice(api.Device{ID: "aid-2", Hostname: "WEB-2"})

	ids, matchedAll, err := ResolveDeviceIDs(context.Background(), dir,
		&DeviceFlags{Filters: []string{"OS=Linux"}})
	require.NoError(t, err)
	assert.False(t, matchedAll, "an explicit filter is not a match-all")
	assert.Len(t, ids, 2)
}

func TestResolveDeviceIDsNoSelectorMatchesAll(t *testing.T) {
	dir := apitesting.NewFakeDirectory()
	dir.AddDevice(api.Device{ID: "aid-1", Hostname: "WEB-1"})

	ids, matchedAll, err := ResolveDeviceIDs(context.Background(), dir, &DeviceFlags{})
	require.NoError(t, err)
	assert.True(t, matchedAll)
	assert.Equal(t, []string{"aid-1"}, ids)
}

func TestResolveDeviceIDsEmptySelection(t *testing.T) {
	dir := apitesting.NewFakeDirectory()

	_, _, err := ResolveDeviceIDs(context.Background(), dir, &DeviceFlags{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestResolveDeviceIDsBadFilter(t *testing.T) {
	dir := apitesting.NewFakeDirectory()

	_, _, err := ResolveDeviceIDs(context.Background(), dir,
		&DeviceFlags{Filters: []string{"NotAKey=value"}})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}
