package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonops/talon/internal/api"
	apitesting "github.com/talonops/talon/internal/api/testing"
	"github.com/talonops/talon/internal/errors"
)

func TestListSortsByEmail(t *testing.T) {
	dir := apitesting.NewFakeUserDirectory()
	dir.AddUser(api.User{UID: "u2", Email: "zoe@example.com"})
	dir.AddUser(api.User{UID: "u1", Email: "amir@example.com"})

	listed, err := List(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "amir@example.com", listed[0].Email)
	assert.Equal(t, "zoe@example.com", listed[1].Email)
}

func TestParseRoles(t *testing.T) {
	roles, err := ParseRoles("remote_responder, dashboard_viewer,,")
	require.NoError(t, err)
	assert.Equal(t, []string{"remote_responder", "dashboard_viewer"}, roles)

	_, err = ParseRoles(" , ")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestGrantAndRevoke(t *testing.T) {
	dir := apitesting.NewFakeUserDirectory()
	dir.AddUser(api.User{UID: "u1", Email: "amir@example.com", Roles: []string{"dashboard_viewer"}})

	require.NoError(t, Grant(context.Background(), dir, "u1", []string{"remote_responder"}))
	require.Len(t, dir.GrantCalls, 1)
	assert.Equal(t, []string{"remote_responder"}, dir.GrantCalls[0].Roles)

	require.NoError(t, Revoke(context.Background(), dir, "u1", []string{"dashboard_viewer"}))
	require.Len(t, dir.RevokeCalls, 1)

	listed, err := List(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"remote_responder"}, listed[0].Roles)
}

func TestGrantUnknownUser(t *testing.T) {
	dir := apitesting.NewFakeUserDirectory()

	err := Grant(context.Background(), dir, "missing", []string{"remote_responder"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAPI))
}
