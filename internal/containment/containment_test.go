package containment

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonops/talon/internal/api"
	apitesting "github.com/talonops/talon/internal/api/testing"
)

func deviceIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("aid-%04d", i)
	}
	return ids
}

func TestContainPartitionsIntoBatches(t *testing.T) {
	dir := apitesting.NewFakeDirectory()
	ids := deviceIDs(250)

	report, err := Contain(context.Background(), dir, ids)
	require.NoError(t, err)

	require.Len(t, dir.ActionCalls, 3)
	assert.Len(t, dir.ActionCalls[0].IDs, 100)
	assert.Len(t, dir.ActionCalls[1].IDs, 100)
	assert.Len(t, dir.ActionCalls[2].IDs, 50)
	for _, call := range dir.ActionCalls {
		assert.Equal(t, api.ActionContain, call.Action)
	}

	assert.Equal(t, 250, report.Requested)
	assert.Len(t, report.Succeeded, 250)
	assert.Zero(t, report.Failed())
}

func TestLiftUsesTheLiftAction(t *testing.T) {
	dir := apitesting.NewFakeDirectory()

	_, err := Lift(context.Background(), dir, []string{"aid-1"})
	require.NoError(t, err)
	require.Len(t, dir.ActionCalls, 1)
	assert.Equal(t, api.ActionLiftContainment, dir.ActionCalls[0].Action)
}

func TestContainAggregatesPartialFailures(t *testing.T) {
	dir := apitesting.NewFakeDirectory()
	dir.ActionOutcomes = []*api.ActionOutcome{
		{
			Succeeded: []string{"aid-1"},
			Errors:    []api.ActionError{{Code: 409, Message: "conflict"}},
		},
	}

	report, err := Contain(context.Background(), dir, []string{"aid-1", "aid-2"})
	require.NoError(t, err)
	assert.Equal(t, 2, report.Requested)
	assert.Equal(t, []string{"aid-1"}, report.Succeeded)
	assert.Equal(t, 1, report.Failed())
	require.Len(t, report.Errors, 1)
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  api.ActionError
		want string
	}{
		{"conflict maps to containment-state text", api.ActionError{Code: 409, Message: "Conflict"},
			"Device is in an incompatible containment state"},
		{"platform message passes through", api.ActionError{Code: 403, Message: "Access denied"},
			"Access denied"},
		{"bare code gets a generic message", api.ActionError{Code: 500},
			"Action failed with code 500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.err))
		})
	}
}
