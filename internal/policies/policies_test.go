package policies

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/talonops/talon/internal/api"
	apitesting "github.com/talonops/talon/internal/api/testing"
	"github.com/talonops/talon/internal/errors"
)

func TestValidateKind(t *testing.T) {
	assert.NoError(t, ValidateKind("prevention"))
	assert.NoError(t, ValidateKind("response"))

	err := ValidateKind("firewall")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestListSortsByName(t *testing.T) {
	store := apitesting.NewFakePolicyStore()
	store.AddPolicy(api.Policy{ID: "p2", Kind: "prevention", Name: "Workstations"})
	store.AddPolicy(api.Policy{ID: "p1", Kind: "prevention", Name: "Servers"})
	store.AddPolicy(api.Policy{ID: "p3", Kind: "response", Name: "Default"})

	listed, err := List(context.Background(), store, "prevention")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "Servers", listed[0].Name)
	assert.Equal(t, "Workstations", listed[1].Name)
}

func TestExportRoundTripsSettings(t *testing.T) {
	store := apitesting.NewFakePolicyStore()
	store.AddPolicy(api.Policy{
		ID: "p1", Kind: "prevention", Name: "Servers", Platform: "Windows",
		Enabled: true,
		Settings: map[string]interface{}{
			"cloud_ml": map[string]interface{}{"detection": "AGGRESSIVE"},
		},
	})

	var buf bytes.Buffer
	require.NoError(t, Export(context.Background(), store, "prevention", "p1", &buf))

	var decoded api.Policy
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Servers", decoded.Name)
	assert.Equal(t, "prevention", decoded.Kind)
	assert.True(t, decoded.Enabled)
	require.Contains(t, decoded.Settings, "cloud_ml")
}

func TestExportUnknownPolicy(t *testing.T) {
	store := apitesting.NewFakePolicyStore()

	err := Export(context.Background(), store, "prevention", "missing", &bytes.Buffer{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrAPI))
}

func TestImportAssignsAFreshID(t *testing.T) {
	store := apitesting.NewFakePolicyStore()
	doc := `
id: old-id
kind: response
name: Incident Response
platform: Linux
enabled: true
`

	newID, err := Import(context.Background(), store, strings.NewReader(doc))
	require.NoError(t, err)
	assert.NotEmpty(t, newID)
	assert.NotEqual(t, "old-id", newID)

	require.Len(t, store.ImportCalls, 1)
	assert.Empty(t, store.ImportCalls[0].ID, "document IDs are discarded on import")
	assert.Equal(t, "Incident Response", store.ImportCalls[0].Name)
}

func TestImportRejectsBadDocuments(t *testing.T) {
	store := apitesting.NewFakePolicyStore()

	tests := []struct {
		name string
		doc  string
	}{
		{"not yaml", "kind: [unclosed"},
		{"missing name", "kind: prevention\nenabled: true\n"},
		{"unknown kind", "kind: firewall\nname: X\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Import(context.Background(), store, strings.NewReader(tt.doc))
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrConfig))
		})
	}
	assert.Empty(t, store.ImportCalls)
}
