// Package policies lists, exports and imports platform policy documents as
// YAML. Export and import round-trip the platform's schemaless settings
// blob untouched.
package policies

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/talonops/talon/internal/api"
	"github.com/talonops/talon/internal/errors"
	"github.com/talonops/talon/internal/ui"
)

// Policy kinds accepted by the commands.
const (
	KindPrevention = "prevention"
	KindResponse   = "response"
)

// ValidateKind checks a --kind value.
func ValidateKind(kind string) error {
	if kind == KindPrevention || kind == KindResponse {
		return nil
	}
	return errors.New(errors.ErrConfig,
		fmt.Sprintf("Unknown policy kind %q", kind),
		fmt.Sprintf("Use --kind %s or --kind %s", KindPrevention, KindResponse))
}

// List returns all policies of one kind, sorted by name.
func List(ctx context.Context, store api.PolicyStore, kind string) ([]api.Policy, error) {
	if err := ValidateKind(kind); err != nil {
		return nil, err
	}
	listed, err := store.ListPolicies(ctx, kind)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrAPI,
			fmt.Sprintf("Failed to list %s policies", kind),
			"Check API permissions for policies")
	}
	sort.Slice(listed, func(i, j int) bool {
		return listed[i].Name < listed[j].Name
	})
	return listed, nil
}

// Export writes one policy as a YAML document.
func Export(ctx context.Context, store api.PolicyStore, kind, id string, w io.Writer) error {
	if err := ValidateKind(kind); err != nil {
		return err
	}
	policy, err := store.DescribePolicy(ctx, kind, id)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrAPI,
			fmt.Sprintf("Failed to fetch %s policy %s", kind, id),
			"Run 'talon policies list' to see the available policy IDs")
	}

	data, err := yaml.Marshal(policy)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrExec,
			"Failed to serialize the policy document", "")
	}
	_, err = w.Write(data)
	return err
}

// Import reads a YAML policy document and creates it in the tenant. Any ID
// in the document is discarded: the platform assigns a new one, which is
// returned.
func Import(ctx context.Context, store api.PolicyStore, r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read the policy document", "")
	}

	var policy api.Policy
	if err := yaml.Unmarshal(data, &policy); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Policy document is not valid YAML",
			"Export an existing policy to see the expected layout")
	}
	if strings.TrimSpace(policy.Name) == "" {
		return "", errors.New(errors.ErrConfig,
			"Policy document has no name", "")
	}
	if err := ValidateKind(policy.Kind); err != nil {
		return "", err
	}

	policy.ID = ""
	newID, err := store.ImportPolicy(ctx, &policy)
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrAPI,
			"Failed to import the policy", "Check API permissions for policies")
	}
	return newID, nil
}

// Table renders policies for terminal display.
func Table(listed []api.Policy) string {
	columns := []ui.TableColumn{
		{Title: "Name", Width: 24},
		{Title: "ID", Width: 34},
		{Title: "Platform", Width: 10},
		{Title: "Enabled", Width: 8},
		{Title: "Description", Width: 30},
	}
	rows := make([][]string, 0, len(listed))
	for _, p := range listed {
		rows = append(rows, []string{
			p.Name, p.ID, p.Platform, fmt.Sprintf("%t", p.Enabled), p.Description,
		})
	}
	return ui.RenderSimpleTable(columns, rows)
}
