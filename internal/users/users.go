// Package users lists tenant user accounts and manages their role grants.
package users

import (
	"context"
	"sort"
	"strings"

	"github.com/talonops/talon/internal/api"
	"github.com/talonops/talon/internal/errors"
	"github.com/talonops/talon/internal/ui"
)

// List returns every tenant user, sorted by email.
func List(ctx context.Context, dir api.UserDirectory) ([]api.User, error) {
	listed, err := dir.ListUsers(ctx)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrAPI,
			"Failed to list users", "Check API permissions for user management")
	}
	sort.Slice(listed, func(i, j int) bool {
		return listed[i].Email < listed[j].Email
	})
	return listed, nil
}

// ParseRoles splits a comma-delimited role list, dropping empty entries.
func ParseRoles(value string) ([]string, error) {
	var roles []string
	for _, role := range strings.Split(value, ",") {
		role = strings.TrimSpace(role)
		if role != "" {
			roles = append(roles, role)
		}
	}
	if len(roles) == 0 {
		return nil, errors.New(errors.ErrConfig,
			"No roles given",
			"Pass a comma-delimited role list, e.g. remote_responder,dashboard_viewer")
	}
	return roles, nil
}

// Grant adds roles to a user account.
func Grant(ctx context.Context, dir api.UserDirectory, uid string, roles []string) error {
	if err := dir.GrantRoles(ctx, uid, roles); err != nil {
		return errors.WrapWithCode(err, errors.ErrAPI,
			"Failed to grant roles to "+uid, "Check the UID and API permissions for user management")
	}
	return nil
}

// Revoke removes roles from a user account.
func Revoke(ctx context.Context, dir api.UserDirectory, uid string, roles []string) error {
	if err := dir.RevokeRoles(ctx, uid, roles); err != nil {
		return errors.WrapWithCode(err, errors.ErrAPI,
			"Failed to revoke roles from "+uid, "Check the UID and API permissions for user management")
	}
	return nil
}

// Table renders users for terminal display.
func Table(listed []api.User) string {
	columns := []ui.TableColumn{
		{Title: "Email", Width: 28},
		{Title: "Name", Width: 22},
		{Title: "UID", Width: 36},
		{Title: "Roles", Width: 30},
	}
	rows := make([][]string, 0, len(listed))
	for _, u := range listed {
		name := strings.TrimSpace(u.FirstName + " " + u.LastName)
		rows = append(rows, []string{u.Email, name, u.UID, strings.Join(u.Roles, ", ")})
	}
	return ui.RenderSimpleTable(columns, rows)
}
