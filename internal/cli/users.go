package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/talonops/talon/internal/users"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List tenant users and manage their roles",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every user in the tenant",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := connectClient(ctx)
		if err != nil {
			return err
		}
		listed, err := users.List(ctx, client.Users)
		if err != nil {
			return err
		}
		fmt.Println(users.Table(listed))
		fmt.Printf("\n%d user(s)\n", len(listed))
		return nil
	},
}

var usersAddRoleCmd = &cobra.Command{
	Use:   "add-role <uid> <role,role,...>",
	Short: "Grant roles to a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		roles, err := users.ParseRoles(args[1])
		if err != nil {
			return err
		}
		client, err := connectClient(ctx)
		if err != nil {
			return err
		}
		if err := users.Grant(ctx, client.Users, args[0], roles); err != nil {
			return err
		}
		fmt.Printf("Granted %d role(s) to %s\n", len(roles), args[0])
		return nil
	},
}

var usersRemoveRoleCmd = &cobra.Command{
	Use:   "remove-role <uid> <role,role,...>",
	Short: "Revoke roles from a user",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		roles, err := users.ParseRoles(args[1])
		if err != nil {
			return err
		}
		client, err := connectClient(ctx)
		if err != nil {
			return err
		}
		if err := users.Revoke(ctx, client.Users, args[0], roles); err != nil {
			return err
		}
		fmt.Printf("Revoked %d role(s) from %s\n", len(roles), args[0])
		return nil
	},
}

func init() {
	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersAddRoleCmd)
	usersCmd.AddCommand(usersRemoveRoleCmd)
	rootCmd.AddCommand(usersCmd)
}
