package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/talonops/talon/internal/errors"
	"github.com/talonops/talon/internal/policies"
)

var policiesKindFlag string

var policiesCmd = &cobra.Command{
	Use:   "policies",
	Short: "List, export, and import platform policies",
}

var policiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List policies of one kind",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := connectClient(ctx)
		if err != nil {
			return err
		}
		listed, err := policies.List(ctx, client.Policies, policiesKindFlag)
		if err != nil {
			return err
		}
		if len(listed) == 0 {
			fmt.Printf("No %s policies found.\n", policiesKindFlag)
			return nil
		}
		fmt.Println(policies.Table(listed))
		return nil
	},
}

var policiesDescribeCmd = &cobra.Command{
	Use:   "describe <policy-id>",
	Short: "Print one policy as YAML",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := connectClient(ctx)
		if err != nil {
			return err
		}
		return policies.Export(ctx, client.Policies, policiesKindFlag, args[0], os.Stdout)
	},
}

var policiesExportCmd = &cobra.Command{
	Use:   "export <policy-id> <file>",
	Short: "Export one policy to a YAML file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := connectClient(ctx)
		if err != nil {
			return err
		}

		file, err := os.Create(args[1])
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrExec,
				"Cannot create export file "+args[1],
				"Check the path and directory permissions")
		}
		defer file.Close()

		if err := policies.Export(ctx, client.Policies, policiesKindFlag, args[0], file); err != nil {
			return err
		}
		fmt.Printf("Exported policy %s to %s\n", args[0], args[1])
		return nil
	},
}

var policiesImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Create a policy from a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		client, err := connectClient(ctx)
		if err != nil {
			return err
		}

		file, err := os.Open(args[0])
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot read policy file "+args[0],
				"Check that the file exists and is readable")
		}
		defer file.Close()

		newID, err := policies.Import(ctx, client.Policies, file)
		if err != nil {
			return err
		}
		fmt.Printf("Created policy %s\n", newID)
		return nil
	},
}

func init() {
	policiesCmd.PersistentFlags().StringVar(&policiesKindFlag, "kind", policies.KindPrevention,
		"policy kind: prevention or response")

	policiesCmd.AddCommand(policiesListCmd)
	policiesCmd.AddCommand(policiesDescribeCmd)
	policiesCmd.AddCommand(policiesExportCmd)
	policiesCmd.AddCommand(policiesImportCmd)
	rootCmd.AddCommand(policiesCmd)
}
