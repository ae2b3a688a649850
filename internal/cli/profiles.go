package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/talonops/talon/internal/config"
	"github.com/talonops/talon/internal/errors"
	"github.com/talonops/talon/internal/ui"
)

var (
	profileNameFlag        string
	profileDescriptionFlag string
	profileBackendFlag     string
	profileCloudFlag       string
	profileClientIDFlag    string
	profileMemberCIDFlag   string
	profileDefaultFlag     bool
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "Manage auth profiles in the config file",
}

var profilesNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create an auth profile",
	Long: `Create an auth profile in the config file.

Run without flags for an interactive form. The client secret is always read
without echo; in non-interactive use, set TALON_CLIENT_SECRET.

Examples:
  talon profiles new
  talon profiles new --name prod --cloud us-1 --client-id ABC123`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(ConfigDir())
		if err != nil {
			return err
		}

		name := profileNameFlag
		profile := config.Profile{
			Description: profileDescriptionFlag,
			Auth: config.AuthConfig{
				Backend:   profileBackendFlag,
				Cloud:     profileCloudFlag,
				ClientID:  profileClientIDFlag,
				MemberCID: profileMemberCIDFlag,
			},
		}

		interactive := term.IsTerminal(int(os.Stdin.Fd()))
		if name == "" || profile.Auth.ClientID == "" {
			if !interactive {
				return errors.New(errors.ErrConfig,
					"Missing required flags for non-interactive use",
					"Pass --name and --client-id, or run from a terminal for the interactive form")
			}
			if err := runProfileForm(&name, &profile); err != nil {
				return err
			}
		}

		if _, exists := cfg.Profiles[name]; exists {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("A profile named %q already exists", name),
				"Delete it first with 'talon profiles delete', or pick another name")
		}

		secret, err := readClientSecret(interactive)
		if err != nil {
			return err
		}
		profile.Auth.ClientSecret = secret

		cfg.Profiles[name] = profile
		if profileDefaultFlag || len(cfg.Profiles) == 1 {
			cfg.Default = name
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(ConfigDir(), cfg); err != nil {
			return err
		}

		fmt.Printf("Created profile %q in %s\n", name, ConfigDir())
		return nil
	},
}

// runProfileForm collects the profile fields interactively. The client
// secret is deliberately not part of the form; it is read without echo
// afterwards.
func runProfileForm(name *string, profile *config.Profile) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Profile name").
				Value(name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("a profile name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description (optional)").
				Value(&profile.Description),
			huh.NewSelect[string]().
				Title("Auth backend").
				Options(
					huh.NewOption("API keys", config.BackendAPIKeys),
					huh.NewOption("MSSP (parent/child tenants)", config.BackendMSSP),
				).
				Value(&profile.Auth.Backend),
			huh.NewSelect[string]().
				Title("Cloud region").
				Options(
					huh.NewOption("us-1", "us-1"),
					huh.NewOption("us-2", "us-2"),
					huh.NewOption("eu-1", "eu-1"),
					huh.NewOption("us-gov-1", "us-gov-1"),
				).
				Value(&profile.Auth.Cloud),
			huh.NewInput().
				Title("API client ID").
				Value(&profile.Auth.ClientID).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("a client ID is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig, "Profile creation was cancelled", "")
	}

	if profile.Auth.Backend == config.BackendMSSP {
		memberForm := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Member CID (child tenant)").
					Value(&profile.Auth.MemberCID),
			),
		)
		if err := memberForm.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig, "Profile creation was cancelled", "")
		}
	}
	return nil
}

// readClientSecret reads the API client secret without echoing it, or from
// TALON_CLIENT_SECRET when stdin is not a terminal.
func readClientSecret(interactive bool) (string, error) {
	if !interactive {
		secret := os.Getenv("TALON_CLIENT_SECRET")
		if secret == "" {
			return "", errors.New(errors.ErrConfig,
				"No client secret given",
				"Set TALON_CLIENT_SECRET for non-interactive profile creation")
		}
		return secret, nil
	}

	fmt.Print("API client secret (input hidden): ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read the client secret", "")
	}
	secret := strings.TrimSpace(string(raw))
	if secret == "" {
		return "", errors.New(errors.ErrConfig, "No client secret given", "")
	}
	return secret, nil
}

var profilesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadOrDefault(ConfigDir())
		if err != nil {
			return err
		}
		if len(cfg.Profiles) == 0 {
			fmt.Println("No profiles configured. Run 'talon profiles new' to create one.")
			return nil
		}

		columns := []ui.TableColumn{
			{Title: "Name", Width: 16},
			{Title: "Backend", Width: 10},
			{Title: "Cloud", Width: 10},
			{Title: "Client ID", Width: 20},
			{Title: "Description", Width: 30},
		}
		var rows [][]string
		for name, p := range cfg.Profiles {
			display := name
			if name == cfg.Default {
				display += " (default)"
			}
			rows = append(rows, []string{
				display, p.Auth.Backend, p.Auth.Cloud, p.Auth.ClientID, p.Description,
			})
		}
		fmt.Println(ui.RenderSimpleTable(columns, rows))
		return nil
	},
}

var profilesDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(ConfigDir())
		if err != nil {
			return err
		}

		name := args[0]
		if _, ok := cfg.Profiles[name]; !ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("The profile %q does not exist", name), "")
		}
		delete(cfg.Profiles, name)
		if cfg.Default == name {
			cfg.Default = ""
		}
		if err := config.Save(ConfigDir(), cfg); err != nil {
			return err
		}
		fmt.Printf("Deleted profile %q\n", name)
		return nil
	},
}

func init() {
	profilesNewCmd.Flags().StringVar(&profileNameFlag, "name", "", "profile name")
	profilesNewCmd.Flags().StringVar(&profileDescriptionFlag, "description", "", "profile description")
	profilesNewCmd.Flags().StringVar(&profileBackendFlag, "backend", config.BackendAPIKeys,
		"auth backend: api_keys or mssp")
	profilesNewCmd.Flags().StringVar(&profileCloudFlag, "cloud", "us-1", "platform cloud region")
	profilesNewCmd.Flags().StringVar(&profileClientIDFlag, "client-id", "", "API client ID")
	profilesNewCmd.Flags().StringVar(&profileMemberCIDFlag, "member-cid", "", "child tenant CID (mssp backend)")
	profilesNewCmd.Flags().BoolVar(&profileDefaultFlag, "default", false, "make this the default profile")

	profilesCmd.AddCommand(profilesNewCmd)
	profilesCmd.AddCommand(profilesListCmd)
	profilesCmd.AddCommand(profilesDeleteCmd)
	rootCmd.AddCommand(profilesCmd)
}
