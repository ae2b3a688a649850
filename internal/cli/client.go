package cli

import (
	"context"
	"fmt"

	"github.com/talonops/talon/internal/api"
	"github.com/talonops/talon/internal/config"
	"github.com/talonops/talon/internal/logger"
	"github.com/talonops/talon/internal/ui"
)

// connectClient loads the config, selects a profile, and authenticates with
// its backend. Every command that talks to the platform starts here.
func connectClient(ctx context.Context) (*api.Client, error) {
	cfg, err := config.Load(ConfigDir())
	if err != nil {
		return nil, err
	}

	name, profile, err := cfg.SelectProfile(profileFlag)
	if err != nil {
		return nil, err
	}
	logger.Default().Debug("using profile %q (backend %s, cloud %s)",
		name, profile.Auth.Backend, profile.Auth.Cloud)

	var client *api.Client
	err = ui.WithSpinner(fmt.Sprintf("Authenticating with profile %s", name), func() error {
		var connectErr error
		client, connectErr = api.Connect(ctx, profile.Auth.Backend, api.Credentials{
			Cloud:        profile.Auth.Cloud,
			ClientID:     profile.Auth.ClientID,
			ClientSecret: profile.Auth.ClientSecret,
			MemberCID:    profile.Auth.MemberCID,
		})
		return connectErr
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}
