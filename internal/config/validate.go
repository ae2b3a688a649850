package config

import (
	"fmt"
	"sort"

	"github.com/talonops/talon/internal/errors"
)

// Validate checks the config for structural problems. It is called on every
// load so a bad hand-edit surfaces immediately rather than mid-command.
func (c *Config) Validate() error {
	if c.Version > CurrentConfigVersion {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Config version %d is newer than this build supports (%d)",
				c.Version, CurrentConfigVersion),
			"Upgrade talon, or regenerate the config with 'talon profiles new'")
	}

	for name, p := range c.Profiles {
		if err := p.validate(name); err != nil {
			return err
		}
	}

	if c.Default != "" {
		if _, ok := c.Profiles[c.Default]; !ok {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Default profile %q does not exist", c.Default),
				"Available profiles: "+joinProfileNames(c.Profiles))
		}
	}
	return nil
}

func (p Profile) validate(name string) error {
	switch p.Auth.Backend {
	case BackendAPIKeys, BackendMSSP:
	case "":
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Profile %q has no auth backend", name),
			"Set auth.backend to api_keys or mssp")
	default:
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Profile %q uses unknown auth backend %q", name, p.Auth.Backend),
			"Supported backends: api_keys, mssp")
	}

	if p.Auth.ClientID == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Profile %q has no client_id", name),
			"Re-create the profile with 'talon profiles new'")
	}
	if p.Auth.Backend == BackendMSSP && p.Auth.MemberCID == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("Profile %q uses the mssp backend but has no member_cid", name),
			"Set auth.member_cid to the child tenant CID")
	}
	return nil
}

// SelectProfile resolves which profile to use for this invocation.
// Resolution order: explicit name, configured default, sole profile.
func (c *Config) SelectProfile(name string) (string, *Profile, error) {
	if name != "" {
		if p, ok := c.Profiles[name]; ok {
			return name, &p, nil
		}
		return "", nil, errors.New(errors.ErrConfig,
			fmt.Sprintf("The profile %q does not exist", name),
			"Available profiles: "+joinProfileNames(c.Profiles))
	}

	if len(c.Profiles) == 0 {
		return "", nil, errors.New(errors.ErrConfig,
			"No profiles are configured",
			"Run 'talon profiles new' to set one up first")
	}

	if c.Default != "" {
		p := c.Profiles[c.Default]
		return c.Default, &p, nil
	}

	if len(c.Profiles) == 1 {
		for n, p := range c.Profiles {
			return n, &p, nil
		}
	}

	return "", nil, errors.New(errors.ErrConfig,
		"Multiple profiles are configured, so you must use -p/--profile to choose one",
		"Available profiles: "+joinProfileNames(c.Profiles))
}

func joinProfileNames(profiles map[string]Profile) string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	out := ""
	for i, n := range names {
		if i > 0 {
			out += ", "
		}
		out += n
	}
	return out
}
