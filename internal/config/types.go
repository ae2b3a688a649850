package config

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Auth backend names accepted in profile configurations.
const (
	BackendAPIKeys = "api_keys"
	BackendMSSP    = "mssp"
)

// Config represents the complete config.yaml configuration file.
type Config struct {
	Version  int                `yaml:"version" mapstructure:"version"`
	Profiles map[string]Profile `yaml:"profiles" mapstructure:"profiles"`

	// Default names the profile used when --profile is not given and more
	// than one profile exists.
	Default string `yaml:"default,omitempty" mapstructure:"default"`
}

// Profile holds everything needed to reach one platform tenant.
type Profile struct {
	Description string     `yaml:"description,omitempty" mapstructure:"description"`
	Auth        AuthConfig `yaml:"auth" mapstructure:"auth"`
}

// AuthConfig selects and configures an authentication backend.
type AuthConfig struct {
	// Backend is one of the Backend* constants.
	Backend string `yaml:"backend" mapstructure:"backend"`

	// Cloud is the platform cloud region (e.g. us-1, us-2, eu-1).
	Cloud string `yaml:"cloud" mapstructure:"cloud"`

	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret,omitempty" mapstructure:"client_secret"`

	// MemberCID is only used by the mssp backend to select a child tenant.
	MemberCID string `yaml:"member_cid,omitempty" mapstructure:"member_cid"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:  CurrentConfigVersion,
		Profiles: make(map[string]Profile),
	}
}
