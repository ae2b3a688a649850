package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/talonops/talon/internal/errors"
)

const (
	// ConfigDirName is the default config directory under $HOME.
	ConfigDirName = ".talon"
	// ConfigFileName is the config file name inside the config directory.
	ConfigFileName = "config.yaml"
	// LogSubDir is the directory for per-session logs inside the config directory.
	LogSubDir = "logs"
)

// DefaultDir returns the default configuration directory, honoring the
// TALON_CONFIG_DIR environment variable.
func DefaultDir() string {
	if dir := os.Getenv("TALON_CONFIG_DIR"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ConfigDirName
	}
	return filepath.Join(home, ConfigDirName)
}

// Load reads the config file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)

	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'talon profiles new' to create a profile, or set --config-dir")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Config file has an unexpected structure",
			"Check "+path+" against the documented format")
	}
	if cfg.Profiles == nil {
		cfg.Profiles = make(map[string]Profile)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads config from dir, or returns defaults if no file exists.
// This is what 'talon profiles new' uses on a fresh machine.
func LoadOrDefault(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return Load(dir)
}

// Save writes the config back to dir, creating the directory as needed.
func Save(dir string, cfg *Config) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create config directory "+dir,
			"Check directory permissions")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot serialize configuration", "")
	}

	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot write config file "+path,
			"Check file permissions")
	}
	return nil
}

// LogDir returns the per-session log directory inside the config dir,
// creating it if needed.
func LogDir(dir string) (string, error) {
	logDir := filepath.Join(dir, LogSubDir)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot create log directory "+logDir,
			"Check directory permissions")
	}
	return logDir, nil
}
