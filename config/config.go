// Package config loads the KVAR tool configuration via Viper.
//
// Configuration sources, in precedence order: environment variables with
// the KVAR_ prefix, a kvar.toml in the working directory, then
// ~/.config/kvar/kvar.toml, then built-in defaults.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/teranos/KVAR/errors"
)

// Config is the KVAR tool configuration.
type Config struct {
	Board  BoardConfig  `mapstructure:"board"`
	Output OutputConfig `mapstructure:"output"`
}

// BoardConfig configures the default design input.
type BoardConfig struct {
	// Path is the board snapshot file used when --board is not given.
	Path string `mapstructure:"path"`
}

// OutputConfig configures CLI output.
type OutputConfig struct {
	JSON      bool `mapstructure:"json"`      // machine-readable log output
	Verbosity int  `mapstructure:"verbosity"` // default -v count
}

var (
	globalConfig  *Config
	viperInstance *viper.Viper
)

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("board.path", "board.kvar.yaml")
	v.SetDefault("output.json", false)
	v.SetDefault("output.verbosity", 0)
}

// Load reads the KVAR configuration, caching the result.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}
	var config Config
	if err := initViper().Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	globalConfig = &config
	return globalConfig, nil
}

// LoadWithViper loads configuration from a provided Viper instance
// (used by tests to stay isolated from user/system config).
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	return &config, nil
}

// Reset clears the cached configuration (useful for testing).
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()
	v.SetEnvPrefix("KVAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	v.SetConfigName("kvar")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "kvar"))
	}
	// a missing config file is fine, defaults apply
	_ = v.ReadInConfig()

	viperInstance = v
	return v
}
