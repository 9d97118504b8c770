package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/vk/lamphost/internal/lifecycle"
)

// EnvPrefix prefixes every environment override, e.g. LAMPHOST_LOG_LEVEL.
const EnvPrefix = "LAMPHOST"

// Config holds everything the host needs to run.
type Config struct {
	PluginsPath     string `mapstructure:"plugins_path"`
	LogLevel        string `mapstructure:"log_level"`
	LogFormat       string `mapstructure:"log_format"`
	HealthcheckPort int    `mapstructure:"healthcheck_port"`
	RelayURL        string `mapstructure:"relay_url"`
	RelayNamespace  string `mapstructure:"relay_namespace"`
	MaxDepth        int    `mapstructure:"max_depth"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		PluginsPath:     "plugins",
		LogLevel:        "info",
		LogFormat:       "json",
		HealthcheckPort: 0,
		RelayNamespace:  "/",
		MaxDepth:        lifecycle.DefaultMaxDepth,
	}
}

// Load builds the configuration. path names an optional YAML file; flags, if
// not nil, contributes every flag registered by RegisterFlags that the user
// set explicitly.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("plugins_path", def.PluginsPath)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("healthcheck_port", def.HealthcheckPort)
	v.SetDefault("relay_url", def.RelayURL)
	v.SetDefault("relay_namespace", def.RelayNamespace)
	v.SetDefault("max_depth", def.MaxDepth)

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values the host cannot run without.
func (c *Config) Validate() error {
	var errs []error
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", c.LogLevel))
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", c.LogFormat))
	}
	if c.HealthcheckPort < 0 || c.HealthcheckPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid healthcheck-port %d: must be between 0 and 65535", c.HealthcheckPort))
	}
	if c.MaxDepth < 1 {
		errs = append(errs, fmt.Errorf("invalid max-depth %d: must be at least 1", c.MaxDepth))
	}
	return errors.Join(errs...)
}
