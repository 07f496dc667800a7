// Package config loads CLI settings from flags, environment, .env and an
// optional deviceid.yaml, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable, e.g. DEVICEID_SALT.
const EnvPrefix = "DEVICEID"

// Provider names accepted by the "provider" key.
const (
	ProviderNone    = "none"
	ProviderRandom  = "random"
	ProviderMachine = "machine"
	ProviderStatic  = "static"
)

// Output encodings accepted by the "output" key.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config holds the CLI settings.
type Config struct {
	LogLevel        string        `mapstructure:"log_level"`
	Format          int           `mapstructure:"format"`
	Salt            string        `mapstructure:"salt"`
	HostID          bool          `mapstructure:"host_id"`
	MAC             bool          `mapstructure:"mac"`
	Provider        string        `mapstructure:"provider"`
	AppID           string        `mapstructure:"app_id"`
	ExternalID      string        `mapstructure:"external_id"`
	ProviderTimeout time.Duration `mapstructure:"provider_timeout"`
	DiskPath        string        `mapstructure:"disk_path"`
	Output          string        `mapstructure:"output"`
}

var defaults = map[string]any{
	"log_level":        "warn",
	"format":           64,
	"salt":             "",
	"host_id":          false,
	"mac":              false,
	"provider":         ProviderNone,
	"app_id":           "deviceid",
	"external_id":      "",
	"provider_timeout": 10 * time.Second,
	"disk_path":        "",
	"output":           OutputText,
}

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// LoadDotEnv loads path into the process environment. A missing file is
// not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}

	return nil
}

// Load reads the configuration into a Config. configFile may be empty, in
// which case deviceid.yaml is looked up in the working directory and in
// $HOME/.config/deviceid; not finding it is not an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("deviceid")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/deviceid")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}

	cfg.Provider = strings.ToLower(strings.TrimSpace(cfg.Provider))
	cfg.Output = strings.ToLower(strings.TrimSpace(cfg.Output))

	return &cfg, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]int{32, 64, 128, 256}, c.Format) {
		errs = append(errs, fmt.Errorf("unsupported format %d; valid values are 32, 64, 128, 256", c.Format))
	}

	switch c.Provider {
	case ProviderNone, ProviderRandom:
	case ProviderMachine:
		if c.AppID == "" {
			errs = append(errs, errors.New("provider \"machine\" requires app_id"))
		}
	case ProviderStatic:
		if strings.TrimSpace(c.ExternalID) == "" {
			errs = append(errs, errors.New("provider \"static\" requires external_id"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown provider %q; valid values are none, random, machine, static", c.Provider))
	}

	if !slices.Contains([]string{OutputText, OutputJSON, OutputYAML}, c.Output) {
		errs = append(errs, fmt.Errorf("unknown output %q; valid values are text, json, yaml", c.Output))
	}

	if c.ProviderTimeout <= 0 {
		errs = append(errs, fmt.Errorf("provider_timeout must be positive, got %s", c.ProviderTimeout))
	}

	return errors.Join(errs...)
}
