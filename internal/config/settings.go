package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/studiowebux/apichain/internal/api"
)

// Configuration keys, shared by config.yaml, flags and APICHAIN_ env vars
const (
	KeyBaseURL    = "base-url"
	KeyProfile    = "profile"
	KeyTimeout    = "timeout"
	KeyToken      = "token"
	KeyLogLevel   = "log-level"
	KeyAudit      = "audit"
	KeyStaleGuard = "stale-guard"
	KeyInsecure   = "insecure"
	KeyHeaders    = "headers"
	KeyProfiles   = "profiles"
)

const (
	// DefaultBaseURL is the public fixture API
	DefaultBaseURL = api.DefaultBaseURL
	// DefaultTimeout bounds every HTTP call
	DefaultTimeout = 30 * time.Second

	envPrefix = "APICHAIN"
)

// Profile is a named API target
type Profile struct {
	Name    string            `mapstructure:"name" yaml:"name"`
	BaseURL string            `mapstructure:"baseUrl" yaml:"baseUrl"`
	Headers map[string]string `mapstructure:"headers" yaml:"headers"`
	Token   string            `mapstructure:"token" yaml:"token"`
	Timeout time.Duration     `mapstructure:"timeout" yaml:"timeout"`
}

// Config is the resolved configuration of one invocation
type Config struct {
	BaseURL    string            `mapstructure:"base-url"`
	Profile    string            `mapstructure:"profile"`
	Timeout    time.Duration     `mapstructure:"timeout"`
	Token      string            `mapstructure:"token"`
	LogLevel   string            `mapstructure:"log-level"`
	Audit      bool              `mapstructure:"audit"`
	StaleGuard bool              `mapstructure:"stale-guard"`
	Insecure   bool              `mapstructure:"insecure"`
	Headers    map[string]string `mapstructure:"headers"`
	Profiles   []Profile         `mapstructure:"profiles"`
}

// BindFlags registers the persistent flags every command understands
func BindFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to config file (default ~/.apichain/config.yaml)")
	flags.String(KeyBaseURL, DefaultBaseURL, "Base URL of the REST fixture API")
	flags.String(KeyProfile, "", "Named profile from the config file")
	flags.Duration(KeyTimeout, DefaultTimeout, "HTTP request timeout")
	flags.String(KeyToken, "", "Bearer token sent with every request")
	flags.String(KeyLogLevel, "info", "Log level (debug, info, warn, error)")
	flags.Bool(KeyAudit, false, "Record workflow steps in the audit store")
	flags.Bool(KeyStaleGuard, false, "Ignore responses superseded by a newer request")
	flags.Bool(KeyInsecure, false, "Skip TLS certificate verification")
}

// Load resolves the configuration: defaults, then the config file, then
// APICHAIN_* environment variables, then flags that were set explicitly.
// A missing config file is not an error.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyBaseURL, DefaultBaseURL)
	v.SetDefault(KeyProfile, "")
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyToken, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyAudit, false)
	v.SetDefault(KeyStaleGuard, false)
	v.SetDefault(KeyInsecure, false)
	v.SetDefault(KeyHeaders, map[string]string{})

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("failed to bind flags: %w", err)
		}
	}

	if configFile == "" {
		configFile = ConfigFile
	}
	if configFile != "" {
		if _, err := os.Stat(configFile); err == nil {
			v.SetConfigFile(configFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Profile != "" {
		if err := cfg.applyProfile(flags); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyProfile overlays the selected profile. Values given explicitly on the
// command line keep precedence.
func (c *Config) applyProfile(flags *pflag.FlagSet) error {
	p, ok := c.FindProfile(c.Profile)
	if !ok {
		return fmt.Errorf("profile %q not found", c.Profile)
	}

	changed := func(name string) bool {
		return flags != nil && flags.Changed(name)
	}

	if p.BaseURL != "" && !changed(KeyBaseURL) {
		c.BaseURL = p.BaseURL
	}
	if p.Token != "" && !changed(KeyToken) {
		c.Token = p.Token
	}
	if p.Timeout > 0 && !changed(KeyTimeout) {
		c.Timeout = p.Timeout
	}
	if len(p.Headers) > 0 {
		merged := make(map[string]string, len(c.Headers)+len(p.Headers))
		for k, v := range c.Headers {
			merged[k] = v
		}
		for k, v := range p.Headers {
			merged[k] = v
		}
		c.Headers = merged
	}
	return nil
}

// FindProfile looks up a profile by name, case-insensitively
func (c *Config) FindProfile(name string) (Profile, bool) {
	for _, p := range c.Profiles {
		if strings.EqualFold(p.Name, name) {
			return p, true
		}
	}
	return Profile{}, false
}

// Validate checks the values needed to talk to the API
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("invalid base-url %q: must start with http:// or https://", c.BaseURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s: must be positive", c.Timeout)
	}
	return nil
}
