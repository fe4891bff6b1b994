// Package config loads skyframe settings from the environment, a .env file
// and an optional config.yaml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blacktop/skyframe/internal/logutil"
	"github.com/blacktop/skyframe/internal/skyframe"
	"github.com/blacktop/skyframe/internal/skyframe/bluesky"
	"github.com/blacktop/skyframe/internal/skyframe/mastodon"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	SourceBluesky  = "bluesky"
	SourceMastodon = "mastodon"

	envPrefix = "SKYFRAME"
)

// Config is the merged configuration.
type Config struct {
	Source   string         `mapstructure:"source"`
	Timeout  time.Duration  `mapstructure:"timeout"`
	Verbose  bool           `mapstructure:"verbose"`
	Bluesky  BlueskyConfig  `mapstructure:"bluesky"`
	Mastodon MastodonConfig `mapstructure:"mastodon"`
}

// BlueskyConfig holds the Bluesky account settings.
type BlueskyConfig struct {
	Identifier string `mapstructure:"identifier"`
	Password   string `mapstructure:"password"`
	PDSURL     string `mapstructure:"pds_url"`
}

// MastodonConfig holds the Mastodon account settings.
type MastodonConfig struct {
	Server       string `mapstructure:"server"`
	AccessToken  string `mapstructure:"access_token"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
}

// Load reads configuration. configFile may be empty to use the search path.
func Load(configFile string) (*Config, error) {
	loadEnvFile()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := configDir(); err == nil {
		v.AddConfigPath(dir)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvironmentVariables(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))
	return &cfg, nil
}

// loadEnvFile loads .env from the working directory when present. Values
// already in the environment win.
func loadEnvFile() {
	if err := gotenv.Load(); err != nil && !os.IsNotExist(err) {
		logutil.Warnf("error loading .env file: %v", err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("source", SourceBluesky)
	v.SetDefault("timeout", 30*time.Second)
	v.SetDefault("verbose", false)
	v.SetDefault("bluesky.pds_url", bluesky.DefaultPDSURL)
}

func bindEnvironmentVariables(v *viper.Viper) {
	// the unprefixed names are what the mobile app's .env used
	_ = v.BindEnv("bluesky.identifier", "SKYFRAME_BLUESKY_IDENTIFIER", bluesky.EnvIdentifier)
	_ = v.BindEnv("bluesky.password", "SKYFRAME_BLUESKY_PASSWORD", bluesky.EnvPassword)
	_ = v.BindEnv("bluesky.pds_url", "SKYFRAME_BLUESKY_PDS_URL")

	_ = v.BindEnv("mastodon.server", mastodon.EnvServer)
	_ = v.BindEnv("mastodon.access_token", mastodon.EnvAccessToken)
	_ = v.BindEnv("mastodon.client_id", mastodon.EnvClientID)
	_ = v.BindEnv("mastodon.client_secret", mastodon.EnvClientSecret)
	_ = v.BindEnv("mastodon.username", mastodon.EnvUsername)
	_ = v.BindEnv("mastodon.password", mastodon.EnvPassword)
}

func configDir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "skyframe"), nil
}

// BlueskyClientConfig returns the settings for bluesky.New.
func (c *Config) BlueskyClientConfig() bluesky.Config {
	return bluesky.Config{
		Identifier: c.Bluesky.Identifier,
		Password:   c.Bluesky.Password,
		PDSURL:     c.Bluesky.PDSURL,
		Timeout:    c.Timeout,
	}
}

// MastodonClientConfig returns the settings for mastodon.New.
func (c *Config) MastodonClientConfig() mastodon.Config {
	return mastodon.Config{
		Server:       c.Mastodon.Server,
		AccessToken:  c.Mastodon.AccessToken,
		ClientID:     c.Mastodon.ClientID,
		ClientSecret: c.Mastodon.ClientSecret,
		Username:     c.Mastodon.Username,
		Password:     c.Mastodon.Password,
		Timeout:      c.Timeout,
	}
}

// Validate checks that the credentials for source are present.
func (c *Config) Validate(source string) error {
	switch source {
	case SourceBluesky:
		return c.BlueskyClientConfig().Validate()
	case SourceMastodon:
		return c.MastodonClientConfig().Validate()
	}
	return skyframe.ValidationError{Provider: source, Reason: fmt.Sprintf("unsupported source %q", source)}
}

// NewSource constructs the client for source.
func (c *Config) NewSource(source string) (skyframe.Source, error) {
	switch source {
	case SourceBluesky:
		return bluesky.New(c.BlueskyClientConfig()), nil
	case SourceMastodon:
		return mastodon.New(c.MastodonClientConfig()), nil
	}
	return nil, skyframe.ValidationError{Provider: source, Reason: fmt.Sprintf("unsupported source %q", source)}
}
