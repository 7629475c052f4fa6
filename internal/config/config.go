package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"m365roadmap/internal/logging"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "m365roadmap" // application name used for config directory

const (
	// DefaultFeedURL is the public M365 roadmap RSS endpoint.
	DefaultFeedURL      = "https://www.microsoft.com/releasecommunications/api/v2/m365/rss"
	DefaultFetchTimeout = 30 * time.Second
	DefaultUserAgent    = "m365roadmap-mcp/1.0"

	// FeedURLEnv overrides the feed URL from the config file.
	FeedURLEnv = "M365_ROADMAP_FEED_URL"
)

// Config holds user configuration for the roadmap server.
type Config struct {
	// FeedURL is the roadmap RSS endpoint fetched on every cache miss.
	FeedURL      string        `yaml:"feed_url"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	UserAgent    string        `yaml:"user_agent"`
	LogFile      string        `yaml:"log_file,omitempty"` // only used in debug mode
	Debug        bool          `yaml:"debug"`
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() string {
	configPath := filepath.Join(xdg.ConfigHome, APP_NAME, "config.yaml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		FeedURL:      DefaultFeedURL,
		FetchTimeout: DefaultFetchTimeout,
		UserAgent:    DefaultUserAgent,
	}
}

// Load loads the config from path, or from the standard location when path
// is empty. A missing file is not an error: defaults are used instead.
//
// The result is not validated so callers can apply command line overrides
// first. Call Validate before using it.
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	var cfg *Config
	if _, err := os.Stat(path); err == nil {
		cfg, err = LoadFrom(path)
		if err != nil {
			return nil, err
		}
	} else if os.IsNotExist(err) {
		logging.Debug("No config file found, using defaults", "path", path)
		def := DefaultConfig()
		cfg = &def
	} else {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadFrom loads config from a specific path. Fields missing from the file
// keep their default values.
func LoadFrom(path string) (*Config, error) {
	logging.Info("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	// An explicit empty user_agent in the file still gets the default.
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(FeedURLEnv); v != "" {
		logging.Debug("Feed URL overridden from environment", "env", FeedURLEnv)
		c.FeedURL = v
	}
}

// Validate checks that the configuration can be used to reach the feed. It
// never modifies c.
func (c *Config) Validate() error {
	if c.FeedURL == "" {
		return fmt.Errorf("feed_url must not be empty")
	}
	u, err := url.Parse(c.FeedURL)
	if err != nil {
		return fmt.Errorf("invalid feed_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("feed_url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("feed_url must include a host")
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch_timeout must be positive, got %s", c.FetchTimeout)
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent must not be empty")
	}
	return nil
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
