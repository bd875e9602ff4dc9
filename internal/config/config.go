package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Provider holds the OAuth registration for one cloud provider. An empty
// client id leaves that provider disabled.
type Provider struct {
	ClientID string   `toml:"client_id"`
	Scopes   []string `toml:"scopes"`
}

type Config struct {
	Listen   string `toml:"listen"`
	Database string `toml:"database"`

	// RedirectURI must match the redirect registered with both providers.
	RedirectURI string `toml:"redirect_uri"`

	// WeekStart is "sunday" or "monday".
	WeekStart string `toml:"week_start"`

	Verbose bool `toml:"verbose"`

	Google    Provider `toml:"google"`
	Microsoft Provider `toml:"microsoft"`
}

func Default() *Config {
	cfg := &Config{}
	cfg.Normalize()
	return cfg
}

// Read loads the configuration from filename, falling back to
// $HOME/.config/agendahub/. A missing file yields the defaults.
func Read(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		data, err = os.ReadFile(os.Getenv("HOME") + "/.config/agendahub/" + filename)
		if err != nil {
			if os.IsNotExist(err) {
				return Default(), nil
			}
			return nil, err
		}
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Normalize fills missing values with defaults so partially-filled
// configs still behave.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = "127.0.0.1:3000"
	}
	if c.Database == "" {
		c.Database = "agendahub.db"
	}
	if c.RedirectURI == "" {
		c.RedirectURI = "http://" + c.Listen + "/auth/callback"
	}
	switch c.WeekStart {
	case "sunday", "monday":
	default:
		c.WeekStart = "sunday"
	}
	if len(c.Google.Scopes) == 0 {
		c.Google.Scopes = []string{
			"https://www.googleapis.com/auth/calendar.readonly",
			"https://www.googleapis.com/auth/calendar.events.readonly",
		}
	}
	if len(c.Microsoft.Scopes) == 0 {
		c.Microsoft.Scopes = []string{
			"openid",
			"profile",
			"User.Read",
			"Calendars.Read",
		}
	}
}

// WeekStartsOn maps the configured week start onto weekday numbering.
func (c *Config) WeekStartsOn() time.Weekday {
	if c.WeekStart == "monday" {
		return time.Monday
	}
	return time.Sunday
}
