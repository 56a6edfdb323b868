package config

import (
	"time"
)

// Config holds runtime settings for the filedrop CLI.
//
// Fields:
//   - Server: base URL of the filedrop server.
//   - Timeout: per-request limit; zero means none, which suits large transfers.
type Config struct {
	Server  string
	Timeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.Server = "http://localhost:3000"
	c.Timeout = 0
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// the JSON file (if file is not empty) and the environment. Later sources
// take precedence over earlier ones.
func LoadConfig(file string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJSON(cfg, file); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
