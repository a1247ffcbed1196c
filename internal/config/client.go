package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	defaultClientServer  = "http://127.0.0.1:8080"
	defaultClientTimeout = "15s"
	defaultClientLimit   = 20
	maxClientLimit       = 100
)

// ClientConfig is the configuration of the casedesk command-line client.
type ClientConfig struct {
	Server       string    `koanf:"server"`
	Token        string    `koanf:"token"`
	ClientID     string    `koanf:"client_id"`
	ClientSecret string    `koanf:"client_secret"`
	Timeout      string    `koanf:"timeout"`
	Limit        int       `koanf:"limit"`
	Log          LogConfig `koanf:"log"`
}

// LoadClient reads the client configuration. The YAML file is optional: an
// empty path loads environment variables only. Variables use the prefix
// "CASEDESK__", so CASEDESK__SERVER sets server and CASEDESK__LOG__LEVEL sets
// log.level.
func LoadClient(configPath string) (*ClientConfig, error) {
	var cfg ClientConfig
	if err := load(strings.TrimSpace(configPath), "CASEDESK__", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate fills defaults and rejects unusable values.
func (c *ClientConfig) Validate() error {
	c.Server = strings.TrimRight(strings.TrimSpace(c.Server), "/")
	if c.Server == "" {
		c.Server = defaultClientServer
	}
	u, err := url.Parse(c.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server %q: must be an http or https URL", c.Server)
	}

	c.Token = strings.TrimSpace(c.Token)
	c.ClientID = strings.TrimSpace(c.ClientID)

	c.Timeout = strings.TrimSpace(c.Timeout)
	if c.Timeout == "" {
		c.Timeout = defaultClientTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return fmt.Errorf("invalid timeout %q: must be greater than 0", c.Timeout)
	}

	switch {
	case c.Limit == 0:
		c.Limit = defaultClientLimit
	case c.Limit < 0 || c.Limit > maxClientLimit:
		return fmt.Errorf("invalid limit %d: must be between 1 and %d", c.Limit, maxClientLimit)
	}

	// The client only logs failures by default so table output stays clean.
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = "error"
	}
	if strings.TrimSpace(c.Log.Format) == "" {
		c.Log.Format = "text"
	}
	return c.Log.validate()
}

// TimeoutDuration returns the parsed timeout of a validated config.
func (c *ClientConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}
