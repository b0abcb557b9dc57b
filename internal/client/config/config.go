package config

import (
	"fmt"
	"time"
)

// ConfigEnvVar names a JSON config file when -c/-config is absent.
const ConfigEnvVar = "OMCTL_CONFIG"

// Config holds runtime settings for the omctl CLI.
//
// Fields:
//   - ServerEndpointAddr: host:port of the metakeeper gRPC endpoint.
//   - AccessToken: bearer token sent with every call; prompted for when empty.
//   - RequestTimeout: upper bound for a single RPC.
//   - PageSize: page size used by listing commands.
type Config struct {
	ServerEndpointAddr string
	AccessToken        string
	RequestTimeout     time.Duration
	PageSize           int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.PageSize = 20
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	if cfg.ServerEndpointAddr == "" {
		return nil, fmt.Errorf("invalid config: server address must not be empty")
	}
	if cfg.PageSize <= 0 {
		return nil, fmt.Errorf("invalid config: page size must be positive")
	}
	return cfg, nil
}
