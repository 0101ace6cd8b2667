package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the sync core.
//
// Units: all intervals and timeouts are time.Duration.
type Config struct {
	ServerBaseURL        string
	HealthCheckGRPCAddr  string
	DataDir              string
	NetworkCheckInterval time.Duration
	StatusThrottle       time.Duration
	DrainInterval        time.Duration
	DeliveryTimeout      time.Duration
	RequestTimeout       time.Duration
	MaxRetries           int
	LogLevel             string
	LogFormat            string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.HealthCheckGRPCAddr = ""
	c.DataDir = "data"
	c.NetworkCheckInterval = 15 * time.Second
	c.StatusThrottle = 5 * time.Second
	c.DrainInterval = 60 * time.Second
	c.DeliveryTimeout = 30 * time.Second
	c.RequestTimeout = 20 * time.Second
	c.MaxRetries = 3
	c.LogLevel = "info"
	c.LogFormat = "text"
}

// Load builds a Config from defaults, environment, an optional JSON file and
// the given command-line arguments (without the program name). Later sources
// take precedence over earlier ones.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, envLookup(".env")); err != nil {
		return nil, err
	}
	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConfig is Load applied to the process arguments.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}
