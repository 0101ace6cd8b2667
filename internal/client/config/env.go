package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "TASKSYNC_"

// envLookup returns a lookup that consults the process environment first and
// then the given dotenv file. A missing dotenv file is not an error.
func envLookup(dotenvPath string) func(string) (string, bool) {
	fileVars, err := godotenv.Read(dotenvPath)
	if err != nil {
		fileVars = map[string]string{}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileVars[key]
		return v, ok
	}
}

// parseEnv overlays cfg with TASKSYNC_* variables. Durations use Go syntax
// ("15s").
func parseEnv(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
		return nil
	}

	str("SERVER_URL", &cfg.ServerBaseURL)
	str("GRPC_HEALTH_ADDR", &cfg.HealthCheckGRPCAddr)
	str("DATA_DIR", &cfg.DataDir)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("LOG_FORMAT", &cfg.LogFormat)

	for name, dst := range map[string]*time.Duration{
		"NETWORK_CHECK_INTERVAL": &cfg.NetworkCheckInterval,
		"STATUS_THROTTLE":        &cfg.StatusThrottle,
		"DRAIN_INTERVAL":         &cfg.DrainInterval,
		"DELIVERY_TIMEOUT":       &cfg.DeliveryTimeout,
		"REQUEST_TIMEOUT":        &cfg.RequestTimeout,
	} {
		if err := dur(name, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup(envPrefix + "MAX_RETRIES"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_RETRIES: %w", envPrefix, err)
		}
		cfg.MaxRetries = n
	}
	return nil
}
