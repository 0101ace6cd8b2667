package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/tasksync/internal/flagx"
	"github.com/dmitrijs2005/tasksync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent fields
// leave the corresponding Config value untouched.
type JsonConfig struct {
	ServerBaseURL        *string         `json:"server_base_url"`
	HealthCheckGRPCAddr  *string         `json:"grpc_health_addr"`
	DataDir              *string         `json:"data_dir"`
	NetworkCheckInterval *timex.Duration `json:"network_check_interval"`
	StatusThrottle       *timex.Duration `json:"status_throttle"`
	DrainInterval        *timex.Duration `json:"drain_interval"`
	DeliveryTimeout      *timex.Duration `json:"delivery_timeout"`
	RequestTimeout       *timex.Duration `json:"request_timeout"`
	MaxRetries           *int            `json:"max_retries"`
	LogLevel             *string         `json:"log_level"`
	LogFormat            *string         `json:"log_format"`
}

// parseJSON overlays cfg with the JSON file named by -c/-config in args.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.ServerBaseURL, jc.ServerBaseURL)
	setString(&cfg.HealthCheckGRPCAddr, jc.HealthCheckGRPCAddr)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)

	if jc.NetworkCheckInterval != nil {
		cfg.NetworkCheckInterval = jc.NetworkCheckInterval.Duration
	}
	if jc.StatusThrottle != nil {
		cfg.StatusThrottle = jc.StatusThrottle.Duration
	}
	if jc.DrainInterval != nil {
		cfg.DrainInterval = jc.DrainInterval.Duration
	}
	if jc.DeliveryTimeout != nil {
		cfg.DeliveryTimeout = jc.DeliveryTimeout.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.MaxRetries != nil {
		cfg.MaxRetries = *jc.MaxRetries
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
