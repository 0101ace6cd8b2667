// Package config loads runtime configuration for the tasksync client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment: variables from an optional ".env" file in the working
//     directory, overridden by real TASKSYNC_* process variables.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override everything above.
//
// Supported flags
//
//	-a string   base URL of the remote REST API
//	-g string   host:port of a gRPC health endpoint (enables the gRPC probe)
//	-d string   data directory for the local databases
//	-i int      network self-check interval (seconds)
//	-l string   log level (debug, info, warn, error)
//
// # JSON schema
//
// Intervals use timex.Duration, so values can be strings like "15s" or
// integer nanoseconds:
//
//	{
//	  "server_base_url": "https://api.example.com",
//	  "network_check_interval": "15s",
//	  "status_throttle": "5s",
//	  "max_retries": 3
//	}
package config
