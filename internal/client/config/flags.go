package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Only the flags owned here are parsed (see flagx.FilterArgs) so the REPL and
// other components can define their own.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-g", "-d", "-i", "-l"})

	fs := flag.NewFlagSet("tasksync", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the remote API")
	fs.StringVar(&cfg.HealthCheckGRPCAddr, "g", cfg.HealthCheckGRPCAddr, "gRPC health endpoint host:port")
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	checkInterval := fs.Int("i", int(cfg.NetworkCheckInterval.Seconds()), "network check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.NetworkCheckInterval = time.Duration(*checkInterval) * time.Second
	return nil
}
