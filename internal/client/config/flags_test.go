package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "http://10.0.0.1:9090", "-i", "10", "-d", "/tmp/ts", "-l", "debug", "-g", "h:50051"},
			expected: &Config{ServerBaseURL: "http://10.0.0.1:9090", NetworkCheckInterval: 10 * time.Second,
				DataDir: "/tmp/ts", LogLevel: "debug", HealthCheckGRPCAddr: "h:50051"},
		},
		{
			name:     "foreign flags ignored",
			args:     []string{"-x", "1", "-a", "http://h"},
			expected: &Config{ServerBaseURL: "http://h"},
		},
		{name: "incorrect interval", args: []string{"-i", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
