package network

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func TestHTTPProbe_StatusMapping(t *testing.T) {
	code := http.StatusOK
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(code)
	}))
	defer srv.Close()

	p := NewHTTPProbe(srv.URL+"/", time.Second)
	ctx := context.Background()

	ok, err := p.IsConnected(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	code = http.StatusUnauthorized
	ok, err = p.IsConnected(ctx)
	require.NoError(t, err)
	assert.True(t, ok, "reachable backend counts as online")

	code = http.StatusServiceUnavailable
	ok, err = p.IsConnected(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHealthCheck_ReusesConnection(t *testing.T) {
	var dials atomic.Int32
	srv := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"ok","version":"1.4.2"}`))
	}))
	srv.Config.ConnState = func(_ net.Conn, st http.ConnState) {
		if st == http.StateNew {
			dials.Add(1)
		}
	}
	srv.Start()
	defer srv.Close()

	p := NewHTTPProbe(srv.URL, time.Second)
	tr := &http.Transport{}
	defer tr.CloseIdleConnections()
	p.client.Transport = tr
	for range 3 {
		ok, err := p.IsConnected(context.Background())
		require.NoError(t, err)
		assert.True(t, ok)
	}
	assert.Equal(t, int32(1), dials.Load())
}

func TestHTTPProbe_UnreachableIsOffline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ok, err := NewHTTPProbe(url, 200*time.Millisecond).IsConnected(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWirelessDetection(t *testing.T) {
	p := NewHTTPProbe("http://x", 0)

	p.interfaces = func() ([]net.Interface, error) {
		return []net.Interface{
			{Name: "lo", Flags: net.FlagUp | net.FlagLoopback},
			{Name: "eth0", Flags: net.FlagUp},
			{Name: "wlan0", Flags: 0},
		}, nil
	}
	wifi, err := p.IsWifiConnected(context.Background())
	require.NoError(t, err)
	assert.False(t, wifi)

	p.interfaces = func() ([]net.Interface, error) {
		return []net.Interface{{Name: "wlp2s0", Flags: net.FlagUp}}, nil
	}
	wifi, err = p.IsWifiConnected(context.Background())
	require.NoError(t, err)
	assert.True(t, wifi)

	for name, want := range map[string]bool{
		"ra0":     true,
		"ath9":    true,
		"wifi0":   true,
		"rabbit0": false,
		"radio":   false,
		"athena0": false,
		"ra":      false,
		"enp3s0":  false,
	} {
		p.interfaces = func() ([]net.Interface, error) {
			return []net.Interface{{Name: name, Flags: net.FlagUp}}, nil
		}
		wifi, err = p.IsWifiConnected(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, wifi, name)
	}

	p.interfaces = func() ([]net.Interface, error) { return nil, errors.New("netlink") }
	_, err = p.IsWifiConnected(context.Background())
	require.Error(t, err)
}

func startHealthServer(t *testing.T) (*health.Server, *GRPCHealthProbe) {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	probe, err := NewGRPCHealthProbe("passthrough:///bufnet", "",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = probe.Close() })
	return hs, probe
}

func TestGRPCHealthProbe(t *testing.T) {
	hs, probe := startHealthServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ok, err := probe.IsConnected(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	ok, err = probe.IsConnected(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGRPCHealthProbe_UnknownServiceIsError(t *testing.T) {
	_, probe := startHealthServer(t)
	probe.service = "tasksync.Missing"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := probe.IsConnected(ctx)
	require.Error(t, err)
}
