package network

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

const defaultProbeTimeout = 3 * time.Second

// HTTPProbe considers the device online when the backend health endpoint
// answers with anything below 500.
type HTTPProbe struct {
	url        string
	client     *http.Client
	interfaces InterfaceLister
}

func NewHTTPProbe(baseURL string, timeout time.Duration) *HTTPProbe {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &HTTPProbe{
		url:        strings.TrimRight(baseURL, "/") + "/health",
		client:     &http.Client{Timeout: timeout},
		interfaces: net.Interfaces,
	}
}

func (p *HTTPProbe) IsConnected(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return false, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		// unreachable host is an answer, not a failure
		return false, nil
	}
	defer resp.Body.Close()
	// read to EOF so the connection goes back to the pool
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode < http.StatusInternalServerError, nil
}

func (p *HTTPProbe) IsWifiConnected(context.Context) (bool, error) {
	return hasWirelessLink(p.interfaces)
}
