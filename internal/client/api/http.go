package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/goccy/go-json"
	"github.com/sony/gobreaker"
)

const defaultRequestTimeout = 20 * time.Second

// HTTPClient is the REST implementation of Client. Every call goes through a
// circuit breaker that only counts connectivity failures.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	cb      *gobreaker.CircuitBreaker
	log     logging.Logger
}

func NewHTTPClient(baseURL string, tokens TokenSource, timeout time.Duration, log logging.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	settings := gobreaker.Settings{
		Name:        "tasksync-api",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn(context.Background(), "circuit breaker state changed",
				"name", name, "from", from.String(), "to", to.String())
		},
	}

	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   timeout,
			Transport: &bearerTransport{base: http.DefaultTransport, tokens: tokens},
		},
		cb:  gobreaker.NewCircuitBreaker(settings),
		log: log,
	}
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil)
}

func (c *HTTPClient) FetchInitialData(ctx context.Context, identity string) (*models.Snapshot, error) {
	var snap models.Snapshot
	if err := c.do(ctx, http.MethodGet, "/sync/initial-data/"+url.PathEscape(identity), nil, &snap); err != nil {
		return nil, fmt.Errorf("fetch initial data: %w", err)
	}
	return &snap, nil
}

func (c *HTTPClient) SubmitOperations(ctx context.Context, req SubmitRequest) ([]OperationResult, error) {
	var resp submitResponse
	if err := c.do(ctx, http.MethodPost, "/sync/offline", req, &resp); err != nil {
		return nil, fmt.Errorf("submit operations: %w", err)
	}
	return resp.Results, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	_, err := c.cb.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, method, path, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return err
}

func (c *HTTPClient) roundTrip(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(raw) == 0 {
			return nil
		}
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	c.log.Debug(ctx, "api request rejected", "method", method, "path", path, "status", resp.StatusCode)
	return mapStatus(resp.StatusCode, raw)
}

func mapStatus(code int, body []byte) error {
	var e errorResponse
	_ = json.Unmarshal(body, &e)
	msg := e.text()

	switch {
	case code == http.StatusUnauthorized:
		return withMessage(ErrUnauthorized, msg)
	case code == http.StatusForbidden:
		return withMessage(ErrForbidden, msg)
	case code == http.StatusNotFound:
		return withMessage(ErrNotFound, msg)
	case code >= http.StatusInternalServerError:
		return withMessage(ErrUnavailable, fmt.Sprintf("status %d %s", code, msg))
	}
	if msg == "" {
		msg = http.StatusText(code)
	}
	return &RemoteError{StatusCode: code, Message: msg}
}

func withMessage(sentinel error, msg string) error {
	msg = strings.TrimSpace(msg)
	if msg == "" {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, msg)
}
