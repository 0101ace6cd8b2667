package localcache

import (
	"context"
	"errors"
	"fmt"
)

// Result sources. Informational only.
const (
	SourcePrimary  = "sqlite"
	SourceFallback = "fallback"
)

// ErrOperationFailed wraps a Result that reported Success=false.
var ErrOperationFailed = errors.New("local cache operation failed")

// Result is the uniform answer to a Request.
type Result struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Source  string `json:"source,omitempty"`
}

func ok(source string, data any) Result {
	return Result{Success: true, Data: data, Source: source}
}

func failed(source, msg string) Result {
	return Result{Success: false, Error: msg, Source: source}
}

// Err converts a failed Result into an error.
func (r Result) Err() error {
	if r.Success {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrOperationFailed, r.Error)
}

// Backend executes requests. A returned error means the store itself could
// not be reached; a Result with Success=false is a logical failure.
type Backend interface {
	Execute(ctx context.Context, req Request) (Result, error)
}
