package localcache

import (
	"context"

	"github.com/dmitrijs2005/tasksync/internal/logging"
)

// FallbackBackend sends each request to the primary backend and retries it on
// the fallback when the primary fails outright. A logical failure from the
// primary is returned as is.
type FallbackBackend struct {
	primary  Backend
	fallback Backend
	log      logging.Logger
}

func NewFallbackBackend(primary, fallback Backend, log logging.Logger) *FallbackBackend {
	return &FallbackBackend{primary: primary, fallback: fallback, log: log}
}

func (b *FallbackBackend) Execute(ctx context.Context, req Request) (Result, error) {
	res, err := b.primary.Execute(ctx, req)
	if err == nil {
		// a wipe has to reach the fallback copy too
		if _, isClear := req.(Clear); isClear {
			if _, ferr := b.fallback.Execute(ctx, req); ferr != nil {
				b.log.Warn(ctx, "clear fallback store failed", "error", ferr)
			}
		}
		return res, nil
	}

	b.log.Warn(ctx, "primary store failed, using fallback", "op", req.Name(), "error", err)

	res, ferr := b.fallback.Execute(ctx, req)
	if ferr != nil {
		b.log.Error(ctx, "fallback store failed", "op", req.Name(), "error", ferr)
		return failed(SourceFallback, ferr.Error()), nil
	}
	return res, nil
}
