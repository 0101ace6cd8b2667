package api

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
)

// IdentitySource resolves the identity operations are submitted for.
type IdentitySource interface {
	Identity(ctx context.Context) (string, error)
}

// LastSyncFunc reports the last successful full sync, if any.
type LastSyncFunc func(ctx context.Context) (time.Time, bool)

// OperationSender delivers queued operations one per request.
type OperationSender struct {
	client   Client
	identity IdentitySource
	lastSync LastSyncFunc
}

func NewOperationSender(client Client, identity IdentitySource, lastSync LastSyncFunc) *OperationSender {
	return &OperationSender{client: client, identity: identity, lastSync: lastSync}
}

// Deliver submits op and turns a negative verdict into a RemoteError.
func (s *OperationSender) Deliver(ctx context.Context, op models.SyncOperation) error {
	identity, err := s.identity.Identity(ctx)
	if err != nil {
		return fmt.Errorf("resolve identity: %w", err)
	}
	if identity == "" {
		return ErrUnauthorized
	}

	req := SubmitRequest{Operations: []models.SyncOperation{op}, Identity: identity}
	if s.lastSync != nil {
		if t, ok := s.lastSync(ctx); ok {
			req.LastSync = &t
		}
	}

	results, err := s.client.SubmitOperations(ctx, req)
	if err != nil {
		return err
	}

	res, ok := pick(results, op.ID)
	if !ok {
		return &RemoteError{Message: fmt.Sprintf("no result for operation %s", op.ID)}
	}
	if !res.Success {
		msg := res.Error
		if msg == "" {
			msg = "operation rejected"
		}
		return &RemoteError{Message: msg}
	}
	return nil
}

func pick(results []OperationResult, id string) (OperationResult, bool) {
	for _, r := range results {
		if r.OperationID == id {
			return r, true
		}
	}
	// a lone unlabelled verdict answers the single operation sent
	if len(results) == 1 && results[0].OperationID == "" {
		return results[0], true
	}
	return OperationResult{}, false
}
