// Package api talks to the task backend over REST.
package api

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
)

type Client interface {
	FetchInitialData(ctx context.Context, identity string) (*models.Snapshot, error)
	SubmitOperations(ctx context.Context, req SubmitRequest) ([]OperationResult, error)
	Ping(ctx context.Context) error
}

// SubmitRequest is the body of POST /sync/offline.
type SubmitRequest struct {
	Operations []models.SyncOperation `json:"operations"`
	LastSync   *time.Time             `json:"last_sync,omitempty"`
	Identity   string                 `json:"identity"`
}

// OperationResult is the backend verdict on one submitted operation.
type OperationResult struct {
	OperationID string `json:"op_id"`
	Success     bool   `json:"success"`
	Error       string `json:"error,omitempty"`
}

type submitResponse struct {
	Results []OperationResult `json:"results"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
	Erro    string `json:"erro"`
}

func (e errorResponse) text() string {
	for _, s := range []string{e.Message, e.Error, e.Erro} {
		if s != "" {
			return s
		}
	}
	return ""
}
