// Package models defines the data shared by the sync core: queued mutations,
// network snapshots, cached entities and aggregate status values.
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// OperationType is the kind of mutation a SyncOperation carries.
type OperationType string

const (
	OperationCreate OperationType = "CREATE"
	OperationUpdate OperationType = "UPDATE"
	OperationDelete OperationType = "DELETE"
)

func (t OperationType) Valid() bool {
	switch t {
	case OperationCreate, OperationUpdate, OperationDelete:
		return true
	}
	return false
}

// ParseOperationType accepts any letter case.
func ParseOperationType(s string) (OperationType, error) {
	t := OperationType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown operation type %q", s)
	}
	return t, nil
}

// OperationStatus is the lifecycle state of a queued operation.
type OperationStatus string

const (
	StatusPending    OperationStatus = "pending"
	StatusInProgress OperationStatus = "in_progress"
	StatusCompleted  OperationStatus = "completed"
	StatusFailed     OperationStatus = "failed"
)

// SyncOperation is a queued mutation intent. ID and Timestamp are fixed at
// enqueue time.
type SyncOperation struct {
	ID         string          `json:"id"`
	Type       OperationType   `json:"type"`
	Entity     Entity          `json:"entity"`
	Payload    json.RawMessage `json:"payload"`
	Timestamp  time.Time       `json:"timestamp"`
	RetryCount int             `json:"retryCount"`
	Status     OperationStatus `json:"status"`
	LastError  string          `json:"lastError,omitempty"`
}

// Clone returns a deep copy safe to hand to callers.
func (op SyncOperation) Clone() SyncOperation {
	if op.Payload != nil {
		op.Payload = append(json.RawMessage(nil), op.Payload...)
	}
	return op
}

// SyncStatus is the aggregate view of the queue reported to subscribers.
type SyncStatus struct {
	PendingOperations   int       `json:"pendingOperations"`
	FailedOperations    int       `json:"failedOperations"`
	CompletedOperations int       `json:"completedOperations"`
	TotalOperations     int       `json:"totalOperations"`
	IsOnline            bool      `json:"isOnline"`
	IsSyncing           bool      `json:"isSyncing"`
	LastSyncAttempt     time.Time `json:"lastSyncAttempt,omitempty"`
}

// SyncOutcome classifies a forced sync.
type SyncOutcome string

const (
	OutcomeSuccess        SyncOutcome = "success"
	OutcomePartialFailure SyncOutcome = "partial_failure"
)

// SyncResult is returned by a forced sync.
type SyncResult struct {
	Outcome SyncOutcome `json:"outcome"`
	Status  SyncStatus  `json:"status"`
}

// OfflineSnapshot is persisted when connectivity is lost so a later start can
// tell why data may be stale.
type OfflineSnapshot struct {
	PendingOperations int       `json:"pendingOperations"`
	HasLocalData      bool      `json:"hasLocalData"`
	At                time.Time `json:"at"`
}
