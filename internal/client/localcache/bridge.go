package localcache

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/goccy/go-json"
)

// Bridge is a string-keyed entry point to a store living on the other side of
// a process or language boundary. Payloads and answers are JSON.
type Bridge interface {
	Dispatch(ctx context.Context, name string, payload []byte) ([]byte, error)
}

// BridgeFunc adapts a function to Bridge.
type BridgeFunc func(ctx context.Context, name string, payload []byte) ([]byte, error)

func (f BridgeFunc) Dispatch(ctx context.Context, name string, payload []byte) ([]byte, error) {
	return f(ctx, name, payload)
}

type wireResult struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Source  string          `json:"source,omitempty"`
}

// BridgeBackend is a Backend that forwards to a Bridge.
type BridgeBackend struct {
	bridge Bridge
}

func NewBridgeBackend(b Bridge) *BridgeBackend {
	return &BridgeBackend{bridge: b}
}

func (b *BridgeBackend) Execute(ctx context.Context, req Request) (Result, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Result{}, fmt.Errorf("encode %s: %w", req.Name(), err)
	}

	raw, err := b.bridge.Dispatch(ctx, req.Name(), payload)
	if err != nil {
		return Result{}, fmt.Errorf("bridge %s: %w", req.Name(), err)
	}

	var w wireResult
	if err := json.Unmarshal(raw, &w); err != nil {
		return Result{}, fmt.Errorf("decode %s result: %w", req.Name(), err)
	}

	data, err := decodeData(req, w.Data)
	if err != nil {
		return Result{}, fmt.Errorf("decode %s data: %w", req.Name(), err)
	}
	return Result{Success: w.Success, Data: data, Error: w.Error, Source: w.Source}, nil
}

// ServeBridge exposes backend through the Bridge contract.
func ServeBridge(backend Backend) Bridge {
	return BridgeFunc(func(ctx context.Context, name string, payload []byte) ([]byte, error) {
		req, err := DecodeRequest(name, payload)
		if err != nil {
			return nil, err
		}
		res, err := backend.Execute(ctx, req)
		if err != nil {
			return nil, err
		}
		return json.Marshal(res)
	})
}

// DecodeRequest maps an operation name and its JSON payload onto a Request.
func DecodeRequest(name string, payload []byte) (Request, error) {
	switch name {
	case "getWorkspaces":
		return decodeAs[GetWorkspaces](payload)
	case "saveWorkspace":
		return decodeAs[SaveWorkspace](payload)
	case "deleteWorkspace":
		return decodeAs[DeleteWorkspace](payload)
	case "getCategories":
		return decodeAs[GetCategories](payload)
	case "getCategoriesByWorkspace":
		return decodeAs[GetCategoriesByWorkspace](payload)
	case "saveCategory":
		return decodeAs[SaveCategory](payload)
	case "deleteCategory":
		return decodeAs[DeleteCategory](payload)
	case "getTasks":
		return decodeAs[GetTasks](payload)
	case "getTasksByWorkspace":
		return decodeAs[GetTasksByWorkspace](payload)
	case "saveTask":
		return decodeAs[SaveTask](payload)
	case "deleteTask":
		return decodeAs[DeleteTask](payload)
	case "getCommentsByTask":
		return decodeAs[GetCommentsByTask](payload)
	case "saveComment":
		return decodeAs[SaveComment](payload)
	case "deleteComment":
		return decodeAs[DeleteComment](payload)
	case "getAttachmentsByTask":
		return decodeAs[GetAttachmentsByTask](payload)
	case "saveAttachment":
		return decodeAs[SaveAttachment](payload)
	case "deleteAttachment":
		return decodeAs[DeleteAttachment](payload)
	case "getUser":
		return decodeAs[GetUser](payload)
	case "saveUser":
		return decodeAs[SaveUser](payload)
	case "saveFullSync":
		return decodeAs[SaveFullSync](payload)
	case "getAllUserData":
		return decodeAs[GetAllUserData](payload)
	case "hasSnapshot":
		return decodeAs[HasSnapshot](payload)
	case "clear":
		return decodeAs[Clear](payload)
	}
	return nil, fmt.Errorf("unknown cache operation %q", name)
}

func decodeAs[T Request](payload []byte) (Request, error) {
	var r T
	if len(payload) == 0 {
		return r, nil
	}
	if err := json.Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("decode %s: %w", r.Name(), err)
	}
	return r, nil
}

func decodeData(req Request, raw json.RawMessage) (any, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	switch req.(type) {
	case GetWorkspaces:
		return unmarshal[[]models.Workspace](raw)
	case GetCategories, GetCategoriesByWorkspace:
		return unmarshal[[]models.Category](raw)
	case GetTasks, GetTasksByWorkspace:
		return unmarshal[[]models.Task](raw)
	case GetCommentsByTask:
		return unmarshal[[]models.Comment](raw)
	case GetAttachmentsByTask:
		return unmarshal[[]models.Attachment](raw)
	case GetUser:
		return unmarshal[*models.User](raw)
	case GetAllUserData:
		return unmarshal[*models.Snapshot](raw)
	case HasSnapshot:
		return unmarshal[bool](raw)
	}
	return nil, nil
}

func unmarshal[T any](raw []byte) (any, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
