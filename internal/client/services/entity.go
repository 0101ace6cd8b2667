// Package services contains the client's application services. EntityService
// applies user mutations locally and queues them for the backend.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/localcache"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/goccy/go-json"
)

// EntityService records mutations. Every call updates the local cache first
// and then enqueues the operation; it never waits for the network.
type EntityService interface {
	Create(ctx context.Context, entity models.Entity, payload []byte) (string, error)
	Update(ctx context.Context, entity models.Entity, payload []byte) (string, error)
	Delete(ctx context.Context, entity models.Entity, id int64) (string, error)
}

// Queue accepts mutations for delivery.
type Queue interface {
	Enqueue(ctx context.Context, opType models.OperationType, entity models.Entity, payload []byte) (string, error)
}

// Executor runs local cache requests.
type Executor interface {
	Execute(ctx context.Context, req localcache.Request) localcache.Result
}

type entityService struct {
	cache Executor
	queue Queue
	log   logging.Logger
	now   func() time.Time
}

func NewEntityService(cache Executor, queue Queue, log logging.Logger) EntityService {
	return &entityService{cache: cache, queue: queue, log: log, now: time.Now}
}

func (s *entityService) Create(ctx context.Context, entity models.Entity, payload []byte) (string, error) {
	return s.save(ctx, models.OperationCreate, entity, payload)
}

func (s *entityService) Update(ctx context.Context, entity models.Entity, payload []byte) (string, error) {
	return s.save(ctx, models.OperationUpdate, entity, payload)
}

func (s *entityService) Delete(ctx context.Context, entity models.Entity, id int64) (string, error) {
	ent, err := models.ParseEntity(string(entity))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}

	payload, err := json.Marshal(map[string]int64{idField[ent]: id})
	if err != nil {
		return "", err
	}

	if req := deleteRequest(ent, id); req != nil {
		s.apply(ctx, req)
	}
	return s.queue.Enqueue(ctx, models.OperationDelete, ent, payload)
}

func (s *entityService) save(ctx context.Context, opType models.OperationType, entity models.Entity, payload []byte) (string, error) {
	ent, err := models.ParseEntity(string(entity))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}

	// records created offline get a negative id until the backend assigns one
	localID := -s.now().UnixMilli()
	if opType != models.OperationCreate {
		localID = 0
	}

	req, normalized, err := saveRequest(ent, payload, localID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}
	s.apply(ctx, req)

	return s.queue.Enqueue(ctx, opType, ent, normalized)
}

// apply writes through the cache. A failure is logged; the queued operation
// still carries the change to the backend.
func (s *entityService) apply(ctx context.Context, req localcache.Request) {
	if res := s.cache.Execute(ctx, req); !res.Success {
		s.log.Warn(ctx, "local cache write failed", "op", req.Name(), "error", res.Error)
	}
}

var idField = map[models.Entity]string{
	models.EntityWorkspace:  "id_workspace",
	models.EntityTask:       "id_tarefa",
	models.EntityCategory:   "id_categoria",
	models.EntityComment:    "id_comentario",
	models.EntityAttachment: "id_anexo",
	models.EntityUser:       "id_usuario",
}

func deleteRequest(ent models.Entity, id int64) localcache.Request {
	switch ent {
	case models.EntityWorkspace:
		return localcache.DeleteWorkspace{ID: id}
	case models.EntityTask:
		return localcache.DeleteTask{ID: id}
	case models.EntityCategory:
		return localcache.DeleteCategory{ID: id}
	case models.EntityComment:
		return localcache.DeleteComment{ID: id}
	case models.EntityAttachment:
		return localcache.DeleteAttachment{ID: id}
	}
	return nil
}

func saveRequest(ent models.Entity, payload []byte, localID int64) (localcache.Request, []byte, error) {
	switch ent {
	case models.EntityWorkspace:
		v, b, err := decode(payload, localID, func(w *models.Workspace) *int64 { return &w.ID })
		return localcache.SaveWorkspace{Workspace: v}, b, err
	case models.EntityTask:
		v, b, err := decode(payload, localID, func(t *models.Task) *int64 { return &t.ID })
		return localcache.SaveTask{Task: v}, b, err
	case models.EntityCategory:
		v, b, err := decode(payload, localID, func(c *models.Category) *int64 { return &c.ID })
		return localcache.SaveCategory{Category: v}, b, err
	case models.EntityComment:
		v, b, err := decode(payload, localID, func(c *models.Comment) *int64 { return &c.ID })
		return localcache.SaveComment{Comment: v}, b, err
	case models.EntityAttachment:
		v, b, err := decode(payload, localID, func(a *models.Attachment) *int64 { return &a.ID })
		return localcache.SaveAttachment{Attachment: v}, b, err
	case models.EntityUser:
		v, b, err := decode(payload, localID, func(u *models.User) *int64 { return &u.ID })
		return localcache.SaveUser{User: v}, b, err
	}
	return nil, nil, fmt.Errorf("unsupported entity %q", ent)
}

// decode parses payload as T. When T has no id and localID is set, the id is
// filled in and the payload re-encoded so cache and queue agree.
func decode[T any](payload []byte, localID int64, id func(*T) *int64) (T, []byte, error) {
	var v T
	if len(payload) == 0 {
		return v, nil, fmt.Errorf("empty payload")
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, nil, fmt.Errorf("decode payload: %w", err)
	}

	p := id(&v)
	if *p != 0 || localID == 0 {
		if *p == 0 {
			return v, nil, fmt.Errorf("payload has no id")
		}
		return v, payload, nil
	}
	*p = localID

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payload, &fields); err != nil {
		return v, nil, fmt.Errorf("decode payload: %w", err)
	}
	b, err := json.Marshal(localID)
	if err != nil {
		return v, nil, err
	}
	fields[idFieldOf(&v)] = b
	out, err := json.Marshal(fields)
	if err != nil {
		return v, nil, err
	}
	return v, out, nil
}

func idFieldOf(v any) string {
	switch v.(type) {
	case *models.Workspace:
		return idField[models.EntityWorkspace]
	case *models.Task:
		return idField[models.EntityTask]
	case *models.Category:
		return idField[models.EntityCategory]
	case *models.Comment:
		return idField[models.EntityComment]
	case *models.Attachment:
		return idField[models.EntityAttachment]
	case *models.User:
		return idField[models.EntityUser]
	}
	return "id"
}
