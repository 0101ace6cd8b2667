package localcache

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/kv"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/logging"
)

// Cache is the service the rest of the client talks to. It never returns a
// Go error from Execute; backend failures become failed Results.
type Cache struct {
	backend Backend
	flags   kv.Store
	log     logging.Logger
	now     func() time.Time
}

func NewCache(backend Backend, flags kv.Store, log logging.Logger) *Cache {
	return &Cache{backend: backend, flags: flags, log: log, now: time.Now}
}

func (c *Cache) Execute(ctx context.Context, req Request) Result {
	res, err := c.backend.Execute(ctx, req)
	if err != nil {
		c.log.Error(ctx, "local cache request failed", "op", req.Name(), "error", err)
		return Result{Success: false, Error: err.Error()}
	}
	if !res.Success {
		c.log.Debug(ctx, "local cache request unsuccessful", "op", req.Name(), "error", res.Error, "source", res.Source)
	}
	return res
}

// SaveFullSyncData replaces the cached dataset and marks local data present.
func (c *Cache) SaveFullSyncData(ctx context.Context, email string, snap *models.Snapshot) Result {
	res := c.Execute(ctx, SaveFullSync{Email: email, Snapshot: snap})
	if !res.Success {
		return res
	}
	if err := kv.SetBool(ctx, c.flags, kv.KeyCacheHasLocalData, true); err != nil {
		c.log.Warn(ctx, "persist has_local_data failed", "error", err)
	}
	if err := kv.SetTime(ctx, c.flags, kv.KeyCacheLastFullSync, c.now()); err != nil {
		c.log.Warn(ctx, "persist last_full_sync failed", "error", err)
	}
	return res
}

// GetAllUserData returns the cached snapshot for email in Result.Data.
func (c *Cache) GetAllUserData(ctx context.Context, email string) Result {
	return c.Execute(ctx, GetAllUserData{Email: email})
}

// ClearDatabase wipes every cached entity and resets the sync flags.
func (c *Cache) ClearDatabase(ctx context.Context) Result {
	res := c.Execute(ctx, Clear{})
	for _, key := range []string{kv.KeyCacheHasLocalData, kv.KeyCacheLastFullSync} {
		if err := c.flags.Delete(ctx, key); err != nil {
			c.log.Warn(ctx, "reset cache flag failed", "key", key, "error", err)
		}
	}
	return res
}

// HasLocalData reports whether a full sync has ever been persisted. When the
// flag is unset or unreadable the backend is asked, and a positive answer
// restores the flag.
func (c *Cache) HasLocalData(ctx context.Context) bool {
	v, err := kv.GetBool(ctx, c.flags, kv.KeyCacheHasLocalData)
	if err != nil {
		c.log.Warn(ctx, "read has_local_data failed", "error", err)
	}
	if v {
		return true
	}

	has, err := data[bool](c.Execute(ctx, HasSnapshot{}))
	if err != nil || !has {
		return false
	}
	if err := kv.SetBool(ctx, c.flags, kv.KeyCacheHasLocalData, true); err != nil {
		c.log.Warn(ctx, "persist has_local_data failed", "error", err)
	}
	return true
}

// LastSync returns the time of the last persisted full sync.
func (c *Cache) LastSync(ctx context.Context) (time.Time, bool) {
	t, found, err := kv.GetTime(ctx, c.flags, kv.KeyCacheLastFullSync)
	if err != nil {
		c.log.Warn(ctx, "read last_full_sync failed", "error", err)
		return time.Time{}, false
	}
	return t, found
}

func (c *Cache) Workspaces(ctx context.Context) ([]models.Workspace, error) {
	return data[[]models.Workspace](c.Execute(ctx, GetWorkspaces{}))
}

func (c *Cache) SaveWorkspace(ctx context.Context, w models.Workspace) error {
	return c.Execute(ctx, SaveWorkspace{Workspace: w}).Err()
}

func (c *Cache) DeleteWorkspace(ctx context.Context, id int64) error {
	return c.Execute(ctx, DeleteWorkspace{ID: id}).Err()
}

func (c *Cache) Tasks(ctx context.Context) ([]models.Task, error) {
	return data[[]models.Task](c.Execute(ctx, GetTasks{}))
}

func (c *Cache) TasksByWorkspace(ctx context.Context, workspaceID int64) ([]models.Task, error) {
	return data[[]models.Task](c.Execute(ctx, GetTasksByWorkspace{WorkspaceID: workspaceID}))
}

func (c *Cache) SaveTask(ctx context.Context, t models.Task) error {
	return c.Execute(ctx, SaveTask{Task: t}).Err()
}

func (c *Cache) DeleteTask(ctx context.Context, id int64) error {
	return c.Execute(ctx, DeleteTask{ID: id}).Err()
}

func (c *Cache) Categories(ctx context.Context) ([]models.Category, error) {
	return data[[]models.Category](c.Execute(ctx, GetCategories{}))
}

func (c *Cache) CategoriesByWorkspace(ctx context.Context, workspaceID int64) ([]models.Category, error) {
	return data[[]models.Category](c.Execute(ctx, GetCategoriesByWorkspace{WorkspaceID: workspaceID}))
}

func (c *Cache) SaveCategory(ctx context.Context, cat models.Category) error {
	return c.Execute(ctx, SaveCategory{Category: cat}).Err()
}

func (c *Cache) DeleteCategory(ctx context.Context, id int64) error {
	return c.Execute(ctx, DeleteCategory{ID: id}).Err()
}

func (c *Cache) CommentsByTask(ctx context.Context, taskID int64) ([]models.Comment, error) {
	return data[[]models.Comment](c.Execute(ctx, GetCommentsByTask{TaskID: taskID}))
}

func (c *Cache) SaveComment(ctx context.Context, cm models.Comment) error {
	return c.Execute(ctx, SaveComment{Comment: cm}).Err()
}

func (c *Cache) DeleteComment(ctx context.Context, id int64) error {
	return c.Execute(ctx, DeleteComment{ID: id}).Err()
}

func (c *Cache) AttachmentsByTask(ctx context.Context, taskID int64) ([]models.Attachment, error) {
	return data[[]models.Attachment](c.Execute(ctx, GetAttachmentsByTask{TaskID: taskID}))
}

func (c *Cache) SaveAttachment(ctx context.Context, a models.Attachment) error {
	return c.Execute(ctx, SaveAttachment{Attachment: a}).Err()
}

func (c *Cache) DeleteAttachment(ctx context.Context, id int64) error {
	return c.Execute(ctx, DeleteAttachment{ID: id}).Err()
}

// User returns nil when no profile is cached for email.
func (c *Cache) User(ctx context.Context, email string) (*models.User, error) {
	return data[*models.User](c.Execute(ctx, GetUser{Email: email}))
}

func (c *Cache) SaveUser(ctx context.Context, u models.User) error {
	return c.Execute(ctx, SaveUser{User: u}).Err()
}

// SnapshotOf extracts the snapshot carried by a GetAllUserData result.
func SnapshotOf(res Result) (*models.Snapshot, error) {
	return data[*models.Snapshot](res)
}

func data[T any](res Result) (T, error) {
	var zero T
	if err := res.Err(); err != nil {
		return zero, err
	}
	if res.Data == nil {
		return zero, nil
	}
	v, ok := res.Data.(T)
	if !ok {
		return zero, fmt.Errorf("%w: unexpected data %T", ErrOperationFailed, res.Data)
	}
	return v, nil
}
