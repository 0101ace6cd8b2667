package localcache

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
)

// EntityStore is the structured store the primary backend drives.
type EntityStore interface {
	Workspaces(ctx context.Context) ([]models.Workspace, error)
	SaveWorkspace(ctx context.Context, w models.Workspace) error
	DeleteWorkspace(ctx context.Context, id int64) error
	Categories(ctx context.Context) ([]models.Category, error)
	CategoriesByWorkspace(ctx context.Context, workspaceID int64) ([]models.Category, error)
	SaveCategory(ctx context.Context, c models.Category) error
	DeleteCategory(ctx context.Context, id int64) error
	Tasks(ctx context.Context) ([]models.Task, error)
	TasksByWorkspace(ctx context.Context, workspaceID int64) ([]models.Task, error)
	SaveTask(ctx context.Context, t models.Task) error
	DeleteTask(ctx context.Context, id int64) error
	CommentsByTask(ctx context.Context, taskID int64) ([]models.Comment, error)
	SaveComment(ctx context.Context, c models.Comment) error
	DeleteComment(ctx context.Context, id int64) error
	AttachmentsByTask(ctx context.Context, taskID int64) ([]models.Attachment, error)
	SaveAttachment(ctx context.Context, a models.Attachment) error
	DeleteAttachment(ctx context.Context, id int64) error
	User(ctx context.Context, email string) (*models.User, error)
	SaveUser(ctx context.Context, u models.User) error
	ReplaceAll(ctx context.Context, email string, snap *models.Snapshot) error
	Snapshot(ctx context.Context, email string) (*models.Snapshot, error)
	HasData(ctx context.Context) (bool, error)
	Clear(ctx context.Context) error
}

// PrimaryBackend dispatches requests onto the structured store.
type PrimaryBackend struct {
	store EntityStore
}

func NewPrimaryBackend(s EntityStore) *PrimaryBackend {
	return &PrimaryBackend{store: s}
}

func (b *PrimaryBackend) Execute(ctx context.Context, req Request) (Result, error) {
	data, err := b.dispatch(ctx, req)
	if errors.Is(err, models.ErrOtherOwner) {
		return failed(SourcePrimary, err.Error()), nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", req.Name(), err)
	}
	return ok(SourcePrimary, data), nil
}

func (b *PrimaryBackend) dispatch(ctx context.Context, req Request) (any, error) {
	s := b.store
	switch r := req.(type) {
	case GetWorkspaces:
		return s.Workspaces(ctx)
	case SaveWorkspace:
		return nil, s.SaveWorkspace(ctx, r.Workspace)
	case DeleteWorkspace:
		return nil, s.DeleteWorkspace(ctx, r.ID)
	case GetCategories:
		return s.Categories(ctx)
	case GetCategoriesByWorkspace:
		return s.CategoriesByWorkspace(ctx, r.WorkspaceID)
	case SaveCategory:
		return nil, s.SaveCategory(ctx, r.Category)
	case DeleteCategory:
		return nil, s.DeleteCategory(ctx, r.ID)
	case GetTasks:
		return s.Tasks(ctx)
	case GetTasksByWorkspace:
		return s.TasksByWorkspace(ctx, r.WorkspaceID)
	case SaveTask:
		return nil, s.SaveTask(ctx, r.Task)
	case DeleteTask:
		return nil, s.DeleteTask(ctx, r.ID)
	case GetCommentsByTask:
		return s.CommentsByTask(ctx, r.TaskID)
	case SaveComment:
		return nil, s.SaveComment(ctx, r.Comment)
	case DeleteComment:
		return nil, s.DeleteComment(ctx, r.ID)
	case GetAttachmentsByTask:
		return s.AttachmentsByTask(ctx, r.TaskID)
	case SaveAttachment:
		return nil, s.SaveAttachment(ctx, r.Attachment)
	case DeleteAttachment:
		return nil, s.DeleteAttachment(ctx, r.ID)
	case GetUser:
		return s.User(ctx, r.Email)
	case SaveUser:
		return nil, s.SaveUser(ctx, r.User)
	case SaveFullSync:
		return nil, s.ReplaceAll(ctx, r.Email, r.Snapshot)
	case GetAllUserData:
		return s.Snapshot(ctx, r.Email)
	case HasSnapshot:
		return s.HasData(ctx)
	case Clear:
		return nil, s.Clear(ctx)
	}
	return nil, fmt.Errorf("unsupported request %T", req)
}

// UnavailableBackend stands in for a primary store that could not be opened.
// Every request fails, so a FallbackBackend in front of it serves alone.
type UnavailableBackend struct {
	Err error
}

func (b UnavailableBackend) Execute(_ context.Context, req Request) (Result, error) {
	return Result{}, fmt.Errorf("%s: %w", req.Name(), b.Err)
}
