// Package localcache is the single entry point to locally cached entities.
// Every logical operation is a Request value dispatched to a Backend, and
// every answer is a Result envelope.
package localcache

import "github.com/dmitrijs2005/tasksync/internal/client/models"

// Request is one logical cache operation. The set is closed.
type Request interface {
	Name() string
	isRequest()
}

type request struct{}

func (request) isRequest() {}

type GetWorkspaces struct{ request }

type SaveWorkspace struct {
	request
	Workspace models.Workspace `json:"workspace"`
}

type DeleteWorkspace struct {
	request
	ID int64 `json:"id"`
}

type GetCategories struct{ request }

type GetCategoriesByWorkspace struct {
	request
	WorkspaceID int64 `json:"workspaceId"`
}

type SaveCategory struct {
	request
	Category models.Category `json:"category"`
}

type DeleteCategory struct {
	request
	ID int64 `json:"id"`
}

type GetTasks struct{ request }

type GetTasksByWorkspace struct {
	request
	WorkspaceID int64 `json:"workspaceId"`
}

type SaveTask struct {
	request
	Task models.Task `json:"task"`
}

type DeleteTask struct {
	request
	ID int64 `json:"id"`
}

type GetCommentsByTask struct {
	request
	TaskID int64 `json:"taskId"`
}

type SaveComment struct {
	request
	Comment models.Comment `json:"comment"`
}

type DeleteComment struct {
	request
	ID int64 `json:"id"`
}

type GetAttachmentsByTask struct {
	request
	TaskID int64 `json:"taskId"`
}

type SaveAttachment struct {
	request
	Attachment models.Attachment `json:"attachment"`
}

type DeleteAttachment struct {
	request
	ID int64 `json:"id"`
}

type GetUser struct {
	request
	Email string `json:"email"`
}

type SaveUser struct {
	request
	User models.User `json:"user"`
}

// SaveFullSync replaces everything cached for Email with Snapshot.
type SaveFullSync struct {
	request
	Email    string           `json:"email"`
	Snapshot *models.Snapshot `json:"snapshot"`
}

type GetAllUserData struct {
	request
	Email string `json:"email"`
}

// HasSnapshot asks whether the store holds any workspaces or tasks.
type HasSnapshot struct{ request }

type Clear struct{ request }

func (GetWorkspaces) Name() string            { return "getWorkspaces" }
func (SaveWorkspace) Name() string            { return "saveWorkspace" }
func (DeleteWorkspace) Name() string          { return "deleteWorkspace" }
func (GetCategories) Name() string            { return "getCategories" }
func (GetCategoriesByWorkspace) Name() string { return "getCategoriesByWorkspace" }
func (SaveCategory) Name() string             { return "saveCategory" }
func (DeleteCategory) Name() string           { return "deleteCategory" }
func (GetTasks) Name() string                 { return "getTasks" }
func (GetTasksByWorkspace) Name() string      { return "getTasksByWorkspace" }
func (SaveTask) Name() string                 { return "saveTask" }
func (DeleteTask) Name() string               { return "deleteTask" }
func (GetCommentsByTask) Name() string        { return "getCommentsByTask" }
func (SaveComment) Name() string              { return "saveComment" }
func (DeleteComment) Name() string            { return "deleteComment" }
func (GetAttachmentsByTask) Name() string     { return "getAttachmentsByTask" }
func (SaveAttachment) Name() string           { return "saveAttachment" }
func (DeleteAttachment) Name() string         { return "deleteAttachment" }
func (GetUser) Name() string                  { return "getUser" }
func (SaveUser) Name() string                 { return "saveUser" }
func (SaveFullSync) Name() string             { return "saveFullSync" }
func (GetAllUserData) Name() string           { return "getAllUserData" }
func (HasSnapshot) Name() string              { return "hasSnapshot" }
func (Clear) Name() string                    { return "clear" }
