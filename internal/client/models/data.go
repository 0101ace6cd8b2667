package models

import (
	"errors"
	"time"
)

// Cached records mirror backend rows. Primary keys are the backend's and are
// stored verbatim so cached and synced records share identifiers.

type Workspace struct {
	ID          int64     `json:"id_workspace" db:"id"`
	Name        string    `json:"nome" db:"name"`
	Description string    `json:"descricao,omitempty" db:"description"`
	OwnerEmail  string    `json:"email_dono,omitempty" db:"owner_email"`
	CreatedAt   time.Time `json:"data_criacao,omitempty" db:"created_at"`
}

type Category struct {
	ID          int64  `json:"id_categoria" db:"id"`
	WorkspaceID int64  `json:"id_workspace" db:"workspace_id"`
	Name        string `json:"nome" db:"name"`
	Color       string `json:"cor,omitempty" db:"color"`
}

type Task struct {
	ID          int64      `json:"id_tarefa" db:"id"`
	WorkspaceID int64      `json:"id_workspace" db:"workspace_id"`
	CategoryID  *int64     `json:"id_categoria,omitempty" db:"category_id"`
	Title       string     `json:"titulo" db:"title"`
	Description string     `json:"descricao,omitempty" db:"description"`
	Status      string     `json:"status,omitempty" db:"status"`
	Priority    string     `json:"prioridade,omitempty" db:"priority"`
	DueDate     *time.Time `json:"data_vencimento,omitempty" db:"due_date"`
	AssigneeID  *int64     `json:"id_responsavel,omitempty" db:"assignee_id"`
	UpdatedAt   time.Time  `json:"data_atualizacao,omitempty" db:"updated_at"`
}

type Comment struct {
	ID          int64     `json:"id_comentario" db:"id"`
	TaskID      int64     `json:"id_tarefa" db:"task_id"`
	UserID      int64     `json:"id_usuario,omitempty" db:"user_id"`
	Description string    `json:"descricao" db:"description"`
	CreatedAt   time.Time `json:"data_criacao,omitempty" db:"created_at"`
}

type Attachment struct {
	ID       int64  `json:"id_anexo" db:"id"`
	TaskID   int64  `json:"id_tarefa" db:"task_id"`
	FileName string `json:"nome_arquivo" db:"file_name"`
	MimeType string `json:"tipo,omitempty" db:"mime_type"`
	URL      string `json:"url,omitempty" db:"url"`
	Size     int64  `json:"tamanho,omitempty" db:"size"`
}

type User struct {
	ID     int64  `json:"id_usuario" db:"id"`
	Name   string `json:"nome" db:"name"`
	Email  string `json:"email" db:"email"`
	Points int64  `json:"pontos,omitempty" db:"points"`
}

// ErrOtherOwner means a cached dataset was synced for a different identity,
// or for none at all.
var ErrOtherOwner = errors.New("cached data belongs to another user")

// Snapshot is a complete replacement dataset for one user, as returned by the
// initial-data endpoint.
type Snapshot struct {
	Workspaces  []Workspace  `json:"workspaces"`
	Categories  []Category   `json:"categories"`
	Tasks       []Task       `json:"tasks"`
	Comments    []Comment    `json:"comments"`
	Attachments []Attachment `json:"attachments"`
	User        *User        `json:"user,omitempty"`
}

// IsEmpty reports whether the snapshot carries neither workspaces nor tasks,
// which is what offline bootstrap treats as "no local data".
func (s *Snapshot) IsEmpty() bool {
	return s == nil || (len(s.Workspaces) == 0 && len(s.Tasks) == 0)
}
