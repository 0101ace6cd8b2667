package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
)

const taskColumns = `id, workspace_id, category_id, title, description, status, priority, due_date, assignee_id, updated_at`

func (s *Store) Tasks(ctx context.Context) ([]models.Task, error) {
	return listTasks(ctx, s.db)
}

func (s *Store) TasksByWorkspace(ctx context.Context, workspaceID int64) ([]models.Task, error) {
	out := []models.Task{}
	if err := s.db.SelectContext(ctx, &out,
		`SELECT `+taskColumns+` FROM tasks WHERE workspace_id = ? ORDER BY id`, workspaceID); err != nil {
		return nil, fmt.Errorf("list tasks of workspace %d: %w", workspaceID, err)
	}
	return out, nil
}

func (s *Store) SaveTask(ctx context.Context, t models.Task) error {
	return upsertTask(ctx, s.db, t)
}

// DeleteTask removes the task with its comments and attachments.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, q := range []string{
			`DELETE FROM comments WHERE task_id = ?`,
			`DELETE FROM attachments WHERE task_id = ?`,
			`DELETE FROM tasks WHERE id = ?`,
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("delete task %d: %w", id, err)
			}
		}
		return nil
	})
}

func listTasks(ctx context.Context, q dbx.DBTX) ([]models.Task, error) {
	out := []models.Task{}
	if err := q.SelectContext(ctx, &out, `SELECT `+taskColumns+` FROM tasks ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return out, nil
}

func upsertTask(ctx context.Context, q dbx.DBTX, t models.Task) error {
	_, err := q.NamedExecContext(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (:id, :workspace_id, :category_id, :title, :description, :status, :priority,
			:due_date, :assignee_id, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			workspace_id = excluded.workspace_id,
			category_id = excluded.category_id,
			title = excluded.title,
			description = excluded.description,
			status = excluded.status,
			priority = excluded.priority,
			due_date = excluded.due_date,
			assignee_id = excluded.assignee_id,
			updated_at = excluded.updated_at
	`, t)
	if err != nil {
		return fmt.Errorf("save task %d: %w", t.ID, err)
	}
	return nil
}
