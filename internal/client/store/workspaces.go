package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
)

func (s *Store) Workspaces(ctx context.Context) ([]models.Workspace, error) {
	return listWorkspaces(ctx, s.db)
}

func (s *Store) SaveWorkspace(ctx context.Context, w models.Workspace) error {
	return upsertWorkspace(ctx, s.db, w)
}

// DeleteWorkspace removes the workspace together with its categories, tasks
// and their children.
func (s *Store) DeleteWorkspace(ctx context.Context, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		stmts := []string{
			`DELETE FROM comments WHERE task_id IN (SELECT id FROM tasks WHERE workspace_id = ?)`,
			`DELETE FROM attachments WHERE task_id IN (SELECT id FROM tasks WHERE workspace_id = ?)`,
			`DELETE FROM tasks WHERE workspace_id = ?`,
			`DELETE FROM categories WHERE workspace_id = ?`,
			`DELETE FROM workspaces WHERE id = ?`,
		}
		for _, q := range stmts {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("delete workspace %d: %w", id, err)
			}
		}
		return nil
	})
}

func listWorkspaces(ctx context.Context, q dbx.DBTX) ([]models.Workspace, error) {
	out := []models.Workspace{}
	if err := q.SelectContext(ctx, &out,
		`SELECT id, name, description, owner_email, created_at FROM workspaces ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return out, nil
}

func upsertWorkspace(ctx context.Context, q dbx.DBTX, w models.Workspace) error {
	_, err := q.NamedExecContext(ctx, `
		INSERT INTO workspaces (id, name, description, owner_email, created_at)
		VALUES (:id, :name, :description, :owner_email, :created_at)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			owner_email = excluded.owner_email,
			created_at = excluded.created_at
	`, w)
	if err != nil {
		return fmt.Errorf("save workspace %d: %w", w.ID, err)
	}
	return nil
}
