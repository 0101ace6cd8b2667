package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
)

func (s *Store) Categories(ctx context.Context) ([]models.Category, error) {
	return listCategories(ctx, s.db)
}

func (s *Store) CategoriesByWorkspace(ctx context.Context, workspaceID int64) ([]models.Category, error) {
	out := []models.Category{}
	if err := s.db.SelectContext(ctx, &out,
		`SELECT id, workspace_id, name, color FROM categories WHERE workspace_id = ? ORDER BY id`,
		workspaceID); err != nil {
		return nil, fmt.Errorf("list categories of workspace %d: %w", workspaceID, err)
	}
	return out, nil
}

func (s *Store) SaveCategory(ctx context.Context, c models.Category) error {
	return upsertCategory(ctx, s.db, c)
}

func (s *Store) DeleteCategory(ctx context.Context, id int64) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `UPDATE tasks SET category_id = NULL WHERE category_id = ?`, id); err != nil {
			return fmt.Errorf("detach tasks from category %d: %w", id, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete category %d: %w", id, err)
		}
		return nil
	})
}

func listCategories(ctx context.Context, q dbx.DBTX) ([]models.Category, error) {
	out := []models.Category{}
	if err := q.SelectContext(ctx, &out,
		`SELECT id, workspace_id, name, color FROM categories ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return out, nil
}

func upsertCategory(ctx context.Context, q dbx.DBTX, c models.Category) error {
	_, err := q.NamedExecContext(ctx, `
		INSERT INTO categories (id, workspace_id, name, color)
		VALUES (:id, :workspace_id, :name, :color)
		ON CONFLICT(id) DO UPDATE SET
			workspace_id = excluded.workspace_id,
			name = excluded.name,
			color = excluded.color
	`, c)
	if err != nil {
		return fmt.Errorf("save category %d: %w", c.ID, err)
	}
	return nil
}
