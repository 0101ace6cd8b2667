package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
)

func (s *Store) CommentsByTask(ctx context.Context, taskID int64) ([]models.Comment, error) {
	out := []models.Comment{}
	if err := s.db.SelectContext(ctx, &out,
		`SELECT id, task_id, user_id, description, created_at FROM comments WHERE task_id = ? ORDER BY id`,
		taskID); err != nil {
		return nil, fmt.Errorf("list comments of task %d: %w", taskID, err)
	}
	return out, nil
}

func (s *Store) SaveComment(ctx context.Context, c models.Comment) error {
	return upsertComment(ctx, s.db, c)
}

func (s *Store) DeleteComment(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete comment %d: %w", id, err)
	}
	return nil
}

func listComments(ctx context.Context, q dbx.DBTX) ([]models.Comment, error) {
	out := []models.Comment{}
	if err := q.SelectContext(ctx, &out,
		`SELECT id, task_id, user_id, description, created_at FROM comments ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return out, nil
}

func upsertComment(ctx context.Context, q dbx.DBTX, c models.Comment) error {
	_, err := q.NamedExecContext(ctx, `
		INSERT INTO comments (id, task_id, user_id, description, created_at)
		VALUES (:id, :task_id, :user_id, :description, :created_at)
		ON CONFLICT(id) DO UPDATE SET
			task_id = excluded.task_id,
			user_id = excluded.user_id,
			description = excluded.description,
			created_at = excluded.created_at
	`, c)
	if err != nil {
		return fmt.Errorf("save comment %d: %w", c.ID, err)
	}
	return nil
}
