package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
)

func (s *Store) AttachmentsByTask(ctx context.Context, taskID int64) ([]models.Attachment, error) {
	out := []models.Attachment{}
	if err := s.db.SelectContext(ctx, &out,
		`SELECT id, task_id, file_name, mime_type, url, size FROM attachments WHERE task_id = ? ORDER BY id`,
		taskID); err != nil {
		return nil, fmt.Errorf("list attachments of task %d: %w", taskID, err)
	}
	return out, nil
}

func (s *Store) SaveAttachment(ctx context.Context, a models.Attachment) error {
	return upsertAttachment(ctx, s.db, a)
}

func (s *Store) DeleteAttachment(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete attachment %d: %w", id, err)
	}
	return nil
}

func listAttachments(ctx context.Context, q dbx.DBTX) ([]models.Attachment, error) {
	out := []models.Attachment{}
	if err := q.SelectContext(ctx, &out,
		`SELECT id, task_id, file_name, mime_type, url, size FROM attachments ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return out, nil
}

func upsertAttachment(ctx context.Context, q dbx.DBTX, a models.Attachment) error {
	_, err := q.NamedExecContext(ctx, `
		INSERT INTO attachments (id, task_id, file_name, mime_type, url, size)
		VALUES (:id, :task_id, :file_name, :mime_type, :url, :size)
		ON CONFLICT(id) DO UPDATE SET
			task_id = excluded.task_id,
			file_name = excluded.file_name,
			mime_type = excluded.mime_type,
			url = excluded.url,
			size = excluded.size
	`, a)
	if err != nil {
		return fmt.Errorf("save attachment %d: %w", a.ID, err)
	}
	return nil
}
