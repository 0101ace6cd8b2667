package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
)

// ErrOtherOwner is returned by Snapshot for an identity that did not sync the data.
var ErrOtherOwner = models.ErrOtherOwner

// Owner returns the identity of the last full sync, or "" when there is none.
func (s *Store) Owner(ctx context.Context) (string, error) {
	return getOwner(ctx, s.db)
}

func getOwner(ctx context.Context, q dbx.DBTX) (string, error) {
	var email string
	err := q.GetContext(ctx, &email, `SELECT email FROM sync_owner WHERE id = 1`)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get sync owner: %w", err)
	}
	return email, nil
}

func setOwner(ctx context.Context, q dbx.DBTX, email string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO sync_owner (id, email) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET email = excluded.email
	`, email)
	if err != nil {
		return fmt.Errorf("set sync owner: %w", err)
	}
	return nil
}
