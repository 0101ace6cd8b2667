package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
)

// User returns the cached profile for email, or nil when none is cached.
func (s *Store) User(ctx context.Context, email string) (*models.User, error) {
	return getUser(ctx, s.db, email)
}

func (s *Store) SaveUser(ctx context.Context, u models.User) error {
	return upsertUser(ctx, s.db, u)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete user %d: %w", id, err)
	}
	return nil
}

func getUser(ctx context.Context, q dbx.DBTX, email string) (*models.User, error) {
	var u models.User
	err := q.GetContext(ctx, &u, `SELECT id, name, email, points FROM users WHERE email = ?`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", email, err)
	}
	return &u, nil
}

func upsertUser(ctx context.Context, q dbx.DBTX, u models.User) error {
	_, err := q.NamedExecContext(ctx, `
		INSERT INTO users (id, name, email, points)
		VALUES (:id, :name, :email, :points)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			points = excluded.points
	`, u)
	if err != nil {
		return fmt.Errorf("save user %d: %w", u.ID, err)
	}
	return nil
}
