// Package store is the primary structured local store: one SQLite database
// holding every cached entity, read and written through sqlx.
package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/client/migrations"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
	"github.com/jmoiron/sqlx"

	_ "modernc.org/sqlite"
)

// Store caches backend entities keyed by their backend primary keys.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Open opens dsn and applies the entity schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db.DB, migrations.Store()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

var entityTables = []string{"workspaces", "categories", "tasks", "comments", "attachments", "users", "sync_owner"}

// Clear removes every cached row.
func (s *Store) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return clearAll(ctx, tx)
	})
}

func clearAll(ctx context.Context, q dbx.DBTX) error {
	for _, table := range entityTables {
		if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// HasData reports whether any workspace or task is cached.
func (s *Store) HasData(ctx context.Context) (bool, error) {
	var n int
	err := s.db.GetContext(ctx, &n,
		`SELECT (SELECT COUNT(*) FROM workspaces) + (SELECT COUNT(*) FROM tasks)`)
	if err != nil {
		return false, fmt.Errorf("count cached rows: %w", err)
	}
	return n > 0, nil
}
