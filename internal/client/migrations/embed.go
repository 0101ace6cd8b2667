// Package migrations embeds the goose migrations for the local databases and
// applies them.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed store/*.sql
var storeFS embed.FS

//go:embed kv/*.sql
var kvFS embed.FS

// Store returns the schema of the primary entity database.
func Store() fs.FS { return sub(storeFS, "store") }

// KV returns the schema of the key-value database.
func KV() fs.FS { return sub(kvFS, "kv") }

func sub(f embed.FS, dir string) fs.FS {
	s, err := fs.Sub(f, dir)
	if err != nil {
		panic(err)
	}
	return s
}

// Up applies every pending migration in fsys to db.
func Up(ctx context.Context, db *sql.DB, fsys fs.FS) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}
