package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/dbx"
)

// ReplaceAll swaps the cached dataset for snap in a single transaction. The
// previous rows are discarded; on failure nothing changes.
func (s *Store) ReplaceAll(ctx context.Context, email string, snap *models.Snapshot) error {
	if snap == nil {
		snap = &models.Snapshot{}
	}
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := clearAll(ctx, tx); err != nil {
			return err
		}
		for _, w := range snap.Workspaces {
			if err := upsertWorkspace(ctx, tx, w); err != nil {
				return err
			}
		}
		for _, c := range snap.Categories {
			if err := upsertCategory(ctx, tx, c); err != nil {
				return err
			}
		}
		for _, t := range snap.Tasks {
			if err := upsertTask(ctx, tx, t); err != nil {
				return err
			}
		}
		for _, c := range snap.Comments {
			if err := upsertComment(ctx, tx, c); err != nil {
				return err
			}
		}
		for _, a := range snap.Attachments {
			if err := upsertAttachment(ctx, tx, a); err != nil {
				return err
			}
		}
		if snap.User != nil {
			u := *snap.User
			if u.Email == "" {
				u.Email = email
			}
			if err := upsertUser(ctx, tx, u); err != nil {
				return err
			}
		}
		return setOwner(ctx, tx, email)
	})
}

// Snapshot assembles everything cached for email. It fails with
// ErrOtherOwner unless the last ReplaceAll was made for email.
func (s *Store) Snapshot(ctx context.Context, email string) (*models.Snapshot, error) {
	owner, err := getOwner(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if owner == "" || owner != email {
		return nil, ErrOtherOwner
	}

	var snap models.Snapshot
	if snap.Workspaces, err = listWorkspaces(ctx, s.db); err != nil {
		return nil, err
	}
	if snap.Categories, err = listCategories(ctx, s.db); err != nil {
		return nil, err
	}
	if snap.Tasks, err = listTasks(ctx, s.db); err != nil {
		return nil, err
	}
	if snap.Comments, err = listComments(ctx, s.db); err != nil {
		return nil, err
	}
	if snap.Attachments, err = listAttachments(ctx, s.db); err != nil {
		return nil, err
	}
	if snap.User, err = getUser(ctx, s.db, email); err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return &snap, nil
}
