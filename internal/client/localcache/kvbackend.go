package localcache

import (
	"context"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/kv"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
)

const errUnsupportedByFallback = "unsupported by fallback store"

type fallbackBlob struct {
	Email    string           `json:"email"`
	Snapshot *models.Snapshot `json:"snapshot"`
	SavedAt  time.Time        `json:"savedAt"`
}

// KVBackend keeps one whole-snapshot blob in the key-value layer. It serves
// full-sync writes and reads only.
type KVBackend struct {
	store kv.Store
	now   func() time.Time
}

func NewKVBackend(s kv.Store) *KVBackend {
	return &KVBackend{store: s, now: time.Now}
}

func (b *KVBackend) Execute(ctx context.Context, req Request) (Result, error) {
	switch r := req.(type) {
	case SaveFullSync:
		blob := fallbackBlob{Email: r.Email, Snapshot: r.Snapshot, SavedAt: b.now()}
		if err := kv.SetJSON(ctx, b.store, kv.KeyCacheFallbackSnapshot, blob); err != nil {
			return Result{}, err
		}
		return ok(SourceFallback, nil), nil

	case GetAllUserData:
		var blob fallbackBlob
		found, err := kv.GetJSON(ctx, b.store, kv.KeyCacheFallbackSnapshot, &blob)
		if err != nil {
			return Result{}, err
		}
		if !found || blob.Snapshot == nil {
			return failed(SourceFallback, "no fallback snapshot"), nil
		}
		if blob.Email != r.Email {
			return failed(SourceFallback, "fallback snapshot belongs to another user"), nil
		}
		return ok(SourceFallback, blob.Snapshot), nil

	case HasSnapshot:
		var blob fallbackBlob
		found, err := kv.GetJSON(ctx, b.store, kv.KeyCacheFallbackSnapshot, &blob)
		if err != nil {
			return Result{}, err
		}
		return ok(SourceFallback, found && !blob.Snapshot.IsEmpty()), nil

	case Clear:
		if err := b.store.Delete(ctx, kv.KeyCacheFallbackSnapshot); err != nil {
			return Result{}, err
		}
		return ok(SourceFallback, nil), nil
	}
	return failed(SourceFallback, errUnsupportedByFallback), nil
}
