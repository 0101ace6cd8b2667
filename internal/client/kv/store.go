// Package kv is the durable key-value layer: small blobs keyed by string,
// used for queue persistence, flags, session data and the fallback snapshot.
package kv

import "context"

// Store persists opaque values. Get returns (nil, nil) when the key is absent.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
}

// Well-known keys.
const (
	KeyNetworkLastStatus      = "network.last_status"
	KeyNetworkOfflineSnapshot = "network.offline_snapshot"
	KeySyncQueue              = "sync.queue"
	KeySyncLastAttempt        = "sync.last_attempt"
	KeyCacheLastFullSync      = "cache.last_full_sync"
	KeyCacheHasLocalData      = "cache.has_local_data"
	KeyCacheFallbackSnapshot  = "cache.fallback_snapshot"
	KeySessionToken           = "session.token"
	KeySessionIdentity        = "session.identity"
)
