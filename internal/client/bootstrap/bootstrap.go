// Package bootstrap decides at login whether the session starts from a live
// fetch or from the local cache, and fails closed when neither works.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/api"
	"github.com/dmitrijs2005/tasksync/internal/client/localcache"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/client/session"
	"github.com/dmitrijs2005/tasksync/internal/logging"
)

var (
	ErrNoSession             = errors.New("no session")
	ErrLocalDataNotAvailable = errors.New("local data not available")
)

type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// Session is the outcome of a successful bootstrap.
type Session struct {
	Identity string
	Mode     Mode
	// Degraded means the device was online but the backend rejected the
	// fetch, so the data came from the cache.
	Degraded bool
	Data     *models.Snapshot
	LastSync time.Time
}

type StatusSource interface {
	CheckStatus(ctx context.Context) models.NetworkStatus
}

type Fetcher interface {
	FetchInitialData(ctx context.Context, identity string) (*models.Snapshot, error)
}

type Cache interface {
	SaveFullSyncData(ctx context.Context, email string, snap *models.Snapshot) localcache.Result
	GetAllUserData(ctx context.Context, email string) localcache.Result
	HasLocalData(ctx context.Context) bool
	LastSync(ctx context.Context) (time.Time, bool)
}

// FlushFunc drains queued mutations. It returns once every operation pending
// at call time has been attempted, waiting out a drain already running.
type FlushFunc func(ctx context.Context)

type Bootstrapper struct {
	session session.Provider
	net     StatusSource
	remote  Fetcher
	cache   Cache
	flush   FlushFunc
	log     logging.Logger
}

func New(sp session.Provider, net StatusSource, remote Fetcher, cache Cache, flush FlushFunc, log logging.Logger) *Bootstrapper {
	return &Bootstrapper{session: sp, net: net, remote: remote, cache: cache, flush: flush, log: log}
}

// Run resolves the session. Online it fetches, replaces the cache and then
// flushes the queue, in that order. Offline, or when the fetch fails, it reads
// the cache and refuses to continue without prior data.
func (b *Bootstrapper) Run(ctx context.Context) (*Session, error) {
	token, err := b.session.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session token: %w", err)
	}
	identity, err := b.session.Identity(ctx)
	if err != nil {
		return nil, fmt.Errorf("read session identity: %w", err)
	}
	if identity == "" {
		return nil, ErrNoSession
	}

	status := b.net.CheckStatus(ctx)
	if !status.IsOnline {
		b.log.Info(ctx, "starting offline", "identity", identity)
		return b.fromCache(ctx, identity, false)
	}

	// an expired token still allows the offline path above
	if token == "" {
		return nil, ErrNoSession
	}

	snap, err := b.remote.FetchInitialData(ctx, identity)
	if err != nil {
		degraded := !errors.Is(err, api.ErrUnavailable)
		b.log.Warn(ctx, "initial fetch failed, using local cache", "error", err, "degraded", degraded)
		return b.fromCache(ctx, identity, degraded)
	}

	if res := b.cache.SaveFullSyncData(ctx, identity, snap); !res.Success {
		b.log.Warn(ctx, "caching fetched data failed", "error", res.Error)
	}

	if b.flush != nil {
		b.flush(ctx)
	}

	last, _ := b.cache.LastSync(ctx)
	b.log.Info(ctx, "started online", "identity", identity,
		"workspaces", len(snap.Workspaces), "tasks", len(snap.Tasks))
	return &Session{Identity: identity, Mode: ModeOnline, Data: snap, LastSync: last}, nil
}

func (b *Bootstrapper) fromCache(ctx context.Context, identity string, degraded bool) (*Session, error) {
	res := b.cache.GetAllUserData(ctx, identity)
	snap, err := localcache.SnapshotOf(res)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLocalDataNotAvailable, err)
	}
	if snap == nil || (snap.IsEmpty() && !b.cache.HasLocalData(ctx)) {
		return nil, ErrLocalDataNotAvailable
	}

	last, _ := b.cache.LastSync(ctx)
	return &Session{
		Identity: identity,
		Mode:     ModeOffline,
		Degraded: degraded,
		Data:     snap,
		LastSync: last,
	}, nil
}
