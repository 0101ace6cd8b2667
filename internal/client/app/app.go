// Package app wires the sync core together: storage, connectivity, the
// operation queue and the login bootstrap.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/tasksync/internal/client/api"
	"github.com/dmitrijs2005/tasksync/internal/client/bootstrap"
	"github.com/dmitrijs2005/tasksync/internal/client/config"
	"github.com/dmitrijs2005/tasksync/internal/client/kv"
	"github.com/dmitrijs2005/tasksync/internal/client/localcache"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/client/network"
	"github.com/dmitrijs2005/tasksync/internal/client/services"
	"github.com/dmitrijs2005/tasksync/internal/client/session"
	"github.com/dmitrijs2005/tasksync/internal/client/store"
	"github.com/dmitrijs2005/tasksync/internal/client/syncqueue"
	"github.com/dmitrijs2005/tasksync/internal/filex"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/jmoiron/sqlx"
)

const (
	kvFile    = "kv.db"
	storeFile = "tasksync.db"
)

// App owns every component of the client and their lifecycle.
type App struct {
	cfg *config.Config
	log logging.Logger

	kvDB  *sqlx.DB
	store *store.Store
	probe network.Connectivity

	KV       kv.Store
	Cache    *localcache.Cache
	Monitor  *network.Monitor
	Queue    *syncqueue.Manager
	Session  *session.KVProvider
	API      *api.HTTPClient
	Entities services.EntityService

	boot  *bootstrap.Bootstrapper
	coord *Coordinator

	ctx      context.Context
	cancel   context.CancelFunc
	listener network.ListenerID

	mu      sync.Mutex
	current *bootstrap.Session
}

// New opens local storage under cfg.DataDir and builds the components. A
// broken entity database is tolerated: the key-value fallback serves alone.
func New(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	kvPath, err := filex.DataFile(cfg.DataDir, kvFile)
	if err != nil {
		return nil, err
	}
	kvStore, kvDB, err := kv.OpenSQLite(ctx, kvPath)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log, kvDB: kvDB, KV: kvStore}

	var primary localcache.Backend
	storePath, err := filex.DataFile(cfg.DataDir, storeFile)
	if err == nil {
		a.store, err = store.Open(ctx, storePath)
	}
	if err != nil {
		log.Error(ctx, "primary store unavailable, using fallback only", "error", err)
		primary = localcache.UnavailableBackend{Err: err}
	} else {
		primary = localcache.NewPrimaryBackend(a.store)
	}

	backend := localcache.NewFallbackBackend(primary, localcache.NewKVBackend(kvStore), log.With("component", "localcache"))
	a.Cache = localcache.NewCache(backend, kvStore, log.With("component", "localcache"))

	a.probe, err = newProbe(cfg)
	if err != nil {
		_ = a.close()
		return nil, err
	}

	a.Monitor = network.NewMonitor(a.probe, kvStore, log.With("component", "network"), network.Options{
		Throttle:      cfg.StatusThrottle,
		CheckInterval: cfg.NetworkCheckInterval,
		QueryTimeout:  cfg.RequestTimeout,
	})

	a.Session = session.NewKVProvider(kvStore)
	a.API = api.NewHTTPClient(cfg.ServerBaseURL, a.Session, cfg.RequestTimeout, log.With("component", "api"))

	sender := api.NewOperationSender(a.API, a.Session, a.Cache.LastSync)
	a.Queue = syncqueue.NewManager(kvStore, sender, a.Monitor, log.With("component", "syncqueue"), syncqueue.Options{
		MaxRetries:      cfg.MaxRetries,
		DeliveryTimeout: cfg.DeliveryTimeout,
		DrainInterval:   cfg.DrainInterval,
	})

	a.Entities = services.NewEntityService(a.Cache, a.Queue, log.With("component", "services"))

	flush := func(ctx context.Context) { a.Queue.DrainAndWait(ctx) }
	a.boot = bootstrap.New(a.Session, a.Monitor, a.API, a.Cache, flush, log.With("component", "bootstrap"))

	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.coord = NewCoordinator(a.ctx, a.Queue, a.Cache, kvStore, a.rehydrate, log.With("component", "coordinator"))

	return a, nil
}

func newProbe(cfg *config.Config) (network.Connectivity, error) {
	if cfg.HealthCheckGRPCAddr != "" {
		p, err := network.NewGRPCHealthProbe(cfg.HealthCheckGRPCAddr, "")
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	return network.NewHTTPProbe(cfg.ServerBaseURL, cfg.RequestTimeout), nil
}

// Init restores persisted state and starts the background loops.
func (a *App) Init(ctx context.Context) error {
	if err := a.Monitor.Init(ctx); err != nil {
		return fmt.Errorf("init network monitor: %w", err)
	}
	if err := a.Queue.Init(ctx); err != nil {
		return fmt.Errorf("init sync queue: %w", err)
	}

	a.listener = a.Monitor.AddListener(a.coord)
	a.Monitor.Start(a.ctx)
	a.Queue.Start(a.ctx)
	return nil
}

// Dispose stops background work and closes local storage.
func (a *App) Dispose() error {
	a.Monitor.RemoveListener(a.listener)
	a.Monitor.Dispose()
	a.Queue.Dispose()
	a.cancel()
	a.coord.Wait()
	return a.close()
}

func (a *App) close() error {
	var errs []error
	if c, ok := a.probe.(io.Closer); ok {
		errs = append(errs, c.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.kvDB != nil {
		errs = append(errs, a.kvDB.Close())
	}
	return errors.Join(errs...)
}

// Login stores token and bootstraps the session from it.
func (a *App) Login(ctx context.Context, token string) (*bootstrap.Session, error) {
	if err := a.Session.Save(ctx, token); err != nil {
		return nil, err
	}
	return a.Resume(ctx)
}

// Resume bootstraps from the persisted session, if any.
func (a *App) Resume(ctx context.Context) (*bootstrap.Session, error) {
	s, err := a.boot.Run(ctx)
	if err != nil {
		return nil, err
	}
	a.setCurrent(s)
	return s, nil
}

// Logout forgets the session together with its cached data and queue.
func (a *App) Logout(ctx context.Context) error {
	if err := a.Queue.Clear(ctx); err != nil {
		return err
	}
	if err := a.Cache.ClearDatabase(ctx).Err(); err != nil {
		return err
	}
	if err := a.Session.Clear(ctx); err != nil {
		return err
	}
	a.setCurrent(nil)
	return nil
}

// Current returns the active session or nil.
func (a *App) Current() *bootstrap.Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current
}

func (a *App) setCurrent(s *bootstrap.Session) {
	a.mu.Lock()
	a.current = s
	a.mu.Unlock()
}

func (a *App) Sync(ctx context.Context) models.SyncResult {
	return a.Queue.ForceSync(ctx)
}

func (a *App) SyncStatus() models.SyncStatus {
	return a.Queue.Status()
}

func (a *App) NetworkStatus(ctx context.Context) models.NetworkStatus {
	return a.Monitor.CheckStatus(ctx)
}

func (a *App) Operations() []models.SyncOperation {
	return a.Queue.Operations()
}

func (a *App) RetryFailed(ctx context.Context) (int, error) {
	return a.Queue.RetryFailed(ctx)
}

// Add records a create for entity. The local row gets a temporary id until
// the backend assigns one.
func (a *App) Add(ctx context.Context, entity models.Entity, payload []byte) (string, error) {
	return a.Entities.Create(ctx, entity, payload)
}

func (a *App) Update(ctx context.Context, entity models.Entity, payload []byte) (string, error) {
	return a.Entities.Update(ctx, entity, payload)
}

func (a *App) Delete(ctx context.Context, entity models.Entity, id string) (string, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return "", fmt.Errorf("parse id %q: %w", id, err)
	}
	return a.Entities.Delete(ctx, entity, n)
}

// rehydrate refetches the dataset for the stored session. Without one there
// is nothing to do.
func (a *App) rehydrate(ctx context.Context) error {
	_, err := a.Resume(ctx)
	if errors.Is(err, bootstrap.ErrNoSession) {
		return nil
	}
	return err
}
