package app

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/kv"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/logging"
)

// QueueControl is the part of the sync queue the coordinator drives.
type QueueControl interface {
	TriggerDrain()
	Status() models.SyncStatus
}

// LocalData reports whether the cache holds a full sync.
type LocalData interface {
	HasLocalData(ctx context.Context) bool
}

// RehydrateFunc refetches the full dataset after reconnecting with an empty
// cache.
type RehydrateFunc func(ctx context.Context) error

// Coordinator reacts to connectivity transitions on behalf of the app.
// Callbacks run on the monitor goroutine and must not block it, so the
// rehydration runs in the background.
type Coordinator struct {
	queue     QueueControl
	cache     LocalData
	store     kv.Store
	rehydrate RehydrateFunc
	log       logging.Logger

	ctx context.Context
	wg  sync.WaitGroup

	mu          sync.Mutex
	rehydrating bool
}

func NewCoordinator(ctx context.Context, queue QueueControl, cache LocalData, store kv.Store, rehydrate RehydrateFunc, log logging.Logger) *Coordinator {
	return &Coordinator{
		queue:     queue,
		cache:     cache,
		store:     store,
		rehydrate: rehydrate,
		log:       log,
		ctx:       ctx,
	}
}

func (c *Coordinator) OnNetworkChange(s models.NetworkStatus) {
	c.log.Info(c.ctx, "network changed", "online", s.IsOnline, "type", s.ConnectionType)
}

// OnOnline kicks the queue and, when nothing is cached yet, schedules a
// rehydration.
func (c *Coordinator) OnOnline(models.NetworkStatus) {
	c.queue.TriggerDrain()

	if c.cache.HasLocalData(c.ctx) || c.rehydrate == nil {
		return
	}

	c.mu.Lock()
	if c.rehydrating {
		c.mu.Unlock()
		return
	}
	c.rehydrating = true
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			c.rehydrating = false
			c.mu.Unlock()
		}()
		if err := c.rehydrate(c.ctx); err != nil {
			c.log.Warn(c.ctx, "rehydration after reconnect failed", "error", err)
		}
	}()
}

// OnOffline records what the device held when the link went down.
func (c *Coordinator) OnOffline(s models.NetworkStatus) {
	at := s.Timestamp
	if at.IsZero() {
		at = time.Now()
	}
	snap := models.OfflineSnapshot{
		PendingOperations: c.queue.Status().PendingOperations,
		HasLocalData:      c.cache.HasLocalData(c.ctx),
		At:                at,
	}
	if err := kv.SetJSON(c.ctx, c.store, kv.KeyNetworkOfflineSnapshot, snap); err != nil {
		c.log.Warn(c.ctx, "persist offline snapshot failed", "error", err)
	}
}

// Wait blocks until background rehydration has finished.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
