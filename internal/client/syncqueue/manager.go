// Package syncqueue keeps the durable queue of local mutations and replays
// them against the backend when the device is online.
package syncqueue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/kv"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/common"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/goccy/go-json"
)

const (
	DefaultMaxRetries      = 3
	DefaultDeliveryTimeout = 30 * time.Second
	DefaultDrainInterval   = 60 * time.Second
)

// Deliverer sends one operation to the backend.
type Deliverer interface {
	Deliver(ctx context.Context, op models.SyncOperation) error
}

// StatusSource is the connectivity view the manager needs.
type StatusSource interface {
	CheckStatus(ctx context.Context) models.NetworkStatus
	Current() models.NetworkStatus
}

type Options struct {
	MaxRetries      int
	DeliveryTimeout time.Duration
	DrainInterval   time.Duration
}

// DrainReport summarises one drain pass.
type DrainReport struct {
	Skipped   bool
	Delivered int
	Retrying  int
	Failed    int
}

// Manager owns queued operations until they are delivered or fail terminally.
type Manager struct {
	store   kv.Store
	deliver Deliverer
	net     StatusSource
	log     logging.Logger
	now     func() time.Time
	opts    Options

	mu          sync.Mutex
	queue       []models.SyncOperation
	syncing     bool
	drained     chan struct{}
	completed   int
	lastAttempt time.Time
	version     uint64
	subs        map[int]func(models.SyncStatus)
	nextSub     int

	persistMu sync.Mutex
	persisted uint64

	ctx      context.Context
	cancel   context.CancelFunc
	bg       sync.WaitGroup
	stopOnce sync.Once
}

func NewManager(store kv.Store, deliver Deliverer, net StatusSource, log logging.Logger, opts Options) *Manager {
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.DeliveryTimeout <= 0 {
		opts.DeliveryTimeout = DefaultDeliveryTimeout
	}
	if opts.DrainInterval <= 0 {
		opts.DrainInterval = DefaultDrainInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		store:   store,
		deliver: deliver,
		net:     net,
		log:     log,
		now:     time.Now,
		opts:    opts,
		subs:    make(map[int]func(models.SyncStatus)),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Init loads the persisted queue. Operations interrupted mid-delivery are
// demoted to pending and will be sent again.
func (m *Manager) Init(ctx context.Context) error {
	var ops []models.SyncOperation
	if _, err := kv.GetJSON(ctx, m.store, kv.KeySyncQueue, &ops); err != nil {
		return fmt.Errorf("load sync queue: %w", err)
	}

	kept := make([]models.SyncOperation, 0, len(ops))
	demoted := 0
	for _, op := range ops {
		switch op.Status {
		case models.StatusCompleted:
			continue
		case models.StatusInProgress:
			op.Status = models.StatusPending
			demoted++
		}
		kept = append(kept, op)
	}

	last, _, err := kv.GetTime(ctx, m.store, kv.KeySyncLastAttempt)
	if err != nil {
		m.log.Warn(ctx, "read last sync attempt failed", "error", err)
	}

	m.mu.Lock()
	m.queue = kept
	m.lastAttempt = last
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if demoted > 0 || len(kept) != len(ops) {
		if err := m.persist(ctx, snap); err != nil {
			return err
		}
	}
	m.log.Info(ctx, "sync queue loaded", "operations", len(kept), "requeued", demoted)
	return nil
}

// Enqueue records a mutation durably and returns its id. When the device is
// online and no drain is running, a drain starts in the background.
func (m *Manager) Enqueue(ctx context.Context, opType models.OperationType, entity models.Entity, payload []byte) (string, error) {
	if !opType.Valid() {
		return "", fmt.Errorf("%w: operation type %q", common.ErrInvalidArgument, opType)
	}
	ent, err := models.ParseEntity(string(entity))
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrInvalidArgument, err)
	}
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	if !json.Valid(payload) {
		return "", fmt.Errorf("%w: payload is not valid JSON", common.ErrInvalidArgument)
	}

	now := m.now()
	op := models.SyncOperation{
		ID:        common.NewOperationID(now),
		Type:      opType,
		Entity:    ent,
		Payload:   append([]byte(nil), payload...),
		Timestamp: now,
		Status:    models.StatusPending,
	}

	m.mu.Lock()
	m.queue = append(m.queue, op)
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if err := m.persist(ctx, snap); err != nil {
		m.mu.Lock()
		m.removeLocked(op.ID)
		rollback := m.snapshotLocked()
		m.mu.Unlock()
		// a drain may have persisted a snapshot holding op in the meantime
		if rerr := m.persist(ctx, rollback); rerr != nil {
			m.log.Warn(ctx, "persist enqueue rollback failed", "id", op.ID, "error", rerr)
		}
		return "", fmt.Errorf("enqueue: %w", err)
	}

	m.log.Debug(ctx, "operation enqueued", "id", op.ID, "type", op.Type, "entity", op.Entity)
	m.notify()

	if m.net.Current().IsOnline && !m.IsSyncing() {
		m.drainAsync()
	}
	return op.ID, nil
}

// Drain replays pending operations in insertion order. It does nothing when a
// drain is already running, the device is offline or nothing is pending.
// Operations enqueued meanwhile wait for the next pass.
func (m *Manager) Drain(ctx context.Context) DrainReport {
	report, _ := m.drain(ctx)
	return report
}

// DrainAndWait is Drain for callers that need the queue attempted before
// they continue: when another drain is running it waits for that pass to end
// and then drains whatever is still pending.
func (m *Manager) DrainAndWait(ctx context.Context) DrainReport {
	for {
		report, busy := m.drain(ctx)
		if busy == nil {
			return report
		}
		select {
		case <-busy:
		case <-ctx.Done():
			return DrainReport{Skipped: true}
		}
	}
}

// drain runs one pass. When another pass holds the queue it returns a channel
// closed when that pass ends.
func (m *Manager) drain(ctx context.Context) (DrainReport, <-chan struct{}) {
	m.mu.Lock()
	if m.syncing {
		busy := m.drained
		m.mu.Unlock()
		return DrainReport{Skipped: true}, busy
	}
	ids := m.pendingIDsLocked()
	if len(ids) == 0 {
		m.mu.Unlock()
		return DrainReport{Skipped: true}, nil
	}
	m.syncing = true
	m.drained = make(chan struct{})
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.syncing = false
		close(m.drained)
		m.drained = nil
		m.mu.Unlock()
		m.notify()
	}()

	if !m.net.CheckStatus(ctx).IsOnline {
		return DrainReport{Skipped: true}, nil
	}

	now := m.now()
	m.mu.Lock()
	m.lastAttempt = now
	m.mu.Unlock()
	if err := kv.SetTime(ctx, m.store, kv.KeySyncLastAttempt, now); err != nil {
		m.log.Warn(ctx, "persist last sync attempt failed", "error", err)
	}
	m.notify()

	var report DrainReport
	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if i > 0 && !m.net.CheckStatus(ctx).IsOnline {
			m.log.Info(ctx, "connectivity lost, drain stopped", "remaining", len(ids)-i)
			break
		}

		op, ok := m.begin(ctx, id)
		if !ok {
			continue
		}

		dctx, cancel := context.WithTimeout(ctx, m.opts.DeliveryTimeout)
		err := m.deliver.Deliver(dctx, op)
		cancel()

		if err == nil {
			m.succeed(ctx, id)
			report.Delivered++
		} else if m.fail(ctx, id, err) == models.StatusFailed {
			report.Failed++
		} else {
			report.Retrying++
		}
		m.notify()
	}

	m.log.Info(ctx, "drain finished",
		"delivered", report.Delivered, "retrying", report.Retrying, "failed", report.Failed)
	return report, nil
}

// begin marks a still-pending operation in progress and persists that.
func (m *Manager) begin(ctx context.Context, id string) (models.SyncOperation, bool) {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 || m.queue[idx].Status != models.StatusPending {
		m.mu.Unlock()
		return models.SyncOperation{}, false
	}
	m.queue[idx].Status = models.StatusInProgress
	op := m.queue[idx].Clone()
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if err := m.persist(ctx, snap); err != nil {
		m.log.Warn(ctx, "persist in-progress mark failed", "id", id, "error", err)
	}
	return op, true
}

func (m *Manager) succeed(ctx context.Context, id string) {
	m.mu.Lock()
	m.removeLocked(id)
	m.completed++
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if err := m.persist(ctx, snap); err != nil {
		m.log.Error(ctx, "persist delivered removal failed", "id", id, "error", err)
	}
}

func (m *Manager) fail(ctx context.Context, id string, cause error) models.OperationStatus {
	m.mu.Lock()
	idx := m.indexLocked(id)
	if idx < 0 {
		m.mu.Unlock()
		return models.StatusFailed
	}
	op := &m.queue[idx]
	op.RetryCount++
	op.LastError = cause.Error()
	switch {
	case !IsRetryable(cause):
		op.Status = models.StatusFailed
	case op.RetryCount < m.opts.MaxRetries:
		op.Status = models.StatusPending
	default:
		op.Status = models.StatusFailed
	}
	status, retries := op.Status, op.RetryCount
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if status == models.StatusFailed {
		m.log.Warn(ctx, "operation failed permanently", "id", id, "retries", retries, "error", cause)
	} else {
		m.log.Debug(ctx, "operation will be retried", "id", id, "retries", retries, "error", cause)
	}

	if err := m.persist(ctx, snap); err != nil {
		m.log.Error(ctx, "persist failure state failed", "id", id, "error", err)
	}
	return status
}

// ForceSync drains now, after any pass already running, and classifies what
// is left.
func (m *Manager) ForceSync(ctx context.Context) models.SyncResult {
	m.DrainAndWait(ctx)
	st := m.Status()
	outcome := models.OutcomeSuccess
	if st.FailedOperations > 0 || st.PendingOperations > 0 {
		outcome = models.OutcomePartialFailure
	}
	return models.SyncResult{Outcome: outcome, Status: st}
}

// Status reports queue counters without touching storage or the network.
func (m *Manager) Status() models.SyncStatus {
	online := m.net.Current().IsOnline

	m.mu.Lock()
	defer m.mu.Unlock()

	st := models.SyncStatus{
		CompletedOperations: m.completed,
		TotalOperations:     len(m.queue),
		IsOnline:            online,
		IsSyncing:           m.syncing,
		LastSyncAttempt:     m.lastAttempt,
	}
	for _, op := range m.queue {
		switch op.Status {
		case models.StatusPending, models.StatusInProgress:
			st.PendingOperations++
		case models.StatusFailed:
			st.FailedOperations++
		}
	}
	return st
}

func (m *Manager) IsSyncing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncing
}

// Operations returns a copy of the queue.
func (m *Manager) Operations() []models.SyncOperation {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.SyncOperation, len(m.queue))
	for i, op := range m.queue {
		out[i] = op.Clone()
	}
	return out
}

// RetryFailed puts terminally failed operations back in line.
func (m *Manager) RetryFailed(ctx context.Context) (int, error) {
	m.mu.Lock()
	n := 0
	for i := range m.queue {
		if m.queue[i].Status == models.StatusFailed {
			m.queue[i].Status = models.StatusPending
			m.queue[i].RetryCount = 0
			n++
		}
	}
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if n == 0 {
		return 0, nil
	}
	if err := m.persist(ctx, snap); err != nil {
		return 0, err
	}
	m.notify()
	if m.net.Current().IsOnline {
		m.drainAsync()
	}
	return n, nil
}

// Clear drops every queued operation.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	m.queue = nil
	m.completed = 0
	snap := m.snapshotLocked()
	m.mu.Unlock()

	if err := m.persist(ctx, snap); err != nil {
		return err
	}
	m.notify()
	return nil
}

// Subscribe registers fn for status changes; call the returned func to stop.
func (m *Manager) Subscribe(fn func(models.SyncStatus)) (cancel func()) {
	m.mu.Lock()
	m.nextSub++
	id := m.nextSub
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Start drains every DrainInterval while online, until Dispose or ctx ends.
func (m *Manager) Start(ctx context.Context) {
	m.bg.Add(1)
	go func() {
		defer m.bg.Done()
		ticker := time.NewTicker(m.opts.DrainInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if m.net.Current().IsOnline {
					m.Drain(m.ctx)
				}
			case <-m.ctx.Done():
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// TriggerDrain starts a background drain and returns immediately.
func (m *Manager) TriggerDrain() {
	m.drainAsync()
}

// Dispose stops timers and waits for background drains.
func (m *Manager) Dispose() {
	m.stopOnce.Do(m.cancel)
	m.bg.Wait()
}

func (m *Manager) drainAsync() {
	if m.ctx.Err() != nil {
		return
	}
	m.bg.Add(1)
	go func() {
		defer m.bg.Done()
		m.Drain(m.ctx)
	}()
}

func (m *Manager) notify() {
	m.mu.Lock()
	if len(m.subs) == 0 {
		m.mu.Unlock()
		return
	}
	fns := make([]func(models.SyncStatus), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	st := m.Status()
	for _, fn := range fns {
		fn(st)
	}
}

type queueSnapshot struct {
	version uint64
	ops     []models.SyncOperation
}

func (m *Manager) snapshotLocked() queueSnapshot {
	m.version++
	ops := make([]models.SyncOperation, len(m.queue))
	copy(ops, m.queue)
	return queueSnapshot{version: m.version, ops: ops}
}

// persist writes snap unless a newer snapshot was already written.
func (m *Manager) persist(ctx context.Context, snap queueSnapshot) error {
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	if snap.version <= m.persisted {
		return nil
	}
	var err error
	if len(snap.ops) == 0 {
		err = m.store.Delete(ctx, kv.KeySyncQueue)
	} else {
		err = kv.SetJSON(ctx, m.store, kv.KeySyncQueue, snap.ops)
	}
	if err != nil {
		return fmt.Errorf("persist sync queue: %w", err)
	}
	m.persisted = snap.version
	return nil
}

func (m *Manager) pendingIDsLocked() []string {
	var ids []string
	for _, op := range m.queue {
		if op.Status == models.StatusPending {
			ids = append(ids, op.ID)
		}
	}
	return ids
}

func (m *Manager) indexLocked(id string) int {
	for i, op := range m.queue {
		if op.ID == id {
			return i
		}
	}
	return -1
}

func (m *Manager) removeLocked(id string) {
	if i := m.indexLocked(id); i >= 0 {
		m.queue = append(m.queue[:i], m.queue[i+1:]...)
	}
}
