package network

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/kv"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/logging"
)

const (
	DefaultThrottle      = 5 * time.Second
	DefaultCheckInterval = 15 * time.Second
)

// Options tunes the monitor. Zero values select the defaults.
type Options struct {
	Throttle      time.Duration
	CheckInterval time.Duration
	QueryTimeout  time.Duration
}

// Monitor tracks connectivity. It owns only the last observed status, which
// it persists so edge detection survives restarts.
type Monitor struct {
	conn  Connectivity
	store kv.Store
	log   logging.Logger
	now   func() time.Time
	opts  Options

	// checkMu serialises platform queries and the notifications they cause.
	// Listeners must not call Refresh synchronously.
	checkMu sync.Mutex

	mu          sync.Mutex
	current     models.NetworkStatus
	hasBaseline bool
	lastCheck   time.Time
	checked     bool
	listeners   map[ListenerID]Listener
	order       []ListenerID
	nextID      ListenerID

	stopOnce sync.Once
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

func NewMonitor(conn Connectivity, store kv.Store, log logging.Logger, opts Options) *Monitor {
	if opts.Throttle < 0 {
		opts.Throttle = 0
	} else if opts.Throttle == 0 {
		opts.Throttle = DefaultThrottle
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = defaultProbeTimeout
	}
	return &Monitor{
		conn:      conn,
		store:     store,
		log:       log,
		now:       time.Now,
		opts:      opts,
		current:   models.OfflineStatus(time.Time{}),
		listeners: make(map[ListenerID]Listener),
		stopCh:    make(chan struct{}),
	}
}

// Init restores the last persisted status as the transition baseline.
func (m *Monitor) Init(ctx context.Context) error {
	var last models.NetworkStatus
	found, err := kv.GetJSON(ctx, m.store, kv.KeyNetworkLastStatus, &last)
	if err != nil {
		m.log.Warn(ctx, "restore network status failed", "error", err)
		return nil
	}
	if !found {
		return nil
	}

	m.mu.Lock()
	m.current = last
	m.hasBaseline = true
	m.mu.Unlock()

	m.log.Debug(ctx, "network baseline restored", "online", last.IsOnline, "type", last.ConnectionType)
	return nil
}

// AddListener registers l for every following transition.
func (m *Monitor) AddListener(l Listener) ListenerID {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.listeners[m.nextID] = l
	m.order = append(m.order, m.nextID)
	return m.nextID
}

func (m *Monitor) RemoveListener(id ListenerID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.listeners[id]; !ok {
		return
	}
	delete(m.listeners, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

// Current returns the last observed status without querying the platform.
func (m *Monitor) Current() models.NetworkStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// CheckStatus returns the connectivity status, re-querying the platform only
// when the previous query is older than the throttle window.
func (m *Monitor) CheckStatus(ctx context.Context) models.NetworkStatus {
	m.mu.Lock()
	if m.checked && m.now().Sub(m.lastCheck) < m.opts.Throttle {
		s := m.current
		m.mu.Unlock()
		return s
	}
	m.mu.Unlock()

	return m.Refresh(ctx)
}

// Refresh queries the platform unconditionally. Platform push events use it.
func (m *Monitor) Refresh(ctx context.Context) models.NetworkStatus {
	m.checkMu.Lock()
	defer m.checkMu.Unlock()

	status := m.query(ctx)

	m.mu.Lock()
	prev, had := m.current, m.hasBaseline
	m.current = status
	m.hasBaseline = true
	m.lastCheck = m.now()
	m.checked = true
	changed := had && prev.IsOnline != status.IsOnline
	var targets []Listener
	if changed {
		targets = make([]Listener, 0, len(m.order))
		for _, id := range m.order {
			targets = append(targets, m.listeners[id])
		}
	}
	m.mu.Unlock()

	if !had || changed {
		if err := kv.SetJSON(ctx, m.store, kv.KeyNetworkLastStatus, status); err != nil {
			m.log.Warn(ctx, "persist network status failed", "error", err)
		}
	}

	if changed {
		m.log.Info(ctx, "network transition", "online", status.IsOnline, "type", status.ConnectionType)
		for _, l := range targets {
			l.OnNetworkChange(status)
			if status.IsOnline {
				l.OnOnline(status)
			} else {
				l.OnOffline(status)
			}
		}
	}
	return status
}

func (m *Monitor) query(ctx context.Context) models.NetworkStatus {
	ctx, cancel := context.WithTimeout(ctx, m.opts.QueryTimeout)
	defer cancel()

	now := m.now()
	online, err := m.conn.IsConnected(ctx)
	if err != nil {
		m.log.Warn(ctx, "connectivity query failed, assuming offline", "error", err)
		return models.OfflineStatus(now)
	}
	if !online {
		return models.OfflineStatus(now)
	}
	wifi, err := m.conn.IsWifiConnected(ctx)
	if err != nil {
		m.log.Warn(ctx, "link type query failed, assuming offline", "error", err)
		return models.OfflineStatus(now)
	}
	return models.NewNetworkStatus(true, wifi, now)
}

// Start checks immediately and then on every CheckInterval until ctx is done
// or Dispose is called.
func (m *Monitor) Start(ctx context.Context) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		m.Refresh(ctx)

		ticker := time.NewTicker(m.opts.CheckInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.CheckStatus(ctx)
			case <-m.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Dispose stops the periodic check and drops all listeners.
func (m *Monitor) Dispose() {
	m.stopOnce.Do(func() { close(m.stopCh) })
	m.wg.Wait()

	m.mu.Lock()
	m.listeners = make(map[ListenerID]Listener)
	m.order = nil
	m.mu.Unlock()
}
