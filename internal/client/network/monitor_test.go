package network

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/kv"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingConn struct {
	*StaticConnectivity
	mu    sync.Mutex
	calls int
}

func (c *countingConn) IsConnected(ctx context.Context) (bool, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.StaticConnectivity.IsConnected(ctx)
}

func (c *countingConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (e *eventLog) add(s string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events = append(e.events, s)
}

func (e *eventLog) all() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.events...)
}

func (e *eventLog) listener() ListenerFuncs {
	return ListenerFuncs{
		Change:  func(models.NetworkStatus) { e.add("change") },
		Online:  func(models.NetworkStatus) { e.add("online") },
		Offline: func(models.NetworkStatus) { e.add("offline") },
	}
}

func newTestMonitor(conn Connectivity, store kv.Store) *Monitor {
	return NewMonitor(conn, store, logging.Nop(), Options{Throttle: -1})
}

func TestCheckStatus_QueryFailureIsOffline(t *testing.T) {
	conn := NewStaticConnectivity(true, true)
	conn.Fail(errors.New("platform API threw"))
	m := newTestMonitor(conn, kv.NewMemoryStore())

	s := m.CheckStatus(context.Background())
	assert.False(t, s.IsOnline)
	assert.False(t, s.IsWifi)
	assert.False(t, s.IsCellular)
	assert.Equal(t, models.ConnectionNone, s.ConnectionType)
}

func TestCheckStatus_Throttled(t *testing.T) {
	conn := &countingConn{StaticConnectivity: NewStaticConnectivity(true, false)}
	m := NewMonitor(conn, kv.NewMemoryStore(), logging.Nop(), Options{Throttle: 5 * time.Second})

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	first := m.CheckStatus(ctx)
	assert.Equal(t, models.ConnectionCellular, first.ConnectionType)

	conn.Set(false, false)
	now = now.Add(2 * time.Second)
	second := m.CheckStatus(ctx)
	assert.True(t, second.IsOnline, "cached value expected inside window")
	assert.Equal(t, 1, conn.count())

	now = now.Add(4 * time.Second)
	third := m.CheckStatus(ctx)
	assert.False(t, third.IsOnline)
	assert.Equal(t, 2, conn.count())

	m.Refresh(ctx)
	assert.Equal(t, 3, conn.count())
}

func TestTransitions_EdgeTriggeredAndOrdered(t *testing.T) {
	conn := NewStaticConnectivity(false, false)
	m := newTestMonitor(conn, kv.NewMemoryStore())
	ctx := context.Background()

	var log eventLog
	m.AddListener(log.listener())

	// first observation only sets the baseline
	m.CheckStatus(ctx)
	m.CheckStatus(ctx)
	assert.Empty(t, log.all())

	conn.Set(true, true)
	for i := 0; i < 5; i++ {
		m.CheckStatus(ctx)
	}
	assert.Equal(t, []string{"change", "online"}, log.all())

	// link type change is not a transition
	conn.Set(true, false)
	m.CheckStatus(ctx)
	assert.Len(t, log.all(), 2)

	conn.Fail(errors.New("boom"))
	m.CheckStatus(ctx)
	m.CheckStatus(ctx)
	assert.Equal(t, []string{"change", "online", "change", "offline"}, log.all())
}

func TestInit_PersistedBaselineDrivesFirstTransition(t *testing.T) {
	store := kv.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, kv.SetJSON(ctx, store, kv.KeyNetworkLastStatus,
		models.NewNetworkStatus(true, true, time.Now())))

	m := newTestMonitor(NewStaticConnectivity(false, false), store)
	require.NoError(t, m.Init(ctx))
	assert.True(t, m.Current().IsOnline)

	var log eventLog
	m.AddListener(log.listener())
	m.CheckStatus(ctx)
	assert.Equal(t, []string{"change", "offline"}, log.all())

	var persisted models.NetworkStatus
	found, err := kv.GetJSON(ctx, store, kv.KeyNetworkLastStatus, &persisted)
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, persisted.IsOnline)
}

func TestRemoveListener(t *testing.T) {
	conn := NewStaticConnectivity(false, false)
	m := newTestMonitor(conn, kv.NewMemoryStore())
	ctx := context.Background()
	m.CheckStatus(ctx)

	var a, b eventLog
	idA := m.AddListener(a.listener())
	m.AddListener(b.listener())
	m.RemoveListener(idA)
	m.RemoveListener(idA)

	conn.Set(true, false)
	m.CheckStatus(ctx)
	assert.Empty(t, a.all())
	assert.Equal(t, []string{"change", "online"}, b.all())
}

func TestStartAndDispose(t *testing.T) {
	conn := NewStaticConnectivity(false, false)
	store := kv.NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, kv.SetJSON(ctx, store, kv.KeyNetworkLastStatus, models.OfflineStatus(time.Now())))

	m := NewMonitor(conn, store, logging.Nop(), Options{Throttle: -1, CheckInterval: 10 * time.Millisecond})
	require.NoError(t, m.Init(ctx))

	online := make(chan struct{}, 1)
	m.AddListener(ListenerFuncs{Online: func(models.NetworkStatus) {
		select {
		case online <- struct{}{}:
		default:
		}
	}})

	m.Start(ctx)
	conn.Set(true, true)

	select {
	case <-online:
	case <-time.After(2 * time.Second):
		t.Fatal("periodic check did not detect the transition")
	}
	m.Dispose()
	m.Dispose()
	assert.True(t, m.Current().IsOnline)
}
