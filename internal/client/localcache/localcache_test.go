package localcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/tasksync/internal/client/kv"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/dmitrijs2005/tasksync/internal/client/store"
	"github.com/dmitrijs2005/tasksync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenBackend fails every request as if the native store were missing.
type brokenBackend struct{ calls int }

func (b *brokenBackend) Execute(context.Context, Request) (Result, error) {
	b.calls++
	return Result{}, errors.New("native module unavailable")
}

type recordingBackend struct {
	res  Result
	seen []string
}

func (r *recordingBackend) Execute(_ context.Context, req Request) (Result, error) {
	r.seen = append(r.seen, req.Name())
	return r.res, nil
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), "file:lc_"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func snap() *models.Snapshot {
	return &models.Snapshot{
		Workspaces: []models.Workspace{{ID: 1, Name: "Trabalho"}},
		Tasks:      []models.Task{{ID: 7, WorkspaceID: 1, Title: "Relatório"}},
		User:       &models.User{ID: 3, Email: "ana@x.io", Name: "Ana"},
	}
}

func TestFallback_PrimaryThrows_UsesKVBackend(t *testing.T) {
	ctx := context.Background()
	flags := kv.NewMemoryStore()
	primary := &brokenBackend{}
	cache := NewCache(NewFallbackBackend(primary, NewKVBackend(flags), logging.Nop()), flags, logging.Nop())

	res := cache.SaveFullSyncData(ctx, "ana@x.io", snap())
	require.True(t, res.Success, res.Error)
	assert.Equal(t, SourceFallback, res.Source)
	assert.True(t, cache.HasLocalData(ctx))
	_, found := cache.LastSync(ctx)
	assert.True(t, found)

	res = cache.GetAllUserData(ctx, "ana@x.io")
	require.True(t, res.Success, res.Error)
	got, err := SnapshotOf(res)
	require.NoError(t, err)
	assert.Equal(t, "Relatório", got.Tasks[0].Title)
	assert.Equal(t, 2, primary.calls)
}

func TestFallback_EntityRequestUnsupported(t *testing.T) {
	ctx := context.Background()
	flags := kv.NewMemoryStore()
	cache := NewCache(NewFallbackBackend(&brokenBackend{}, NewKVBackend(flags), logging.Nop()), flags, logging.Nop())

	res := cache.Execute(ctx, GetTasksByWorkspace{WorkspaceID: 1})
	assert.False(t, res.Success)
	assert.Equal(t, errUnsupportedByFallback, res.Error)

	_, err := cache.Tasks(ctx)
	require.ErrorIs(t, err, ErrOperationFailed)
}

func TestFallback_BothFail_ReturnsFailedResult(t *testing.T) {
	ctx := context.Background()
	b := NewFallbackBackend(&brokenBackend{}, &brokenBackend{}, logging.Nop())

	res, err := b.Execute(ctx, GetAllUserData{Email: "a"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "native module unavailable")
}

func TestFallback_LogicalFailureIsNotRetried(t *testing.T) {
	ctx := context.Background()
	primary := &recordingBackend{res: Result{Success: false, Error: "constraint"}}
	fallback := &recordingBackend{res: Result{Success: true}}
	b := NewFallbackBackend(primary, fallback, logging.Nop())

	res, err := b.Execute(ctx, SaveTask{Task: models.Task{ID: 1}})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, fallback.seen)
}

func TestFallback_ClearReachesBothStores(t *testing.T) {
	ctx := context.Background()
	primary := &recordingBackend{res: Result{Success: true}}
	fallback := &recordingBackend{res: Result{Success: true}}

	_, err := NewFallbackBackend(primary, fallback, logging.Nop()).Execute(ctx, Clear{})
	require.NoError(t, err)
	assert.Equal(t, []string{"clear"}, primary.seen)
	assert.Equal(t, []string{"clear"}, fallback.seen)
}

func TestKVBackend_IdentityMismatch(t *testing.T) {
	ctx := context.Background()
	b := NewKVBackend(kv.NewMemoryStore())

	res, err := b.Execute(ctx, GetAllUserData{Email: "ana@x.io"})
	require.NoError(t, err)
	assert.False(t, res.Success)

	_, err = b.Execute(ctx, SaveFullSync{Email: "ana@x.io", Snapshot: snap()})
	require.NoError(t, err)

	res, err = b.Execute(ctx, GetAllUserData{Email: "bob@x.io"})
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = b.Execute(ctx, HasSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, true, res.Data)

	_, err = b.Execute(ctx, SaveFullSync{Email: "ana@x.io", Snapshot: &models.Snapshot{}})
	require.NoError(t, err)
	res, err = b.Execute(ctx, HasSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, false, res.Data)

	_, err = b.Execute(ctx, Clear{})
	require.NoError(t, err)
	res, err = b.Execute(ctx, HasSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, false, res.Data)
}

func TestCache_PrimaryIdentityMismatch(t *testing.T) {
	ctx := context.Background()
	fallback := NewKVBackend(kv.NewMemoryStore())
	backend := NewFallbackBackend(NewPrimaryBackend(openStore(t)), fallback, logging.Nop())
	cache := NewCache(backend, kv.NewMemoryStore(), logging.Nop())

	res := cache.GetAllUserData(ctx, "ana@x.io")
	assert.False(t, res.Success)
	assert.Equal(t, SourcePrimary, res.Source)

	res = cache.SaveFullSyncData(ctx, "ana@x.io", snap())
	require.True(t, res.Success, res.Error)

	res = cache.GetAllUserData(ctx, "bob@x.io")
	assert.False(t, res.Success)
	assert.Equal(t, SourcePrimary, res.Source)
	assert.Nil(t, res.Data)
	_, err := SnapshotOf(res)
	require.Error(t, err)

	res = cache.GetAllUserData(ctx, "ana@x.io")
	require.True(t, res.Success, res.Error)
	got, err := SnapshotOf(res)
	require.NoError(t, err)
	assert.Len(t, got.Tasks, len(snap().Tasks))
}

func TestCache_PrimaryStoreEndToEnd(t *testing.T) {
	ctx := context.Background()
	flags := kv.NewMemoryStore()
	cache := NewCache(NewPrimaryBackend(openStore(t)), flags, logging.Nop())

	assert.False(t, cache.HasLocalData(ctx))

	res := cache.SaveFullSyncData(ctx, "ana@x.io", snap())
	require.True(t, res.Success, res.Error)
	assert.Equal(t, SourcePrimary, res.Source)

	require.NoError(t, cache.SaveComment(ctx, models.Comment{ID: 9, TaskID: 7, Description: "feito"}))
	comments, err := cache.CommentsByTask(ctx, 7)
	require.NoError(t, err)
	require.Len(t, comments, 1)

	tasks, err := cache.TasksByWorkspace(ctx, 1)
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	u, err := cache.User(ctx, "ana@x.io")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Ana", u.Name)

	res = cache.ClearDatabase(ctx)
	require.True(t, res.Success)
	assert.False(t, cache.HasLocalData(ctx))
	_, found := cache.LastSync(ctx)
	assert.False(t, found)

	ws, err := cache.Workspaces(ctx)
	require.NoError(t, err)
	assert.Empty(t, ws)
}

func TestCache_HasLocalDataAsksBackendWhenFlagMissing(t *testing.T) {
	ctx := context.Background()
	flags := kv.NewMemoryStore()
	cache := NewCache(NewPrimaryBackend(openStore(t)), flags, logging.Nop())

	res := cache.SaveFullSyncData(ctx, "ana@x.io", snap())
	require.True(t, res.Success, res.Error)

	// flag lost while the rows are still there
	require.NoError(t, flags.Delete(ctx, kv.KeyCacheHasLocalData))
	assert.True(t, cache.HasLocalData(ctx))

	v, err := kv.GetBool(ctx, flags, kv.KeyCacheHasLocalData)
	require.NoError(t, err)
	assert.True(t, v)

	require.True(t, cache.ClearDatabase(ctx).Success)
	assert.False(t, cache.HasLocalData(ctx))
}

func TestCache_SaveFullSyncFailureLeavesFlagsUnset(t *testing.T) {
	ctx := context.Background()
	flags := kv.NewMemoryStore()
	cache := NewCache(&brokenBackend{}, flags, logging.Nop())

	res := cache.SaveFullSyncData(ctx, "ana@x.io", snap())
	assert.False(t, res.Success)
	assert.False(t, cache.HasLocalData(ctx))
}

func TestBridge_RoundTripThroughJSON(t *testing.T) {
	ctx := context.Background()
	backend := NewBridgeBackend(ServeBridge(NewPrimaryBackend(openStore(t))))

	res, err := backend.Execute(ctx, SaveFullSync{Email: "ana@x.io", Snapshot: snap()})
	require.NoError(t, err)
	require.True(t, res.Success, res.Error)

	res, err = backend.Execute(ctx, GetTasksByWorkspace{WorkspaceID: 1})
	require.NoError(t, err)
	tasks, ok := res.Data.([]models.Task)
	require.True(t, ok, "%T", res.Data)
	assert.Equal(t, int64(7), tasks[0].ID)

	res, err = backend.Execute(ctx, GetAllUserData{Email: "ana@x.io"})
	require.NoError(t, err)
	s, err := SnapshotOf(res)
	require.NoError(t, err)
	assert.Equal(t, "Ana", s.User.Name)

	res, err = backend.Execute(ctx, HasSnapshot{})
	require.NoError(t, err)
	assert.Equal(t, true, res.Data)
}

func TestBridge_DispatchErrorSurfaces(t *testing.T) {
	b := NewBridgeBackend(BridgeFunc(func(context.Context, string, []byte) ([]byte, error) {
		return nil, errors.New("bridge not linked")
	}))
	_, err := b.Execute(context.Background(), GetTasks{})
	require.ErrorContains(t, err, "bridge not linked")
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest("getCommentsByTask", []byte(`{"taskId":42}`))
	require.NoError(t, err)
	assert.Equal(t, GetCommentsByTask{TaskID: 42}, req)

	req, err = DecodeRequest("clear", nil)
	require.NoError(t, err)
	assert.Equal(t, "clear", req.Name())

	_, err = DecodeRequest("dropTables", nil)
	require.Error(t, err)

	_, err = DecodeRequest("saveTask", []byte(`{`))
	require.Error(t, err)
}

func TestCache_LastSyncUsesClock(t *testing.T) {
	ctx := context.Background()
	flags := kv.NewMemoryStore()
	cache := NewCache(NewKVBackend(flags), flags, logging.Nop())
	fixed := time.Date(2024, 9, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return fixed }

	require.True(t, cache.SaveFullSyncData(ctx, "ana@x.io", snap()).Success)
	got, found := cache.LastSync(ctx)
	require.True(t, found)
	assert.True(t, fixed.Equal(got))
}

func TestUnavailablePrimary_FallbackServesAlone(t *testing.T) {
	ctx := context.Background()
	flags := kv.NewMemoryStore()
	openErr := errors.New("disk I/O error")
	backend := NewFallbackBackend(UnavailableBackend{Err: openErr}, NewKVBackend(flags), logging.Nop())
	c := NewCache(backend, flags, logging.Nop())

	snap := &models.Snapshot{Workspaces: []models.Workspace{{ID: 1, Name: "Equipe"}}}
	res := c.SaveFullSyncData(ctx, "ana@x.io", snap)
	require.True(t, res.Success)
	assert.Equal(t, SourceFallback, res.Source)

	_, err := UnavailableBackend{Err: openErr}.Execute(ctx, GetTasks{})
	require.ErrorIs(t, err, openErr)

	got, err := SnapshotOf(c.GetAllUserData(ctx, "ana@x.io"))
	require.NoError(t, err)
	assert.Equal(t, "Equipe", got.Workspaces[0].Name)
	assert.True(t, c.HasLocalData(ctx))
}
