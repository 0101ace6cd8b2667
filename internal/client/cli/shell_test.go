package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dmitrijs2005/tasksync/internal/client/bootstrap"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCore struct {
	current  *bootstrap.Session
	loginErr error
	resume   error
	status   models.SyncStatus
	ops      []models.SyncOperation

	added   []string
	deleted []string
}

func (f *fakeCore) Login(_ context.Context, token string) (*bootstrap.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.current = &bootstrap.Session{Identity: "ana@x.io", Mode: bootstrap.ModeOnline, Data: &models.Snapshot{}}
	return f.current, nil
}

func (f *fakeCore) Resume(context.Context) (*bootstrap.Session, error) {
	if f.resume != nil {
		return nil, f.resume
	}
	f.current = &bootstrap.Session{Identity: "ana@x.io", Mode: bootstrap.ModeOffline, Data: &models.Snapshot{}}
	return f.current, nil
}

func (f *fakeCore) Logout(context.Context) error {
	f.current = nil
	return nil
}

func (f *fakeCore) Current() *bootstrap.Session { return f.current }

func (f *fakeCore) Sync(context.Context) models.SyncResult {
	return models.SyncResult{Outcome: models.OutcomeSuccess, Status: f.status}
}

func (f *fakeCore) SyncStatus() models.SyncStatus { return f.status }

func (f *fakeCore) NetworkStatus(context.Context) models.NetworkStatus {
	return models.NetworkStatus{IsOnline: f.status.IsOnline}
}

func (f *fakeCore) Operations() []models.SyncOperation { return f.ops }

func (f *fakeCore) RetryFailed(context.Context) (int, error) { return 2, nil }

func (f *fakeCore) Add(_ context.Context, e models.Entity, payload []byte) (string, error) {
	f.added = append(f.added, string(e)+":"+string(payload))
	return "CREATE_task_1", nil
}

func (f *fakeCore) Update(_ context.Context, e models.Entity, payload []byte) (string, error) {
	return "UPDATE_task_1", nil
}

func (f *fakeCore) Delete(_ context.Context, e models.Entity, id string) (string, error) {
	if id == "x" {
		return "", errors.New("parse id")
	}
	f.deleted = append(f.deleted, string(e)+":"+id)
	return "DELETE_task_1", nil
}

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var out []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		out = append(out, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &out
}

func TestShell_MutationsRequireLogin(t *testing.T) {
	out := captureOutput(t)
	core := &fakeCore{}
	sh := NewShell(core)
	ctx := context.Background()

	err := sh.Add(ctx, "task", `{"titulo":"x"}`)
	require.ErrorIs(t, err, bootstrap.ErrNoSession)
	assert.Contains(t, *out, "Log in first")

	require.NoError(t, sh.Login(ctx, "tok"))
	require.NoError(t, sh.Add(ctx, "tarefas", `{"titulo":"x"}`))
	require.NoError(t, sh.Delete(ctx, "categoria", "9"))
	require.Error(t, sh.Delete(ctx, "task", "x"))
	require.Error(t, sh.Add(ctx, "project", `{}`))

	assert.Equal(t, []string{`task:{"titulo":"x"}`}, core.added)
	assert.Equal(t, []string{"category:9"}, core.deleted)
	assert.Contains(t, *out, "Queued CREATE_task_1")
}

func TestShell_LoginErrors(t *testing.T) {
	out := captureOutput(t)
	ctx := context.Background()

	sh := NewShell(&fakeCore{loginErr: bootstrap.ErrLocalDataNotAvailable})
	require.ErrorIs(t, sh.Login(ctx, "tok"), bootstrap.ErrLocalDataNotAvailable)
	assert.False(t, sh.isLoggedIn())

	sh = NewShell(&fakeCore{loginErr: fmt.Errorf("save: %w", errors.New("disk full"))})
	require.Error(t, sh.Login(ctx, "tok"))

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "no local data yet")
	assert.Contains(t, joined, "disk full")
}

func TestShell_PromptAndQueue(t *testing.T) {
	out := captureOutput(t)
	core := &fakeCore{
		status: models.SyncStatus{IsOnline: true, PendingOperations: 2},
		ops: []models.SyncOperation{
			{ID: "CREATE_task_1", Type: models.OperationCreate, Entity: models.EntityTask, Status: models.StatusPending},
			{ID: "DELETE_task_2", Type: models.OperationDelete, Entity: models.EntityTask, Status: models.StatusFailed, RetryCount: 3, LastError: "boom"},
		},
	}
	sh := NewShell(core)

	assert.Equal(t, "(online 2 pending)", sh.prompt())
	core.current = &bootstrap.Session{Identity: "ana@x.io"}
	assert.Equal(t, "(ana@x.io online 2 pending)", sh.prompt())

	require.NoError(t, sh.Queue(context.Background()))
	require.Len(t, *out, 2)
	assert.Contains(t, (*out)[1], "error=boom")

	require.NoError(t, sh.Retry(context.Background()))
	assert.Contains(t, *out, "Requeued 2 operation(s)")
}

func TestRun_ResumesStoredSession(t *testing.T) {
	out := captureOutput(t)
	core := &fakeCore{}

	Run(context.Background(), core, strings.NewReader("status\nlogout\nexit\n"))

	joined := strings.Join(*out, "\n")
	assert.Contains(t, joined, "Logged in as ana@x.io (offline)")
	assert.Contains(t, joined, "session: ana@x.io (offline)")
	assert.Contains(t, joined, "Logged out")
	assert.Nil(t, core.current)
}

func TestRun_WithoutSessionStaysQuiet(t *testing.T) {
	out := captureOutput(t)
	core := &fakeCore{resume: bootstrap.ErrNoSession}

	Run(context.Background(), core, strings.NewReader(""))

	for _, line := range *out {
		assert.NotContains(t, line, "not resumed")
	}
}
