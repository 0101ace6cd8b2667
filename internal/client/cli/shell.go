package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/tasksync/internal/client/bootstrap"
	"github.com/dmitrijs2005/tasksync/internal/client/models"
)

// Core is what the shell needs from the application.
type Core interface {
	Login(ctx context.Context, token string) (*bootstrap.Session, error)
	Resume(ctx context.Context) (*bootstrap.Session, error)
	Logout(ctx context.Context) error
	Current() *bootstrap.Session
	Sync(ctx context.Context) models.SyncResult
	SyncStatus() models.SyncStatus
	NetworkStatus(ctx context.Context) models.NetworkStatus
	Operations() []models.SyncOperation
	RetryFailed(ctx context.Context) (int, error)
	Add(ctx context.Context, entity models.Entity, payload []byte) (string, error)
	Update(ctx context.Context, entity models.Entity, payload []byte) (string, error)
	Delete(ctx context.Context, entity models.Entity, id string) (string, error)
}

// Shell adapts Core to the REPL and prints the outcome of every command.
type Shell struct {
	core Core
}

func NewShell(core Core) *Shell {
	return &Shell{core: core}
}

// Run resumes a stored session when there is one and then serves commands
// from in until EOF or exit.
func Run(ctx context.Context, core Core, in io.Reader) {
	printlnFn("Welcome to tasksync CLI (type 'help' for commands)")

	sh := NewShell(core)
	if s, err := core.Resume(ctx); err == nil {
		sh.printSession(s)
	} else if !errors.Is(err, bootstrap.ErrNoSession) {
		printlnFn("Session not resumed:", err)
	}

	runREPL(ctx, sh, sh.prompt, bufio.NewScanner(in))
}

func (s *Shell) isLoggedIn() bool {
	return s.core.Current() != nil
}

func (s *Shell) prompt() string {
	st := s.core.SyncStatus()
	mode := "offline"
	if st.IsOnline {
		mode = "online"
	}
	parts := []string{mode}
	if cur := s.core.Current(); cur != nil {
		parts = append([]string{cur.Identity}, parts...)
	}
	if st.PendingOperations > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", st.PendingOperations))
	}
	if st.IsSyncing {
		parts = append(parts, "syncing")
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (s *Shell) Status(ctx context.Context) error {
	ns := s.core.NetworkStatus(ctx)
	st := s.core.SyncStatus()
	printlnFn(fmt.Sprintf("network: online=%t type=%s", ns.IsOnline, ns.ConnectionType))
	printlnFn(fmt.Sprintf("queue: pending=%d failed=%d completed=%d total=%d syncing=%t",
		st.PendingOperations, st.FailedOperations, st.CompletedOperations, st.TotalOperations, st.IsSyncing))
	if !st.LastSyncAttempt.IsZero() {
		printlnFn("last attempt:", st.LastSyncAttempt.Format("2006-01-02 15:04:05"))
	}
	if cur := s.core.Current(); cur != nil {
		printlnFn(fmt.Sprintf("session: %s (%s)", cur.Identity, cur.Mode))
	}
	return nil
}

func (s *Shell) Login(ctx context.Context, token string) error {
	sess, err := s.core.Login(ctx, token)
	if err != nil {
		switch {
		case errors.Is(err, bootstrap.ErrLocalDataNotAvailable):
			printlnFn("Offline and no local data yet: connect once to download your workspaces.")
		case errors.Is(err, bootstrap.ErrNoSession):
			printlnFn("Token is missing or expired.")
		default:
			printlnFn("Login failed:", err)
		}
		return err
	}
	s.printSession(sess)
	return nil
}

func (s *Shell) printSession(sess *bootstrap.Session) {
	msg := fmt.Sprintf("Logged in as %s (%s): %d workspaces, %d tasks",
		sess.Identity, sess.Mode, len(sess.Data.Workspaces), len(sess.Data.Tasks))
	if sess.Degraded {
		msg += ", server rejected the refresh, showing cached data"
	}
	printlnFn(msg)
}

func (s *Shell) Sync(ctx context.Context) error {
	res := s.core.Sync(ctx)
	printlnFn(fmt.Sprintf("sync %s: pending=%d failed=%d", res.Outcome,
		res.Status.PendingOperations, res.Status.FailedOperations))
	return nil
}

func (s *Shell) Queue(context.Context) error {
	ops := s.core.Operations()
	if len(ops) == 0 {
		printlnFn("Queue is empty")
		return nil
	}
	for _, op := range ops {
		line := fmt.Sprintf("%s  %-6s %-10s %-11s retries=%d", op.ID, op.Type, op.Entity, op.Status, op.RetryCount)
		if op.LastError != "" {
			line += "  error=" + op.LastError
		}
		printlnFn(line)
	}
	return nil
}

func (s *Shell) Retry(ctx context.Context) error {
	n, err := s.core.RetryFailed(ctx)
	if err != nil {
		printlnFn("Retry failed:", err)
		return err
	}
	printlnFn(fmt.Sprintf("Requeued %d operation(s)", n))
	return nil
}

func (s *Shell) Add(ctx context.Context, entity, payload string) error {
	return s.mutate(ctx, entity, func(e models.Entity) (string, error) {
		return s.core.Add(ctx, e, []byte(payload))
	})
}

func (s *Shell) Update(ctx context.Context, entity, payload string) error {
	return s.mutate(ctx, entity, func(e models.Entity) (string, error) {
		return s.core.Update(ctx, e, []byte(payload))
	})
}

func (s *Shell) Delete(ctx context.Context, entity, id string) error {
	return s.mutate(ctx, entity, func(e models.Entity) (string, error) {
		return s.core.Delete(ctx, e, id)
	})
}

func (s *Shell) mutate(_ context.Context, entity string, fn func(models.Entity) (string, error)) error {
	if !s.isLoggedIn() {
		printlnFn("Log in first")
		return bootstrap.ErrNoSession
	}
	e, err := models.ParseEntity(entity)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	id, err := fn(e)
	if err != nil {
		printlnFn("Error:", err)
		return err
	}
	printlnFn("Queued", id)
	return nil
}

func (s *Shell) Logout(ctx context.Context) error {
	if err := s.core.Logout(ctx); err != nil {
		printlnFn("Logout failed:", err)
		return err
	}
	printlnFn("Logged out")
	return nil
}
