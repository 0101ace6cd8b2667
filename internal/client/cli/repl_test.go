package cli

import (
	"bufio"
	"context"
	"strings"
	"testing"
)

type fakeExec struct {
	loggedIn bool

	calls []string
	args  []string
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Status(ctx context.Context) error {
	f.calls = append(f.calls, "status")
	return nil
}
func (f *fakeExec) Login(ctx context.Context, token string) error {
	f.calls = append(f.calls, "login")
	f.args = append(f.args, token)
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Sync(ctx context.Context) error  { f.calls = append(f.calls, "sync"); return nil }
func (f *fakeExec) Queue(ctx context.Context) error { f.calls = append(f.calls, "queue"); return nil }
func (f *fakeExec) Retry(ctx context.Context) error { f.calls = append(f.calls, "retry"); return nil }
func (f *fakeExec) Add(ctx context.Context, entity, payload string) error {
	f.calls = append(f.calls, "add")
	f.args = append(f.args, entity, payload)
	return nil
}
func (f *fakeExec) Update(ctx context.Context, entity, payload string) error {
	f.calls = append(f.calls, "update")
	f.args = append(f.args, entity, payload)
	return nil
}
func (f *fakeExec) Delete(ctx context.Context, entity, id string) error {
	f.calls = append(f.calls, "delete")
	f.args = append(f.args, entity, id)
	return nil
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func TestRunREPL_LoginFlowAndCommands(t *testing.T) {
	origPrint := printlnFn
	printlnFn = func(...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader(strings.Join([]string{
		"help",
		"login abc.def.ghi",
		"help",
		`add task {"titulo": "Revisar PR", "id_workspace": 1}`,
		"queue",
		"delete tarefa 42",
		"sync",
		"retry",
		"status",
		"foobar",
		"logout",
		"exit",
		"sync",
	}, "\n"))

	exec := &fakeExec{loggedIn: false}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "status" }, sc)

	wantCalls := []string{"login", "add", "queue", "delete", "sync", "retry", "status", "logout"}
	if strings.Join(exec.calls, ",") != strings.Join(wantCalls, ",") {
		t.Fatalf("calls mismatch: got %v, want %v", exec.calls, wantCalls)
	}

	wantArgs := []string{"abc.def.ghi", "task", `{"titulo": "Revisar PR", "id_workspace": 1}`, "tarefa", "42"}
	if strings.Join(exec.args, "|") != strings.Join(wantArgs, "|") {
		t.Fatalf("args mismatch: got %q, want %q", exec.args, wantArgs)
	}
}

func TestRunREPL_UsageAndQuit(t *testing.T) {
	var out []string
	origPrint := printlnFn
	printlnFn = func(a ...any) (int, error) {
		if s, ok := a[0].(string); ok {
			out = append(out, s)
		}
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = origPrint })

	input := strings.NewReader("login\nadd task\ndelete task\nupdate\n\nquit\n")
	exec := &fakeExec{loggedIn: true}
	sc := bufio.NewScanner(input)

	runREPL(context.Background(), exec, func() string { return "s" }, sc)

	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
	joined := strings.Join(out, "\n")
	for _, want := range []string{"Usage: login <token>", "Usage: add <entity> <json>", "Usage: delete <entity> <id>", "Usage: update <entity> <json>", "Bye!"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("output %q lacks %q", joined, want)
		}
	}
}

func TestCut(t *testing.T) {
	tests := []struct {
		in, head, tail string
	}{
		{"", "", ""},
		{"sync", "sync", ""},
		{"add  task   {\"a\": 1}", "add", "task   {\"a\": 1}"},
		{"\tlogin tok ", "login", "tok"},
	}
	for _, tt := range tests {
		h, r := cut(tt.in)
		if h != tt.head || r != tt.tail {
			t.Errorf("cut(%q) = %q, %q; want %q, %q", tt.in, h, r, tt.head, tt.tail)
		}
	}
}
