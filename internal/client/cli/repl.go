package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// Shell satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Status(ctx context.Context) error
	Login(ctx context.Context, token string) error
	Sync(ctx context.Context) error
	Queue(ctx context.Context) error
	Retry(ctx context.Context) error
	Add(ctx context.Context, entity, payload string) error
	Update(ctx context.Context, entity, payload string) error
	Delete(ctx context.Context, entity, id string) error
	Logout(ctx context.Context) error
}

// runREPL starts a simple read–eval–print loop for the tasksync CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. Unknown commands are reported
// back to the user. The loop exits on scanner EOF or when the user types
// "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Always:
//	  - help                     show available commands
//	  - status                   network and queue state
//	  - login <token>            start a session from a bearer token
//	  - exit | quit              leave the program
//
//	Logged in:
//	  - add <entity> <json>      create an entity locally and queue it
//	  - update <entity> <json>   update an entity locally and queue it
//	  - delete <entity> <id>     delete an entity locally and queue it
//	  - queue                    list queued operations
//	  - sync                     deliver the queue now
//	  - retry                    requeue failed operations
//	  - logout                   drop the session, cache and queue
//
// Any errors returned by command handlers are ignored here; handlers should
// report their own errors. This keeps the REPL loop resilient and focused on I/O.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("ts> %s > ", statusFn()))
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest := cut(line)

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: status, add, update, delete, queue, sync, retry, logout, exit")
			} else {
				printlnFn("Available commands: status, login, exit")
			}

		case "status":
			_ = a.Status(ctx)

		case "login":
			if rest == "" {
				printlnFn("Usage: login <token>")
				continue
			}
			_ = a.Login(ctx, rest)

		case "add", "update":
			entity, payload := cut(rest)
			if entity == "" || payload == "" {
				printlnFn(fmt.Sprintf("Usage: %s <entity> <json>", cmd))
				continue
			}
			if cmd == "add" {
				_ = a.Add(ctx, entity, payload)
			} else {
				_ = a.Update(ctx, entity, payload)
			}

		case "delete":
			entity, id := cut(rest)
			if entity == "" || id == "" {
				printlnFn("Usage: delete <entity> <id>")
				continue
			}
			_ = a.Delete(ctx, entity, id)

		case "queue":
			_ = a.Queue(ctx)

		case "sync":
			_ = a.Sync(ctx)

		case "retry":
			_ = a.Retry(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

// cut splits off the first whitespace-separated word; the remainder keeps its
// inner spacing so JSON arguments survive.
func cut(s string) (string, string) {
	s = strings.TrimSpace(s)
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimSpace(s[i+1:])
}
