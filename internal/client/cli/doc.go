// Package cli provides the interactive tasksync command-line client.
//
// It drives the sync core through a small REPL: log in with a bearer token,
// record mutations that are queued for the backend, inspect and retry the
// queue, and force a sync. Every command works offline; mutations wait in the
// queue until connectivity returns.
//
// The REPL is started via Run(ctx, a, in), which blocks until the user exits.
// See Shell and runREPL for details.
package cli
