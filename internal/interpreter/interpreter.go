// Package interpreter runs finalized programs in an embedded Go interpreter.
//
// Each Execute call creates a fresh interpreter, so no bindings survive between calls.
// Programs run with the full privileges of the calling process; there is no sandbox.
//
// A program that never terminates blocks Execute until its context is done. The interpreter
// then returns, but the goroutine running the program may keep running until the process exits;
// callers evaluating untrusted or long-running input should run gocalc in a separate process.
package interpreter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/podhmo/gocalc/internal/metadata"
)

// ErrNotFinalized is returned when a tree is executed before it has been serialized.
var ErrNotFinalized = errors.New("tree is not finalized")

// RuntimeError wraps any failure raised while compiling or running the program
// (undefined names, type errors, panics, timeouts).
type RuntimeError struct {
	Source string // Original source line, the program's label
	Err    error
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("evaluating %q: %v", e.Source, e.Err)
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Executor runs finalized trees.
type Executor struct {
	Exports interp.Exports // Packages importable by programs; nil means the full standard library
	Stdin   io.Reader      // nil means os.Stdin
	Stdout  io.Writer      // nil means os.Stdout
	Stderr  io.Writer      // nil means os.Stderr
	Timeout time.Duration  // Zero means no timeout beyond the caller's context
	Logger  *slog.Logger   // nil means slog.Default()
}

// Execute runs tree.Source in a fresh interpreter. Failures are returned as *RuntimeError, unchanged.
func (e *Executor) Execute(ctx context.Context, tree *metadata.Tree) error {
	if !tree.Finalized() {
		return ErrNotFinalized
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	i := interp.New(interp.Options{
		Stdin:  e.stdin(),
		Stdout: e.stdout(),
		Stderr: e.stderr(),
		Args:   []string{tree.Label},
	})
	if err := i.Use(e.exports()); err != nil {
		return fmt.Errorf("loading interpreter symbols: %w", err)
	}

	e.logger().DebugContext(ctx, "executing program", "label", tree.Label, "source", string(tree.Source))
	if _, err := i.EvalWithContext(ctx, string(tree.Source)); err != nil {
		return &RuntimeError{Source: tree.Label, Err: err}
	}
	return nil
}

func (e *Executor) exports() interp.Exports {
	if e.Exports != nil {
		return e.Exports
	}
	return stdlib.Symbols
}

func (e *Executor) stdin() io.Reader {
	if e.Stdin != nil {
		return e.Stdin
	}
	return os.Stdin
}

func (e *Executor) stdout() io.Writer {
	if e.Stdout != nil {
		return e.Stdout
	}
	return os.Stdout
}

func (e *Executor) stderr() io.Writer {
	if e.Stderr != nil {
		return e.Stderr
	}
	return os.Stderr
}

func (e *Executor) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
