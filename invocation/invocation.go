/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package invocation runs external media tools under a deadline.
package invocation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/dbanda/MediaCrush/logging"
	"github.com/dbanda/MediaCrush/metrics"
)

// DefaultTimeout applies when neither Run nor the command sets a deadline.
const DefaultTimeout = 60 * time.Second

var commandContext = exec.CommandContext

// Outcome summarises a Run.
type Outcome int

const (
	// Completed means the process exited on its own; its exit code is recorded.
	Completed Outcome = iota
	// TimedOut means the deadline passed and the process was killed.
	TimedOut
	// Crashed means the process could not be started or its output could not
	// be collected.
	Crashed
	// Busy means another Run of the same invocation was in progress.
	Busy
)

func (o Outcome) String() string {
	switch o {
	case Completed:
		return "completed"
	case TimedOut:
		return "timed_out"
	case Crashed:
		return "crashed"
	case Busy:
		return "busy"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Command is a command line template.
type Command struct {
	template string
	timeout  time.Duration
	logger   *slog.Logger
}

// Option configures a Command.
type Option func(*Command)

// WithTimeout sets the deadline used when Run is given none, normally the
// configured max processing time.
func WithTimeout(d time.Duration) Option {
	return func(c *Command) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger of every invocation of the command.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Command) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a command from template.
func New(template string, opts ...Option) *Command {
	c := &Command{
		template: template,
		timeout:  DefaultTimeout,
		logger:   logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Template returns the unformatted template.
func (c *Command) Template() string {
	return c.template
}

// Bind formats the template with args and splits the result on whitespace.
// A Vars argument supplies named placeholders; every other argument is
// positional.
func (c *Command) Bind(args ...any) (*Invocation, error) {
	var positional []any
	named := Vars{}
	for _, a := range args {
		if v, ok := a.(Vars); ok {
			for k, val := range v {
				named[k] = val
			}
			continue
		}
		positional = append(positional, a)
	}

	line, err := format(c.template, positional, named)
	if err != nil {
		return nil, fmt.Errorf("bind %q: %w", c.template, err)
	}
	return c.invocation(strings.Fields(line)), nil
}

// Unbound returns an invocation of the raw template split on whitespace.
func (c *Command) Unbound() *Invocation {
	return c.invocation(strings.Fields(c.template))
}

func (c *Command) invocation(args []string) *Invocation {
	return &Invocation{
		args:    args,
		timeout: c.timeout,
		logger:  c.logger,
	}
}

// Invocation is one bound command line. The result fields are written by Run
// and must be read after it returns. An invocation runs at most one process
// at a time.
type Invocation struct {
	// Stdout and Stderr hold the complete output of the last run.
	Stdout string
	Stderr string
	// Crashed is set when the process could not be started or drained.
	Crashed bool
	// Exited is set when the process was killed at the deadline.
	Exited bool
	// Err is the launch or collection error behind Crashed.
	Err error

	exitCode    int
	hasExitCode bool

	args    []string
	timeout time.Duration
	logger  *slog.Logger
	running sync.Mutex
}

// Args returns the argument vector.
func (inv *Invocation) Args() []string {
	return append([]string(nil), inv.args...)
}

// ExitCode returns the exit code of the last run, if one was recorded. A
// process killed at the deadline reports -1 on Unix.
func (inv *Invocation) ExitCode() (int, bool) {
	return inv.exitCode, inv.hasExitCode
}

// Run starts the process and waits for it for up to timeout, or the command's
// default when timeout is not positive. At the deadline the process is killed
// and Run keeps waiting until it is torn down. Cancelling ctx has the same
// effect as the deadline. Failures are reported through the result fields,
// never as errors.
func (inv *Invocation) Run(ctx context.Context, timeout time.Duration) Outcome {
	if !inv.running.TryLock() {
		return Busy
	}
	defer inv.running.Unlock()

	if timeout <= 0 {
		timeout = inv.timeout
	}
	start := time.Now()
	outcome := inv.run(ctx, timeout)
	elapsed := time.Since(start)
	metrics.ObserveInvocation(outcome.String(), elapsed)
	inv.logger.Info("invocation finished", "args", inv.args, "outcome", outcome.String(), "elapsed", elapsed)
	return outcome
}

func (inv *Invocation) run(ctx context.Context, timeout time.Duration) Outcome {
	inv.Stdout, inv.Stderr = "", ""
	inv.Crashed, inv.Exited, inv.Err = false, false, nil
	inv.exitCode, inv.hasExitCode = 0, false

	if len(inv.args) == 0 {
		return inv.crash(errors.New("empty command line"))
	}
	inv.logger.Info("running invocation", "args", inv.args, "timeout", timeout)

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := commandContext(runCtx, inv.args[0], inv.args[1:]...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return inv.crash(fmt.Errorf("start %s: %w", inv.args[0], err))
	}

	done := make(chan error, 1)
	go func() {
		done <- cmd.Wait()
	}()

	var waitErr error
	select {
	case waitErr = <-done:
	case <-runCtx.Done():
		inv.logger.Warn("terminating invocation", "args", inv.args, "reason", runCtx.Err())
		// the context kills the process; wait until it is gone
		waitErr = <-done
	}

	inv.Stdout, inv.Stderr = stdout.String(), stderr.String()
	state := cmd.ProcessState

	if runCtx.Err() != nil && (state == nil || !state.Exited()) {
		inv.Exited = true
		if state != nil {
			inv.exitCode, inv.hasExitCode = state.ExitCode(), true
		}
		return TimedOut
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return inv.crash(fmt.Errorf("wait %s: %w", inv.args[0], waitErr))
	}
	inv.exitCode, inv.hasExitCode = state.ExitCode(), true
	return Completed
}

func (inv *Invocation) crash(err error) Outcome {
	inv.logger.Error("invocation failed", "args", inv.args, "error", err)
	inv.Crashed = true
	inv.Err = err
	return Crashed
}
