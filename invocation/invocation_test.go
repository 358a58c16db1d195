/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package invocation

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"testing"
	"time"
)

// useHelperProcess routes every command through TestHelperProcess. The first
// word of the command line selects the helper behaviour.
func useHelperProcess(t *testing.T, started chan<- struct{}) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		if started != nil {
			close(started)
			started = nil
		}
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for len(args) > 0 && args[0] != "--" {
		args = args[1:]
	}
	if len(args) < 2 {
		os.Exit(2)
	}
	name, rest := args[1], args[2:]

	switch name {
	case "echo":
		fmt.Println(strings.Join(rest, " "))
		fmt.Fprintln(os.Stderr, "progress: done")
		os.Exit(0)
	case "sleep":
		d, _ := time.ParseDuration(rest[0])
		time.Sleep(d)
		os.Exit(0)
	case "exit":
		code, _ := strconv.Atoi(rest[0])
		os.Exit(code)
	default:
		os.Exit(2)
	}
}

func TestBindFormatsTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		args     []any
		want     []string
	}{
		{"automatic", "ffmpeg -i {} {}", []any{"in.gif", "out.mp4"}, []string{"ffmpeg", "-i", "in.gif", "out.mp4"}},
		{"explicit", "convert {1} {0} {1}", []any{"a", "b"}, []string{"convert", "b", "a", "b"}},
		{"named", "optipng -o{level} {path}", []any{Vars{"level": 5, "path": "x.png"}}, []string{"optipng", "-o5", "x.png"}},
		{"mixed named and positional", "tool {} --out {out}", []any{"in", Vars{"out": "dst"}}, []string{"tool", "in", "--out", "dst"}},
		{"escaped braces", "echo {{}} {}", []any{1}, []string{"echo", "{}", "1"}},
		{"argument with spaces splits", "echo {}", []any{"two words"}, []string{"echo", "two", "words"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := New(tt.template).Bind(tt.args...)
			if err != nil {
				t.Fatalf("Bind failed: %v", err)
			}
			if got := inv.Args(); strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBindErrors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		args     []any
	}{
		{"missing positional", "tool {} {}", []any{"a"}},
		{"missing index", "tool {3}", []any{"a"}},
		{"missing name", "tool {out}", nil},
		{"unclosed", "tool {", nil},
		{"stray close", "tool }", nil},
		{"mixed numbering", "tool {} {0}", []any{"a"}},
		{"format spec", "tool {0:>5}", []any{"a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.template).Bind(tt.args...); err == nil {
				t.Fatalf("expected error for %q", tt.template)
			}
		})
	}
}

func TestUnboundSplitsTemplate(t *testing.T) {
	inv := New("  ffprobe   -v quiet ").Unbound()
	if got := strings.Join(inv.Args(), "|"); got != "ffprobe|-v|quiet" {
		t.Fatalf("unexpected args %q", got)
	}
}

func TestRunCompletes(t *testing.T) {
	useHelperProcess(t, nil)

	inv, err := New("echo {} {}").Bind("hello", "world")
	if err != nil {
		t.Fatalf("Bind failed: %v", err)
	}
	if outcome := inv.Run(context.Background(), 5*time.Second); outcome != Completed {
		t.Fatalf("expected completed, got %v (%v)", outcome, inv.Err)
	}
	if inv.Crashed || inv.Exited {
		t.Fatalf("expected crashed=false exited=false, got %v %v", inv.Crashed, inv.Exited)
	}
	if code, ok := inv.ExitCode(); !ok || code != 0 {
		t.Fatalf("expected exit code 0, got %d (%v)", code, ok)
	}
	if strings.TrimSpace(inv.Stdout) != "hello world" {
		t.Fatalf("unexpected stdout %q", inv.Stdout)
	}
	if !strings.Contains(inv.Stderr, "progress: done") {
		t.Fatalf("unexpected stderr %q", inv.Stderr)
	}
}

func TestRunShortCommandUnderDeadline(t *testing.T) {
	useHelperProcess(t, nil)

	inv := New("sleep 100ms").Unbound()
	start := time.Now()
	if outcome := inv.Run(context.Background(), 5*time.Second); outcome != Completed {
		t.Fatalf("expected completed, got %v", outcome)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond || elapsed > 4*time.Second {
		t.Fatalf("unexpected run time %v", elapsed)
	}
	if inv.Exited || inv.Crashed {
		t.Fatal("expected a normal completion")
	}
}

func TestRunRecordsExitCode(t *testing.T) {
	useHelperProcess(t, nil)

	inv, _ := New("exit {}").Bind(3)
	if outcome := inv.Run(context.Background(), 5*time.Second); outcome != Completed {
		t.Fatalf("expected completed, got %v", outcome)
	}
	if code, ok := inv.ExitCode(); !ok || code != 3 {
		t.Fatalf("expected exit code 3, got %d (%v)", code, ok)
	}
	if inv.Crashed {
		t.Fatal("a non-zero exit is not a crash")
	}
}

func TestRunTimesOut(t *testing.T) {
	useHelperProcess(t, nil)

	inv := New("sleep 10s").Unbound()
	start := time.Now()
	outcome := inv.Run(context.Background(), time.Second)
	elapsed := time.Since(start)

	if outcome != TimedOut {
		t.Fatalf("expected timed out, got %v", outcome)
	}
	if !inv.Exited || inv.Crashed {
		t.Fatalf("expected exited=true crashed=false, got %v %v", inv.Exited, inv.Crashed)
	}
	if elapsed < time.Second || elapsed > 8*time.Second {
		t.Fatalf("expected Run to return shortly after the deadline, took %v", elapsed)
	}
	// An exit status is only available once the process has been reaped.
	if _, ok := inv.ExitCode(); !ok {
		t.Fatal("expected the killed process to be reaped before Run returned")
	}
}

func TestRunParentCancellation(t *testing.T) {
	useHelperProcess(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	inv := New("sleep 10s").Unbound()
	if outcome := inv.Run(ctx, time.Minute); outcome != TimedOut {
		t.Fatalf("expected timed out on cancellation, got %v", outcome)
	}
	if !inv.Exited {
		t.Fatal("expected exited=true")
	}
}

func TestRunCrashesOnInvalidExecutable(t *testing.T) {
	inv := New("/nonexistent/path/to/tool --flag").Unbound()
	if outcome := inv.Run(context.Background(), 5*time.Second); outcome != Crashed {
		t.Fatalf("expected crashed, got %v", outcome)
	}
	if !inv.Crashed || inv.Exited {
		t.Fatalf("expected crashed=true exited=false, got %v %v", inv.Crashed, inv.Exited)
	}
	if _, ok := inv.ExitCode(); ok {
		t.Fatal("expected no exit code")
	}
	if inv.Err == nil {
		t.Fatal("expected the launch error to be recorded")
	}
}

func TestRunEmptyCommandCrashes(t *testing.T) {
	inv := New("   ").Unbound()
	if outcome := inv.Run(context.Background(), time.Second); outcome != Crashed {
		t.Fatalf("expected crashed, got %v", outcome)
	}
}

func TestRunConcurrentIsBusy(t *testing.T) {
	started := make(chan struct{})
	useHelperProcess(t, started)

	inv := New("sleep 500ms").Unbound()
	first := make(chan Outcome, 1)
	go func() {
		first <- inv.Run(context.Background(), 5*time.Second)
	}()

	<-started
	if outcome := inv.Run(context.Background(), 5*time.Second); outcome != Busy {
		t.Fatalf("expected busy, got %v", outcome)
	}
	if outcome := <-first; outcome != Completed {
		t.Fatalf("expected first run to complete, got %v", outcome)
	}
}

func TestRunUsesCommandTimeout(t *testing.T) {
	useHelperProcess(t, nil)

	inv := New("sleep 10s", WithTimeout(300*time.Millisecond)).Unbound()
	if outcome := inv.Run(context.Background(), 0); outcome != TimedOut {
		t.Fatalf("expected the command timeout to apply, got %v", outcome)
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{Completed: "completed", TimedOut: "timed_out", Crashed: "crashed", Busy: "busy"} {
		if o.String() != want {
			t.Fatalf("expected %q, got %q", want, o.String())
		}
	}
}
