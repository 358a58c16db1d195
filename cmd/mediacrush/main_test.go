/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dbanda/MediaCrush"
	"github.com/dbanda/MediaCrush/datastore/mock"
	"github.com/dbanda/MediaCrush/jobs"
	"github.com/dbanda/MediaCrush/objects"
	"github.com/dbanda/MediaCrush/registry"
)

type cliTestEnv struct {
	backend *mock.DataStore
	tracker *jobs.StaticTracker
	store   *mediacrush.Store
	config  string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	t.Chdir(t.TempDir())

	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("namespace: clitest\nbackend:\n  kind: memory\nlog:\n  level: error\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	backend := mock.New()
	reg := registry.New(backend, "clitest")
	objects.Register(reg, nil)
	return &cliTestEnv{
		backend: backend,
		tracker: jobs.NewStaticTracker(),
		store:   mediacrush.NewStore(reg),
		config:  configPath,
	}
}

func (env *cliTestEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cc := &commandContext{backend: env.backend, tracker: env.tracker}
	cmd := newRootCommandWith(cc)
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--config", env.config}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func (env *cliTestEnv) saveFile(t *testing.T, taskID string) *objects.File {
	t.Helper()
	f := objects.NewFile(nil)
	title := "cat.gif"
	f.Title = &title
	if taskID != "" {
		f.TaskID = &taskID
	}
	if err := env.store.Save(context.Background(), f); err != nil {
		t.Fatalf("save: %v", err)
	}
	return f
}

func TestVersionCommand(t *testing.T) {
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "mediacrush version "+mediacrush.Version) {
		t.Fatalf("unexpected output %q", out.String())
	}
}

func TestGetCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	f := env.saveFile(t, "")

	out, err := env.run(t, "get", f.Identifier())
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	for _, want := range []string{"type: file", "title: cat.gif", "hash: " + f.Identifier(), "text_locked: False"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}

	if _, err := env.run(t, "get", "missing"); err == nil {
		t.Fatal("expected error for a missing identifier")
	}
	if _, err := env.run(t, "get", "--type", "album", f.Identifier()); err == nil {
		t.Fatal("expected error when the type does not match")
	}
}

func TestListCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	a, b := env.saveFile(t, ""), env.saveFile(t, "")

	out, err := env.run(t, "list", "file")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	lines := strings.Fields(out)
	if len(lines) != 2 || !strings.Contains(out, a.Identifier()) || !strings.Contains(out, b.Identifier()) {
		t.Fatalf("unexpected list output %q", out)
	}

	if _, err := env.run(t, "list", "nosuchtype"); err == nil {
		t.Fatal("expected error for an unknown type")
	}
}

func TestReportAndFlaggedCommands(t *testing.T) {
	env := setupCLITestEnv(t)
	f := env.saveFile(t, "")

	out, err := env.run(t, "report", f.Identifier())
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	if !strings.Contains(out, "reports: 1") {
		t.Fatalf("unexpected report output %q", out)
	}

	out, err = env.run(t, "flagged")
	if err != nil {
		t.Fatalf("flagged failed: %v", err)
	}
	if strings.TrimSpace(out) != f.Identifier() {
		t.Fatalf("unexpected flagged output %q", out)
	}
}

func TestStatusCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	f := env.saveFile(t, "job-1")
	env.tracker.Set("job-1", jobs.Result{State: jobs.StateSuccess})

	out, err := env.run(t, "status", f.Identifier())
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if strings.TrimSpace(out) != objects.StatusDone {
		t.Fatalf("unexpected status %q", out)
	}
	if got := env.backend.Hash("clitest.file." + f.Identifier())["taskid"]; got != objects.TaskDone {
		t.Fatalf("expected job identifier to be replaced, got %q", got)
	}
}

func TestRunCommand(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "run", "--timeout", "30s", "--", "{} -test.run=^$", os.Args[0])
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.Contains(out, "outcome: completed, exit code 0") {
		t.Fatalf("unexpected run output %q", out)
	}

	if _, err := env.run(t, "run", "--", "/nonexistent/tool"); err == nil || !strings.Contains(err.Error(), "crashed") {
		t.Fatalf("expected crash error, got %v", err)
	}
	if _, err := env.run(t, "run", "--", "tool {}"); err == nil {
		t.Fatal("expected bind error for a missing argument")
	}
}
