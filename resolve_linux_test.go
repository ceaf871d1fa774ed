//go:build linux

package ocijail

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/themoriarti/ocijail/configs"
)

func writeFile(t *testing.T, path string, mode os.FileMode) {
	t.Helper()
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), mode); err != nil {
		t.Fatal(err)
	}
}

func TestResolveAbsolute(t *testing.T) {
	p := &configs.Process{Cwd: "/", Args: []string{"/bin/true"}}
	if err := ResolveExecutable(p); err != nil {
		t.Fatal(err)
	}
}

func TestResolveAbsoluteMissing(t *testing.T) {
	p := &configs.Process{Cwd: "/", Args: []string{"/nonexistent"}}
	err := ResolveExecutable(p)
	if !errors.Is(err, unix.ENOENT) {
		t.Fatalf("expected ENOENT, got %v", err)
	}
}

func TestResolveAbsoluteNotRegular(t *testing.T) {
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	p := &configs.Process{Cwd: "/", Args: []string{dir}}
	err := ResolveExecutable(p)
	if !errors.Is(err, unix.EACCES) {
		t.Fatalf("expected EACCES for a directory, got %v", err)
	}
}

func TestResolvePathSearchOrder(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	writeFile(t, filepath.Join(a, "prog"), 0o644)
	writeFile(t, filepath.Join(b, "prog"), 0o755)
	p := &configs.Process{
		Cwd:  "/",
		Args: []string{"prog"},
		Env:  []string{"PATH=" + a + ":" + b},
	}
	if err := ResolveExecutable(p); err != nil {
		t.Fatalf("the miss in the first element must not fail the search: %v", err)
	}
}

func TestResolveRelativeToCwd(t *testing.T) {
	work := t.TempDir()
	writeFile(t, filepath.Join(work, "prog"), 0o755)
	p := &configs.Process{Cwd: work, Args: []string{"prog"}, Env: []string{"PATH="}}
	if err := ResolveExecutable(p); err != nil {
		t.Fatal(err)
	}
}

func TestResolveNotFound(t *testing.T) {
	p := &configs.Process{
		Cwd:  t.TempDir(),
		Args: []string{"prog"},
		Env:  []string{"PATH=" + t.TempDir()},
	}
	err := ResolveExecutable(p)
	if !errors.Is(err, unix.ENOENT) {
		t.Fatalf("expected ENOENT, got %v", err)
	}
	if !strings.Contains(err.Error(), "'prog' not found in $PATH") {
		t.Fatalf("message should name the command: %v", err)
	}
}
