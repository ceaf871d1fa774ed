//go:build linux

// Package ocijail implements the launch sequence that turns a validated
// OCI process fragment into an exec of the container's command: executable
// resolution, terminal and session setup, and the irreversible privilege
// and descriptor transition that ends in the exec itself.
package ocijail

import (
	"fmt"
	"os"

	"github.com/themoriarti/ocijail/configs"
	"github.com/themoriarti/ocijail/system"
)

// FinalizeAndExec runs the irreversible tail of the launch sequence:
// working directory, signal dispositions, credentials, descriptor table,
// then the exec. On success it never returns. An error return means the
// sequence failed before the exec was attempted; once the exec itself
// fails the process exits with status 1, since directory, signal and
// credential state have already been transitioned and there is nothing
// left to hand an error back to.
func FinalizeAndExec(p *configs.Process, stdin, stdout, stderr int) error {
	// The container always gets a usable HOME.
	if home, ok := p.Getenv("HOME"); !ok || home == "" {
		p.Setenv("HOME", "/")
	}

	argv := make([]string, len(p.Args))
	copy(argv, p.Args)
	envv := make([]string, len(p.Env))
	copy(envv, p.Env)

	if err := system.Chdir(p.Cwd); err != nil {
		return &system.Error{Op: "chdir", Path: p.Cwd, Err: err}
	}

	if err := system.ResetSignals(); err != nil {
		return &system.Error{Op: "resetting signals", Err: err}
	}

	// Supplementary groups and gid must change while still privileged;
	// uid goes last because dropping it can remove the permission to
	// alter the others.
	gids := make([]int, len(p.Gids))
	for i, gid := range p.Gids {
		gids[i] = int(gid)
	}
	if err := system.Setgroups(gids); err != nil {
		return &system.Error{Op: "setgroups", Err: err}
	}
	if err := system.Setgid(int(p.GID)); err != nil {
		return &system.Error{Op: "setgid", Err: err}
	}
	if err := system.Setuid(int(p.UID)); err != nil {
		return &system.Error{Op: "setuid", Err: err}
	}
	if p.Umask != nil {
		system.Umask(int(*p.Umask))
	}

	for slot, fd := range []int{stdin, stdout, stderr} {
		if fd == slot {
			continue
		}
		if err := system.Dup2(fd, slot); err != nil {
			return &system.Error{Op: "dup2", Err: err}
		}
	}
	if err := system.CloseFrom(3 + p.PreserveFDs); err != nil {
		return &system.Error{Op: "closing descriptors", Err: err}
	}

	if err := system.Exec(argv[0], argv, envv); err != nil {
		fmt.Fprintf(os.Stderr, "error executing container command: %v\n", err)
		system.Exit(1)
	}
	return nil
}
