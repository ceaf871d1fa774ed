//go:build linux

// Package system wraps the syscalls the launch sequence depends on. The
// irreversible ones are declared as variables so tests can record their
// ordering and arguments without mutating the test process.
package system

import (
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

var (
	Chdir        = unix.Chdir
	Setsid       = unix.Setsid
	Setctty      = setctty
	Setgroups    = unix.Setgroups
	Setgid       = unix.Setgid
	Setuid       = unix.Setuid
	Umask        = unix.Umask
	Dup2         = dup2
	CloseFrom    = closeFrom
	ResetSignals = resetSignals
	Exec         = execCommand
	Exit         = os.Exit
)

// Access reports whether path passes an effective-id access check for the
// given mode, without opening the file.
func Access(path string, mode uint32) error {
	return unix.Faccessat(unix.AT_FDCWD, path, mode, unix.AT_EACCESS)
}

func dup2(oldfd, newfd int) error {
	return unix.Dup3(oldfd, newfd, 0)
}

// setctty makes the terminal behind fd the controlling terminal of the
// calling process. The caller must already lead a session.
func setctty(fd int) error {
	return unix.IoctlSetInt(fd, unix.TIOCSCTTY, 0)
}

// closeFrom closes every open descriptor numbered min or above. The
// descriptors are closed outright rather than marked close-on-exec since
// nothing after this point may use them.
func closeFrom(min int) error {
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		fd, err := strconv.Atoi(entry.Name())
		if err != nil || fd < min {
			continue
		}
		// EBADF for the listing's own descriptor is harmless here.
		unix.Close(fd)
	}
	return nil
}

// resetSignals clears the signal mask inherited from the runtime, then
// restores the default disposition for every signal.
func resetSignals() error {
	var all unix.Sigset_t
	for i := range all.Val {
		all.Val[i] = ^uint64(0)
	}
	if err := unix.PthreadSigmask(unix.SIG_UNBLOCK, &all, nil); err != nil {
		return err
	}
	signal.Reset()
	return nil
}

// execCommand replaces the process image with the command. A bare command
// name is searched in the PATH of the environment being handed to the new
// image, not the runtime's own; an unresolved name falls through to the
// kernel as a path relative to the working directory.
func execCommand(name string, args, env []string) error {
	return unix.Exec(lookPath(name, env), args, env)
}

func lookPath(name string, env []string) string {
	if strings.Contains(name, "/") {
		return name
	}
	var searchPath string
	for _, entry := range env {
		if after, ok := strings.CutPrefix(entry, "PATH="); ok {
			searchPath = after
			break
		}
	}
	for _, dir := range filepath.SplitList(searchPath) {
		candidate := filepath.Join(dir, name)
		if err := Access(candidate, unix.X_OK); err == nil {
			return candidate
		}
	}
	return name
}
