//go:build linux

package ocijail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/themoriarti/ocijail/configs"
	"github.com/themoriarti/ocijail/system"
)

// ResolveExecutable checks that args[0] names a binary the container
// process will be able to exec, without running it. Resolution order is
// absolute path, then each $PATH element in order, then relative to cwd;
// the first candidate that passes an executable access check wins. The
// same order decides which binary launches when several candidates exist,
// so it must match what the exec step does.
func ResolveExecutable(p *configs.Process) error {
	arg0 := p.Args[0]

	if strings.HasPrefix(arg0, "/") {
		if err := system.Access(arg0, unix.X_OK); err != nil {
			return &system.Error{Op: "access", Path: arg0, Err: err}
		}
		fi, err := os.Stat(arg0)
		if err != nil {
			return &system.Error{Op: "stat", Path: arg0, Err: err}
		}
		if !fi.Mode().IsRegular() {
			return &system.Error{Op: "access", Path: arg0, Err: unix.EACCES}
		}
		return nil
	}

	if searchPath, ok := p.Getenv("PATH"); ok && searchPath != "" {
		for _, dir := range strings.Split(searchPath, ":") {
			if err := system.Access(filepath.Join(dir, arg0), unix.X_OK); err == nil {
				return nil
			}
		}
	}

	// The command may be relative to the working directory.
	workdirCmd := filepath.Join(p.Cwd, arg0)
	if err := system.Access(workdirCmd, unix.X_OK); err == nil {
		if fi, err := os.Stat(workdirCmd); err == nil && fi.Mode().IsRegular() {
			return nil
		}
	}

	return &system.Error{Op: fmt.Sprintf("'%s' not found in $PATH", arg0), Err: unix.ENOENT}
}
