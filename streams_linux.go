//go:build linux

package ocijail

import (
	"github.com/themoriarti/ocijail/configs"
	"github.com/themoriarti/ocijail/console"
	"github.com/themoriarti/ocijail/system"
)

// PrepareStreams produces the stdin, stdout and stderr descriptors for the
// container process.
//
// When a terminal was requested together with a console socket, a fresh
// pseudo-terminal is allocated: the process becomes a session leader with
// the slave side as its controlling terminal, the master descriptor is
// handed to the console-socket peer, and all three streams are the slave.
// Otherwise the existing stdio descriptors are used; for the non-terminal
// case the process additionally starts a new session. A terminal request
// without a console socket leaves session handling to the caller.
func PrepareStreams(p *configs.Process) (stdin, stdout, stderr int, err error) {
	if p.Terminal && p.ConsoleSocket != "" {
		c, err := console.New()
		if err != nil {
			return 0, 0, 0, &system.Error{Op: "allocating pty", Err: err}
		}
		if _, err := system.Setsid(); err != nil {
			c.Close()
			return 0, 0, 0, &system.Error{Op: "setsid", Err: err}
		}
		if err := c.SetControllingTerminal(); err != nil {
			c.Close()
			return 0, 0, 0, &system.Error{Op: "setctty", Err: err}
		}
		if err := c.SendMaster(p.ConsoleSocket); err != nil {
			c.Close()
			return 0, 0, 0, &system.Error{Op: "sending pty master", Path: p.ConsoleSocket, Err: err}
		}
		// The peer holds its own master copy now; release the slave as a
		// bare descriptor so no finalizer can close it before the exec.
		fd, err := c.ReleaseSlave()
		if err != nil {
			c.Close()
			return 0, 0, 0, &system.Error{Op: "dup", Err: err}
		}
		return fd, fd, fd, nil
	}

	if !p.Terminal {
		if _, err := system.Setsid(); err != nil {
			return 0, 0, 0, &system.Error{Op: "setsid", Err: err}
		}
	}
	return 0, 1, 2, nil
}
