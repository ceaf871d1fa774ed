//go:build linux

// Package console allocates the pseudo-terminal for a container process
// and hands its control descriptor to an out-of-process peer.
package console

import (
	"net"
	"os"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"

	"github.com/themoriarti/ocijail/system"
)

// Console is a freshly allocated pseudo-terminal pair. The slave side
// becomes the container's stdio; the master side is surrendered to the
// console-socket peer and never read in-process.
type Console struct {
	master *os.File
	slave  *os.File
}

// New allocates a pseudo-terminal pair.
func New() (*Console, error) {
	master, slave, err := pty.Open()
	if err != nil {
		return nil, err
	}
	return &Console{master: master, slave: slave}, nil
}

// SlaveFD returns the descriptor of the terminal side of the pair.
func (c *Console) SlaveFD() int {
	return int(c.slave.Fd())
}

// SlavePath returns the device path of the terminal side.
func (c *Console) SlavePath() string {
	return c.slave.Name()
}

// SetControllingTerminal makes the slave the controlling terminal of the
// calling process. The caller must already lead a session.
func (c *Console) SetControllingTerminal() error {
	return system.Setctty(int(c.slave.Fd()))
}

// ReleaseSlave duplicates the slave descriptor out of the runtime-managed
// file and closes both sides of the pair. The files carry finalizers that
// close their descriptors once the Console is collected; the duplicate
// has no such tie and survives until the exec replaces the image.
func (c *Console) ReleaseSlave() (int, error) {
	fd, err := unix.Dup(int(c.slave.Fd()))
	if err != nil {
		return -1, err
	}
	c.Close()
	return fd, nil
}

// SendMaster connects to the local domain socket at socketPath and passes
// the master descriptor to the peer as ancillary data. One descriptor is
// sent per connection; the message body carries the slave device path.
func (c *Console) SendMaster(socketPath string) error {
	conn, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: socketPath, Net: "unix"})
	if err != nil {
		return err
	}
	defer conn.Close()
	rights := unix.UnixRights(int(c.master.Fd()))
	_, _, err = conn.WriteMsgUnix([]byte(c.slave.Name()), rights, nil)
	return err
}

// Close releases both sides of the pair.
func (c *Console) Close() error {
	err := c.master.Close()
	if serr := c.slave.Close(); err == nil {
		err = serr
	}
	return err
}
