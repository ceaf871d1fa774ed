package system

import "fmt"

// Error describes a failed OS-level operation. Op names the operation the
// way the launch sequence reports it; Path is set when a filesystem path
// is relevant; Err is the underlying OS error.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
