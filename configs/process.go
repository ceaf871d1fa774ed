// Package configs models the "process" fragment of an OCI runtime spec.
// The fragment is decoded field by field with strict type checks so that a
// malformed configuration is rejected before any process-affecting syscall
// runs.
package configs

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// ConfigError reports a process fragment that is structurally invalid:
// a required field is missing or a field has the wrong type. The message
// names the first offending field.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string {
	return e.Msg
}

// ConstraintError reports a fragment that is structurally valid but
// inconsistent with the launch parameters supplied alongside it, such as a
// console socket for a process that requested no terminal.
type ConstraintError struct {
	Msg string
}

func (e *ConstraintError) Error() string {
	return e.Msg
}

func malformed(format string, args ...interface{}) error {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}

// isNull reports whether a raw value is the JSON null literal. Unmarshal
// treats null as a no-op for string, number, bool, array and map targets,
// so every typed field has to reject it explicitly.
func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

// Process is the validated launch configuration for a container process.
// It is built once by ParseProcess and not modified afterwards, except for
// the environment table which the finalizer may extend before exec.
type Process struct {
	// Cwd is the working directory the process starts in.
	Cwd string

	// Args is the command and its arguments; Args[0] is the command.
	Args []string

	// Env holds KEY=VALUE entries in the order they were configured.
	// Lookup is first-match-wins; see Getenv and Setenv.
	Env []string

	// UID and GID are the credentials the process runs with.
	UID uint32
	GID uint32

	// Gids is the supplementary group list. Gids[0] is always GID.
	Gids []uint32

	// Umask is the file mode creation mask, or nil to keep the mask
	// inherited from the runtime.
	Umask *uint32

	// Terminal reports whether the process wants a pseudo-terminal.
	Terminal bool

	// ConsoleSocket is the path of the local domain socket that receives
	// the pty master for a detached terminal launch.
	ConsoleSocket string

	// Detach reports whether the container is being launched detached.
	Detach bool

	// PreserveFDs is the number of descriptors beyond stdio that stay
	// open across the exec.
	PreserveFDs int
}

// ParseProcess decodes and validates a process fragment together with the
// externally supplied launch parameters. Field checks run in a fixed order
// and stop at the first mismatch.
func ParseProcess(data []byte, consoleSocket string, detach bool, preserveFds int) (*Process, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil || raw == nil {
		return nil, malformed("process must be an object")
	}

	p := &Process{
		ConsoleSocket: consoleSocket,
		Detach:        detach,
		PreserveFDs:   preserveFds,
	}

	rawCwd, ok := raw["cwd"]
	if !ok {
		return nil, malformed("no process.cwd")
	}
	if isNull(rawCwd) || json.Unmarshal(rawCwd, &p.Cwd) != nil {
		return nil, malformed("process.cwd must be a string")
	}

	rawArgs, ok := raw["args"]
	if !ok {
		return nil, malformed("no process.args")
	}
	var argList []json.RawMessage
	if isNull(rawArgs) || json.Unmarshal(rawArgs, &argList) != nil {
		return nil, malformed("process.args must be an array")
	}
	if len(argList) == 0 {
		return nil, malformed("process.args must have at least one element")
	}
	for _, rawArg := range argList {
		var arg string
		if isNull(rawArg) || json.Unmarshal(rawArg, &arg) != nil {
			return nil, malformed("process.args must be an array of strings")
		}
		p.Args = append(p.Args, arg)
	}
	if p.Args[0] == "" {
		return nil, malformed("process.args[0] must not be empty")
	}

	if err := parseUser(raw["user"], p); err != nil {
		return nil, err
	}

	if rawEnv, ok := raw["env"]; ok {
		var envList []json.RawMessage
		if isNull(rawEnv) || json.Unmarshal(rawEnv, &envList) != nil {
			return nil, malformed("process.env must be an array")
		}
		for _, rawEntry := range envList {
			var entry string
			if isNull(rawEntry) || json.Unmarshal(rawEntry, &entry) != nil {
				return nil, malformed("process.env must be an array of strings")
			}
			p.Env = append(p.Env, entry)
		}
	}

	if rawTerminal, ok := raw["terminal"]; ok {
		if isNull(rawTerminal) || json.Unmarshal(rawTerminal, &p.Terminal) != nil {
			return nil, malformed("process.terminal must be a boolean")
		}
	}

	if p.Terminal {
		if p.Detach {
			if p.ConsoleSocket == "" {
				return nil, &ConstraintError{Msg: "--console-socket is required when detached if process.terminal is true"}
			}
			fi, err := os.Stat(p.ConsoleSocket)
			if err != nil || fi.Mode()&os.ModeSocket == 0 {
				return nil, &ConstraintError{Msg: "--console-socket must be a path to a local domain socket"}
			}
		}
	} else if p.ConsoleSocket != "" {
		return nil, &ConstraintError{Msg: "--console-socket provided but process.terminal is false"}
	}

	return p, nil
}

// parseUser fills uid, gid, umask and the supplementary group list. An
// absent or null user object means root with a bare [0] group list.
func parseUser(rawUser json.RawMessage, p *Process) error {
	if len(rawUser) == 0 || string(rawUser) == "null" {
		p.UID = 0
		p.GID = 0
		p.Gids = []uint32{0}
		return nil
	}
	var user map[string]json.RawMessage
	if err := json.Unmarshal(rawUser, &user); err != nil {
		return malformed("process.user must be an object")
	}
	if isNull(user["uid"]) || json.Unmarshal(user["uid"], &p.UID) != nil {
		return malformed("process.user.uid must be a number")
	}
	if isNull(user["gid"]) || json.Unmarshal(user["gid"], &p.GID) != nil {
		return malformed("process.user.gid must be a number")
	}
	if rawUmask, ok := user["umask"]; ok {
		var umask uint32
		if isNull(rawUmask) || json.Unmarshal(rawUmask, &umask) != nil {
			return malformed("process.user.umask must be a number")
		}
		p.Umask = &umask
	}
	p.Gids = append(p.Gids, p.GID)
	if rawGids, ok := user["additionalGids"]; ok {
		var gidList []json.RawMessage
		if isNull(rawGids) || json.Unmarshal(rawGids, &gidList) != nil {
			return malformed("process.user.additionalGids must be an array")
		}
		for _, rawGid := range gidList {
			var gid uint32
			if isNull(rawGid) || json.Unmarshal(rawGid, &gid) != nil {
				return malformed("process.user.additionalGids must be an array of numbers")
			}
			p.Gids = append(p.Gids, gid)
		}
	}
	return nil
}

// Getenv looks up key in the environment table. The first entry whose text
// before the '=' matches wins; an entry with no '=' at all matches on its
// full text and yields an empty value.
func (p *Process) Getenv(key string) (string, bool) {
	for _, entry := range p.Env {
		k, v, _ := strings.Cut(entry, "=")
		if k == key {
			return v, true
		}
	}
	return "", false
}

// Setenv overwrites the first entry with a matching key in place, or
// appends a new KEY=VALUE entry when the key is not present.
func (p *Process) Setenv(key, value string) {
	keyval := key + "=" + value
	for i, entry := range p.Env {
		k, _, _ := strings.Cut(entry, "=")
		if k == key {
			p.Env[i] = keyval
			return
		}
	}
	p.Env = append(p.Env, keyval)
}
