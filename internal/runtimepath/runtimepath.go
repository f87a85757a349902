package runtimepath

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	socketName = "wlshell.sock"
	pidName    = "wlshell.pid"
)

// policy says how a candidate directory is accepted.
type policy int

const (
	trusted  policy = iota // used as is
	existing               // used when it is a directory
	created                // made on demand
)

type candidate struct {
	path   string
	policy policy
}

func candidates(uid int) []candidate {
	var out []candidate
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		out = append(out, candidate{dir, trusted})
	}
	return append(out,
		candidate{filepath.Join("/run/user", strconv.Itoa(uid)), existing},
		candidate{filepath.Join(os.TempDir(), "wlshell-runtime-"+strconv.Itoa(uid)), created},
	)
}

// Dir returns the directory holding the daemon socket and pid file.
// XDG_RUNTIME_DIR is trusted as set; otherwise the per-user /run directory
// is used when present, and a private directory under the temp dir as the
// last resort.
func Dir() (string, error) {
	for _, c := range candidates(os.Getuid()) {
		switch c.policy {
		case trusted:
			return c.path, nil
		case existing:
			if info, err := os.Stat(c.path); err == nil && info.IsDir() {
				return c.path, nil
			}
		case created:
			if err := os.MkdirAll(c.path, 0o700); err != nil {
				return "", fmt.Errorf("failed to create runtime dir: %w", err)
			}
			return c.path, nil
		}
	}
	return "", errors.New("no runtime directory available")
}

func join(name string) (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) { return join(socketName) }

// PIDPath returns the file the running daemon records its pid in.
func PIDPath() (string, error) { return join(pidName) }
