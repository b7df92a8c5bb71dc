package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// SocketName is the file name of the daemon socket inside Dir.
const SocketName = "bsptile.sock"

// EnvSocket overrides the socket path entirely.
const EnvSocket = "BSPTILE_SOCKET"

// Dir returns the runtime directory used for the IPC socket. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) the XDG default, /run/user/<uid> (if present)
// 3) /tmp/bsptile-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	if info, err := os.Stat(xdg.RuntimeDir); err == nil && info.IsDir() {
		return xdg.RuntimeDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/bsptile-runtime-%d", os.Getuid())
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	if p := os.Getenv(EnvSocket); p != "" {
		return p, nil
	}
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, SocketName), nil
}
