package runtimepath

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirPrefersXDGRuntimeDir(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	got, err := Dir()
	require.NoError(t, err)
	assert.Equal(t, td, got)
}

func TestDirFallsBackWithoutXDGRuntimeDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")
	uid := strconv.Itoa(os.Getuid())

	got, err := Dir()
	require.NoError(t, err)
	assert.Contains(t, []string{
		filepath.Join("/run/user", uid),
		filepath.Join(os.TempDir(), "wlshell-runtime-"+uid),
	}, got)

	info, err := os.Stat(got)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCandidatesOrder(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/xdg")
	cs := candidates(42)
	require.Len(t, cs, 3)
	assert.Equal(t, candidate{"/xdg", trusted}, cs[0])
	assert.Equal(t, candidate{"/run/user/42", existing}, cs[1])
	assert.Equal(t, candidate{filepath.Join(os.TempDir(), "wlshell-runtime-42"), created}, cs[2])

	t.Setenv("XDG_RUNTIME_DIR", "")
	assert.Len(t, candidates(42), 2)
}

func TestSocketAndPIDPaths(t *testing.T) {
	td := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", td)

	socket, err := SocketPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(td, "wlshell.sock"), socket)

	pid, err := PIDPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(td, "wlshell.pid"), pid)
}
