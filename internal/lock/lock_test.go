package lock

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPathFor(t *testing.T) {
	got := PathFor("resources/js/types/generated.d.ts")
	assert.Equal(t, filepath.Join("resources/js/types", ".generated.d.ts.lock"), got)
}

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", ".generated.d.ts.lock")

	require.NoError(t, Acquire(path))
	held, pid, err := IsHeld(path)
	require.NoError(t, err)
	assert.True(t, held)
	assert.Equal(t, os.Getpid(), pid)

	// Re-acquiring from the same process is allowed.
	require.NoError(t, Acquire(path), "re-acquire")

	require.NoError(t, Release(path))
	require.NoError(t, Release(path), "second release should be a no-op")
	held, _, _ = IsHeld(path)
	assert.False(t, held, "expected lock released")
}

func TestAcquireHeldByOtherProcess(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	// PID 1 always exists on Unix.
	require.NoError(t, os.WriteFile(path, []byte(strconv.Itoa(1)), 0o644))
	if !isProcessRunning(1) {
		t.Skip("cannot signal PID 1 here")
	}
	assert.Error(t, Acquire(path), "another process holds the lock")
}

func TestAcquireStaleLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".lock")
	require.NoError(t, os.WriteFile(path, []byte("not-a-pid"), 0o644))
	assert.NoError(t, Acquire(path), "stale lock should be taken over")
}
