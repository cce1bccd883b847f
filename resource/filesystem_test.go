package resource

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alfinacore/engine/engine/errkind"
	"github.com/alfinacore/engine/job"
)

func writeTempFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "asset.txt")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

// panicsOnFatal builds a logger whose Fatal level panics instead of calling
// os.Exit(1), so tests can assert the fatal-capacity path without killing
// the test binary.
func panicsOnFatal() *zap.SugaredLogger {
	return zap.NewNop().WithOptions(zap.WithFatalHook(zapcore.WriteThenPanic)).Sugar()
}

func TestSyncLoadNullTerminates(t *testing.T) {
	path := writeTempFile(t, "hello")
	fs := NewFileSystem(nil, 8, 8, nil)
	h, err := fs.SyncLoad(path, FileLoadRead)
	require.NoError(t, err)
	require.Equal(t, FileLoaded, h.State())
	require.Equal(t, "hello", string(h.Bytes()))
}

func TestSyncLoadMissingFileIsFileIoError(t *testing.T) {
	fs := NewFileSystem(nil, 8, 8, nil)
	_, err := fs.SyncLoad("/does/not/exist.txt", FileLoadRead)
	require.Error(t, err)
	require.True(t, errkind.Is(err, errkind.FileIo))
}

// A full file handle table is a fatal, CapacityExceeded condition: it is
// logged at zap Fatal level rather than returned as a recoverable error.
func TestFileHandleCapacityExceededIsFatal(t *testing.T) {
	path := writeTempFile(t, "x")
	fs := NewFileSystem(nil, 1, 8, panicsOnFatal())
	_, err := fs.SyncLoad(path, FileLoadRead)
	require.NoError(t, err)
	require.Panics(t, func() {
		_, _ = fs.SyncLoad(path, FileLoadRead)
	})
}

func TestAsyncLoadCompletesViaJobSystem(t *testing.T) {
	path := writeTempFile(t, "async contents")
	pool := job.NewPool(8, nil)
	sys := job.NewSystem(pool, 8, time.Millisecond)
	fs := NewFileSystem(sys, 8, 8, nil)

	handle, loadJob, err := fs.AsyncLoad(path, FileLoadRead)
	require.NoError(t, err)
	require.Equal(t, FileLoading, handle.State())

	sys.StartJob(loadJob)
	sys.WaitFor(loadJob)

	require.Equal(t, FileLoaded, handle.State())
	require.Equal(t, "async contents", string(handle.Bytes()))
}
