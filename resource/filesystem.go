package resource

import (
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/alfinacore/engine/engine/errkind"
	"github.com/alfinacore/engine/job"
)

// FileLoadMode mirrors the source engine's read/write open mode.
type FileLoadMode int

const (
	FileLoadRead FileLoadMode = iota
	FileLoadWrite
)

// FileHandle's lifecycle state.
type FileHandleState int

const (
	FileFree FileHandleState = iota
	FileLoading
	FileLoaded
)

// DefaultMaxFileHandles / DefaultMaxAsyncReads restore the original
// engine's MAX_FILE_HANDLES / MAX_ASYNC_FILE_READS caps, dropped from the
// distilled spec but present in the source file system.
const (
	DefaultMaxFileHandles = 256
	DefaultMaxAsyncReads  = 64
)

// FileHandle is a single loaded (or loading) file's in-memory buffer.
// Memory is null-terminated, matching the source engine's sync_load
// contract, so text assets (OBJ, shader source) can be read as a C string
// without a second copy.
type FileHandle struct {
	mu      sync.Mutex
	size    int
	state   FileHandleState
	memory  []byte
}

// Size returns the loaded buffer's length, including the trailing NUL.
func (h *FileHandle) Size() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

// State returns the handle's current lifecycle state.
func (h *FileHandle) State() FileHandleState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Bytes returns the loaded buffer, excluding the trailing NUL. It is only
// valid once State() == FileLoaded.
func (h *FileHandle) Bytes() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.size == 0 {
		return nil
	}
	return h.memory[:h.size-1]
}

// FileSystem owns a capped set of in-flight FileHandles and prepares async
// reads as jobs drawn from a caller-supplied job system, producing
// in-memory null-terminated buffers.
type FileSystem struct {
	mu            sync.Mutex
	maxHandles    int
	maxAsyncReads int
	openHandles   int
	inFlightReads int
	jobs          *job.System
	log           *zap.SugaredLogger
}

// NewFileSystem constructs a FileSystem whose async reads are submitted to
// jobSystem (the engine's main job system). log receives the fatal-level
// record when the file handle table or in-flight async read table fills
// up; a nil log defaults to a no-op logger.
func NewFileSystem(jobSystem *job.System, maxHandles, maxAsyncReads int, log *zap.SugaredLogger) *FileSystem {
	if maxHandles <= 0 {
		maxHandles = DefaultMaxFileHandles
	}
	if maxAsyncReads <= 0 {
		maxAsyncReads = DefaultMaxAsyncReads
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &FileSystem{
		maxHandles:    maxHandles,
		maxAsyncReads: maxAsyncReads,
		jobs:          jobSystem,
		log:           log,
	}
}

func readFile(path string, mode FileLoadMode) (*FileHandle, error) {
	errkind.Assert(mode == FileLoadRead, "resource: write mode not supported by this port")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errkind.Wrap(errkind.FileIo, err)
	}
	buf := make([]byte, len(data)+1)
	copy(buf, data)
	return &FileHandle{size: len(buf), state: FileLoaded, memory: buf}, nil
}

// SyncLoad reads path into a new FileHandle on the calling goroutine.
func (fs *FileSystem) SyncLoad(path string, mode FileLoadMode) (*FileHandle, error) {
	fs.mu.Lock()
	if fs.openHandles >= fs.maxHandles {
		fs.mu.Unlock()
		err := errkind.New(errkind.CapacityExceeded, "resource: file handle table full")
		err.LogFatal(fs.log)
		return nil, err
	}
	fs.openHandles++
	fs.mu.Unlock()

	h, err := readFile(path, mode)
	if err != nil {
		fs.mu.Lock()
		fs.openHandles--
		fs.mu.Unlock()
		return nil, err
	}
	return h, nil
}

// AsyncLoad reserves a handle in the LOADING state and configures a job,
// drawn from fs's job system's pool, that performs the actual read. It does
// not start the job: the caller starts it (after wiring any successors),
// matching the source engine's file_async_load returning a {handle, job}
// pair.
func (fs *FileSystem) AsyncLoad(path string, mode FileLoadMode) (*FileHandle, *job.Job, error) {
	fs.mu.Lock()
	if fs.openHandles >= fs.maxHandles {
		fs.mu.Unlock()
		err := errkind.New(errkind.CapacityExceeded, "resource: file handle table full")
		err.LogFatal(fs.log)
		return nil, nil, err
	}
	if fs.inFlightReads >= fs.maxAsyncReads {
		fs.mu.Unlock()
		err := errkind.New(errkind.CapacityExceeded, "resource: too many in-flight async reads")
		err.LogFatal(fs.log)
		return nil, nil, err
	}
	fs.openHandles++
	fs.inFlightReads++
	fs.mu.Unlock()

	handle := &FileHandle{state: FileLoading}
	j := fs.jobs.Pool().Get()
	job.Configure(j, func(*job.Job) {
		loaded, err := readFile(path, mode)
		handle.mu.Lock()
		defer handle.mu.Unlock()
		if err != nil {
			handle.state = FileFree
			return
		}
		handle.size = loaded.size
		handle.memory = loaded.memory
		handle.state = FileLoaded

		fs.mu.Lock()
		fs.inFlightReads--
		fs.mu.Unlock()
	}, nil)
	return handle, j, nil
}

// FreeHandle releases handle's backing memory. It is a programmer error to
// free a handle still in the LOADING state.
func (fs *FileSystem) FreeHandle(h *FileHandle) {
	h.mu.Lock()
	errkind.Assert(h.state != FileLoading, "resource: freeing a handle still loading")
	h.memory = nil
	h.state = FileFree
	h.mu.Unlock()

	fs.mu.Lock()
	fs.openHandles--
	fs.mu.Unlock()
}
