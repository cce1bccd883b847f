// Package errkind defines the engine-wide error taxonomy described by the
// core's error handling design: a small set of kinds distinguishing fatal
// engine mis-configuration from non-fatal resource failures.
package errkind

import (
	"fmt"

	"go.uber.org/zap"
)

// Kind categorises an engine error. It does not carry a message on its own;
// pair it with an underlying error via New.
type Kind int

const (
	// OutOfMemory means the arena, the stack allocator or every pool bucket
	// is exhausted.
	OutOfMemory Kind = iota
	// CapacityExceeded means a fixed-size table (jobs, entities, archetypes,
	// file handles) has no room left.
	CapacityExceeded
	// FileIo means open/seek/read/short-read failed.
	FileIo
	// Parse means malformed asset input (OBJ or otherwise).
	Parse
	// InvariantViolation means an internal bug, normally raised by Assert.
	InvariantViolation
)

func (k Kind) String() string {
	switch k {
	case OutOfMemory:
		return "out_of_memory"
	case CapacityExceeded:
		return "capacity_exceeded"
	case FileIo:
		return "file_io"
	case Parse:
		return "parse"
	case InvariantViolation:
		return "invariant_violation"
	default:
		return "unknown"
	}
}

// Fatal reports whether errors of this kind abort the process. OutOfMemory,
// CapacityExceeded and InvariantViolation are always fatal: the engine is
// meant to be sized at boot so they cannot arise under the configured
// workload. FileIo and Parse do not abort: they are returned as ordinary
// errors, and inside the resource pipeline's jobs a failed load or parse
// leaves the mesh not Ready while its resource handle stays valid.
func (k Kind) Fatal() bool {
	switch k {
	case OutOfMemory, CapacityExceeded, InvariantViolation:
		return true
	default:
		return false
	}
}

// Error pairs a Kind with the underlying cause.
type Error struct {
	Kind Kind
	Err  error
}

func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func Wrap(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// LogFatal logs e via log at Fatal level when its Kind is fatal — zap's
// Fatal level flushes and then calls os.Exit(1) (or, under a test logger
// built with zap.WithFatalHook, panics instead), so callers never need an
// explicit abort path of their own. Non-fatal kinds (FileIo, Parse) are a
// no-op; the caller is expected to still return e as an ordinary error.
func (e *Error) LogFatal(log *zap.SugaredLogger) {
	if !e.Kind.Fatal() {
		return
	}
	log.Fatalw(e.Error(), "kind", e.Kind.String())
}

// Is reports whether err carries the given Kind, following Unwrap chains.
func Is(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
