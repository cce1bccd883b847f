package errkind

import "fmt"

// Assert panics with an InvariantViolation-tagged error if cond is false.
// It mirrors the original engine's engine/debug/debug.h assert macros,
// which categorise an internal bug with a message and abort.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(New(InvariantViolation, format, args...))
	}
}
