package memory

import (
	"github.com/alfinacore/engine/engine/errkind"
)

func outOfMemory(format string, args ...any) *errkind.Error {
	return errkind.New(errkind.OutOfMemory, format, args...)
}

var errkindAssert = errkind.Assert
