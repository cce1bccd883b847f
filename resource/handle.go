// Package resource implements the file loading and resource management
// pipeline: synchronous/asynchronous file reads, an OBJ mesh parser, and a
// resource manager that dedupes textures/meshes by canonical path and
// reserves renderer handles for GPU-side objects.
package resource

// Handle is a packed {valid, index} pair, shared by both resource handles
// (texture, mesh) and renderer handles (index buffer, vertex buffer,
// vertex array, ...) — the two handle families have identical shape, only
// the table they index into differs.
type Handle uint64

const validBit = uint64(1) << 63

// NewHandle packs index into a valid Handle.
func NewHandle(index uint64) Handle {
	return Handle(validBit | (index &^ validBit))
}

// Valid reports whether h was ever assigned an index.
func (h Handle) Valid() bool {
	return uint64(h)&validBit != 0
}

// Index returns h's index. Only meaningful when Valid() is true.
func (h Handle) Index() uint64 {
	return uint64(h) &^ validBit
}
