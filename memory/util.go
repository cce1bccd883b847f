package memory

import "unsafe"

// uintptrDiff returns the byte distance from base to p (p - base), or -1 if
// p precedes base. Both must point into the same backing array for the
// result to be meaningful; callers only use it for pointer-range containment
// tests against a single bucket's memory slice.
func uintptrDiff(p, base *byte) int {
	d := int(uintptr(unsafe.Pointer(p)) - uintptr(unsafe.Pointer(base)))
	if d < 0 {
		return -1
	}
	return d
}

// addrOf returns the raw address of p, for use in tests that need to reason
// about byte-range overlap between allocations.
func addrOf(p *byte) uintptr {
	return uintptr(unsafe.Pointer(p))
}
