// Package memzero wipes key material that should not outlive its use.
package memzero

import "runtime"

// Zero overwrites b with zeros.
//
//go:noinline
func Zero(b []byte) {
	clear(b)
	// Keep b live past the clear so the write cannot be elided.
	runtime.KeepAlive(b)
}
