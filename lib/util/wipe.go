package util

import "runtime"

// Wipe zeroes b in place. It is best-effort: the Go runtime may already have
// copied the contents elsewhere.
//
//go:noinline
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(&b)
}
