package util

import (
	"fmt"
)

// Panicf logs and panics with a formatted message. It is reserved for
// failures that mean the build is broken, such as a key derivation that
// cannot produce output.
func Panicf(format string, args ...interface{}) {
	s := fmt.Sprintf(format, args...)
	log.WithField("at", "util.Panicf").Error(s)
	panic(s)
}
