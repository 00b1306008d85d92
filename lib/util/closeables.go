package util

import (
	"io"
	"sync"
)

var (
	closeOnExit []io.Closer
	closeMutex  sync.Mutex
)

// RegisterCloser registers an io.Closer to be closed during shutdown, such as
// a capture subprocess that must not outlive the process.
// This function is thread-safe.
func RegisterCloser(c io.Closer) {
	closeMutex.Lock()
	defer closeMutex.Unlock()
	closeOnExit = append(closeOnExit, c)
	log.WithField("count", len(closeOnExit)).Debug("Registered closer")
}

// UnregisterCloser removes c once its owner has released it normally.
func UnregisterCloser(c io.Closer) {
	closeMutex.Lock()
	defer closeMutex.Unlock()
	for i := range closeOnExit {
		if closeOnExit[i] == c {
			closeOnExit = append(closeOnExit[:i], closeOnExit[i+1:]...)
			break
		}
	}
	log.WithField("count", len(closeOnExit)).Debug("Unregistered closer")
}

// CloseAll closes all registered io.Closer instances and clears the list.
// The list is detached before closing, so a closer may call UnregisterCloser.
// This function is thread-safe.
func CloseAll() {
	closeMutex.Lock()
	pending := closeOnExit
	closeOnExit = nil
	closeMutex.Unlock()

	log.WithField("count", len(pending)).Debug("Closing all registered closers")

	for idx := range pending {
		if err := pending[idx].Close(); err != nil {
			log.WithError(err).Warn("Error closing resource")
		}
	}
	log.Debug("All closers closed")
}
