//go:build !windows

package signals

import (
	"os"
	"os/signal"
	"syscall"
)

func init() {
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
}

func isInterrupt(sig os.Signal) bool {
	return sig == syscall.SIGINT || sig == syscall.SIGTERM
}

// Handle dispatches signals until StopHandle is called.
func Handle() {
	dispatch()
}
