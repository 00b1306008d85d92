//go:build windows

package signals

import (
	"os"
	"os/signal"
)

func init() {
	signal.Notify(sigChan, os.Interrupt)
}

func isInterrupt(sig os.Signal) bool {
	return sig == os.Interrupt
}

// Handle dispatches signals until StopHandle is called.
func Handle() {
	dispatch()
}
