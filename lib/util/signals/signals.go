// Package signals turns SIGINT and SIGTERM into calls to registered handlers
// so the main loop can cancel its context instead of exiting abruptly.
package signals

import (
	"context"
	"os"
	"os/signal"
	"sync"

	"github.com/go-i2p/logger"
)

var log = logger.GetGoI2PLogger()

// sigChan is buffered to avoid missing signals delivered while no receiver is ready.
var sigChan = make(chan os.Signal, 1)

// Handler is a function called when a signal is received.
type Handler func()

// HandlerID is a unique identifier returned by registration functions,
// used to deregister individual handlers.
type HandlerID int

// registeredHandler pairs a handler with its unique ID.
type registeredHandler struct {
	id HandlerID
	fn Handler
}

var (
	mu           sync.RWMutex
	interrupters []registeredHandler
	nextID       HandlerID
	stopOnce     sync.Once
)

// RegisterInterruptHandler registers a handler called on SIGINT/SIGTERM (shutdown).
// Returns a HandlerID that can be passed to DeregisterInterruptHandler.
// Nil handlers are silently ignored and return -1.
func RegisterInterruptHandler(f Handler) HandlerID {
	if f == nil {
		return -1
	}
	mu.Lock()
	defer mu.Unlock()
	id := nextID
	nextID++
	interrupters = append(interrupters, registeredHandler{id: id, fn: f})
	return id
}

// DeregisterInterruptHandler removes a previously registered interrupt handler by ID.
func DeregisterInterruptHandler(id HandlerID) {
	mu.Lock()
	defer mu.Unlock()
	for i, h := range interrupters {
		if h.id == id {
			interrupters = append(interrupters[:i], interrupters[i+1:]...)
			return
		}
	}
}

func handleInterrupted(sig os.Signal) {
	mu.RLock()
	snapshot := make([]registeredHandler, len(interrupters))
	copy(snapshot, interrupters)
	mu.RUnlock()

	log.WithFields(logger.Fields{
		"at":       "signals.handleInterrupted",
		"signal":   sig.String(),
		"handlers": len(snapshot),
	}).Info("shutdown signal received")
	for _, h := range snapshot {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Error("panic in interrupt handler")
				}
			}()
			h.fn()
		}()
	}
}

// WithInterrupt returns a copy of parent that is cancelled by the next
// SIGINT or SIGTERM. The handler is removed when the returned cancel is
// called.
func WithInterrupt(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	id := RegisterInterruptHandler(Handler(cancel))
	return ctx, func() {
		DeregisterInterruptHandler(id)
		cancel()
	}
}

// StopHandle closes the signal channel, causing Handle() to return.
// It first calls signal.Stop to prevent signal delivery to the closed channel.
// Safe to call multiple times; only the first call takes effect.
func StopHandle() {
	stopOnce.Do(func() {
		signal.Stop(sigChan)
		close(sigChan)
	})
}

func dispatch() {
	for sig := range sigChan {
		if isInterrupt(sig) {
			handleInterrupted(sig)
			continue
		}
		log.WithField("signal", sig.String()).Debug("ignoring signal")
	}
}
