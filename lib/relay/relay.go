package relay

import (
	"io"

	"github.com/go-i2p/logger"

	"github.com/go-i2p/go-streamtunnel/lib/crypto/types"
	"github.com/go-i2p/go-streamtunnel/lib/transport"
)

var log = logger.GetGoI2PLogger()

// DefaultChunkSize is the read size used when Relay.ChunkSize is unset.
const DefaultChunkSize = 4096

// Stats summarises one completed or aborted pump.
type Stats struct {
	Bytes  int64
	Chunks int
}

// flusher is implemented by sinks that buffer, such as bufio.Writer.
type flusher interface {
	Flush() error
}

// Relay copies bytes from a source to a sink, transforming every chunk in
// place before it is written.
type Relay struct {
	// ChunkSize bounds each read. Zero means DefaultChunkSize.
	ChunkSize int
	// Transform is applied to each chunk in order. A nil Transform forwards
	// bytes unchanged.
	Transform types.Transformer
	// ObserveInput, if set, sees each chunk as read from the source, before
	// Transform runs. It must not retain or modify the slice.
	ObserveInput func([]byte)
	// Observe, if set, sees each transformed chunk before it is written. It
	// must not retain or modify the slice.
	Observe func([]byte)
}

// Pump runs until src is exhausted or an error occurs. A clean end of stream
// returns a nil error.
func (r *Relay) Pump(src io.Reader, dst io.Writer) (Stats, error) {
	size := r.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	buf := make([]byte, size)
	fl, _ := dst.(flusher)

	var stats Stats
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			chunk := buf[:n]
			if r.ObserveInput != nil {
				r.ObserveInput(chunk)
			}
			if r.Transform != nil {
				chunk = r.Transform.Transform(chunk)
			}
			if r.Observe != nil {
				r.Observe(chunk)
			}
			if _, err := dst.Write(chunk); err != nil {
				r.logEnd(stats, err)
				return stats, transport.WrapTransportError("relay write", err)
			}
			if fl != nil {
				if err := fl.Flush(); err != nil {
					r.logEnd(stats, err)
					return stats, transport.WrapTransportError("relay flush", err)
				}
			}
			stats.Bytes += int64(n)
			stats.Chunks++
		}

		switch {
		case rerr == io.EOF:
			r.logEnd(stats, nil)
			return stats, nil
		case rerr != nil:
			r.logEnd(stats, rerr)
			return stats, transport.WrapTransportError("relay read", rerr)
		case n == 0:
			// A zero-length read is the source's end-of-stream marker.
			r.logEnd(stats, nil)
			return stats, nil
		}
	}
}

func (r *Relay) logEnd(stats Stats, err error) {
	entry := log.WithFields(logger.Fields{
		"at":     "relay.Pump",
		"bytes":  stats.Bytes,
		"chunks": stats.Chunks,
	})
	if err != nil {
		entry.WithError(err).Debug("relay aborted")
		return
	}
	entry.Debug("relay reached end of stream")
}
