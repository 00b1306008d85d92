package relay

import (
	"encoding/hex"
	"time"

	"github.com/go-i2p/logger"
	"golang.org/x/time/rate"
)

// Sampler emits the leading bytes of a chunk at most once per interval. It is
// a debug aid and never affects what the relay forwards.
type Sampler struct {
	limiter *rate.Limiter
	n       int
	// Emit receives each sample. It defaults to a Debug log line.
	Emit func(sample []byte)
}

// NewSampler samples up to n bytes at most once per interval. A non-positive
// interval samples every chunk.
func NewSampler(interval time.Duration, n int) *Sampler {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Sampler{
		limiter: rate.NewLimiter(limit, 1),
		n:       n,
		Emit:    logSample,
	}
}

// Observe is suitable as Relay.Observe or Relay.ObserveInput.
func (s *Sampler) Observe(chunk []byte) {
	if s == nil || s.n <= 0 || len(chunk) == 0 || !s.limiter.Allow() {
		return
	}
	sample := chunk
	if len(sample) > s.n {
		sample = sample[:s.n]
	}
	s.Emit(append([]byte(nil), sample...))
}

func logSample(sample []byte) {
	log.WithFields(logger.Fields{
		"at":     "relay.Sampler",
		"len":    len(sample),
		"sample": hex.EncodeToString(sample),
	}).Debug("ciphertext sample")
}
