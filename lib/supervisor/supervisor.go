package supervisor

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"github.com/go-i2p/go-streamtunnel/lib/transport"
)

var log = logger.GetGoI2PLogger()

// DefaultBackoff is the delay between Sessions when none is configured.
const DefaultBackoff = time.Second

// State is the supervisor's lifecycle state.
type State int32

const (
	Idle State = iota
	Active
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Active:
		return "active"
	default:
		return "unknown"
	}
}

// Session is one full run of transport, handshake and relay.
type Session interface {
	Run(ctx context.Context) error
}

// SessionFunc adapts a function to Session.
type SessionFunc func(ctx context.Context) error

func (f SessionFunc) Run(ctx context.Context) error { return f(ctx) }

// Backoff returns the delay before the next Session given how many have
// ended so far.
type Backoff func(ended int) time.Duration

// FixedBackoff waits d between every pair of Sessions.
func FixedBackoff(d time.Duration) Backoff {
	return func(int) time.Duration { return d }
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Supervisor restarts Session forever.
type Supervisor struct {
	// Name labels log lines, e.g. "listener" or "originator".
	Name    string
	Session Session
	// Backoff defaults to FixedBackoff(DefaultBackoff).
	Backoff Backoff
	// Sleep defaults to a timer that honours cancellation.
	Sleep Sleeper

	state    atomic.Int32
	sessions atomic.Int64
	failures atomic.Int64
}

// New returns a Supervisor with the given fixed backoff.
func New(name string, session Session, backoff time.Duration) *Supervisor {
	return &Supervisor{
		Name:    name,
		Session: session,
		Backoff: FixedBackoff(backoff),
	}
}

// State reports whether a Session is currently running.
func (s *Supervisor) State() State { return State(s.state.Load()) }

// Sessions is the number of Sessions started.
func (s *Supervisor) Sessions() int64 { return s.sessions.Load() }

// Failures is the number of Sessions that ended with an error.
func (s *Supervisor) Failures() int64 { return s.failures.Load() }

// Run loops Idle -> Active -> Idle until ctx is cancelled, then returns
// ctx.Err(). It never returns because a Session failed.
func (s *Supervisor) Run(ctx context.Context) error {
	if s.Session == nil {
		return oops.Errorf("supervisor %q has no session", s.Name)
	}
	backoff := s.Backoff
	if backoff == nil {
		backoff = FixedBackoff(DefaultBackoff)
	}
	sleep := s.Sleep
	if sleep == nil {
		sleep = sleepContext
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		n := s.sessions.Add(1)
		s.state.Store(int32(Active))
		log.WithFields(logger.Fields{
			"at":      "supervisor.Run",
			"name":    s.Name,
			"session": n,
		}).Info("session started")

		err := s.Session.Run(ctx)
		s.state.Store(int32(Idle))
		s.logOutcome(n, err)

		if err := ctx.Err(); err != nil {
			log.WithField("name", s.Name).Info("supervisor stopping")
			return err
		}

		delay := backoff(int(n))
		log.WithFields(logger.Fields{
			"at":    "supervisor.Run",
			"name":  s.Name,
			"delay": delay,
		}).Info("restarting session after backoff")
		if err := sleep(ctx, delay); err != nil {
			return ctx.Err()
		}
	}
}

func (s *Supervisor) logOutcome(n int64, err error) {
	fields := logger.Fields{
		"at":      "supervisor.Run",
		"name":    s.Name,
		"session": n,
	}
	if err == nil {
		log.WithFields(fields).Info("session ended")
		return
	}
	s.failures.Add(1)
	switch {
	case transport.IsProtocolError(err):
		fields["kind"] = "protocol"
	case transport.IsTransportError(err):
		fields["kind"] = "transport"
	default:
		fields["kind"] = "other"
	}
	log.WithFields(fields).WithError(err).Warn("session ended with error")
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
