package session

import (
	"context"
	"io"
	"net"
	"time"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"

	"github.com/go-i2p/go-streamtunnel/lib/crypto/aes"
	"github.com/go-i2p/go-streamtunnel/lib/handshake"
	"github.com/go-i2p/go-streamtunnel/lib/process"
	"github.com/go-i2p/go-streamtunnel/lib/relay"
	"github.com/go-i2p/go-streamtunnel/lib/transport"
	"github.com/go-i2p/go-streamtunnel/lib/util"
)

var log = logger.GetGoI2PLogger()

// SourceFactory opens the originator's plaintext byte source for one Session.
type SourceFactory func(ctx context.Context) (io.ReadCloser, error)

// SinkFactory opens the listener's plaintext byte sink for one Session.
type SinkFactory func(ctx context.Context) (io.WriteCloser, error)

// ListenerSession accepts one originator, decrypts its stream and writes the
// plaintext to a sink.
type ListenerSession struct {
	Addr      string
	Strength  aes.Strength
	ChunkSize int
	// NewSink is opened after the handshake completes. Nil means stdout.
	NewSink SinkFactory
	// Sampler, if set, logs leading ciphertext bytes at a bounded rate.
	Sampler *relay.Sampler
	// Handshake options, e.g. handshake.WithKeyLogging.
	Options []handshake.Option
	// OnListen is called once the socket is bound.
	OnListen func(net.Addr)
}

// Run executes one listener Session.
func (s *ListenerSession) Run(ctx context.Context) error {
	ln, err := transport.Listen(ctx, s.Addr)
	if err != nil {
		return err
	}
	if s.OnListen != nil {
		s.OnListen(ln.Addr())
	}
	conn, err := ln.AcceptOne()
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := handshake.Accept(conn, s.Strength, s.Options...)
	if err != nil {
		return err
	}
	defer res.Zero()

	stream, err := res.NewStream()
	if err != nil {
		util.Panicf("session cipher: %v", err)
	}

	newSink := s.NewSink
	if newSink == nil {
		newSink = StdoutSink
	}
	sink, err := newSink(ctx)
	if err != nil {
		return err
	}
	defer closeLogged("sink", sink)

	r := &relay.Relay{ChunkSize: s.ChunkSize, Transform: stream}
	if s.Sampler != nil {
		// Sample the ciphertext as it arrives, never the decrypted output.
		r.ObserveInput = s.Sampler.Observe
	}
	start := time.Now()
	stats, err := r.Pump(conn, sink)
	logRelayed("listener", res, stats, start)
	return err
}

// OriginatorSession dials the listener, encrypts a source and sends the
// ciphertext.
type OriginatorSession struct {
	ServerAddr string
	ChunkSize  int
	// NewSource is opened after the handshake completes.
	NewSource SourceFactory
	Options   []handshake.Option
}

// Run executes one originator Session.
func (s *OriginatorSession) Run(ctx context.Context) error {
	conn, err := transport.Dial(ctx, s.ServerAddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	res, err := handshake.Initiate(conn, s.Options...)
	if err != nil {
		return err
	}
	defer res.Zero()

	stream, err := res.NewStream()
	if err != nil {
		util.Panicf("session cipher: %v", err)
	}

	if s.NewSource == nil {
		return oops.New("originator session has no source")
	}
	src, err := s.NewSource(ctx)
	if err != nil {
		return err
	}
	defer closeLogged("source", src)

	r := &relay.Relay{ChunkSize: s.ChunkSize, Transform: stream}
	start := time.Now()
	stats, err := r.Pump(src, conn)
	logRelayed("originator", res, stats, start)
	return err
}

// StdoutSink writes plaintext to standard output.
func StdoutSink(context.Context) (io.WriteCloser, error) {
	return process.Stdout(), nil
}

// CommandSink starts name with args for each Session and feeds it plaintext.
func CommandSink(name string, args ...string) SinkFactory {
	return func(ctx context.Context) (io.WriteCloser, error) {
		return process.StartSink(ctx, name, args...)
	}
}

// CommandSource starts name with args for each Session and reads its stdout.
func CommandSource(name string, args ...string) SourceFactory {
	return func(ctx context.Context) (io.ReadCloser, error) {
		return process.StartSource(ctx, name, args...)
	}
}

func closeLogged(what string, c io.Closer) {
	if err := c.Close(); err != nil {
		log.WithError(err).WithField("resource", what).Debug("close failed")
	}
}

func logRelayed(role string, res *handshake.Result, stats relay.Stats, start time.Time) {
	log.WithFields(logger.Fields{
		"at":          "session.Run",
		"role":        role,
		"fingerprint": res.Fingerprint(),
		"bytes":       stats.Bytes,
		"chunks":      stats.Chunks,
		"elapsed":     time.Since(start).Round(time.Millisecond),
	}).Info("relay finished")
}
