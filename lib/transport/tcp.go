package transport

import (
	"context"
	"net"
	"sync"

	"github.com/go-i2p/logger"
	"github.com/samber/oops"
)

var log = logger.GetGoI2PLogger()

// Conn is a TCP connection that closes itself when its context ends.
type Conn struct {
	net.Conn
	stop      func() bool
	closeOnce sync.Once
	closeErr  error
}

func newConn(ctx context.Context, c net.Conn) *Conn {
	conn := &Conn{Conn: c}
	conn.stop = context.AfterFunc(ctx, func() {
		log.WithField("remote", c.RemoteAddr().String()).Debug("context done, closing connection")
		_ = conn.closeSocket()
	})
	return conn
}

// closeSocket may run on the AfterFunc goroutine before newConn has stored
// stop, so it must not touch c.stop.
func (c *Conn) closeSocket() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.Conn.Close()
	})
	return c.closeErr
}

// Close releases the socket. It is safe to call more than once.
func (c *Conn) Close() error {
	c.stop()
	return c.closeSocket()
}

func setNoDelay(c net.Conn) error {
	tcp, ok := c.(*net.TCPConn)
	if !ok {
		return nil
	}
	return tcp.SetNoDelay(true)
}

// Dial connects to addr over TCP with send coalescing disabled.
func Dial(ctx context.Context, addr string) (*Conn, error) {
	log.WithFields(logger.Fields{
		"at":      "transport.Dial",
		"address": addr,
	}).Debug("dialing listener")

	var d net.Dialer
	c, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, WrapTransportError("dial", oops.Wrapf(err, "connect to %s", addr))
	}
	if err := setNoDelay(c); err != nil {
		_ = c.Close()
		return nil, WrapTransportError("dial", oops.Wrapf(err, "disable Nagle on %s", addr))
	}

	log.WithFields(logger.Fields{
		"at":     "transport.Dial",
		"local":  c.LocalAddr().String(),
		"remote": c.RemoteAddr().String(),
	}).Info("connected to listener")
	return newConn(ctx, c), nil
}

// Listener accepts a single connection and then stops listening.
type Listener struct {
	ln  net.Listener
	ctx context.Context
}

// Listen binds addr. The socket is released after the first accepted
// connection or when ctx ends.
func Listen(ctx context.Context, addr string) (*Listener, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return nil, WrapTransportError("listen", oops.Wrapf(err, "bind %s", addr))
	}
	log.WithField("address", ln.Addr().String()).Info("listening, waiting for connection")
	return &Listener{ln: ln, ctx: ctx}, nil
}

// Addr returns the bound address.
func (l *Listener) Addr() net.Addr {
	return l.ln.Addr()
}

// Close releases the listening socket.
func (l *Listener) Close() error {
	return l.ln.Close()
}

// AcceptOne waits for one peer and closes the listening socket before
// returning.
func (l *Listener) AcceptOne() (*Conn, error) {
	stop := context.AfterFunc(l.ctx, func() { _ = l.ln.Close() })
	defer stop()
	defer l.ln.Close()

	c, err := l.ln.Accept()
	if err != nil {
		if ctxErr := l.ctx.Err(); ctxErr != nil {
			return nil, WrapTransportError("accept", ctxErr)
		}
		return nil, WrapTransportError("accept", err)
	}
	if err := setNoDelay(c); err != nil {
		_ = c.Close()
		return nil, WrapTransportError("accept", oops.Wrapf(err, "disable Nagle"))
	}

	log.WithField("remote", c.RemoteAddr().String()).Info("connection established")
	return newConn(l.ctx, c), nil
}

// AcceptOne binds addr, waits for one peer and releases the socket.
func AcceptOne(ctx context.Context, addr string) (*Conn, error) {
	l, err := Listen(ctx, addr)
	if err != nil {
		return nil, err
	}
	return l.AcceptOne()
}
