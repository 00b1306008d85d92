package transport

import (
	"errors"

	"github.com/samber/oops"
)

// ProtocolError reports a malformed or missing handshake message, a bad hex
// length or a disallowed cipher strength.
type ProtocolError struct {
	Op  string
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Err == nil {
		return "protocol error: " + e.Op
	}
	return "protocol error: " + e.Op + ": " + e.Err.Error()
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// TransportError reports a connect, accept, read or write failure, including
// the peer closing the connection mid-handshake.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	if e.Err == nil {
		return "transport error: " + e.Op
	}
	return "transport error: " + e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// NewProtocolError builds a ProtocolError with a formatted cause.
func NewProtocolError(op, format string, args ...any) error {
	return &ProtocolError{Op: op, Err: oops.Errorf(format, args...)}
}

// WrapProtocolError attaches op to err as a ProtocolError.
func WrapProtocolError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ProtocolError{Op: op, Err: err}
}

// WrapTransportError attaches op to err as a TransportError.
func WrapTransportError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransportError{Op: op, Err: err}
}

// IsProtocolError reports whether err is or wraps a ProtocolError.
func IsProtocolError(err error) bool {
	var pe *ProtocolError
	return errors.As(err, &pe)
}

// IsTransportError reports whether err is or wraps a TransportError.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
