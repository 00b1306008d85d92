// Package relay pumps an unbounded byte stream from a source to a sink
// through a session keystream, one fixed-size chunk at a time.
//
// Short reads are forwarded as-is. A zero-length read or io.EOF ends the
// stream cleanly. Any other read or write error aborts the relay.
package relay
