// Package transport carries a tunnel session over a raw TCP connection.
//
// The listener side binds, accepts exactly one connection and releases the
// listening socket, so a second peer cannot connect while a session is
// active. The originator side dials. Both sides disable Nagle's algorithm
// because the payload is a live stream and coalescing delay shows up as
// latency.
//
// Connections returned here are tied to a context: cancelling it closes the
// socket, which unblocks any read or write in progress. There are no I/O
// deadlines; a stalled peer stalls the session until the context ends or
// the peer goes away.
//
// The package also defines the error taxonomy shared by the handshake and
// relay layers: ProtocolError for malformed peer input and TransportError
// for I/O failures.
package transport
