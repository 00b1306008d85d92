// Package session composes transport, handshake, keystream and relay into a
// single Session for each role.
//
// A Session owns every resource it creates. When Run returns, whether
// normally or with an error, the session key is wiped, the connection is
// closed and any subprocess it started is stopped. Nothing carries over to
// the next Session.
package session
