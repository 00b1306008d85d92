// Package monotonic provides a process-wide clock whose wall time can be
// corrected by an offset learned once from NTP.
//
// Clock.Now keeps Go's monotonic reading, so durations measured between two
// Now calls are immune to wall clock jumps. The wall component is what ends
// up in each session nonce's timestamp half.
//
//	clock := monotonic.NewClock()
//	clock.SetOffset(offset)
//	handshake.Initiate(conn, handshake.WithClock(clock.Now))
package monotonic
