// Package sntp measures the local clock's offset from one or more NTP
// servers.
//
// The tunnel queries once at startup. Devices without a real-time clock can
// boot with a wall time far in the past; correcting it keeps the timestamp in
// each session nonce meaningful.
package sntp
