// Package process manages the external programs at either end of the tunnel:
// a capture command whose stdout is the originator's byte source, and an
// optional player whose stdin is the listener's byte sink.
//
// Every started process is registered with util.RegisterCloser so a shutdown
// signal can stop it even if its Session is still blocked.
package process
