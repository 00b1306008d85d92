// Package commands implements the streamtunnel command line: listen runs the
// receiving supervisor, send runs the capturing supervisor and config show
// prints the effective configuration.
package commands
