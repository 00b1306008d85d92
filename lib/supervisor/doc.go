// Package supervisor runs one Session after another until its context is
// cancelled.
//
// The supervisor has two states. It is Active while a Session runs and Idle
// otherwise. Every Session outcome, success or failure, leads to a fixed
// backoff and another attempt; there is no retry cap and no error
// classification.
package supervisor
