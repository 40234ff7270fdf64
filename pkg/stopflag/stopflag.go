package stopflag

import "sync/atomic"

// Flag is a cooperative stop signal shared between the caller's control
// goroutine and the pipeline goroutine. Setting it is idempotent; it is
// observed at stage boundaries and at every streamed chunk boundary.
type Flag struct {
	stopped atomic.Bool
}

// New creates an unset Flag.
func New() *Flag {
	return &Flag{}
}

// Set requests a stop. Safe to call from any goroutine, any number of times.
func (f *Flag) Set() {
	f.stopped.Store(true)
}

// Stopped reports whether a stop has been requested.
func (f *Flag) Stopped() bool {
	if f == nil {
		return false
	}
	return f.stopped.Load()
}
