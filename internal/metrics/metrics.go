// Package metrics decouples the scraper from any particular metrics vendor.
//
// The scraper records one observation per HTTP request through the package
// functions; a process wires a concrete backend (see the datadog subpackage)
// at startup via SetBackend. Without a backend, recording is a no-op, so
// library code never needs to check whether metrics are configured.
package metrics

import (
	"sync/atomic"
	"time"
)

// Backend receives raw observations and ships them somewhere.
//
// Implementations must be safe for concurrent use and should buffer
// internally; RecordHTTP is called on the request path.
type Backend interface {
	RecordHTTP(job string, status int, err error, dur time.Duration, bytes int64)
	Flush() error
}

// nopBackend drops everything. It is the default.
type nopBackend struct{}

func (nopBackend) RecordHTTP(string, int, error, time.Duration, int64) {}
func (nopBackend) Flush() error                                        { return nil }

// boxed wraps the installed backend so every Store on the atomic.Value
// carries the same concrete type regardless of the backend's own type.
type boxed struct {
	b Backend
}

var current atomic.Value // boxed

func init() {
	current.Store(boxed{nopBackend{}})
}

// SetBackend installs b as the process-wide backend. Passing nil restores
// the no-op backend.
func SetBackend(b Backend) {
	if b == nil {
		b = nopBackend{}
	}
	current.Store(boxed{b})
}

// RecordHTTP records one HTTP request outcome: its status (0 when the request
// never completed), error if any, total duration, and decoded body size.
func RecordHTTP(job string, status int, err error, dur time.Duration, bytes int64) {
	current.Load().(boxed).b.RecordHTTP(job, status, err, dur, bytes)
}

// Flush asks the installed backend to submit anything buffered.
func Flush() error {
	return current.Load().(boxed).b.Flush()
}
