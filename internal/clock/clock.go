// Package clock supplies the host's time source: a monotonic clock
// reading. It is trivial, but kept as a named, swappable type so tests can
// inject a fake clock to drive synthetic traces.
package clock

import (
	"time"

	"golang.org/x/sys/unix"
)

// Monotonic reads CLOCK_MONOTONIC directly via golang.org/x/sys/unix,
// mirroring get_clock()/trace_clock_local() in the original source: a
// single, host-wide monotonic timeline, read locally on whichever CPU the
// caller happens to be running on.
type Monotonic struct{}

// Now returns the current monotonic time in nanoseconds.
func (Monotonic) Now() uint64 {
	var ts unix.Timespec
	if err := unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts); err != nil {
		// CLOCK_MONOTONIC is always available on Linux; fall back to the
		// wall clock's nanoseconds rather than propagate an error into a
		// hot-path primitive that must never fail.
		return uint64(time.Now().UnixNano())
	}
	return uint64(ts.Nano())
}

var _ interface{ Now() uint64 } = Monotonic{}
