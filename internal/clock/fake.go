package clock

// Fake is a manually-advanced clock used to drive synthetic event traces
// deterministically in tests.
type Fake struct {
	now uint64
}

// NewFake returns a Fake clock starting at the given nanosecond timestamp.
func NewFake(start uint64) *Fake {
	return &Fake{now: start}
}

// Now returns the current fake timestamp.
func (f *Fake) Now() uint64 { return f.now }

// Set jumps the fake clock directly to t, the way a test drives it to the
// timestamp of the next event in a synthetic trace.
func (f *Fake) Set(t uint64) { f.now = t }

// Advance moves the fake clock forward by d nanoseconds and returns the
// new value.
func (f *Fake) Advance(d uint64) uint64 {
	f.now += d
	return f.now
}
