package rtsl

// setStart writes start with a clock reading that is guaranteed consistent
// with the int_counter retry protocol: if an interrupt mutates *start
// concurrently with the read, int_counter will have moved and the read is
// retried.
//
//	Read c0 <- int_counter; barrier; t <- now(); barrier; if c0 != int_counter repeat
func (s *cpuState) setStart(clk Clock, start *Timestamp) {
	for {
		c0 := s.intCounter.Load()
		t := clk.Now()
		if c0 == s.intCounter.Load() {
			*start = t
			return
		}
	}
}

// closeWindow reads now() and *start under the same retry protocol, zeroes
// *start and returns the elapsed duration. A negative raw duration is only
// possible under a genuine race the retry loop failed to observe (e.g. a
// non-monotonic clock); it is reported through obs (which may be nil in
// production builds), clamped to 0, and never propagated as a record.
func (s *cpuState) closeWindow(clk Clock, start *Timestamp, cpu int, window string, obs NegativeDurationObserver) Duration {
	var now, at Timestamp
	for {
		c0 := s.intCounter.Load()
		now = clk.Now()
		at = *start
		if c0 == s.intCounter.Load() {
			break
		}
	}

	*start = 0

	raw := int64(now) - int64(at)
	if raw < 0 {
		if obs != nil {
			obs.ObserveNegativeDuration(cpu, window, raw)
		}
		return 0
	}
	return Duration(raw)
}
