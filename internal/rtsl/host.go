package rtsl

// Clock is the host-provided per-CPU monotonic clock. Now must return a
// value consistent with nanosecond subtraction between two calls on the
// same CPU.
type Clock interface {
	Now() Timestamp
}

// HostQuery exposes the scheduler facts a handler needs to read live, at
// dispatch time, rather than have pushed to it as an event argument:
// current-task query, pending-reschedule query, interrupts-disabled query.
type HostQuery interface {
	// CurrentTask returns the task currently running on cpu.
	CurrentTask(cpu int) TaskID
	// NeedResched reports whether a reschedule is pending on cpu.
	NeedResched(cpu int) bool
	// IRQsDisabled reports whether interrupts are currently masked on cpu.
	IRQsDisabled(cpu int) bool
}

// Sink is the host trace sink: one-way, fire-and-forget record emission.
// Implementations must not block or allocate in a way that would make a
// handler reentrant into the tracer.
type Sink interface {
	POID(cpu int, d Duration)
	MaxPOID(cpu int, d Duration)
	PAIE(cpu int, d Duration)
	MaxPAIE(cpu int, d Duration)
	PSD(cpu int, d Duration)
	MaxPSD(cpu int, d Duration)
	DST(cpu int, d Duration)
	MaxDST(cpu int, d Duration)
	IRQExecution(cpu int, vector Vector, arrival Timestamp, d Duration)
	NMIExecution(cpu int, start Timestamp, d Duration)
}

// ProbeRegistry is the host tracepoint registry: register/unregister a
// named probe. The core treats probe names as opaque data; it never
// hard-codes what a name maps to on the host side.
type ProbeRegistry interface {
	RegisterProbe(name string) error
	UnregisterProbe(name string)
}

// NegativeDurationObserver is invoked when the interference-safe duration
// primitive computes an impossible negative duration: a debug-only
// diagnostic that triggers a stack dump but is not propagated into a
// record.
type NegativeDurationObserver interface {
	ObserveNegativeDuration(cpu int, window string, raw int64)
}
