// Package rtsl implements the per-CPU scheduling-latency decomposition
// state machine: POID, PAIE, PSD and DST windows, with IRQ/NMI interference
// compensation, as described by Bristot et al., "Demystifying the
// Real-Time Linux Scheduling Latency" (ECRTS 2020).
package rtsl

// TaskID identifies the task running on a CPU, matching a kernel pid_t.
// IdleTask is the sentinel used to filter idle-task windows out of the
// emitted trace.
type TaskID int32

// IdleTask is the pid of the idle task on every CPU.
const IdleTask TaskID = 0

// Timestamp is a monotonic, nanosecond-resolution reading from the host's
// per-CPU clock.
type Timestamp = uint64

// Duration is a window length in nanoseconds.
type Duration = uint64

// Vector identifies the interrupt vector or IRQ number that most recently
// entered on a CPU.
type Vector = int32
