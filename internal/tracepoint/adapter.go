// Package tracepoint is the host-side realization of rtsl.ProbeRegistry:
// registering a probe name attaches the kernel tracepoint it names
// (registering a name that is already attached is an error), and a
// background reader dispatches
// every event it produces into an *rtsl.Controller.
package tracepoint

// eventKind discriminates the wire events emitted by bpf/rtsl.c; the
// values below must stay in sync with the EVT_* constants there.
type eventKind uint32

const (
	evtIRQDisable     eventKind = 1
	evtIRQEnable      eventKind = 2
	evtPreemptDisable eventKind = 3
	evtPreemptEnable  eventKind = 4
	evtNMIEntry       eventKind = 5
	evtNMIExit        eventKind = 6
	evtIRQVector      eventKind = 7
)

// rtslEvent mirrors bpf/rtsl.c's struct rtsl_event_t byte for byte.
type rtslEvent struct {
	Kind   uint32
	CPU    uint32
	Vector int32
	Flag   uint32
}

// dispatch routes one decoded event into the controller, the same switch
// every adapter (real or fake) must implement identically.
func dispatch(ctrl controller, e rtslEvent) {
	cpu := int(e.CPU)
	switch eventKind(e.Kind) {
	case evtIRQDisable:
		ctrl.IRQDisable(cpu, e.Flag != 0)
	case evtIRQEnable:
		ctrl.IRQEnable(cpu, e.Flag != 0)
	case evtPreemptDisable:
		ctrl.PreemptDisable(cpu, e.Flag != 0)
	case evtPreemptEnable:
		ctrl.PreemptEnable(cpu, e.Flag != 0)
	case evtNMIEntry:
		ctrl.NMIEntry(cpu)
	case evtNMIExit:
		ctrl.NMIExit(cpu)
	case evtIRQVector:
		ctrl.IRQVectorEntry(cpu, e.Vector)
	}
}

// controller is the subset of *rtsl.Controller the dispatcher drives;
// declared locally so this package doesn't need to import rtsl just to
// name the methods (and so this package's tests can use a lighter double).
type controller interface {
	IRQDisable(cpu int, entry bool)
	IRQEnable(cpu int, exit bool)
	PreemptDisable(cpu int, toSchedule bool)
	PreemptEnable(cpu int, toSchedule bool)
	NMIEntry(cpu int)
	NMIExit(cpu int)
	IRQVectorEntry(cpu int, vector int32)
}
