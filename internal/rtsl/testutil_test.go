package rtsl

import "github.com/bristot/linux-rt-rtsl/internal/clock"

// record is one emitted trace record, captured for assertions.
type record struct {
	kind     string
	cpu      int
	duration Duration
	vector   Vector
	arrival  Timestamp
	start    Timestamp
}

type fakeSink struct {
	records []record
}

func (f *fakeSink) POID(cpu int, d Duration) { f.records = append(f.records, record{kind: "poid", cpu: cpu, duration: d}) }
func (f *fakeSink) MaxPOID(cpu int, d Duration) {
	f.records = append(f.records, record{kind: "max_poid", cpu: cpu, duration: d})
}
func (f *fakeSink) PAIE(cpu int, d Duration) { f.records = append(f.records, record{kind: "paie", cpu: cpu, duration: d}) }
func (f *fakeSink) MaxPAIE(cpu int, d Duration) {
	f.records = append(f.records, record{kind: "max_paie", cpu: cpu, duration: d})
}
func (f *fakeSink) PSD(cpu int, d Duration) { f.records = append(f.records, record{kind: "psd", cpu: cpu, duration: d}) }
func (f *fakeSink) MaxPSD(cpu int, d Duration) {
	f.records = append(f.records, record{kind: "max_psd", cpu: cpu, duration: d})
}
func (f *fakeSink) DST(cpu int, d Duration) { f.records = append(f.records, record{kind: "dst", cpu: cpu, duration: d}) }
func (f *fakeSink) MaxDST(cpu int, d Duration) {
	f.records = append(f.records, record{kind: "max_dst", cpu: cpu, duration: d})
}
func (f *fakeSink) IRQExecution(cpu int, vector Vector, arrival Timestamp, d Duration) {
	f.records = append(f.records, record{kind: "irq_execution", cpu: cpu, vector: vector, arrival: arrival, duration: d})
}
func (f *fakeSink) NMIExecution(cpu int, start Timestamp, d Duration) {
	f.records = append(f.records, record{kind: "nmi_execution", cpu: cpu, start: start, duration: d})
}

func (f *fakeSink) of(kind string) []record {
	var out []record
	for _, r := range f.records {
		if r.kind == kind {
			out = append(out, r)
		}
	}
	return out
}

type fakeHost struct {
	current      map[int]TaskID
	needResched  map[int]bool
	irqsDisabled map[int]bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		current:      map[int]TaskID{},
		needResched:  map[int]bool{},
		irqsDisabled: map[int]bool{},
	}
}

func (f *fakeHost) CurrentTask(cpu int) TaskID { return f.current[cpu] }
func (f *fakeHost) NeedResched(cpu int) bool   { return f.needResched[cpu] }
func (f *fakeHost) IRQsDisabled(cpu int) bool  { return f.irqsDisabled[cpu] }

type fakeRegistry struct {
	registered map[string]bool
	failOn     string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{registered: map[string]bool{}}
}

func (f *fakeRegistry) RegisterProbe(name string) error {
	if name == f.failOn {
		return errTestRegisterFailed
	}
	f.registered[name] = true
	return nil
}

func (f *fakeRegistry) UnregisterProbe(name string) {
	delete(f.registered, name)
}

type negativeObserver struct {
	calls []string
}

func (o *negativeObserver) ObserveNegativeDuration(cpu int, window string, raw int64) {
	o.calls = append(o.calls, window)
}

var errTestRegisterFailed = testErr("register failed")

type testErr string

func (e testErr) Error() string { return string(e) }

// newTestController wires a Controller with a fake clock/host/sink/registry
// for the scenario and property tests below.
func newTestController(numCPU int, clk *clock.Fake, host *fakeHost, sink *fakeSink, reg *fakeRegistry) *Controller {
	return New(numCPU, clk, host, sink, reg, VectorModeGeneric, nil)
}
