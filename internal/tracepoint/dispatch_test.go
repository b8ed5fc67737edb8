package tracepoint

import "testing"

type call struct {
	method string
	cpu    int
	arg    int32
	flag   bool
}

type recordingController struct {
	calls []call
}

func (r *recordingController) IRQDisable(cpu int, entry bool) {
	r.calls = append(r.calls, call{"IRQDisable", cpu, 0, entry})
}

func (r *recordingController) IRQEnable(cpu int, exit bool) {
	r.calls = append(r.calls, call{"IRQEnable", cpu, 0, exit})
}

func (r *recordingController) PreemptDisable(cpu int, toSchedule bool) {
	r.calls = append(r.calls, call{"PreemptDisable", cpu, 0, toSchedule})
}

func (r *recordingController) PreemptEnable(cpu int, toSchedule bool) {
	r.calls = append(r.calls, call{"PreemptEnable", cpu, 0, toSchedule})
}

func (r *recordingController) NMIEntry(cpu int) {
	r.calls = append(r.calls, call{"NMIEntry", cpu, 0, false})
}

func (r *recordingController) NMIExit(cpu int) {
	r.calls = append(r.calls, call{"NMIExit", cpu, 0, false})
}

func (r *recordingController) IRQVectorEntry(cpu int, vector int32) {
	r.calls = append(r.calls, call{"IRQVectorEntry", cpu, vector, false})
}

func TestDispatchRoutesEveryEventKind(t *testing.T) {
	rec := &recordingController{}

	events := []rtslEvent{
		{Kind: uint32(evtIRQDisable), CPU: 1, Flag: 1},
		{Kind: uint32(evtIRQEnable), CPU: 1, Flag: 0},
		{Kind: uint32(evtPreemptDisable), CPU: 2, Flag: 1},
		{Kind: uint32(evtPreemptEnable), CPU: 2, Flag: 0},
		{Kind: uint32(evtNMIEntry), CPU: 3},
		{Kind: uint32(evtNMIExit), CPU: 3},
		{Kind: uint32(evtIRQVector), CPU: 0, Vector: 236},
	}
	for _, e := range events {
		dispatch(rec, e)
	}

	want := []call{
		{"IRQDisable", 1, 0, true},
		{"IRQEnable", 1, 0, false},
		{"PreemptDisable", 2, 0, true},
		{"PreemptEnable", 2, 0, false},
		{"NMIEntry", 3, 0, false},
		{"NMIExit", 3, 0, false},
		{"IRQVectorEntry", 0, 236, false},
	}
	if len(rec.calls) != len(want) {
		t.Fatalf("got %d calls, want %d: %+v", len(rec.calls), len(want), rec.calls)
	}
	for i, c := range rec.calls {
		if c != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, c, want[i])
		}
	}
}

func TestDispatchUnknownKindIsIgnored(t *testing.T) {
	rec := &recordingController{}
	dispatch(rec, rtslEvent{Kind: 99, CPU: 0})
	if len(rec.calls) != 0 {
		t.Fatalf("expected no calls for unknown kind, got %+v", rec.calls)
	}
}

func TestFakeRegisterUnregister(t *testing.T) {
	f := NewFake(&recordingController{})

	if f.Registered("irq_disable") {
		t.Fatal("probe should not be registered yet")
	}
	if err := f.RegisterProbe("irq_disable"); err != nil {
		t.Fatalf("RegisterProbe: %v", err)
	}
	if !f.Registered("irq_disable") {
		t.Fatal("probe should be registered")
	}

	f.UnregisterProbe("irq_disable")
	if f.Registered("irq_disable") {
		t.Fatal("probe should have been unregistered")
	}
}

func TestFakeInjectDrivesController(t *testing.T) {
	rec := &recordingController{}
	f := NewFake(rec)

	f.Inject(rtslEvent{Kind: uint32(evtPreemptDisable), CPU: 4, Flag: 1})

	if len(rec.calls) != 1 || rec.calls[0] != (call{"PreemptDisable", 4, 0, true}) {
		t.Fatalf("unexpected calls: %+v", rec.calls)
	}
}
