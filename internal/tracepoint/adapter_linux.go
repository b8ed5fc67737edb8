//go:build linux

package tracepoint

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cilium/ebpf"
	"github.com/cilium/ebpf/link"
	"github.com/cilium/ebpf/ringbuf"
	"github.com/cilium/ebpf/rlimit"
	log "github.com/sirupsen/logrus"

	"github.com/bristot/linux-rt-rtsl/internal/rtsl"
)

// probeSpec is the static mapping from a probe name (as named in
// rtsl.Controller.probeNames) to the tracepoint category/name and BPF
// program bpf2go generates for it.
type probeSpec struct {
	category string
	name     string
	program  func(*bpfObjects) *ebpf.Program
}

var probeSpecs = map[string]probeSpec{
	"irq_disable":       {"rtsl", "irq_disable", func(o *bpfObjects) *ebpf.Program { return o.TraceIrqDisable }},
	"irq_enable":        {"rtsl", "irq_enable", func(o *bpfObjects) *ebpf.Program { return o.TraceIrqEnable }},
	"preempt_disable":   {"rtsl", "preempt_disable", func(o *bpfObjects) *ebpf.Program { return o.TracePreemptDisable }},
	"preempt_enable":    {"rtsl", "preempt_enable", func(o *bpfObjects) *ebpf.Program { return o.TracePreemptEnable }},
	"nmi_entry":         {"nmi", "nmi_entry", func(o *bpfObjects) *ebpf.Program { return o.TraceNmiEntry }},
	"nmi_exit":          {"nmi", "nmi_exit", func(o *bpfObjects) *ebpf.Program { return o.TraceNmiExit }},
	"irq_handler_entry": {"irq", "irq_handler_entry", func(o *bpfObjects) *ebpf.Program { return o.TraceIrqHandlerEntry }},
}

func init() {
	for _, name := range []string{
		"local_timer_entry", "thermal_apic_entry", "deferred_error_apic_entry",
		"threshold_apic_entry", "call_function_single_entry", "call_function_entry",
		"reschedule_entry", "irq_work_entry", "x86_platform_ipi_entry",
		"error_apic_entry", "spurious_apic_entry", "external_interrupt_entry",
	} {
		name := name
		probeSpecs[name] = probeSpec{"irq_vectors", name, func(o *bpfObjects) *ebpf.Program { return o.TraceLocalTimerEntry }}
	}
}

// Adapter attaches rtsl.Controller to the host's real tracepoints via
// cilium/ebpf, implementing rtsl.ProbeRegistry.
type Adapter struct {
	ctrl controller

	lock   sync.Mutex
	objs   bpfObjects
	links  map[string]link.Link
	reader *ringbuf.Reader
	loaded bool
}

// New returns an Adapter dispatching every decoded event into ctrl. ctrl
// may be nil and supplied later with SetController, since the Controller
// this Adapter drives is itself constructed with the Adapter as its
// ProbeRegistry and HostQuery.
func New(ctrl controller) *Adapter {
	return &Adapter{ctrl: ctrl, links: make(map[string]link.Link)}
}

// SetController attaches the controller events are dispatched into. Must
// be called before RegisterProbe.
func (a *Adapter) SetController(ctrl controller) {
	a.lock.Lock()
	defer a.lock.Unlock()
	a.ctrl = ctrl
}

func (a *Adapter) RegisterProbe(name string) error {
	a.lock.Lock()
	defer a.lock.Unlock()

	spec, ok := probeSpecs[name]
	if !ok {
		return fmt.Errorf("tracepoint: no mapping for probe %q", name)
	}
	if _, ok := a.links[name]; ok {
		return fmt.Errorf("tracepoint: probe %q already registered", name)
	}

	if !a.loaded {
		if err := a.load(); err != nil {
			return err
		}
		a.loaded = true
	}

	l, err := link.Tracepoint(spec.category, spec.name, spec.program(&a.objs), nil)
	if err != nil {
		if a.totalLinksLocked() == 0 {
			a.cleanupLocked()
		}
		return fmt.Errorf("tracepoint: attach %s:%s: %w", spec.category, spec.name, err)
	}
	a.links[name] = l
	return nil
}

func (a *Adapter) UnregisterProbe(name string) {
	a.lock.Lock()
	defer a.lock.Unlock()

	if l, ok := a.links[name]; ok {
		l.Close()
		delete(a.links, name)
	}
	if a.totalLinksLocked() == 0 {
		a.cleanupLocked()
	}
}

func (a *Adapter) totalLinksLocked() int { return len(a.links) }

// hostState mirrors bpf/rtsl.c's struct host_state_t.
type hostState struct {
	PID          uint32
	NeedResched  uint32
	IRQsDisabled uint32
}

// lookupHostState reads the per-CPU host_state snapshot the BPF programs
// keep current, implementing rtsl.HostQuery as a map lookup instead of a
// live kernel call.
func (a *Adapter) lookupHostState(cpu int) (hostState, bool) {
	a.lock.Lock()
	loaded := a.loaded
	m := a.objs.HostState
	a.lock.Unlock()
	if !loaded {
		return hostState{}, false
	}

	var perCPU []hostState
	if err := m.Lookup(uint32(0), &perCPU); err != nil {
		log.Warnf("rtsl host_state lookup: %v", err)
		return hostState{}, false
	}
	if cpu < 0 || cpu >= len(perCPU) {
		return hostState{}, false
	}
	return perCPU[cpu], true
}

// CurrentTask implements rtsl.HostQuery.
func (a *Adapter) CurrentTask(cpu int) rtsl.TaskID {
	hs, ok := a.lookupHostState(cpu)
	if !ok {
		return rtsl.IdleTask
	}
	return rtsl.TaskID(hs.PID)
}

// NeedResched implements rtsl.HostQuery.
func (a *Adapter) NeedResched(cpu int) bool {
	hs, ok := a.lookupHostState(cpu)
	return ok && hs.NeedResched != 0
}

// IRQsDisabled implements rtsl.HostQuery.
func (a *Adapter) IRQsDisabled(cpu int) bool {
	hs, ok := a.lookupHostState(cpu)
	return ok && hs.IRQsDisabled != 0
}

func (a *Adapter) load() error {
	if err := rlimit.RemoveMemlock(); err != nil {
		return fmt.Errorf("tracepoint: remove memlock rlimit: %w", err)
	}

	spec, err := loadBpf()
	if err != nil {
		return fmt.Errorf("tracepoint: load collection spec: %w", err)
	}

	opts := ebpf.CollectionOptions{
		Programs: ebpf.ProgramOptions{KernelTypes: loadBTFSpecOrNil()},
	}
	if err := spec.LoadAndAssign(&a.objs, &opts); err != nil {
		return fmt.Errorf("tracepoint: load and assign: %w", err)
	}

	reader, err := ringbuf.NewReader(a.objs.Events)
	if err != nil {
		a.objs.Close()
		return fmt.Errorf("tracepoint: new ringbuf reader: %w", err)
	}
	a.reader = reader

	go a.readLoop()
	return nil
}

func (a *Adapter) cleanupLocked() {
	if a.reader != nil {
		a.reader.Close()
		a.reader = nil
	}
	a.objs.Close()
	a.loaded = false
}

func (a *Adapter) readLoop() {
	for {
		record, err := a.reader.Read()
		if err != nil {
			if errors.Is(err, ringbuf.ErrClosed) {
				return
			}
			log.Warnf("rtsl tracepoint reader: %v", err)
			continue
		}

		var e rtslEvent
		if err := binary.Read(bytes.NewReader(record.RawSample), binary.LittleEndian, &e); err != nil {
			log.Errorf("rtsl tracepoint decode event: %v", err)
			continue
		}

		a.lock.Lock()
		ctrl := a.ctrl
		a.lock.Unlock()
		if ctrl != nil {
			dispatch(ctrl, e)
		}
	}
}
