//go:build linux

package tracepoint

//go:generate clang -O2 -g -target bpf -D__TARGET_ARCH_x86 -I./bpf/headers -c bpf/rtsl.c -o bpf/rtsl_bpfel.o

import (
	"fmt"
	"os"

	"github.com/cilium/ebpf"
)

// bpfObjects mirrors the program/map accessors bpf2go would generate from
// bpf/rtsl.c. Unlike bpf2go's usual output this build doesn't embed the
// compiled object (doing so needs the clang invocation above to have run);
// loadBpf instead reads it from disk, the same object the go:generate
// directive produces, shipped alongside the rtsl binary at install time.
type bpfObjects struct {
	TraceIrqDisable      *ebpf.Program `ebpf:"trace_irq_disable"`
	TraceIrqEnable       *ebpf.Program `ebpf:"trace_irq_enable"`
	TracePreemptDisable  *ebpf.Program `ebpf:"trace_preempt_disable"`
	TracePreemptEnable   *ebpf.Program `ebpf:"trace_preempt_enable"`
	TraceNmiEntry        *ebpf.Program `ebpf:"trace_nmi_entry"`
	TraceNmiExit         *ebpf.Program `ebpf:"trace_nmi_exit"`
	TraceIrqHandlerEntry *ebpf.Program `ebpf:"trace_irq_handler_entry"`
	TraceLocalTimerEntry *ebpf.Program `ebpf:"trace_local_timer_entry"`

	Events    *ebpf.Map `ebpf:"events"`
	HostState *ebpf.Map `ebpf:"host_state"`
}

func (o *bpfObjects) Close() error {
	progs := []*ebpf.Program{
		o.TraceIrqDisable, o.TraceIrqEnable, o.TracePreemptDisable, o.TracePreemptEnable,
		o.TraceNmiEntry, o.TraceNmiExit, o.TraceIrqHandlerEntry, o.TraceLocalTimerEntry,
	}
	for _, p := range progs {
		if p != nil {
			p.Close()
		}
	}
	if o.Events != nil {
		o.Events.Close()
	}
	if o.HostState != nil {
		o.HostState.Close()
	}
	return nil
}

// bpfObjectPath locates the compiled rtsl BPF object: RTSL_BPF_OBJECT if
// set, otherwise the conventional install path next to the binary.
func bpfObjectPath() string {
	if p := os.Getenv("RTSL_BPF_OBJECT"); p != "" {
		return p
	}
	return "/usr/lib/rtsl/rtsl_bpfel.o"
}

func loadBpf() (*ebpf.CollectionSpec, error) {
	spec, err := ebpf.LoadCollectionSpec(bpfObjectPath())
	if err != nil {
		return nil, fmt.Errorf("load rtsl bpf object from %s: %w", bpfObjectPath(), err)
	}
	return spec, nil
}
