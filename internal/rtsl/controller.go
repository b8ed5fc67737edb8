package rtsl

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// VectorMode selects which of the two mutually exclusive IRQ-entry probes
// is bound: a per-vector APIC entry list, or a single generic
// irq_handler_entry. This is the "platform-specific switch" the original
// source resolves with a build-time #ifdef; here it is a constructor
// argument, so the vector table stays data instead of being hard-coded
// into the dispatcher.
type VectorMode int

const (
	// VectorModePerVector binds one probe per APIC vector plus
	// external_interrupt_entry.
	VectorModePerVector VectorMode = iota
	// VectorModeGeneric binds the single generic irq_handler_entry probe.
	VectorModeGeneric
)

// Controller owns every CPU's state and the enable/disable lifecycle.
// It is the single entry point the tracepoint adapter dispatches into.
type Controller struct {
	cpus []cpuState

	clock    Clock
	host     HostQuery
	sink     Sink
	registry ProbeRegistry
	debug    NegativeDurationObserver

	vectorMode  VectorMode
	vectorNames []string

	enabled atomic.Bool
	mu      sync.Mutex // serializes enable/disable; never held across a handler
}

// New builds a Controller for numCPU CPUs: online-CPU iteration is
// resolved by the caller into a count, since CPUs can come and go but the
// state slice is allocated once at construction in this userspace port.
// vectors selects the subset of VectorNames to bind; nil/empty means all
// of them.
func New(numCPU int, clock Clock, host HostQuery, sink Sink, registry ProbeRegistry, mode VectorMode, vectors []string) *Controller {
	return &Controller{
		cpus:        make([]cpuState, numCPU),
		clock:       clock,
		host:        host,
		sink:        sink,
		registry:    registry,
		vectorMode:  mode,
		vectorNames: FilterVectorNames(vectors),
	}
}

// SetDebugObserver installs the optional negative-duration diagnostic.
// Passing nil (the default) disables the check at zero cost.
func (c *Controller) SetDebugObserver(obs NegativeDurationObserver) {
	c.debug = obs
}

// NumCPU returns the number of CPUs this controller tracks.
func (c *Controller) NumCPU() int { return len(c.cpus) }

// Enabled reports the global enable flag with a relaxed atomic read, as
// used on every hot-path handler.
func (c *Controller) Enabled() bool { return c.enabled.Load() }

func (c *Controller) state(cpu int) *cpuState {
	return &c.cpus[cpu]
}

// Enable zeroes every CPU's state and registers every probe in the set.
// If any probe registration fails, every probe registered so far is
// rolled back and enabled stays false.
func (c *Controller) Enable() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.cpus {
		c.cpus[i].reset()
	}

	names := c.probeNames()
	registered := make([]string, 0, len(names))
	for _, name := range names {
		if err := c.registry.RegisterProbe(name); err != nil {
			for _, r := range registered {
				c.registry.UnregisterProbe(r)
			}
			return fmt.Errorf("rtsl: register tracepoint %q: %w", name, err)
		}
		registered = append(registered, name)
	}

	c.enabled.Store(true)
	return nil
}

// Disable clears the global enable flag, stops every CPU from tracking,
// unregisters every probe, and zeroes state.
func (c *Controller) Disable() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.enabled.Store(false)
	for i := range c.cpus {
		c.cpus[i].running = false
	}

	for _, name := range c.probeNames() {
		c.registry.UnregisterProbe(name)
	}

	for i := range c.cpus {
		c.cpus[i].reset()
	}
}

// probeNames is the concrete probe set, expressed as data.
func (c *Controller) probeNames() []string {
	names := []string{
		"nmi_entry",
		"nmi_exit",
		"irq_disable",
		"irq_enable",
		"preempt_disable",
		"preempt_enable",
	}
	switch c.vectorMode {
	case VectorModeGeneric:
		names = append(names, "irq_handler_entry")
	default:
		names = append(names, c.vectorNames...)
		names = append(names, "external_interrupt_entry")
	}

	return names
}

// initialCondition implements the gate: running flips true only inside
// the schedule-path preempt-disable handler, only once enabled is true and
// interrupts are currently enabled on this CPU.
func (c *Controller) initialCondition(cpu int, s *cpuState) bool {
	if s.running {
		return true
	}
	if !c.enabled.Load() {
		return false
	}
	if c.host.IRQsDisabled(cpu) {
		return false
	}
	s.running = true
	return true
}
