package rtsl

// This file implements the event handlers dispatched from the hooked
// tracepoints. Each exported method corresponds to one probe name in
// Controller.probeNames(); the tracepoint adapter (internal/tracepoint)
// is the only caller.

// IRQDisable handles the irq_disable tracepoint. entry distinguishes
// the IRQ-vector-dispatch sub-case from the thread sub-case.
func (c *Controller) IRQDisable(cpu int, entry bool) {
	s := c.state(cpu)
	if !s.running {
		return
	}

	if entry {
		c.irqDisableEntry(cpu, s)
	} else {
		c.irqDisableNormal(cpu, s)
	}
}

func (c *Controller) irqDisableEntry(cpu int, s *cpuState) {
	if s.psd.isOpen() {
		s.irq.wasPSD = true
	}

	// Reporting only: an unsynchronized read is acceptable here.
	s.irq.arrivalTime = c.clock.Now()

	s.setStart(c.clock, &s.irq.start)
}

func (c *Controller) irqDisableNormal(cpu int, s *cpuState) {
	if s.psd.isOpen() && s.dst.pid == c.host.CurrentTask(cpu) {
		s.setStart(c.clock, &s.dst.start)
	}

	s.poid.id = true
	if s.poid.isOpen() {
		return
	}
	s.setStart(c.clock, &s.poid.start)
}

// IRQEnable handles the irq_enable tracepoint.
func (c *Controller) IRQEnable(cpu int, exit bool) {
	s := c.state(cpu)
	if !s.running {
		return
	}

	if exit {
		c.irqEnableExit(cpu, s)
	} else {
		c.irqEnableNormal(cpu, s)
	}
}

func (c *Controller) irqEnableExit(cpu int, s *cpuState) {
	d := s.closeWindow(c.clock, &s.irq.start, cpu, "irq", c.debug)
	c.sink.IRQExecution(cpu, s.irq.vector, s.irq.arrivalTime, d)

	if s.poid.isOpen() {
		s.poid.start += d
	}
	if s.dst.isOpen() {
		s.dst.start += d
	}
	if s.paie.isOpen() {
		s.paie.start += d
	}
	if s.irq.wasPSD {
		s.psd.start += d
	}

	s.irq.vector = 0
	s.irq.wasPSD = false
}

func (c *Controller) irqEnableNormal(cpu int, s *cpuState) {
	s.poid.id = false

	// POID continues if preemption is still disabled; it is superseded,
	// not ended, if PSD is open.
	if s.poid.pd || s.psd.isOpen() {
		return
	}

	c.closePOID(cpu, s)

	if c.host.NeedResched(cpu) {
		s.setStart(c.clock, &s.paie.start)
	}
}

// closePOID closes the open POID window if any, applies the idle filter,
// and maintains the running max.
func (c *Controller) closePOID(cpu int, s *cpuState) {
	if !s.poid.isOpen() {
		return
	}

	d := s.closeWindow(c.clock, &s.poid.start, cpu, "poid", c.debug)

	if c.host.CurrentTask(cpu) == IdleTask {
		return
	}

	c.sink.POID(cpu, d)
	if d >= s.poid.max {
		c.sink.MaxPOID(cpu, d)
		s.poid.max = d
	}
}

// closePAIE closes the open PAIE window if any and maintains the running max.
func (c *Controller) closePAIE(cpu int, s *cpuState) {
	if !s.paie.isOpen() {
		return
	}

	d := s.closeWindow(c.clock, &s.paie.start, cpu, "paie", c.debug)

	if c.host.CurrentTask(cpu) == IdleTask {
		return
	}

	c.sink.PAIE(cpu, d)
	if d >= s.paie.max {
		c.sink.MaxPAIE(cpu, d)
		s.paie.max = d
	}
}

// PreemptDisable handles the preempt_disable tracepoint. toSchedule
// distinguishes the scheduler sub-case from the ordinary one.
func (c *Controller) PreemptDisable(cpu int, toSchedule bool) {
	if toSchedule {
		c.preemptDisableSched(cpu)
	} else {
		c.preemptDisableNosched(cpu)
	}
}

func (c *Controller) preemptDisableNosched(cpu int) {
	s := c.state(cpu)
	if !s.running {
		return
	}

	// Disabling preemption inside an IRQ is interference, not POID.
	if s.irq.isOpen() {
		return
	}

	s.poid.pd = true
	if s.poid.id {
		return
	}
	s.setStart(c.clock, &s.poid.start)
}

func (c *Controller) preemptDisableSched(cpu int) {
	s := c.state(cpu)
	if !c.initialCondition(cpu, s) {
		return
	}

	// PAIE is only valid if the scheduler was entered with interrupts
	// also enabled: not while servicing an IRQ, and not while POID's IRQ
	// sub-flag is set.
	if c.host.NeedResched(cpu) && !s.irq.isOpen() && !s.poid.id {
		c.closePAIE(cpu, s)
	}
	s.paie.start = 0

	s.dst.pid = c.host.CurrentTask(cpu)
	s.setStart(c.clock, &s.psd.start)
}

// PreemptEnable handles the preempt_enable tracepoint.
func (c *Controller) PreemptEnable(cpu int, toSchedule bool) {
	if toSchedule {
		c.preemptEnableSched(cpu)
	} else {
		c.preemptEnableNosched(cpu)
	}
}

func (c *Controller) preemptEnableNosched(cpu int) {
	s := c.state(cpu)
	if !s.running {
		return
	}

	if s.irq.isOpen() {
		return
	}

	s.poid.pd = false
	if s.poid.id {
		return
	}

	c.closePOID(cpu, s)

	if c.host.NeedResched(cpu) {
		s.setStart(c.clock, &s.paie.start)
	}
}

func (c *Controller) preemptEnableSched(cpu int) {
	s := c.state(cpu)
	if !s.running {
		return
	}

	if s.dst.isOpen() {
		d := s.closeWindow(c.clock, &s.dst.start, cpu, "dst", c.debug)
		c.sink.DST(cpu, d)
		if d > s.dst.max {
			c.sink.MaxDST(cpu, d)
			s.dst.max = d
		}
	}

	d := s.closeWindow(c.clock, &s.psd.start, cpu, "psd", c.debug)
	c.sink.PSD(cpu, d)
	if d > s.psd.max {
		c.sink.MaxPSD(cpu, d)
		s.psd.max = d
	}

	if c.host.NeedResched(cpu) {
		s.setStart(c.clock, &s.paie.start)
	}
}

// NMIEntry handles the nmi_entry tracepoint. NMIs cannot preempt
// themselves, so no retry protocol is needed for the read.
func (c *Controller) NMIEntry(cpu int) {
	s := c.state(cpu)
	if !s.running {
		return
	}
	s.nmi.start = c.clock.Now()
}

// NMIExit handles the nmi_exit tracepoint: it computes the NMI's own
// duration, bumps int_counter so any close() in progress retries, then
// pushes every currently open window's start forward by that amount.
func (c *Controller) NMIExit(cpu int) {
	s := c.state(cpu)
	if !s.running {
		return
	}

	now := c.clock.Now()
	d := Duration(now - s.nmi.start)
	c.sink.NMIExecution(cpu, s.nmi.start, d)

	s.intCounter.Add(1)

	if s.irq.isOpen() {
		s.irq.start += d
	}
	if s.poid.isOpen() {
		s.poid.start += d
	}
	if s.psd.isOpen() {
		s.psd.start += d
	}
	if s.dst.isOpen() {
		s.dst.start += d
	}
	if s.paie.isOpen() {
		s.paie.start += d
	}
}

// IRQVectorEntry handles an IRQ entry tracepoint: a per-vector APIC entry in
// VectorModePerVector, or the generic irq_handler_entry tracepoint in
// VectorModeGeneric. The two modes are mutually exclusive at the host
// adapter, which attaches one program or the other and always dispatches
// here.
func (c *Controller) IRQVectorEntry(cpu int, vector Vector) {
	s := c.state(cpu)
	if !s.running {
		return
	}
	s.irq.vector = vector
	s.intCounter.Add(1)
}
