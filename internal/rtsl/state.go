package rtsl

import "sync/atomic"

// poidWindow is "preemption or IRQ disabled by a thread".
type poidWindow struct {
	pd    bool
	id    bool
	start Timestamp
	max   Duration
}

func (w *poidWindow) isOpen() bool { return w.start != 0 }

// paieWindow is "preempt and IRQ enabled, need-resched pending".
type paieWindow struct {
	start Timestamp
	max   Duration
}

func (w *paieWindow) isOpen() bool { return w.start != 0 }

// psdWindow is "preemption disabled to schedule".
type psdWindow struct {
	start Timestamp
	max   Duration
}

func (w *psdWindow) isOpen() bool { return w.start != 0 }

// dstWindow is the "delayed schedule tail", truncated by the pid that
// owned PSD at the moment it opened.
type dstWindow struct {
	pid   TaskID
	start Timestamp
	max   Duration
}

func (w *dstWindow) isOpen() bool { return w.start != 0 }

// irqScratch holds the state of the currently executing hardware interrupt.
type irqScratch struct {
	arrivalTime Timestamp
	start       Timestamp
	wasPSD      bool
	vector      Vector
}

func (w *irqScratch) isOpen() bool { return w.start != 0 }

// nmiScratch holds the state of the currently executing NMI.
type nmiScratch struct {
	start Timestamp
}

// cpuState is the full per-CPU state record. It is owned exclusively
// by the CPU it describes: handlers dispatched for CPU N only ever touch
// cpuState N, so no cross-CPU locking is required.
type cpuState struct {
	poid poidWindow
	paie paieWindow
	psd  psdWindow
	dst  dstWindow
	irq  irqScratch
	nmi  nmiScratch

	// intCounter is bumped on every IRQ vector entry and every NMI exit
	// observed on this CPU; the interference-safe duration primitive (duration.go) uses it
	// to detect and retry across a racing interrupt.
	intCounter atomic.Uint64

	running bool
}

func (s *cpuState) reset() {
	s.poid = poidWindow{}
	s.paie = paieWindow{}
	s.psd = psdWindow{}
	s.dst = dstWindow{}
	s.irq = irqScratch{}
	s.nmi = nmiScratch{}
	s.intCounter.Store(0)
	s.running = false
}
