package rtslprobe

import (
	"fmt"
	"sync"

	"github.com/bristot/linux-rt-rtsl/internal/probe"
)

// metricsState holds the latest value of every window/record Prometheus
// reports, keyed by CPU (and, for IRQ execution, by vector too).
type metricsState struct {
	lock   sync.RWMutex
	numCPU int
	byCPU  map[string][]float64
	irq    map[int]map[int32]float64
}

func (m *metricsState) reset(numCPU int) {
	m.lock.Lock()
	defer m.lock.Unlock()

	m.numCPU = numCPU
	m.byCPU = map[string][]float64{
		metricPOID:         make([]float64, numCPU),
		metricMaxPOID:      make([]float64, numCPU),
		metricPAIE:         make([]float64, numCPU),
		metricMaxPAIE:      make([]float64, numCPU),
		metricPSD:          make([]float64, numCPU),
		metricMaxPSD:       make([]float64, numCPU),
		metricDST:          make([]float64, numCPU),
		metricMaxDST:       make([]float64, numCPU),
		metricNMIExecution: make([]float64, numCPU),
	}
	m.irq = make(map[int]map[int32]float64)
}

func (m *metricsState) set(metric string, cpu int, value float64) {
	m.lock.Lock()
	defer m.lock.Unlock()

	values, ok := m.byCPU[metric]
	if !ok || cpu < 0 || cpu >= len(values) {
		return
	}
	values[cpu] = value
}

func (m *metricsState) setIRQ(cpu int, vector int32, value float64) {
	m.lock.Lock()
	defer m.lock.Unlock()

	if m.irq[cpu] == nil {
		m.irq[cpu] = make(map[int32]float64)
	}
	m.irq[cpu][vector] = value
}

func (m *metricsState) collect(emit probe.Emit) {
	m.lock.RLock()
	defer m.lock.RUnlock()

	for metric, values := range m.byCPU {
		for cpu, v := range values {
			emit(metric, []string{fmt.Sprintf("%d", cpu)}, v)
		}
	}
	for cpu, byVector := range m.irq {
		for vector, v := range byVector {
			// Label values are positional against the desc's variable
			// labels, which BatchMetrics sorts to ["cpu", "vector"] —
			// keep this pair in that order.
			emit(metricIRQExecution, []string{fmt.Sprintf("%d", cpu), fmt.Sprintf("%d", vector)}, v)
		}
	}
}
