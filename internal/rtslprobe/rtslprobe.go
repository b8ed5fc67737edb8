// Package rtslprobe wires the rtsl core state machine into the probe
// framework: it builds the rtsl.Controller, attaches it to the host's
// real tracepoints, exposes its windows as Prometheus metrics and probe
// events, and owns the control file that turns tracking on and off.
package rtslprobe

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/bristot/linux-rt-rtsl/internal/clock"
	"github.com/bristot/linux-rt-rtsl/internal/controlfile"
	"github.com/bristot/linux-rt-rtsl/internal/probe"
	"github.com/bristot/linux-rt-rtsl/internal/rtsl"
	"github.com/bristot/linux-rt-rtsl/internal/tracepoint"
)

const probeName = "rtsl"

const (
	metricPOID         = "poid_ns"
	metricMaxPOID      = "poid_max_ns"
	metricPAIE         = "paie_ns"
	metricMaxPAIE      = "paie_max_ns"
	metricPSD          = "psd_ns"
	metricMaxPSD       = "psd_max_ns"
	metricDST          = "dst_ns"
	metricMaxDST       = "dst_max_ns"
	metricIRQExecution = "irq_execution_ns"
	metricNMIExecution = "nmi_execution_ns"
)

func init() {
	probe.MustRegisterMetricsProbe(probeName, metricsProbeCreator)
	probe.MustRegisterEventProbe(probeName, eventProbeCreator)
}

type rtslArgs struct {
	VectorMode      string   `mapstructure:"vector-mode"`
	VectorNames     []string `mapstructure:"vector-names"`
	ControlFilePath string   `mapstructure:"control-file-path"`
}

func (a rtslArgs) mode() rtsl.VectorMode {
	if a.VectorMode == "per-vector" {
		return rtsl.VectorModePerVector
	}
	return rtsl.VectorModeGeneric
}

func (a rtslArgs) controlFilePath() string {
	if a.ControlFilePath != "" {
		return a.ControlFilePath
	}
	return "/sys/kernel/debug/rtsl/enable"
}

func metricsProbeCreator(args rtslArgs) (probe.MetricsProbe, error) {
	_rtslProbe.configure(args)
	p := &metricsProbe{}
	opts := probe.BatchMetricsOpts{
		Namespace:      probe.MetricsNamespace,
		VariableLabels: []string{"cpu"},
		SingleMetricsOpts: []probe.SingleMetricsOpts{
			{Name: metricPOID, ValueType: prometheus.GaugeValue},
			{Name: metricMaxPOID, ValueType: prometheus.GaugeValue},
			{Name: metricPAIE, ValueType: prometheus.GaugeValue},
			{Name: metricMaxPAIE, ValueType: prometheus.GaugeValue},
			{Name: metricPSD, ValueType: prometheus.GaugeValue},
			{Name: metricMaxPSD, ValueType: prometheus.GaugeValue},
			{Name: metricDST, ValueType: prometheus.GaugeValue},
			{Name: metricMaxDST, ValueType: prometheus.GaugeValue},
			{Name: metricNMIExecution, ValueType: prometheus.GaugeValue},
			{Name: metricIRQExecution, ValueType: prometheus.GaugeValue, VariableLabels: []string{"vector"}},
		},
	}
	batchMetrics := probe.NewBatchMetrics(opts, p.collectOnce)
	return probe.NewMetricsProbe(probeName, p, batchMetrics), nil
}

func eventProbeCreator(sink chan<- *probe.Event, args rtslArgs) (probe.EventProbe, error) {
	_rtslProbe.configure(args)
	p := &eventProbe{sink: sink}
	return probe.NewEventProbe(probeName, p), nil
}

type metricsProbe struct{}

func (p *metricsProbe) Start(_ context.Context) error {
	return _rtslProbe.start(probe.ProbeTypeMetrics)
}

func (p *metricsProbe) Stop(_ context.Context) error {
	return _rtslProbe.stop(probe.ProbeTypeMetrics)
}

func (p *metricsProbe) collectOnce(emit probe.Emit) error {
	_rtslProbe.metrics.collect(emit)
	return nil
}

type eventProbe struct {
	sink chan<- *probe.Event
}

func (e *eventProbe) Start(_ context.Context) error {
	if err := _rtslProbe.start(probe.ProbeTypeEvent); err != nil {
		return err
	}
	_rtslProbe.setSink(e.sink)
	return nil
}

func (e *eventProbe) Stop(_ context.Context) error {
	return _rtslProbe.stop(probe.ProbeTypeEvent)
}

// instance is the process-wide rtsl tracker: exactly one Controller and
// one host Adapter ever exist, ref-counted across the metrics and event
// probe facets so the second facet to start reuses the first's eBPF
// attachment and the last to stop tears it down.
type instance struct {
	lock   sync.Mutex
	refcnt [probe.ProbeTypeCount]int

	args    rtslArgs
	ctrl    *rtsl.Controller
	adapter *tracepoint.Adapter
	cf      *controlfile.File
	sink    chan<- *probe.Event

	metrics metricsState
}

var _rtslProbe = &instance{}

func (in *instance) configure(args rtslArgs) {
	in.lock.Lock()
	defer in.lock.Unlock()
	in.args = args
}

func (in *instance) setSink(sink chan<- *probe.Event) {
	in.lock.Lock()
	defer in.lock.Unlock()
	in.sink = sink
}

func (in *instance) totalReferenceCountLocked() int {
	var c int
	for _, n := range in.refcnt {
		c += n
	}
	return c
}

func (in *instance) start(probeType probe.Type) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	in.refcnt[probeType]++
	if in.totalReferenceCountLocked() > 1 {
		return nil
	}

	numCPU := runtime.NumCPU()
	in.metrics.reset(numCPU)

	adapter := tracepoint.New(nil)
	ctrl := rtsl.New(numCPU, clock.Monotonic{}, adapter, &sinkAdapter{metrics: &in.metrics, get: func() chan<- *probe.Event {
		in.lock.Lock()
		defer in.lock.Unlock()
		return in.sink
	}}, adapter, in.args.mode(), in.args.VectorNames)
	ctrl.SetDebugObserver(rtsl.NewDebugObserver())
	adapter.SetController(ctrl)

	cf := controlfile.New(in.args.controlFilePath(), ctrl)
	if err := cf.Start(); err != nil {
		in.refcnt[probeType]--
		return fmt.Errorf("%s: start control file: %w", probeName, err)
	}

	in.ctrl = ctrl
	in.adapter = adapter
	in.cf = cf
	return nil
}

func (in *instance) stop(probeType probe.Type) error {
	in.lock.Lock()
	defer in.lock.Unlock()

	if in.refcnt[probeType] == 0 {
		return fmt.Errorf("%s probe %s never started", probeName, probeType)
	}
	in.refcnt[probeType]--
	if in.totalReferenceCountLocked() > 0 {
		return nil
	}

	if in.cf != nil {
		if err := in.cf.Stop(); err != nil {
			log.Warnf("%s: stop control file: %v", probeName, err)
		}
		in.cf = nil
	}
	in.ctrl = nil
	in.adapter = nil
	return nil
}

// sinkAdapter turns every rtsl.Sink callback into a metrics update and,
// when an event sink is attached, a probe.Event.
type sinkAdapter struct {
	metrics *metricsState
	get     func() chan<- *probe.Event
}

func (s *sinkAdapter) emit(typ probe.EventType, cpu int, msg string) {
	sink := s.get()
	if sink == nil {
		return
	}
	sink <- &probe.Event{
		Timestamp: time.Now().UnixNano(),
		Type:      typ,
		Labels:    []probe.Label{{Name: "cpu", Value: fmt.Sprintf("%d", cpu)}},
		Message:   msg,
	}
}

func (s *sinkAdapter) POID(cpu int, d rtsl.Duration) {
	s.metrics.set(metricPOID, cpu, float64(d))
	s.emit("POID", cpu, fmt.Sprintf("poid=%s", humanDuration(uint64(d))))
}

func (s *sinkAdapter) MaxPOID(cpu int, d rtsl.Duration) {
	s.metrics.set(metricMaxPOID, cpu, float64(d))
	s.emit("MAX_POID", cpu, fmt.Sprintf("max_poid=%s", humanDuration(uint64(d))))
}

func (s *sinkAdapter) PAIE(cpu int, d rtsl.Duration) {
	s.metrics.set(metricPAIE, cpu, float64(d))
	s.emit("PAIE", cpu, fmt.Sprintf("paie=%s", humanDuration(uint64(d))))
}

func (s *sinkAdapter) MaxPAIE(cpu int, d rtsl.Duration) {
	s.metrics.set(metricMaxPAIE, cpu, float64(d))
	s.emit("MAX_PAIE", cpu, fmt.Sprintf("max_paie=%s", humanDuration(uint64(d))))
}

func (s *sinkAdapter) PSD(cpu int, d rtsl.Duration) {
	s.metrics.set(metricPSD, cpu, float64(d))
	s.emit("PSD", cpu, fmt.Sprintf("psd=%s", humanDuration(uint64(d))))
}

func (s *sinkAdapter) MaxPSD(cpu int, d rtsl.Duration) {
	s.metrics.set(metricMaxPSD, cpu, float64(d))
	s.emit("MAX_PSD", cpu, fmt.Sprintf("max_psd=%s", humanDuration(uint64(d))))
}

func (s *sinkAdapter) DST(cpu int, d rtsl.Duration) {
	s.metrics.set(metricDST, cpu, float64(d))
	s.emit("DST", cpu, fmt.Sprintf("dst=%s", humanDuration(uint64(d))))
}

func (s *sinkAdapter) MaxDST(cpu int, d rtsl.Duration) {
	s.metrics.set(metricMaxDST, cpu, float64(d))
	s.emit("MAX_DST", cpu, fmt.Sprintf("max_dst=%s", humanDuration(uint64(d))))
}

func (s *sinkAdapter) IRQExecution(cpu int, vector rtsl.Vector, arrival rtsl.Timestamp, d rtsl.Duration) {
	s.metrics.setIRQ(cpu, vector, float64(d))
	s.emit("IRQ_EXECUTION", cpu, fmt.Sprintf("vector=%d arrival=%d d=%s", vector, arrival, humanDuration(uint64(d))))
}

func (s *sinkAdapter) NMIExecution(cpu int, start rtsl.Timestamp, d rtsl.Duration) {
	s.metrics.set(metricNMIExecution, cpu, float64(d))
	s.emit("NMI_EXECUTION", cpu, fmt.Sprintf("start=%d d=%s", start, humanDuration(uint64(d))))
}
