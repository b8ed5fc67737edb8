package rtslprobe

import (
	"testing"

	"github.com/bristot/linux-rt-rtsl/internal/probe"
)

func TestMetricsStateSetAndCollect(t *testing.T) {
	var m metricsState
	m.reset(2)

	m.set(metricPOID, 0, 1500)
	m.set(metricMaxPOID, 0, 1500)
	m.set(metricPSD, 1, 900)

	got := map[string]float64{}
	m.collect(func(name string, labels []string, val float64) {
		got[name+"|"+labels[0]] = val
	})

	if got["poid_ns|0"] != 1500 {
		t.Errorf("poid_ns|0 = %v, want 1500", got["poid_ns|0"])
	}
	if got["poid_max_ns|0"] != 1500 {
		t.Errorf("poid_max_ns|0 = %v, want 1500", got["poid_max_ns|0"])
	}
	if got["psd_ns|1"] != 900 {
		t.Errorf("psd_ns|1 = %v, want 900", got["psd_ns|1"])
	}
	if got["psd_ns|0"] != 0 {
		t.Errorf("psd_ns|0 = %v, want 0 (never set)", got["psd_ns|0"])
	}
}

func TestMetricsStateSetOutOfRangeCPUIsIgnored(t *testing.T) {
	var m metricsState
	m.reset(1)

	m.set(metricPOID, 5, 1234)

	got := map[string]float64{}
	m.collect(func(name string, labels []string, val float64) {
		got[name] = val
	})
	if got[metricPOID] != 0 {
		t.Errorf("out-of-range cpu write should be dropped, got %v", got[metricPOID])
	}
}

func TestMetricsStateSetUnknownMetricIsIgnored(t *testing.T) {
	var m metricsState
	m.reset(1)

	m.set("not_a_real_metric", 0, 1)
	// must not panic, and must not appear in collect output.
	count := 0
	m.collect(func(name string, labels []string, val float64) { count++ })
	if count != len(m.byCPU) {
		t.Errorf("collect emitted %d records, want %d (one per known metric)", count, len(m.byCPU))
	}
}

func TestMetricsStateIRQExecution(t *testing.T) {
	var m metricsState
	m.reset(2)

	m.setIRQ(0, 42, 300)
	m.setIRQ(0, 43, 400)
	m.setIRQ(1, 42, 100)

	var got []struct {
		cpu, vector string
		val         float64
	}
	m.collect(func(name string, labels []string, val float64) {
		if name != metricIRQExecution {
			return
		}
		got = append(got, struct {
			cpu, vector string
			val         float64
		}{labels[0], labels[1], val})
	})

	if len(got) != 3 {
		t.Fatalf("got %d irq_execution records, want 3: %+v", len(got), got)
	}
}

func TestSinkAdapterUpdatesMetricsAndEmitsEvents(t *testing.T) {
	var m metricsState
	m.reset(1)

	ch := make(chan *probe.Event, 16)
	var sinkCh chan<- *probe.Event = ch
	s := &sinkAdapter{metrics: &m, get: func() chan<- *probe.Event { return sinkCh }}

	s.POID(0, 2000)
	s.MaxPOID(0, 2000)
	s.IRQExecution(0, 42, 1500, 300)
	s.NMIExecution(0, 1200, 50)

	got := map[string]float64{}
	m.collect(func(name string, labels []string, val float64) { got[name] = val })
	if got[metricPOID] != 2000 {
		t.Errorf("poid_ns = %v, want 2000", got[metricPOID])
	}
	if got[metricMaxPOID] != 2000 {
		t.Errorf("poid_max_ns = %v, want 2000", got[metricMaxPOID])
	}
	if got[metricNMIExecution] != 50 {
		t.Errorf("nmi_execution_ns = %v, want 50", got[metricNMIExecution])
	}

	if len(ch) != 4 {
		t.Fatalf("expected 4 events on the sink channel, got %d", len(ch))
	}
	evt := <-ch
	if evt.Type != "POID" {
		t.Errorf("first event type = %q, want %q", evt.Type, "POID")
	}
}

func TestSinkAdapterWithoutSinkDoesNotBlock(t *testing.T) {
	var m metricsState
	m.reset(1)
	s := &sinkAdapter{metrics: &m, get: func() chan<- *probe.Event { return nil }}

	s.POID(0, 100)
	s.PSD(0, 50)
}
