package probe

import (
	"context"
	"testing"
)

type fakeArgs struct {
	Threshold uint64 `mapstructure:"threshold"`
}

type fakeSimpleProbe struct{}

func (fakeSimpleProbe) Start(_ context.Context) error { return nil }
func (fakeSimpleProbe) Stop(_ context.Context) error  { return nil }

func fakeMetricsCreator(args fakeArgs) (MetricsProbe, error) {
	opts := BatchMetricsOpts{
		Namespace: MetricsNamespace,
		Subsystem: "faketest",
		SingleMetricsOpts: []SingleMetricsOpts{
			{Name: "threshold_echo"},
		},
	}
	bm := NewBatchMetrics(opts, func(emit Emit) error {
		emit("threshold_echo", nil, float64(args.Threshold))
		return nil
	})
	return NewMetricsProbe("faketest", fakeSimpleProbe{}, bm), nil
}

func TestMustRegisterMetricsProbeAndCreate(t *testing.T) {
	MustRegisterMetricsProbe("faketest_metrics", fakeMetricsCreator)

	p, err := CreateMetricsProbe("faketest_metrics", map[string]interface{}{"threshold": 42})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "faketest" {
		t.Fatalf("expected probe name faketest, got %s", p.Name())
	}

	if _, err := CreateMetricsProbe("does-not-exist", nil); err == nil {
		t.Fatalf("expected error for unregistered probe")
	}
}

func TestMustRegisterMetricsProbePanicsOnDuplicate(t *testing.T) {
	MustRegisterMetricsProbe("faketest_dup", fakeMetricsCreator)

	defer func() {
		if r := recover(); r == nil {
			t.Fatalf("expected panic on duplicate registration")
		}
	}()
	MustRegisterMetricsProbe("faketest_dup", fakeMetricsCreator)
}
