package probe

import (
	"errors"
	"fmt"
	"reflect"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/exp/maps"
)

const MetricsNamespace = "rtsl"

var (
	availableMetricsProbes = make(map[string]reflect.Value)
	ErrUndeclaredMetrics   = errors.New("undeclared metrics")
)

// MustRegisterMetricsProbe registers a probe constructor of the shape
// func(args A) (MetricsProbe, error), where A is a plain struct decoded
// from the caller-supplied arg map via mapstructure tags.
func MustRegisterMetricsProbe(name string, creator interface{}) {
	if _, ok := availableMetricsProbes[name]; ok {
		panic(fmt.Errorf("duplicated metrics probe %s", name))
	}

	t := reflect.TypeOf(creator)
	if err := validateProbeCreatorReturnValue[MetricsProbe](t); err != nil {
		panic(fmt.Errorf("metrics probe %s: %w", name, err))
	}
	if t.NumIn() != 1 {
		panic(fmt.Errorf("metrics probe %s: creator must take exactly one args struct", name))
	}

	availableMetricsProbes[name] = reflect.ValueOf(creator)
}

// CreateMetricsProbe decodes args into the registered creator's argument
// type and invokes it.
func CreateMetricsProbe(name string, args map[string]interface{}) (MetricsProbe, error) {
	creator, ok := availableMetricsProbes[name]
	if !ok {
		return nil, fmt.Errorf("undefined probe %s", name)
	}

	argVal, err := createStructFromTypeWithArgs(creator.Type().In(0), args)
	if err != nil {
		return nil, fmt.Errorf("decode args for metrics probe %s: %w", name, err)
	}

	out := creator.Call([]reflect.Value{argVal})
	if errVal := out[1]; !errVal.IsNil() {
		return nil, errVal.Interface().(error)
	}
	if out[0].IsNil() {
		return nil, nil
	}
	return out[0].Interface().(MetricsProbe), nil
}

func ListMetricsProbes() []string {
	var ret []string
	for key := range availableMetricsProbes {
		ret = append(ret, key)
	}
	return ret
}

type Emit func(name string, labels []string, val float64)

type Collector func(emit Emit) error

type SingleMetricsOpts struct {
	Name           string
	Help           string
	ConstLabels    map[string]string
	VariableLabels []string
	ValueType      prometheus.ValueType
}

type BatchMetricsOpts struct {
	Namespace         string
	Subsystem         string
	ConstLabels       map[string]string
	VariableLabels    []string
	SingleMetricsOpts []SingleMetricsOpts
}

type metricsInfo struct {
	desc      *prometheus.Desc
	valueType prometheus.ValueType
}

type BatchMetrics struct {
	name           string
	infoMap        map[string]*metricsInfo
	ProbeCollector Collector
}

func NewBatchMetrics(opts BatchMetricsOpts, probeCollector Collector) *BatchMetrics {
	m := make(map[string]*metricsInfo)
	for _, metrics := range opts.SingleMetricsOpts {
		constLabels, variableLabels := mergeLabels(opts, metrics)
		desc := prometheus.NewDesc(
			prometheus.BuildFQName(opts.Namespace, opts.Subsystem, metrics.Name),
			metrics.Help,
			variableLabels,
			constLabels,
		)

		m[metrics.Name] = &metricsInfo{
			desc:      desc,
			valueType: metrics.ValueType,
		}
	}

	return &BatchMetrics{
		name:           fmt.Sprintf("%s_%s", opts.Namespace, opts.Subsystem),
		infoMap:        m,
		ProbeCollector: probeCollector,
	}
}

func (b *BatchMetrics) Describe(descs chan<- *prometheus.Desc) {
	for _, info := range b.infoMap {
		descs <- info.desc
	}
}

func (b *BatchMetrics) Collect(metrics chan<- prometheus.Metric) {
	emit := func(name string, labels []string, val float64) {
		info, ok := b.infoMap[name]
		if !ok {
			log.Errorf("%s undeclared metrics %s", b.name, name)
			return
		}
		metrics <- prometheus.MustNewConstMetric(info.desc, info.valueType, val, labels...)
	}

	if err := b.ProbeCollector(emit); err != nil {
		log.Errorf("%s error collect, err: %v", b.name, err)
	}
}

func mergeLabels(opts BatchMetricsOpts, metrics SingleMetricsOpts) (map[string]string, []string) {
	constLabels := mergeMap(opts.ConstLabels, metrics.ConstLabels)
	variableLabels := mergeArray(opts.VariableLabels, metrics.VariableLabels)

	return constLabels, variableLabels
}

// mergeArray merges the batch-level and per-metric variable label lists.
// The result is sorted so the desc's label order is fixed across process
// restarts and can't drift out of sync with a collector's positional emit.
func mergeArray(labels []string, labels2 []string) []string {
	m := make(map[string]bool)
	for _, s := range labels {
		m[s] = true
	}

	for _, s := range labels2 {
		if _, ok := m[s]; ok {
			//to avoid duplicated label
			panic(fmt.Sprintf("metric label %s already declared in BatchMetricsOpts", s))
		}
		m[s] = true
	}

	var ret []string
	for k := range m {
		ret = append(ret, k)
	}
	sort.Strings(ret)

	return ret
}

// if a key exists in both maps, value in labels2 will be kept
func mergeMap(labels map[string]string, labels2 map[string]string) map[string]string {
	ret := make(map[string]string)
	maps.Copy(ret, labels)
	maps.Copy(ret, labels2)
	return ret
}

type combinedMetricsProbe struct {
	Probe
	prometheus.Collector
}

func NewMetricsProbe(name string, simpleProbe SimpleProbe, collector prometheus.Collector) MetricsProbe {
	return &combinedMetricsProbe{
		Probe:     NewProbe(name, simpleProbe),
		Collector: collector,
	}
}

var _ prometheus.Collector = &BatchMetrics{}
