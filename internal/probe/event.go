package probe

import (
	"fmt"
	"reflect"
)

var availableEventProbes = make(map[string]reflect.Value)

// MustRegisterEventProbe registers a probe constructor of the shape
// func(sink chan<- *Event, args A) (EventProbe, error).
func MustRegisterEventProbe(name string, creator interface{}) {
	if _, ok := availableEventProbes[name]; ok {
		panic(fmt.Errorf("duplicated event probe %s", name))
	}

	t := reflect.TypeOf(creator)
	if err := validateProbeCreatorReturnValue[EventProbe](t); err != nil {
		panic(fmt.Errorf("event probe %s: %w", name, err))
	}
	if t.NumIn() != 2 || t.In(0) != reflect.TypeOf((chan<- *Event)(nil)) {
		panic(fmt.Errorf("event probe %s: creator must take (chan<- *Event, args struct)", name))
	}

	availableEventProbes[name] = reflect.ValueOf(creator)
}

// CreateEventProbe decodes args into the registered creator's argument type
// and invokes it with sink.
func CreateEventProbe(name string, sink chan<- *Event, args map[string]interface{}) (EventProbe, error) {
	creator, ok := availableEventProbes[name]
	if !ok {
		return nil, fmt.Errorf("undefined probe %s", name)
	}

	argVal, err := createStructFromTypeWithArgs(creator.Type().In(1), args)
	if err != nil {
		return nil, fmt.Errorf("decode args for event probe %s: %w", name, err)
	}

	out := creator.Call([]reflect.Value{reflect.ValueOf(sink), argVal})
	if errVal := out[1]; !errVal.IsNil() {
		return nil, errVal.Interface().(error)
	}
	if out[0].IsNil() {
		return nil, nil
	}
	return out[0].Interface().(EventProbe), nil
}

// NewEventProbe wraps a SimpleProbe as an EventProbe, the event-probe
// counterpart to NewMetricsProbe.
func NewEventProbe(name string, p SimpleProbe) EventProbe {
	return NewProbe(name, p)
}

func ListEventProbes() []string {
	var ret []string
	for key := range availableEventProbes {
		ret = append(ret, key)
	}
	return ret
}
