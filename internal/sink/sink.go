package sink

import (
	"fmt"

	"github.com/bristot/linux-rt-rtsl/internal/probe"
)

const (
	Stderr = "stderr"
	File   = "file"
)

// Sink is the event transport boundary: every emitted trace record
// reaches the outside world as a probe.Event written through one of
// these.
type Sink interface {
	Write(event *probe.Event) error
}

func CreateSink(name string, args interface{}) (Sink, error) {
	argsMap, _ := args.(map[string]interface{})

	switch name {
	case Stderr:
		return NewStderrSink(), nil
	case File:
		path, _ := argsMap["path"].(string)
		return NewFileSink(path)
	}
	return nil, fmt.Errorf("unknown sink type %s", name)
}
