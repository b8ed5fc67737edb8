package sink

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/bristot/linux-rt-rtsl/internal/probe"
)

type StderrSink struct {
}

func NewStderrSink() *StderrSink {
	return &StderrSink{}
}

func (s StderrSink) Write(event *probe.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed marshal event, err: %w", err)
	}

	fmt.Fprintf(os.Stderr, "event: %s", string(data))
	return nil
}

var _ Sink = &StderrSink{}
