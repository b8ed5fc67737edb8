package sink

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/bristot/linux-rt-rtsl/internal/probe"
)

func TestCreateSinkStderr(t *testing.T) {
	s, err := CreateSink(Stderr, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := s.(*StderrSink); !ok {
		t.Fatalf("expected *StderrSink, got %T", s)
	}
}

func TestCreateSinkFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")

	s, err := CreateSink(File, map[string]interface{}{"path": path})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	evt := &probe.Event{Message: "psd 1800"}
	if err := s.Write(evt); err != nil {
		t.Fatalf("unexpected error writing event: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("unexpected error reading back file: %v", err)
	}

	var got probe.Event
	if err := json.Unmarshal(data[:len(data)-1], &got); err != nil {
		t.Fatalf("unexpected error unmarshaling written event: %v", err)
	}
	if got.Message != evt.Message {
		t.Fatalf("expected message %q, got %q", evt.Message, got.Message)
	}
}

func TestCreateSinkUnknown(t *testing.T) {
	if _, err := CreateSink("not-a-sink", nil); err == nil {
		t.Fatalf("expected error for unknown sink type")
	}
}
