package probe

import "testing"

type fakeEventProbe struct {
	fakeSimpleProbe
}

func fakeEventCreator(sink chan<- *Event, args fakeArgs) (EventProbe, error) {
	if sink != nil {
		sink <- &Event{Message: "created"}
	}
	_ = args
	return NewProbe("fakeevent", fakeEventProbe{}), nil
}

func TestMustRegisterEventProbeAndCreate(t *testing.T) {
	MustRegisterEventProbe("fakeevent_probe", fakeEventCreator)

	sink := make(chan *Event, 1)
	p, err := CreateEventProbe("fakeevent_probe", sink, map[string]interface{}{"threshold": 7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Name() != "fakeevent" {
		t.Fatalf("expected probe name fakeevent, got %s", p.Name())
	}

	select {
	case evt := <-sink:
		if evt.Message != "created" {
			t.Fatalf("unexpected event: %+v", evt)
		}
	default:
		t.Fatalf("expected creator to push an event to sink")
	}

	if _, err := CreateEventProbe("does-not-exist", sink, nil); err == nil {
		t.Fatalf("expected error for unregistered probe")
	}
}
