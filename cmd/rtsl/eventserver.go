package main

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/bristot/linux-rt-rtsl/internal/probe"
	"github.com/bristot/linux-rt-rtsl/internal/sink"
)

type EventServer struct {
	*DynamicProbeServer[probe.EventProbe]
}

func newEventServer(sinks []sink.Sink) (*EventServer, error) {
	probeManager := &EventProbeManager{
		sinks:    sinks,
		sinkChan: make(chan *probe.Event),
		done:     make(chan struct{}),
	}

	return &EventServer{
		DynamicProbeServer: NewDynamicProbeServer[probe.EventProbe](probeManager),
	}, nil
}

func (s *EventServer) Start(ctx context.Context, probeConfig []ProbeConfig) error {
	go s.probeManager.(*EventProbeManager).run()
	return s.DynamicProbeServer.Start(ctx, probeConfig)
}

func (s *EventServer) Stop(ctx context.Context) error {
	if err := s.DynamicProbeServer.Stop(ctx); err != nil {
		return err
	}
	s.probeManager.(*EventProbeManager).stop()
	return nil
}

type EventProbeManager struct {
	sinkChan chan *probe.Event
	sinks    []sink.Sink
	done     chan struct{}
}

func (m *EventProbeManager) run() {
	for {
		select {
		case evt := <-m.sinkChan:
			for _, s := range m.sinks {
				if err := s.Write(evt); err != nil {
					log.Errorf("error sink event: %v", err)
				}
			}
		case <-m.done:
			return
		}
	}
}

func (m *EventProbeManager) stop() {
	close(m.done)
}

func (m *EventProbeManager) CreateProbe(config ProbeConfig) (probe.EventProbe, error) {
	return probe.CreateEventProbe(config.Name, m.sinkChan, config.Args)
}

func (m *EventProbeManager) StartProbe(ctx context.Context, p probe.EventProbe) error {
	return p.Start(ctx)
}

func (m *EventProbeManager) StopProbe(ctx context.Context, p probe.EventProbe) error {
	return p.Stop(ctx)
}

func createSinks(sinkConfigs []EventSinkConfig) ([]sink.Sink, error) {
	var ret []sink.Sink
	for _, config := range sinkConfigs {
		s, err := sink.CreateSink(config.Name, config.Args)
		if err != nil {
			return nil, fmt.Errorf("failed create sink %s: %w", config.Name, err)
		}
		ret = append(ret, s)
	}
	return ret, nil
}

var _ ProbeManager[probe.EventProbe] = &EventProbeManager{}
