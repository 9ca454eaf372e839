// Package runtime handles event propagation to live subscribers.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"context"
	"fmt"
	"groupchat/contract"
	"groupchat/domain/event"
	"groupchat/runtime/workers"
	"log/slog"
	"sync"
	"time"
)

var _ contract.IEventBus = (*Orchestrator)(nil)

type Orchestrator struct {
	mu             sync.Mutex
	log            *slog.Logger
	numWorkers     int
	permanentSinks []contract.EventSink
	supervisor     contract.ISupervisor
	registry       contract.IRegistry
	domainEvents   chan event.DomainEvent
	sinkTimeout    time.Duration
	publishTimeout time.Duration

	metricInterval       time.Duration
	lowCapacityThreshold int
}

func NewOrchestrator(log *slog.Logger, supervisor contract.ISupervisor, registry contract.IRegistry,
	numWorkers, bufferSize int, sinkTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		log:          log,
		numWorkers:   max(numWorkers, 1),
		supervisor:   supervisor,
		registry:     registry,
		domainEvents: make(chan event.DomainEvent, bufferSize),
		sinkTimeout:  sinkTimeout,
	}
}

// WithCapacityMonitor samples the event buffer every interval and warns when
// at most threshold slots are left. Must be called before Start.
func (o *Orchestrator) WithCapacityMonitor(interval time.Duration, threshold int) *Orchestrator {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.metricInterval = interval
	o.lowCapacityThreshold = threshold
	return o
}

// WithPublishTimeout lets Publish wait up to timeout for room in a full buffer
// before dropping the event. Zero keeps Publish non blocking.
// Must be called before Start.
func (o *Orchestrator) WithPublishTimeout(timeout time.Duration) *Orchestrator {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.publishTimeout = timeout
	return o
}

// Add registers sinks receiving every event whatever its topics.
// Must be called before Start.
func (o *Orchestrator) Add(sinks ...contract.EventSink) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.permanentSinks = append(o.permanentSinks, sinks...)
}

// Publish queues e for the fanout workers. On a full buffer the caller waits at
// most the publish timeout, then the event is dropped. Subscribers of a dropped
// event keep their last snapshot until the next event on their topic.
func (o *Orchestrator) Publish(e event.DomainEvent) {
	select {
	case o.domainEvents <- e:
		return
	default:
	}
	if o.publishTimeout <= 0 {
		o.log.Warn("Domain event channel full, dropping event", "type", fmt.Sprintf("%T", e))
		return
	}

	timer := time.NewTimer(o.publishTimeout)
	defer timer.Stop()
	select {
	case o.domainEvents <- e:
		o.log.Debug("Domain event queued after waiting for room", "type", fmt.Sprintf("%T", e))
	case <-timer.C:
		o.log.Warn("Domain event channel full, dropping event",
			"type", fmt.Sprintf("%T", e), "waited", o.publishTimeout)
	}
}

func (o *Orchestrator) Subscribe(subscriberID string, topic event.Topic, sink contract.EventSink) {
	o.registry.Subscribe(subscriberID, topic, sink)
}

func (o *Orchestrator) Unsubscribe(subscriberID string, topic event.Topic) {
	o.registry.Unsubscribe(subscriberID, topic)
}

// Start registers the fanout workers and blocks while the supervisor runs them.
func (o *Orchestrator) Start(ctx context.Context) {
	o.mu.Lock()
	sinks := append([]contract.EventSink{}, o.permanentSinks...)
	for i := 0; i < o.numWorkers; i++ {
		fanout := workers.NewEventFanout(o.log, sinks, o.registry, o.domainEvents, o.sinkTimeout).
			WithName(fmt.Sprintf("event-fanout-%d", i))
		o.supervisor.Add(fanout)
	}
	if o.metricInterval > 0 {
		o.supervisor.Add(workers.NewChannelCapacityWorker(o.log,
			[]workers.NamedChannel{{Name: "domain-events", Channel: o.domainEvents}},
			o.metricInterval, o.lowCapacityThreshold))
	}
	o.mu.Unlock()

	o.log.Info("Starting orchestrator and all supervised workers", "workers", o.numWorkers)
	o.supervisor.Run(ctx)
}

// Stop cancels the supervision context, pending events are dropped.
func (o *Orchestrator) Stop() {
	o.log.Info("Requesting orchestrator shutdown")
	o.supervisor.Stop()
}
