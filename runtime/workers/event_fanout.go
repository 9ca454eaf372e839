package workers

import (
	"context"
	"groupchat/contract"
	"groupchat/domain/event"
	"log/slog"
	"time"
)

// EventFanout broadcasts domain events to in-process consumers.
//
// It provides best-effort fan-out with no guarantees regarding delivery,
// ordering, durability, or retries. EventFanout is not a message broker.
// Subscribers only use an event as a hint to re-run their query. A notification
// lost to a slow sink or a full bus leaves the subscriber on its previous
// snapshot until the next event of the same topic, since every snapshot is complete.
//
// Every delivery runs in its own goroutine bounded by sinkTimeout, a slow
// subscriber never delays the others.
type EventFanout struct {
	log            *slog.Logger
	name           contract.WorkerName
	permanentSinks []contract.EventSink
	registry       contract.IRegistry
	domainEvents   <-chan event.DomainEvent
	sinkTimeout    time.Duration
}

func NewEventFanout(log *slog.Logger, permanentSinks []contract.EventSink, registry contract.IRegistry,
	domainEvents <-chan event.DomainEvent, sinkTimeout time.Duration) *EventFanout {
	return &EventFanout{
		log:            log,
		permanentSinks: permanentSinks,
		registry:       registry,
		domainEvents:   domainEvents,
		sinkTimeout:    sinkTimeout,
	}
}

func (w *EventFanout) WithName(name string) *EventFanout {
	w.name = contract.WorkerName(name)
	return w
}

func (w *EventFanout) GetName() contract.WorkerName { return w.name }

func (w *EventFanout) Run(ctx context.Context) error {
	for {
		select {
		case evt := <-w.domainEvents:
			w.Fanout(ctx, evt)
		case <-ctx.Done():
			w.log.Debug("Context done, stopping fanout", "worker", w.name)
			return nil
		}
	}
}

// Fanout One goroutine for each sink
func (w *EventFanout) Fanout(ctx context.Context, evt event.DomainEvent) {
	sinks := append([]contract.EventSink{}, w.permanentSinks...)
	sinks = append(sinks, w.registry.GetSinksForTopics(evt.Topics()...)...)

	for _, sink := range sinks {
		go w.deliver(ctx, sink, evt)
	}
}

func (w *EventFanout) deliver(ctx context.Context, sink contract.EventSink, evt event.DomainEvent) {
	sinkCtx, cancel := context.WithTimeout(ctx, w.sinkTimeout)
	defer cancel()

	if err := sink.Consume(sinkCtx, evt); err != nil {
		w.log.Warn("Sink failed to consume event", "worker", w.name, "error", err)
	}
}
