package sink

import (
	"context"
	"groupchat/contract"
	"groupchat/domain/event"
)

var _ contract.EventSink = (*StreamSink)(nil)

// StreamSink hands events over to a single connection goroutine.
// Consume never blocks: when the buffer is full the event is dropped,
// a notification already pending triggers the same refresh.
type StreamSink struct {
	events chan event.DomainEvent
}

func NewStreamSink(bufferSize int) *StreamSink {
	return &StreamSink{events: make(chan event.DomainEvent, max(bufferSize, 1))}
}

func (s *StreamSink) Consume(_ context.Context, e event.DomainEvent) error {
	select {
	case s.events <- e:
	default:
	}
	return nil
}

// Events is read by the goroutine owning the connection.
func (s *StreamSink) Events() <-chan event.DomainEvent {
	return s.events
}
