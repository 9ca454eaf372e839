package runtime

import (
	"groupchat/contract"
	"groupchat/domain/event"
	"sync"
)

var _ contract.IRegistry = (*Registry)(nil)

type Set map[string]struct{}

type Registry struct {
	mu            sync.RWMutex
	sinks         map[string]contract.EventSink // map subscriber -> Sink
	topics        map[event.Topic]Set           // map topic to subscribers
	subscriptions map[string]map[event.Topic]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		sinks:         make(map[string]contract.EventSink),
		topics:        make(map[event.Topic]Set),
		subscriptions: make(map[string]map[event.Topic]struct{}),
	}
}

// GetSinksForTopics retrieves the sinks listening on any of the given topics.
// It performs a two-step lookup:
// 1. Identifies subscriber IDs associated with each topic.
// 2. Resolves those IDs into actual EventSinks.
//
// A subscriber listening on several of the topics is returned once.
func (r *Registry) GetSinksForTopics(topics ...event.Topic) []contract.EventSink {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(Set)
	var activeSinks []contract.EventSink
	for _, topic := range topics {
		for subscriberID := range r.topics[topic] {
			if _, ok := seen[subscriberID]; ok {
				continue
			}
			seen[subscriberID] = struct{}{}
			if sink, exists := r.sinks[subscriberID]; exists {
				activeSinks = append(activeSinks, sink)
			}
		}
	}
	return activeSinks
}

// Subscribe registers a subscriber's sink on a topic.
// If the topic does not yet exist in the registry, it is initialized on the fly.
func (r *Registry) Subscribe(subscriberID string, topic event.Topic, sink contract.EventSink) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sinks[subscriberID] = sink

	if _, ok := r.topics[topic]; !ok {
		r.topics[topic] = make(Set)
	}
	r.topics[topic][subscriberID] = struct{}{}

	if _, ok := r.subscriptions[subscriberID]; !ok {
		r.subscriptions[subscriberID] = make(map[event.Topic]struct{})
	}
	r.subscriptions[subscriberID][topic] = struct{}{}
}

// Unsubscribe removes a subscriber from a topic.
// The sink is released once the subscriber has no topic left and
// empty sets are removed so the maps never grow with dead entries.
func (r *Registry) Unsubscribe(subscriberID string, topic event.Topic) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if members, ok := r.topics[topic]; ok {
		delete(members, subscriberID)
		if len(members) == 0 {
			delete(r.topics, topic)
		}
	}

	if topics, ok := r.subscriptions[subscriberID]; ok {
		delete(topics, topic)
		if len(topics) == 0 {
			delete(r.subscriptions, subscriberID)
			delete(r.sinks, subscriberID)
		}
	}
}
