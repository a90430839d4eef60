// Package realtime implements topic-keyed in-process event distribution.
// Publishers fan events out to every active subscription on the topic;
// subscribers receive them over buffered channels and are dropped from the
// fan-out for a single event when their buffer is full, so one slow consumer
// never stalls publishers or other subscribers.
package realtime

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/civicreporter/civic-reporter-api/internal/api/metrics"
	"github.com/civicreporter/civic-reporter-api/internal/core/domain"
)

const subscriptionBuffer = 64

// Subscription is one consumer's handle on a set of topics. Events arrive on C
// in publish order. Close the subscription with Hub.Unsubscribe when done.
type Subscription struct {
	C      <-chan domain.Event
	topics []string
	ch     chan domain.Event
}

// Topics returns the topics this subscription is attached to.
func (s *Subscription) Topics() []string {
	out := make([]string, len(s.topics))
	copy(out, s.topics)
	return out
}

// Hub routes events from publishers to topic subscribers. The zero value is
// not usable; construct with NewHub. All methods are safe for concurrent use.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{}
	log    zerolog.Logger
}

// NewHub creates an empty Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		topics: make(map[string]map[*Subscription]struct{}),
		log:    log,
	}
}

// Subscribe registers a new subscription on the given topics and returns it.
// Duplicate topic names are collapsed. At least one topic is required; callers
// pass domain.TopicReports for the standard report feed.
func (h *Hub) Subscribe(topics ...string) *Subscription {
	seen := make(map[string]struct{}, len(topics))
	unique := make([]string, 0, len(topics))
	for _, t := range topics {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		unique = append(unique, t)
	}

	ch := make(chan domain.Event, subscriptionBuffer)
	sub := &Subscription{C: ch, topics: unique, ch: ch}

	h.mu.Lock()
	for _, t := range unique {
		subs, ok := h.topics[t]
		if !ok {
			subs = make(map[*Subscription]struct{})
			h.topics[t] = subs
		}
		subs[sub] = struct{}{}
		metrics.SubscribersActive.WithLabelValues(t).Inc()
	}
	h.mu.Unlock()

	return sub
}

// Unsubscribe detaches the subscription from all its topics and closes its
// channel. Calling it twice is a no-op for the second call.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()
	closed := true
	for _, t := range sub.topics {
		subs, ok := h.topics[t]
		if !ok {
			continue
		}
		if _, member := subs[sub]; !member {
			continue
		}
		closed = false
		delete(subs, sub)
		if len(subs) == 0 {
			delete(h.topics, t)
		}
		metrics.SubscribersActive.WithLabelValues(t).Dec()
	}
	h.mu.Unlock()

	if !closed {
		close(sub.ch)
	}
}

// Publish delivers the event to every subscription on the topic. Delivery is
// non-blocking: a subscriber whose buffer is full misses this event and the
// drop is counted and logged.
func (h *Hub) Publish(topic string, event domain.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	metrics.EventsPublishedTotal.WithLabelValues(topic, string(event.Type)).Inc()

	for sub := range h.topics[topic] {
		select {
		case sub.ch <- event:
		default:
			metrics.EventsDroppedTotal.WithLabelValues(topic).Inc()
			h.log.Warn().
				Str("topic", topic).
				Str("event", string(event.Type)).
				Msg("subscriber buffer full, event dropped")
		}
	}
}

// SubscriberCount reports how many subscriptions are attached to a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}
