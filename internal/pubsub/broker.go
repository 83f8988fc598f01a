// Package pubsub provides an in-process topic broker used to notify
// long-lived components of settings and capability changes
package pubsub

import "sync"

// Message is one published value on a topic
type Message struct {
	Topic   string
	Payload any
}

// Well-known topics
const (
	TopicSettingsChanged     = "settings.changed"
	TopicCapabilitiesChanged = "capabilities.changed"
)

// Broker fans published messages out to topic subscribers. Slow subscribers
// drop messages rather than block publishers.
type Broker struct {
	mu          sync.RWMutex
	subscribers map[string][]chan Message
	closed      bool
}

// NewBroker creates an empty broker
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string][]chan Message),
	}
}

// Subscribe registers a subscriber for a topic and returns its channel plus
// an unsubscribe function
func (b *Broker) Subscribe(topic string) (<-chan Message, func()) {
	ch := make(chan Message, 16)

	b.mu.Lock()
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	b.mu.Unlock()

	unsubscribe := func() {
		b.mu.Lock()
		defer b.mu.Unlock()

		subs := b.subscribers[topic]
		for i, sub := range subs {
			if sub == ch {
				b.subscribers[topic] = append(subs[:i], subs[i+1:]...)
				close(ch)
				return
			}
		}
	}

	return ch, unsubscribe
}

// Publish delivers a message to every current subscriber of the topic
func (b *Broker) Publish(topic string, payload any) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	msg := Message{Topic: topic, Payload: payload}
	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Subscriber buffer full, drop rather than block
		}
	}
}

// Close shuts the broker down and closes all subscriber channels
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for topic, subs := range b.subscribers {
		for _, ch := range subs {
			close(ch)
		}
		delete(b.subscribers, topic)
	}
}
