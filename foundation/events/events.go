// Package events fans out escrow events to any number of subscribers such as
// websocket clients.
package events

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Event is a single message published by the escrow.
type Event struct {
	Topic   string    `json:"topic"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// subscriber is a registered receiver and the topics it wants.
type subscriber struct {
	ch     chan Event
	topics []string
}

func (s subscriber) wants(topic string) bool {
	if len(s.topics) == 0 {
		return true
	}
	for _, t := range s.topics {
		if t == topic {
			return true
		}
	}
	return false
}

// Events maintains a mapping of unique id and subscribers so goroutines can
// register and receive events.
type Events struct {
	m  map[string]subscriber
	mu sync.RWMutex
}

// New constructs an events for registering and receiving events.
func New() *Events {
	return &Events{
		m: make(map[string]subscriber),
	}
}

// Shutdown closes and removes all channels that were provided by the call
// to Acquire.
func (evt *Events) Shutdown() {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	for id, sub := range evt.m {
		delete(evt.m, id)
		close(sub.ch)
	}
}

// Acquire takes a unique id and returns a channel that can be used to receive
// events for the topics. No topics means every topic.
func (evt *Events) Acquire(id string, topics ...string) <-chan Event {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	if sub, exists := evt.m[id]; exists {
		return sub.ch
	}

	// A message is dropped if the receiver is not ready, the buffer gives a
	// slow websocket writer time to catch up.
	const messageBuffer = 100

	sub := subscriber{
		ch:     make(chan Event, messageBuffer),
		topics: topics,
	}
	evt.m[id] = sub

	return sub.ch
}

// Release closes and removes the channel that was provided by the call to
// Acquire.
func (evt *Events) Release(id string) error {
	evt.mu.Lock()
	defer evt.mu.Unlock()

	sub, exists := evt.m[id]
	if !exists {
		return fmt.Errorf("id %q does not exist", id)
	}

	delete(evt.m, id)
	close(sub.ch)
	return nil
}

// Len returns the number of registered subscribers.
func (evt *Events) Len() int {
	evt.mu.RLock()
	defer evt.mu.RUnlock()

	return len(evt.m)
}

// Send publishes a message to every subscriber of the topic. Send will not
// block waiting for a receiver on any given channel.
func (evt *Events) Send(topic string, message string) {
	e := Event{
		Topic:   topic,
		Message: message,
		Time:    time.Now().UTC(),
	}

	evt.mu.RLock()
	defer evt.mu.RUnlock()

	for _, sub := range evt.m {
		if !sub.wants(topic) {
			continue
		}

		select {
		case sub.ch <- e:
		default:
		}
	}
}

// SendLine publishes a line of the form "topic: message", which is how the
// escrow packages report their events. Lines without a topic are ignored.
func (evt *Events) SendLine(line string) {
	topic, message, found := strings.Cut(line, ": ")
	if !found || strings.ContainsAny(topic, " \t") {
		return
	}

	evt.Send(topic, message)
}
