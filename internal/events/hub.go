// Copyright 2025 SpanFS Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package events provides the publish/subscribe hub that surrounds
// mutating node operations. Listeners are invoked synchronously, in
// subscription order, on the goroutine that publishes.
package events

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// Event is a single published notification.
type Event struct {
	Namespace string
	Name      string
	Args      map[string]any
}

// Listener receives published events.
type Listener func(Event)

// Publisher is the write side of the hub. Mutating operations publish
// a pre event before any I/O and the matching post event only after
// the I/O call succeeded.
type Publisher interface {
	Publish(namespace, name string, args map[string]any)
}

// Hub is an in-process Publisher with ordered listener invocation.
// The zero value is not usable; call NewHub.
type Hub struct {
	mu        sync.RWMutex
	listeners map[string][]Listener
}

// NewHub creates an empty event hub.
func NewHub() *Hub {
	return &Hub{listeners: make(map[string][]Listener)}
}

func topicKey(namespace, name string) string {
	return namespace + "." + name
}

// Subscribe registers a listener for (namespace, name). Listeners for
// the same topic fire in the order they were subscribed.
func (h *Hub) Subscribe(namespace, name string, l Listener) {
	h.mu.Lock()
	defer h.mu.Unlock()
	key := topicKey(namespace, name)
	h.listeners[key] = append(h.listeners[key], l)
}

// Publish delivers the event to every listener of the topic, in order.
func (h *Hub) Publish(namespace, name string, args map[string]any) {
	h.mu.RLock()
	listeners := h.listeners[topicKey(namespace, name)]
	h.mu.RUnlock()

	if len(listeners) == 0 {
		return
	}
	log.Debugf("[Events] publish %s.%s (%d listeners)", namespace, name, len(listeners))
	ev := Event{Namespace: namespace, Name: name, Args: args}
	for _, l := range listeners {
		l(ev)
	}
}

// NopPublisher discards every event. Useful when a caller does not
// care about notifications.
type NopPublisher struct{}

// Publish implements Publisher.
func (NopPublisher) Publish(string, string, map[string]any) {}
