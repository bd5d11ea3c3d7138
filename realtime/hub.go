package realtime

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Hub fans event payloads out to subscribers keyed by channel name.
// Delivery is best-effort: emitting to a channel with no subscribers is
// a no-op, and slow subscribers have messages dropped rather than
// blocking the emitter.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscriber]struct{}
}

// Subscriber receives raw JSON payloads for one channel.
type Subscriber struct {
	Messages chan []byte
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscriber]struct{})}
}

// Channel key conventions used across the services.

func ProgressChannel(userID, courseID uint) string {
	return fmt.Sprintf("progress:%d:%d", userID, courseID)
}

func NotificationChannel(userID uint) string {
	return fmt.Sprintf("notifications:%d", userID)
}

// Subscribe registers a new subscriber on the given channel.
func (h *Hub) Subscribe(channel string) *Subscriber {
	sub := &Subscriber{Messages: make(chan []byte, 16)}
	h.mu.Lock()
	if h.subs[channel] == nil {
		h.subs[channel] = make(map[*Subscriber]struct{})
	}
	h.subs[channel][sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the subscriber and closes its message channel.
func (h *Hub) Unsubscribe(channel string, sub *Subscriber) {
	h.mu.Lock()
	if set, ok := h.subs[channel]; ok {
		if _, ok := set[sub]; ok {
			delete(set, sub)
			close(sub.Messages)
		}
		if len(set) == 0 {
			delete(h.subs, channel)
		}
	}
	h.mu.Unlock()
}

// Emit serializes the payload and delivers it to every subscriber of the
// channel. Failures never propagate to the caller.
func (h *Hub) Emit(channel string, payload map[string]interface{}) {
	raw, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[REALTIME] failed to marshal payload for %s: %v", channel, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[channel] {
		select {
		case sub.Messages <- raw:
		default:
			// subscriber is not draining, drop the message
		}
	}
}
