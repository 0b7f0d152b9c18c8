package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	sseChannelBuffer = 16
	sseHeartbeat     = 30 * time.Second
)

// subscriber is a single SSE connection on one topic (a game or trivia ID).
type subscriber struct {
	ch    chan string
	topic string
}

// Broadcaster fans events out to the SSE subscribers of each session.
type Broadcaster struct {
	log *zap.Logger

	mu   sync.RWMutex
	subs map[*subscriber]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(log *zap.Logger) *Broadcaster {
	return &Broadcaster{
		log:  log,
		subs: make(map[*subscriber]struct{}),
	}
}

// Subscribe registers a subscriber on topic.
func (b *Broadcaster) Subscribe(topic string) *subscriber {
	sub := &subscriber{
		ch:    make(chan string, sseChannelBuffer),
		topic: topic,
	}
	b.mu.Lock()
	b.subs[sub] = struct{}{}
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a subscriber and closes its channel. It is safe to call
// more than once.
func (b *Broadcaster) Unsubscribe(sub *subscriber) {
	b.mu.Lock()
	if _, ok := b.subs[sub]; ok {
		delete(b.subs, sub)
		close(sub.ch)
	}
	b.mu.Unlock()
}

// Publish encodes an event of the given type and sends it to every
// subscriber of topic. Fields are merged next to "type".
func (b *Broadcaster) Publish(topic, eventType string, fields map[string]any) {
	evt := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		evt[k] = v
	}
	evt["type"] = eventType

	data, err := json.Marshal(evt)
	if err != nil {
		b.log.Error("encode event", zap.String("type", eventType), zap.Error(err))
		return
	}
	b.Broadcast(topic, string(data))
}

// Broadcast sends raw data to every subscriber of topic. Slow subscribers
// whose buffer is full miss the message.
func (b *Broadcaster) Broadcast(topic, data string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if sub.topic != topic {
			continue
		}
		select {
		case sub.ch <- data:
		default:
			b.log.Debug("dropping event for slow subscriber", zap.String("topic", topic))
		}
	}
}

// SubscriberCount returns the number of subscribers on topic.
func (b *Broadcaster) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for sub := range b.subs {
		if sub.topic == topic {
			n++
		}
	}
	return n
}

// ServeSSE streams the events of topic until the client goes away.
// initial, if set, is called once subscribed and its result is sent first,
// so no event published in between is missed.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, topic string, initial func() string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	sub := b.Subscribe(topic)
	defer b.Unsubscribe(sub)
	b.log.Debug("sse connected", zap.String("topic", topic))
	defer b.log.Debug("sse disconnected", zap.String("topic", topic))

	if initial != nil {
		if data := initial(); data != "" {
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-sub.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprint(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
