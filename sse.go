package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	sseChannelBuffer = 16
	sseHeartbeat     = 30 * time.Second
)

// Broadcast topics. Timer sessions use their own ID as topic.
const clockTopic = "clock"

// client represents a single SSE connection.
type client struct {
	ch    chan string
	topic string
}

// Broadcaster manages SSE clients grouped by topic.
type Broadcaster struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		clients: make(map[*client]struct{}),
	}
}

// Register adds a client for a topic and returns it.
func (b *Broadcaster) Register(topic string) *client {
	c := &client{
		ch:    make(chan string, sseChannelBuffer),
		topic: topic,
	}
	b.mu.Lock()
	b.clients[c] = struct{}{}
	b.mu.Unlock()
	return c
}

// Unregister removes a client and closes its channel.
func (b *Broadcaster) Unregister(c *client) {
	b.mu.Lock()
	if _, ok := b.clients[c]; ok {
		delete(b.clients, c)
		close(c.ch)
	}
	b.mu.Unlock()
}

// Broadcast sends a message to all clients of a topic.
func (b *Broadcaster) Broadcast(topic, data string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for c := range b.clients {
		if c.topic == topic {
			select {
			case c.ch <- data:
			default:
				// Channel full, skip slow client.
			}
		}
	}
}

// BroadcastJSON encodes v and sends it to all clients of a topic.
func (b *Broadcaster) BroadcastJSON(topic string, v any) {
	if msg, ok := encodeEvent(topic, v); ok {
		b.Broadcast(topic, msg)
	}
}

func encodeEvent(topic string, v any) (string, bool) {
	evt, err := json.Marshal(v)
	if err != nil {
		slog.Error("encodage de l'événement", "topic", topic, "err", err)
		return "", false
	}
	return string(evt), true
}

// ClientCount returns the number of connected clients for a topic.
func (b *Broadcaster) ClientCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	n := 0
	for c := range b.clients {
		if c.topic == topic {
			n++
		}
	}
	return n
}

// ServeSSE streams a topic to the client until the request ends. When
// snapshot is not nil its result is sent first, since broadcasts only
// carry changes.
func (b *Broadcaster) ServeSSE(w http.ResponseWriter, r *http.Request, topic string, snapshot func() any) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming non supporté", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	c := b.Register(topic)
	defer b.Unregister(c)

	if snapshot != nil {
		if msg, ok := encodeEvent(topic, snapshot()); ok {
			c.ch <- msg
		}
	}

	ticker := time.NewTicker(sseHeartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-c.ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		case <-ticker.C:
			fmt.Fprintf(w, ": heartbeat\n\n")
			flusher.Flush()
		}
	}
}
