package realtime

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"rideconnect/internal/metrics"
)

var (
	ErrHubClosed     = errors.New("hub closed")
	ErrBroadcastFull = errors.New("broadcast channel full")
)

// Client is the write side of a websocket connection.
type Client interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Hub keeps the set of stream clients and broadcasts events to them from a
// single goroutine, so each client has exactly one writer.
type Hub struct {
	mu        sync.Mutex
	clients   map[Client]struct{}
	broadcast chan Event
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewHub creates a hub and starts its broadcast loop.
func NewHub() *Hub {
	h := &Hub{
		clients:   make(map[Client]struct{}),
		broadcast: make(chan Event, 100),
		done:      make(chan struct{}),
	}
	h.wg.Add(1)
	go h.run()
	return h
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case ev := <-h.broadcast:
			h.deliver(ev)
		case <-h.done:
			return
		}
	}
}

func (h *Hub) deliver(ev Event) {
	h.mu.Lock()
	targets := make([]Client, 0, len(h.clients))
	for c := range h.clients {
		targets = append(targets, c)
	}
	h.mu.Unlock()

	for _, c := range targets {
		if err := c.WriteJSON(ev); err != nil {
			logrus.WithError(err).WithField("conn_ptr", fmt.Sprintf("%p", c)).
				Info("Stream client write failed, unregistering.")
			h.Unregister(c)
			_ = c.Close()
		}
	}
}

func (h *Hub) Register(c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		return
	}
	h.clients[c] = struct{}{}
	metrics.WebsocketClients.Inc()
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", c)).Debug("Client registered with announcement hub.")
}

func (h *Hub) Unregister(c Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	metrics.WebsocketClients.Dec()
	logrus.WithField("conn_ptr", fmt.Sprintf("%p", c)).Debug("Client unregistered from announcement hub.")
}

func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Notify queues ev for broadcast without blocking the caller.
func (h *Hub) Notify(_ context.Context, ev Event) error {
	select {
	case <-h.done:
		return ErrHubClosed
	default:
	}
	select {
	case h.broadcast <- ev:
		return nil
	default:
		logrus.Warn("Announcement broadcast channel full, dropping message.")
		return ErrBroadcastFull
	}
}

// Close stops the broadcast loop and closes every client.
func (h *Hub) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		h.mu.Lock()
		defer h.mu.Unlock()
		for c := range h.clients {
			_ = c.Close()
			delete(h.clients, c)
			metrics.WebsocketClients.Dec()
		}
	})
}
