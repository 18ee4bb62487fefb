package websocket

import (
	"sync"
	"testing"
)

func TestBroadcastToUserConcurrentEviction(t *testing.T) {
	h := NewHub()

	// Clients with full send buffers look dead and must be evicted.
	for i := 0; i < 64; i++ {
		client := &Client{hub: h, send: make(chan []byte, 1), userID: 7}
		client.send <- []byte("stale")
		h.clients[client] = true
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.BroadcastToUser(7, Message{Type: "notification"})
		}()
	}
	wg.Wait()

	if got := h.GetClientCount(); got != 0 {
		t.Fatalf("expected all dead clients evicted, %d remain", got)
	}
}

func TestBroadcastToUserDelivers(t *testing.T) {
	h := NewHub()

	target := &Client{hub: h, send: make(chan []byte, 4), userID: 7}
	other := &Client{hub: h, send: make(chan []byte, 4), userID: 9}
	h.clients[target] = true
	h.clients[other] = true

	h.BroadcastToUser(7, Message{Type: "notification", Data: "hi"})

	if len(target.send) != 1 {
		t.Fatalf("expected one message for user 7, got %d", len(target.send))
	}
	if len(other.send) != 0 {
		t.Fatalf("user 9 should receive nothing, got %d", len(other.send))
	}
	if got := h.GetClientCount(); got != 2 {
		t.Fatalf("healthy clients must stay registered, got %d", got)
	}
}

func TestDropClientsIsIdempotent(t *testing.T) {
	h := NewHub()
	client := &Client{hub: h, send: make(chan []byte, 1), userID: 3}
	h.clients[client] = true

	// Two eviction attempts for the same client must close the channel once.
	h.dropClients([]*Client{client})
	h.dropClients([]*Client{client})

	if got := h.GetClientCount(); got != 0 {
		t.Fatalf("expected client removed, got %d", got)
	}
	if _, open := <-client.send; open {
		t.Fatalf("send channel should be closed")
	}
}
