// Package notify is the in-process change feed: repositories publish a
// Change after every committed mutation and screens (or the SSE endpoint)
// subscribe per collection. Notifications carry no payload; subscribers
// refetch with their own query state.
package notify

import (
	"context"
	"sync"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/listing"
)

// Hub fans out changes to collection-scoped subscribers. Slow subscribers
// never block publishers: each subscription has a small buffer and a pending
// notification is coalesced when the buffer is full (the subscriber reloads
// anyway).
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscription
}

type subscription struct {
	collection string // "" subscribes to every collection
	ch         chan listing.Change
}

func NewHub() *Hub {
	return &Hub{subs: map[int]*subscription{}}
}

// Publish delivers the change to every matching subscriber without blocking.
func (h *Hub) Publish(ch listing.Change) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if sub.collection != "" && sub.collection != ch.Collection {
			continue
		}
		select {
		case sub.ch <- ch:
		default:
			// buffer full: a reload is already owed, drop
		}
	}
}

// Subscribe implements listing.Subscriber. An empty collection receives every
// change. The subscription ends when the context is cancelled or the returned
// func runs.
func (h *Hub) Subscribe(ctx context.Context, collection string) (<-chan listing.Change, func(), error) {
	sub := &subscription{collection: collection, ch: make(chan listing.Change, 8)}

	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.subs[id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, id)
			h.mu.Unlock()
			close(sub.ch)
		})
	}

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			cancel()
		}()
	}
	return sub.ch, cancel, nil
}

// SubscriberCount reports how many subscriptions are open.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
