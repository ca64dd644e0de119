package notify

import (
	"context"
	"testing"
	"time"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/listing"
)

func TestHubScopedDelivery(t *testing.T) {
	h := NewHub()
	ctx := context.Background()

	customers, _, err := h.Subscribe(ctx, "customers")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	products, _, err := h.Subscribe(ctx, "products")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	all, _, err := h.Subscribe(ctx, "")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	h.Publish(listing.Change{Kind: listing.ChangeInsert, Collection: "customers"})

	select {
	case ch := <-customers:
		if ch.Collection != "customers" || ch.Kind != listing.ChangeInsert {
			t.Fatalf("mudança errada: %+v", ch)
		}
	case <-time.After(time.Second):
		t.Fatalf("assinante da coleção não recebeu")
	}

	select {
	case <-all:
	case <-time.After(time.Second):
		t.Fatalf("assinante global não recebeu")
	}

	select {
	case ch := <-products:
		t.Fatalf("assinante de outra coleção recebeu: %+v", ch)
	default:
	}
}

func TestHubUnsubscribe(t *testing.T) {
	h := NewHub()
	ch, unsub, err := h.Subscribe(context.Background(), "customers")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if h.SubscriberCount() != 1 {
		t.Fatalf("count = %d", h.SubscriberCount())
	}

	unsub()
	unsub() // idempotent
	if h.SubscriberCount() != 0 {
		t.Fatalf("assinatura não removida")
	}
	if _, ok := <-ch; ok {
		t.Fatalf("canal deveria estar fechado")
	}

	// publishing after unsubscribe must not panic
	h.Publish(listing.Change{Kind: listing.ChangeDelete, Collection: "customers"})
}

func TestHubContextCancelEndsSubscription(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	ch, _, err := h.Subscribe(ctx, "customers")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for h.SubscriberCount() != 0 && time.Now().Before(deadline) {
		time.Sleep(2 * time.Millisecond)
	}
	if h.SubscriberCount() != 0 {
		t.Fatalf("cancelamento do contexto não encerrou assinatura")
	}
	if _, ok := <-ch; ok {
		t.Fatalf("canal deveria estar fechado após cancelamento")
	}
}

func TestHubNeverBlocksPublisher(t *testing.T) {
	h := NewHub()
	_, _, err := h.Subscribe(context.Background(), "customers")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.Publish(listing.Change{Kind: listing.ChangeUpdate, Collection: "customers"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("publicador bloqueado por assinante lento")
	}
}
