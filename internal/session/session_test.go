package session

import (
	"testing"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"
)

func TestSessionLifecycle(t *testing.T) {
	s := New()
	if !s.Loading() {
		t.Fatalf("new session should start loading")
	}
	if s.Principal() != nil {
		t.Fatalf("new session should have nil principal")
	}

	p := &domain.Principal{ID: "u-1", Role: domain.RoleMember, DisplayName: "Ana"}
	s.Set(p)
	if s.Loading() {
		t.Fatalf("session should be resolved after Set")
	}
	if got := s.Principal(); got != p {
		t.Fatalf("principal not stored")
	}

	s.Clear()
	if s.Principal() != nil {
		t.Fatalf("Clear should sign out")
	}
	if s.Loading() {
		t.Fatalf("Clear resolves the state as signed out, not loading")
	}
}

func TestSessionSubscribe(t *testing.T) {
	s := New()
	var seen []*domain.Principal
	unsub := s.Subscribe(func(p *domain.Principal) { seen = append(seen, p) })

	p := &domain.Principal{ID: "u-1", Role: domain.RoleAdmin}
	s.Set(p)
	if len(seen) != 1 || seen[0] != p {
		t.Fatalf("subscriber not notified: %v", seen)
	}

	unsub()
	s.Clear()
	if len(seen) != 1 {
		t.Fatalf("unsubscribed callback still invoked")
	}
}

func TestSessionCanMutate(t *testing.T) {
	s := New()
	rec := domain.Customer{Meta: domain.Meta{ID: "c-1", OwnerID: "u-1"}}

	if s.CanMutate(rec) {
		t.Fatalf("unresolved session must not authorize mutations")
	}

	s.Set(&domain.Principal{ID: "u-2", Role: domain.RoleMember})
	if s.CanMutate(rec) {
		t.Fatalf("non-owner member authorized")
	}

	s.Set(&domain.Principal{ID: "u-1", Role: domain.RoleMember})
	if !s.CanMutate(rec) {
		t.Fatalf("owner denied")
	}
}
