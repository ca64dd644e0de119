// Package session holds the authenticated-principal state shared by every
// controller. It replaces ambient global auth state with an injected object:
// controllers read the principal on demand and subscribe to changes instead of
// caching authorization decisions.
package session

import (
	"sync"

	"github.com/MiltonTSilva/ContasReceber-sub000/internal/domain"
)

// Session is safe for concurrent use. A nil principal with Loading()==true
// means "auth state not yet resolved"; with Loading()==false it means
// "signed out".
type Session struct {
	mu        sync.RWMutex
	principal *domain.Principal
	loading   bool
	nextSub   int
	subs      map[int]func(*domain.Principal)
}

func New() *Session {
	return &Session{loading: true, subs: map[int]func(*domain.Principal){}}
}

// Principal returns the current principal, or nil.
func (s *Session) Principal() *domain.Principal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.principal
}

// Loading reports whether the auth state is still unresolved. While true,
// authorization checks must treat the answer as unknown, not denied.
func (s *Session) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Set resolves the session to the given principal (nil = signed out) and
// notifies subscribers.
func (s *Session) Set(p *domain.Principal) {
	s.mu.Lock()
	s.principal = p
	s.loading = false
	subs := make([]func(*domain.Principal), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
}

// Clear signs the session out.
func (s *Session) Clear() { s.Set(nil) }

// Subscribe registers a callback for session changes and returns an
// unsubscribe function.
func (s *Session) Subscribe(fn func(*domain.Principal)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// CanMutate applies the shared ownership policy against the current session
// state. It answers false while the auth state is unresolved; callers that
// need "unknown" instead should check Loading() first.
func (s *Session) CanMutate(rec domain.Owned) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.loading {
		return false
	}
	return domain.CanMutate(s.principal, rec)
}
