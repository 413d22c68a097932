package session

import (
	"sync"

	"github.com/dmitrijs2005/medtrack/internal/client/models"
)

// Listener receives the principal after every change; nil means signed out.
type Listener func(p *models.Principal)

// Store is the single holder of the current principal. The zero value is
// not ready; use NewStore.
type Store struct {
	mu        sync.Mutex
	principal *models.Principal
	ready     bool
	subs      map[int]Listener
	nextID    int

	// notifyMu keeps deliveries in SetPrincipal order.
	notifyMu sync.Mutex
}

func NewStore() *Store {
	return &Store{subs: make(map[int]Listener)}
}

// Principal returns a copy of the current principal, or nil.
func (s *Store) Principal() *models.Principal {
	p, _ := s.Snapshot()
	return p
}

func (s *Store) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Snapshot returns the principal and readiness read together.
func (s *Store) Snapshot() (*models.Principal, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clonePrincipal(s.principal), s.ready
}

// SetPrincipal records an auth-state change. The first call makes the
// store ready; later calls only replace the principal. Listeners run on
// the calling goroutine after the lock is released.
func (s *Store) SetPrincipal(p *models.Principal) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.principal = clonePrincipal(p)
	s.ready = true
	subs := s.listeners()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(clonePrincipal(p))
	}
}

// Subscribe registers fn. If the store is already ready fn is called once
// right away with the current principal.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	p, ready := clonePrincipal(s.principal), s.ready
	s.mu.Unlock()

	if ready {
		fn(p)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) listeners() []Listener {
	out := make([]Listener, 0, len(s.subs))
	for i := 0; i < s.nextID; i++ {
		if fn, ok := s.subs[i]; ok {
			out = append(out, fn)
		}
	}
	return out
}

func clonePrincipal(p *models.Principal) *models.Principal {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
