package memory

import (
	"context"
	"maps"
	"storefront/domain"
	"sync"
	"time"
)

type cartEntry struct {
	lines   map[int64]int
	touched time.Time
}

// CartStore keeps carts in process memory. A cart not written for ttl is dropped; ttl 0 keeps carts forever.
type CartStore struct {
	mu    sync.Mutex
	carts map[string]cartEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewCartStore(ttl time.Duration) *CartStore {
	return &CartStore{
		carts: make(map[string]cartEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Get returns a copy of the stored cart, or an empty cart when id is unknown or expired.
func (s *CartStore) Get(_ context.Context, id string) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(id), nil
}

func (s *CartStore) AddItem(_ context.Context, id string, itemID int64) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(id)
	cart.Add(itemID)
	s.store(cart)
	return cart, nil
}

func (s *CartStore) RemoveItem(_ context.Context, id string, itemID int64) (*domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart := s.load(id)
	cart.Remove(itemID)
	s.store(cart)
	return cart, nil
}

func (s *CartStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, id)
	return nil
}

// load must be called with mu held.
func (s *CartStore) load(id string) *domain.Cart {
	cart := domain.NewCart(id)
	entry, ok := s.carts[id]
	if !ok {
		return cart
	}
	if s.expired(entry) {
		delete(s.carts, id)
		return cart
	}
	cart.Lines = maps.Clone(entry.lines)
	return cart
}

// store must be called with mu held. It also evicts every expired cart.
func (s *CartStore) store(cart *domain.Cart) {
	maps.DeleteFunc(s.carts, func(_ string, entry cartEntry) bool {
		return s.expired(entry)
	})

	if cart.Count() == 0 {
		delete(s.carts, cart.ID)
		return
	}
	s.carts[cart.ID] = cartEntry{lines: maps.Clone(cart.Lines), touched: s.now()}
}

func (s *CartStore) expired(entry cartEntry) bool {
	return s.ttl > 0 && s.now().Sub(entry.touched) >= s.ttl
}
