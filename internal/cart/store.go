package cart

import "sync"

// Store holds the in-memory carts for every live terminal session. Carts are
// session-scoped and never persisted; a restart starts everyone empty.
//
// Mutations are total functions: no operation on the mapping can fail.
type Store struct {
	mu    sync.RWMutex
	carts map[string]map[int64]int64
}

// NewStore builds an empty cart store.
func NewStore() *Store {
	return &Store{carts: map[string]map[int64]int64{}}
}

// AddOrSetQuantity sets the quantity for a product in the session's cart.
// A quantity <= 0 removes the line entirely; zero or negative quantities are
// never stored.
func (s *Store) AddOrSetQuantity(sessionID string, productID, quantity int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cart, ok := s.carts[sessionID]
	if quantity <= 0 {
		if ok {
			delete(cart, productID)
			if len(cart) == 0 {
				delete(s.carts, sessionID)
			}
		}
		return
	}
	if !ok {
		cart = map[int64]int64{}
		s.carts[sessionID] = cart
	}
	cart[productID] = quantity
}

// Remove deletes the product line unconditionally. Absent lines are a no-op.
func (s *Store) Remove(sessionID string, productID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cart, ok := s.carts[sessionID]; ok {
		delete(cart, productID)
		if len(cart) == 0 {
			delete(s.carts, sessionID)
		}
	}
}

// Clear empties the session's cart. Called after a confirmed order submission
// or an explicit cancel.
func (s *Store) Clear(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, sessionID)
}

// Snapshot returns an immutable copy of the session's id -> quantity mapping.
// Later mutations never affect a snapshot already handed out.
func (s *Store) Snapshot(sessionID string) map[int64]int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart := s.carts[sessionID]
	copied := make(map[int64]int64, len(cart))
	for id, qty := range cart {
		copied[id] = qty
	}
	return copied
}
