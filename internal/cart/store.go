package cart

import "sync"

// Store keeps one cart per signed-in user for the life of the process. Carts
// are never written to the database; checkout turns them into orders.
type Store struct {
	mu    sync.Mutex
	carts map[int64]Cart
}

func NewStore() *Store {
	return &Store{carts: make(map[int64]Cart)}
}

func (s *Store) Get(userID int64) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.carts[userID]
	if !ok {
		return New()
	}
	return c
}

// Update applies fn to the user's cart and stores the result. If fn fails the
// stored cart is left as it was.
func (s *Store) Update(userID int64, fn func(Cart) (Cart, error)) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.carts[userID]
	if !ok {
		current = New()
	}
	next, err := fn(current)
	if err != nil {
		return current, err
	}
	s.carts[userID] = next
	return next, nil
}

func (s *Store) Delete(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
}
