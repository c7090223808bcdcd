package repository

import (
	"context"
	"sync"

	"github.com/nkefor/microservices-cicd/internal/model"
)

// OrderStore is the order record store behind the order service. Update
// replaces the stored record for its id; List returns orders in insertion
// order.
type OrderStore interface {
	Insert(ctx context.Context, o model.Order) error
	Get(ctx context.Context, id string) (model.Order, error)
	Update(ctx context.Context, o model.Order) error
	List(ctx context.Context) ([]model.Order, error)
}

// MemoryOrderStore keeps orders in a map guarded by a mutex, with a
// separate id slice so listing preserves creation order.
type MemoryOrderStore struct {
	mu     sync.Mutex
	orders map[string]model.Order
	ids    []string
}

func NewMemoryOrderStore() *MemoryOrderStore {
	return &MemoryOrderStore{orders: make(map[string]model.Order)}
}

var _ OrderStore = (*MemoryOrderStore)(nil)

func (s *MemoryOrderStore) Insert(_ context.Context, o model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; !ok {
		s.ids = append(s.ids, o.ID)
	}
	s.orders[o.ID] = o
	return nil
}

func (s *MemoryOrderStore) Get(_ context.Context, id string) (model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (s *MemoryOrderStore) Update(_ context.Context, o model.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; !ok {
		return ErrOrderNotFound
	}
	s.orders[o.ID] = o
	return nil
}

func (s *MemoryOrderStore) List(_ context.Context) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Order, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.orders[id])
	}
	return out, nil
}
