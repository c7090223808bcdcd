package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nkefor/microservices-cicd/internal/model"
)

// ProductStore is the catalog store behind the product service.
type ProductStore interface {
	List(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id string) (model.Product, error)
	Insert(ctx context.Context, p model.Product) error
	Update(ctx context.Context, p model.Product) error
	Delete(ctx context.Context, id string) error
}

// MemoryProductStore keeps products in a map guarded by a mutex, listing in
// insertion order.
type MemoryProductStore struct {
	mu       sync.Mutex
	products map[string]model.Product
	ids      []string
}

func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{products: make(map[string]model.Product)}
}

// NewSeededProductStore returns a store preloaded with the demo catalog the
// product service ships with.
func NewSeededProductStore() *MemoryProductStore {
	s := NewMemoryProductStore()
	seed := []model.Product{
		{ID: uuid.NewString(), Name: "Laptop", Description: "High-performance laptop", Price: 1299.99, Stock: 50, Category: "Electronics"},
		{ID: uuid.NewString(), Name: "Smartphone", Description: "Latest model smartphone", Price: 899.99, Stock: 100, Category: "Electronics"},
		{ID: uuid.NewString(), Name: "Headphones", Description: "Wireless noise-cancelling headphones", Price: 249.99, Stock: 75, Category: "Accessories"},
	}
	for _, p := range seed {
		_ = s.Insert(context.Background(), p)
	}
	return s
}

var _ ProductStore = (*MemoryProductStore)(nil)

func (s *MemoryProductStore) List(_ context.Context) ([]model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Product, 0, len(s.ids))
	for _, id := range s.ids {
		out = append(out, s.products[id])
	}
	return out, nil
}

func (s *MemoryProductStore) Get(_ context.Context, id string) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return model.Product{}, ErrProductNotFound
	}
	return p, nil
}

func (s *MemoryProductStore) Insert(_ context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		s.ids = append(s.ids, p.ID)
	}
	s.products[p.ID] = p
	return nil
}

func (s *MemoryProductStore) Update(_ context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return ErrProductNotFound
	}
	s.products[p.ID] = p
	return nil
}

func (s *MemoryProductStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[id]; !ok {
		return ErrProductNotFound
	}
	delete(s.products, id)
	for i, v := range s.ids {
		if v == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return nil
}
