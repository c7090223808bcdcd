package repository

import (
	"context"
	"sync"

	"github.com/nkefor/microservices-cicd/internal/model"
)

// UserStore is the credential store behind the auth service. Insert must be
// atomic with respect to Find so two concurrent registrations of the same
// username cannot both succeed.
type UserStore interface {
	Find(ctx context.Context, username string) (model.User, error)
	Insert(ctx context.Context, u model.User) error
	List(ctx context.Context) ([]model.User, error)
}

// MemoryUserStore keeps users in a map guarded by a mutex.
type MemoryUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[string]model.User)}
}

var _ UserStore = (*MemoryUserStore)(nil)

func (s *MemoryUserStore) Find(_ context.Context, username string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return model.User{}, ErrUserNotFound
	}
	return u, nil
}

func (s *MemoryUserStore) Insert(_ context.Context, u model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return ErrUserExists
	}
	s.users[u.Username] = u
	return nil
}

func (s *MemoryUserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	return out, nil
}
