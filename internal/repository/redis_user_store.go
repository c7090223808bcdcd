package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/nkefor/microservices-cicd/internal/model"
)

const (
	userKeyPrefix = "user:"
	userIndexKey  = "users"
)

// userRecord is the Redis persistence form of a user. It exists because the
// password hash is excluded from model.User's JSON form.
type userRecord struct {
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// RedisUserStore stores users as JSON values under user:<name> keys, with a
// set index for listing. Insert relies on SETNX so the username uniqueness
// invariant holds across concurrent registrations and across processes.
type RedisUserStore struct {
	rdb *redis.Client
}

func NewRedisUserStore(rdb *redis.Client) *RedisUserStore {
	return &RedisUserStore{rdb: rdb}
}

var _ UserStore = (*RedisUserStore)(nil)

func (s *RedisUserStore) Find(ctx context.Context, username string) (model.User, error) {
	raw, err := s.rdb.Get(ctx, userKeyPrefix+username).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.User{}, ErrUserNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	var rec userRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return model.User{}, err
	}
	return rec.toUser(), nil
}

func (s *RedisUserStore) Insert(ctx context.Context, u model.User) error {
	raw, err := json.Marshal(userRecord{
		Username:  u.Username,
		Password:  u.Password,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	})
	if err != nil {
		return err
	}
	ok, err := s.rdb.SetNX(ctx, userKeyPrefix+u.Username, raw, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserExists
	}
	return s.rdb.SAdd(ctx, userIndexKey, u.Username).Err()
}

func (s *RedisUserStore) List(ctx context.Context) ([]model.User, error) {
	names, err := s.rdb.SMembers(ctx, userIndexKey).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.User, 0, len(names))
	for _, name := range names {
		u, err := s.Find(ctx, name)
		if errors.Is(err, ErrUserNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, nil
}

func (r userRecord) toUser() model.User {
	return model.User{
		Username:  r.Username,
		Password:  r.Password,
		Email:     r.Email,
		Role:      r.Role,
		CreatedAt: r.CreatedAt,
	}
}
