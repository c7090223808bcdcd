package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/nkefor/microservices-cicd/internal/model"
)

const (
	orderKeyPrefix = "order:"
	orderIndexKey  = "orders"
)

// RedisOrderStore stores orders as JSON values under order:<id> keys. A list
// index keeps creation order for listing and stats.
type RedisOrderStore struct {
	rdb *redis.Client
}

func NewRedisOrderStore(rdb *redis.Client) *RedisOrderStore {
	return &RedisOrderStore{rdb: rdb}
}

var _ OrderStore = (*RedisOrderStore)(nil)

func (s *RedisOrderStore) Insert(ctx context.Context, o model.Order) error {
	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}
	created, err := s.rdb.SetNX(ctx, orderKeyPrefix+o.ID, raw, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		// Same id written twice keeps a single index entry.
		return s.rdb.Set(ctx, orderKeyPrefix+o.ID, raw, 0).Err()
	}
	return s.rdb.RPush(ctx, orderIndexKey, o.ID).Err()
}

func (s *RedisOrderStore) Get(ctx context.Context, id string) (model.Order, error) {
	raw, err := s.rdb.Get(ctx, orderKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Order{}, ErrOrderNotFound
	}
	if err != nil {
		return model.Order{}, err
	}
	var o model.Order
	if err := json.Unmarshal(raw, &o); err != nil {
		return model.Order{}, err
	}
	return o, nil
}

func (s *RedisOrderStore) Update(ctx context.Context, o model.Order) error {
	n, err := s.rdb.Exists(ctx, orderKeyPrefix+o.ID).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrOrderNotFound
	}
	raw, err := json.Marshal(o)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, orderKeyPrefix+o.ID, raw, 0).Err()
}

func (s *RedisOrderStore) List(ctx context.Context) ([]model.Order, error) {
	ids, err := s.rdb.LRange(ctx, orderIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]model.Order, 0, len(ids))
	for _, id := range ids {
		o, err := s.Get(ctx, id)
		if errors.Is(err, ErrOrderNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, nil
}
