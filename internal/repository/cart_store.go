package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"beautypos/internal/model"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CartStore keeps the in-progress cart of each logged-in user.
type CartStore interface {
	// Get returns the user's cart, or an empty one when none is stored.
	Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	Save(ctx context.Context, c *model.Cart) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type redisCartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewCartStore stores carts as JSON under cart:{user_id}. An idle cart
// expires after ttl.
func NewCartStore(rdb *redis.Client, ttl time.Duration) CartStore {
	return &redisCartStore{rdb: rdb, ttl: ttl}
}

func cartKey(userID uuid.UUID) string { return "cart:" + userID.String() }

func (s *redisCartStore) Get(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	b, err := s.rdb.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cart store: get: %w", err)
	}
	var c model.Cart
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("cart store: decode: %w", err)
	}
	if c.Items == nil {
		c.Items = []model.CartItem{}
	}
	return &c, nil
}

func (s *redisCartStore) Save(ctx context.Context, c *model.Cart) error {
	b, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("cart store: encode: %w", err)
	}
	if err := s.rdb.Set(ctx, cartKey(c.UserID), b, s.ttl).Err(); err != nil {
		return fmt.Errorf("cart store: save: %w", err)
	}
	return nil
}

func (s *redisCartStore) Delete(ctx context.Context, userID uuid.UUID) error {
	return s.rdb.Del(ctx, cartKey(userID)).Err()
}
