package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	pkgerrors "github.com/brooklynnepley/brookskitchen-backend/pkg/errors"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/redis"
)

type keyValueStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
}

// Store persists session carts in Redis as JSON blobs with a sliding TTL.
type Store struct {
	kv  keyValueStore
	ttl time.Duration
}

// NewStore builds a cart store. ttl bounds how long an idle cart survives.
func NewStore(kv keyValueStore, ttl time.Duration) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("key-value store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("cart ttl must be positive")
	}
	return &Store{kv: kv, ttl: ttl}, nil
}

// Get loads the session's cart. A missing key yields an empty cart.
func (s *Store) Get(ctx context.Context, sessionID string) (*Cart, error) {
	raw, err := s.kv.Get(ctx, s.kv.CartKey(sessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return NewCart(sessionID), nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: load cart")
	}

	var cart Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		// A corrupt blob is unrecoverable; start the session over.
		return NewCart(sessionID), nil
	}
	cart.SessionID = sessionID
	return &cart, nil
}

// Save writes the cart back, refreshing the TTL.
func (s *Store) Save(ctx context.Context, cart *Cart) error {
	if cart == nil || cart.SessionID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session is required")
	}
	cart.UpdatedAt = time.Now().UTC()

	payload, err := json.Marshal(cart)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal cart")
	}
	if err := s.kv.Set(ctx, s.kv.CartKey(cart.SessionID), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: save cart")
	}
	return nil
}

// Delete drops the session's cart entirely.
func (s *Store) Delete(ctx context.Context, sessionID string) error {
	if err := s.kv.Del(ctx, s.kv.CartKey(sessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: delete cart")
	}
	return nil
}
