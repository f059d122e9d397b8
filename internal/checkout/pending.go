package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/brooklynnepley/brookskitchen-backend/internal/notify"
	pkgerrors "github.com/brooklynnepley/brookskitchen-backend/pkg/errors"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/redis"
)

type pendingKV interface {
	Get(ctx context.Context, key string) (string, error)
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Del(ctx context.Context, keys ...string) error
	PendingOrderKey(checkoutSessionID string) string
}

// pendingOrder is the snapshot parked while the buyer is on the hosted
// payment page. It bridges the redirect gap without persisting orders.
type pendingOrder struct {
	CartSessionID string       `json:"cart_session_id"`
	Order         notify.Order `json:"order"`
}

// PendingStore parks order snapshots in Redis keyed by payment session ID.
type PendingStore struct {
	kv  pendingKV
	ttl time.Duration
}

// NewPendingStore builds the pending-order store. ttl bounds how long an
// unpaid session keeps its snapshot.
func NewPendingStore(kv pendingKV, ttl time.Duration) (*PendingStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("key-value store required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("pending order ttl must be positive")
	}
	return &PendingStore{kv: kv, ttl: ttl}, nil
}

// Park stores the snapshot. A duplicate session ID is a conflict.
func (p *PendingStore) Park(ctx context.Context, checkoutSessionID string, pending pendingOrder) error {
	payload, err := json.Marshal(pending)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal pending order")
	}
	ok, err := p.kv.SetNX(ctx, p.kv.PendingOrderKey(checkoutSessionID), payload, p.ttl)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: park pending order")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "checkout session already pending")
	}
	return nil
}

// Load retrieves the snapshot for a payment session.
func (p *PendingStore) Load(ctx context.Context, checkoutSessionID string) (*pendingOrder, error) {
	raw, err := p.kv.Get(ctx, p.kv.PendingOrderKey(checkoutSessionID))
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pending order not found or expired")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: load pending order")
	}
	var pending pendingOrder
	if err := json.Unmarshal([]byte(raw), &pending); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "unmarshal pending order")
	}
	return &pending, nil
}

// Release drops the snapshot once the order is handed off.
func (p *PendingStore) Release(ctx context.Context, checkoutSessionID string) error {
	if err := p.kv.Del(ctx, p.kv.PendingOrderKey(checkoutSessionID)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis: release pending order")
	}
	return nil
}
