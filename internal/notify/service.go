package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/brooklynnepley/brookskitchen-backend/pkg/errors"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/formrelay"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/logger"
)

const receiptTimeout = 15 * time.Second

// Outcome classifies what happened to the owner notification.
type Outcome string

const (
	// OutcomeDelivered means the webhook accepted the order email.
	OutcomeDelivered Outcome = "delivered"
	// OutcomeRejected means the webhook answered with a non-2xx status.
	OutcomeRejected Outcome = "rejected"
	// OutcomeManual means the webhook was unreachable; the composed email is
	// handed back so the buyer can send it themselves.
	OutcomeManual Outcome = "manual"
)

// Result reports the notification outcome. OwnerEmail is populated only for
// the manual fallback; Receipt only on delivery, so the storefront can show
// it to the buyer with copy/mailto actions.
type Result struct {
	Outcome    Outcome
	OwnerEmail *formrelay.OrderEmailPayload
	Receipt    *formrelay.OrderEmailPayload
}

// Delivered reports whether the owner received the order.
func (r *Result) Delivered() bool {
	return r != nil && r.Outcome == OutcomeDelivered
}

type relayClient interface {
	Submit(ctx context.Context, payload formrelay.OrderEmailPayload) error
}

// Service relays completed orders to the shop owner and receipts to buyers.
type Service interface {
	SendOrderNotification(ctx context.Context, order Order) (*Result, error)
}

type service struct {
	relay relayClient
	cfg   EmailConfig
	logg  *logger.Logger
}

// NewService constructs the notification service.
func NewService(relay relayClient, cfg EmailConfig, logg *logger.Logger) (Service, error) {
	if relay == nil {
		return nil, fmt.Errorf("relay client required")
	}
	if strings.TrimSpace(cfg.OwnerEmail) == "" {
		return nil, fmt.Errorf("owner email required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{relay: relay, cfg: cfg, logg: logg}, nil
}

// SendOrderNotification emails the order to the shop owner. On success the
// customer receipt goes out asynchronously; its failure never fails the order.
func (s *service) SendOrderNotification(ctx context.Context, order Order) (*Result, error) {
	if err := validateOrder(order); err != nil {
		return nil, err
	}
	if order.PlacedAt.IsZero() {
		order.PlacedAt = time.Now()
	}

	ownerEmail := BuildOwnerEmail(order, s.cfg)

	err := s.relay.Submit(ctx, ownerEmail)
	if err == nil {
		s.logg.Info(ctx, "order notification delivered to owner")
		receipt := s.sendReceiptAsync(order)
		return &Result{Outcome: OutcomeDelivered, Receipt: &receipt}, nil
	}

	var statusErr *formrelay.StatusError
	if errors.As(err, &statusErr) {
		s.logg.Warn(s.logg.WithField(ctx, "relay_status", statusErr.StatusCode), "order notification rejected by relay")
		return &Result{Outcome: OutcomeRejected}, nil
	}

	s.logg.Error(ctx, "order notification relay unreachable", err)
	return &Result{Outcome: OutcomeManual, OwnerEmail: &ownerEmail}, nil
}

func (s *service) sendReceiptAsync(order Order) formrelay.OrderEmailPayload {
	receipt := BuildCustomerReceipt(order, s.cfg)

	// Detached from the request context so a fast response does not cancel
	// the receipt send.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.Background(), receiptTimeout)
		defer cancel()
		if err := s.relay.Submit(sendCtx, receipt); err != nil {
			s.logg.Warn(context.Background(), "customer receipt send failed: "+err.Error())
		}
	}()
	return receipt
}

func validateOrder(order Order) error {
	if strings.TrimSpace(order.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}
	if strings.TrimSpace(order.CustomerEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer email is required")
	}
	if !order.DeliveryOption.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery option must be delivery or pickup")
	}
	if len(order.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order has no items")
	}
	return nil
}
