package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/brooklynnepley/brookskitchen-backend/internal/cart"
	"github.com/brooklynnepley/brookskitchen-backend/internal/notify"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/config"
	pkgerrors "github.com/brooklynnepley/brookskitchen-backend/pkg/errors"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/logger"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/money"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/stripe"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/types"
)

const deliveryFeeLineName = "Local Delivery"

type cartStore interface {
	Get(ctx context.Context, sessionID string) (*cart.Cart, error)
	Delete(ctx context.Context, sessionID string) error
}

type paymentClient interface {
	CreateCheckoutSession(ctx context.Context, input stripe.CreateSessionInput) (*stripe.HostedSession, error)
	GetCheckoutSession(ctx context.Context, id string) (*stripe.HostedSession, error)
}

type notifier interface {
	SendOrderNotification(ctx context.Context, order notify.Order) (*notify.Result, error)
}

type pendingStore interface {
	Park(ctx context.Context, checkoutSessionID string, pending pendingOrder) error
	Load(ctx context.Context, checkoutSessionID string) (*pendingOrder, error)
	Release(ctx context.Context, checkoutSessionID string) error
}

// Service orchestrates checkout: cash orders relay immediately, prepaid
// orders detour through the hosted payment page and confirm on return.
type Service interface {
	Submit(ctx context.Context, cartSessionID string, input SubmitInput) (*Result, error)
	Confirm(ctx context.Context, cartSessionID, checkoutSessionID string) (*Result, error)
}

type service struct {
	carts    cartStore
	payments paymentClient
	notifier notifier
	pending  pendingStore
	cfg      config.CheckoutConfig
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the checkout service. payments may be nil when the
// processor is not configured; prepay submissions then fail cleanly.
func NewService(
	carts cartStore,
	payments paymentClient,
	notifier notifier,
	pending pendingStore,
	cfg config.CheckoutConfig,
	logg *logger.Logger,
) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	if pending == nil {
		return nil, fmt.Errorf("pending order store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		carts:    carts,
		payments: payments,
		notifier: notifier,
		pending:  pending,
		cfg:      cfg,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// Submit handles the checkout form. Cash orders go straight to the owner;
// prepay orders open a hosted payment session and park the order snapshot
// until the payment is confirmed.
func (s *service) Submit(ctx context.Context, cartSessionID string, input SubmitInput) (*Result, error) {
	if err := validateSubmitInput(input); err != nil {
		return nil, err
	}

	loaded, err := s.carts.Get(ctx, cartSessionID)
	if err != nil {
		return nil, err
	}
	if loaded.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	order := s.buildOrder(input, loaded)

	if input.PaymentOption == PaymentOptionCash {
		return s.relayAndFinish(ctx, cartSessionID, order, false)
	}

	if s.payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "online payment is not configured")
	}

	session, err := s.payments.CreateCheckoutSession(ctx, s.buildSessionInput(order))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe: create checkout session")
	}

	if err := s.pending.Park(ctx, session.ID, pendingOrder{
		CartSessionID: cartSessionID,
		Order:         order,
	}); err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithField(ctx, "checkout_session", session.ID), "hosted payment session created")
	return &Result{
		Status:            StatusRedirect,
		RedirectURL:       session.URL,
		CheckoutSessionID: session.ID,
	}, nil
}

// Confirm verifies a returned payment session with the processor and, once
// paid, relays the parked order. The URL parameter alone is never trusted.
func (s *service) Confirm(ctx context.Context, cartSessionID, checkoutSessionID string) (*Result, error) {
	if strings.TrimSpace(checkoutSessionID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session_id is required")
	}
	if s.payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "online payment is not configured")
	}

	session, err := s.payments.GetCheckoutSession(ctx, checkoutSessionID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "stripe: load checkout session")
	}
	if !session.Paid() {
		return nil, pkgerrors.New(pkgerrors.CodePayment, "payment has not completed").
			WithDetails(map[string]string{"payment_status": session.PaymentStatus})
	}

	pending, err := s.pending.Load(ctx, checkoutSessionID)
	if err != nil {
		return nil, err
	}
	if pending.CartSessionID != cartSessionID {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout session belongs to another cart")
	}

	result, err := s.relayAndFinish(ctx, cartSessionID, pending.Order, true)
	if err != nil {
		return nil, err
	}
	if result.Status == StatusSubmitted {
		if err := s.pending.Release(ctx, checkoutSessionID); err != nil {
			s.logg.Error(ctx, "release pending order", err)
		}
	}
	return result, nil
}

func (s *service) relayAndFinish(ctx context.Context, cartSessionID string, order notify.Order, prepaid bool) (*Result, error) {
	outcome, err := s.notifier.SendOrderNotification(ctx, order)
	if err != nil {
		return nil, err
	}

	switch outcome.Outcome {
	case notify.OutcomeDelivered:
		if err := s.carts.Delete(ctx, cartSessionID); err != nil {
			// The order already reached the owner; a stale cart is the
			// lesser problem.
			s.logg.Error(ctx, "clear cart after order", err)
		}
		notice := types.NewNotice(types.NoticeSuccess, "Order Submitted!", successMessage(prepaid), 5)
		return &Result{Status: StatusSubmitted, Notice: &notice, Receipt: outcome.Receipt}, nil
	case notify.OutcomeManual:
		notice := types.NewNotice(types.NoticeError, "Order Failed",
			"There was an issue sending your order. Please try again or contact Brook directly.", 5)
		return &Result{Status: StatusManual, Notice: &notice, OwnerEmail: outcome.OwnerEmail}, nil
	default:
		notice := types.NewNotice(types.NoticeError, "Order Failed",
			"There was an issue sending your order. Please try again or contact Brook directly.", 5)
		return &Result{Status: StatusFailed, Notice: &notice}, nil
	}
}

func successMessage(prepaid bool) string {
	if prepaid {
		return "Payment processed and order sent to Brook! Check your email for receipt."
	}
	return "Order sent to Brook! Check your email for receipt."
}

func (s *service) buildOrder(input SubmitInput, loaded *cart.Cart) notify.Order {
	totals := s.computeTotals(loaded, input.DeliveryOption)

	items := make([]notify.OrderItem, 0, len(loaded.Lines))
	for _, line := range loaded.Lines {
		items = append(items, notify.OrderItem{
			Name:           line.Name,
			PackSize:       line.PackSize,
			UnitPriceCents: line.UnitPriceCents,
			Quantity:       line.Quantity,
		})
	}

	return notify.Order{
		CustomerName:        strings.TrimSpace(input.CustomerName),
		CustomerEmail:       strings.TrimSpace(input.CustomerEmail),
		CustomerPhone:       strings.TrimSpace(input.CustomerPhone),
		CustomerAddress:     strings.TrimSpace(input.CustomerAddress),
		DeliveryOption:      input.DeliveryOption,
		SpecialInstructions: strings.TrimSpace(input.SpecialInstructions),
		Items:               items,
		SubtotalCents:       totals.SubtotalCents,
		DeliveryFeeCents:    totals.DeliveryFeeCents,
		TotalCents:          totals.TotalCents,
		PlacedAt:            s.now(),
	}
}

func (s *service) computeTotals(loaded *cart.Cart, option notify.DeliveryOption) Totals {
	subtotal := money.ToMinorUnits(loaded.Subtotal())
	fee := int64(0)
	if option == notify.DeliveryOptionDelivery {
		fee = s.cfg.DeliveryFeeCents
	}
	return Totals{
		SubtotalCents:    subtotal,
		DeliveryFeeCents: fee,
		TotalCents:       subtotal + fee,
	}
}

func (s *service) buildSessionInput(order notify.Order) stripe.CreateSessionInput {
	lineItems := make([]stripe.CheckoutLineItem, 0, len(order.Items)+1)
	for _, item := range order.Items {
		lineItems = append(lineItems, stripe.CheckoutLineItem{
			Name:        item.Name,
			Description: fmt.Sprintf("%s - %d %s", item.PackSize, item.Quantity, pluralizePacks(item.Quantity)),
			UnitPrice:   money.FromMinorUnits(item.UnitPriceCents),
			Quantity:    item.Quantity,
		})
	}
	if order.DeliveryFeeCents > 0 {
		lineItems = append(lineItems, stripe.CheckoutLineItem{
			Name:        deliveryFeeLineName,
			Description: "Flat delivery fee",
			UnitPrice:   money.FromMinorUnits(order.DeliveryFeeCents),
			Quantity:    1,
		})
	}

	return stripe.CreateSessionInput{
		Currency:      s.cfg.Currency,
		CustomerEmail: order.CustomerEmail,
		CustomerName:  order.CustomerName,
		LineItems:     lineItems,
		SuccessURL:    s.cfg.SuccessURL(),
		CancelURL:     s.cfg.CancelURL(),
	}
}

func pluralizePacks(quantity int) string {
	if quantity > 1 {
		return "packs"
	}
	return "pack"
}

func validateSubmitInput(input SubmitInput) error {
	if strings.TrimSpace(input.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.CustomerEmail) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if strings.TrimSpace(input.CustomerPhone) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone is required")
	}
	if strings.TrimSpace(input.CustomerAddress) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "address is required")
	}
	if !input.DeliveryOption.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "delivery option must be delivery or pickup")
	}
	if !input.PaymentOption.Valid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment option must be cash or prepay")
	}
	return nil
}
