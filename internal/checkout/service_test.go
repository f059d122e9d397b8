package checkout

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/brooklynnepley/brookskitchen-backend/internal/cart"
	"github.com/brooklynnepley/brookskitchen-backend/internal/notify"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/config"
	pkgerrors "github.com/brooklynnepley/brookskitchen-backend/pkg/errors"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/formrelay"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/logger"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/stripe"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/types"
)

type fakeCartStore struct {
	carts   map[string]*cart.Cart
	deleted []string
}

func newFakeCartStore() *fakeCartStore {
	return &fakeCartStore{carts: map[string]*cart.Cart{}}
}

func (f *fakeCartStore) Get(ctx context.Context, sessionID string) (*cart.Cart, error) {
	if loaded, ok := f.carts[sessionID]; ok {
		return loaded, nil
	}
	return cart.NewCart(sessionID), nil
}

func (f *fakeCartStore) Delete(ctx context.Context, sessionID string) error {
	f.deleted = append(f.deleted, sessionID)
	delete(f.carts, sessionID)
	return nil
}

type fakePayments struct {
	createCalls   int
	lastInput     stripe.CreateSessionInput
	createSession *stripe.HostedSession
	createErr     error
	getSession    *stripe.HostedSession
	getErr        error
}

func (f *fakePayments) CreateCheckoutSession(ctx context.Context, input stripe.CreateSessionInput) (*stripe.HostedSession, error) {
	f.createCalls++
	f.lastInput = input
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createSession, nil
}

func (f *fakePayments) GetCheckoutSession(ctx context.Context, id string) (*stripe.HostedSession, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getSession, nil
}

type fakeNotifier struct {
	result *notify.Result
	err    error
	orders []notify.Order
}

func (f *fakeNotifier) SendOrderNotification(ctx context.Context, order notify.Order) (*notify.Result, error) {
	f.orders = append(f.orders, order)
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakePendingStore struct {
	parked   map[string]pendingOrder
	released []string
}

func newFakePendingStore() *fakePendingStore {
	return &fakePendingStore{parked: map[string]pendingOrder{}}
}

func (f *fakePendingStore) Park(ctx context.Context, checkoutSessionID string, pending pendingOrder) error {
	if _, ok := f.parked[checkoutSessionID]; ok {
		return pkgerrors.New(pkgerrors.CodeConflict, "checkout session already pending")
	}
	f.parked[checkoutSessionID] = pending
	return nil
}

func (f *fakePendingStore) Load(ctx context.Context, checkoutSessionID string) (*pendingOrder, error) {
	pending, ok := f.parked[checkoutSessionID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pending order not found or expired")
	}
	return &pending, nil
}

func (f *fakePendingStore) Release(ctx context.Context, checkoutSessionID string) error {
	f.released = append(f.released, checkoutSessionID)
	delete(f.parked, checkoutSessionID)
	return nil
}

type testDeps struct {
	carts    *fakeCartStore
	payments *fakePayments
	notifier *fakeNotifier
	pending  *fakePendingStore
}

func testCheckoutConfig() config.CheckoutConfig {
	return config.CheckoutConfig{
		Currency:         "usd",
		DeliveryFeeCents: 500,
		SiteURL:          "https://brookskitchen.com",
		CartTTL:          24 * time.Hour,
		PendingOrderTTL:  time.Hour,
	}
}

func newTestService(t *testing.T) (Service, *testDeps) {
	t.Helper()
	deps := &testDeps{
		carts:    newFakeCartStore(),
		payments: &fakePayments{},
		notifier: &fakeNotifier{result: &notify.Result{Outcome: notify.OutcomeDelivered}},
		pending:  newFakePendingStore(),
	}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	svc, err := NewService(deps.carts, deps.payments, deps.notifier, deps.pending, testCheckoutConfig(), logg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, deps
}

func seedCart(deps *testDeps, sessionID string) {
	loaded := cart.NewCart(sessionID)
	loaded.Lines = []cart.Line{
		{ProductID: uuid.New(), Name: "Blueberry Muffins", PackSize: "4 per pack", UnitPriceCents: 1200, Quantity: 1},
		{ProductID: uuid.New(), Name: "Cinnamon Rolls", PackSize: "4 per pack", UnitPriceCents: 1500, Quantity: 1},
	}
	deps.carts.carts[sessionID] = loaded
}

func cashInput() SubmitInput {
	return SubmitInput{
		CustomerName:    "Jane Doe",
		CustomerEmail:   "jane@example.com",
		CustomerPhone:   "555-0100",
		CustomerAddress: "12 Main St",
		DeliveryOption:  notify.DeliveryOptionPickup,
		PaymentOption:   PaymentOptionCash,
	}
}

func deliveryPrepayInput() SubmitInput {
	input := cashInput()
	input.DeliveryOption = notify.DeliveryOptionDelivery
	input.PaymentOption = PaymentOptionPrepay
	return input
}

func TestSubmitCashNeverOpensPaymentSession(t *testing.T) {
	svc, deps := newTestService(t)
	seedCart(deps, "sess-1")

	result, err := svc.Submit(context.Background(), "sess-1", cashInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Status != StatusSubmitted {
		t.Fatalf("expected submitted, got %s", result.Status)
	}
	if deps.payments.createCalls != 0 {
		t.Fatalf("cash checkout must not touch the processor, got %d calls", deps.payments.createCalls)
	}
	if len(deps.carts.deleted) != 1 {
		t.Fatal("expected cart cleared after delivered order")
	}
	if result.Notice == nil || result.Notice.Kind != types.NoticeSuccess {
		t.Fatalf("expected success notice, got %+v", result.Notice)
	}
}

func TestSubmitDeliveredCarriesReceipt(t *testing.T) {
	svc, deps := newTestService(t)
	seedCart(deps, "sess-1")
	receipt := formrelay.OrderEmailPayload{To: "jane@example.com", Subject: "Order Confirmation - Brook's Kitchen"}
	deps.notifier.result = &notify.Result{Outcome: notify.OutcomeDelivered, Receipt: &receipt}

	result, err := svc.Submit(context.Background(), "sess-1", cashInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Receipt == nil || result.Receipt.To != "jane@example.com" {
		t.Fatalf("expected receipt in result, got %+v", result.Receipt)
	}
}

func TestSubmitComputesDeliveryTotals(t *testing.T) {
	svc, deps := newTestService(t)
	seedCart(deps, "sess-1")
	deps.payments.createSession = &stripe.HostedSession{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}

	if _, err := svc.Submit(context.Background(), "sess-1", deliveryPrepayInput()); err != nil {
		t.Fatalf("submit: %v", err)
	}

	parked, ok := deps.pending.parked["cs_test_1"]
	if !ok {
		t.Fatal("expected pending order parked")
	}
	if parked.Order.SubtotalCents != 2700 {
		t.Fatalf("expected subtotal 2700, got %d", parked.Order.SubtotalCents)
	}
	if parked.Order.DeliveryFeeCents != 500 {
		t.Fatalf("expected fee 500, got %d", parked.Order.DeliveryFeeCents)
	}
	if parked.Order.TotalCents != 3200 {
		t.Fatalf("expected total 3200, got %d", parked.Order.TotalCents)
	}
}

func TestSubmitPickupHasNoDeliveryFee(t *testing.T) {
	svc, deps := newTestService(t)
	seedCart(deps, "sess-1")

	if _, err := svc.Submit(context.Background(), "sess-1", cashInput()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	order := deps.notifier.orders[0]
	if order.DeliveryFeeCents != 0 {
		t.Fatalf("expected no fee for pickup, got %d", order.DeliveryFeeCents)
	}
	if order.TotalCents != order.SubtotalCents {
		t.Fatalf("expected total == subtotal, got %d vs %d", order.TotalCents, order.SubtotalCents)
	}
}

func TestSubmitPrepayAlwaysOpensPaymentSession(t *testing.T) {
	svc, deps := newTestService(t)
	seedCart(deps, "sess-1")
	deps.payments.createSession = &stripe.HostedSession{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}

	result, err := svc.Submit(context.Background(), "sess-1", deliveryPrepayInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Status != StatusRedirect {
		t.Fatalf("expected redirect, got %s", result.Status)
	}
	if result.RedirectURL != "https://pay.example/cs_test_1" {
		t.Fatalf("unexpected redirect url %q", result.RedirectURL)
	}
	if deps.payments.createCalls != 1 {
		t.Fatalf("expected one session, got %d", deps.payments.createCalls)
	}
	if len(deps.notifier.orders) != 0 {
		t.Fatal("prepay must not notify before payment confirms")
	}
	if len(deps.carts.deleted) != 0 {
		t.Fatal("prepay must not clear the cart before payment confirms")
	}

	// Delivery fee rides along as its own line item.
	items := deps.payments.lastInput.LineItems
	last := items[len(items)-1]
	if last.Name != "Local Delivery" || last.Quantity != 1 {
		t.Fatalf("unexpected fee line %+v", last)
	}
	if got := last.UnitPrice.StringFixed(2); got != "5.00" {
		t.Fatalf("expected 5.00 fee line, got %s", got)
	}
}

func TestSubmitFailedRelayPreservesCart(t *testing.T) {
	svc, deps := newTestService(t)
	seedCart(deps, "sess-1")
	deps.notifier.result = &notify.Result{Outcome: notify.OutcomeRejected}

	result, err := svc.Submit(context.Background(), "sess-1", cashInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if len(deps.carts.deleted) != 0 {
		t.Fatal("failed relay must preserve the cart")
	}
	if result.Notice == nil || result.Notice.Kind != types.NoticeError {
		t.Fatalf("expected error notice, got %+v", result.Notice)
	}
}

func TestSubmitManualFallbackReturnsEmail(t *testing.T) {
	svc, deps := newTestService(t)
	seedCart(deps, "sess-1")
	deps.notifier.result = &notify.Result{
		Outcome:    notify.OutcomeManual,
		OwnerEmail: &formrelay.OrderEmailPayload{Subject: "New Order from Jane Doe - Brook's Kitchen"},
	}

	result, err := svc.Submit(context.Background(), "sess-1", cashInput())
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.Status != StatusManual {
		t.Fatalf("expected manual, got %s", result.Status)
	}
	if result.OwnerEmail == nil {
		t.Fatal("manual result must include the composed email")
	}
	if len(deps.carts.deleted) != 0 {
		t.Fatal("manual fallback must preserve the cart")
	}
}

func TestSubmitEmptyCart(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), "sess-1", cashInput())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSubmitValidation(t *testing.T) {
	svc, deps := newTestService(t)
	seedCart(deps, "sess-1")

	tests := []struct {
		name  string
		tweak func(*SubmitInput)
	}{
		{"missing name", func(in *SubmitInput) { in.CustomerName = " " }},
		{"missing email", func(in *SubmitInput) { in.CustomerEmail = "" }},
		{"missing phone", func(in *SubmitInput) { in.CustomerPhone = "" }},
		{"missing address", func(in *SubmitInput) { in.CustomerAddress = " " }},
		{"bad delivery option", func(in *SubmitInput) { in.DeliveryOption = "courier" }},
		{"bad payment option", func(in *SubmitInput) { in.PaymentOption = "credit" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := cashInput()
			tt.tweak(&input)
			_, err := svc.Submit(context.Background(), "sess-1", input)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func confirmFixture(t *testing.T) (Service, *testDeps) {
	t.Helper()
	svc, deps := newTestService(t)
	seedCart(deps, "sess-1")
	deps.payments.createSession = &stripe.HostedSession{ID: "cs_test_1", URL: "https://pay.example/cs_test_1"}
	if _, err := svc.Submit(context.Background(), "sess-1", deliveryPrepayInput()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	deps.payments.getSession = &stripe.HostedSession{ID: "cs_test_1", PaymentStatus: "paid"}
	return svc, deps
}

func TestConfirmPaidRelaysAndClears(t *testing.T) {
	svc, deps := confirmFixture(t)

	result, err := svc.Confirm(context.Background(), "sess-1", "cs_test_1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Status != StatusSubmitted {
		t.Fatalf("expected submitted, got %s", result.Status)
	}
	if len(deps.notifier.orders) != 1 {
		t.Fatalf("expected one notification, got %d", len(deps.notifier.orders))
	}
	if deps.notifier.orders[0].TotalCents != 3200 {
		t.Fatalf("expected parked total 3200, got %d", deps.notifier.orders[0].TotalCents)
	}
	if len(deps.carts.deleted) != 1 {
		t.Fatal("expected cart cleared after confirm")
	}
	if len(deps.pending.released) != 1 {
		t.Fatal("expected pending order released")
	}
}

func TestConfirmUnpaidSession(t *testing.T) {
	svc, deps := confirmFixture(t)
	deps.payments.getSession = &stripe.HostedSession{ID: "cs_test_1", PaymentStatus: "unpaid"}

	_, err := svc.Confirm(context.Background(), "sess-1", "cs_test_1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodePayment {
		t.Fatalf("expected payment error, got %v", err)
	}
	if len(deps.notifier.orders) != 0 {
		t.Fatal("unpaid session must not notify")
	}
	if len(deps.carts.deleted) != 0 {
		t.Fatal("unpaid session must preserve the cart")
	}
}

func TestConfirmIsIdempotent(t *testing.T) {
	svc, _ := confirmFixture(t)

	if _, err := svc.Confirm(context.Background(), "sess-1", "cs_test_1"); err != nil {
		t.Fatalf("first confirm: %v", err)
	}
	_, err := svc.Confirm(context.Background(), "sess-1", "cs_test_1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found on repeat confirm, got %v", err)
	}
}

func TestConfirmRejectsForeignCartSession(t *testing.T) {
	svc, _ := confirmFixture(t)

	_, err := svc.Confirm(context.Background(), "sess-other", "cs_test_1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestConfirmFailedRelayKeepsPendingOrder(t *testing.T) {
	svc, deps := confirmFixture(t)
	deps.notifier.result = &notify.Result{Outcome: notify.OutcomeRejected}

	result, err := svc.Confirm(context.Background(), "sess-1", "cs_test_1")
	if err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if result.Status != StatusFailed {
		t.Fatalf("expected failed, got %s", result.Status)
	}
	if len(deps.pending.released) != 0 {
		t.Fatal("failed relay must keep the pending order for retry")
	}

	// A retry after the relay recovers still finds the snapshot.
	deps.notifier.result = &notify.Result{Outcome: notify.OutcomeDelivered}
	retry, err := svc.Confirm(context.Background(), "sess-1", "cs_test_1")
	if err != nil {
		t.Fatalf("retry confirm: %v", err)
	}
	if retry.Status != StatusSubmitted {
		t.Fatalf("expected submitted on retry, got %s", retry.Status)
	}
}

func TestConfirmProcessorFailure(t *testing.T) {
	svc, deps := confirmFixture(t)
	deps.payments.getErr = errors.New("api down")

	_, err := svc.Confirm(context.Background(), "sess-1", "cs_test_1")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}
