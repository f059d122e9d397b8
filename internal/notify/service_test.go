package notify

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	pkgerrors "github.com/brooklynnepley/brookskitchen-backend/pkg/errors"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/formrelay"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/logger"
)

type fakeRelay struct {
	mu       sync.Mutex
	payloads []formrelay.OrderEmailPayload
	errs     []error
	sent     chan formrelay.OrderEmailPayload
}

func newFakeRelay(errs ...error) *fakeRelay {
	return &fakeRelay{
		errs: errs,
		sent: make(chan formrelay.OrderEmailPayload, 4),
	}
}

func (f *fakeRelay) Submit(ctx context.Context, payload formrelay.OrderEmailPayload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.payloads = append(f.payloads, payload)
	f.sent <- payload
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return err
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func newNotifyService(t *testing.T, relay *fakeRelay) Service {
	t.Helper()
	svc, err := NewService(relay, sampleConfig(), testLogger())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func waitForPayload(t *testing.T, relay *fakeRelay) formrelay.OrderEmailPayload {
	t.Helper()
	select {
	case payload := <-relay.sent:
		return payload
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for relay submission")
		return formrelay.OrderEmailPayload{}
	}
}

func TestSendOrderNotificationDeliveredSendsReceipt(t *testing.T) {
	relay := newFakeRelay()
	svc := newNotifyService(t, relay)

	result, err := svc.SendOrderNotification(context.Background(), sampleOrder())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !result.Delivered() {
		t.Fatalf("expected delivered, got %s", result.Outcome)
	}
	if result.OwnerEmail != nil {
		t.Fatal("delivered result must not carry fallback email")
	}
	if result.Receipt == nil || result.Receipt.To != "jane@example.com" {
		t.Fatalf("delivered result must carry the customer receipt, got %+v", result.Receipt)
	}

	owner := waitForPayload(t, relay)
	if owner.To != "owner@example.com" {
		t.Fatalf("expected owner email first, got %q", owner.To)
	}
	receipt := waitForPayload(t, relay)
	if receipt.To != "jane@example.com" {
		t.Fatalf("expected customer receipt, got %q", receipt.To)
	}
}

func TestSendOrderNotificationRejected(t *testing.T) {
	relay := newFakeRelay(&formrelay.StatusError{StatusCode: 422, Body: "bad form"})
	svc := newNotifyService(t, relay)

	result, err := svc.SendOrderNotification(context.Background(), sampleOrder())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Outcome != OutcomeRejected {
		t.Fatalf("expected rejected, got %s", result.Outcome)
	}

	waitForPayload(t, relay)
	select {
	case extra := <-relay.sent:
		t.Fatalf("no receipt expected after rejection, got %q", extra.To)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSendOrderNotificationManualFallback(t *testing.T) {
	relay := newFakeRelay(errors.New("connection refused"))
	svc := newNotifyService(t, relay)

	result, err := svc.SendOrderNotification(context.Background(), sampleOrder())
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if result.Outcome != OutcomeManual {
		t.Fatalf("expected manual, got %s", result.Outcome)
	}
	if result.OwnerEmail == nil || result.OwnerEmail.Subject == "" {
		t.Fatal("manual result must carry the composed owner email")
	}
}

func TestSendOrderNotificationValidates(t *testing.T) {
	svc := newNotifyService(t, newFakeRelay())

	order := sampleOrder()
	order.Items = nil
	_, err := svc.SendOrderNotification(context.Background(), order)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	order = sampleOrder()
	order.DeliveryOption = "courier"
	_, err = svc.SendOrderNotification(context.Background(), order)
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
