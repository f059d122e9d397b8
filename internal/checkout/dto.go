package checkout

import (
	"github.com/brooklynnepley/brookskitchen-backend/internal/notify"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/formrelay"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/types"
)

// PaymentOption selects how the buyer pays.
type PaymentOption string

const (
	// PaymentOptionCash defers payment to delivery or pickup.
	PaymentOptionCash PaymentOption = "cash"
	// PaymentOptionPrepay pays up front through the hosted payment page.
	PaymentOptionPrepay PaymentOption = "prepay"
)

// Valid reports whether the option is one of the known values.
func (p PaymentOption) Valid() bool {
	return p == PaymentOptionCash || p == PaymentOptionPrepay
}

// SubmitInput is the validated checkout form.
type SubmitInput struct {
	CustomerName        string
	CustomerEmail       string
	CustomerPhone       string
	CustomerAddress     string
	DeliveryOption      notify.DeliveryOption
	SpecialInstructions string
	PaymentOption       PaymentOption
}

// Status classifies the checkout response for the client.
type Status string

const (
	// StatusSubmitted means the order reached the shop owner; cart is cleared.
	StatusSubmitted Status = "submitted"
	// StatusFailed means the notification did not go through; cart is intact.
	StatusFailed Status = "failed"
	// StatusManual means the webhook was unreachable; the composed email is
	// returned so the buyer can send it directly. Cart is intact.
	StatusManual Status = "manual"
	// StatusRedirect means the buyer must complete payment on the hosted page.
	StatusRedirect Status = "redirect"
)

// Result is the outcome of a checkout submit or confirm.
type Result struct {
	Status            Status                       `json:"status"`
	Notice            *types.Notice                `json:"notice,omitempty"`
	RedirectURL       string                       `json:"redirect_url,omitempty"`
	CheckoutSessionID string                       `json:"checkout_session_id,omitempty"`
	OwnerEmail        *formrelay.OrderEmailPayload `json:"owner_email,omitempty"`
	Receipt           *formrelay.OrderEmailPayload `json:"receipt,omitempty"`
}

// Totals breaks down the order amount in minor units.
type Totals struct {
	SubtotalCents    int64
	DeliveryFeeCents int64
	TotalCents       int64
}
