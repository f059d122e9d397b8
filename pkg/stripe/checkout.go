package stripe

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	"github.com/brooklynnepley/brookskitchen-backend/pkg/money"
)

// CheckoutLineItem describes one sellable line sent to the hosted payment page.
type CheckoutLineItem struct {
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Quantity    int
}

// CreateSessionInput carries everything needed to open a hosted checkout session.
type CreateSessionInput struct {
	Currency      string
	CustomerEmail string
	CustomerName  string
	LineItems     []CheckoutLineItem
	SuccessURL    string
	CancelURL     string
}

// HostedSession is the normalized view of a processor checkout session.
type HostedSession struct {
	ID            string
	URL           string
	PaymentStatus string
	CustomerEmail string
	AmountTotal   int64
}

// Paid reports whether the processor has collected payment for the session.
func (s *HostedSession) Paid() bool {
	return s != nil && s.PaymentStatus == string(stripe.CheckoutSessionPaymentStatusPaid)
}

// CreateCheckoutSession opens a redirect-based hosted payment session.
func (c *Client) CreateCheckoutSession(ctx context.Context, input CreateSessionInput) (*HostedSession, error) {
	params := buildSessionParams(input)
	params.Context = ctx

	sess, err := session.New(params)
	if err != nil {
		return nil, err
	}
	return newHostedSession(sess), nil
}

// GetCheckoutSession fetches a session so the caller can verify payment status
// after the browser returns from the hosted page.
func (c *Client) GetCheckoutSession(ctx context.Context, id string) (*HostedSession, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx

	sess, err := session.Get(id, params)
	if err != nil {
		return nil, err
	}
	return newHostedSession(sess), nil
}

func buildSessionParams(input CreateSessionInput) *stripe.CheckoutSessionParams {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(input.LineItems))
	for _, item := range input.LineItems {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(input.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name:        stripe.String(item.Name),
					Description: stripe.String(item.Description),
				},
				UnitAmount: stripe.Int64(money.ToMinorUnits(item.UnitPrice)),
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	return &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		CustomerEmail:      stripe.String(input.CustomerEmail),
		LineItems:          lineItems,
		SuccessURL:         stripe.String(input.SuccessURL),
		CancelURL:          stripe.String(input.CancelURL),
		Metadata: map[string]string{
			"customer_name":  input.CustomerName,
			"customer_email": input.CustomerEmail,
		},
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionRequired)),
	}
}

func newHostedSession(sess *stripe.CheckoutSession) *HostedSession {
	if sess == nil {
		return nil
	}
	return &HostedSession{
		ID:            sess.ID,
		URL:           sess.URL,
		PaymentStatus: string(sess.PaymentStatus),
		CustomerEmail: sess.CustomerEmail,
		AmountTotal:   sess.AmountTotal,
	}
}
