package notify

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/brooklynnepley/brookskitchen-backend/pkg/money"
)

// DeliveryOption selects how the customer receives the order.
type DeliveryOption string

const (
	DeliveryOptionDelivery DeliveryOption = "delivery"
	DeliveryOptionPickup   DeliveryOption = "pickup"
)

// Valid reports whether the option is one of the known values.
func (d DeliveryOption) Valid() bool {
	return d == DeliveryOptionDelivery || d == DeliveryOptionPickup
}

// OrderItem is one purchased line as it appears in the order emails.
type OrderItem struct {
	Name           string
	PackSize       string
	UnitPriceCents int64
	Quantity       int
}

// LineTotal is unit price times quantity for the item.
func (i OrderItem) LineTotal() decimal.Decimal {
	return money.LineTotal(money.FromMinorUnits(i.UnitPriceCents), i.Quantity)
}

// Order is the snapshot handed to the notification relay once checkout
// completes. Totals are carried in minor units.
type Order struct {
	CustomerName        string
	CustomerEmail       string
	CustomerPhone       string
	CustomerAddress     string
	DeliveryOption      DeliveryOption
	SpecialInstructions string
	Items               []OrderItem
	SubtotalCents       int64
	DeliveryFeeCents    int64
	TotalCents          int64
	PlacedAt            time.Time
}

// Number derives a short human-readable order number from the placement time.
func (o Order) Number() string {
	millis := o.PlacedAt.UnixMilli()
	if millis < 0 {
		millis = -millis
	}
	return fmt.Sprintf("%06d", millis%1_000_000)
}
