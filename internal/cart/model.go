package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/brooklynnepley/brookskitchen-backend/pkg/money"
)

// Line is one product entry in a session cart. Price and display fields are
// snapshotted at add time so the cart stays stable if the catalog changes.
type Line struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	PackSize       string    `json:"pack_size"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	Quantity       int       `json:"quantity"`
}

// LineTotal is unit price times quantity for this line.
func (l Line) LineTotal() decimal.Decimal {
	return money.LineTotal(money.FromMinorUnits(l.UnitPriceCents), l.Quantity)
}

// Cart holds the lines for one browser session.
type Cart struct {
	SessionID string    `json:"session_id"`
	Lines     []Line    `json:"lines"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCart returns an empty cart bound to the session.
func NewCart(sessionID string) *Cart {
	return &Cart{SessionID: sessionID}
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

// TotalItemCount sums quantities across all lines.
func (c *Cart) TotalItemCount() int {
	if c == nil {
		return 0
	}
	total := 0
	for _, line := range c.Lines {
		total += line.Quantity
	}
	return total
}

// Subtotal sums line totals with exact decimal arithmetic.
func (c *Cart) Subtotal() decimal.Decimal {
	subtotal := decimal.Zero
	if c == nil {
		return subtotal
	}
	for _, line := range c.Lines {
		subtotal = subtotal.Add(line.LineTotal())
	}
	return subtotal
}

// FindLine returns the line for the product, or nil.
func (c *Cart) FindLine(productID uuid.UUID) *Line {
	if c == nil {
		return nil
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// RemoveLine deletes the line for the product, reporting whether it existed.
func (c *Cart) RemoveLine(productID uuid.UUID) bool {
	if c == nil {
		return false
	}
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return true
		}
	}
	return false
}
