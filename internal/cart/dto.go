package cart

import (
	"github.com/google/uuid"

	"github.com/brooklynnepley/brookskitchen-backend/pkg/money"
)

// LineDTO is the API view of one cart line.
type LineDTO struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	PackSize       string    `json:"pack_size"`
	Quantity       int       `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	UnitPrice      string    `json:"unit_price"`
	LineTotalCents int64     `json:"line_total_cents"`
	LineTotal      string    `json:"line_total"`
}

// DTO is the API view of the whole cart.
type DTO struct {
	Items         []LineDTO `json:"items"`
	TotalItems    int       `json:"total_items"`
	SubtotalCents int64     `json:"subtotal_cents"`
	Subtotal      string    `json:"subtotal"`
}

// NewDTO maps the cart to its API shape.
func NewDTO(cart *Cart) *DTO {
	dto := &DTO{Items: []LineDTO{}}
	if cart == nil {
		dto.Subtotal = money.FormatUSD(money.FromMinorUnits(0))
		return dto
	}
	for _, line := range cart.Lines {
		lineTotal := line.LineTotal()
		dto.Items = append(dto.Items, LineDTO{
			ProductID:      line.ProductID,
			Name:           line.Name,
			PackSize:       line.PackSize,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			UnitPrice:      money.FormatUSD(money.FromMinorUnits(line.UnitPriceCents)),
			LineTotalCents: money.ToMinorUnits(lineTotal),
			LineTotal:      money.FormatUSD(lineTotal),
		})
	}
	subtotal := cart.Subtotal()
	dto.TotalItems = cart.TotalItemCount()
	dto.SubtotalCents = money.ToMinorUnits(subtotal)
	dto.Subtotal = money.FormatUSD(subtotal)
	return dto
}
