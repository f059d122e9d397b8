package catalog

import (
	"github.com/google/uuid"

	"github.com/brooklynnepley/brookskitchen-backend/pkg/db/models"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/money"
)

// ProductDTO is the storefront view of one listing.
type ProductDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	PriceCents  int64     `json:"price_cents"`
	Price       string    `json:"price"`
	PackSize    string    `json:"pack_size"`
	ImageURL    string    `json:"image_url,omitempty"`
}

// NewProductDTO maps a product row to its API shape.
func NewProductDTO(product *models.Product) *ProductDTO {
	if product == nil {
		return nil
	}
	return &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		PriceCents:  product.PriceCents,
		Price:       money.FormatUSD(money.FromMinorUnits(product.PriceCents)),
		PackSize:    product.PackSize,
		ImageURL:    product.ImageURL,
	}
}
