package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/brooklynnepley/brookskitchen-backend/pkg/db/models"
	pkgerrors "github.com/brooklynnepley/brookskitchen-backend/pkg/errors"
)

const maxLineQuantity = 99

// Service exposes session cart mutations for the storefront.
type Service interface {
	Get(ctx context.Context, sessionID string) (*DTO, error)
	AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*DTO, error)
	SetQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*DTO, error)
	RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*DTO, error)
	Clear(ctx context.Context, sessionID string) error
}

type productFinder interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type cartStore interface {
	Get(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	Delete(ctx context.Context, sessionID string) error
}

type service struct {
	store   cartStore
	catalog productFinder
}

// NewService constructs a cart service instance.
func NewService(store cartStore, catalog productFinder) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog service required")
	}
	return &service{store: store, catalog: catalog}, nil
}

// Get returns the session's cart, empty if none exists yet.
func (s *service) Get(ctx context.Context, sessionID string) (*DTO, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return NewDTO(cart), nil
}

// AddItem puts quantity units of the product in the cart. Adding a product
// already present merges into the existing line instead of duplicating it.
func (s *service) AddItem(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*DTO, error) {
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if line := cart.FindLine(productID); line != nil {
		line.Quantity += quantity
		if line.Quantity > maxLineQuantity {
			line.Quantity = maxLineQuantity
		}
	} else {
		cart.Lines = append(cart.Lines, Line{
			ProductID:      product.ID,
			Name:           product.Name,
			PackSize:       product.PackSize,
			UnitPriceCents: product.PriceCents,
			Quantity:       min(quantity, maxLineQuantity),
		})
	}

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return NewDTO(cart), nil
}

// SetQuantity replaces the line quantity. Zero or negative behaves as remove,
// so a missing line only errors when setting a positive count.
func (s *service) SetQuantity(ctx context.Context, sessionID string, productID uuid.UUID, quantity int) (*DTO, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, sessionID, productID)
	}

	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	line := cart.FindLine(productID)
	if line == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
	}
	line.Quantity = min(quantity, maxLineQuantity)

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return NewDTO(cart), nil
}

// RemoveItem drops the product's line from the cart. Removing a line that is
// not there is a no-op, the unchanged cart comes back.
func (s *service) RemoveItem(ctx context.Context, sessionID string, productID uuid.UUID) (*DTO, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !cart.RemoveLine(productID) {
		return NewDTO(cart), nil
	}

	if err := s.store.Save(ctx, cart); err != nil {
		return nil, err
	}
	return NewDTO(cart), nil
}

// Clear empties the session's cart.
func (s *service) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}
