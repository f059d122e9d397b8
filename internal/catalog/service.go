package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brooklynnepley/brookskitchen-backend/pkg/db/models"
	pkgerrors "github.com/brooklynnepley/brookskitchen-backend/pkg/errors"
)

// Service exposes storefront catalog reads.
type Service interface {
	ListProducts(ctx context.Context) ([]*ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type productRepository interface {
	ListActive(ctx context.Context) ([]models.Product, error)
	FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type service struct {
	repo productRepository
}

// NewService constructs a catalog service instance.
func NewService(repo productRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

// ListProducts returns the active catalog in display order.
func (s *service) ListProducts(ctx context.Context) ([]*ProductDTO, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list products")
	}
	dtos := make([]*ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, NewProductDTO(&products[i]))
	}
	return dtos, nil
}

// GetProduct loads one active product or reports not found.
func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
	}
	return product, nil
}
