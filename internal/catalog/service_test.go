package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/brooklynnepley/brookskitchen-backend/pkg/db/models"
	pkgerrors "github.com/brooklynnepley/brookskitchen-backend/pkg/errors"
)

type fakeRepo struct {
	products []models.Product
	listErr  error
	findErr  error
}

func (f *fakeRepo) ListActive(ctx context.Context) ([]models.Product, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.products, nil
}

func (f *fakeRepo) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for i := range f.products {
		if f.products[i].ID == id {
			return &f.products[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func TestListProductsFormatsPrices(t *testing.T) {
	repo := &fakeRepo{products: []models.Product{
		{ID: uuid.New(), Name: "Blueberry Muffins", PriceCents: 1200, PackSize: "4 per pack", IsActive: true},
		{ID: uuid.New(), Name: "Cinnamon Rolls", PriceCents: 1500, PackSize: "4 per pack", IsActive: true},
	}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dtos, err := svc.ListProducts(context.Background())
	if err != nil {
		t.Fatalf("list products: %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected 2 products, got %d", len(dtos))
	}
	if dtos[0].Price != "$12.00" {
		t.Fatalf("expected $12.00, got %s", dtos[0].Price)
	}
	if dtos[1].Price != "$15.00" {
		t.Fatalf("expected $15.00, got %s", dtos[1].Price)
	}
}

func TestGetProductNotFound(t *testing.T) {
	svc, err := NewService(&fakeRepo{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetProduct(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestGetProductDependencyError(t *testing.T) {
	svc, err := NewService(&fakeRepo{findErr: errors.New("connection reset")})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.GetProduct(context.Background(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestNewServiceRequiresRepo(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatal("expected error for nil repository")
	}
}
