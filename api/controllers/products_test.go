package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/brooklynnepley/brookskitchen-backend/internal/catalog"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/db/models"
	pkgerrors "github.com/brooklynnepley/brookskitchen-backend/pkg/errors"
)

type stubCatalogService struct {
	products []*catalog.ProductDTO
	err      error
	called   bool
}

func (s *stubCatalogService) ListProducts(ctx context.Context) ([]*catalog.ProductDTO, error) {
	s.called = true
	return s.products, s.err
}

func (s *stubCatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	panic("unimplemented")
}

func TestListProducts(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		stub := &stubCatalogService{products: []*catalog.ProductDTO{
			{ID: uuid.New(), Name: "Sourdough Muffins", PriceCents: 1200, Price: "$12.00", PackSize: "4-pack"},
			{ID: uuid.New(), Name: "Cinnamon Rolls", PriceCents: 1500, Price: "$15.00", PackSize: "6-pack"},
		}}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		rec := httptest.NewRecorder()
		ListProducts(stub, testLogg()).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if !stub.called {
			t.Fatal("expected service invocation")
		}

		var envelope struct {
			Data struct {
				Products []catalog.ProductDTO `json:"products"`
			} `json:"data"`
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
			t.Fatalf("decode envelope: %v", err)
		}
		if len(envelope.Data.Products) != 2 {
			t.Fatalf("expected 2 products, got %d", len(envelope.Data.Products))
		}
		if envelope.Data.Products[0].Price != "$12.00" {
			t.Fatalf("unexpected price %q", envelope.Data.Products[0].Price)
		}
	})

	t.Run("dependency failure", func(t *testing.T) {
		stub := &stubCatalogService{err: pkgerrors.New(pkgerrors.CodeDependency, "database unavailable")}
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		rec := httptest.NewRecorder()
		ListProducts(stub, testLogg()).ServeHTTP(rec, req)

		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})
}
