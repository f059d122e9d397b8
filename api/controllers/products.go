package controllers

import (
	"net/http"

	"github.com/brooklynnepley/brookskitchen-backend/api/responses"
	"github.com/brooklynnepley/brookskitchen-backend/internal/catalog"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/logger"
)

// ListProducts serves the storefront catalog.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.ListProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": products})
	}
}
