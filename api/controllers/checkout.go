package controllers

import (
	"net/http"

	"github.com/brooklynnepley/brookskitchen-backend/api/middleware"
	"github.com/brooklynnepley/brookskitchen-backend/api/responses"
	"github.com/brooklynnepley/brookskitchen-backend/api/validators"
	"github.com/brooklynnepley/brookskitchen-backend/internal/checkout"
	"github.com/brooklynnepley/brookskitchen-backend/internal/notify"
	pkgerrors "github.com/brooklynnepley/brookskitchen-backend/pkg/errors"
	"github.com/brooklynnepley/brookskitchen-backend/pkg/logger"
)

const (
	maxNameLen         = 120
	maxContactLen      = 60
	maxAddressLen      = 300
	maxInstructionsLen = 500
)

type checkoutSubmitRequest struct {
	Name                string `json:"name" validate:"required,max=120"`
	Email               string `json:"email" validate:"required,email"`
	Phone               string `json:"phone" validate:"required,max=60"`
	Address             string `json:"address" validate:"required,max=300"`
	DeliveryOption      string `json:"delivery_option" validate:"required,oneof=delivery pickup"`
	SpecialInstructions string `json:"special_instructions" validate:"max=500"`
	PaymentOption       string `json:"payment_option" validate:"required,oneof=cash prepay"`
}

type checkoutConfirmRequest struct {
	SessionID string `json:"session_id" validate:"required,max=255"`
}

// CheckoutSubmit handles the checkout form for both payment options.
func CheckoutSubmit(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.CartSessionFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing from request"))
			return
		}

		var req checkoutSubmitRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), sessionID, checkout.SubmitInput{
			CustomerName:        validators.SanitizeString(req.Name, maxNameLen),
			CustomerEmail:       validators.SanitizeString(req.Email, maxContactLen),
			CustomerPhone:       validators.SanitizeString(req.Phone, maxContactLen),
			CustomerAddress:     validators.SanitizeString(req.Address, maxAddressLen),
			DeliveryOption:      notify.DeliveryOption(req.DeliveryOption),
			SpecialInstructions: validators.SanitizeString(req.SpecialInstructions, maxInstructionsLen),
			PaymentOption:       checkout.PaymentOption(req.PaymentOption),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CheckoutConfirm verifies a returned payment session and finishes the order.
func CheckoutConfirm(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := middleware.CartSessionFromContext(r.Context())
		if sessionID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart session missing from request"))
			return
		}

		var req checkoutConfirmRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Confirm(r.Context(), sessionID, req.SessionID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
