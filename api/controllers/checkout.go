package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/api/middleware"
	"github.com/smoralesc/verdeo-backend/api/responses"
	"github.com/smoralesc/verdeo-backend/api/validators"
	checkoutsvc "github.com/smoralesc/verdeo-backend/internal/checkout"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
	"github.com/smoralesc/verdeo-backend/pkg/logger"
)

type checkoutItemRequest struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1,max=99"`
}

// checkoutRequest carries product references only. Prices are never accepted
// from the client.
type checkoutRequest struct {
	Items      []checkoutItemRequest `json:"items" validate:"required,min=1,max=50,dive"`
	CouponCode *string               `json:"coupon_code,omitempty" validate:"omitempty,max=64"`

	CustomerName  string `json:"customer_name" validate:"required,max=120"`
	CustomerEmail string `json:"customer_email" validate:"required,email,max=254"`
	CustomerPhone string `json:"customer_phone,omitempty" validate:"omitempty,max=32"`

	ShippingAddress string `json:"shipping_address" validate:"required,max=255"`
	ShippingCity    string `json:"shipping_city" validate:"required,max=120"`
	ShippingRegion  string `json:"shipping_region,omitempty" validate:"omitempty,max=120"`
	PostalCode      string `json:"postal_code,omitempty" validate:"omitempty,max=16"`
}

// Checkout reprices the submitted cart, creates the pending order, and returns
// the hosted payment redirect.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := make([]checkoutsvc.CheckoutItem, 0, len(payload.Items))
		for _, line := range payload.Items {
			items = append(items, checkoutsvc.CheckoutItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
			})
		}

		input := checkoutsvc.CheckoutInput{
			Items:           items,
			CouponCode:      payload.CouponCode,
			CustomerName:    validators.SanitizeString(payload.CustomerName, 120),
			CustomerEmail:   validators.SanitizeString(payload.CustomerEmail, 254),
			CustomerPhone:   validators.SanitizeString(payload.CustomerPhone, 32),
			ShippingAddress: validators.SanitizeString(payload.ShippingAddress, 255),
			ShippingCity:    validators.SanitizeString(payload.ShippingCity, 120),
			ShippingRegion:  validators.SanitizeString(payload.ShippingRegion, 120),
			PostalCode:      validators.SanitizeString(payload.PostalCode, 16),
		}

		// Guests check out without credentials; authenticated buyers get the
		// order attached to their account.
		if userID := middleware.UserIDFromContext(r.Context()); userID != "" {
			if parsed, err := uuid.Parse(userID); err == nil {
				input.UserID = &parsed
			}
		}

		result, err := svc.Execute(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
