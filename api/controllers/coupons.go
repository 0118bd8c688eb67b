package controllers

import (
	"net/http"

	"github.com/smoralesc/verdeo-backend/api/responses"
	"github.com/smoralesc/verdeo-backend/api/validators"
	"github.com/smoralesc/verdeo-backend/internal/coupons"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
	"github.com/smoralesc/verdeo-backend/pkg/logger"
)

type applyCouponRequest struct {
	Code          string `json:"code" validate:"required,max=64"`
	SubtotalCents int    `json:"subtotal_cents" validate:"required,min=1"`
}

// ApplyCoupon validates a coupon against a cart subtotal and prices the
// discount. Nothing is reserved: checkout re-validates before charging.
func ApplyCoupon(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupons service unavailable"))
			return
		}

		var payload applyCouponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		coupon, err := svc.Validate(r.Context(), payload.Code, payload.SubtotalCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, coupon)
	}
}
