package controllers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/api/responses"
	"github.com/smoralesc/verdeo-backend/api/validators"
	"github.com/smoralesc/verdeo-backend/internal/orders"
	mpwebhook "github.com/smoralesc/verdeo-backend/internal/webhooks/mercadopago"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
	"github.com/smoralesc/verdeo-backend/pkg/logger"
)

// PaymentReconciler is the client-side confirmation entry point.
type PaymentReconciler interface {
	ConfirmFromClient(ctx context.Context, orderID uuid.UUID, paymentID string) (mpwebhook.Outcome, error)
}

// GetOrder serves the confirmation landing page lookup. The order id is the
// capability: guests hold it from the checkout response.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		order, err := svc.GetByID(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

type confirmOrderRequest struct {
	PaymentID string `json:"payment_id" validate:"required,max=64"`
}

// ConfirmOrder is the return-from-payment fallback for when the provider
// redirect lands before the webhook. It reconciles through the same path the
// webhook takes, so whichever arrives second is a no-op.
func ConfirmOrder(reconciler PaymentReconciler, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if reconciler == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payment reconciler unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		var payload confirmOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		outcome, err := reconciler.ConfirmFromClient(r.Context(), id, payload.PaymentID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"outcome": string(outcome)})
	}
}
