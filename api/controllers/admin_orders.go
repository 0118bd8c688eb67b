package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/api/responses"
	"github.com/smoralesc/verdeo-backend/api/validators"
	"github.com/smoralesc/verdeo-backend/internal/orders"
	"github.com/smoralesc/verdeo-backend/pkg/enums"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
	"github.com/smoralesc/verdeo-backend/pkg/logger"
)

// AdminListOrders pages the dashboard order list, optionally filtered by
// status.
func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 20, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		offset, err := validators.ParseQueryInt(r, "offset", 0, 0, 1<<30)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := orders.ListFilter{Limit: limit, Offset: offset}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status := enums.OrderStatus(raw)
			if !status.Valid() {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
					WithDetails(map[string]any{"status": raw}))
				return
			}
			filter.Status = &status
		}

		result, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type setOrderStatusRequest struct {
	Status         string  `json:"status" validate:"required,max=32"`
	Carrier        *string `json:"carrier,omitempty" validate:"omitempty,max=120"`
	TrackingNumber *string `json:"tracking_number,omitempty" validate:"omitempty,max=120"`
}

// AdminSetOrderStatus applies a manual lifecycle transition from the
// dashboard.
func AdminSetOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var payload setOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next := enums.OrderStatus(strings.ToLower(strings.TrimSpace(payload.Status)))
		if !next.Valid() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status").
				WithDetails(map[string]any{"status": payload.Status}))
			return
		}

		order, err := svc.SetStatus(r.Context(), id, next, orders.SetStatusInput{
			Carrier:        payload.Carrier,
			TrackingNumber: payload.TrackingNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
