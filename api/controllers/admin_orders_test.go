package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/internal/orders"
	"github.com/smoralesc/verdeo-backend/pkg/enums"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
)

func TestAdminListOrders(t *testing.T) {
	svc := &stubOrders{list: &orders.ListResult{
		Orders: []orders.OrderDTO{{ID: uuid.New(), Status: enums.OrderStatusPaid}},
		Total:  1,
		Limit:  20,
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders?status=paid&limit=10&offset=5", nil)
	resp := httptest.NewRecorder()
	AdminListOrders(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastFilter.Status == nil || *svc.lastFilter.Status != enums.OrderStatusPaid {
		t.Fatalf("expected status filter forwarded, got %+v", svc.lastFilter)
	}
	if svc.lastFilter.Limit != 10 || svc.lastFilter.Offset != 5 {
		t.Fatalf("expected paging forwarded, got %+v", svc.lastFilter)
	}
}

func TestAdminListOrdersRejectsUnknownStatus(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders?status=bogus", nil)
	resp := httptest.NewRecorder()
	AdminListOrders(&stubOrders{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminSetOrderStatus(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrders{dto: &orders.OrderDTO{ID: orderID, Status: enums.OrderStatusShipped}}

	body := `{"status":"shipped","carrier":"Andreani","tracking_number":"AR123"}`
	req := bodyRequestWithURLParam(http.MethodPatch, "/api/admin/v1/orders/"+orderID.String()+"/status", "orderId", orderID.String(), body)
	resp := httptest.NewRecorder()
	AdminSetOrderStatus(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.lastStatus != enums.OrderStatusShipped {
		t.Fatalf("expected shipped, got %s", svc.lastStatus)
	}
	if svc.lastInput.Carrier == nil || *svc.lastInput.Carrier != "Andreani" {
		t.Fatalf("expected carrier forwarded")
	}
	if svc.lastInput.TrackingNumber == nil || *svc.lastInput.TrackingNumber != "AR123" {
		t.Fatalf("expected tracking number forwarded")
	}
}

func TestAdminSetOrderStatusUnknownStatus(t *testing.T) {
	orderID := uuid.New()
	req := bodyRequestWithURLParam(http.MethodPatch, "/api/admin/v1/orders/"+orderID.String()+"/status", "orderId", orderID.String(), `{"status":"teleported"}`)
	resp := httptest.NewRecorder()
	AdminSetOrderStatus(&stubOrders{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestAdminSetOrderStatusIllegalTransition(t *testing.T) {
	orderID := uuid.New()
	svc := &stubOrders{err: pkgerrors.New(pkgerrors.CodeStateConflict, "invalid status transition").
		WithDetails(map[string]any{"from": "delivered", "to": "pending"})}

	req := bodyRequestWithURLParam(http.MethodPatch, "/api/admin/v1/orders/"+orderID.String()+"/status", "orderId", orderID.String(), `{"status":"pending"}`)
	resp := httptest.NewRecorder()
	AdminSetOrderStatus(svc, testLogger())(resp, req)

	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeStateConflict) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
	if payload.Error.Details["from"] != "delivered" {
		t.Fatalf("expected transition details, got %+v", payload.Error.Details)
	}
}
