package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/api/middleware"
	checkoutsvc "github.com/smoralesc/verdeo-backend/internal/checkout"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
)

type stubCheckout struct {
	result *checkoutsvc.CheckoutResult
	err    error
	input  checkoutsvc.CheckoutInput
	calls  int
}

func (s *stubCheckout) Execute(ctx context.Context, input checkoutsvc.CheckoutInput) (*checkoutsvc.CheckoutResult, error) {
	s.calls++
	s.input = input
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func checkoutBody(productID uuid.UUID) string {
	return `{
		"items": [{"product_id": "` + productID.String() + `", "quantity": 2}],
		"coupon_code": "SAVE10",
		"customer_name": "Sofia Morales",
		"customer_email": "sofia@example.com",
		"shipping_address": "Av. Siempreviva 742",
		"shipping_city": "Cordoba"
	}`
}

func TestCheckoutCreatesOrder(t *testing.T) {
	productID := uuid.New()
	orderID := uuid.New()
	svc := &stubCheckout{result: &checkoutsvc.CheckoutResult{
		OrderID:      orderID,
		PreferenceID: "pref-1",
		InitPoint:    "https://www.mercadopago.com/init/pref-1",
		TotalCents:   175000,
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody(productID)))
	resp := httptest.NewRecorder()
	Checkout(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if len(svc.input.Items) != 1 || svc.input.Items[0].ProductID != productID || svc.input.Items[0].Quantity != 2 {
		t.Fatalf("unexpected items %+v", svc.input.Items)
	}
	if svc.input.CouponCode == nil || *svc.input.CouponCode != "SAVE10" {
		t.Fatalf("expected coupon code forwarded")
	}
	if svc.input.UserID != nil {
		t.Fatalf("guest checkout must not carry a user id")
	}

	var payload struct {
		Data checkoutsvc.CheckoutResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Data.OrderID != orderID || payload.Data.InitPoint == "" {
		t.Fatalf("unexpected payload %+v", payload.Data)
	}
}

func TestCheckoutAttachesAuthenticatedUser(t *testing.T) {
	productID := uuid.New()
	userID := uuid.New()
	svc := &stubCheckout{result: &checkoutsvc.CheckoutResult{OrderID: uuid.New()}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody(productID)))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	resp := httptest.NewRecorder()
	Checkout(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", resp.Code)
	}
	if svc.input.UserID == nil || *svc.input.UserID != userID {
		t.Fatalf("expected user id attached to checkout input")
	}
}

func TestCheckoutRejectsClientSubmittedPrices(t *testing.T) {
	productID := uuid.New()
	svc := &stubCheckout{}

	// unit_price is not part of the contract; unknown fields are rejected.
	body := `{
		"items": [{"product_id": "` + productID.String() + `", "quantity": 1, "unit_price": 1}],
		"customer_name": "A",
		"customer_email": "a@b.com",
		"shipping_address": "x",
		"shipping_city": "y"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	resp := httptest.NewRecorder()
	Checkout(svc, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.calls != 0 {
		t.Fatalf("service must not run on invalid payload")
	}
}

func TestCheckoutRejectsMissingItems(t *testing.T) {
	body := `{
		"items": [],
		"customer_name": "A",
		"customer_email": "a@b.com",
		"shipping_address": "x",
		"shipping_city": "y"
	}`
	resp := httptest.NewRecorder()
	Checkout(&stubCheckout{}, testLogger())(resp, httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body)))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestCheckoutSurfacesStockConflict(t *testing.T) {
	productID := uuid.New()
	svc := &stubCheckout{err: pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock").
		WithDetails(map[string]any{"product_id": productID.String(), "available": 1})}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(checkoutBody(productID)))
	resp := httptest.NewRecorder()
	Checkout(svc, testLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Error.Message != "insufficient stock" {
		t.Fatalf("unexpected message %q", payload.Error.Message)
	}
	if payload.Error.Details["product_id"] != productID.String() {
		t.Fatalf("expected offending product in details, got %+v", payload.Error.Details)
	}
}
