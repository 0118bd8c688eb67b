package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smoralesc/verdeo-backend/internal/coupons"
	"github.com/smoralesc/verdeo-backend/pkg/enums"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
)

type stubCoupons struct {
	dto  *coupons.CouponDTO
	err  error
	code string
	sub  int
}

func (s *stubCoupons) Validate(ctx context.Context, code string, subtotalCents int) (*coupons.CouponDTO, error) {
	s.code = code
	s.sub = subtotalCents
	if s.err != nil {
		return nil, s.err
	}
	return s.dto, nil
}

func TestApplyCoupon(t *testing.T) {
	svc := &stubCoupons{dto: &coupons.CouponDTO{
		Code:          "SAVE10",
		DiscountType:  enums.DiscountTypePercentage,
		DiscountValue: 10,
		DiscountCents: 10000,
	}}

	body := strings.NewReader(`{"code":"SAVE10","subtotal_cents":100000}`)
	resp := httptest.NewRecorder()
	ApplyCoupon(svc, testLogger())(resp, httptest.NewRequest(http.MethodPost, "/api/v1/coupons/apply", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.code != "SAVE10" || svc.sub != 100000 {
		t.Fatalf("service called with %q/%d", svc.code, svc.sub)
	}
	var payload struct {
		Data coupons.CouponDTO `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Data.DiscountCents != 10000 {
		t.Fatalf("unexpected discount %d", payload.Data.DiscountCents)
	}
}

func TestApplyCouponRequiresFields(t *testing.T) {
	resp := httptest.NewRecorder()
	ApplyCoupon(&stubCoupons{}, testLogger())(resp, httptest.NewRequest(http.MethodPost, "/api/v1/coupons/apply", strings.NewReader(`{}`)))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestApplyCouponSurfacesConflicts(t *testing.T) {
	svc := &stubCoupons{err: pkgerrors.New(pkgerrors.CodeConflict, "coupon expired")}
	body := strings.NewReader(`{"code":"OLD","subtotal_cents":5000}`)
	resp := httptest.NewRecorder()
	ApplyCoupon(svc, testLogger())(resp, httptest.NewRequest(http.MethodPost, "/api/v1/coupons/apply", body))

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Error.Message != "coupon expired" {
		t.Fatalf("unexpected message %q", payload.Error.Message)
	}
}
