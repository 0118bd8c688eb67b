package webhooks

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	mpwebhook "github.com/smoralesc/verdeo-backend/internal/webhooks/mercadopago"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
	"github.com/smoralesc/verdeo-backend/pkg/logger"
)

type stubProcessor struct {
	outcome      mpwebhook.Outcome
	err          error
	notification mpwebhook.Notification
	calls        int
}

func (s *stubProcessor) Process(ctx context.Context, notification mpwebhook.Notification) (mpwebhook.Outcome, error) {
	s.calls++
	s.notification = notification
	if s.err != nil {
		return "", s.err
	}
	return s.outcome, nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{
		ServiceName: "verdeo-test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})
}

func TestMercadoPagoResolvesQueryParams(t *testing.T) {
	svc := &stubProcessor{outcome: mpwebhook.OutcomeConfirmed}
	handler := MercadoPago(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago?topic=payment&id=123456", nil)
	req.Header.Set("x-signature", "ts=1,v1=abc")
	req.Header.Set("x-request-id", "req-9")
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if strings.TrimSpace(resp.Body.String()) != `{"status":"success"}` {
		t.Fatalf("unexpected body %s", resp.Body.String())
	}
	got := svc.notification
	if got.Topic != "payment" || got.DataID != "123456" {
		t.Fatalf("unexpected notification %+v", got)
	}
	if got.SignatureHeader != "ts=1,v1=abc" || got.RequestID != "req-9" {
		t.Fatalf("expected signature headers forwarded, got %+v", got)
	}
}

func TestMercadoPagoResolvesJSONBody(t *testing.T) {
	svc := &stubProcessor{outcome: mpwebhook.OutcomeConfirmed}
	handler := MercadoPago(svc, testLogger())

	body := `{"type":"payment","action":"payment.updated","data":{"id":"987654"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if svc.notification.Topic != "payment" || svc.notification.DataID != "987654" {
		t.Fatalf("unexpected notification %+v", svc.notification)
	}
}

func TestMercadoPagoQueryParamsWinOverBody(t *testing.T) {
	svc := &stubProcessor{outcome: mpwebhook.OutcomeConfirmed}
	handler := MercadoPago(svc, testLogger())

	body := `{"type":"merchant_order","data":{"id":"body-id"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago?topic=payment&data.id=42", strings.NewReader(body))
	resp := httptest.NewRecorder()
	handler(resp, req)

	if svc.notification.Topic != "payment" || svc.notification.DataID != "42" {
		t.Fatalf("query params must win, got %+v", svc.notification)
	}
}

func TestMercadoPagoIgnoredTopicStillSucceeds(t *testing.T) {
	svc := &stubProcessor{outcome: mpwebhook.OutcomeIgnoredTopic}
	handler := MercadoPago(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago?topic=merchant_order&id=77", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("ignored topics still answer 200, got %d", resp.Code)
	}
}

func TestMercadoPagoSignatureFailure(t *testing.T) {
	svc := &stubProcessor{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "webhook signature rejected")}
	handler := MercadoPago(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago?topic=payment&id=1", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestMercadoPagoDependencyFailure(t *testing.T) {
	svc := &stubProcessor{err: pkgerrors.New(pkgerrors.CodeDependency, "provider unavailable")}
	handler := MercadoPago(svc, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/mercadopago?topic=payment&id=1", nil)
	resp := httptest.NewRecorder()
	handler(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 so the provider retries, got %d", resp.Code)
	}
}
