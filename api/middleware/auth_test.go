package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	pkgauth "github.com/smoralesc/verdeo-backend/pkg/auth"
	"github.com/smoralesc/verdeo-backend/pkg/config"
	"github.com/smoralesc/verdeo-backend/pkg/enums"
)

var jwtCfg = config.JWTConfig{Secret: "test-secret", Issuer: "verdeo"}

func issueToken(t *testing.T, role enums.UserRole) (uuid.UUID, string) {
	t.Helper()
	userID := uuid.New()
	token, err := pkgauth.GenerateAccessToken(jwtCfg, userID, "user@verdeo.com", role)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	return userID, token
}

func TestAuthRejectsMissingCredentials(t *testing.T) {
	mw := Auth(jwtCfg, nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})

	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/orders/123", nil))

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatalf("handler should not run without credentials")
	}
}

func TestAuthRejectsInvalidToken(t *testing.T) {
	mw := Auth(jwtCfg, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/123", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestAuthSeedsContext(t *testing.T) {
	userID, token := issueToken(t, enums.UserRoleCustomer)
	mw := Auth(jwtCfg, nil)

	var gotUserID, gotRole string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/123", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if gotUserID != userID.String() {
		t.Fatalf("expected user id in context, got %q", gotUserID)
	}
	if gotRole != string(enums.UserRoleCustomer) {
		t.Fatalf("expected customer role in context, got %q", gotRole)
	}
}

func TestOptionalAuthAllowsGuests(t *testing.T) {
	mw := OptionalAuth(jwtCfg, nil)
	var gotUserID string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID = UserIDFromContext(r.Context())
	})

	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected guest request to pass, got %d", resp.Code)
	}
	if gotUserID != "" {
		t.Fatalf("expected empty user id for guest, got %q", gotUserID)
	}
}

func TestOptionalAuthRejectsMalformedToken(t *testing.T) {
	mw := OptionalAuth(jwtCfg, nil)
	handlerCalled := false
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
	if handlerCalled {
		t.Fatalf("handler should not run with a malformed token")
	}
}

func TestRequireAdmin(t *testing.T) {
	mw := RequireAdmin(nil, nil)
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/1/status", nil)
	req = req.WithContext(WithRole(req.Context(), string(enums.UserRoleCustomer)))
	resp := httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodPatch, "/api/admin/v1/orders/1/status", nil)
	req = req.WithContext(WithRole(req.Context(), string(enums.UserRoleAdmin)))
	resp = httptest.NewRecorder()
	mw(handler).ServeHTTP(resp, req)
	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected admin to pass, got %d", resp.Code)
	}
}
