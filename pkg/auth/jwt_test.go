package auth

import (
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/pkg/config"
	"github.com/smoralesc/verdeo-backend/pkg/enums"
)

var testCfg = config.JWTConfig{Secret: "test-secret", Issuer: "verdeo"}

func TestGenerateAndParseAccessToken(t *testing.T) {
	userID := uuid.New()
	token, err := GenerateAccessToken(testCfg, userID, "admin@verdeo.com", enums.UserRoleAdmin)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}

	claims, err := ParseAccessToken(testCfg, token)
	if err != nil {
		t.Fatalf("ParseAccessToken failed: %v", err)
	}
	if claims.UserID != userID {
		t.Fatalf("expected user id round-trip")
	}
	if claims.Email != "admin@verdeo.com" {
		t.Fatalf("unexpected email %q", claims.Email)
	}
	if claims.Role != enums.UserRoleAdmin {
		t.Fatalf("unexpected role %q", claims.Role)
	}
}

func TestParseAccessTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateAccessToken(testCfg, uuid.New(), "a@b.com", enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if _, err := ParseAccessToken(config.JWTConfig{Secret: "other", Issuer: "verdeo"}, token); err == nil {
		t.Fatalf("expected signature rejection")
	}
}

func TestParseAccessTokenRejectsWrongIssuer(t *testing.T) {
	token, err := GenerateAccessToken(config.JWTConfig{Secret: "test-secret", Issuer: "someone-else"}, uuid.New(), "a@b.com", enums.UserRoleCustomer)
	if err != nil {
		t.Fatalf("GenerateAccessToken failed: %v", err)
	}
	if _, err := ParseAccessToken(testCfg, token); err == nil {
		t.Fatalf("expected issuer rejection")
	}
}

func TestParseAccessTokenRejectsGarbage(t *testing.T) {
	if _, err := ParseAccessToken(testCfg, "not.a.token"); err == nil {
		t.Fatalf("expected parse failure")
	}
	if _, err := ParseAccessToken(testCfg, strings.Repeat("x", 64)); err == nil {
		t.Fatalf("expected parse failure")
	}
}
