package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/smoralesc/verdeo-backend/pkg/config"
	"github.com/smoralesc/verdeo-backend/pkg/enums"
)

const defaultAccessTTL = 24 * time.Hour

// AccessClaims are the verified contents of a bearer token.
type AccessClaims struct {
	UserID uuid.UUID
	Email  string
	Role   enums.UserRole
}

type jwtClaims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateAccessToken issues a signed token for the user.
func GenerateAccessToken(cfg config.JWTConfig, userID uuid.UUID, email string, role enums.UserRole) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("jwt secret is required")
	}
	now := time.Now()
	claims := jwtClaims{
		Email: email,
		Role:  string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			Issuer:    cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(defaultAccessTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(cfg.Secret))
}

// ParseAccessToken verifies the signature, issuer, and expiry, and returns
// the claims.
func ParseAccessToken(cfg config.JWTConfig, raw string) (*AccessClaims, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("jwt secret is required")
	}

	var claims jwtClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
		}
		return []byte(cfg.Secret), nil
	},
		jwt.WithIssuer(cfg.Issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("invalid subject: %w", err)
	}

	return &AccessClaims{
		UserID: userID,
		Email:  claims.Email,
		Role:   enums.UserRole(claims.Role),
	}, nil
}
