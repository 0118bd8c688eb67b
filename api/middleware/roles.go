package middleware

import (
	"context"
	"net/http"

	"github.com/smoralesc/verdeo-backend/api/responses"
	"github.com/smoralesc/verdeo-backend/pkg/enums"
	pkgerrors "github.com/smoralesc/verdeo-backend/pkg/errors"
	"github.com/smoralesc/verdeo-backend/pkg/logger"
)

// RoleLoader resolves the stored role for a user. Checking the database keeps
// demoted admins out even while their token is still live.
type RoleLoader interface {
	RoleByUserID(ctx context.Context, userID string) (enums.UserRole, error)
}

func RequireAdmin(loader RoleLoader, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if RoleFromContext(r.Context()) != string(enums.UserRoleAdmin) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required"))
				return
			}

			if loader != nil {
				userID := UserIDFromContext(r.Context())
				role, err := loader.RoleByUserID(r.Context(), userID)
				if err != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate role"))
					return
				}
				if role != enums.UserRoleAdmin {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeForbidden, "admin role required"))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
