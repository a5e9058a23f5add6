package middleware

import (
	"net/http"

	"service-marketplace/internal/data/entity"
	"service-marketplace/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Headers set by the upstream gateway once it has authenticated the caller.
const (
	HeaderUserID   = "X-User-ID"
	HeaderUserRole = "X-User-Role"
)

// Identity puts the caller asserted by the gateway into the request context.
// Requests without a usable identity are rejected with 401.
func Identity(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawID := r.Header.Get(HeaderUserID)
			if rawID == "" {
				utils.ResponseUnauthorized(w, "Missing caller identity")
				return
			}

			userID, err := uuid.Parse(rawID)
			if err != nil {
				logger.Warn("Malformed caller identity", zap.String("user_id", rawID))
				utils.ResponseUnauthorized(w, "Invalid caller identity")
				return
			}

			role := entity.UserRole(r.Header.Get(HeaderUserRole))
			if !role.Valid() {
				logger.Warn("Unknown caller role",
					zap.String("user_id", rawID),
					zap.String("role", string(role)))
				utils.ResponseUnauthorized(w, "Invalid caller role")
				return
			}

			ctx := utils.SetUserContext(r.Context(), userID, string(role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole must run after Identity.
func RequireRole(logger *zap.Logger, roles ...entity.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := utils.GetRoleFromContext(r.Context())
			if !ok {
				utils.ResponseUnauthorized(w, "Authentication required")
				return
			}

			for _, allowed := range roles {
				if entity.UserRole(role) == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			userID, _ := utils.GetUserIDFromContext(r.Context())
			logger.Warn("Role check failed",
				zap.String("user_id", userID.String()),
				zap.String("role", role),
				zap.String("path", r.URL.Path))
			utils.ResponseForbidden(w, "Insufficient role for this action")
		})
	}
}
