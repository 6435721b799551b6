package middleware

import (
	"net/http"

	"go-rental-marketplace/internal/domain/entity"
	"go-rental-marketplace/pkg/response"
)

// RequireRole creates a middleware that checks if the user has any of the required roles
// Role is read from context (set by AuthMiddleware from JWT claims)
func RequireRole(allowedRoleIDs ...int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			roleID, ok := GetRoleIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Role information not found")
				return
			}

			allowed := false
			for _, allowedRoleID := range allowedRoleIDs {
				if roleID == allowedRoleID {
					allowed = true
					break
				}
			}

			if !allowed {
				response.Forbidden(w, "You don't have permission to access this resource")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin is a convenience middleware for admin-only endpoints
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDAdmin)(next)
}

// RequireOwner is a convenience middleware for owner-only endpoints
func RequireOwner(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDOwner)(next)
}

// RequireRenter is a convenience middleware for renter-only endpoints
func RequireRenter(next http.Handler) http.Handler {
	return RequireRole(entity.RoleIDRenter)(next)
}
