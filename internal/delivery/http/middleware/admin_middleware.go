package middleware

import (
	"net/http"

	"shiprate-backend/pkg/utils"
)

// AdminMiddleware ensures the authenticated caller has the admin role.
// MUST be used AFTER AuthMiddleware.
func AdminMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		if !ok {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: no claims in context")
			return
		}

		if claims.Role != utils.RoleAdmin {
			utils.WriteError(w, http.StatusForbidden, "Forbidden: admins only")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Admin chains AuthMiddleware and AdminMiddleware around h.
func Admin(h http.HandlerFunc) http.Handler {
	return AuthMiddleware(AdminMiddleware(h))
}
