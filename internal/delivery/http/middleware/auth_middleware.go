package middleware

import (
	"context"
	"net/http"

	"shiprate-backend/internal/domain"
	"shiprate-backend/pkg/logger"
	"shiprate-backend/pkg/utils"
)

// AuthMiddleware validates the bearer token and stores its claims in the
// request context.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := utils.ExtractClaims(r)
		if err != nil {
			utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: invalid or missing token")
			return
		}

		ctx := context.WithValue(r.Context(), domain.ClaimsContextKey, claims)

		// Tag every log line of this request with the token subject.
		reqLogger := logger.WithAdmin(*logger.WithContext(ctx), claims.Subject)
		ctx = logger.NewContext(ctx, &reqLogger)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the claims stored by AuthMiddleware.
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	c, ok := ctx.Value(domain.ClaimsContextKey).(*utils.Claims)
	return c, ok && c != nil
}
