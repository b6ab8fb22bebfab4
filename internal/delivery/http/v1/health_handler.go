package v1

import (
	"net/http"
	"time"

	"shiprate-backend/pkg/cache"
	"shiprate-backend/pkg/utils"
)

type HealthHandler struct {
	cache   cache.CacheService
	started time.Time
}

func NewHealthHandler(c cache.CacheService) *HealthHandler {
	return &HealthHandler{cache: c, started: time.Now()}
}

// ServeHTTP reports liveness only; the database is not pinged.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"uptime":      time.Since(h.started).Round(time.Second).String(),
		"cachedItems": h.cache.Len(),
	})
}
