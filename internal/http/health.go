package httpapi

import (
	"net/http"

	"github.com/andreasstove999/ecommerce-system/storefront-go/internal/clients"
)

type HealthHandler struct {
	Probes []clients.HealthProbe
}

func (h *HealthHandler) Service(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "storefront",
	})
}

// Upstreams reports each dependency. The storefront itself stays up when one
// is down, so the status code is always 200.
func (h *HealthHandler) Upstreams(w http.ResponseWriter, r *http.Request) {
	results, healthy := clients.CheckAll(r.Context(), h.Probes)

	status := "ok"
	if !healthy {
		status = "degraded"
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   status,
		"service":  "storefront",
		"upstream": results,
	})
}
