package handlers

import (
	"context"
	"net/http"
)

// VersionFunc reports the applied schema version.
type VersionFunc func(ctx context.Context) (int64, error)

type HealthHandler struct {
	schema VersionFunc
}

func NewHealthHandler(schema VersionFunc) *HealthHandler {
	return &HealthHandler{schema: schema}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	out := map[string]any{"status": "ok"}
	if h.schema != nil {
		v, err := h.schema(r.Context())
		if err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded", "error": "database unavailable"})
			return
		}
		out["schema_version"] = v
	}
	writeJSON(w, http.StatusOK, out)
}
