package handlers

import "net/http"

// Health returns the server health status.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if err := h.store.Ping(r.Context()); err != nil {
		status = "degraded"
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": status})
}
