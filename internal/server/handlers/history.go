package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// History returns a target's full visibility history grouped by UTC day.
func (h *Handlers) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	groups, err := h.history.History(r.Context(), id)
	if err != nil {
		h.logger.Error("reading history failed", "target", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "reading history failed")
		return
	}
	h.writeJSON(w, http.StatusOK, groups)
}

// ListRuns returns a target's runs without result bodies.
func (h *Handlers) ListRuns(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	runs, err := h.store.ListRuns(r.Context(), id)
	if err != nil {
		h.logger.Error("listing runs failed", "target", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "listing runs failed")
		return
	}
	h.writeJSON(w, http.StatusOK, runs)
}
