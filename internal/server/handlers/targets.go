package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rankbeam/citewatch/internal/provider"
)

// ListTargets returns all registered targets.
func (h *Handlers) ListTargets(w http.ResponseWriter, r *http.Request) {
	targets, err := h.store.ListTargets(r.Context())
	if err != nil {
		h.logger.Error("listing targets failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "listing targets failed")
		return
	}
	h.writeJSON(w, http.StatusOK, targets)
}

// GetTarget returns one target by id.
func (h *Handlers) GetTarget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	target, err := h.store.GetTarget(r.Context(), id)
	if err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			h.writeError(w, http.StatusNotFound, "target not found")
			return
		}
		h.logger.Error("getting target failed", "target", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "getting target failed")
		return
	}
	h.writeJSON(w, http.StatusOK, target)
}
