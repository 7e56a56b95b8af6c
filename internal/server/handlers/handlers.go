// Package handlers implements the citewatch reporting API handlers.
package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/rankbeam/citewatch/internal/provider"
	"github.com/rankbeam/citewatch/pkg/types"
)

// HistoryReader provides the grouped visibility history for a target.
type HistoryReader interface {
	History(ctx context.Context, targetID string) ([]types.DayGroup, error)
}

// Handlers holds the dependencies for all API handlers.
type Handlers struct {
	store   provider.Store
	history HistoryReader
	logger  *slog.Logger
}

// New creates the API handlers.
func New(store provider.Store, history HistoryReader) *Handlers {
	return &Handlers{store: store, history: history, logger: slog.Default()}
}

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encoding response failed", "error", err)
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}
