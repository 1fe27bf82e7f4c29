package handlers

import (
	"context"
	"net/http"

	"github.com/stonksapi/backend/internal/overview"
	"github.com/stonksapi/backend/pkg/logger"
)

// OverviewReader assembles the tracked-symbols overview.
type OverviewReader interface {
	Overview(ctx context.Context) ([]overview.Entry, error)
}

// OverviewHandler handles the stock-overview endpoint.
type OverviewHandler struct {
	service OverviewReader
	logger  *logger.Logger
}

// NewOverviewHandler creates a new overview handler.
func NewOverviewHandler(service OverviewReader, log *logger.Logger) *OverviewHandler {
	return &OverviewHandler{service: service, logger: log}
}

// Overview returns one quote row per tracked symbol.
// GET /api/stock-overview
func (h *OverviewHandler) Overview(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.Overview(r.Context())
	if err != nil {
		h.logger.WithError(err).Error("Overview assembly failed")
		respondServiceError(w, err)
		return
	}

	respondSuccess(w, "Stock overview retrieved", entries)
}
