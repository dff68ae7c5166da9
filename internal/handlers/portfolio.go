package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/lumenvault/backend/internal/models"
	"github.com/lumenvault/backend/internal/services"
)

// PortfolioHandler exposes portfolio-level analytics over HTTP
type PortfolioHandler struct {
	service services.PortfolioService
}

func NewPortfolioHandler(service services.PortfolioService) *PortfolioHandler {
	return &PortfolioHandler{service: service}
}

// HandleAnalytics handles GET /api/portfolio/{owner}/analytics?network=testnet
func (h *PortfolioHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	portfolio, err := h.service.GetPortfolioAnalytics(r.Context(), mux.Vars(r)["owner"], parseNetwork(r))
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(portfolio)
}

// HandlePerformance handles GET /api/portfolio/{owner}/performance?network=testnet&days=30
func (h *PortfolioHandler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	points, err := h.service.GetPortfolioPerformanceHistory(r.Context(), mux.Vars(r)["owner"], parseNetwork(r), parseDays(r))
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(points)
}

// HandleAllocation handles GET /api/portfolio/{owner}/allocation?network=testnet
func (h *PortfolioHandler) HandleAllocation(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	allocation, err := h.service.GetPortfolioAllocation(r.Context(), mux.Vars(r)["owner"], parseNetwork(r))
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(allocation)
}

// HandleBreakdown handles GET /api/portfolio/{owner}/breakdown?network=testnet
func (h *PortfolioHandler) HandleBreakdown(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	breakdown, err := h.service.GetVaultBreakdown(r.Context(), mux.Vars(r)["owner"], parseNetwork(r))
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(breakdown)
}

func parseNetwork(r *http.Request) string {
	if network := r.URL.Query().Get("network"); network != "" {
		return network
	}
	return models.DefaultNetwork
}
