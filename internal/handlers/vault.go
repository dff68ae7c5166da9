package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/lumenvault/backend/internal/apperrors"
	"github.com/lumenvault/backend/internal/services"
)

// VaultHandler exposes vault-level analytics over HTTP
type VaultHandler struct {
	service services.AnalyticsService
}

func NewVaultHandler(service services.AnalyticsService) *VaultHandler {
	return &VaultHandler{service: service}
}

// HandleAnalytics handles GET /api/vaults/{id}/analytics
func (h *VaultHandler) HandleAnalytics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	analytics, err := h.service.GetVaultAnalytics(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(analytics)
}

// HandleDetailedAnalytics handles GET /api/vaults/{id}/analytics/detailed
func (h *VaultHandler) HandleDetailedAnalytics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	detailed, err := h.service.GetDetailedVaultAnalytics(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(detailed)
}

// HandlePerformance handles GET /api/vaults/{id}/performance?days=30
func (h *VaultHandler) HandlePerformance(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	points, err := h.service.GetHistoricalPerformance(r.Context(), mux.Vars(r)["id"], parseDays(r))
	if err != nil {
		writeError(w, err)
		return
	}

	json.NewEncoder(w).Encode(points)
}

// parseDays reads the days query parameter, defaulting to 30
func parseDays(r *http.Request) int {
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if days, err := strconv.Atoi(daysStr); err == nil && days > 0 {
			return days
		}
	}
	return 30
}

// writeError maps a NotFound failure to 404 and everything else to 500
func writeError(w http.ResponseWriter, err error) {
	if apperrors.IsNotFound(err) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
