package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/lumenvault/backend/internal/models"
	"github.com/lumenvault/backend/internal/services"
)

type mockPortfolioService struct {
	portfolio  *models.PortfolioAnalytics
	points     []*models.PortfolioPerformancePoint
	allocation []*models.AllocationSlice
	breakdown  *models.VaultBreakdown
	err        error

	lastOwner   string
	lastNetwork string
	lastDays    int
}

func (m *mockPortfolioService) GetPortfolioAnalytics(_ context.Context, owner, network string) (*models.PortfolioAnalytics, error) {
	m.lastOwner, m.lastNetwork = owner, network
	return m.portfolio, m.err
}

func (m *mockPortfolioService) GetPortfolioPerformanceHistory(_ context.Context, owner, network string, days int) ([]*models.PortfolioPerformancePoint, error) {
	m.lastOwner, m.lastNetwork, m.lastDays = owner, network, days
	return m.points, m.err
}

func (m *mockPortfolioService) GetPortfolioAllocation(_ context.Context, owner, network string) ([]*models.AllocationSlice, error) {
	m.lastOwner, m.lastNetwork = owner, network
	return m.allocation, m.err
}

func (m *mockPortfolioService) GetVaultBreakdown(_ context.Context, owner, network string) (*models.VaultBreakdown, error) {
	m.lastOwner, m.lastNetwork = owner, network
	return m.breakdown, m.err
}

var _ services.PortfolioService = (*mockPortfolioService)(nil)

func portfolioRouter(h *PortfolioHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/portfolio/{owner}/analytics", h.HandleAnalytics).Methods(http.MethodGet)
	r.HandleFunc("/api/portfolio/{owner}/performance", h.HandlePerformance).Methods(http.MethodGet)
	r.HandleFunc("/api/portfolio/{owner}/allocation", h.HandleAllocation).Methods(http.MethodGet)
	r.HandleFunc("/api/portfolio/{owner}/breakdown", h.HandleBreakdown).Methods(http.MethodGet)
	return r
}

func TestHandlePortfolioAnalytics(t *testing.T) {
	ms := &mockPortfolioService{portfolio: &models.PortfolioAnalytics{
		Owner:      "alice",
		Network:    "testnet",
		TotalTVL:   decimal.NewFromInt(1040),
		VaultCount: 2,
	}}
	router := portfolioRouter(NewPortfolioHandler(ms))

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/alice/analytics", nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rw.Code, rw.Body.String())
	}
	if ms.lastOwner != "alice" {
		t.Fatalf("expected owner alice, got %q", ms.lastOwner)
	}
	if ms.lastNetwork != models.DefaultNetwork {
		t.Fatalf("expected default network, got %q", ms.lastNetwork)
	}

	var got models.PortfolioAnalytics
	if err := json.Unmarshal(rw.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if got.VaultCount != 2 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestHandlePortfolioAnalytics_NetworkOverride(t *testing.T) {
	ms := &mockPortfolioService{portfolio: &models.PortfolioAnalytics{}}
	router := portfolioRouter(NewPortfolioHandler(ms))

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/alice/analytics?network=mainnet", nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if ms.lastNetwork != "mainnet" {
		t.Fatalf("expected mainnet, got %q", ms.lastNetwork)
	}
}

func TestHandlePortfolioPerformance(t *testing.T) {
	ms := &mockPortfolioService{points: []*models.PortfolioPerformancePoint{}}
	router := portfolioRouter(NewPortfolioHandler(ms))

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/alice/performance?days=90", nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
	if ms.lastDays != 90 {
		t.Fatalf("expected days 90, got %d", ms.lastDays)
	}
}

func TestHandlePortfolioAllocation(t *testing.T) {
	ms := &mockPortfolioService{allocation: []*models.AllocationSlice{
		{Asset: "XLM", Value: decimal.NewFromInt(600), Percentage: 60, Color: "#6366f1"},
		{Asset: "USDC", Value: decimal.NewFromInt(400), Percentage: 40, Color: "#22c55e"},
	}}
	router := portfolioRouter(NewPortfolioHandler(ms))

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/alice/allocation", nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}

	var got []*models.AllocationSlice
	if err := json.Unmarshal(rw.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if len(got) != 2 || got[0].Asset != "XLM" {
		t.Fatalf("unexpected payload: %+v", got)
	}
}

func TestHandleVaultBreakdown(t *testing.T) {
	ms := &mockPortfolioService{breakdown: &models.VaultBreakdown{
		Owner:   "alice",
		Network: "testnet",
	}}
	router := portfolioRouter(NewPortfolioHandler(ms))

	req := httptest.NewRequest(http.MethodGet, "/api/portfolio/alice/breakdown", nil)
	rw := httptest.NewRecorder()
	router.ServeHTTP(rw, req)

	if rw.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rw.Code)
	}
}
