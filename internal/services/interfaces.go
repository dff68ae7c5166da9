package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lumenvault/backend/internal/models"
)

// AnalyticsService exposes vault-level analytics queries
type AnalyticsService interface {
	GetVaultAnalytics(ctx context.Context, vaultID string) (*models.VaultAnalytics, error)
	GetDetailedVaultAnalytics(ctx context.Context, vaultID string) (*models.DetailedVaultAnalytics, error)
	GetHistoricalPerformance(ctx context.Context, vaultID string, days int) ([]*models.PerformancePoint, error)
}

// PortfolioService exposes portfolio-level analytics queries
type PortfolioService interface {
	GetPortfolioAnalytics(ctx context.Context, owner, network string) (*models.PortfolioAnalytics, error)
	GetPortfolioPerformanceHistory(ctx context.Context, owner, network string, days int) ([]*models.PortfolioPerformancePoint, error)
	GetPortfolioAllocation(ctx context.Context, owner, network string) ([]*models.AllocationSlice, error)
	GetVaultBreakdown(ctx context.Context, owner, network string) (*models.VaultBreakdown, error)
}

// ChainReader reads live vault state from the chain. Balances come back in
// the asset's smallest unit; ConvertToUSD turns them into fiat value.
type ChainReader interface {
	GetVaultBalance(ctx context.Context, contractID string) (int64, error)
	ConvertToUSD(ctx context.Context, assetCode string, units int64) (decimal.Decimal, error)
}

// SymbolLookup resolves an on-chain asset contract ID to a symbol through an
// external service
type SymbolLookup interface {
	LookupSymbol(ctx context.Context, contractID string) (string, error)
}

// AssetNameService resolves contract IDs to display symbols. Resolution never
// fails: unknown or unreachable assets degrade to a shortened contract ID.
type AssetNameService interface {
	ResolveSymbol(ctx context.Context, contractID string) string
}

// CorrelationStrategy estimates pairwise correlations for a set of held
// assets. Implementations are swappable; the default is a category-band
// heuristic, not a statistical estimate.
type CorrelationStrategy interface {
	EstimateCorrelations(assets []string, nativeAsset string) []models.AssetCorrelation
}
