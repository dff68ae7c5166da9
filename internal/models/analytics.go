package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// VaultAnalytics is the per-vault report derived fresh on every request.
// Nothing here is persisted. Fiat amounts are decimals; percentage figures
// produced by exponent/statistics math are float64.
type VaultAnalytics struct {
	VaultID      string          `json:"vault_id"`
	TVL          decimal.Decimal `json:"tvl"`
	TVLChange24h float64         `json:"tvl_change_24h"`
	TVLChange7d  float64         `json:"tvl_change_7d"`
	APY          float64         `json:"apy"`

	TotalDeposits      decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals   decimal.Decimal `json:"total_withdrawals"`
	NetDeposits        decimal.Decimal `json:"net_deposits"`
	TotalEarnings      decimal.Decimal `json:"total_earnings"`
	EarningsPercentage float64         `json:"earnings_percentage"`

	SharePrice  decimal.Decimal `json:"share_price"`
	TotalShares decimal.Decimal `json:"total_shares"`

	LastUpdated time.Time `json:"last_updated"`
}

// RiskMetrics are portfolio-level risk figures derived from the deduplicated
// cross-vault value series. All figures are percentages or ratios.
type RiskMetrics struct {
	SharpeRatio      float64 `json:"sharpe_ratio"`
	SortinoRatio     float64 `json:"sortino_ratio"`
	MaxDrawdown      float64 `json:"max_drawdown"`
	Volatility       float64 `json:"volatility"`
	ValueAtRisk      float64 `json:"value_at_risk"`
	Beta             float64 `json:"beta"`
	Alpha            float64 `json:"alpha"`
	InformationRatio float64 `json:"information_ratio"`
}

// NeutralRiskMetrics is the documented outcome when fewer than two usable
// data points exist. Not an error.
func NeutralRiskMetrics() RiskMetrics {
	return RiskMetrics{Beta: 1.0}
}

// AssetCorrelation is one heuristic pairwise correlation estimate
type AssetCorrelation struct {
	Asset1      string  `json:"asset1"`
	Asset2      string  `json:"asset2"`
	Correlation float64 `json:"correlation"`
}

// PortfolioAnalytics aggregates every vault one owner holds on one network
type PortfolioAnalytics struct {
	Owner   string `json:"owner"`
	Network string `json:"network"`

	TotalTVL      decimal.Decimal `json:"total_tvl"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	NetDeposits   decimal.Decimal `json:"net_deposits"`

	AverageAPY  float64 `json:"average_apy"`
	WeightedAPY float64 `json:"weighted_apy"`

	VaultCount     int              `json:"vault_count"`
	BestPerformer  string           `json:"best_performer"`
	WorstPerformer string           `json:"worst_performer"`
	Vaults         []VaultAnalytics `json:"vaults"`

	RiskMetrics  RiskMetrics        `json:"risk_metrics"`
	Correlations []AssetCorrelation `json:"correlations"`

	LastUpdated time.Time `json:"last_updated"`
}

// PerformancePoint is one entry of a vault's historical performance series
type PerformancePoint struct {
	Date  string          `json:"date"`
	Value decimal.Decimal `json:"value"`
	APY   float64         `json:"apy"`
}

// PortfolioPerformancePoint extends a performance point with rolling risk
// figures for charting portfolio history.
type PortfolioPerformancePoint struct {
	Date       string          `json:"date"`
	Value      decimal.Decimal `json:"value"`
	APY        float64         `json:"apy"`
	Volatility float64         `json:"volatility"`
	Drawdown   float64         `json:"drawdown"`
	Timestamp  time.Time       `json:"timestamp"`
}

// AllocationSlice is one asset's share of a portfolio
type AllocationSlice struct {
	Asset      string          `json:"asset"`
	Value      decimal.Decimal `json:"value"`
	Percentage float64         `json:"percentage"`
	Color      string          `json:"color"`
}

// DetailedVaultAnalytics adds recent activity and vault-scope risk figures
// to the base report.
type DetailedVaultAnalytics struct {
	VaultAnalytics

	RecentTransactions []*VaultTransaction `json:"recent_transactions"`
	RecentSnapshots    []*ValueSnapshot    `json:"recent_snapshots"`

	SharpeRatio float64 `json:"sharpe_ratio"`
	MaxDrawdown float64 `json:"max_drawdown"`
	Volatility  float64 `json:"volatility"`
}

// VaultBreakdown is the per-vault detail view across one owner's portfolio
type VaultBreakdown struct {
	Owner   string                   `json:"owner"`
	Network string                   `json:"network"`
	Vaults  []DetailedVaultAnalytics `json:"vaults"`
}
