package services

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/lumenvault/backend/internal/models"
	"github.com/lumenvault/backend/internal/repositories"
)

const (
	riskLookbackDays = 30

	// Annual risk-free rate used in Sharpe/Sortino
	riskFreeRate = 0.04
	// Flat assumed market return; no market index is modeled, so beta is
	// fixed at 1.0 and alpha/information ratio are measured against this.
	assumedMarketReturn = 0.10

	annualizationPeriods = 365.0
)

// seriesPoint is one entry of the hourly portfolio value series
type seriesPoint struct {
	bucket time.Time
	value  float64
}

// RiskEngine derives portfolio risk metrics from a deduplicated cross-vault
// value series. Fewer than two usable points yields the neutral record, which
// is a valid outcome rather than an error.
type RiskEngine struct {
	snapRepo repositories.SnapshotRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewRiskEngine creates a risk engine with a wall clock
func NewRiskEngine(snapRepo repositories.SnapshotRepository, logger *zap.Logger) *RiskEngine {
	return NewRiskEngineWithClock(snapRepo, logger, time.Now)
}

// NewRiskEngineWithClock injects the clock bounding the lookback window
func NewRiskEngineWithClock(snapRepo repositories.SnapshotRepository, logger *zap.Logger, now func() time.Time) *RiskEngine {
	return &RiskEngine{snapRepo: snapRepo, logger: logger, now: now}
}

// ComputeRiskMetrics builds the hourly portfolio series across the given
// vaults over a 30-day window and derives volatility, Sharpe, Sortino, max
// drawdown, VaR, beta, alpha and information ratio from it.
func (e *RiskEngine) ComputeRiskMetrics(ctx context.Context, vaultIDs []string) models.RiskMetrics {
	series := e.BuildPortfolioSeries(ctx, vaultIDs, riskLookbackDays)
	if len(series) < 2 {
		return models.NeutralRiskMetrics()
	}

	returns := periodReturns(series)
	if len(returns) == 0 {
		return models.NeutralRiskMetrics()
	}

	meanReturn := mean(returns)
	stdDev := stdDeviation(returns)
	annualizedReturn := meanReturn * annualizationPeriods
	annualizedStdDev := stdDev * math.Sqrt(annualizationPeriods)

	metrics := models.RiskMetrics{
		Volatility:  annualizedStdDev * 100,
		MaxDrawdown: maxDrawdown(series),
		ValueAtRisk: valueAtRisk(returns),
		Beta:        1.0,
		Alpha:       (annualizedReturn - assumedMarketReturn) * 100,
	}

	if annualizedStdDev > 0 {
		metrics.SharpeRatio = (annualizedReturn - riskFreeRate) / annualizedStdDev
	}

	metrics.SortinoRatio = sortinoRatio(returns, annualizedReturn, metrics.SharpeRatio)
	metrics.InformationRatio = informationRatio(returns, annualizedReturn)

	for _, v := range []float64{metrics.SharpeRatio, metrics.SortinoRatio, metrics.InformationRatio} {
		if isNaNOrInf(v) {
			return models.NeutralRiskMetrics()
		}
	}

	return metrics
}

// VaultRiskFigures computes Sharpe, max drawdown and volatility at the scope
// of a single vault, for the detailed analytics views.
func (e *RiskEngine) VaultRiskFigures(ctx context.Context, vaultID string) (sharpe, drawdown, volatility float64) {
	metrics := e.ComputeRiskMetrics(ctx, []string{vaultID})
	return metrics.SharpeRatio, metrics.MaxDrawdown, metrics.Volatility
}

// BuildPortfolioSeries pulls each vault's snapshots over the window,
// deduplicates per-vault-per-hour keeping the newest in each bucket, and sums
// across vaults into one hourly portfolio value series, oldest first.
func (e *RiskEngine) BuildPortfolioSeries(ctx context.Context, vaultIDs []string, days int) []seriesPoint {
	if days <= 0 {
		days = riskLookbackDays
	}
	since := e.now().AddDate(0, 0, -days)

	portfolio := make(map[time.Time]float64)
	for _, vaultID := range vaultIDs {
		snapshots, err := e.snapRepo.ListByVault(ctx, vaultID, since)
		if err != nil {
			e.logger.Warn("snapshots unavailable for risk series", zap.String("vault_id", vaultID), zap.Error(err))
			continue
		}

		// Keep only the latest snapshot per hour so repeated monitor
		// updates within an hour are not double counted.
		deduped := make(map[time.Time]*models.ValueSnapshot)
		for _, snap := range models.PlausibleSnapshots(snapshots) {
			bucket := snap.Timestamp.UTC().Truncate(time.Hour)
			prev, ok := deduped[bucket]
			if !ok || snap.Timestamp.After(prev.Timestamp) {
				deduped[bucket] = snap
			}
		}
		for bucket, snap := range deduped {
			portfolio[bucket] += snap.TotalValueUSD.InexactFloat64()
		}
	}

	series := make([]seriesPoint, 0, len(portfolio))
	for bucket, value := range portfolio {
		series = append(series, seriesPoint{bucket: bucket, value: value})
	}
	sort.Slice(series, func(i, j int) bool {
		return series[i].bucket.Before(series[j].bucket)
	})
	return series
}

// periodReturns derives simple period-over-period returns, skipping any point
// whose predecessor value is non-positive.
func periodReturns(series []seriesPoint) []float64 {
	returns := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		prev := series[i-1].value
		if prev <= 0 {
			continue
		}
		returns = append(returns, (series[i].value-prev)/prev)
	}
	return returns
}

// maxDrawdown tracks a running peak and keeps the most negative
// peak-to-trough percentage decline. Always <= 0.
func maxDrawdown(series []seriesPoint) float64 {
	worst := 0.0
	peak := 0.0
	for _, p := range series {
		if p.value > peak {
			peak = p.value
		}
		if peak <= 0 {
			continue
		}
		dd := (p.value - peak) / peak * 100
		if dd < worst {
			worst = dd
		}
	}
	return worst
}

// valueAtRisk is the 5th-percentile return of the sorted distribution,
// expressed as a percentage (95% confidence, one period).
func valueAtRisk(returns []float64) float64 {
	sorted := make([]float64, len(returns))
	copy(sorted, returns)
	sort.Float64s(sorted)

	idx := int(float64(len(sorted)) * 0.05)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx] * 100
}

// sortinoRatio penalizes only downside deviation. With no negative returns it
// equals the Sharpe ratio.
func sortinoRatio(returns []float64, annualizedReturn, sharpe float64) float64 {
	downside := make([]float64, 0, len(returns))
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return sharpe
	}

	downsideStdDev := stdDeviation(downside) * math.Sqrt(annualizationPeriods)
	if downsideStdDev == 0 {
		return sharpe
	}
	return (annualizedReturn - riskFreeRate) / downsideStdDev
}

// informationRatio measures annualized excess return over a flat assumed
// daily market return, scaled by tracking error.
func informationRatio(returns []float64, annualizedReturn float64) float64 {
	dailyMarket := assumedMarketReturn / annualizationPeriods
	excess := make([]float64, len(returns))
	for i, r := range returns {
		excess[i] = r - dailyMarket
	}

	trackingError := stdDeviation(excess) * math.Sqrt(annualizationPeriods)
	if trackingError == 0 {
		return 0
	}
	return (annualizedReturn - assumedMarketReturn) / trackingError
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDeviation is the population standard deviation
func stdDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		sumSq += (v - m) * (v - m)
	}
	return math.Sqrt(sumSq / float64(len(values)))
}
