package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lumenvault/backend/internal/models"
	"github.com/lumenvault/backend/internal/repositories"
)

const (
	// minDaysInvested is roughly 15 minutes; anything shorter is too early
	// for a meaningful return figure.
	minDaysInvested = 0.01

	apyFloor        = -100.0
	apyCapCostBasis = 100000.0
	// The snapshot path's deposit baseline is a rougher estimate, so its cap
	// is deliberately narrower.
	apyCapSnapshot = 10000.0

	// Snapshot values whose ratio to the series median falls outside
	// [1/outlierRatio, outlierRatio] are rejected as outliers.
	outlierRatio = 10.0
)

// APYCalculator computes annualized yield for one vault, choosing between a
// ledger cost-basis method and a snapshot-delta fallback by data availability.
// It never fails: insufficient or corrupted data resolves to 0.
type APYCalculator struct {
	txRepo   repositories.TransactionRepository
	snapRepo repositories.SnapshotRepository
	totals   *TotalsResolver
	chain    ChainReader
	logger   *zap.Logger
	now      func() time.Time
}

// NewAPYCalculator creates an APY calculator with a wall clock
func NewAPYCalculator(txRepo repositories.TransactionRepository, snapRepo repositories.SnapshotRepository, totals *TotalsResolver, chain ChainReader, logger *zap.Logger) *APYCalculator {
	return NewAPYCalculatorWithClock(txRepo, snapRepo, totals, chain, logger, time.Now)
}

// NewAPYCalculatorWithClock creates an APY calculator with an injected clock
// so the reference time is testable.
func NewAPYCalculatorWithClock(txRepo repositories.TransactionRepository, snapRepo repositories.SnapshotRepository, totals *TotalsResolver, chain ChainReader, logger *zap.Logger, now func() time.Time) *APYCalculator {
	return &APYCalculator{
		txRepo:   txRepo,
		snapRepo: snapRepo,
		totals:   totals,
		chain:    chain,
		logger:   logger,
		now:      now,
	}
}

// ComputeAPY returns the vault's annualized yield as a percentage. The
// cost-basis method applies whenever the ledger holds at least one deposit;
// with an empty ledger the snapshot fallback applies. 0 means the data was
// insufficient, never an error.
func (c *APYCalculator) ComputeAPY(ctx context.Context, vault *models.Vault) float64 {
	txs, err := c.txRepo.ListByVault(ctx, vault.ID)
	if err != nil {
		c.logger.Warn("ledger unavailable for APY computation", zap.String("vault_id", vault.ID), zap.Error(err))
		return 0
	}

	hasDeposit := false
	for _, tx := range txs {
		if tx.IsDeposit() {
			hasDeposit = true
			break
		}
	}

	if hasDeposit {
		return c.costBasisAPY(ctx, vault, txs)
	}
	if len(txs) == 0 {
		return c.snapshotAPY(ctx, vault.ID)
	}
	// Withdrawals with no deposits ever: nothing was invested
	return 0
}

// costBasisAPY annualizes the return over actual ledgered cash flows
func (c *APYCalculator) costBasisAPY(ctx context.Context, vault *models.Vault, txs []*models.VaultTransaction) float64 {
	netInvested := sumLedger(txs).NetDeposits()
	if !netInvested.IsPositive() {
		return 0
	}

	currentValue, ok := c.currentValue(ctx, vault)
	if !ok {
		return 0
	}

	var firstDeposit time.Time
	for _, tx := range txs {
		if tx.IsDeposit() {
			firstDeposit = tx.Timestamp
			break
		}
	}

	daysInvested := c.now().Sub(firstDeposit).Hours() / 24.0
	if daysInvested < minDaysInvested {
		return 0
	}

	totalReturn := currentValue.Sub(netInvested).Div(netInvested).InexactFloat64()
	return annualize(totalReturn, daysInvested, apyCapCostBasis)
}

// snapshotAPY estimates yield from snapshot deltas when no ledger exists.
// The deposit baseline comes from the totals resolver so APY and the earnings
// figure computed in the same request can never disagree.
func (c *APYCalculator) snapshotAPY(ctx context.Context, vaultID string) float64 {
	snapshots, err := c.snapRepo.ListByVault(ctx, vaultID, time.Time{})
	if err != nil {
		c.logger.Warn("snapshots unavailable for APY computation", zap.String("vault_id", vaultID), zap.Error(err))
		return 0
	}

	surviving := rejectOutliers(models.PlausibleSnapshots(snapshots))
	if len(surviving) < 2 {
		return 0
	}

	first := surviving[0]
	last := surviving[len(surviving)-1]

	totals, err := c.totals.ResolveTotals(ctx, vaultID, last.TotalValueUSD)
	if err != nil {
		c.logger.Warn("totals unavailable for APY computation", zap.String("vault_id", vaultID), zap.Error(err))
		return 0
	}
	netDeposits := totals.NetDeposits()

	days := last.Timestamp.Sub(first.Timestamp).Hours() / 24.0
	if days <= 0 || !netDeposits.IsPositive() {
		return 0
	}

	totalReturn := last.TotalValueUSD.Sub(netDeposits).Div(netDeposits).InexactFloat64()
	return annualize(totalReturn, days, apyCapSnapshot)
}

// currentValue resolves the vault's present value: latest plausible snapshot
// first, live-converted balance when no snapshot exists yet.
func (c *APYCalculator) currentValue(ctx context.Context, vault *models.Vault) (decimal.Decimal, bool) {
	snap, err := c.snapRepo.Latest(ctx, vault.ID)
	if err == nil && snap != nil && snap.IsPlausible() {
		return snap.TotalValueUSD, true
	}
	if err != nil {
		c.logger.Warn("latest snapshot unavailable", zap.String("vault_id", vault.ID), zap.Error(err))
	}

	if c.chain == nil {
		return decimal.Zero, false
	}
	units, err := c.chain.GetVaultBalance(ctx, vault.AssetContract)
	if err != nil {
		c.logger.Debug("live balance unavailable", zap.String("vault_id", vault.ID), zap.Error(err))
		return decimal.Zero, false
	}
	value, err := c.chain.ConvertToUSD(ctx, vault.AssetCode, units)
	if err != nil {
		c.logger.Debug("unit conversion unavailable", zap.String("vault_id", vault.ID), zap.Error(err))
		return decimal.Zero, false
	}
	return value, true
}

// annualize turns a total return over daysInvested into a clamped APY
// percentage. Under one day of data the raw return is reported instead, since
// annualizing a single day produces misleading extremes.
func annualize(totalReturn, daysInvested, cap float64) float64 {
	var apy float64
	if daysInvested < 1 {
		apy = totalReturn * 100
	} else {
		apy = (math.Pow(1+totalReturn, 365/daysInvested) - 1) * 100
	}
	if math.IsNaN(apy) {
		return 0
	}
	return clampFloat(apy, apyFloor, cap)
}

// rejectOutliers drops snapshots whose value sits more than 10x away from the
// series median in either direction.
func rejectOutliers(snapshots []*models.ValueSnapshot) []*models.ValueSnapshot {
	if len(snapshots) < 2 {
		return snapshots
	}

	values := make([]float64, len(snapshots))
	for i, s := range snapshots {
		values[i] = s.TotalValueUSD.InexactFloat64()
	}
	med := median(values)
	if med <= 0 {
		return snapshots
	}

	surviving := make([]*models.ValueSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		ratio := s.TotalValueUSD.InexactFloat64() / med
		if ratio >= 1/outlierRatio && ratio <= outlierRatio {
			surviving = append(surviving, s)
		}
	}
	return surviving
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// isNaNOrInf guards ratio math against degenerate float results
func isNaNOrInf(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
