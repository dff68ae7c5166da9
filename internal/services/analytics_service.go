package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lumenvault/backend/internal/models"
	"github.com/lumenvault/backend/internal/repositories"
)

const defaultLookbackDays = 30

// earningsNoiseFraction bounds the slightly-negative earnings band that is
// written off as price noise when the ledger shows no net flow.
var earningsNoiseFraction = decimal.NewFromFloat(0.01)

// VaultAnalyticsService assembles the per-vault report. Every figure is
// recomputed per request from the ledger and snapshot history so APY,
// earnings and TVL change always agree with each other.
type VaultAnalyticsService struct {
	vaultRepo repositories.VaultRepository
	txRepo    repositories.TransactionRepository
	snapRepo  repositories.SnapshotRepository
	apy       *APYCalculator
	totals    *TotalsResolver
	risk      *RiskEngine
	chain     ChainReader
	logger    *zap.Logger
	now       func() time.Time
}

// NewVaultAnalyticsService creates the vault analytics aggregator
func NewVaultAnalyticsService(
	vaultRepo repositories.VaultRepository,
	txRepo repositories.TransactionRepository,
	snapRepo repositories.SnapshotRepository,
	apy *APYCalculator,
	totals *TotalsResolver,
	risk *RiskEngine,
	chain ChainReader,
	logger *zap.Logger,
) *VaultAnalyticsService {
	return NewVaultAnalyticsServiceWithClock(vaultRepo, txRepo, snapRepo, apy, totals, risk, chain, logger, time.Now)
}

// NewVaultAnalyticsServiceWithClock injects the clock used for lookback
// windows and report timestamps.
func NewVaultAnalyticsServiceWithClock(
	vaultRepo repositories.VaultRepository,
	txRepo repositories.TransactionRepository,
	snapRepo repositories.SnapshotRepository,
	apy *APYCalculator,
	totals *TotalsResolver,
	risk *RiskEngine,
	chain ChainReader,
	logger *zap.Logger,
	now func() time.Time,
) *VaultAnalyticsService {
	return &VaultAnalyticsService{
		vaultRepo: vaultRepo,
		txRepo:    txRepo,
		snapRepo:  snapRepo,
		apy:       apy,
		totals:    totals,
		risk:      risk,
		chain:     chain,
		logger:    logger,
		now:       now,
	}
}

// GetVaultAnalytics computes the consistent per-vault report. The only
// failure that propagates is an unresolvable vault ID; every data gap inside
// resolves to a documented neutral value.
func (s *VaultAnalyticsService) GetVaultAnalytics(ctx context.Context, vaultID string) (*models.VaultAnalytics, error) {
	vault, err := s.vaultRepo.GetByID(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	tvl := s.resolveTVL(ctx, vault)

	totals, err := s.totals.ResolveTotals(ctx, vault.ID, tvl)
	if err != nil {
		return nil, err
	}
	netDeposits := totals.NetDeposits()

	// Stored snapshot APY is never trusted here: recomputing against the
	// same totals keeps APY and earnings mutually consistent.
	apy := s.apy.ComputeAPY(ctx, vault)

	earnings := clampEarnings(tvl, netDeposits, totals)

	earningsPct := 0.0
	if netDeposits.IsPositive() {
		earningsPct = earnings.Div(netDeposits).InexactFloat64() * 100
	}

	sharePrice := decimal.NewFromInt(1)
	if vault.TotalShares.IsPositive() {
		sharePrice = tvl.Div(vault.TotalShares)
	}

	change24h, change7d := s.tvlChanges(ctx, vault.ID)

	return &models.VaultAnalytics{
		VaultID:            vault.ID,
		TVL:                tvl,
		TVLChange24h:       change24h,
		TVLChange7d:        change7d,
		APY:                apy,
		TotalDeposits:      totals.TotalDeposits,
		TotalWithdrawals:   totals.TotalWithdrawals,
		NetDeposits:        netDeposits,
		TotalEarnings:      earnings,
		EarningsPercentage: earningsPct,
		SharePrice:         sharePrice,
		TotalShares:        vault.TotalShares,
		LastUpdated:        s.now(),
	}, nil
}

// GetDetailedVaultAnalytics adds recent activity and vault-scope risk figures
func (s *VaultAnalyticsService) GetDetailedVaultAnalytics(ctx context.Context, vaultID string) (*models.DetailedVaultAnalytics, error) {
	base, err := s.GetVaultAnalytics(ctx, vaultID)
	if err != nil {
		return nil, err
	}

	recentTxs, err := s.txRepo.ListRecent(ctx, vaultID, 10)
	if err != nil {
		s.logger.Warn("recent transactions unavailable", zap.String("vault_id", vaultID), zap.Error(err))
		recentTxs = nil
	}
	recentSnaps, err := s.snapRepo.ListRecent(ctx, vaultID, 24)
	if err != nil {
		s.logger.Warn("recent snapshots unavailable", zap.String("vault_id", vaultID), zap.Error(err))
		recentSnaps = nil
	}

	sharpe, drawdown, volatility := s.risk.VaultRiskFigures(ctx, vaultID)

	return &models.DetailedVaultAnalytics{
		VaultAnalytics:     *base,
		RecentTransactions: recentTxs,
		RecentSnapshots:    recentSnaps,
		SharpeRatio:        sharpe,
		MaxDrawdown:        drawdown,
		Volatility:         volatility,
	}, nil
}

// GetHistoricalPerformance returns the vault's time-ordered performance
// series over the lookback window; empty when no snapshots exist.
func (s *VaultAnalyticsService) GetHistoricalPerformance(ctx context.Context, vaultID string, days int) ([]*models.PerformancePoint, error) {
	if _, err := s.vaultRepo.GetByID(ctx, vaultID); err != nil {
		return nil, err
	}
	if days <= 0 {
		days = defaultLookbackDays
	}

	since := s.now().AddDate(0, 0, -days)
	snapshots, err := s.snapRepo.ListByVault(ctx, vaultID, since)
	if err != nil {
		return nil, err
	}

	plausible := models.PlausibleSnapshots(snapshots)
	points := make([]*models.PerformancePoint, 0, len(plausible))
	var first *models.ValueSnapshot
	if len(plausible) > 0 {
		first = plausible[0]
	}
	for _, snap := range plausible {
		// APY per point is the annualized growth from the start of the series;
		// the stored figure is advisory only.
		apy := 0.0
		if daysElapsed := snap.Timestamp.Sub(first.Timestamp).Hours() / 24.0; daysElapsed > 0 && first.TotalValueUSD.IsPositive() {
			growth := snap.TotalValueUSD.Div(first.TotalValueUSD).InexactFloat64() - 1
			apy = annualize(growth, daysElapsed, apyCapSnapshot)
		}
		points = append(points, &models.PerformancePoint{
			Date:  snap.Timestamp.Format("2006-01-02"),
			Value: snap.TotalValueUSD,
			APY:   apy,
		})
	}
	return points, nil
}

// resolveTVL picks the latest plausible snapshot, falls back to a live
// converted balance, and finally to zero with a logged data gap.
func (s *VaultAnalyticsService) resolveTVL(ctx context.Context, vault *models.Vault) decimal.Decimal {
	snap, err := s.snapRepo.Latest(ctx, vault.ID)
	if err != nil {
		s.logger.Warn("latest snapshot unavailable", zap.String("vault_id", vault.ID), zap.Error(err))
	}
	if snap != nil && snap.IsPlausible() {
		return snap.TotalValueUSD
	}

	if s.chain != nil {
		units, err := s.chain.GetVaultBalance(ctx, vault.AssetContract)
		if err == nil {
			value, convErr := s.chain.ConvertToUSD(ctx, vault.AssetCode, units)
			if convErr == nil {
				return value
			}
			err = convErr
		}
		s.logger.Debug("live TVL unavailable", zap.String("vault_id", vault.ID), zap.Error(err))
	}

	s.logger.Warn("no TVL source for vault, reporting zero", zap.String("vault_id", vault.ID))
	return decimal.Zero
}

// tvlChanges reads pre-computed 24h/7d change off the latest snapshot when
// present and derives each missing window from snapshot pairs otherwise.
func (s *VaultAnalyticsService) tvlChanges(ctx context.Context, vaultID string) (float64, float64) {
	latest, err := s.snapRepo.Latest(ctx, vaultID)
	if err != nil || latest == nil || !latest.IsPlausible() {
		return 0, 0
	}

	change24h := s.changeOverWindow(ctx, vaultID, latest, latest.Returns24h, 24*time.Hour)
	change7d := s.changeOverWindow(ctx, vaultID, latest, latest.Returns7d, 7*24*time.Hour)
	return change24h, change7d
}

func (s *VaultAnalyticsService) changeOverWindow(ctx context.Context, vaultID string, latest *models.ValueSnapshot, stored *decimal.Decimal, window time.Duration) float64 {
	if stored != nil {
		return stored.InexactFloat64()
	}

	prior, err := s.snapRepo.LatestBefore(ctx, vaultID, s.now().Add(-window))
	if err != nil || prior == nil || !prior.IsPlausible() {
		return 0
	}
	return latest.TotalValueUSD.Sub(prior.TotalValueUSD).
		Div(prior.TotalValueUSD).InexactFloat64() * 100
}

// clampEarnings applies the two safety clamps on tvl - netDeposits: an
// impossible loss below -tvl resets to zero, and a sub-1%-of-TVL negative
// delta with no ledgered net flow is treated as price noise.
func clampEarnings(tvl, netDeposits decimal.Decimal, totals models.TransactionTotals) decimal.Decimal {
	earnings := tvl.Sub(netDeposits)

	if earnings.LessThan(tvl.Neg()) {
		return decimal.Zero
	}

	if earnings.IsNegative() &&
		earnings.Abs().LessThan(tvl.Mul(earningsNoiseFraction)) &&
		totals.TotalDeposits.Equal(totals.TotalWithdrawals) {
		return decimal.Zero
	}

	return earnings
}
