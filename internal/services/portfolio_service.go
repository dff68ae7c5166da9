package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lumenvault/backend/internal/models"
	"github.com/lumenvault/backend/internal/repositories"
)

// allocationPalette colors portfolio slices deterministically by rank
var allocationPalette = []string{
	"#6366f1", "#22c55e", "#f59e0b", "#ef4444",
	"#06b6d4", "#a855f7", "#84cc16", "#f97316",
}

// networkNativeAssets maps a network to its native asset symbol
var networkNativeAssets = map[string]string{
	"testnet":   "XLM",
	"futurenet": "XLM",
	"mainnet":   "XLM",
}

// PortfolioAnalyticsService rolls per-vault analytics and portfolio-wide risk
// figures into one view. Vault-level computations are independent, so they
// fan out concurrently; one vault's failure degrades to a zeroed record
// without aborting the rest.
type PortfolioAnalyticsService struct {
	vaultRepo   repositories.VaultRepository
	snapRepo    repositories.SnapshotRepository
	analytics   *VaultAnalyticsService
	risk        *RiskEngine
	correlation CorrelationStrategy
	assetNames  AssetNameService
	chain       ChainReader
	logger      *zap.Logger
	now         func() time.Time
}

// NewPortfolioAnalyticsService creates the portfolio aggregator
func NewPortfolioAnalyticsService(
	vaultRepo repositories.VaultRepository,
	snapRepo repositories.SnapshotRepository,
	analytics *VaultAnalyticsService,
	risk *RiskEngine,
	correlation CorrelationStrategy,
	assetNames AssetNameService,
	chain ChainReader,
	logger *zap.Logger,
) *PortfolioAnalyticsService {
	return NewPortfolioAnalyticsServiceWithClock(vaultRepo, snapRepo, analytics, risk, correlation, assetNames, chain, logger, time.Now)
}

// NewPortfolioAnalyticsServiceWithClock injects the clock used for report
// timestamps and lookback windows.
func NewPortfolioAnalyticsServiceWithClock(
	vaultRepo repositories.VaultRepository,
	snapRepo repositories.SnapshotRepository,
	analytics *VaultAnalyticsService,
	risk *RiskEngine,
	correlation CorrelationStrategy,
	assetNames AssetNameService,
	chain ChainReader,
	logger *zap.Logger,
	now func() time.Time,
) *PortfolioAnalyticsService {
	return &PortfolioAnalyticsService{
		vaultRepo:   vaultRepo,
		snapRepo:    snapRepo,
		analytics:   analytics,
		risk:        risk,
		correlation: correlation,
		assetNames:  assetNames,
		chain:       chain,
		logger:      logger,
		now:         now,
	}
}

// GetPortfolioAnalytics aggregates every vault the owner holds on the network
func (s *PortfolioAnalyticsService) GetPortfolioAnalytics(ctx context.Context, owner, network string) (*models.PortfolioAnalytics, error) {
	if network == "" {
		network = models.DefaultNetwork
	}

	vaults, err := s.vaultRepo.ListByOwner(ctx, owner, network)
	if err != nil {
		return nil, err
	}

	perVault := s.fanOutAnalytics(ctx, vaults)

	portfolio := &models.PortfolioAnalytics{
		Owner:         owner,
		Network:       network,
		TotalTVL:      decimal.Zero,
		TotalEarnings: decimal.Zero,
		NetDeposits:   decimal.Zero,
		VaultCount:    len(vaults),
		Vaults:        perVault,
		LastUpdated:   s.now(),
	}

	nonZeroAPYSum := 0.0
	nonZeroAPYCount := 0
	weightedSum := 0.0
	for _, va := range perVault {
		portfolio.TotalTVL = portfolio.TotalTVL.Add(va.TVL)
		portfolio.TotalEarnings = portfolio.TotalEarnings.Add(va.TotalEarnings)
		portfolio.NetDeposits = portfolio.NetDeposits.Add(va.NetDeposits)

		// Vaults with no computable APY are excluded from the simple mean
		// rather than dragging it toward zero.
		if va.APY != 0 {
			nonZeroAPYSum += va.APY
			nonZeroAPYCount++
		}
		weightedSum += va.TVL.InexactFloat64() * va.APY
	}

	if nonZeroAPYCount > 0 {
		portfolio.AverageAPY = nonZeroAPYSum / float64(nonZeroAPYCount)
	}
	if totalTVL := portfolio.TotalTVL.InexactFloat64(); totalTVL > 0 {
		portfolio.WeightedAPY = weightedSum / totalTVL
	}

	if len(perVault) > 0 {
		ranked := make([]models.VaultAnalytics, len(perVault))
		copy(ranked, perVault)
		sort.SliceStable(ranked, func(i, j int) bool {
			return ranked[i].APY > ranked[j].APY
		})
		portfolio.BestPerformer = ranked[0].VaultID
		portfolio.WorstPerformer = ranked[len(ranked)-1].VaultID
	}

	portfolio.RiskMetrics = s.risk.ComputeRiskMetrics(ctx, vaultIDs(vaults))
	portfolio.Correlations = s.correlation.EstimateCorrelations(s.heldAssets(ctx, vaults), networkNativeAssets[network])

	return portfolio, nil
}

// GetPortfolioPerformanceHistory returns the hourly portfolio value series
// with a rolling 7-point volatility and running drawdown attached to each
// point.
func (s *PortfolioAnalyticsService) GetPortfolioPerformanceHistory(ctx context.Context, owner, network string, days int) ([]*models.PortfolioPerformancePoint, error) {
	if network == "" {
		network = models.DefaultNetwork
	}
	if days <= 0 {
		days = defaultLookbackDays
	}

	vaults, err := s.vaultRepo.ListByOwner(ctx, owner, network)
	if err != nil {
		return nil, err
	}

	series := s.risk.BuildPortfolioSeries(ctx, vaultIDs(vaults), days)
	if len(series) == 0 {
		return []*models.PortfolioPerformancePoint{}, nil
	}

	points := make([]*models.PortfolioPerformancePoint, 0, len(series))
	returns := make([]float64, 0, len(series))
	first := series[0]
	peak := 0.0

	for i, p := range series {
		if i > 0 && series[i-1].value > 0 {
			returns = append(returns, (p.value-series[i-1].value)/series[i-1].value)
		}
		if p.value > peak {
			peak = p.value
		}

		drawdown := 0.0
		if peak > 0 {
			drawdown = (p.value - peak) / peak * 100
		}

		// Rolling volatility over the trailing 7 returns
		window := returns
		if len(window) > 7 {
			window = window[len(window)-7:]
		}
		volatility := stdDeviation(window) * 100

		apy := 0.0
		if daysElapsed := p.bucket.Sub(first.bucket).Hours() / 24.0; daysElapsed > 0 && first.value > 0 {
			apy = annualize(p.value/first.value-1, daysElapsed, apyCapSnapshot)
		}

		points = append(points, &models.PortfolioPerformancePoint{
			Date:       p.bucket.Format("2006-01-02"),
			Value:      decimal.NewFromFloat(p.value),
			APY:        apy,
			Volatility: volatility,
			Drawdown:   drawdown,
			Timestamp:  p.bucket,
		})
	}
	return points, nil
}

// GetPortfolioAllocation reports each asset's share of the portfolio,
// preferring live on-chain balances and falling back to configured target
// allocations against the vault's latest valuation.
func (s *PortfolioAnalyticsService) GetPortfolioAllocation(ctx context.Context, owner, network string) ([]*models.AllocationSlice, error) {
	if network == "" {
		network = models.DefaultNetwork
	}

	vaults, err := s.vaultRepo.ListByOwner(ctx, owner, network)
	if err != nil {
		return nil, err
	}

	valuesByAsset := make(map[string]decimal.Decimal)
	for _, vault := range vaults {
		s.accumulateVaultAllocation(ctx, vault, valuesByAsset)
	}

	total := decimal.Zero
	for _, v := range valuesByAsset {
		total = total.Add(v)
	}

	slices := make([]*models.AllocationSlice, 0, len(valuesByAsset))
	for asset, value := range valuesByAsset {
		pct := 0.0
		if total.IsPositive() {
			pct = value.Div(total).InexactFloat64() * 100
		}
		slices = append(slices, &models.AllocationSlice{
			Asset:      asset,
			Value:      value,
			Percentage: pct,
		})
	}

	sort.Slice(slices, func(i, j int) bool {
		if !slices[i].Value.Equal(slices[j].Value) {
			return slices[i].Value.GreaterThan(slices[j].Value)
		}
		return slices[i].Asset < slices[j].Asset
	})
	for i, slice := range slices {
		slice.Color = allocationPalette[i%len(allocationPalette)]
	}
	return slices, nil
}

// GetVaultBreakdown computes the detailed per-vault view across the portfolio
func (s *PortfolioAnalyticsService) GetVaultBreakdown(ctx context.Context, owner, network string) (*models.VaultBreakdown, error) {
	if network == "" {
		network = models.DefaultNetwork
	}

	vaults, err := s.vaultRepo.ListByOwner(ctx, owner, network)
	if err != nil {
		return nil, err
	}

	details := make([]models.DetailedVaultAnalytics, len(vaults))
	var wg sync.WaitGroup
	for i, vault := range vaults {
		wg.Add(1)
		go func(i int, vaultID string) {
			defer wg.Done()
			detail, err := s.analytics.GetDetailedVaultAnalytics(ctx, vaultID)
			if err != nil {
				s.logger.Warn("vault breakdown failed, reporting zeroed record",
					zap.String("vault_id", vaultID), zap.Error(err))
				details[i] = models.DetailedVaultAnalytics{
					VaultAnalytics: zeroedAnalytics(vaultID, s.now()),
				}
				return
			}
			details[i] = *detail
		}(i, vault.ID)
	}
	wg.Wait()

	return &models.VaultBreakdown{Owner: owner, Network: network, Vaults: details}, nil
}

// fanOutAnalytics computes every vault's analytics concurrently. Result order
// matches the input order; failures yield zeroed records.
func (s *PortfolioAnalyticsService) fanOutAnalytics(ctx context.Context, vaults []*models.Vault) []models.VaultAnalytics {
	results := make([]models.VaultAnalytics, len(vaults))
	var wg sync.WaitGroup
	for i, vault := range vaults {
		wg.Add(1)
		go func(i int, vaultID string) {
			defer wg.Done()
			va, err := s.analytics.GetVaultAnalytics(ctx, vaultID)
			if err != nil {
				s.logger.Warn("vault analytics failed during portfolio fan-out",
					zap.String("vault_id", vaultID), zap.Error(err))
				results[i] = zeroedAnalytics(vaultID, s.now())
				return
			}
			results[i] = *va
		}(i, vault.ID)
	}
	wg.Wait()
	return results
}

// accumulateVaultAllocation adds one vault's asset values into the aggregate.
// Live balance first; configured targets against the latest valuation next;
// the vault's own asset at full TVL last.
func (s *PortfolioAnalyticsService) accumulateVaultAllocation(ctx context.Context, vault *models.Vault, valuesByAsset map[string]decimal.Decimal) {
	if s.chain != nil {
		units, err := s.chain.GetVaultBalance(ctx, vault.AssetContract)
		if err == nil {
			value, convErr := s.chain.ConvertToUSD(ctx, vault.AssetCode, units)
			if convErr == nil {
				asset := s.assetNames.ResolveSymbol(ctx, vault.AssetContract)
				valuesByAsset[asset] = valuesByAsset[asset].Add(value)
				return
			}
		}
		s.logger.Debug("live allocation unavailable, using configured targets",
			zap.String("vault_id", vault.ID))
	}

	tvl := decimal.Zero
	if snap, err := s.snapRepo.Latest(ctx, vault.ID); err == nil && snap != nil && snap.IsPlausible() {
		tvl = snap.TotalValueUSD
	}

	if len(vault.Allocations) == 0 {
		asset := s.assetNames.ResolveSymbol(ctx, vault.AssetContract)
		valuesByAsset[asset] = valuesByAsset[asset].Add(tvl)
		return
	}

	hundred := decimal.NewFromInt(100)
	for _, alloc := range vault.Allocations {
		value := tvl.Mul(alloc.TargetPercent).Div(hundred)
		valuesByAsset[alloc.Asset] = valuesByAsset[alloc.Asset].Add(value)
	}
}

// heldAssets collects the distinct assets behind an owner's vaults: the
// vault's own asset plus any configured allocation targets.
func (s *PortfolioAnalyticsService) heldAssets(ctx context.Context, vaults []*models.Vault) []string {
	assets := make([]string, 0, len(vaults))
	for _, vault := range vaults {
		assets = append(assets, s.assetNames.ResolveSymbol(ctx, vault.AssetContract))
		for _, alloc := range vault.Allocations {
			assets = append(assets, alloc.Asset)
		}
	}
	return assets
}

func vaultIDs(vaults []*models.Vault) []string {
	ids := make([]string, len(vaults))
	for i, v := range vaults {
		ids[i] = v.ID
	}
	return ids
}

// zeroedAnalytics is the degraded record for a vault whose computation failed
// mid-portfolio; it never aborts the other vaults.
func zeroedAnalytics(vaultID string, at time.Time) models.VaultAnalytics {
	return models.VaultAnalytics{
		VaultID:          vaultID,
		TVL:              decimal.Zero,
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
		NetDeposits:      decimal.Zero,
		TotalEarnings:    decimal.Zero,
		SharePrice:       decimal.NewFromInt(1),
		TotalShares:      decimal.Zero,
		LastUpdated:      at,
	}
}
