package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lumenvault/backend/internal/apperrors"
	"github.com/lumenvault/backend/internal/models"
)

// ---- In-memory fakes for the repository interfaces used in unit tests ----

type fakeVaultRepo struct {
	vaults []*models.Vault
	// listExtra vaults appear in owner listings but are unknown to GetByID,
	// simulating a listing that outruns the vault table.
	listExtra []*models.Vault
	err       error
}

func (f *fakeVaultRepo) GetByID(ctx context.Context, id string) (*models.Vault, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, v := range f.vaults {
		if v.ID == id {
			return v, nil
		}
	}
	return nil, apperrors.NewNotFound("vault", id)
}

func (f *fakeVaultRepo) List(ctx context.Context, filter *models.VaultFilter) ([]*models.Vault, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.vaults, nil
}

func (f *fakeVaultRepo) ListByOwner(ctx context.Context, owner, network string) ([]*models.Vault, error) {
	if f.err != nil {
		return nil, f.err
	}
	if network == "" {
		network = models.DefaultNetwork
	}
	var result []*models.Vault
	for _, v := range append(append([]*models.Vault(nil), f.vaults...), f.listExtra...) {
		if v.Owner == owner && v.Network == network && !v.IsClosed() {
			result = append(result, v)
		}
	}
	return result, nil
}

type fakeTxRepo struct {
	txs map[string][]*models.VaultTransaction
	err error
}

func (f *fakeTxRepo) ListByVault(ctx context.Context, vaultID string) ([]*models.VaultTransaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	txs := append([]*models.VaultTransaction(nil), f.txs[vaultID]...)
	sort.Slice(txs, func(i, j int) bool { return txs[i].Timestamp.Before(txs[j].Timestamp) })
	return txs, nil
}

func (f *fakeTxRepo) ListRecent(ctx context.Context, vaultID string, limit int) ([]*models.VaultTransaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	txs, _ := f.ListByVault(ctx, vaultID)
	sort.Slice(txs, func(i, j int) bool { return txs[i].Timestamp.After(txs[j].Timestamp) })
	if limit > 0 && len(txs) > limit {
		txs = txs[:limit]
	}
	return txs, nil
}

type fakeSnapRepo struct {
	snaps map[string][]*models.ValueSnapshot
	err   error
}

func (f *fakeSnapRepo) sorted(vaultID string) []*models.ValueSnapshot {
	snaps := append([]*models.ValueSnapshot(nil), f.snaps[vaultID]...)
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Timestamp.Before(snaps[j].Timestamp) })
	return snaps
}

func (f *fakeSnapRepo) ListByVault(ctx context.Context, vaultID string, since time.Time) ([]*models.ValueSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []*models.ValueSnapshot
	for _, s := range f.sorted(vaultID) {
		if since.IsZero() || !s.Timestamp.Before(since) {
			result = append(result, s)
		}
	}
	return result, nil
}

func (f *fakeSnapRepo) Latest(ctx context.Context, vaultID string) (*models.ValueSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	snaps := f.sorted(vaultID)
	if len(snaps) == 0 {
		return nil, nil
	}
	return snaps[len(snaps)-1], nil
}

func (f *fakeSnapRepo) LatestBefore(ctx context.Context, vaultID string, cutoff time.Time) (*models.ValueSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	var latest *models.ValueSnapshot
	for _, s := range f.sorted(vaultID) {
		if !s.Timestamp.After(cutoff) {
			latest = s
		}
	}
	return latest, nil
}

func (f *fakeSnapRepo) ListRecent(ctx context.Context, vaultID string, limit int) ([]*models.ValueSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	snaps := f.sorted(vaultID)
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].Timestamp.After(snaps[j].Timestamp) })
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}
	return snaps, nil
}

// fakeLookup is a scriptable SymbolLookup
type fakeLookup struct {
	symbols map[string]string
	err     error
	calls   int
}

func (f *fakeLookup) LookupSymbol(ctx context.Context, contractID string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	symbol, ok := f.symbols[contractID]
	if !ok {
		return "", fmt.Errorf("unknown contract %s", contractID)
	}
	return symbol, nil
}

// ---- Test data helpers ----

var testEpoch = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func testVault(id, owner string) *models.Vault {
	return &models.Vault{
		ID:            id,
		Name:          "Vault " + id,
		Owner:         owner,
		Status:        models.VaultStatusActive,
		Network:       models.DefaultNetwork,
		AssetCode:     "USDC",
		AssetContract: "CCW67TSZV3SSS2HXMBQ5JFGCKJNXKZM7UQUWUZPUTHXSTZLEO7SJMI75",
	}
}

func deposit(vaultID string, amount float64, at time.Time) *models.VaultTransaction {
	return &models.VaultTransaction{
		ID:        fmt.Sprintf("tx-%s-%d", vaultID, at.UnixNano()),
		VaultID:   vaultID,
		Type:      models.VaultTxTypeDeposit,
		AmountUSD: decimal.NewFromFloat(amount),
		Timestamp: at,
	}
}

func withdrawal(vaultID string, amount float64, at time.Time) *models.VaultTransaction {
	return &models.VaultTransaction{
		ID:        fmt.Sprintf("tx-%s-%d", vaultID, at.UnixNano()),
		VaultID:   vaultID,
		Type:      models.VaultTxTypeWithdrawal,
		AmountUSD: decimal.NewFromFloat(amount),
		Timestamp: at,
	}
}

func snapshot(vaultID string, value float64, at time.Time) *models.ValueSnapshot {
	return &models.ValueSnapshot{
		ID:            fmt.Sprintf("snap-%s-%d", vaultID, at.UnixNano()),
		VaultID:       vaultID,
		TotalValueUSD: decimal.NewFromFloat(value),
		Timestamp:     at,
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}

// testEngine wires the full engine over the given fakes with a clock frozen
// at the supplied reference time.
func testEngine(vaultRepo *fakeVaultRepo, txRepo *fakeTxRepo, snapRepo *fakeSnapRepo, chain *MockChainClient, now time.Time) (*VaultAnalyticsService, *PortfolioAnalyticsService) {
	clock := func() time.Time { return now }
	log := testLogger()

	var reader ChainReader
	var lookup SymbolLookup
	if chain != nil {
		reader = chain
		lookup = chain
	}

	totals := NewTotalsResolver(txRepo, snapRepo, log)
	apy := NewAPYCalculatorWithClock(txRepo, snapRepo, totals, reader, log, clock)
	risk := NewRiskEngineWithClock(snapRepo, log, clock)
	analytics := NewVaultAnalyticsServiceWithClock(vaultRepo, txRepo, snapRepo, apy, totals, risk, reader, log, clock)

	resolver := NewAssetNameResolverWithClock(lookup, log, clock)
	correlation := NewHeuristicCorrelation(42)
	portfolio := NewPortfolioAnalyticsServiceWithClock(vaultRepo, snapRepo, analytics, risk, correlation, resolver, reader, log, clock)

	return analytics, portfolio
}
