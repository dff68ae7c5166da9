package services

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/lumenvault/backend/internal/models"
	"github.com/lumenvault/backend/internal/repositories"
)

// withdrawalDropThreshold is the fraction of the prior snapshot value a drop
// must exceed before the fallback path attributes it to a withdrawal.
var withdrawalDropThreshold = decimal.NewFromFloat(0.30)

// TotalsResolver computes gross deposits and withdrawals for a vault. The
// ledger is authoritative whenever it has entries; without a ledger the
// resolver estimates a baseline from snapshot history.
type TotalsResolver struct {
	txRepo   repositories.TransactionRepository
	snapRepo repositories.SnapshotRepository
	logger   *zap.Logger
}

// NewTotalsResolver creates a transaction totals resolver
func NewTotalsResolver(txRepo repositories.TransactionRepository, snapRepo repositories.SnapshotRepository, logger *zap.Logger) *TotalsResolver {
	return &TotalsResolver{txRepo: txRepo, snapRepo: snapRepo, logger: logger}
}

// ResolveTotals returns gross deposits and withdrawals for the vault.
// currentTVL anchors the fallback estimation when no ledger exists.
func (r *TotalsResolver) ResolveTotals(ctx context.Context, vaultID string, currentTVL decimal.Decimal) (models.TransactionTotals, error) {
	txs, err := r.txRepo.ListByVault(ctx, vaultID)
	if err != nil {
		return models.TransactionTotals{}, err
	}
	if len(txs) > 0 {
		return sumLedger(txs), nil
	}

	snapshots, err := r.snapRepo.ListByVault(ctx, vaultID, time.Time{})
	if err != nil {
		return models.TransactionTotals{}, err
	}
	return r.estimateFromSnapshots(vaultID, snapshots, currentTVL), nil
}

// sumLedger sums ledgered flows by type; exact and precise
func sumLedger(txs []*models.VaultTransaction) models.TransactionTotals {
	totals := models.TransactionTotals{
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
	}
	for _, tx := range txs {
		if tx.IsDeposit() {
			totals.TotalDeposits = totals.TotalDeposits.Add(tx.AmountUSD)
		} else {
			totals.TotalWithdrawals = totals.TotalWithdrawals.Add(tx.AmountUSD)
		}
	}
	return totals
}

// estimateFromSnapshots treats the minimum plausible snapshot value as the
// deposit baseline and attributes any >30% drop between consecutive snapshots
// to a withdrawal. This is an acknowledged approximation behind the
// ledger-first strategy, not rigorous accounting.
func (r *TotalsResolver) estimateFromSnapshots(vaultID string, snapshots []*models.ValueSnapshot, currentTVL decimal.Decimal) models.TransactionTotals {
	valid := models.PlausibleSnapshots(snapshots)
	if len(valid) == 0 {
		return models.TransactionTotals{
			TotalDeposits:    currentTVL,
			TotalWithdrawals: decimal.Zero,
		}
	}

	minValue := valid[0].TotalValueUSD
	for _, s := range valid[1:] {
		if s.TotalValueUSD.LessThan(minValue) {
			minValue = s.TotalValueUSD
		}
	}

	// A historical minimum far above the present value means the history
	// itself is corrupted; fall back to the present value as baseline.
	if minValue.GreaterThan(currentTVL.Mul(decimal.NewFromInt(2))) {
		r.logger.Warn("snapshot history implausible against current TVL, using TVL as deposit baseline",
			zap.String("vault_id", vaultID),
			zap.String("min_snapshot", minValue.String()),
			zap.String("current_tvl", currentTVL.String()))
		return models.TransactionTotals{
			TotalDeposits:    currentTVL,
			TotalWithdrawals: decimal.Zero,
		}
	}

	withdrawals := decimal.Zero
	for i := 1; i < len(valid); i++ {
		prev := valid[i-1].TotalValueUSD
		curr := valid[i].TotalValueUSD
		drop := prev.Sub(curr)
		if drop.GreaterThan(prev.Mul(withdrawalDropThreshold)) {
			withdrawals = withdrawals.Add(drop)
		}
	}

	return models.TransactionTotals{
		TotalDeposits:    minValue,
		TotalWithdrawals: withdrawals,
	}
}
