package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/lumenvault/backend/internal/models"
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a gorm-backed ledger repository
func NewTransactionRepository(db *gorm.DB) TransactionRepository {
	return &transactionRepository{db: db}
}

// ListByVault returns the full ledger for a vault, oldest entry first
func (r *transactionRepository) ListByVault(ctx context.Context, vaultID string) ([]*models.VaultTransaction, error) {
	var txs []models.VaultTransaction
	err := r.db.WithContext(ctx).
		Where("vault_id = ?", vaultID).
		Order("timestamp ASC").
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions for vault %s: %w", vaultID, err)
	}

	result := make([]*models.VaultTransaction, len(txs))
	for i := range txs {
		result[i] = &txs[i]
	}
	return result, nil
}

// ListRecent returns the newest ledger entries, newest first
func (r *transactionRepository) ListRecent(ctx context.Context, vaultID string, limit int) ([]*models.VaultTransaction, error) {
	if limit <= 0 {
		limit = 10
	}

	var txs []models.VaultTransaction
	err := r.db.WithContext(ctx).
		Where("vault_id = ?", vaultID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent transactions for vault %s: %w", vaultID, err)
	}

	result := make([]*models.VaultTransaction, len(txs))
	for i := range txs {
		result[i] = &txs[i]
	}
	return result, nil
}
