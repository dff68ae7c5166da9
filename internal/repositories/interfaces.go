package repositories

import (
	"context"
	"time"

	"github.com/lumenvault/backend/internal/models"
)

// VaultRepository defines read access to vault records
type VaultRepository interface {
	GetByID(ctx context.Context, id string) (*models.Vault, error)
	List(ctx context.Context, filter *models.VaultFilter) ([]*models.Vault, error)
	ListByOwner(ctx context.Context, owner, network string) ([]*models.Vault, error)
}

// TransactionRepository defines read access to the append-only vault ledger
type TransactionRepository interface {
	ListByVault(ctx context.Context, vaultID string) ([]*models.VaultTransaction, error)
	ListRecent(ctx context.Context, vaultID string, limit int) ([]*models.VaultTransaction, error)
}

// SnapshotRepository defines read access to periodic value snapshots
type SnapshotRepository interface {
	// ListByVault returns snapshots at or after since, oldest first
	ListByVault(ctx context.Context, vaultID string, since time.Time) ([]*models.ValueSnapshot, error)
	// Latest returns the newest snapshot, or nil when none exist
	Latest(ctx context.Context, vaultID string) (*models.ValueSnapshot, error)
	// LatestBefore returns the newest snapshot at or before cutoff, or nil
	LatestBefore(ctx context.Context, vaultID string, cutoff time.Time) (*models.ValueSnapshot, error)
	ListRecent(ctx context.Context, vaultID string, limit int) ([]*models.ValueSnapshot, error)
}
