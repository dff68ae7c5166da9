package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lumenvault/backend/internal/apperrors"
	"github.com/lumenvault/backend/internal/models"
)

type vaultRepository struct {
	db *gorm.DB
}

// NewVaultRepository creates a gorm-backed vault repository
func NewVaultRepository(db *gorm.DB) VaultRepository {
	return &vaultRepository{db: db}
}

// GetByID retrieves a vault by ID, including its allocation targets
func (r *vaultRepository) GetByID(ctx context.Context, id string) (*models.Vault, error) {
	var vault models.Vault
	err := r.db.WithContext(ctx).Preload("Allocations").Where("id = ?", id).First(&vault).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("vault", id)
		}
		return nil, fmt.Errorf("failed to get vault: %w", err)
	}
	return &vault, nil
}

// List retrieves vaults based on filter
func (r *vaultRepository) List(ctx context.Context, filter *models.VaultFilter) ([]*models.Vault, error) {
	var vaults []models.Vault
	query := r.db.WithContext(ctx).Model(&models.Vault{}).Preload("Allocations")

	if filter != nil {
		if filter.Owner != nil {
			query = query.Where("owner = ?", *filter.Owner)
		}
		if filter.Network != nil {
			query = query.Where("network = ?", *filter.Network)
		}
		if filter.Status != nil {
			query = query.Where("status = ?", *filter.Status)
		}
	}

	query = query.Order("created_at DESC")

	if filter != nil && filter.Limit > 0 {
		query = query.Limit(filter.Limit)
		if filter.Offset > 0 {
			query = query.Offset(filter.Offset)
		}
	}

	if err := query.Find(&vaults).Error; err != nil {
		return nil, fmt.Errorf("failed to list vaults: %w", err)
	}

	result := make([]*models.Vault, len(vaults))
	for i := range vaults {
		result[i] = &vaults[i]
	}
	return result, nil
}

// ListByOwner retrieves an owner's non-closed vaults on one network
func (r *vaultRepository) ListByOwner(ctx context.Context, owner, network string) ([]*models.Vault, error) {
	if network == "" {
		network = models.DefaultNetwork
	}

	var vaults []models.Vault
	err := r.db.WithContext(ctx).
		Preload("Allocations").
		Where("owner = ? AND network = ? AND status <> ?", owner, network, models.VaultStatusClosed).
		Order("created_at ASC").
		Find(&vaults).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list vaults for owner %s: %w", owner, err)
	}

	result := make([]*models.Vault, len(vaults))
	for i := range vaults {
		result[i] = &vaults[i]
	}
	return result, nil
}
