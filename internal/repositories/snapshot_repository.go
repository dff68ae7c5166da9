package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lumenvault/backend/internal/models"
)

type snapshotRepository struct {
	db *gorm.DB
}

// NewSnapshotRepository creates a gorm-backed snapshot repository
func NewSnapshotRepository(db *gorm.DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// ListByVault returns snapshots at or after since, oldest first
func (r *snapshotRepository) ListByVault(ctx context.Context, vaultID string, since time.Time) ([]*models.ValueSnapshot, error) {
	var snaps []models.ValueSnapshot
	query := r.db.WithContext(ctx).Where("vault_id = ?", vaultID)
	if !since.IsZero() {
		query = query.Where("timestamp >= ?", since)
	}
	err := query.Order("timestamp ASC").Find(&snaps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots for vault %s: %w", vaultID, err)
	}

	result := make([]*models.ValueSnapshot, len(snaps))
	for i := range snaps {
		result[i] = &snaps[i]
	}
	return result, nil
}

// Latest returns the newest snapshot, or nil when the vault has none yet.
// A missing snapshot is an ordinary condition, not an error.
func (r *snapshotRepository) Latest(ctx context.Context, vaultID string) (*models.ValueSnapshot, error) {
	var snap models.ValueSnapshot
	err := r.db.WithContext(ctx).
		Where("vault_id = ?", vaultID).
		Order("timestamp DESC").
		First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest snapshot for vault %s: %w", vaultID, err)
	}
	return &snap, nil
}

// LatestBefore returns the newest snapshot at or before cutoff, or nil
func (r *snapshotRepository) LatestBefore(ctx context.Context, vaultID string, cutoff time.Time) (*models.ValueSnapshot, error) {
	var snap models.ValueSnapshot
	err := r.db.WithContext(ctx).
		Where("vault_id = ? AND timestamp <= ?", vaultID, cutoff).
		Order("timestamp DESC").
		First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot before %s for vault %s: %w", cutoff.Format(time.RFC3339), vaultID, err)
	}
	return &snap, nil
}

// ListRecent returns the newest snapshots, newest first
func (r *snapshotRepository) ListRecent(ctx context.Context, vaultID string, limit int) ([]*models.ValueSnapshot, error) {
	if limit <= 0 {
		limit = 24
	}

	var snaps []models.ValueSnapshot
	err := r.db.WithContext(ctx).
		Where("vault_id = ?", vaultID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&snaps).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent snapshots for vault %s: %w", vaultID, err)
	}

	result := make([]*models.ValueSnapshot, len(snaps))
	for i := range snaps {
		result[i] = &snaps[i]
	}
	return result, nil
}
