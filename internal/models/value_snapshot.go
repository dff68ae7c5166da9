package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// maxPlausibleValueUSD is the upper bound on a believable vault valuation.
// Snapshots at or above it (or at zero or below) are treated as corrupted
// monitor output and never enter any computation.
var maxPlausibleValueUSD = decimal.NewFromInt(1_000_000_000)

// ValueSnapshot is a periodic valuation of one vault written by the external
// monitoring process. The engine only reads snapshots; it never writes them.
type ValueSnapshot struct {
	ID      string `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	VaultID string `json:"vault_id" gorm:"column:vault_id;type:varchar(255);not null;index"`

	TotalValueUSD decimal.Decimal `json:"total_value_usd" gorm:"column:total_value_usd;type:decimal(30,18);not null"`

	// Optional figures pre-computed by the monitor. Change figures are reused
	// when present; a stored APY is advisory only and always recomputed.
	Returns24h *decimal.Decimal `json:"returns_24h,omitempty" gorm:"column:returns_24h;type:decimal(10,4)"`
	Returns7d  *decimal.Decimal `json:"returns_7d,omitempty" gorm:"column:returns_7d;type:decimal(10,4)"`
	APY        *decimal.Decimal `json:"apy,omitempty" gorm:"column:apy;type:decimal(10,4)"`

	Timestamp time.Time `json:"timestamp" gorm:"column:timestamp;not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for the ValueSnapshot model
func (ValueSnapshot) TableName() string {
	return "value_snapshots"
}

// Validate validates a snapshot at the data-accessor boundary
func (s *ValueSnapshot) Validate() error {
	if s.VaultID == "" {
		return errors.New("vault ID is required")
	}
	if s.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	return nil
}

// IsPlausible reports whether the snapshot value sits inside (0, 1e9).
// Implausible snapshots are filtered, not reported as errors.
func (s *ValueSnapshot) IsPlausible() bool {
	return s.TotalValueUSD.IsPositive() && s.TotalValueUSD.LessThan(maxPlausibleValueUSD)
}

// PlausibleSnapshots filters a series down to entries with believable values,
// preserving order.
func PlausibleSnapshots(snapshots []*ValueSnapshot) []*ValueSnapshot {
	valid := make([]*ValueSnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		if s.IsPlausible() {
			valid = append(valid, s)
		}
	}
	return valid
}
