package models

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// VaultStatus represents the lifecycle status of a vault
type VaultStatus string

const (
	VaultStatusActive VaultStatus = "active"
	VaultStatusPaused VaultStatus = "paused"
	VaultStatusClosed VaultStatus = "closed"
)

// DefaultNetwork is assumed whenever a caller does not name a network.
const DefaultNetwork = "testnet"

// Vault represents an automated yield vault whose performance this service
// reports on. The vault itself is operated elsewhere; this record carries the
// identity, share accounting and allocation configuration the analytics
// engine reads.
type Vault struct {
	ID     string      `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	Name   string      `json:"name" gorm:"column:name;type:varchar(255);not null"`
	Owner  string      `json:"owner" gorm:"column:owner;type:varchar(255);not null;index"`
	Status VaultStatus `json:"status" gorm:"column:status;type:varchar(20);not null;default:'active'"`

	// Network the vault is deployed on ("testnet" unless stated otherwise)
	Network string `json:"network" gorm:"column:network;type:varchar(20);not null;default:'testnet';index"`

	// Asset information
	AssetCode     string `json:"asset_code" gorm:"column:asset_code;type:varchar(20);not null"`
	AssetContract string `json:"asset_contract" gorm:"column:asset_contract;type:varchar(255);not null"`

	// Share accounting. Share price is derived per request as TVL / TotalShares
	// and is never stored here.
	TotalShares decimal.Decimal `json:"total_shares" gorm:"column:total_shares;type:decimal(30,18);not null;default:0"`

	// Metadata
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"column:updated_at;autoUpdateTime"`

	Allocations []VaultAllocation `json:"allocations,omitempty" gorm:"foreignKey:VaultID"`
}

// TableName returns the table name for the Vault model
func (Vault) TableName() string {
	return "vaults"
}

// Validate validates the vault data
func (v *Vault) Validate() error {
	if v.Name == "" {
		return errors.New("vault name is required")
	}
	if v.Owner == "" {
		return errors.New("vault owner is required")
	}
	if v.Status == "" {
		v.Status = VaultStatusActive
	}
	if v.Network == "" {
		v.Network = DefaultNetwork
	}
	if v.AssetCode == "" {
		return errors.New("asset code is required")
	}
	if v.TotalShares.IsNegative() {
		return errors.New("total shares cannot be negative")
	}
	return nil
}

// IsClosed reports whether the vault has been wound down
func (v *Vault) IsClosed() bool {
	return v.Status == VaultStatusClosed
}

// VaultAllocation is a configured target weight for one asset inside a vault.
// These are the fallback source for portfolio allocation views when live
// on-chain balances cannot be read.
type VaultAllocation struct {
	ID            string          `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	VaultID       string          `json:"vault_id" gorm:"column:vault_id;type:varchar(255);not null;index"`
	Asset         string          `json:"asset" gorm:"column:asset;type:varchar(50);not null"`
	TargetPercent decimal.Decimal `json:"target_percent" gorm:"column:target_percent;type:decimal(8,4);not null"`

	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for the VaultAllocation model
func (VaultAllocation) TableName() string {
	return "vault_allocations"
}

// Validate validates the allocation entry
func (a *VaultAllocation) Validate() error {
	if a.VaultID == "" {
		return errors.New("vault ID is required")
	}
	if strings.TrimSpace(a.Asset) == "" {
		return errors.New("asset is required")
	}
	if a.TargetPercent.IsNegative() {
		return errors.New("target percent cannot be negative")
	}
	return nil
}

// VaultFilter represents filters for querying vaults
type VaultFilter struct {
	Owner   *string
	Network *string
	Status  *VaultStatus
	Limit   int
	Offset  int
}
