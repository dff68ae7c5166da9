package models

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// VaultTransactionType represents the direction of a ledgered cash flow
type VaultTransactionType string

const (
	VaultTxTypeDeposit    VaultTransactionType = "deposit"
	VaultTxTypeWithdrawal VaultTransactionType = "withdrawal"
)

// VaultTransaction is one append-only ledger entry for a vault. Entries are
// written by the deposit/withdraw flow and never mutated or deleted; the
// analytics engine treats the ledger as the authoritative record of cash
// flows whenever it is non-empty.
type VaultTransaction struct {
	ID      string               `json:"id" gorm:"primaryKey;column:id;type:varchar(255)"`
	VaultID string               `json:"vault_id" gorm:"column:vault_id;type:varchar(255);not null;index"`
	Type    VaultTransactionType `json:"type" gorm:"column:type;type:varchar(20);not null;index"`

	AmountUSD decimal.Decimal `json:"amount_usd" gorm:"column:amount_usd;type:decimal(30,18);not null"`

	Timestamp time.Time `json:"timestamp" gorm:"column:timestamp;not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"column:created_at;autoCreateTime"`
}

// TableName returns the table name for the VaultTransaction model
func (VaultTransaction) TableName() string {
	return "vault_transactions"
}

// Validate validates the ledger entry at the data-accessor boundary
func (vt *VaultTransaction) Validate() error {
	if vt.VaultID == "" {
		return errors.New("vault ID is required")
	}
	if vt.Type != VaultTxTypeDeposit && vt.Type != VaultTxTypeWithdrawal {
		return errors.New("transaction type must be deposit or withdrawal")
	}
	if !vt.AmountUSD.IsPositive() {
		return errors.New("amount USD must be positive")
	}
	if vt.Timestamp.IsZero() {
		vt.Timestamp = time.Now()
	}
	return nil
}

// IsDeposit reports whether this entry adds capital to the vault
func (vt *VaultTransaction) IsDeposit() bool {
	return vt.Type == VaultTxTypeDeposit
}

// VaultTransactionFilter represents filters for querying the ledger
type VaultTransactionFilter struct {
	VaultID   *string
	Type      *VaultTransactionType
	StartDate *time.Time
	EndDate   *time.Time
	Limit     int
	Offset    int
}

// TransactionTotals are the gross ledgered flows for one vault
type TransactionTotals struct {
	TotalDeposits    decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals decimal.Decimal `json:"total_withdrawals"`
}

// NetDeposits returns gross deposits minus gross withdrawals
func (t TransactionTotals) NetDeposits() decimal.Decimal {
	return t.TotalDeposits.Sub(t.TotalWithdrawals)
}
