package models

import "time"

// CommissionLedgerEntry is one immutable row recording a single role's
// earnings for one order. The composite unique index on
// (order_id, commission_source) is the idempotency guard: webhook
// redelivery must never produce a second row for the same level.
// Only Status ever changes after insert.
type CommissionLedgerEntry struct {
	ID                  uint      `gorm:"primarykey" json:"id"`
	OrderID             string    `gorm:"type:varchar(64);not null;index;index:idx_ledger_order_source,unique" json:"order_id"`
	AffiliateCode       string    `gorm:"type:varchar(32);not null;index" json:"affiliate_code"`
	CommissionSource    string    `gorm:"type:varchar(32);not null;index:idx_ledger_order_source,unique" json:"commission_source"`
	EntryKind           string    `gorm:"type:varchar(16);not null;index" json:"entry_kind"`
	OrderAmount         Money     `gorm:"type:decimal(20,2);not null;default:0" json:"order_amount"`
	CommissionAmount    Money     `gorm:"type:decimal(20,2);not null;default:0" json:"commission_amount"`
	AffiliateRate       Money     `gorm:"type:decimal(10,2);not null;default:0" json:"affiliate_rate"`
	AffiliateCommission Money     `gorm:"type:decimal(20,2);not null;default:0" json:"affiliate_commission"`
	Status              string    `gorm:"type:varchar(16);not null;index" json:"status"`
	CreatedAt           time.Time `gorm:"index" json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName sets the table name.
func (CommissionLedgerEntry) TableName() string {
	return "commission_ledger_entries"
}
