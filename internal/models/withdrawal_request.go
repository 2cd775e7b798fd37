package models

import (
	"time"

	"gorm.io/gorm"
)

// WithdrawalRequest tracks one payout request through
// PENDING -> APPROVED|REJECTED -> PAID. REJECTED and PAID are terminal.
type WithdrawalRequest struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	ReferenceNo      string         `gorm:"type:varchar(40);not null;uniqueIndex" json:"reference_no"`
	ActorRole        string         `gorm:"type:varchar(20);not null;index:idx_withdrawal_actor" json:"actor_role"`
	ActorID          uint           `gorm:"not null;index:idx_withdrawal_actor" json:"actor_id"`
	WithdrawalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"withdrawal_amount"`
	GSTPercentage    Money          `gorm:"type:decimal(10,2);not null;default:0" json:"gst_percentage"`
	GSTAmount        Money          `gorm:"type:decimal(20,2);not null;default:0" json:"gst_amount"`
	NetPayable       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"net_payable"`
	Status           string         `gorm:"type:varchar(16);not null;index" json:"status"`
	RejectReason     string         `gorm:"type:varchar(255)" json:"reject_reason"`
	TransactionID    string         `gorm:"type:varchar(128)" json:"transaction_id"`
	RequestedAt      time.Time      `gorm:"index" json:"requested_at"`
	ReviewedAt       *time.Time     `json:"reviewed_at,omitempty"`
	PaymentDate      *time.Time     `json:"payment_date,omitempty"`
	ReviewedBy       *uint          `gorm:"index" json:"reviewed_by,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (WithdrawalRequest) TableName() string {
	return "withdrawal_requests"
}
