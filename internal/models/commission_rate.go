package models

import "time"

// CommissionRate holds the active percentage for one role type.
// Exactly one row per role_type; admin updates apply to orders processed
// after the change, with no retroactive recompute.
type CommissionRate struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	RoleType   string    `gorm:"type:varchar(20);not null;uniqueIndex" json:"role_type"`
	Percentage Money     `gorm:"type:decimal(10,2);not null;default:0" json:"percentage"`
	UpdatedAt  time.Time `gorm:"index" json:"updated_at"`
}

// TableName sets the table name.
func (CommissionRate) TableName() string {
	return "commission_rates"
}
