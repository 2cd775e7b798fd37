package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin is a back-office login for rate management and payout review.
type Admin struct {
	ID           uint           `gorm:"primarykey" json:"id"`
	Username     string         `gorm:"type:varchar(64);not null;uniqueIndex" json:"username"`
	PasswordHash string         `gorm:"type:varchar(128);not null" json:"-"`
	IsSuper      bool           `gorm:"not null;default:false" json:"is_super"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Admin) TableName() string {
	return "admins"
}
