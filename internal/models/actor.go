package models

import (
	"time"

	"gorm.io/gorm"
)

// Agent is the lowest-tier seller, a direct referral-code holder.
// Branch/state names are kept alongside the parent reference so rows
// migrated from the legacy name-joined schema still resolve.
type Agent struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"type:varchar(120);not null" json:"name"`
	ReferralCode  string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"referral_code"`
	Branch        string         `gorm:"type:varchar(120);index" json:"branch"`
	State         string         `gorm:"type:varchar(120);index" json:"state"`
	BranchAdminID *uint          `gorm:"index" json:"branch_admin_id,omitempty"`
	WalletBalance Money          `gorm:"type:decimal(20,2);not null;default:0" json:"wallet_balance"`
	Status        string         `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	BranchAdmin *BranchAdmin `gorm:"foreignKey:BranchAdminID" json:"branch_admin,omitempty"`
}

// TableName sets the table name.
func (Agent) TableName() string {
	return "agents"
}

// BranchAdmin supervises the agents of one branch.
type BranchAdmin struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"type:varchar(120);not null" json:"name"`
	ReferralCode  string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"referral_code"`
	Branch        string         `gorm:"type:varchar(120);index" json:"branch"`
	City          string         `gorm:"type:varchar(120);index" json:"city"`
	State         string         `gorm:"type:varchar(120);index" json:"state"`
	AreaManagerID *uint          `gorm:"index" json:"area_manager_id,omitempty"`
	WalletBalance Money          `gorm:"type:decimal(20,2);not null;default:0" json:"wallet_balance"`
	Status        string         `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	AreaManager *AreaSalesManager `gorm:"foreignKey:AreaManagerID" json:"area_manager,omitempty"`
}

// TableName sets the table name.
func (BranchAdmin) TableName() string {
	return "branch_admins"
}

// AreaSalesManager supervises the branch admins of one city.
type AreaSalesManager struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"type:varchar(120);not null" json:"name"`
	ReferralCode  string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"referral_code"`
	City          string         `gorm:"type:varchar(120);index" json:"city"`
	State         string         `gorm:"type:varchar(120);index" json:"state"`
	StateAdminID  *uint          `gorm:"index" json:"state_admin_id,omitempty"`
	WalletBalance Money          `gorm:"type:decimal(20,2);not null;default:0" json:"wallet_balance"`
	Status        string         `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	StateAdmin *StateAdmin `gorm:"foreignKey:StateAdminID" json:"state_admin,omitempty"`
}

// TableName sets the table name.
func (AreaSalesManager) TableName() string {
	return "area_sales_managers"
}

// StateAdmin supervises the area sales managers of one state.
type StateAdmin struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	Name          string         `gorm:"type:varchar(120);not null" json:"name"`
	ReferralCode  string         `gorm:"type:varchar(32);not null;uniqueIndex" json:"referral_code"`
	State         string         `gorm:"type:varchar(120);index" json:"state"`
	WalletBalance Money          `gorm:"type:decimal(20,2);not null;default:0" json:"wallet_balance"`
	Status        string         `gorm:"type:varchar(20);not null;index" json:"status"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (StateAdmin) TableName() string {
	return "state_admins"
}
