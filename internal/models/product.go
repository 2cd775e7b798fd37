package models

import (
	"time"

	"gorm.io/gorm"
)

// Collection groups products for merchandising; its commission amount is
// the least specific tier of the pool resolution.
type Collection struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	Name             string         `gorm:"type:varchar(120);not null" json:"name"`
	CommissionAmount *Money         `gorm:"type:decimal(20,2)" json:"commission_amount,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Collection) TableName() string {
	return "collections"
}

// Category sits between product and collection in pool resolution.
type Category struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	Name             string         `gorm:"type:varchar(120);not null" json:"name"`
	CommissionAmount *Money         `gorm:"type:decimal(20,2)" json:"commission_amount,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName sets the table name.
func (Category) TableName() string {
	return "categories"
}

// Product carries the per-unit commission pool for one order line item.
// Pool resolution is product, then category, then collection; the most
// specific configured amount wins.
type Product struct {
	ID               uint           `gorm:"primarykey" json:"id"`
	Name             string         `gorm:"type:varchar(200);not null" json:"name"`
	Price            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`
	CommissionAmount *Money         `gorm:"type:decimal(20,2)" json:"commission_amount,omitempty"`
	CategoryID       *uint          `gorm:"index" json:"category_id,omitempty"`
	CollectionID     *uint          `gorm:"index" json:"collection_id,omitempty"`
	IsActive         bool           `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	Category   *Category   `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Collection *Collection `gorm:"foreignKey:CollectionID" json:"collection,omitempty"`
}

// TableName sets the table name.
func (Product) TableName() string {
	return "products"
}
