package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RateRepository is the commission rate data access interface.
type RateRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) RateRepository

	GetByRoleType(roleType string) (*models.CommissionRate, error)
	ListAll() ([]models.CommissionRate, error)
	Upsert(rate *models.CommissionRate) error
}

// GormRateRepository is the GORM commission rate repository.
type GormRateRepository struct {
	db *gorm.DB
}

// NewRateRepository creates a commission rate repository.
func NewRateRepository(db *gorm.DB) *GormRateRepository {
	return &GormRateRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormRateRepository) WithTx(tx *gorm.DB) RateRepository {
	if tx == nil {
		return r
	}
	return &GormRateRepository{db: tx}
}

// Transaction runs fn inside a transaction.
func (r *GormRateRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByRoleType returns the configured rate for one role type.
func (r *GormRateRepository) GetByRoleType(roleType string) (*models.CommissionRate, error) {
	normalized := strings.TrimSpace(roleType)
	if normalized == "" {
		return nil, nil
	}
	var rate models.CommissionRate
	if err := r.db.Where("role_type = ?", normalized).First(&rate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rate, nil
}

// ListAll returns every configured rate row.
func (r *GormRateRepository) ListAll() ([]models.CommissionRate, error) {
	var rows []models.CommissionRate
	if err := r.db.Order("role_type asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert inserts or replaces the rate for a role type.
func (r *GormRateRepository) Upsert(rate *models.CommissionRate) error {
	if rate == nil {
		return nil
	}
	rate.RoleType = strings.TrimSpace(rate.RoleType)
	if rate.UpdatedAt.IsZero() {
		rate.UpdatedAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "role_type"}},
		DoUpdates: clause.AssignmentColumns([]string{"percentage", "updated_at"}),
	}).Create(rate).Error
}
