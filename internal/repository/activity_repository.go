package repository

import (
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"gorm.io/gorm"
)

// ActivityRepository is the activity feed data access interface.
type ActivityRepository interface {
	WithTx(tx *gorm.DB) ActivityRepository

	Create(entry *models.ActivityLog) error
	List(filter ActivityListFilter) ([]models.ActivityLog, int64, error)
}

// GormActivityRepository is the GORM activity feed repository.
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates an activity feed repository.
func NewActivityRepository(db *gorm.DB) *GormActivityRepository {
	return &GormActivityRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormActivityRepository) WithTx(tx *gorm.DB) ActivityRepository {
	if tx == nil {
		return r
	}
	return &GormActivityRepository{db: tx}
}

// Create appends a feed entry.
func (r *GormActivityRepository) Create(entry *models.ActivityLog) error {
	return r.db.Create(entry).Error
}

// List queries feed entries newest-first.
func (r *GormActivityRepository) List(filter ActivityListFilter) ([]models.ActivityLog, int64, error) {
	query := r.db.Model(&models.ActivityLog{})
	if role := strings.TrimSpace(filter.ActorRole); role != "" {
		query = query.Where("actor_role = ?", role)
	}
	if filter.ActorID != 0 {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if verb := strings.TrimSpace(filter.Verb); verb != "" {
		query = query.Where("verb = ?", verb)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.ActivityLog
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
