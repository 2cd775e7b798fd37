package repository

import (
	"errors"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WithdrawalRepository is the withdrawal request data access interface.
type WithdrawalRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) WithdrawalRepository

	Create(req *models.WithdrawalRequest) error
	Update(req *models.WithdrawalRequest) error
	GetByID(id uint) (*models.WithdrawalRequest, error)
	GetByIDForUpdate(id uint) (*models.WithdrawalRequest, error)
	GetByReferenceNo(referenceNo string) (*models.WithdrawalRequest, error)
	List(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error)
	SumByActorAndStatuses(role string, actorID uint, statuses []string) (decimal.Decimal, error)
	HasPendingForActor(role string, actorID uint) (bool, error)
}

// GormWithdrawalRepository is the GORM withdrawal repository.
type GormWithdrawalRepository struct {
	db *gorm.DB
}

// NewWithdrawalRepository creates a withdrawal repository.
func NewWithdrawalRepository(db *gorm.DB) *GormWithdrawalRepository {
	return &GormWithdrawalRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormWithdrawalRepository) WithTx(tx *gorm.DB) WithdrawalRepository {
	if tx == nil {
		return r
	}
	return &GormWithdrawalRepository{db: tx}
}

// Transaction runs fn inside a transaction.
func (r *GormWithdrawalRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// Create creates a withdrawal request.
func (r *GormWithdrawalRepository) Create(req *models.WithdrawalRequest) error {
	return r.db.Create(req).Error
}

// Update saves a withdrawal request.
func (r *GormWithdrawalRepository) Update(req *models.WithdrawalRequest) error {
	return r.db.Save(req).Error
}

// GetByID returns a withdrawal request by ID.
func (r *GormWithdrawalRepository) GetByID(id uint) (*models.WithdrawalRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.WithdrawalRequest
	if err := r.db.First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByIDForUpdate locks and returns a withdrawal request. Callers must
// already be inside a transaction.
func (r *GormWithdrawalRepository) GetByIDForUpdate(id uint) (*models.WithdrawalRequest, error) {
	if id == 0 {
		return nil, nil
	}
	var row models.WithdrawalRequest
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&row, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// GetByReferenceNo returns a withdrawal request by reference number.
func (r *GormWithdrawalRepository) GetByReferenceNo(referenceNo string) (*models.WithdrawalRequest, error) {
	ref := strings.TrimSpace(referenceNo)
	if ref == "" {
		return nil, nil
	}
	var row models.WithdrawalRequest
	if err := r.db.Where("reference_no = ?", ref).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

// List queries withdrawal requests by filter.
func (r *GormWithdrawalRepository) List(filter WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	query := r.db.Model(&models.WithdrawalRequest{})
	if role := strings.TrimSpace(filter.ActorRole); role != "" {
		query = query.Where("actor_role = ?", role)
	}
	if filter.ActorID != 0 {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if ref := strings.TrimSpace(filter.ReferenceNo); ref != "" {
		query = query.Where("reference_no LIKE ?", "%"+ref+"%")
	}
	if filter.CreatedFrom != nil {
		query = query.Where("requested_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("requested_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.WithdrawalRequest
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// SumByActorAndStatuses totals withdrawal amounts for one actor in the
// given statuses.
func (r *GormWithdrawalRepository) SumByActorAndStatuses(role string, actorID uint, statuses []string) (decimal.Decimal, error) {
	if actorID == 0 || len(statuses) == 0 {
		return decimal.Zero, nil
	}
	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := r.db.Model(&models.WithdrawalRequest{}).
		Where("actor_role = ? AND actor_id = ? AND status IN ?", strings.TrimSpace(role), actorID, statuses).
		Select("COALESCE(SUM(withdrawal_amount), 0) AS total").
		Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// HasPendingForActor reports whether the actor already has an
// unreviewed request.
func (r *GormWithdrawalRepository) HasPendingForActor(role string, actorID uint) (bool, error) {
	if actorID == 0 {
		return false, nil
	}
	var total int64
	if err := r.db.Model(&models.WithdrawalRequest{}).
		Where("actor_role = ? AND actor_id = ? AND status = ?", strings.TrimSpace(role), actorID, constants.WithdrawalStatusPending).
		Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}
