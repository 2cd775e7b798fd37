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

// LedgerRepository is the commission ledger data access interface.
type LedgerRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) LedgerRepository

	// CreateIgnoreDuplicate inserts one entry, silently skipping rows
	// that collide on (order_id, commission_source). Returns true when
	// the row was actually inserted.
	CreateIgnoreDuplicate(entry *models.CommissionLedgerEntry) (bool, error)
	GetByOrderAndSource(orderID, commissionSource string) (*models.CommissionLedgerEntry, error)
	ListByOrder(orderID string) ([]models.CommissionLedgerEntry, error)
	List(filter LedgerListFilter) ([]models.CommissionLedgerEntry, int64, error)
	MarkCreditedByOrder(orderID string) (int64, error)
	ListPendingByOrderForUpdate(orderID string) ([]models.CommissionLedgerEntry, error)

	SumEarnings(codes []string, sources []string, status string) (decimal.Decimal, error)
	SumPool(codes []string, sources []string, status string) (decimal.Decimal, error)
	AggregateBySource(codes []string, status string) ([]LedgerSourceAggregate, error)
}

// GormLedgerRepository is the GORM commission ledger repository.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository creates a commission ledger repository.
func NewLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// WithTx binds a transaction.
func (r *GormLedgerRepository) WithTx(tx *gorm.DB) LedgerRepository {
	if tx == nil {
		return r
	}
	return &GormLedgerRepository{db: tx}
}

// Transaction runs fn inside a transaction.
func (r *GormLedgerRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// CreateIgnoreDuplicate inserts one entry unless the same
// (order_id, commission_source) pair already exists.
func (r *GormLedgerRepository) CreateIgnoreDuplicate(entry *models.CommissionLedgerEntry) (bool, error) {
	if entry == nil {
		return false, nil
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "order_id"}, {Name: "commission_source"}},
		DoNothing: true,
	}).Create(entry)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// GetByOrderAndSource returns one entry by its idempotency key.
func (r *GormLedgerRepository) GetByOrderAndSource(orderID, commissionSource string) (*models.CommissionLedgerEntry, error) {
	order := strings.TrimSpace(orderID)
	source := strings.TrimSpace(commissionSource)
	if order == "" || source == "" {
		return nil, nil
	}
	var entry models.CommissionLedgerEntry
	if err := r.db.Where("order_id = ? AND commission_source = ?", order, source).First(&entry).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// ListByOrder returns every entry written for one order.
func (r *GormLedgerRepository) ListByOrder(orderID string) ([]models.CommissionLedgerEntry, error) {
	order := strings.TrimSpace(orderID)
	if order == "" {
		return []models.CommissionLedgerEntry{}, nil
	}
	var rows []models.CommissionLedgerEntry
	if err := r.db.Where("order_id = ?", order).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// List queries ledger entries by filter.
func (r *GormLedgerRepository) List(filter LedgerListFilter) ([]models.CommissionLedgerEntry, int64, error) {
	query := r.db.Model(&models.CommissionLedgerEntry{})
	if orderID := strings.TrimSpace(filter.OrderID); orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}
	if code := strings.TrimSpace(filter.AffiliateCode); code != "" {
		query = query.Where("affiliate_code = ?", strings.ToUpper(code))
	}
	if source := strings.TrimSpace(filter.CommissionSource); source != "" {
		query = query.Where("commission_source = ?", source)
	}
	if kind := strings.TrimSpace(filter.EntryKind); kind != "" {
		query = query.Where("entry_kind = ?", kind)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.CommissionLedgerEntry
	if err := query.Order("id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkCreditedByOrder flips every pending entry of one order to
// CREDITED. Returns the number of rows credited.
func (r *GormLedgerRepository) MarkCreditedByOrder(orderID string) (int64, error) {
	order := strings.TrimSpace(orderID)
	if order == "" {
		return 0, nil
	}
	result := r.db.Model(&models.CommissionLedgerEntry{}).
		Where("order_id = ? AND status = ?", order, constants.LedgerStatusPending).
		Update("status", constants.LedgerStatusCredited)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListPendingByOrderForUpdate locks and returns the pending entries of
// one order. Callers must already be inside a transaction.
func (r *GormLedgerRepository) ListPendingByOrderForUpdate(orderID string) ([]models.CommissionLedgerEntry, error) {
	order := strings.TrimSpace(orderID)
	if order == "" {
		return []models.CommissionLedgerEntry{}, nil
	}
	var rows []models.CommissionLedgerEntry
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ? AND status = ?", order, constants.LedgerStatusPending).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumEarnings totals affiliate_commission for the given codes, sources
// and status.
func (r *GormLedgerRepository) SumEarnings(codes []string, sources []string, status string) (decimal.Decimal, error) {
	return r.sumColumn("affiliate_commission", codes, sources, status)
}

// SumPool totals commission_amount (the order pool share) for the given
// codes, sources and status. Live balance recompute multiplies this by
// the currently configured rate.
func (r *GormLedgerRepository) SumPool(codes []string, sources []string, status string) (decimal.Decimal, error) {
	return r.sumColumn("commission_amount", codes, sources, status)
}

func (r *GormLedgerRepository) sumColumn(column string, codes []string, sources []string, status string) (decimal.Decimal, error) {
	if len(codes) == 0 || len(sources) == 0 {
		return decimal.Zero, nil
	}
	query := r.db.Model(&models.CommissionLedgerEntry{}).
		Where("affiliate_code IN ? AND commission_source IN ?", normalizeCodes(codes), sources)
	if trimmed := strings.TrimSpace(status); trimmed != "" {
		query = query.Where("status = ?", trimmed)
	}

	var row struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := query.Select("COALESCE(SUM(" + column + "), 0) AS total").Scan(&row).Error; err != nil {
		return decimal.Zero, err
	}
	return row.Total.Round(2), nil
}

// AggregateBySource groups earnings and pool totals per commission
// source for the given codes.
func (r *GormLedgerRepository) AggregateBySource(codes []string, status string) ([]LedgerSourceAggregate, error) {
	if len(codes) == 0 {
		return []LedgerSourceAggregate{}, nil
	}
	query := r.db.Model(&models.CommissionLedgerEntry{}).
		Where("affiliate_code IN ?", normalizeCodes(codes))
	if trimmed := strings.TrimSpace(status); trimmed != "" {
		query = query.Where("status = ?", trimmed)
	}

	var rows []LedgerSourceAggregate
	if err := query.
		Select("commission_source, COUNT(*) AS entry_count, COALESCE(SUM(commission_amount), 0) AS pool_total, COALESCE(SUM(affiliate_commission), 0) AS earnings_total").
		Group("commission_source").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func normalizeCodes(codes []string) []string {
	normalized := make([]string, 0, len(codes))
	for _, code := range codes {
		trimmed := strings.ToUpper(strings.TrimSpace(code))
		if trimmed != "" {
			normalized = append(normalized, trimmed)
		}
	}
	return normalized
}
