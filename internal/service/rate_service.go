package service

import (
	"context"
	"strings"
	"time"

	"github.com/3syncai/affiliate-portal-sub001/internal/cache"
	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/logger"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
	"github.com/shopspring/decimal"
)

const defaultRateCacheTTL = 5 * time.Minute

// defaultRates back every role type so a missing registry row never
// fails an order.
var defaultRates = map[string]decimal.Decimal{
	constants.RoleTypeAffiliate:    decimal.NewFromInt(constants.DefaultRateAffiliate),
	constants.RoleTypeBranchDirect: decimal.NewFromInt(constants.DefaultRateBranchDirect),
	constants.RoleTypeBranch:       decimal.NewFromInt(constants.DefaultRateBranch),
	constants.RoleTypeArea:         decimal.NewFromInt(constants.DefaultRateArea),
	constants.RoleTypeState:        decimal.NewFromInt(constants.DefaultRateState),
}

// RateService manages the commission rate registry.
type RateService struct {
	repo     repository.RateRepository
	cacheTTL time.Duration
}

// NewRateService creates the rate registry service.
func NewRateService(repo repository.RateRepository, cacheTTLSeconds int) *RateService {
	ttl := defaultRateCacheTTL
	if cacheTTLSeconds > 0 {
		ttl = time.Duration(cacheTTLSeconds) * time.Second
	}
	return &RateService{repo: repo, cacheTTL: ttl}
}

// RateTable is the resolved percentage per role type.
type RateTable map[string]models.Money

// Rate returns the percentage for one role type, falling back to the
// built-in default when the table has no row.
func (t RateTable) Rate(roleType string) decimal.Decimal {
	if rate, ok := t[roleType]; ok {
		return rate.Decimal
	}
	if fallback, ok := defaultRates[roleType]; ok {
		logger.Warnw("commission_rate_missing",
			"role_type", roleType,
			"fallback", fallback.String(),
		)
		return fallback
	}
	return decimal.Zero
}

// GetRates returns the active rate table, read through the cache.
func (s *RateService) GetRates(ctx context.Context) (RateTable, error) {
	var cached map[string]string
	hit, err := cache.GetJSON(ctx, constants.CacheKeyCommissionRates, &cached)
	if err != nil {
		logger.Warnw("commission_rate_cache_read_failed", "error", err)
	}
	if hit {
		table := make(RateTable, len(cached))
		valid := true
		for roleType, raw := range cached {
			value, parseErr := decimal.NewFromString(raw)
			if parseErr != nil {
				valid = false
				break
			}
			table[roleType] = models.NewMoneyFromDecimal(value)
		}
		if valid {
			return table, nil
		}
	}

	rows, err := s.repo.ListAll()
	if err != nil {
		return nil, err
	}
	table := make(RateTable, len(rows))
	payload := make(map[string]string, len(rows))
	for _, row := range rows {
		table[row.RoleType] = row.Percentage
		payload[row.RoleType] = row.Percentage.String()
	}
	if err := cache.SetJSON(ctx, constants.CacheKeyCommissionRates, payload, s.cacheTTL); err != nil {
		logger.Warnw("commission_rate_cache_write_failed", "error", err)
	}
	return table, nil
}

// ListRates returns every role type with its effective percentage,
// including defaults for unconfigured roles.
func (s *RateService) ListRates(ctx context.Context) ([]models.CommissionRate, error) {
	table, err := s.GetRates(ctx)
	if err != nil {
		return nil, err
	}
	roleTypes := []string{
		constants.RoleTypeAffiliate,
		constants.RoleTypeBranchDirect,
		constants.RoleTypeBranch,
		constants.RoleTypeArea,
		constants.RoleTypeState,
	}
	rows := make([]models.CommissionRate, 0, len(roleTypes))
	for _, roleType := range roleTypes {
		rows = append(rows, models.CommissionRate{
			RoleType:   roleType,
			Percentage: models.NewMoneyFromDecimal(table.Rate(roleType)),
		})
	}
	return rows, nil
}

// UpdateRate sets the percentage for one role type. Changes apply to
// orders attributed after the update; existing ledger rows keep their
// written amounts.
func (s *RateService) UpdateRate(ctx context.Context, roleType string, percentage decimal.Decimal) (*models.CommissionRate, error) {
	normalized := strings.TrimSpace(roleType)
	if _, known := defaultRates[normalized]; !known {
		return nil, ErrNotFound
	}
	if percentage.IsNegative() || percentage.GreaterThan(decimal.NewFromInt(100)) {
		return nil, ErrRateOutOfRange
	}

	rate := &models.CommissionRate{
		RoleType:   normalized,
		Percentage: models.NewMoneyFromDecimal(percentage),
		UpdatedAt:  time.Now(),
	}
	if err := s.repo.Upsert(rate); err != nil {
		return nil, err
	}
	if err := cache.Del(ctx, constants.CacheKeyCommissionRates); err != nil {
		logger.Warnw("commission_rate_cache_invalidate_failed", "error", err)
	}
	logger.Infow("commission_rate_updated",
		"role_type", normalized,
		"percentage", percentage.String(),
	)
	return rate, nil
}
