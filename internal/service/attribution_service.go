package service

import (
	"context"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/logger"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
	"github.com/shopspring/decimal"
)

// OrderEvent is one paid order line item as delivered by the order
// webhook.
type OrderEvent struct {
	OrderID       string          `json:"order_id"`
	AffiliateCode string          `json:"affiliate_code"`
	ProductID     uint            `json:"product_id"`
	OrderAmount   decimal.Decimal `json:"order_amount"`
	Quantity      int64           `json:"quantity"`
}

// LedgerEntryDraft is one computed commission amount awaiting a ledger
// write.
type LedgerEntryDraft struct {
	OrderID             string
	AffiliateCode       string
	CommissionSource    string
	EntryKind           string
	OrderAmount         models.Money
	CommissionAmount    models.Money
	AffiliateRate       models.Money
	AffiliateCommission models.Money
}

// AttributionService turns one order event into the set of per-level
// commission drafts.
type AttributionService struct {
	hierarchy   *HierarchyService
	rates       *RateService
	productRepo repository.ProductRepository
}

// NewAttributionService creates the attribution engine.
func NewAttributionService(hierarchy *HierarchyService, rates *RateService, productRepo repository.ProductRepository) *AttributionService {
	return &AttributionService{hierarchy: hierarchy, rates: rates, productRepo: productRepo}
}

// Attribute computes every commission draft for one order event: one
// direct entry for the selling actor, plus one independent override
// entry per ancestor level. Override amounts come off the same pool as
// the direct share, not out of it.
//
// Commission is a side effect of the sale. An unresolvable code or a
// missing pool skips attribution instead of failing the order.
func (s *AttributionService) Attribute(ctx context.Context, event OrderEvent) ([]LedgerEntryDraft, error) {
	orderID := strings.TrimSpace(event.OrderID)
	if orderID == "" {
		return nil, ErrNotFound
	}

	hier, err := s.hierarchy.Resolve(event.AffiliateCode)
	if err != nil {
		return nil, err
	}

	pool, err := s.resolvePool(event)
	if err != nil {
		return nil, err
	}
	if pool.IsZero() {
		logger.Warnw("attribution_skipped_no_pool",
			"order_id", orderID,
			"product_id", event.ProductID,
		)
		return []LedgerEntryDraft{}, nil
	}

	rates, err := s.rates.GetRates(ctx)
	if err != nil {
		return nil, err
	}

	sellerCode := hier.SellerCode()
	drafts := make([]LedgerEntryDraft, 0, 4)
	drafts = append(drafts, s.buildDraft(event, sellerCode, directSource(hier.SellerRole), constants.EntryKindDirect, pool, directRate(hier.SellerRole, rates)))

	for _, level := range s.overrideLevels(hier) {
		drafts = append(drafts, s.buildDraft(event, sellerCode, level.source, constants.EntryKindOverride, pool, rates.Rate(level.roleType)))
	}
	return drafts, nil
}

// resolvePool returns the commission pool for the whole line item: the
// most specific configured per-unit amount times the quantity.
func (s *AttributionService) resolvePool(event OrderEvent) (decimal.Decimal, error) {
	product, err := s.productRepo.GetProductByID(event.ProductID)
	if err != nil {
		return decimal.Zero, err
	}
	if product == nil {
		return decimal.Zero, ErrNotFound
	}

	var perUnit *models.Money
	switch {
	case product.CommissionAmount != nil:
		perUnit = product.CommissionAmount
	case product.Category != nil && product.Category.CommissionAmount != nil:
		perUnit = product.Category.CommissionAmount
	case product.Collection != nil && product.Collection.CommissionAmount != nil:
		perUnit = product.Collection.CommissionAmount
	}
	if perUnit == nil {
		return decimal.Zero, nil
	}

	quantity := event.Quantity
	if quantity < 1 {
		quantity = 1
	}
	return perUnit.Decimal.Mul(decimal.NewFromInt(quantity)), nil
}

func (s *AttributionService) buildDraft(event OrderEvent, code, source, kind string, pool, rate decimal.Decimal) LedgerEntryDraft {
	commission := pool.Mul(rate).Div(decimal.NewFromInt(100))
	return LedgerEntryDraft{
		OrderID:             strings.TrimSpace(event.OrderID),
		AffiliateCode:       code,
		CommissionSource:    source,
		EntryKind:           kind,
		OrderAmount:         models.NewMoneyFromDecimal(event.OrderAmount),
		CommissionAmount:    models.NewMoneyFromDecimal(pool),
		AffiliateRate:       models.NewMoneyFromDecimal(rate),
		AffiliateCommission: models.NewMoneyFromDecimal(commission),
	}
}

type overrideLevel struct {
	source   string
	roleType string
}

// overrideLevels returns one level per active ancestor above the
// seller. A disabled or unresolved ancestor drops its own override
// without affecting the others.
func (s *AttributionService) overrideLevels(hier *Hierarchy) []overrideLevel {
	levels := make([]overrideLevel, 0, 3)
	if hier.SellerRole == constants.ActorRoleAgent && hier.BranchAdmin != nil {
		if hier.BranchAdmin.Status == constants.ActorStatusDisabled {
			logger.Warnw("override_skipped_disabled", "role", constants.ActorRoleBranchAdmin, "id", hier.BranchAdmin.ID)
		} else {
			levels = append(levels, overrideLevel{source: constants.CommissionSourceBranchAdmin, roleType: constants.RoleTypeBranch})
		}
	}
	if sellerBelow(hier.SellerRole, constants.ActorRoleAreaManager) && hier.AreaManager != nil {
		if hier.AreaManager.Status == constants.ActorStatusDisabled {
			logger.Warnw("override_skipped_disabled", "role", constants.ActorRoleAreaManager, "id", hier.AreaManager.ID)
		} else {
			levels = append(levels, overrideLevel{source: constants.CommissionSourceAreaManager, roleType: constants.RoleTypeArea})
		}
	}
	if sellerBelow(hier.SellerRole, constants.ActorRoleStateAdmin) && hier.StateAdmin != nil {
		if hier.StateAdmin.Status == constants.ActorStatusDisabled {
			logger.Warnw("override_skipped_disabled", "role", constants.ActorRoleStateAdmin, "id", hier.StateAdmin.ID)
		} else {
			levels = append(levels, overrideLevel{source: constants.CommissionSourceStateAdmin, roleType: constants.RoleTypeState})
		}
	}
	return levels
}

var actorTierRank = map[string]int{
	constants.ActorRoleAgent:       0,
	constants.ActorRoleBranchAdmin: 1,
	constants.ActorRoleAreaManager: 2,
	constants.ActorRoleStateAdmin:  3,
}

func sellerBelow(sellerRole, ancestorRole string) bool {
	return actorTierRank[sellerRole] < actorTierRank[ancestorRole]
}

// directSource maps the selling tier onto its ledger discriminator.
func directSource(sellerRole string) string {
	switch sellerRole {
	case constants.ActorRoleBranchAdmin:
		return constants.CommissionSourceBranchAdminDirect
	case constants.ActorRoleAreaManager:
		return constants.CommissionSourceASMDirect
	case constants.ActorRoleStateAdmin:
		return constants.CommissionSourceStateAdminDirect
	}
	return constants.CommissionSourceAffiliate
}

// directRate returns the cumulative rate for a direct sale: the base
// affiliate rate plus every bonus tier at or below the seller's own.
// A state admin selling personally earns the full stack.
func directRate(sellerRole string, rates RateTable) decimal.Decimal {
	rate := rates.Rate(constants.RoleTypeAffiliate)
	if actorTierRank[sellerRole] >= actorTierRank[constants.ActorRoleBranchAdmin] {
		rate = rate.Add(rates.Rate(constants.RoleTypeBranchDirect))
	}
	if actorTierRank[sellerRole] >= actorTierRank[constants.ActorRoleAreaManager] {
		rate = rate.Add(rates.Rate(constants.RoleTypeArea))
	}
	if actorTierRank[sellerRole] >= actorTierRank[constants.ActorRoleStateAdmin] {
		rate = rate.Add(rates.Rate(constants.RoleTypeState))
	}
	return rate
}
