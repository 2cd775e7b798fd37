package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestAttributeAgentSaleBuildsDirectAndThreeOverrides(t *testing.T) {
	svc, db := setupAttributionServiceTest(t)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)

	drafts, err := svc.Attribute(context.Background(), OrderEvent{
		OrderID:       "ORD-1001",
		AffiliateCode: chain.Agent.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(1499),
		Quantity:      1,
	})
	if err != nil {
		t.Fatalf("attribute failed: %v", err)
	}
	if len(drafts) != 4 {
		t.Fatalf("expected 4 drafts, got %d", len(drafts))
	}

	bySource := draftsBySource(drafts)
	assertDraft(t, bySource, constants.CommissionSourceAffiliate, constants.EntryKindDirect, "70", "70")
	assertDraft(t, bySource, constants.CommissionSourceBranchAdmin, constants.EntryKindOverride, "15", "15")
	assertDraft(t, bySource, constants.CommissionSourceAreaManager, constants.EntryKindOverride, "10", "10")
	assertDraft(t, bySource, constants.CommissionSourceStateAdmin, constants.EntryKindOverride, "5", "5")

	for _, draft := range drafts {
		if draft.AffiliateCode != chain.Agent.ReferralCode {
			t.Fatalf("expected seller code %s on every row, got %s for %s",
				chain.Agent.ReferralCode, draft.AffiliateCode, draft.CommissionSource)
		}
		if !draft.CommissionAmount.Decimal.Equal(decimal.NewFromInt(100)) {
			t.Fatalf("expected pool 100 on %s, got %s", draft.CommissionSource, draft.CommissionAmount)
		}
	}
}

func TestAttributeBranchAdminSaleEarnsCumulativeDirectRate(t *testing.T) {
	svc, db := setupAttributionServiceTest(t)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Cashew Gift Pack 500g", moneyPtr("100"), nil, nil)

	drafts, err := svc.Attribute(context.Background(), OrderEvent{
		OrderID:       "ORD-1002",
		AffiliateCode: chain.BranchAdmin.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(899),
		Quantity:      1,
	})
	if err != nil {
		t.Fatalf("attribute failed: %v", err)
	}
	if len(drafts) != 3 {
		t.Fatalf("expected 3 drafts, got %d", len(drafts))
	}

	bySource := draftsBySource(drafts)
	assertDraft(t, bySource, constants.CommissionSourceBranchAdminDirect, constants.EntryKindDirect, "85", "85")
	assertDraft(t, bySource, constants.CommissionSourceAreaManager, constants.EntryKindOverride, "10", "10")
	assertDraft(t, bySource, constants.CommissionSourceStateAdmin, constants.EntryKindOverride, "5", "5")
	if _, ok := bySource[constants.CommissionSourceBranchAdmin]; ok {
		t.Fatalf("branch admin selling directly must not earn a branch override")
	}
}

func TestAttributeAreaManagerSale(t *testing.T) {
	svc, db := setupAttributionServiceTest(t)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Festive Hamper", moneyPtr("200"), nil, nil)

	drafts, err := svc.Attribute(context.Background(), OrderEvent{
		OrderID:       "ORD-1003",
		AffiliateCode: chain.AreaManager.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(2999),
		Quantity:      1,
	})
	if err != nil {
		t.Fatalf("attribute failed: %v", err)
	}
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}

	bySource := draftsBySource(drafts)
	assertDraft(t, bySource, constants.CommissionSourceASMDirect, constants.EntryKindDirect, "95", "190")
	assertDraft(t, bySource, constants.CommissionSourceStateAdmin, constants.EntryKindOverride, "5", "10")
}

func TestAttributeStateAdminSaleEarnsFullStack(t *testing.T) {
	svc, db := setupAttributionServiceTest(t)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Dry Fruit Combo", moneyPtr("100"), nil, nil)

	drafts, err := svc.Attribute(context.Background(), OrderEvent{
		OrderID:       "ORD-1004",
		AffiliateCode: chain.StateAdmin.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(1499),
		Quantity:      1,
	})
	if err != nil {
		t.Fatalf("attribute failed: %v", err)
	}
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	assertDraft(t, draftsBySource(drafts), constants.CommissionSourceStateAdminDirect, constants.EntryKindDirect, "100", "100")
}

func TestAttributePoolFallsBackThroughCategoryAndCollection(t *testing.T) {
	svc, db := setupAttributionServiceTest(t)
	chain := createTestHierarchy(t, db)

	collection := models.Collection{Name: "Festive Hampers", CommissionAmount: moneyPtr("60")}
	if err := db.Create(&collection).Error; err != nil {
		t.Fatalf("create collection failed: %v", err)
	}
	category := models.Category{Name: "Dry Fruits", CommissionAmount: moneyPtr("80")}
	if err := db.Create(&category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	categoryProduct := createTestProduct(t, db, "Pista Pouch", nil, &category.ID, &collection.ID)
	collectionProduct := createTestProduct(t, db, "Walnut Pouch", nil, nil, &collection.ID)

	drafts, err := svc.Attribute(context.Background(), OrderEvent{
		OrderID:       "ORD-1005",
		AffiliateCode: chain.Agent.ReferralCode,
		ProductID:     categoryProduct.ID,
		OrderAmount:   decimal.NewFromInt(499),
		Quantity:      1,
	})
	if err != nil {
		t.Fatalf("attribute category product failed: %v", err)
	}
	direct := draftsBySource(drafts)[constants.CommissionSourceAffiliate]
	if !direct.AffiliateCommission.Decimal.Equal(decimal.NewFromInt(56)) {
		t.Fatalf("category pool 80 at 70%% should pay 56, got %s", direct.AffiliateCommission)
	}

	drafts, err = svc.Attribute(context.Background(), OrderEvent{
		OrderID:       "ORD-1006",
		AffiliateCode: chain.Agent.ReferralCode,
		ProductID:     collectionProduct.ID,
		OrderAmount:   decimal.NewFromInt(399),
		Quantity:      1,
	})
	if err != nil {
		t.Fatalf("attribute collection product failed: %v", err)
	}
	direct = draftsBySource(drafts)[constants.CommissionSourceAffiliate]
	if !direct.AffiliateCommission.Decimal.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("collection pool 60 at 70%% should pay 42, got %s", direct.AffiliateCommission)
	}
}

func TestAttributeQuantityMultipliesPool(t *testing.T) {
	svc, db := setupAttributionServiceTest(t)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)

	drafts, err := svc.Attribute(context.Background(), OrderEvent{
		OrderID:       "ORD-1007",
		AffiliateCode: chain.Agent.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(4497),
		Quantity:      3,
	})
	if err != nil {
		t.Fatalf("attribute failed: %v", err)
	}
	direct := draftsBySource(drafts)[constants.CommissionSourceAffiliate]
	if !direct.CommissionAmount.Decimal.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected pool 300 for quantity 3, got %s", direct.CommissionAmount)
	}
	if !direct.AffiliateCommission.Decimal.Equal(decimal.NewFromInt(210)) {
		t.Fatalf("expected direct commission 210, got %s", direct.AffiliateCommission)
	}
}

func TestAttributeSkipsOrderWithoutPool(t *testing.T) {
	svc, db := setupAttributionServiceTest(t)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Unpriced Sampler", nil, nil, nil)

	drafts, err := svc.Attribute(context.Background(), OrderEvent{
		OrderID:       "ORD-1008",
		AffiliateCode: chain.Agent.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(99),
		Quantity:      1,
	})
	if err != nil {
		t.Fatalf("attribute failed: %v", err)
	}
	if len(drafts) != 0 {
		t.Fatalf("expected no drafts without a pool, got %d", len(drafts))
	}
}

func TestAttributeUnknownReferralCode(t *testing.T) {
	svc, db := setupAttributionServiceTest(t)

	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)

	_, err := svc.Attribute(context.Background(), OrderEvent{
		OrderID:       "ORD-1009",
		AffiliateCode: "NOPE99",
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(1499),
		Quantity:      1,
	})
	if !errors.Is(err, ErrUnknownReferralCode) {
		t.Fatalf("expected ErrUnknownReferralCode, got %v", err)
	}
}

func TestAttributeDisabledSellerRejected(t *testing.T) {
	svc, db := setupAttributionServiceTest(t)

	chain := createTestHierarchy(t, db)
	if err := db.Model(&models.Agent{}).Where("id = ?", chain.Agent.ID).
		Update("status", constants.ActorStatusDisabled).Error; err != nil {
		t.Fatalf("disable agent failed: %v", err)
	}
	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)

	_, err := svc.Attribute(context.Background(), OrderEvent{
		OrderID:       "ORD-1010",
		AffiliateCode: chain.Agent.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(1499),
		Quantity:      1,
	})
	if !errors.Is(err, ErrActorDisabled) {
		t.Fatalf("expected ErrActorDisabled, got %v", err)
	}
}

func TestAttributeDisabledAncestorDropsOnlyItsOverride(t *testing.T) {
	svc, db := setupAttributionServiceTest(t)

	chain := createTestHierarchy(t, db)
	if err := db.Model(&models.BranchAdmin{}).Where("id = ?", chain.BranchAdmin.ID).
		Update("status", constants.ActorStatusDisabled).Error; err != nil {
		t.Fatalf("disable branch admin failed: %v", err)
	}
	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)

	drafts, err := svc.Attribute(context.Background(), OrderEvent{
		OrderID:       "ORD-1011",
		AffiliateCode: chain.Agent.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(1499),
		Quantity:      1,
	})
	if err != nil {
		t.Fatalf("attribute failed: %v", err)
	}
	if len(drafts) != 3 {
		t.Fatalf("expected 3 drafts with one override dropped, got %d", len(drafts))
	}

	bySource := draftsBySource(drafts)
	if _, ok := bySource[constants.CommissionSourceBranchAdmin]; ok {
		t.Fatalf("disabled branch admin must not receive an override")
	}
	assertDraft(t, bySource, constants.CommissionSourceAffiliate, constants.EntryKindDirect, "70", "70")
	assertDraft(t, bySource, constants.CommissionSourceAreaManager, constants.EntryKindOverride, "10", "10")
	assertDraft(t, bySource, constants.CommissionSourceStateAdmin, constants.EntryKindOverride, "5", "5")
}

func setupAttributionServiceTest(t *testing.T) (*AttributionService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:attribution_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.StateAdmin{}, &models.AreaSalesManager{}, &models.BranchAdmin{}, &models.Agent{},
		&models.Collection{}, &models.Category{}, &models.Product{}, &models.CommissionRate{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	seedTestRates(t, db)

	actorRepo := repository.NewActorRepository(db)
	rates := NewRateService(repository.NewRateRepository(db), 0)
	hierarchy := NewHierarchyService(actorRepo)
	return NewAttributionService(hierarchy, rates, repository.NewProductRepository(db)), db
}

func seedTestRates(t *testing.T, db *gorm.DB) {
	t.Helper()

	defaults := map[string]int64{
		constants.RoleTypeAffiliate:    constants.DefaultRateAffiliate,
		constants.RoleTypeBranchDirect: constants.DefaultRateBranchDirect,
		constants.RoleTypeBranch:       constants.DefaultRateBranch,
		constants.RoleTypeArea:         constants.DefaultRateArea,
		constants.RoleTypeState:        constants.DefaultRateState,
	}
	for roleType, percentage := range defaults {
		row := models.CommissionRate{
			RoleType:   roleType,
			Percentage: models.NewMoneyFromDecimal(decimal.NewFromInt(percentage)),
			UpdatedAt:  time.Now(),
		}
		if err := db.Create(&row).Error; err != nil {
			t.Fatalf("seed rate %s failed: %v", roleType, err)
		}
	}
}

type testHierarchy struct {
	StateAdmin  models.StateAdmin
	AreaManager models.AreaSalesManager
	BranchAdmin models.BranchAdmin
	Agent       models.Agent
}

// createTestHierarchy seeds one full Karnataka chain linked by parent
// IDs: state admin -> area manager -> branch admin -> agent.
func createTestHierarchy(t *testing.T, db *gorm.DB) testHierarchy {
	t.Helper()

	stateAdmin := createTestStateAdmin(t, db, "Karnataka State Admin", "KA0001", "Karnataka")
	areaManager := createTestAreaManager(t, db, "Bengaluru Area Manager", "BLR001", "Bengaluru", "Karnataka", &stateAdmin.ID)
	branchAdmin := createTestBranchAdmin(t, db, "Indiranagar Branch Admin", "INDR01", "Indiranagar", "Bengaluru", "Karnataka", &areaManager.ID)
	agent := createTestAgent(t, db, "Asha Rao", "ASHA01", "Indiranagar", "Karnataka", &branchAdmin.ID)
	return testHierarchy{
		StateAdmin:  stateAdmin,
		AreaManager: areaManager,
		BranchAdmin: branchAdmin,
		Agent:       agent,
	}
}

func createTestStateAdmin(t *testing.T, db *gorm.DB, name, code, state string) models.StateAdmin {
	t.Helper()

	row := models.StateAdmin{
		Name:         name,
		ReferralCode: code,
		State:        state,
		Status:       constants.ActorStatusActive,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create state admin failed: %v", err)
	}
	return row
}

func createTestAreaManager(t *testing.T, db *gorm.DB, name, code, city, state string, stateAdminID *uint) models.AreaSalesManager {
	t.Helper()

	row := models.AreaSalesManager{
		Name:         name,
		ReferralCode: code,
		City:         city,
		State:        state,
		StateAdminID: stateAdminID,
		Status:       constants.ActorStatusActive,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create area manager failed: %v", err)
	}
	return row
}

func createTestBranchAdmin(t *testing.T, db *gorm.DB, name, code, branch, city, state string, areaManagerID *uint) models.BranchAdmin {
	t.Helper()

	row := models.BranchAdmin{
		Name:          name,
		ReferralCode:  code,
		Branch:        branch,
		City:          city,
		State:         state,
		AreaManagerID: areaManagerID,
		Status:        constants.ActorStatusActive,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create branch admin failed: %v", err)
	}
	return row
}

func createTestAgent(t *testing.T, db *gorm.DB, name, code, branch, state string, branchAdminID *uint) models.Agent {
	t.Helper()

	row := models.Agent{
		Name:          name,
		ReferralCode:  code,
		Branch:        branch,
		State:         state,
		BranchAdminID: branchAdminID,
		Status:        constants.ActorStatusActive,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create agent failed: %v", err)
	}
	return row
}

func createTestProduct(t *testing.T, db *gorm.DB, name string, commission *models.Money, categoryID, collectionID *uint) models.Product {
	t.Helper()

	row := models.Product{
		Name:             name,
		Price:            models.NewMoneyFromDecimal(decimal.NewFromInt(1499)),
		CommissionAmount: commission,
		CategoryID:       categoryID,
		CollectionID:     collectionID,
		IsActive:         true,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return row
}

func moneyPtr(value string) *models.Money {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	money := models.NewMoneyFromDecimal(amount)
	return &money
}

func draftsBySource(drafts []LedgerEntryDraft) map[string]LedgerEntryDraft {
	bySource := make(map[string]LedgerEntryDraft, len(drafts))
	for _, draft := range drafts {
		bySource[draft.CommissionSource] = draft
	}
	return bySource
}

func assertDraft(t *testing.T, bySource map[string]LedgerEntryDraft, source, kind, rate, commission string) {
	t.Helper()

	draft, ok := bySource[source]
	if !ok {
		t.Fatalf("missing draft for source %s", source)
	}
	if draft.EntryKind != kind {
		t.Fatalf("source %s: expected kind %s, got %s", source, kind, draft.EntryKind)
	}
	wantRate, _ := decimal.NewFromString(rate)
	if !draft.AffiliateRate.Decimal.Equal(wantRate) {
		t.Fatalf("source %s: expected rate %s, got %s", source, rate, draft.AffiliateRate)
	}
	wantCommission, _ := decimal.NewFromString(commission)
	if !draft.AffiliateCommission.Decimal.Equal(wantCommission) {
		t.Fatalf("source %s: expected commission %s, got %s", source, commission, draft.AffiliateCommission)
	}
}
