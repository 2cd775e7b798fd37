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

func TestProcessOrderWritesPendingLedgerRows(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)

	inserted, err := svc.ProcessOrder(context.Background(), OrderEvent{
		OrderID:       "ORD-2001",
		AffiliateCode: chain.Agent.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(1499),
		Quantity:      1,
	})
	if err != nil {
		t.Fatalf("process order failed: %v", err)
	}
	if inserted != 4 {
		t.Fatalf("expected 4 rows inserted, got %d", inserted)
	}

	entries, err := svc.EntriesByOrder("ORD-2001")
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 ledger rows, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.Status != constants.LedgerStatusPending {
			t.Fatalf("expected PENDING, got %s for %s", entry.Status, entry.CommissionSource)
		}
		if entry.AffiliateCode != chain.Agent.ReferralCode {
			t.Fatalf("expected seller code on row %s, got %s", entry.CommissionSource, entry.AffiliateCode)
		}
	}
}

func TestProcessOrderReplayIsIdempotent(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)
	event := OrderEvent{
		OrderID:       "ORD-2002",
		AffiliateCode: chain.Agent.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(1499),
		Quantity:      1,
	}

	if _, err := svc.ProcessOrder(context.Background(), event); err != nil {
		t.Fatalf("first delivery failed: %v", err)
	}
	inserted, err := svc.ProcessOrder(context.Background(), event)
	if err != nil {
		t.Fatalf("redelivery failed: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("expected 0 rows on redelivery, got %d", inserted)
	}

	entries, err := svc.EntriesByOrder("ORD-2002")
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("expected 4 rows after replay, got %d", len(entries))
	}
}

func TestProcessOrderUnknownCodeSkipsWithoutError(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)

	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)

	inserted, err := svc.ProcessOrder(context.Background(), OrderEvent{
		OrderID:       "ORD-2003",
		AffiliateCode: "NOPE99",
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(1499),
		Quantity:      1,
	})
	if err != nil {
		t.Fatalf("expected skip without error, got %v", err)
	}
	if inserted != 0 {
		t.Fatalf("expected 0 rows, got %d", inserted)
	}
}

func TestCreditFlipsStatusAndCreditsSellerWallet(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)
	event := OrderEvent{
		OrderID:       "ORD-2004",
		AffiliateCode: chain.Agent.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(1499),
		Quantity:      1,
	}
	if _, err := svc.ProcessOrder(context.Background(), event); err != nil {
		t.Fatalf("process order failed: %v", err)
	}

	credited, err := svc.Credit("ORD-2004")
	if err != nil {
		t.Fatalf("credit failed: %v", err)
	}
	if credited != 4 {
		t.Fatalf("expected 4 rows credited, got %d", credited)
	}

	entries, err := svc.EntriesByOrder("ORD-2004")
	if err != nil {
		t.Fatalf("list entries failed: %v", err)
	}
	for _, entry := range entries {
		if entry.Status != constants.LedgerStatusCredited {
			t.Fatalf("expected CREDITED, got %s for %s", entry.Status, entry.CommissionSource)
		}
	}

	var agent models.Agent
	if err := db.First(&agent, chain.Agent.ID).Error; err != nil {
		t.Fatalf("reload agent failed: %v", err)
	}
	if !agent.WalletBalance.Decimal.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected wallet 70, got %s", agent.WalletBalance)
	}

	var feed []models.ActivityLog
	if err := db.Where("verb = ?", constants.ActivityVerbCredited).Find(&feed).Error; err != nil {
		t.Fatalf("load activity failed: %v", err)
	}
	if len(feed) != 1 || feed[0].ActorID != chain.Agent.ID || feed[0].ActorRole != constants.ActorRoleAgent {
		t.Fatalf("expected one credited feed line for the agent, got %+v", feed)
	}
}

func TestCreditTwiceIsNoOp(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)
	if _, err := svc.ProcessOrder(context.Background(), OrderEvent{
		OrderID:       "ORD-2005",
		AffiliateCode: chain.Agent.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(1499),
		Quantity:      1,
	}); err != nil {
		t.Fatalf("process order failed: %v", err)
	}

	if _, err := svc.Credit("ORD-2005"); err != nil {
		t.Fatalf("first credit failed: %v", err)
	}
	credited, err := svc.Credit("ORD-2005")
	if err != nil {
		t.Fatalf("second credit failed: %v", err)
	}
	if credited != 0 {
		t.Fatalf("expected 0 rows on re-credit, got %d", credited)
	}

	var agent models.Agent
	if err := db.First(&agent, chain.Agent.ID).Error; err != nil {
		t.Fatalf("reload agent failed: %v", err)
	}
	if !agent.WalletBalance.Decimal.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("wallet must not be credited twice, got %s", agent.WalletBalance)
	}
}

func TestCreditBranchAdminDirectSale(t *testing.T) {
	svc, db := setupLedgerServiceTest(t)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Cashew Gift Pack 500g", moneyPtr("100"), nil, nil)
	if _, err := svc.ProcessOrder(context.Background(), OrderEvent{
		OrderID:       "ORD-2006",
		AffiliateCode: chain.BranchAdmin.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(899),
		Quantity:      1,
	}); err != nil {
		t.Fatalf("process order failed: %v", err)
	}

	if _, err := svc.Credit("ORD-2006"); err != nil {
		t.Fatalf("credit failed: %v", err)
	}

	var admin models.BranchAdmin
	if err := db.First(&admin, chain.BranchAdmin.ID).Error; err != nil {
		t.Fatalf("reload branch admin failed: %v", err)
	}
	if !admin.WalletBalance.Decimal.Equal(decimal.NewFromInt(85)) {
		t.Fatalf("expected branch admin wallet 85, got %s", admin.WalletBalance)
	}
}

func TestCreditEmptyOrderID(t *testing.T) {
	svc, _ := setupLedgerServiceTest(t)

	if _, err := svc.Credit("  "); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func setupLedgerServiceTest(t *testing.T) (*LedgerService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:ledger_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.StateAdmin{}, &models.AreaSalesManager{}, &models.BranchAdmin{}, &models.Agent{},
		&models.Collection{}, &models.Category{}, &models.Product{},
		&models.CommissionRate{}, &models.CommissionLedgerEntry{}, &models.ActivityLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	seedTestRates(t, db)

	actorRepo := repository.NewActorRepository(db)
	rates := NewRateService(repository.NewRateRepository(db), 0)
	attribution := NewAttributionService(NewHierarchyService(actorRepo), rates, repository.NewProductRepository(db))
	activity := NewActivityService(repository.NewActivityRepository(db))
	return NewLedgerService(repository.NewLedgerRepository(db), actorRepo, attribution, activity), db
}
