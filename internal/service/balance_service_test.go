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

func TestBalanceConservationAcrossHierarchy(t *testing.T) {
	balance, ledger, db := setupBalanceServiceTest(t, constants.OverrideBalanceModeLive)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)
	creditTestOrder(t, ledger, "ORD-3001", chain.Agent.ReferralCode, product.ID)

	expected := map[string]struct {
		role   string
		id     uint
		amount int64
	}{
		"agent":        {constants.ActorRoleAgent, chain.Agent.ID, 70},
		"branch admin": {constants.ActorRoleBranchAdmin, chain.BranchAdmin.ID, 15},
		"area manager": {constants.ActorRoleAreaManager, chain.AreaManager.ID, 10},
		"state admin":  {constants.ActorRoleStateAdmin, chain.StateAdmin.ID, 5},
	}

	total := decimal.Zero
	for label, want := range expected {
		view, err := balance.Balance(context.Background(), want.role, want.id)
		if err != nil {
			t.Fatalf("balance for %s failed: %v", label, err)
		}
		if !view.Credited.Decimal.Equal(decimal.NewFromInt(want.amount)) {
			t.Fatalf("%s: expected credited %d, got %s", label, want.amount, view.Credited)
		}
		if !view.Available.Decimal.Equal(decimal.NewFromInt(want.amount)) {
			t.Fatalf("%s: expected available %d, got %s", label, want.amount, view.Available)
		}
		total = total.Add(view.Credited.Decimal)
	}
	if !total.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("credited balances must sum to the pool, got %s", total)
	}
}

func TestBalancePendingBeforeCredit(t *testing.T) {
	balance, ledger, db := setupBalanceServiceTest(t, constants.OverrideBalanceModeLive)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)
	if _, err := ledger.ProcessOrder(context.Background(), OrderEvent{
		OrderID:       "ORD-3002",
		AffiliateCode: chain.Agent.ReferralCode,
		ProductID:     product.ID,
		OrderAmount:   decimal.NewFromInt(1499),
		Quantity:      1,
	}); err != nil {
		t.Fatalf("process order failed: %v", err)
	}

	view, err := balance.Balance(context.Background(), constants.ActorRoleAgent, chain.Agent.ID)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !view.Pending.Decimal.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected pending 70, got %s", view.Pending)
	}
	if !view.Credited.Decimal.IsZero() {
		t.Fatalf("expected credited 0, got %s", view.Credited)
	}
	if !view.Available.Decimal.IsZero() {
		t.Fatalf("pending money must not be available, got %s", view.Available)
	}
	if !view.LifetimeEarnings.Decimal.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected lifetime 70, got %s", view.LifetimeEarnings)
	}
}

func TestBalanceLiveModeTracksRateChange(t *testing.T) {
	balance, ledger, db := setupBalanceServiceTest(t, constants.OverrideBalanceModeLive)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)
	creditTestOrder(t, ledger, "ORD-3003", chain.Agent.ReferralCode, product.ID)

	if err := db.Model(&models.CommissionRate{}).
		Where("role_type = ?", constants.RoleTypeBranch).
		Update("percentage", models.NewMoneyFromDecimal(decimal.NewFromInt(20))).Error; err != nil {
		t.Fatalf("update branch rate failed: %v", err)
	}

	view, err := balance.Balance(context.Background(), constants.ActorRoleBranchAdmin, chain.BranchAdmin.ID)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !view.Credited.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("live mode should recompute override at 20%%, got %s", view.Credited)
	}

	// The seller's own direct share always keeps the written amount.
	agentView, err := balance.Balance(context.Background(), constants.ActorRoleAgent, chain.Agent.ID)
	if err != nil {
		t.Fatalf("agent balance failed: %v", err)
	}
	if !agentView.Credited.Decimal.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("direct share must stay at written 70, got %s", agentView.Credited)
	}
}

func TestBalanceSnapshotModeKeepsWrittenAmounts(t *testing.T) {
	balance, ledger, db := setupBalanceServiceTest(t, constants.OverrideBalanceModeSnapshot)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)
	creditTestOrder(t, ledger, "ORD-3004", chain.Agent.ReferralCode, product.ID)

	if err := db.Model(&models.CommissionRate{}).
		Where("role_type = ?", constants.RoleTypeBranch).
		Update("percentage", models.NewMoneyFromDecimal(decimal.NewFromInt(20))).Error; err != nil {
		t.Fatalf("update branch rate failed: %v", err)
	}

	view, err := balance.Balance(context.Background(), constants.ActorRoleBranchAdmin, chain.BranchAdmin.ID)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !view.Credited.Decimal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("snapshot mode should keep the written 15, got %s", view.Credited)
	}
}

func TestBalanceAvailableNetsReservedWithdrawals(t *testing.T) {
	balance, ledger, db := setupBalanceServiceTest(t, constants.OverrideBalanceModeLive)

	chain := createTestHierarchy(t, db)
	product := createTestProduct(t, db, "Premium Almond Box 1kg", moneyPtr("100"), nil, nil)
	creditTestOrder(t, ledger, "ORD-3005", chain.Agent.ReferralCode, product.ID)

	createTestWithdrawal(t, db, "WD-TEST0001", constants.ActorRoleAgent, chain.Agent.ID, "30", constants.WithdrawalStatusApproved)
	createTestWithdrawal(t, db, "WD-TEST0002", constants.ActorRoleAgent, chain.Agent.ID, "20", constants.WithdrawalStatusPaid)
	// Rejected requests release their hold.
	createTestWithdrawal(t, db, "WD-TEST0003", constants.ActorRoleAgent, chain.Agent.ID, "15", constants.WithdrawalStatusRejected)

	view, err := balance.Balance(context.Background(), constants.ActorRoleAgent, chain.Agent.ID)
	if err != nil {
		t.Fatalf("balance failed: %v", err)
	}
	if !view.Credited.Decimal.Equal(decimal.NewFromInt(70)) {
		t.Fatalf("expected credited 70, got %s", view.Credited)
	}
	if !view.Available.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected available 70-30-20=20, got %s", view.Available)
	}
	if !view.PaidOut.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("expected paid out 20, got %s", view.PaidOut)
	}
}

func TestBalanceUnknownActor(t *testing.T) {
	balance, _, _ := setupBalanceServiceTest(t, constants.OverrideBalanceModeLive)

	if _, err := balance.Balance(context.Background(), constants.ActorRoleAgent, 4242); !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound, got %v", err)
	}
	if _, err := balance.Balance(context.Background(), "accountant", 1); !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound for unknown role, got %v", err)
	}
}

func setupBalanceServiceTest(t *testing.T, overrideMode string) (*BalanceService, *LedgerService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:balance_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.StateAdmin{}, &models.AreaSalesManager{}, &models.BranchAdmin{}, &models.Agent{},
		&models.Collection{}, &models.Category{}, &models.Product{},
		&models.CommissionRate{}, &models.CommissionLedgerEntry{},
		&models.WithdrawalRequest{}, &models.ActivityLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	seedTestRates(t, db)

	actorRepo := repository.NewActorRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)
	rates := NewRateService(repository.NewRateRepository(db), 0)
	attribution := NewAttributionService(NewHierarchyService(actorRepo), rates, repository.NewProductRepository(db))
	activity := NewActivityService(repository.NewActivityRepository(db))
	ledger := NewLedgerService(ledgerRepo, actorRepo, attribution, activity)
	balance := NewBalanceService(ledgerRepo, actorRepo, repository.NewWithdrawalRepository(db), rates, overrideMode)
	return balance, ledger, db
}

func creditTestOrder(t *testing.T, ledger *LedgerService, orderID, code string, productID uint) {
	t.Helper()

	if _, err := ledger.ProcessOrder(context.Background(), OrderEvent{
		OrderID:       orderID,
		AffiliateCode: code,
		ProductID:     productID,
		OrderAmount:   decimal.NewFromInt(1499),
		Quantity:      1,
	}); err != nil {
		t.Fatalf("process order %s failed: %v", orderID, err)
	}
	if _, err := ledger.Credit(orderID); err != nil {
		t.Fatalf("credit order %s failed: %v", orderID, err)
	}
}

func createTestWithdrawal(t *testing.T, db *gorm.DB, referenceNo, role string, actorID uint, amount, status string) models.WithdrawalRequest {
	t.Helper()

	value, err := decimal.NewFromString(amount)
	if err != nil {
		t.Fatalf("bad amount %s: %v", amount, err)
	}
	row := models.WithdrawalRequest{
		ReferenceNo:      referenceNo,
		ActorRole:        role,
		ActorID:          actorID,
		WithdrawalAmount: models.NewMoneyFromDecimal(value),
		NetPayable:       models.NewMoneyFromDecimal(value),
		Status:           status,
		RequestedAt:      time.Now(),
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create withdrawal failed: %v", err)
	}
	return row
}
