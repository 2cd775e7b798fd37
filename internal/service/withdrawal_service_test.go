package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func TestRequestWithdrawalComputesGSTBreakdown(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)

	agent := createTestAgent(t, db, "Asha Rao", "ASHA01", "Indiranagar", "Karnataka", nil)
	createTestCreditedEntry(t, db, "ORD-4001", agent.ReferralCode, constants.CommissionSourceAffiliate, "1000")

	req, err := svc.Request(context.Background(), constants.ActorRoleAgent, agent.ID, decimal.NewFromInt(600))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if req.Status != constants.WithdrawalStatusPending {
		t.Fatalf("expected PENDING, got %s", req.Status)
	}
	if !strings.HasPrefix(req.ReferenceNo, "WD-") {
		t.Fatalf("expected WD- reference, got %s", req.ReferenceNo)
	}
	if !req.GSTAmount.Decimal.Equal(decimal.NewFromInt(108)) {
		t.Fatalf("expected GST 108 at 18%%, got %s", req.GSTAmount)
	}
	if !req.NetPayable.Decimal.Equal(decimal.NewFromInt(492)) {
		t.Fatalf("expected net payable 492, got %s", req.NetPayable)
	}
}

func TestRequestWithdrawalValidations(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)

	agent := createTestAgent(t, db, "Asha Rao", "ASHA01", "Indiranagar", "Karnataka", nil)
	createTestCreditedEntry(t, db, "ORD-4002", agent.ReferralCode, constants.CommissionSourceAffiliate, "1000")

	if _, err := svc.Request(context.Background(), constants.ActorRoleAgent, agent.ID, decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero, got %v", err)
	}
	if _, err := svc.Request(context.Background(), constants.ActorRoleAgent, agent.ID, decimal.NewFromInt(499)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount below minimum, got %v", err)
	}
	if _, err := svc.Request(context.Background(), constants.ActorRoleAgent, agent.ID, decimal.NewFromInt(2000)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
	if _, err := svc.Request(context.Background(), constants.ActorRoleAgent, 4242, decimal.NewFromInt(600)); !errors.Is(err, ErrActorNotFound) {
		t.Fatalf("expected ErrActorNotFound, got %v", err)
	}
}

func TestRequestWithdrawalSecondPendingRejected(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)

	agent := createTestAgent(t, db, "Asha Rao", "ASHA01", "Indiranagar", "Karnataka", nil)
	createTestCreditedEntry(t, db, "ORD-4003", agent.ReferralCode, constants.CommissionSourceAffiliate, "2000")

	if _, err := svc.Request(context.Background(), constants.ActorRoleAgent, agent.ID, decimal.NewFromInt(600)); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if _, err := svc.Request(context.Background(), constants.ActorRoleAgent, agent.ID, decimal.NewFromInt(500)); !errors.Is(err, ErrWithdrawalPendingOpen) {
		t.Fatalf("expected ErrWithdrawalPendingOpen, got %v", err)
	}
}

func TestRequestWithdrawalDisabledActor(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)

	agent := createTestAgent(t, db, "Asha Rao", "ASHA01", "Indiranagar", "Karnataka", nil)
	createTestCreditedEntry(t, db, "ORD-4004", agent.ReferralCode, constants.CommissionSourceAffiliate, "1000")
	if err := db.Model(&models.Agent{}).Where("id = ?", agent.ID).
		Update("status", constants.ActorStatusDisabled).Error; err != nil {
		t.Fatalf("disable agent failed: %v", err)
	}

	if _, err := svc.Request(context.Background(), constants.ActorRoleAgent, agent.ID, decimal.NewFromInt(600)); !errors.Is(err, ErrActorDisabled) {
		t.Fatalf("expected ErrActorDisabled, got %v", err)
	}
}

func TestApproveDeductsWalletAndReservesBalance(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)

	agent := createTestAgent(t, db, "Asha Rao", "ASHA01", "Indiranagar", "Karnataka", nil)
	createTestCreditedEntry(t, db, "ORD-4005", agent.ReferralCode, constants.CommissionSourceAffiliate, "1000")
	if err := db.Model(&models.Agent{}).Where("id = ?", agent.ID).
		Update("wallet_balance", models.NewMoneyFromDecimal(decimal.NewFromInt(1000))).Error; err != nil {
		t.Fatalf("seed wallet failed: %v", err)
	}

	req, err := svc.Request(context.Background(), constants.ActorRoleAgent, agent.ID, decimal.NewFromInt(600))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	approved, err := svc.Approve(context.Background(), req.ID, 7)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.WithdrawalStatusApproved {
		t.Fatalf("expected APPROVED, got %s", approved.Status)
	}
	if approved.ReviewedBy == nil || *approved.ReviewedBy != 7 {
		t.Fatalf("expected reviewer 7, got %+v", approved.ReviewedBy)
	}
	if approved.ReviewedAt == nil {
		t.Fatalf("expected reviewed_at to be set")
	}

	var reloaded models.Agent
	if err := db.First(&reloaded, agent.ID).Error; err != nil {
		t.Fatalf("reload agent failed: %v", err)
	}
	if !reloaded.WalletBalance.Decimal.Equal(decimal.NewFromInt(400)) {
		t.Fatalf("expected wallet 400 after deduction, got %s", reloaded.WalletBalance)
	}

	if _, err := svc.Approve(context.Background(), req.ID, 7); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on re-approve, got %v", err)
	}
}

func TestApproveGuardsAgainstOverdraw(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)

	agent := createTestAgent(t, db, "Asha Rao", "ASHA01", "Indiranagar", "Karnataka", nil)
	createTestCreditedEntry(t, db, "ORD-4006", agent.ReferralCode, constants.CommissionSourceAffiliate, "1000")

	first, err := svc.Request(context.Background(), constants.ActorRoleAgent, agent.ID, decimal.NewFromInt(600))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if _, err := svc.Approve(context.Background(), first.ID, 7); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	// A stale request that slipped in before the first approval must
	// fail the recheck under the lock.
	stale := createTestWithdrawal(t, db, "WD-STALE001", constants.ActorRoleAgent, agent.ID, "600", constants.WithdrawalStatusPending)
	if _, err := svc.Approve(context.Background(), stale.ID, 7); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected ErrInsufficientBalance, got %v", err)
	}
}

func TestRejectReleasesHold(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)

	agent := createTestAgent(t, db, "Asha Rao", "ASHA01", "Indiranagar", "Karnataka", nil)
	createTestCreditedEntry(t, db, "ORD-4007", agent.ReferralCode, constants.CommissionSourceAffiliate, "1000")

	req, err := svc.Request(context.Background(), constants.ActorRoleAgent, agent.ID, decimal.NewFromInt(600))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	rejected, err := svc.Reject(req.ID, 7, "bank details missing")
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.WithdrawalStatusRejected {
		t.Fatalf("expected REJECTED, got %s", rejected.Status)
	}
	if rejected.RejectReason != "bank details missing" {
		t.Fatalf("expected reason recorded, got %q", rejected.RejectReason)
	}

	// The hold is gone, so a fresh request for the full amount works.
	if _, err := svc.Request(context.Background(), constants.ActorRoleAgent, agent.ID, decimal.NewFromInt(1000)); err != nil {
		t.Fatalf("request after reject failed: %v", err)
	}
}

func TestCancelChecksOwnership(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)

	agent := createTestAgent(t, db, "Asha Rao", "ASHA01", "Indiranagar", "Karnataka", nil)
	other := createTestAgent(t, db, "Vikram Shetty", "VIKR01", "Koramangala", "Karnataka", nil)
	createTestCreditedEntry(t, db, "ORD-4008", agent.ReferralCode, constants.CommissionSourceAffiliate, "1000")

	req, err := svc.Request(context.Background(), constants.ActorRoleAgent, agent.ID, decimal.NewFromInt(600))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if _, err := svc.Cancel(req.ID, constants.ActorRoleAgent, other.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign cancel, got %v", err)
	}

	cancelled, err := svc.Cancel(req.ID, constants.ActorRoleAgent, agent.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != constants.WithdrawalStatusRejected {
		t.Fatalf("expected REJECTED, got %s", cancelled.Status)
	}
	if cancelled.ReviewedBy != nil {
		t.Fatalf("self-cancel must not record a reviewer, got %+v", cancelled.ReviewedBy)
	}

	if _, err := svc.Cancel(req.ID, constants.ActorRoleAgent, agent.ID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double cancel, got %v", err)
	}
}

func TestPayRequiresApprovalAndTransactionID(t *testing.T) {
	svc, db := setupWithdrawalServiceTest(t)

	agent := createTestAgent(t, db, "Asha Rao", "ASHA01", "Indiranagar", "Karnataka", nil)
	createTestCreditedEntry(t, db, "ORD-4009", agent.ReferralCode, constants.CommissionSourceAffiliate, "1000")

	req, err := svc.Request(context.Background(), constants.ActorRoleAgent, agent.ID, decimal.NewFromInt(600))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}

	if _, err := svc.Pay(req.ID, 7, "UTR-1234"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition paying a pending request, got %v", err)
	}
	if _, err := svc.Approve(context.Background(), req.ID, 7); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if _, err := svc.Pay(req.ID, 7, "   "); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition for blank transaction id, got %v", err)
	}

	paid, err := svc.Pay(req.ID, 7, "UTR-1234")
	if err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if paid.Status != constants.WithdrawalStatusPaid {
		t.Fatalf("expected PAID, got %s", paid.Status)
	}
	if paid.TransactionID != "UTR-1234" {
		t.Fatalf("expected transaction id recorded, got %q", paid.TransactionID)
	}
	if paid.PaymentDate == nil {
		t.Fatalf("expected payment date to be set")
	}

	if _, err := svc.Pay(req.ID, 7, "UTR-5678"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition on double pay, got %v", err)
	}
}

func TestPayUnknownRequest(t *testing.T) {
	svc, _ := setupWithdrawalServiceTest(t)

	if _, err := svc.Pay(4242, 7, "UTR-1234"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func setupWithdrawalServiceTest(t *testing.T) (*WithdrawalService, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:withdrawal_service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.StateAdmin{}, &models.AreaSalesManager{}, &models.BranchAdmin{}, &models.Agent{},
		&models.CommissionRate{}, &models.CommissionLedgerEntry{},
		&models.WithdrawalRequest{}, &models.ActivityLog{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	seedTestRates(t, db)

	actorRepo := repository.NewActorRepository(db)
	withdrawalRepo := repository.NewWithdrawalRepository(db)
	rates := NewRateService(repository.NewRateRepository(db), 0)
	balance := NewBalanceService(repository.NewLedgerRepository(db), actorRepo, withdrawalRepo, rates, constants.OverrideBalanceModeLive)
	activity := NewActivityService(repository.NewActivityRepository(db))
	return NewWithdrawalService(withdrawalRepo, actorRepo, balance, activity, "18", "500"), db
}

// createTestCreditedEntry seeds one already-credited direct ledger row
// so balance-dependent paths have money to work with.
func createTestCreditedEntry(t *testing.T, db *gorm.DB, orderID, code, source, commission string) models.CommissionLedgerEntry {
	t.Helper()

	amount, err := decimal.NewFromString(commission)
	if err != nil {
		t.Fatalf("bad commission %s: %v", commission, err)
	}
	row := models.CommissionLedgerEntry{
		OrderID:             orderID,
		AffiliateCode:       code,
		CommissionSource:    source,
		EntryKind:           constants.EntryKindDirect,
		OrderAmount:         models.NewMoneyFromDecimal(amount),
		CommissionAmount:    models.NewMoneyFromDecimal(amount),
		AffiliateRate:       models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		AffiliateCommission: models.NewMoneyFromDecimal(amount),
		Status:              constants.LedgerStatusCredited,
	}
	if err := db.Create(&row).Error; err != nil {
		t.Fatalf("create ledger entry failed: %v", err)
	}
	return row
}
