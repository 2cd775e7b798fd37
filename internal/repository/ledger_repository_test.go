package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupLedgerRepositoryTest(t *testing.T) (*GormLedgerRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:ledger_repo_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.CommissionLedgerEntry{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return NewLedgerRepository(db), db
}

func newLedgerRow(orderID, code, source, kind, status string, commission int64) *models.CommissionLedgerEntry {
	amount := decimal.NewFromInt(commission)
	return &models.CommissionLedgerEntry{
		OrderID:             orderID,
		AffiliateCode:       code,
		CommissionSource:    source,
		EntryKind:           kind,
		OrderAmount:         models.NewMoneyFromDecimal(decimal.NewFromInt(1499)),
		CommissionAmount:    models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		AffiliateRate:       models.NewMoneyFromDecimal(amount),
		AffiliateCommission: models.NewMoneyFromDecimal(amount),
		Status:              status,
	}
}

func TestLedgerRepositoryCreateIgnoreDuplicate(t *testing.T) {
	repo, db := setupLedgerRepositoryTest(t)

	first := newLedgerRow("ORD-9001", "ASHA01", constants.CommissionSourceAffiliate, constants.EntryKindDirect, constants.LedgerStatusPending, 70)
	ok, err := repo.CreateIgnoreDuplicate(first)
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected first insert to report a new row")
	}

	replay := newLedgerRow("ORD-9001", "ASHA01", constants.CommissionSourceAffiliate, constants.EntryKindDirect, constants.LedgerStatusPending, 70)
	ok, err = repo.CreateIgnoreDuplicate(replay)
	if err != nil {
		t.Fatalf("replay insert failed: %v", err)
	}
	if ok {
		t.Fatalf("expected replay insert to be skipped")
	}

	var count int64
	if err := db.Model(&models.CommissionLedgerEntry{}).Where("order_id = ?", "ORD-9001").Count(&count).Error; err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 row for the order/source pair, got %d", count)
	}

	// Same order, different source, is a distinct row.
	override := newLedgerRow("ORD-9001", "ASHA01", constants.CommissionSourceBranchAdmin, constants.EntryKindOverride, constants.LedgerStatusPending, 15)
	ok, err = repo.CreateIgnoreDuplicate(override)
	if err != nil {
		t.Fatalf("override insert failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected a second source to insert")
	}
}

func TestLedgerRepositoryMarkCreditedByOrder(t *testing.T) {
	repo, _ := setupLedgerRepositoryTest(t)

	for _, row := range []*models.CommissionLedgerEntry{
		newLedgerRow("ORD-9002", "ASHA01", constants.CommissionSourceAffiliate, constants.EntryKindDirect, constants.LedgerStatusPending, 70),
		newLedgerRow("ORD-9002", "ASHA01", constants.CommissionSourceStateAdmin, constants.EntryKindOverride, constants.LedgerStatusPending, 5),
		newLedgerRow("ORD-9003", "ASHA01", constants.CommissionSourceAffiliate, constants.EntryKindDirect, constants.LedgerStatusPending, 70),
	} {
		if _, err := repo.CreateIgnoreDuplicate(row); err != nil {
			t.Fatalf("seed insert failed: %v", err)
		}
	}

	credited, err := repo.MarkCreditedByOrder("ORD-9002")
	if err != nil {
		t.Fatalf("mark credited failed: %v", err)
	}
	if credited != 2 {
		t.Fatalf("expected 2 rows credited, got %d", credited)
	}

	rows, err := repo.ListByOrder("ORD-9003")
	if err != nil {
		t.Fatalf("list other order failed: %v", err)
	}
	if len(rows) != 1 || rows[0].Status != constants.LedgerStatusPending {
		t.Fatalf("other order must stay pending, got %+v", rows)
	}

	credited, err = repo.MarkCreditedByOrder("ORD-9002")
	if err != nil {
		t.Fatalf("re-credit failed: %v", err)
	}
	if credited != 0 {
		t.Fatalf("expected 0 rows on re-credit, got %d", credited)
	}
}

func TestLedgerRepositorySumEarnings(t *testing.T) {
	repo, _ := setupLedgerRepositoryTest(t)

	for _, row := range []*models.CommissionLedgerEntry{
		newLedgerRow("ORD-9004", "ASHA01", constants.CommissionSourceAffiliate, constants.EntryKindDirect, constants.LedgerStatusCredited, 70),
		newLedgerRow("ORD-9005", "ASHA01", constants.CommissionSourceAffiliate, constants.EntryKindDirect, constants.LedgerStatusCredited, 70),
		newLedgerRow("ORD-9006", "ASHA01", constants.CommissionSourceAffiliate, constants.EntryKindDirect, constants.LedgerStatusPending, 70),
		newLedgerRow("ORD-9004", "ASHA01", constants.CommissionSourceBranchAdmin, constants.EntryKindOverride, constants.LedgerStatusCredited, 15),
		newLedgerRow("ORD-9099", "VIKR01", constants.CommissionSourceAffiliate, constants.EntryKindDirect, constants.LedgerStatusCredited, 70),
	} {
		if _, err := repo.CreateIgnoreDuplicate(row); err != nil {
			t.Fatalf("seed insert failed: %v", err)
		}
	}

	sum, err := repo.SumEarnings([]string{"asha01"}, []string{constants.CommissionSourceAffiliate}, constants.LedgerStatusCredited)
	if err != nil {
		t.Fatalf("sum earnings failed: %v", err)
	}
	if !sum.Equal(decimal.NewFromInt(140)) {
		t.Fatalf("expected 140 credited direct earnings, got %s", sum)
	}

	sum, err = repo.SumEarnings([]string{"ASHA01"}, []string{constants.CommissionSourceAffiliate}, "")
	if err != nil {
		t.Fatalf("sum without status failed: %v", err)
	}
	if !sum.Equal(decimal.NewFromInt(210)) {
		t.Fatalf("expected 210 across statuses, got %s", sum)
	}

	sum, err = repo.SumEarnings(nil, []string{constants.CommissionSourceAffiliate}, "")
	if err != nil {
		t.Fatalf("sum with no codes failed: %v", err)
	}
	if !sum.IsZero() {
		t.Fatalf("expected zero for empty code set, got %s", sum)
	}
}

func TestLedgerRepositoryAggregateBySource(t *testing.T) {
	repo, _ := setupLedgerRepositoryTest(t)

	for _, row := range []*models.CommissionLedgerEntry{
		newLedgerRow("ORD-9007", "ASHA01", constants.CommissionSourceAffiliate, constants.EntryKindDirect, constants.LedgerStatusCredited, 70),
		newLedgerRow("ORD-9008", "ASHA01", constants.CommissionSourceAffiliate, constants.EntryKindDirect, constants.LedgerStatusCredited, 70),
		newLedgerRow("ORD-9007", "ASHA01", constants.CommissionSourceBranchAdmin, constants.EntryKindOverride, constants.LedgerStatusCredited, 15),
	} {
		if _, err := repo.CreateIgnoreDuplicate(row); err != nil {
			t.Fatalf("seed insert failed: %v", err)
		}
	}

	aggregates, err := repo.AggregateBySource([]string{"ASHA01"}, constants.LedgerStatusCredited)
	if err != nil {
		t.Fatalf("aggregate failed: %v", err)
	}
	bySource := make(map[string]LedgerSourceAggregate, len(aggregates))
	for _, aggregate := range aggregates {
		bySource[aggregate.CommissionSource] = aggregate
	}

	direct := bySource[constants.CommissionSourceAffiliate]
	if direct.EntryCount != 2 || !direct.EarningsTotal.Equal(decimal.NewFromInt(140)) {
		t.Fatalf("unexpected direct aggregate %+v", direct)
	}
	if !direct.PoolTotal.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected pool total 200, got %s", direct.PoolTotal)
	}
	override := bySource[constants.CommissionSourceBranchAdmin]
	if override.EntryCount != 1 || !override.EarningsTotal.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("unexpected override aggregate %+v", override)
	}
}

func TestLedgerRepositoryListFilters(t *testing.T) {
	repo, _ := setupLedgerRepositoryTest(t)

	for _, row := range []*models.CommissionLedgerEntry{
		newLedgerRow("ORD-9009", "ASHA01", constants.CommissionSourceAffiliate, constants.EntryKindDirect, constants.LedgerStatusPending, 70),
		newLedgerRow("ORD-9009", "ASHA01", constants.CommissionSourceStateAdmin, constants.EntryKindOverride, constants.LedgerStatusPending, 5),
		newLedgerRow("ORD-9010", "VIKR01", constants.CommissionSourceAffiliate, constants.EntryKindDirect, constants.LedgerStatusCredited, 70),
	} {
		if _, err := repo.CreateIgnoreDuplicate(row); err != nil {
			t.Fatalf("seed insert failed: %v", err)
		}
	}

	rows, total, err := repo.List(LedgerListFilter{AffiliateCode: "asha01", EntryKind: constants.EntryKindOverride})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(rows) != 1 || rows[0].CommissionSource != constants.CommissionSourceStateAdmin {
		t.Fatalf("unexpected filter result total=%d rows=%+v", total, rows)
	}

	rows, total, err = repo.List(LedgerListFilter{Status: constants.LedgerStatusPending, Page: 1, PageSize: 1})
	if err != nil {
		t.Fatalf("paged list failed: %v", err)
	}
	if total != 2 || len(rows) != 1 {
		t.Fatalf("expected total 2 with 1 row page, got total=%d rows=%d", total, len(rows))
	}
}
