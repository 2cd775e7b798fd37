package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerListFilter filters commission ledger queries.
type LedgerListFilter struct {
	OrderID          string
	AffiliateCode    string
	CommissionSource string
	EntryKind        string
	Status           string
	CreatedFrom      *time.Time
	CreatedTo        *time.Time
	Page             int
	PageSize         int
}

// WithdrawalListFilter filters withdrawal request queries.
type WithdrawalListFilter struct {
	ActorRole   string
	ActorID     uint
	Status      string
	ReferenceNo string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Page        int
	PageSize    int
}

// ActorListFilter filters actor listings for any tier.
type ActorListFilter struct {
	Branch   string
	City     string
	State    string
	Status   string
	Keyword  string
	Page     int
	PageSize int
}

// ActivityListFilter filters the activity feed.
type ActivityListFilter struct {
	ActorRole string
	ActorID   uint
	Verb      string
	Page      int
	PageSize  int
}

// ProductListFilter filters product listings.
type ProductListFilter struct {
	CategoryID   uint
	CollectionID uint
	ActiveOnly   bool
	Keyword      string
	Page         int
	PageSize     int
}

// LedgerSourceAggregate sums earnings and pool amounts per source for
// one set of affiliate codes.
type LedgerSourceAggregate struct {
	CommissionSource string          `gorm:"column:commission_source"`
	EntryCount       int64           `gorm:"column:entry_count"`
	PoolTotal        decimal.Decimal `gorm:"column:pool_total"`
	EarningsTotal    decimal.Decimal `gorm:"column:earnings_total"`
}
