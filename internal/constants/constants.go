package constants

// Role types, as stored on commission_rates.role_type.
const (
	RoleTypeAffiliate    = "affiliate"
	RoleTypeBranchDirect = "branch_direct"
	RoleTypeBranch       = "branch"
	RoleTypeArea         = "area"
	RoleTypeState        = "state"
)

// Actor roles, in resolver priority order (highest first).
const (
	ActorRoleStateAdmin  = "state_admin"
	ActorRoleAreaManager = "area_manager"
	ActorRoleBranchAdmin = "branch_admin"
	ActorRoleAgent       = "agent"
)

// Commission sources, one per ledger row.
const (
	CommissionSourceAffiliate         = "affiliate"
	CommissionSourceBranchAdmin       = "branch_admin"
	CommissionSourceBranchAdminDirect = "branch_admin_direct"
	CommissionSourceASMDirect         = "asm_direct"
	CommissionSourceStateAdminDirect  = "state_admin_direct"
	CommissionSourceAreaManager       = "area_manager"
	CommissionSourceStateAdmin        = "state_admin"
)

// Ledger entry kinds, written at attribution time.
const (
	EntryKindDirect   = "direct"
	EntryKindOverride = "override"
)

// Ledger entry statuses.
const (
	LedgerStatusPending  = "PENDING"
	LedgerStatusCredited = "CREDITED"
)

// Withdrawal request statuses.
const (
	WithdrawalStatusPending  = "PENDING"
	WithdrawalStatusApproved = "APPROVED"
	WithdrawalStatusRejected = "REJECTED"
	WithdrawalStatusPaid     = "PAID"
)

// Actor statuses.
const (
	ActorStatusActive   = "active"
	ActorStatusDisabled = "disabled"
)

// Activity verbs for the notification feed.
const (
	ActivityVerbCredited = "Credited"
	ActivityVerbApproved = "Approved"
	ActivityVerbRejected = "Rejected"
	ActivityVerbPaid     = "Paid"
)

// Asynq task names.
const (
	TaskOrderCommission = "order:commission"
	TaskLedgerCredit    = "ledger:credit"
)

// Queue names.
const (
	QueueDefault  = "default"
	QueueCritical = "critical"
)

// Cache keys.
const (
	CacheKeyCommissionRates = "commission_rates"
)

// Balance modes for override earnings.
const (
	OverrideBalanceModeLive     = "live"
	OverrideBalanceModeSnapshot = "snapshot"
)

// Default commission percentages used when the registry has no active
// row for a role. Attribution must not fail an order on a missing rate.
const (
	DefaultRateAffiliate    = 70
	DefaultRateBranchDirect = 15
	DefaultRateBranch       = 15
	DefaultRateArea         = 10
	DefaultRateState        = 5
)
