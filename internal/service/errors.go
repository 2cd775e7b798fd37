package service

import "errors"

// Sentinel errors shared by the services. Handlers map these onto
// response codes with errors.Is.
var (
	ErrNotFound               = errors.New("record not found")
	ErrActorNotFound          = errors.New("actor not found")
	ErrActorDisabled          = errors.New("actor disabled")
	ErrReferralCodeTaken      = errors.New("referral code already in use")
	ErrUnknownReferralCode    = errors.New("unknown referral code")
	ErrRateOutOfRange         = errors.New("commission rate out of range")
	ErrOrderAlreadyAttributed = errors.New("order already attributed")
	ErrNoCommissionPool       = errors.New("no commission pool configured")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrInsufficientBalance    = errors.New("insufficient available balance")
	ErrWithdrawalPendingOpen  = errors.New("a pending withdrawal already exists")
	ErrInvalidTransition      = errors.New("invalid withdrawal state transition")
	ErrInvalidCredentials     = errors.New("invalid credentials")
	ErrPermissionDenied       = errors.New("permission denied")
)
