package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/logger"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WithdrawalService drives payout requests through
// PENDING -> APPROVED|REJECTED -> PAID.
type WithdrawalService struct {
	repo       repository.WithdrawalRepository
	actorRepo  repository.ActorRepository
	balance    *BalanceService
	activity   *ActivityService
	gstPercent decimal.Decimal
	minAmount  decimal.Decimal
}

// NewWithdrawalService creates the withdrawal state machine. gstPercent
// and minAmount are decimal strings from configuration; bad values fall
// back to zero.
func NewWithdrawalService(
	repo repository.WithdrawalRepository,
	actorRepo repository.ActorRepository,
	balance *BalanceService,
	activity *ActivityService,
	gstPercent string,
	minAmount string,
) *WithdrawalService {
	return &WithdrawalService{
		repo:       repo,
		actorRepo:  actorRepo,
		balance:    balance,
		activity:   activity,
		gstPercent: parseConfigDecimal(gstPercent, "withdrawal.gst_percent"),
		minAmount:  parseConfigDecimal(minAmount, "withdrawal.min_amount"),
	}
}

func parseConfigDecimal(raw, key string) decimal.Decimal {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return decimal.Zero
	}
	value, err := decimal.NewFromString(trimmed)
	if err != nil {
		logger.Warnw("config_decimal_invalid", "key", key, "value", raw)
		return decimal.Zero
	}
	return value
}

// Request opens a PENDING withdrawal for one actor. The amount is
// checked against the available balance at request time; the binding
// check happens again at approval.
func (s *WithdrawalService) Request(ctx context.Context, role string, actorID uint, amount decimal.Decimal) (*models.WithdrawalRequest, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, ErrInvalidAmount
	}
	if s.minAmount.IsPositive() && amount.LessThan(s.minAmount) {
		return nil, ErrInvalidAmount
	}

	wallet, err := s.lookupActor(role, actorID)
	if err != nil {
		return nil, err
	}
	if wallet.Status == constants.ActorStatusDisabled {
		return nil, ErrActorDisabled
	}

	open, err := s.repo.HasPendingForActor(role, actorID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrWithdrawalPendingOpen
	}

	balance, err := s.balance.Balance(ctx, role, actorID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(balance.Available.Decimal) {
		return nil, ErrInsufficientBalance
	}

	gstAmount := amount.Mul(s.gstPercent).Div(decimal.NewFromInt(100)).Round(2)
	req := &models.WithdrawalRequest{
		ReferenceNo:      newReferenceNo(),
		ActorRole:        role,
		ActorID:          actorID,
		WithdrawalAmount: models.NewMoneyFromDecimal(amount),
		GSTPercentage:    models.NewMoneyFromDecimal(s.gstPercent),
		GSTAmount:        models.NewMoneyFromDecimal(gstAmount),
		NetPayable:       models.NewMoneyFromDecimal(amount.Sub(gstAmount)),
		Status:           constants.WithdrawalStatusPending,
		RequestedAt:      time.Now(),
	}
	if err := s.repo.Create(req); err != nil {
		return nil, err
	}
	logger.Infow("withdrawal_requested",
		"reference_no", req.ReferenceNo,
		"actor_role", role,
		"actor_id", actorID,
		"amount", amount.String(),
	)
	return req, nil
}

// Approve moves a PENDING request to APPROVED. The available balance is
// recomputed under a per-actor row lock so concurrent approvals cannot
// overdraw, and the wallet counter is deducted in the same transaction.
func (s *WithdrawalService) Approve(ctx context.Context, requestID uint, reviewerID uint) (*models.WithdrawalRequest, error) {
	var approved *models.WithdrawalRequest
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		req, err := repo.GetByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrNotFound
		}
		if req.Status != constants.WithdrawalStatusPending {
			return ErrInvalidTransition
		}

		// Serializes all balance mutation for this actor.
		wallet, err := s.actorRepo.WithTx(tx).GetActorForUpdate(req.ActorRole, req.ActorID)
		if err != nil {
			return err
		}

		balance, err := s.balance.Balance(ctx, req.ActorRole, req.ActorID)
		if err != nil {
			return err
		}
		if req.WithdrawalAmount.Decimal.GreaterThan(balance.Available.Decimal) {
			return ErrInsufficientBalance
		}

		now := time.Now()
		req.Status = constants.WithdrawalStatusApproved
		req.ReviewedAt = &now
		req.ReviewedBy = &reviewerID
		if err := repo.Update(req); err != nil {
			return err
		}

		deduction := models.NewMoneyFromDecimal(req.WithdrawalAmount.Decimal.Neg())
		if err := s.actorRepo.WithTx(tx).AddWalletBalance(req.ActorRole, req.ActorID, deduction); err != nil {
			return err
		}

		s.activity.Record(tx, ActivityEvent{
			Verb:      constants.ActivityVerbApproved,
			ActorRole: req.ActorRole,
			ActorID:   req.ActorID,
			ActorName: wallet.Name,
			Amount:    req.WithdrawalAmount,
		})
		approved = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("withdrawal_approved",
		"reference_no", approved.ReferenceNo,
		"actor_role", approved.ActorRole,
		"actor_id", approved.ActorID,
		"amount", approved.WithdrawalAmount.String(),
	)
	return approved, nil
}

// Reject moves a PENDING request to REJECTED. No balance mutation.
func (s *WithdrawalService) Reject(requestID uint, reviewerID uint, reason string) (*models.WithdrawalRequest, error) {
	return s.reject(requestID, &reviewerID, reason)
}

// Cancel is the requester's own PENDING abort, recorded as a rejection.
func (s *WithdrawalService) Cancel(requestID uint, role string, actorID uint) (*models.WithdrawalRequest, error) {
	req, err := s.repo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil || req.ActorRole != role || req.ActorID != actorID {
		return nil, ErrNotFound
	}
	return s.reject(requestID, nil, "cancelled by requester")
}

func (s *WithdrawalService) reject(requestID uint, reviewerID *uint, reason string) (*models.WithdrawalRequest, error) {
	var rejected *models.WithdrawalRequest
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		req, err := repo.GetByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrNotFound
		}
		if req.Status != constants.WithdrawalStatusPending {
			return ErrInvalidTransition
		}

		now := time.Now()
		req.Status = constants.WithdrawalStatusRejected
		req.RejectReason = strings.TrimSpace(reason)
		req.ReviewedAt = &now
		req.ReviewedBy = reviewerID
		if err := repo.Update(req); err != nil {
			return err
		}

		wallet, err := s.lookupActorTx(tx, req.ActorRole, req.ActorID)
		if err != nil {
			return err
		}
		s.activity.Record(tx, ActivityEvent{
			Verb:      constants.ActivityVerbRejected,
			ActorRole: req.ActorRole,
			ActorID:   req.ActorID,
			ActorName: wallet.Name,
			Amount:    req.WithdrawalAmount,
		})
		rejected = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rejected, nil
}

// Pay moves an APPROVED request to PAID. The balance was already
// deducted at approval; only the payout reference is recorded.
func (s *WithdrawalService) Pay(requestID uint, reviewerID uint, transactionID string) (*models.WithdrawalRequest, error) {
	txnID := strings.TrimSpace(transactionID)
	if txnID == "" {
		return nil, ErrInvalidTransition
	}

	var paid *models.WithdrawalRequest
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		req, err := repo.GetByIDForUpdate(requestID)
		if err != nil {
			return err
		}
		if req == nil {
			return ErrNotFound
		}
		if req.Status != constants.WithdrawalStatusApproved {
			return ErrInvalidTransition
		}

		now := time.Now()
		req.Status = constants.WithdrawalStatusPaid
		req.TransactionID = txnID
		req.PaymentDate = &now
		req.ReviewedBy = &reviewerID
		if err := repo.Update(req); err != nil {
			return err
		}

		wallet, err := s.lookupActorTx(tx, req.ActorRole, req.ActorID)
		if err != nil {
			return err
		}
		s.activity.Record(tx, ActivityEvent{
			Verb:      constants.ActivityVerbPaid,
			ActorRole: req.ActorRole,
			ActorID:   req.ActorID,
			ActorName: wallet.Name,
			Amount:    req.NetPayable,
		})
		paid = req
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("withdrawal_paid",
		"reference_no", paid.ReferenceNo,
		"transaction_id", txnID,
	)
	return paid, nil
}

// GetByID returns one request.
func (s *WithdrawalService) GetByID(requestID uint) (*models.WithdrawalRequest, error) {
	req, err := s.repo.GetByID(requestID)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, ErrNotFound
	}
	return req, nil
}

// List queries withdrawal requests.
func (s *WithdrawalService) List(filter repository.WithdrawalListFilter) ([]models.WithdrawalRequest, int64, error) {
	return s.repo.List(filter)
}

type actorInfo struct {
	Name   string
	Status string
}

func (s *WithdrawalService) lookupActor(role string, actorID uint) (actorInfo, error) {
	return s.lookupActorTx(nil, role, actorID)
}

func (s *WithdrawalService) lookupActorTx(tx *gorm.DB, role string, actorID uint) (actorInfo, error) {
	repo := s.actorRepo
	if tx != nil {
		repo = s.actorRepo.WithTx(tx)
	}
	switch role {
	case constants.ActorRoleAgent:
		actor, err := repo.GetAgentByID(actorID)
		if err != nil {
			return actorInfo{}, err
		}
		if actor == nil {
			return actorInfo{}, ErrActorNotFound
		}
		return actorInfo{Name: actor.Name, Status: actor.Status}, nil
	case constants.ActorRoleBranchAdmin:
		actor, err := repo.GetBranchAdminByID(actorID)
		if err != nil {
			return actorInfo{}, err
		}
		if actor == nil {
			return actorInfo{}, ErrActorNotFound
		}
		return actorInfo{Name: actor.Name, Status: actor.Status}, nil
	case constants.ActorRoleAreaManager:
		actor, err := repo.GetAreaManagerByID(actorID)
		if err != nil {
			return actorInfo{}, err
		}
		if actor == nil {
			return actorInfo{}, ErrActorNotFound
		}
		return actorInfo{Name: actor.Name, Status: actor.Status}, nil
	case constants.ActorRoleStateAdmin:
		actor, err := repo.GetStateAdminByID(actorID)
		if err != nil {
			return actorInfo{}, err
		}
		if actor == nil {
			return actorInfo{}, ErrActorNotFound
		}
		return actorInfo{Name: actor.Name, Status: actor.Status}, nil
	}
	return actorInfo{}, ErrActorNotFound
}

func newReferenceNo() string {
	return fmt.Sprintf("WD-%s", strings.ToUpper(uuid.NewString()[:8]))
}
