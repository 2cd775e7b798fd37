package service

import (
	"context"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/logger"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
	"gorm.io/gorm"
)

// LedgerService persists attribution drafts and drives the
// PENDING -> CREDITED status flip.
type LedgerService struct {
	repo        repository.LedgerRepository
	actorRepo   repository.ActorRepository
	attribution *AttributionService
	activity    *ActivityService
}

// NewLedgerService creates the ledger writer.
func NewLedgerService(
	repo repository.LedgerRepository,
	actorRepo repository.ActorRepository,
	attribution *AttributionService,
	activity *ActivityService,
) *LedgerService {
	return &LedgerService{
		repo:        repo,
		actorRepo:   actorRepo,
		attribution: attribution,
		activity:    activity,
	}
}

// Write persists every draft of one order in a single transaction. A
// draft colliding on (order_id, commission_source) is skipped, so a
// redelivered webhook re-running the whole order is safe. Returns the
// number of rows actually inserted.
func (s *LedgerService) Write(drafts []LedgerEntryDraft) (int, error) {
	if len(drafts) == 0 {
		return 0, nil
	}
	inserted := 0
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for _, draft := range drafts {
			entry := &models.CommissionLedgerEntry{
				OrderID:             draft.OrderID,
				AffiliateCode:       draft.AffiliateCode,
				CommissionSource:    draft.CommissionSource,
				EntryKind:           draft.EntryKind,
				OrderAmount:         draft.OrderAmount,
				CommissionAmount:    draft.CommissionAmount,
				AffiliateRate:       draft.AffiliateRate,
				AffiliateCommission: draft.AffiliateCommission,
				Status:              constants.LedgerStatusPending,
			}
			ok, err := repo.CreateIgnoreDuplicate(entry)
			if err != nil {
				return err
			}
			if ok {
				inserted++
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if inserted < len(drafts) {
		logger.Infow("ledger_write_replayed",
			"order_id", drafts[0].OrderID,
			"drafts", len(drafts),
			"inserted", inserted,
		)
	}
	return inserted, nil
}

// ProcessOrder attributes one order event and writes the resulting
// drafts. An unresolvable referral code is logged and skipped; the
// order itself is never blocked by commission bookkeeping.
func (s *LedgerService) ProcessOrder(ctx context.Context, event OrderEvent) (int, error) {
	drafts, err := s.attribution.Attribute(ctx, event)
	if err != nil {
		switch {
		case err == ErrUnknownReferralCode || err == ErrActorDisabled || err == ErrNotFound:
			logger.Warnw("attribution_skipped",
				"order_id", event.OrderID,
				"affiliate_code", event.AffiliateCode,
				"reason", err.Error(),
			)
			return 0, nil
		default:
			return 0, err
		}
	}
	return s.Write(drafts)
}

// Credit flips every pending entry of one order to CREDITED, adds the
// direct share to the seller's wallet counter, and feeds the activity
// log. Re-crediting an already credited order is a no-op.
func (s *LedgerService) Credit(orderID string) (int64, error) {
	order := strings.TrimSpace(orderID)
	if order == "" {
		return 0, ErrNotFound
	}

	var credited int64
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entries, err := repo.ListPendingByOrderForUpdate(order)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		credited, err = repo.MarkCreditedByOrder(order)
		if err != nil {
			return err
		}

		for _, entry := range entries {
			if entry.EntryKind != constants.EntryKindDirect {
				continue
			}
			role, actorID, name, lookupErr := s.sellerForEntry(tx, entry)
			if lookupErr != nil {
				return lookupErr
			}
			if actorID == 0 {
				logger.Warnw("ledger_credit_seller_unresolved",
					"order_id", order,
					"affiliate_code", entry.AffiliateCode,
				)
				continue
			}
			if err := s.actorRepo.WithTx(tx).AddWalletBalance(role, actorID, entry.AffiliateCommission); err != nil {
				return err
			}
			s.activity.Record(tx, ActivityEvent{
				Verb:      constants.ActivityVerbCredited,
				ActorRole: role,
				ActorID:   actorID,
				ActorName: name,
				Amount:    entry.AffiliateCommission,
			})
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return credited, nil
}

// sellerForEntry maps a direct entry's commission source and code back
// onto the owning actor row.
func (s *LedgerService) sellerForEntry(tx *gorm.DB, entry models.CommissionLedgerEntry) (string, uint, string, error) {
	repo := s.actorRepo.WithTx(tx)
	switch entry.CommissionSource {
	case constants.CommissionSourceBranchAdminDirect:
		admin, err := repo.GetBranchAdminByCode(entry.AffiliateCode)
		if err != nil || admin == nil {
			return constants.ActorRoleBranchAdmin, 0, "", err
		}
		return constants.ActorRoleBranchAdmin, admin.ID, admin.Name, nil
	case constants.CommissionSourceASMDirect:
		manager, err := repo.GetAreaManagerByCode(entry.AffiliateCode)
		if err != nil || manager == nil {
			return constants.ActorRoleAreaManager, 0, "", err
		}
		return constants.ActorRoleAreaManager, manager.ID, manager.Name, nil
	case constants.CommissionSourceStateAdminDirect:
		admin, err := repo.GetStateAdminByCode(entry.AffiliateCode)
		if err != nil || admin == nil {
			return constants.ActorRoleStateAdmin, 0, "", err
		}
		return constants.ActorRoleStateAdmin, admin.ID, admin.Name, nil
	default:
		agent, err := repo.GetAgentByCode(entry.AffiliateCode)
		if err != nil || agent == nil {
			return constants.ActorRoleAgent, 0, "", err
		}
		return constants.ActorRoleAgent, agent.ID, agent.Name, nil
	}
}

// ListEntries queries ledger entries by filter.
func (s *LedgerService) ListEntries(filter repository.LedgerListFilter) ([]models.CommissionLedgerEntry, int64, error) {
	return s.repo.List(filter)
}

// EntriesByOrder returns every entry of one order.
func (s *LedgerService) EntriesByOrder(orderID string) ([]models.CommissionLedgerEntry, error) {
	return s.repo.ListByOrder(orderID)
}
