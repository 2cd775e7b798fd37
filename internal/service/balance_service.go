package service

import (
	"context"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
	"github.com/shopspring/decimal"
)

// Balance is one actor's aggregated earnings view.
type Balance struct {
	ActorRole        string       `json:"actor_role"`
	ActorID          uint         `json:"actor_id"`
	LifetimeEarnings models.Money `json:"lifetime_earnings"`
	Pending          models.Money `json:"pending_amount"`
	Credited         models.Money `json:"credited_amount"`
	PaidOut          models.Money `json:"paid_out"`
	Available        models.Money `json:"available"`
}

// BalanceService derives actor balances from the ledger net of
// withdrawals. Direct earnings always use the stored amounts, keeping
// the rate in force at sale time. Override earnings follow the
// configured mode: "snapshot" reads stored amounts too, "live"
// recomputes pool * current rate so rate changes take effect
// retroactively.
type BalanceService struct {
	ledgerRepo     repository.LedgerRepository
	actorRepo      repository.ActorRepository
	withdrawalRepo repository.WithdrawalRepository
	rates          *RateService
	overrideMode   string
}

// NewBalanceService creates the balance aggregator.
func NewBalanceService(
	ledgerRepo repository.LedgerRepository,
	actorRepo repository.ActorRepository,
	withdrawalRepo repository.WithdrawalRepository,
	rates *RateService,
	overrideMode string,
) *BalanceService {
	mode := overrideMode
	if mode != constants.OverrideBalanceModeSnapshot {
		mode = constants.OverrideBalanceModeLive
	}
	return &BalanceService{
		ledgerRepo:     ledgerRepo,
		actorRepo:      actorRepo,
		withdrawalRepo: withdrawalRepo,
		rates:          rates,
		overrideMode:   mode,
	}
}

// Balance computes the full earnings view for one actor.
func (s *BalanceService) Balance(ctx context.Context, role string, actorID uint) (*Balance, error) {
	scope, err := s.earningScope(role, actorID)
	if err != nil {
		return nil, err
	}

	pending, err := s.earnings(ctx, scope, constants.LedgerStatusPending)
	if err != nil {
		return nil, err
	}
	credited, err := s.earnings(ctx, scope, constants.LedgerStatusCredited)
	if err != nil {
		return nil, err
	}

	reserved, err := s.withdrawalRepo.SumByActorAndStatuses(role, actorID, []string{
		constants.WithdrawalStatusApproved,
		constants.WithdrawalStatusPaid,
	})
	if err != nil {
		return nil, err
	}
	paidOut, err := s.withdrawalRepo.SumByActorAndStatuses(role, actorID, []string{
		constants.WithdrawalStatusPaid,
	})
	if err != nil {
		return nil, err
	}

	available := credited.Sub(reserved)
	if available.IsNegative() {
		available = decimal.Zero
	}
	return &Balance{
		ActorRole:        role,
		ActorID:          actorID,
		LifetimeEarnings: models.NewMoneyFromDecimal(pending.Add(credited)),
		Pending:          models.NewMoneyFromDecimal(pending),
		Credited:         models.NewMoneyFromDecimal(credited),
		PaidOut:          models.NewMoneyFromDecimal(paidOut),
		Available:        models.NewMoneyFromDecimal(available),
	}, nil
}

// earningScope collects where one actor's money comes from: its own
// code for direct sources, plus every subordinate code per override
// level above them in the ledger.
type earningScope struct {
	ownCodes      []string
	directSources []string
	// overrides maps an override source onto the subordinate codes
	// whose sales feed it, with the role type used for live recompute.
	overrides []overrideScope
}

type overrideScope struct {
	source   string
	roleType string
	codes    []string
}

func (s *BalanceService) earningScope(role string, actorID uint) (earningScope, error) {
	switch role {
	case constants.ActorRoleAgent:
		agent, err := s.actorRepo.GetAgentByID(actorID)
		if err != nil {
			return earningScope{}, err
		}
		if agent == nil {
			return earningScope{}, ErrActorNotFound
		}
		return earningScope{
			ownCodes:      []string{agent.ReferralCode},
			directSources: []string{constants.CommissionSourceAffiliate},
		}, nil

	case constants.ActorRoleBranchAdmin:
		admin, err := s.actorRepo.GetBranchAdminByID(actorID)
		if err != nil {
			return earningScope{}, err
		}
		if admin == nil {
			return earningScope{}, ErrActorNotFound
		}
		agentCodes, err := s.actorRepo.ListAgentCodesByBranchAdmin(admin.ID, admin.Branch)
		if err != nil {
			return earningScope{}, err
		}
		return earningScope{
			ownCodes:      []string{admin.ReferralCode},
			directSources: []string{constants.CommissionSourceBranchAdminDirect},
			overrides: []overrideScope{{
				source:   constants.CommissionSourceBranchAdmin,
				roleType: constants.RoleTypeBranch,
				codes:    agentCodes,
			}},
		}, nil

	case constants.ActorRoleAreaManager:
		manager, err := s.actorRepo.GetAreaManagerByID(actorID)
		if err != nil {
			return earningScope{}, err
		}
		if manager == nil {
			return earningScope{}, ErrActorNotFound
		}
		subordinateCodes, err := s.codesUnderAreaManager(manager)
		if err != nil {
			return earningScope{}, err
		}
		return earningScope{
			ownCodes:      []string{manager.ReferralCode},
			directSources: []string{constants.CommissionSourceASMDirect},
			overrides: []overrideScope{{
				source:   constants.CommissionSourceAreaManager,
				roleType: constants.RoleTypeArea,
				codes:    subordinateCodes,
			}},
		}, nil

	case constants.ActorRoleStateAdmin:
		admin, err := s.actorRepo.GetStateAdminByID(actorID)
		if err != nil {
			return earningScope{}, err
		}
		if admin == nil {
			return earningScope{}, ErrActorNotFound
		}
		subordinateCodes, err := s.codesUnderStateAdmin(admin)
		if err != nil {
			return earningScope{}, err
		}
		return earningScope{
			ownCodes:      []string{admin.ReferralCode},
			directSources: []string{constants.CommissionSourceStateAdminDirect},
			overrides: []overrideScope{{
				source:   constants.CommissionSourceStateAdmin,
				roleType: constants.RoleTypeState,
				codes:    subordinateCodes,
			}},
		}, nil
	}
	return earningScope{}, ErrActorNotFound
}

// codesUnderAreaManager returns the referral codes of every branch
// admin under the manager plus the agents under each of them.
func (s *BalanceService) codesUnderAreaManager(manager *models.AreaSalesManager) ([]string, error) {
	admins, err := s.actorRepo.ListBranchAdminsByAreaManager(manager.ID, manager.City)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(admins))
	for _, admin := range admins {
		codes = append(codes, admin.ReferralCode)
		agentCodes, err := s.actorRepo.ListAgentCodesByBranchAdmin(admin.ID, admin.Branch)
		if err != nil {
			return nil, err
		}
		codes = append(codes, agentCodes...)
	}
	return codes, nil
}

// codesUnderStateAdmin returns every subordinate referral code in the
// admin's state, three tiers deep.
func (s *BalanceService) codesUnderStateAdmin(admin *models.StateAdmin) ([]string, error) {
	managers, err := s.actorRepo.ListAreaManagersByStateAdmin(admin.ID, admin.State)
	if err != nil {
		return nil, err
	}
	codes := make([]string, 0, len(managers))
	for i := range managers {
		codes = append(codes, managers[i].ReferralCode)
		below, err := s.codesUnderAreaManager(&managers[i])
		if err != nil {
			return nil, err
		}
		codes = append(codes, below...)
	}
	return codes, nil
}

// earnings totals one status bucket across the direct and override
// portions of a scope.
func (s *BalanceService) earnings(ctx context.Context, scope earningScope, status string) (decimal.Decimal, error) {
	total, err := s.ledgerRepo.SumEarnings(scope.ownCodes, scope.directSources, status)
	if err != nil {
		return decimal.Zero, err
	}

	for _, override := range scope.overrides {
		if len(override.codes) == 0 {
			continue
		}
		if s.overrideMode == constants.OverrideBalanceModeSnapshot {
			sum, err := s.ledgerRepo.SumEarnings(override.codes, []string{override.source}, status)
			if err != nil {
				return decimal.Zero, err
			}
			total = total.Add(sum)
			continue
		}

		pool, err := s.ledgerRepo.SumPool(override.codes, []string{override.source}, status)
		if err != nil {
			return decimal.Zero, err
		}
		if pool.IsZero() {
			continue
		}
		rates, err := s.rates.GetRates(ctx)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(pool.Mul(rates.Rate(override.roleType)).Div(decimal.NewFromInt(100)))
	}
	return total.Round(2), nil
}
