package service

import (
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/logger"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
)

// HierarchyService resolves referral codes to sellers and walks the
// management chain above them.
type HierarchyService struct {
	actorRepo repository.ActorRepository
}

// NewHierarchyService creates the hierarchy resolver.
func NewHierarchyService(actorRepo repository.ActorRepository) *HierarchyService {
	return &HierarchyService{actorRepo: actorRepo}
}

// Hierarchy is one resolved seller plus every ancestor above it. The
// seller tier is SellerRole; pointers below that tier are nil.
type Hierarchy struct {
	SellerRole  string
	Agent       *models.Agent
	BranchAdmin *models.BranchAdmin
	AreaManager *models.AreaSalesManager
	StateAdmin  *models.StateAdmin
}

// SellerCode returns the referral code of the selling actor.
func (h *Hierarchy) SellerCode() string {
	switch h.SellerRole {
	case constants.ActorRoleAgent:
		return h.Agent.ReferralCode
	case constants.ActorRoleBranchAdmin:
		return h.BranchAdmin.ReferralCode
	case constants.ActorRoleAreaManager:
		return h.AreaManager.ReferralCode
	case constants.ActorRoleStateAdmin:
		return h.StateAdmin.ReferralCode
	}
	return ""
}

// SellerName returns the display name of the selling actor.
func (h *Hierarchy) SellerName() string {
	switch h.SellerRole {
	case constants.ActorRoleAgent:
		return h.Agent.Name
	case constants.ActorRoleBranchAdmin:
		return h.BranchAdmin.Name
	case constants.ActorRoleAreaManager:
		return h.AreaManager.Name
	case constants.ActorRoleStateAdmin:
		return h.StateAdmin.Name
	}
	return ""
}

// sellerStatus returns the status of the selling actor.
func (h *Hierarchy) sellerStatus() string {
	switch h.SellerRole {
	case constants.ActorRoleAgent:
		return h.Agent.Status
	case constants.ActorRoleBranchAdmin:
		return h.BranchAdmin.Status
	case constants.ActorRoleAreaManager:
		return h.AreaManager.Status
	case constants.ActorRoleStateAdmin:
		return h.StateAdmin.Status
	}
	return ""
}

// Resolve maps a referral code onto a seller and its ancestors. The
// four tiers are checked highest first, so a code reused across tiers
// always resolves to the most senior holder. Ancestors are linked by
// parent ID where present, falling back to a case-insensitive name
// match for rows migrated from the legacy schema.
func (s *HierarchyService) Resolve(code string) (*Hierarchy, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, ErrUnknownReferralCode
	}

	if stateAdmin, err := s.actorRepo.GetStateAdminByCode(normalized); err != nil {
		return nil, err
	} else if stateAdmin != nil {
		h := &Hierarchy{SellerRole: constants.ActorRoleStateAdmin, StateAdmin: stateAdmin}
		return s.checkSeller(h)
	}

	if manager, err := s.actorRepo.GetAreaManagerByCode(normalized); err != nil {
		return nil, err
	} else if manager != nil {
		h := &Hierarchy{SellerRole: constants.ActorRoleAreaManager, AreaManager: manager}
		if err := s.fillStateAdmin(h, manager.StateAdminID, manager.State); err != nil {
			return nil, err
		}
		return s.checkSeller(h)
	}

	if admin, err := s.actorRepo.GetBranchAdminByCode(normalized); err != nil {
		return nil, err
	} else if admin != nil {
		h := &Hierarchy{SellerRole: constants.ActorRoleBranchAdmin, BranchAdmin: admin}
		if err := s.fillAboveBranchAdmin(h, admin); err != nil {
			return nil, err
		}
		return s.checkSeller(h)
	}

	agent, err := s.actorRepo.GetAgentByCode(normalized)
	if err != nil {
		return nil, err
	}
	if agent == nil {
		return nil, ErrUnknownReferralCode
	}
	h := &Hierarchy{SellerRole: constants.ActorRoleAgent, Agent: agent}
	if err := s.fillAboveAgent(h, agent); err != nil {
		return nil, err
	}
	return s.checkSeller(h)
}

func (s *HierarchyService) checkSeller(h *Hierarchy) (*Hierarchy, error) {
	if h.sellerStatus() == constants.ActorStatusDisabled {
		return nil, ErrActorDisabled
	}
	return h, nil
}

func (s *HierarchyService) fillAboveAgent(h *Hierarchy, agent *models.Agent) error {
	var admin *models.BranchAdmin
	var err error
	if agent.BranchAdminID != nil && *agent.BranchAdminID != 0 {
		admin, err = s.actorRepo.GetBranchAdminByID(*agent.BranchAdminID)
	} else {
		admin, err = s.actorRepo.FindBranchAdminByBranch(agent.Branch)
	}
	if err != nil {
		return err
	}
	if admin == nil {
		logger.Warnw("hierarchy_branch_admin_unresolved",
			"agent_code", agent.ReferralCode,
			"branch", agent.Branch,
		)
		// Still try the state tier by the agent's own state name.
		return s.fillStateAdmin(h, nil, agent.State)
	}
	h.BranchAdmin = admin
	return s.fillAboveBranchAdmin(h, admin)
}

func (s *HierarchyService) fillAboveBranchAdmin(h *Hierarchy, admin *models.BranchAdmin) error {
	var manager *models.AreaSalesManager
	var err error
	if admin.AreaManagerID != nil && *admin.AreaManagerID != 0 {
		manager, err = s.actorRepo.GetAreaManagerByID(*admin.AreaManagerID)
	} else {
		manager, err = s.actorRepo.FindAreaManagerByCity(admin.City)
	}
	if err != nil {
		return err
	}
	if manager == nil {
		return s.fillStateAdmin(h, nil, admin.State)
	}
	h.AreaManager = manager
	return s.fillStateAdmin(h, manager.StateAdminID, manager.State)
}

func (s *HierarchyService) fillStateAdmin(h *Hierarchy, stateAdminID *uint, state string) error {
	var admin *models.StateAdmin
	var err error
	if stateAdminID != nil && *stateAdminID != 0 {
		admin, err = s.actorRepo.GetStateAdminByID(*stateAdminID)
	} else {
		admin, err = s.actorRepo.FindStateAdminByState(state)
	}
	if err != nil {
		return err
	}
	h.StateAdmin = admin
	return nil
}
