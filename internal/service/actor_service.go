package service

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/logger"
	"github.com/3syncai/affiliate-portal-sub001/internal/models"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
)

const referralCodeLength = 8

// ActorService manages the four actor tiers for the admin surface.
type ActorService struct {
	repo repository.ActorRepository
}

// NewActorService creates the actor management service.
func NewActorService(repo repository.ActorRepository) *ActorService {
	return &ActorService{repo: repo}
}

// CreateActorInput is the shared creation payload. ParentID carries the
// next tier up: branch admin for agents, area manager for branch
// admins, state admin for area managers.
type CreateActorInput struct {
	Name         string
	ReferralCode string
	Branch       string
	City         string
	State        string
	ParentID     *uint
}

// CreateAgent creates an active agent, generating a referral code when
// none is supplied.
func (s *ActorService) CreateAgent(input CreateActorInput) (*models.Agent, error) {
	code, err := s.resolveCode(input.ReferralCode)
	if err != nil {
		return nil, err
	}
	agent := &models.Agent{
		Name:          strings.TrimSpace(input.Name),
		ReferralCode:  code,
		Branch:        strings.TrimSpace(input.Branch),
		State:         strings.TrimSpace(input.State),
		BranchAdminID: input.ParentID,
		Status:        constants.ActorStatusActive,
	}
	if err := s.repo.CreateAgent(agent); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrReferralCodeTaken
		}
		return nil, err
	}
	logger.Infow("agent_created", "id", agent.ID, "referral_code", agent.ReferralCode)
	return agent, nil
}

// CreateBranchAdmin creates an active branch admin.
func (s *ActorService) CreateBranchAdmin(input CreateActorInput) (*models.BranchAdmin, error) {
	code, err := s.resolveCode(input.ReferralCode)
	if err != nil {
		return nil, err
	}
	admin := &models.BranchAdmin{
		Name:          strings.TrimSpace(input.Name),
		ReferralCode:  code,
		Branch:        strings.TrimSpace(input.Branch),
		City:          strings.TrimSpace(input.City),
		State:         strings.TrimSpace(input.State),
		AreaManagerID: input.ParentID,
		Status:        constants.ActorStatusActive,
	}
	if err := s.repo.CreateBranchAdmin(admin); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrReferralCodeTaken
		}
		return nil, err
	}
	logger.Infow("branch_admin_created", "id", admin.ID, "referral_code", admin.ReferralCode)
	return admin, nil
}

// CreateAreaManager creates an active area sales manager.
func (s *ActorService) CreateAreaManager(input CreateActorInput) (*models.AreaSalesManager, error) {
	code, err := s.resolveCode(input.ReferralCode)
	if err != nil {
		return nil, err
	}
	manager := &models.AreaSalesManager{
		Name:         strings.TrimSpace(input.Name),
		ReferralCode: code,
		City:         strings.TrimSpace(input.City),
		State:        strings.TrimSpace(input.State),
		StateAdminID: input.ParentID,
		Status:       constants.ActorStatusActive,
	}
	if err := s.repo.CreateAreaManager(manager); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrReferralCodeTaken
		}
		return nil, err
	}
	logger.Infow("area_manager_created", "id", manager.ID, "referral_code", manager.ReferralCode)
	return manager, nil
}

// CreateStateAdmin creates an active state admin.
func (s *ActorService) CreateStateAdmin(input CreateActorInput) (*models.StateAdmin, error) {
	code, err := s.resolveCode(input.ReferralCode)
	if err != nil {
		return nil, err
	}
	admin := &models.StateAdmin{
		Name:         strings.TrimSpace(input.Name),
		ReferralCode: code,
		State:        strings.TrimSpace(input.State),
		Status:       constants.ActorStatusActive,
	}
	if err := s.repo.CreateStateAdmin(admin); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrReferralCodeTaken
		}
		return nil, err
	}
	logger.Infow("state_admin_created", "id", admin.ID, "referral_code", admin.ReferralCode)
	return admin, nil
}

// SetActorStatus flips one actor between active and disabled.
func (s *ActorService) SetActorStatus(role string, actorID uint, status string) error {
	normalized := strings.TrimSpace(status)
	if normalized != constants.ActorStatusActive && normalized != constants.ActorStatusDisabled {
		return ErrNotFound
	}
	switch role {
	case constants.ActorRoleAgent:
		actor, err := s.repo.GetAgentByID(actorID)
		if err != nil {
			return err
		}
		if actor == nil {
			return ErrActorNotFound
		}
		actor.Status = normalized
		return s.repo.UpdateAgent(actor)
	case constants.ActorRoleBranchAdmin:
		actor, err := s.repo.GetBranchAdminByID(actorID)
		if err != nil {
			return err
		}
		if actor == nil {
			return ErrActorNotFound
		}
		actor.Status = normalized
		return s.repo.UpdateBranchAdmin(actor)
	case constants.ActorRoleAreaManager:
		actor, err := s.repo.GetAreaManagerByID(actorID)
		if err != nil {
			return err
		}
		if actor == nil {
			return ErrActorNotFound
		}
		actor.Status = normalized
		return s.repo.UpdateAreaManager(actor)
	case constants.ActorRoleStateAdmin:
		actor, err := s.repo.GetStateAdminByID(actorID)
		if err != nil {
			return err
		}
		if actor == nil {
			return ErrActorNotFound
		}
		actor.Status = normalized
		return s.repo.UpdateStateAdmin(actor)
	}
	return ErrActorNotFound
}

// ActorSummary is a role-agnostic view of one actor.
type ActorSummary struct {
	Role         string `json:"role"`
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ReferralCode string `json:"referral_code"`
	Status       string `json:"status"`
}

// ActorSummary looks up one actor regardless of tier.
func (s *ActorService) ActorSummary(role string, actorID uint) (*ActorSummary, error) {
	switch role {
	case constants.ActorRoleAgent:
		actor, err := s.repo.GetAgentByID(actorID)
		if err != nil {
			return nil, err
		}
		if actor == nil {
			return nil, ErrActorNotFound
		}
		return &ActorSummary{Role: role, ID: actor.ID, Name: actor.Name, ReferralCode: actor.ReferralCode, Status: actor.Status}, nil
	case constants.ActorRoleBranchAdmin:
		actor, err := s.repo.GetBranchAdminByID(actorID)
		if err != nil {
			return nil, err
		}
		if actor == nil {
			return nil, ErrActorNotFound
		}
		return &ActorSummary{Role: role, ID: actor.ID, Name: actor.Name, ReferralCode: actor.ReferralCode, Status: actor.Status}, nil
	case constants.ActorRoleAreaManager:
		actor, err := s.repo.GetAreaManagerByID(actorID)
		if err != nil {
			return nil, err
		}
		if actor == nil {
			return nil, ErrActorNotFound
		}
		return &ActorSummary{Role: role, ID: actor.ID, Name: actor.Name, ReferralCode: actor.ReferralCode, Status: actor.Status}, nil
	case constants.ActorRoleStateAdmin:
		actor, err := s.repo.GetStateAdminByID(actorID)
		if err != nil {
			return nil, err
		}
		if actor == nil {
			return nil, ErrActorNotFound
		}
		return &ActorSummary{Role: role, ID: actor.ID, Name: actor.Name, ReferralCode: actor.ReferralCode, Status: actor.Status}, nil
	}
	return nil, ErrActorNotFound
}

// ListAgents lists agents.
func (s *ActorService) ListAgents(filter repository.ActorListFilter) ([]models.Agent, int64, error) {
	return s.repo.ListAgents(filter)
}

// ListBranchAdmins lists branch admins.
func (s *ActorService) ListBranchAdmins(filter repository.ActorListFilter) ([]models.BranchAdmin, int64, error) {
	return s.repo.ListBranchAdmins(filter)
}

// ListAreaManagers lists area sales managers.
func (s *ActorService) ListAreaManagers(filter repository.ActorListFilter) ([]models.AreaSalesManager, int64, error) {
	return s.repo.ListAreaManagers(filter)
}

// ListStateAdmins lists state admins.
func (s *ActorService) ListStateAdmins(filter repository.ActorListFilter) ([]models.StateAdmin, int64, error) {
	return s.repo.ListStateAdmins(filter)
}

func (s *ActorService) resolveCode(requested string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(requested))
	if normalized != "" {
		return normalized, nil
	}
	return generateReferralCode()
}

func generateReferralCode() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	var builder strings.Builder
	builder.Grow(referralCodeLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < referralCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}
	return builder.String(), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
