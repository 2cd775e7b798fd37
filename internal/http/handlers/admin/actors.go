package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/3syncai/affiliate-portal-sub001/internal/http/response"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
	"github.com/3syncai/affiliate-portal-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateActorRequest is the actor creation payload. ParentID refers to
// the next tier up and is optional everywhere.
type CreateActorRequest struct {
	Name         string `json:"name" binding:"required"`
	ReferralCode string `json:"referral_code"`
	Branch       string `json:"branch"`
	City         string `json:"city"`
	State        string `json:"state"`
	ParentID     *uint  `json:"parent_id"`
}

func (r CreateActorRequest) toInput() service.CreateActorInput {
	return service.CreateActorInput{
		Name:         strings.TrimSpace(r.Name),
		ReferralCode: strings.TrimSpace(r.ReferralCode),
		Branch:       strings.TrimSpace(r.Branch),
		City:         strings.TrimSpace(r.City),
		State:        strings.TrimSpace(r.State),
		ParentID:     r.ParentID,
	}
}

// CreateActor creates one actor in the tier named by the :role segment.
func (h *Handler) CreateActor(c *gin.Context) {
	role := strings.TrimSpace(c.Param("role"))

	var req CreateActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}

	var (
		created interface{}
		err     error
	)
	switch role {
	case constants.ActorRoleAgent:
		created, err = h.ActorService.CreateAgent(req.toInput())
	case constants.ActorRoleBranchAdmin:
		created, err = h.ActorService.CreateBranchAdmin(req.toInput())
	case constants.ActorRoleAreaManager:
		created, err = h.ActorService.CreateAreaManager(req.toInput())
	case constants.ActorRoleStateAdmin:
		created, err = h.ActorService.CreateStateAdmin(req.toInput())
	default:
		respondError(c, response.CodeBadRequest, "unknown actor role", nil)
		return
	}
	if err != nil {
		if errors.Is(err, service.ErrReferralCodeTaken) {
			respondError(c, response.CodeConflict, "referral code already in use", nil)
			return
		}
		respondError(c, response.CodeInternal, "actor create failed", err)
		return
	}
	response.Success(c, created)
}

// ListActors lists actors in one tier.
func (h *Handler) ListActors(c *gin.Context) {
	role := strings.TrimSpace(c.Param("role"))

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.ActorListFilter{
		Branch:   strings.TrimSpace(c.Query("branch")),
		City:     strings.TrimSpace(c.Query("city")),
		State:    strings.TrimSpace(c.Query("state")),
		Status:   strings.TrimSpace(c.Query("status")),
		Keyword:  strings.TrimSpace(c.Query("search")),
		Page:     page,
		PageSize: pageSize,
	}

	var (
		rows  interface{}
		total int64
		err   error
	)
	switch role {
	case constants.ActorRoleAgent:
		rows, total, err = h.ActorService.ListAgents(filter)
	case constants.ActorRoleBranchAdmin:
		rows, total, err = h.ActorService.ListBranchAdmins(filter)
	case constants.ActorRoleAreaManager:
		rows, total, err = h.ActorService.ListAreaManagers(filter)
	case constants.ActorRoleStateAdmin:
		rows, total, err = h.ActorService.ListStateAdmins(filter)
	default:
		respondError(c, response.CodeBadRequest, "unknown actor role", nil)
		return
	}
	if err != nil {
		respondError(c, response.CodeInternal, "actor fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// SetActorStatusRequest is the status update payload.
type SetActorStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetActorStatus flips one actor between active and disabled.
func (h *Handler) SetActorStatus(c *gin.Context) {
	role := strings.TrimSpace(c.Param("role"))
	actorID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req SetActorStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}

	if err := h.ActorService.SetActorStatus(role, actorID, req.Status); err != nil {
		switch {
		case errors.Is(err, service.ErrActorNotFound):
			respondError(c, response.CodeNotFound, "actor not found", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeBadRequest, "unknown status", nil)
		default:
			respondError(c, response.CodeInternal, "status update failed", err)
		}
		return
	}
	response.Success(c, nil)
}
