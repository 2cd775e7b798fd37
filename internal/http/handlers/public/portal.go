package public

import (
	"strconv"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/http/response"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// GetBalance returns the full earnings view for one actor.
func (h *Handler) GetBalance(c *gin.Context) {
	role, ok := paramActorRole(c)
	if !ok {
		return
	}
	actorID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	balance, err := h.BalanceService.Balance(c.Request.Context(), role, actorID)
	if err != nil {
		respondWithMappedError(c, err, balanceErrorRules, response.CodeInternal, "balance fetch failed")
		return
	}
	response.Success(c, balance)
}

// ListCommissions lists an actor's own direct ledger entries.
func (h *Handler) ListCommissions(c *gin.Context) {
	role, ok := paramActorRole(c)
	if !ok {
		return
	}
	actorID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	info, err := h.ActorService.ActorSummary(role, actorID)
	if err != nil {
		respondWithMappedError(c, err, balanceErrorRules, response.CodeInternal, "actor fetch failed")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.LedgerService.ListEntries(repository.LedgerListFilter{
		AffiliateCode: info.ReferralCode,
		Status:        strings.TrimSpace(c.Query("status")),
		EntryKind:     strings.TrimSpace(c.Query("entry_kind")),
		Page:          page,
		PageSize:      pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "ledger fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// WithdrawalRequestPayload is the portal withdrawal request body.
type WithdrawalRequestPayload struct {
	Amount string `json:"amount" binding:"required"`
}

// RequestWithdrawal opens a withdrawal request for an actor.
func (h *Handler) RequestWithdrawal(c *gin.Context) {
	role, ok := paramActorRole(c)
	if !ok {
		return
	}
	actorID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req WithdrawalRequestPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(req.Amount))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid withdrawal amount", err)
		return
	}

	request, err := h.WithdrawalService.Request(c.Request.Context(), role, actorID, amount)
	if err != nil {
		respondWithMappedError(c, err, withdrawalRequestErrorRules, response.CodeInternal, "withdrawal request failed")
		return
	}
	response.Success(c, request)
}

// CancelWithdrawal lets the requester cancel their own pending request.
func (h *Handler) CancelWithdrawal(c *gin.Context) {
	role, ok := paramActorRole(c)
	if !ok {
		return
	}
	actorID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	requestID, ok := paramUint(c, "request_id")
	if !ok {
		return
	}

	request, err := h.WithdrawalService.Cancel(requestID, role, actorID)
	if err != nil {
		respondWithMappedError(c, err, withdrawalCancelErrorRules, response.CodeInternal, "cancel failed")
		return
	}
	response.Success(c, request)
}

// ListWithdrawals lists an actor's withdrawal requests.
func (h *Handler) ListWithdrawals(c *gin.Context) {
	role, ok := paramActorRole(c)
	if !ok {
		return
	}
	actorID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.WithdrawalService.List(repository.WithdrawalListFilter{
		ActorRole: role,
		ActorID:   actorID,
		Status:    strings.TrimSpace(c.Query("status")),
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "withdrawal fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// ListActivity returns the actor's notification feed, newest first.
func (h *Handler) ListActivity(c *gin.Context) {
	role, ok := paramActorRole(c)
	if !ok {
		return
	}
	actorID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	rows, total, err := h.ActivityService.List(repository.ActivityListFilter{
		ActorRole: role,
		ActorID:   actorID,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "activity fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}
