package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/http/response"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"
	"github.com/3syncai/affiliate-portal-sub001/internal/service"

	"github.com/gin-gonic/gin"
)

var withdrawalReviewErrorRules = []struct {
	target error
	code   int
	msg    string
}{
	{target: service.ErrNotFound, code: response.CodeNotFound, msg: "withdrawal request not found"},
	{target: service.ErrInvalidTransition, code: response.CodeBadRequest, msg: "invalid status transition"},
	{target: service.ErrInsufficientBalance, code: response.CodeBadRequest, msg: "requester balance is insufficient"},
	{target: service.ErrActorNotFound, code: response.CodeNotFound, msg: "requester not found"},
}

func respondWithdrawalReviewError(c *gin.Context, err error) {
	for _, rule := range withdrawalReviewErrorRules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.msg, nil)
			return
		}
	}
	respondError(c, response.CodeInternal, "withdrawal review failed", err)
}

// ListWithdrawals lists withdrawal requests with filters.
func (h *Handler) ListWithdrawals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.WithdrawalListFilter{
		ActorRole:   strings.TrimSpace(c.Query("actor_role")),
		Status:      strings.TrimSpace(c.Query("status")),
		ReferenceNo: strings.TrimSpace(c.Query("reference_no")),
		Page:        page,
		PageSize:    pageSize,
	}
	if raw := strings.TrimSpace(c.Query("actor_id")); raw != "" {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			filter.ActorID = uint(id)
		}
	}

	rows, total, err := h.WithdrawalService.List(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "withdrawal fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetWithdrawal returns one withdrawal request.
func (h *Handler) GetWithdrawal(c *gin.Context) {
	requestID, ok := paramUint(c, "id")
	if !ok {
		return
	}
	request, err := h.WithdrawalService.GetByID(requestID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "withdrawal request not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "withdrawal fetch failed", err)
		return
	}
	response.Success(c, request)
}

// ApproveWithdrawal moves a pending request to APPROVED, re-checking
// the requester's live balance under lock.
func (h *Handler) ApproveWithdrawal(c *gin.Context) {
	reviewerID, ok := getAdminID(c)
	if !ok {
		return
	}
	requestID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	request, err := h.WithdrawalService.Approve(c.Request.Context(), requestID, reviewerID)
	if err != nil {
		respondWithdrawalReviewError(c, err)
		return
	}
	response.Success(c, request)
}

// RejectWithdrawalRequest is the rejection payload.
type RejectWithdrawalRequest struct {
	Reason string `json:"reason"`
}

// RejectWithdrawal moves a pending request to REJECTED.
func (h *Handler) RejectWithdrawal(c *gin.Context) {
	reviewerID, ok := getAdminID(c)
	if !ok {
		return
	}
	requestID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req RejectWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}

	request, err := h.WithdrawalService.Reject(requestID, reviewerID, strings.TrimSpace(req.Reason))
	if err != nil {
		respondWithdrawalReviewError(c, err)
		return
	}
	response.Success(c, request)
}

// PayWithdrawalRequest carries the external payment reference.
type PayWithdrawalRequest struct {
	TransactionID string `json:"transaction_id" binding:"required"`
}

// PayWithdrawal moves an approved request to PAID.
func (h *Handler) PayWithdrawal(c *gin.Context) {
	reviewerID, ok := getAdminID(c)
	if !ok {
		return
	}
	requestID, ok := paramUint(c, "id")
	if !ok {
		return
	}

	var req PayWithdrawalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "transaction_id is required", err)
		return
	}

	request, err := h.WithdrawalService.Pay(requestID, reviewerID, strings.TrimSpace(req.TransactionID))
	if err != nil {
		respondWithdrawalReviewError(c, err)
		return
	}
	response.Success(c, request)
}
