package admin

import (
	"strconv"
	"strings"
	"time"

	"github.com/3syncai/affiliate-portal-sub001/internal/http/response"
	"github.com/3syncai/affiliate-portal-sub001/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListLedgerEntries lists commission ledger rows with filters.
func (h *Handler) ListLedgerEntries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	filter := repository.LedgerListFilter{
		OrderID:          strings.TrimSpace(c.Query("order_id")),
		AffiliateCode:    strings.TrimSpace(c.Query("affiliate_code")),
		CommissionSource: strings.TrimSpace(c.Query("commission_source")),
		EntryKind:        strings.TrimSpace(c.Query("entry_kind")),
		Status:           strings.TrimSpace(c.Query("status")),
		Page:             page,
		PageSize:         pageSize,
	}
	if raw := strings.TrimSpace(c.Query("created_from")); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedFrom = &t
		}
	}
	if raw := strings.TrimSpace(c.Query("created_to")); raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			filter.CreatedTo = &t
		}
	}

	rows, total, err := h.LedgerService.ListEntries(filter)
	if err != nil {
		respondError(c, response.CodeInternal, "ledger fetch failed", err)
		return
	}
	response.SuccessWithPage(c, rows, response.BuildPagination(page, pageSize, total))
}

// GetOrderLedger returns every ledger row written for one order.
func (h *Handler) GetOrderLedger(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("order_id"))
	if orderID == "" {
		respondError(c, response.CodeBadRequest, "order id is required", nil)
		return
	}
	entries, err := h.LedgerService.EntriesByOrder(orderID)
	if err != nil {
		respondError(c, response.CodeInternal, "ledger fetch failed", err)
		return
	}
	response.Success(c, entries)
}

// GetLedgerSummary returns per-source earnings totals for one referral
// code.
func (h *Handler) GetLedgerSummary(c *gin.Context) {
	code := strings.TrimSpace(c.Query("affiliate_code"))
	if code == "" {
		respondError(c, response.CodeBadRequest, "affiliate_code is required", nil)
		return
	}
	status := strings.TrimSpace(c.Query("status"))

	summary, err := h.LedgerRepo.AggregateBySource([]string{code}, status)
	if err != nil {
		respondError(c, response.CodeInternal, "summary fetch failed", err)
		return
	}
	response.Success(c, summary)
}
