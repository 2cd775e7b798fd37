package admin

import (
	"errors"
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/http/response"
	"github.com/3syncai/affiliate-portal-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ListCommissionRates returns the effective rate for every role type,
// including defaults where no row exists yet.
func (h *Handler) ListCommissionRates(c *gin.Context) {
	rates, err := h.RateService.ListRates(c.Request.Context())
	if err != nil {
		respondError(c, response.CodeInternal, "rate fetch failed", err)
		return
	}
	response.Success(c, rates)
}

// UpdateCommissionRateRequest is the rate update payload.
type UpdateCommissionRateRequest struct {
	Percentage string `json:"percentage" binding:"required"`
}

// UpdateCommissionRate upserts one role type's percentage.
func (h *Handler) UpdateCommissionRate(c *gin.Context) {
	roleType := strings.TrimSpace(c.Param("role_type"))
	if roleType == "" {
		respondError(c, response.CodeBadRequest, "role type is required", nil)
		return
	}

	var req UpdateCommissionRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}
	percentage, err := decimal.NewFromString(strings.TrimSpace(req.Percentage))
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid percentage", err)
		return
	}

	rate, err := h.RateService.UpdateRate(c.Request.Context(), roleType, percentage)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "unknown role type", nil)
		case errors.Is(err, service.ErrRateOutOfRange):
			respondError(c, response.CodeBadRequest, "percentage must be between 0 and 100", nil)
		default:
			respondError(c, response.CodeInternal, "rate update failed", err)
		}
		return
	}
	response.Success(c, rate)
}
