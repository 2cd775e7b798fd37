package public

import (
	"strings"

	"github.com/3syncai/affiliate-portal-sub001/internal/http/response"
	"github.com/3syncai/affiliate-portal-sub001/internal/queue"
	"github.com/3syncai/affiliate-portal-sub001/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// OrderEventRequest is the storefront order webhook payload.
type OrderEventRequest struct {
	OrderID       string `json:"order_id" binding:"required"`
	AffiliateCode string `json:"affiliate_code" binding:"required"`
	ProductID     uint   `json:"product_id" binding:"required"`
	OrderAmount   string `json:"order_amount" binding:"required"`
	Quantity      int64  `json:"quantity"`
}

// ReceiveOrderEvent accepts a paid order event and attributes its
// commissions. The webhook never fails the storefront: attribution
// problems are swallowed downstream, only malformed payloads are
// rejected here.
func (h *Handler) ReceiveOrderEvent(c *gin.Context) {
	var req OrderEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "invalid payload", err)
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(req.OrderAmount))
	if err != nil || amount.IsNegative() {
		respondError(c, response.CodeBadRequest, "invalid order amount", err)
		return
	}
	quantity := req.Quantity
	if quantity <= 0 {
		quantity = 1
	}

	event := service.OrderEvent{
		OrderID:       strings.TrimSpace(req.OrderID),
		AffiliateCode: strings.ToUpper(strings.TrimSpace(req.AffiliateCode)),
		ProductID:     req.ProductID,
		OrderAmount:   amount,
		Quantity:      quantity,
	}

	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueOrderCommission(queue.OrderCommissionPayload{
			OrderID:       event.OrderID,
			AffiliateCode: event.AffiliateCode,
			ProductID:     event.ProductID,
			OrderAmount:   event.OrderAmount,
			Quantity:      event.Quantity,
		}); err != nil {
			respondError(c, response.CodeInternal, "enqueue failed", err)
			return
		}
		response.Success(c, gin.H{"queued": true})
		return
	}

	written, err := h.LedgerService.ProcessOrder(c.Request.Context(), event)
	if err != nil {
		respondError(c, response.CodeInternal, "attribution failed", err)
		return
	}
	response.Success(c, gin.H{"queued": false, "entries_written": written})
}

// ConfirmOrderDelivery flips an order's pending ledger entries to
// credited once the storefront reports delivery.
func (h *Handler) ConfirmOrderDelivery(c *gin.Context) {
	orderID := strings.TrimSpace(c.Param("order_id"))
	if orderID == "" {
		respondError(c, response.CodeBadRequest, "order id is required", nil)
		return
	}

	if h.QueueClient.Enabled() {
		if err := h.QueueClient.EnqueueLedgerCredit(queue.LedgerCreditPayload{OrderID: orderID}); err != nil {
			respondError(c, response.CodeInternal, "enqueue failed", err)
			return
		}
		response.Success(c, gin.H{"queued": true})
		return
	}

	credited, err := h.LedgerService.Credit(orderID)
	if err != nil {
		respondError(c, response.CodeInternal, "credit failed", err)
		return
	}
	response.Success(c, gin.H{"queued": false, "entries_credited": credited})
}
