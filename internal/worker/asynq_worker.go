package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/3syncai/affiliate-portal-sub001/internal/logger"
	"github.com/3syncai/affiliate-portal-sub001/internal/provider"
	"github.com/3syncai/affiliate-portal-sub001/internal/queue"
	"github.com/3syncai/affiliate-portal-sub001/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer handles async commission tasks.
type Consumer struct {
	*provider.Container
}

// NewConsumer creates the consumer.
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register wires the task handlers.
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderCommission, c.handleOrderCommission)
	mux.HandleFunc(queue.TaskLedgerCredit, c.handleLedgerCredit)
}

func (c *Consumer) handleOrderCommission(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.OrderCommissionPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_commission_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == "" {
		logger.Debugw("worker_order_commission_skip_invalid_payload")
		return nil
	}

	inserted, err := c.LedgerService.ProcessOrder(ctx, service.OrderEvent{
		OrderID:       payload.OrderID,
		AffiliateCode: payload.AffiliateCode,
		ProductID:     payload.ProductID,
		OrderAmount:   payload.OrderAmount,
		Quantity:      payload.Quantity,
	})
	if err != nil {
		logger.Warnw("worker_order_commission_failed",
			"order_id", payload.OrderID,
			"error", err,
		)
		return err
	}
	logger.Infow("worker_order_commission_done",
		"order_id", payload.OrderID,
		"entries_inserted", inserted,
	)
	return nil
}

func (c *Consumer) handleLedgerCredit(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		return nil
	}
	var payload queue.LedgerCreditPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_ledger_credit_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == "" {
		logger.Debugw("worker_ledger_credit_skip_invalid_payload")
		return nil
	}

	credited, err := c.LedgerService.Credit(payload.OrderID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			logger.Debugw("worker_ledger_credit_skip_not_found", "order_id", payload.OrderID)
			return nil
		}
		logger.Warnw("worker_ledger_credit_failed",
			"order_id", payload.OrderID,
			"error", err,
		)
		return err
	}
	logger.Infow("worker_ledger_credit_done",
		"order_id", payload.OrderID,
		"entries_credited", credited,
	)
	return nil
}
