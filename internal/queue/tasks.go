package queue

import (
	"encoding/json"

	"github.com/3syncai/affiliate-portal-sub001/internal/constants"
	"github.com/shopspring/decimal"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderCommission attributes one paid order line item.
	TaskOrderCommission = constants.TaskOrderCommission
	// TaskLedgerCredit flips an order's ledger entries to CREDITED.
	TaskLedgerCredit = constants.TaskLedgerCredit
)

// OrderCommissionPayload carries one order event through the queue.
type OrderCommissionPayload struct {
	OrderID       string          `json:"order_id"`
	AffiliateCode string          `json:"affiliate_code"`
	ProductID     uint            `json:"product_id"`
	OrderAmount   decimal.Decimal `json:"order_amount"`
	Quantity      int64           `json:"quantity"`
}

// LedgerCreditPayload identifies the order to credit.
type LedgerCreditPayload struct {
	OrderID string `json:"order_id"`
}

// NewOrderCommissionTask creates an order attribution task.
func NewOrderCommissionTask(payload OrderCommissionPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderCommission, body), nil
}

// NewLedgerCreditTask creates a ledger credit task.
func NewLedgerCreditTask(payload LedgerCreditPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerCredit, body), nil
}
