// Package queue defines the order lifecycle events published to the message
// broker and the best-effort publisher behind them.
package queue

// Queue names the order service publishes to.
const (
	OrderCreatedQueue   = "order.created"
	OrderCancelledQueue = "order.cancelled"
)

// OrderCreatedEvent is published after an order has been validated and
// persisted. It carries enough for downstream consumers to log or notify
// without querying the order service.
type OrderCreatedEvent struct {
	OrderID     string  `json:"order_id"`
	UserID      string  `json:"user_id"`
	TotalAmount float64 `json:"total_amount"`
	ItemCount   int     `json:"item_count"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"created_at"`
}

// OrderCancelledEvent is published after an order transitions to cancelled.
type OrderCancelledEvent struct {
	OrderID     string `json:"order_id"`
	UserID      string `json:"user_id"`
	CancelledAt string `json:"cancelled_at"`
}
