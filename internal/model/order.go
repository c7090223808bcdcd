package model

import (
	"math"
	"time"
)

// Order status values. An order starts as pending and moves through the
// lifecycle via PUT /orders/:id; DELETE /orders/:id sets cancelled.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
)

// OrderStatuses lists every accepted status, in lifecycle order.
var OrderStatuses = []string{
	StatusPending, StatusConfirmed, StatusProcessing,
	StatusShipped, StatusDelivered, StatusCancelled,
}

// ValidStatus reports whether s is one of the accepted order statuses.
func ValidStatus(s string) bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// OrderItem is one line of an order. Price and Name are resolved from the
// product service during order creation and written back onto the item.
type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price,omitempty"`
	Name      string  `json:"name,omitempty"`
}

// Order is owned by the order store. TotalAmount is fixed at creation time
// as the sum of item price*quantity; later status changes never recompute it.
type Order struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	Items           []OrderItem    `json:"items"`
	TotalAmount     float64        `json:"totalAmount"`
	Status          string         `json:"status"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       *time.Time     `json:"updatedAt,omitempty"`
	CancelledAt     *time.Time     `json:"cancelledAt,omitempty"`
	ShippingAddress map[string]any `json:"shippingAddress"`
	PaymentMethod   string         `json:"paymentMethod"`
}

// CanCancel reports whether the order may still be cancelled. Shipped and
// delivered orders cannot.
func (o Order) CanCancel() bool {
	return o.Status != StatusShipped && o.Status != StatusDelivered
}

// Round2 rounds a monetary amount to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
