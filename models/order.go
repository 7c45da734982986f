package models

import "time"

type OrderStatus string

const (
	// Order statuses, in fulfillment order.
	OrderStatusPending   OrderStatus = "pending"   // Order placed, awaiting payment
	OrderStatusPaid      OrderStatus = "paid"      // Payment received
	OrderStatusShipped   OrderStatus = "shipped"   // Out for delivery
	OrderStatusDelivered OrderStatus = "delivered" // Customer received the items
	OrderStatusCancelled OrderStatus = "cancelled" // Cancelled before payment
)

// orderTransitions is the full state machine: pending -> paid -> shipped ->
// delivered, with pending -> cancelled as the only exit before fulfillment.
// delivered and cancelled are terminal.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:   {OrderStatusPaid, OrderStatusCancelled},
	OrderStatusPaid:      {OrderStatusShipped},
	OrderStatusShipped:   {OrderStatusDelivered},
	OrderStatusDelivered: {},
	OrderStatusCancelled: {},
}

// ParseOrderStatus maps a request string to a known status.
func ParseOrderStatus(s string) (OrderStatus, bool) {
	switch OrderStatus(s) {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled:
		return OrderStatus(s), true
	}
	return "", false
}

// CanTransition reports whether an order may move from one status to the next.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID       uint        `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderRef string      `gorm:"uniqueIndex;size:64;not null" json:"order_ref"`
	UserID   uint        `gorm:"not null;index" json:"user_id"`
	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total    float64     `gorm:"not null" json:"total"`
	Status   OrderStatus `gorm:"type:VARCHAR(20);not null;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

// OrderItem carries the price snapshot taken at checkout. Later product
// price changes never touch UnitPrice.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	ProductID uint    `gorm:"not null;index" json:"product_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
}
