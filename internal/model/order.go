package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending   OrderStatus = "Pending"
	StatusConfirmed OrderStatus = "Confirmed"
	StatusShipped   OrderStatus = "Shipped"
	StatusDelivered OrderStatus = "Delivered"
	StatusCancelled OrderStatus = "Cancelled"
)

// ParseOrderStatus converts a status name into an OrderStatus.
// Matching is case-insensitive.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, status := range []OrderStatus{
		StatusPending, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled,
	} {
		if strings.EqualFold(s, string(status)) {
			return status, nil
		}
	}
	return "", ErrInvalidStatus
}

// Order represents a customer order.
type Order struct {
	ID          int64           `json:"id" db:"id"`
	UserID      string          `json:"userId" db:"user_id"`
	UserName    string          `json:"userName" db:"user_name"`
	OrderDate   time.Time       `json:"orderDate" db:"order_date"`
	Status      OrderStatus     `json:"status" db:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount" db:"total_amount"`
	Address     string          `json:"address" db:"address"`
	PaymentLink *string         `json:"paymentLink,omitempty" db:"payment_link"`
	Items       []OrderItem     `json:"items" db:"-"`
}

// OrderItem is a line item in an order. UnitPrice is the product price
// captured at order time and never follows later price changes.
type OrderItem struct {
	ID        int64           `json:"id" db:"id"`
	OrderID   int64           `json:"-" db:"order_id"`
	ProductID int64           `json:"productId" db:"product_id"`
	Quantity  int             `json:"quantity" db:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice" db:"unit_price"`
	Product   *Product        `json:"product,omitempty" db:"-"`
}

// CreateOrderRequest represents the request payload for placing an order.
type CreateOrderRequest struct {
	Items   []CreateOrderItemRequest `json:"items"`
	Address string                   `json:"address"`
}

// CreateOrderItemRequest is a single line in an order request.
type CreateOrderItemRequest struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// UpdateOrderStatusRequest sets a new order status by enum name.
type UpdateOrderStatusRequest struct {
	Status string `json:"status"`
}

// PaymentLinkRequest attaches a payment link to an order.
type PaymentLinkRequest struct {
	PaymentLink string `json:"paymentLink"`
}
