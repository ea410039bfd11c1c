package order

import (
	"time"

	"sportshop-be/internal/user"
)

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusCanceled PaymentStatus = "CANCELED"
)

type DeliveryStatus string

const (
	DeliveryStatusPending    DeliveryStatus = "PENDING"
	DeliveryStatusDelivering DeliveryStatus = "DELIVERING"
	DeliveryStatusShipped    DeliveryStatus = "SHIPPED"
	DeliveryStatusCanceled   DeliveryStatus = "CANCELED"
)

// ValidDeliveryStatus reports whether s is a known delivery state.
func ValidDeliveryStatus(s DeliveryStatus) bool {
	switch s {
	case DeliveryStatusPending, DeliveryStatusDelivering, DeliveryStatusShipped, DeliveryStatusCanceled:
		return true
	}
	return false
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCanceled  OrderStatus = "CANCELED"
)

// Customer is the contact snapshot taken when the order was placed.
// It never changes afterwards, even if the account does.
type Customer struct {
	FullName string
	Phone    string
	Address  string
	Email    string
}

type Order struct {
	ID             string
	Code           string
	Customer       Customer
	Items          []*OrderItem
	PaymentMethod  string
	PaymentStatus  PaymentStatus
	DeliveryStatus DeliveryStatus
	Status         OrderStatus
	ManagerID      *string
	ShipperID      *string
	Manager        *user.User
	Shipper        *user.User
	TotalPrice     int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type OrderItem struct {
	ID          int64
	OrderID     string
	ProductID   string
	VariantID   string
	ProductName string
	VariantName string
	Quantity    int
	UnitPrice   int64
	Subtotal    int64
}

// ComputedTotal sums line totals. The stored total_price must match;
// reads recompute it from the populated items.
func (o *Order) ComputedTotal() int64 {
	var total int64
	for _, item := range o.Items {
		total += int64(item.Quantity) * item.UnitPrice
	}
	return total
}

type Statistic struct {
	TotalCanceled  int64 `json:"totalCanceled"`
	TotalCompleted int64 `json:"totalCompleted"`
	Total          int64 `json:"total"`
}
