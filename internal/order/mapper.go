package order

import (
	"time"

	"sportshop-be/internal/user"
)

type CustomerResponse struct {
	FullName string `json:"fullName"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
	Email    string `json:"email"`
}

type OrderItemResponse struct {
	ProductID   string `json:"productId"`
	VariantID   string `json:"variantId"`
	ProductName string `json:"productName"`
	VariantName string `json:"variantName"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
	Subtotal    int64  `json:"subtotal"`
}

type StaffResponse struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type OrderResponse struct {
	ID             string              `json:"id"`
	Code           string              `json:"code"`
	Customer       CustomerResponse    `json:"customer"`
	Items          []OrderItemResponse `json:"items"`
	PaymentMethod  string              `json:"paymentMethod"`
	PaymentStatus  string              `json:"paymentStatus"`
	DeliveryStatus string              `json:"deliveryStatus"`
	Status         string              `json:"status"`
	ManagerID      *string             `json:"managerId"`
	ShipperID      *string             `json:"shipperId"`
	Manager        *StaffResponse      `json:"manager,omitempty"`
	Shipper        *StaffResponse      `json:"shipper,omitempty"`
	TotalPrice     int64               `json:"orderTotalPrice"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

type PageResponse struct {
	Data  []*OrderResponse `json:"data"`
	Total int64            `json:"total"`
	Page  int32            `json:"page"`
	Limit int32            `json:"limit"`
}

func toStaffResponse(u *user.User) *StaffResponse {
	if u == nil {
		return nil
	}
	return &StaffResponse{
		ID:       u.ID,
		FullName: u.FullName,
		Email:    u.Email,
	}
}

func ToOrderResponse(o *Order) *OrderResponse {
	if o == nil {
		return nil
	}

	items := make([]OrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemResponse{
			ProductID:   item.ProductID,
			VariantID:   item.VariantID,
			ProductName: item.ProductName,
			VariantName: item.VariantName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}

	return &OrderResponse{
		ID:   o.ID,
		Code: o.Code,
		Customer: CustomerResponse{
			FullName: o.Customer.FullName,
			Phone:    o.Customer.Phone,
			Address:  o.Customer.Address,
			Email:    o.Customer.Email,
		},
		Items:          items,
		PaymentMethod:  o.PaymentMethod,
		PaymentStatus:  string(o.PaymentStatus),
		DeliveryStatus: string(o.DeliveryStatus),
		Status:         string(o.Status),
		ManagerID:      o.ManagerID,
		ShipperID:      o.ShipperID,
		Manager:        toStaffResponse(o.Manager),
		Shipper:        toStaffResponse(o.Shipper),
		TotalPrice:     o.TotalPrice,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
	}
}

func ToPageResponse(p *Page) *PageResponse {
	data := make([]*OrderResponse, 0, len(p.Data))
	for _, o := range p.Data {
		data = append(data, ToOrderResponse(o))
	}
	return &PageResponse{Data: data, Total: p.Total, Page: p.Page, Limit: p.Limit}
}
