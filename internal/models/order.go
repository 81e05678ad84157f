package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// Order is a placed purchase. It owns its items (cascade delete) and keeps
// a nullable voucher reference that is cleared when the voucher is removed.
// ReferenceNumber is generated once at creation and never changes.
type Order struct {
	BaseModel
	CustomerID             uuid.UUID       `gorm:"type:uuid;index" json:"customer_id"`
	Customer               *Customer       `json:"customer,omitempty"`
	VoucherID              *uuid.UUID      `gorm:"type:uuid" json:"voucher_id"`
	Voucher                *Voucher        `gorm:"constraint:OnDelete:SET NULL" json:"voucher,omitempty"`
	ReferenceNumber        string          `gorm:"uniqueIndex" json:"reference_number"`
	Status                 string          `json:"status"`
	OrderType              string          `json:"order_type"`
	ShippingMethod         string          `json:"shipping_method"`
	PaymentMethod          string          `json:"payment_method"`
	Subtotal               decimal.Decimal `gorm:"type:numeric" json:"subtotal"`
	DiscountAmount         decimal.Decimal `gorm:"type:numeric" json:"discount_amount"`
	Total                  decimal.Decimal `gorm:"type:numeric" json:"total"`
	DeliveryAddress        string          `json:"delivery_address"`
	DeliveryNotes          string          `json:"delivery_notes"`
	DeliveryDatePreference *time.Time      `json:"delivery_date_preference"`
	Items                  []OrderItem     `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

// OrderItem is one product line within an order.
type OrderItem struct {
	BaseModel
	OrderID    uuid.UUID       `gorm:"type:uuid;index" json:"order_id"`
	ProductID  uuid.UUID       `gorm:"type:uuid;index" json:"product_id"`
	Product    *Product        `json:"product,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric" json:"unit_price"`
	TotalPrice decimal.Decimal `gorm:"type:numeric" json:"total_price"`
}

// LineTotal computes quantity times unit price.
func (i *OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}
