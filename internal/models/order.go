package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// Order — неизменяемый снимок корзины на момент чекаута.
// user_id nullable: анонимная корзина даёт заказ без пользователя,
// сводка по заказам обязана это переживать (LEFT JOIN).
type Order struct {
	ID          uuid.UUID   `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber string      `gorm:"type:text;not null;uniqueIndex"` // ORD-YYYYMMDD-NNNNNN
	UserID      *uuid.UUID  `gorm:"type:uuid;index"`
	CartID      *uuid.UUID  `gorm:"type:uuid;uniqueIndex"` // корзина конвертируется не более одного раза
	Status      OrderStatus `gorm:"type:text;not null;default:'pending';index"`

	SubtotalCents int64  `gorm:"not null;default:0"`
	ShippingCents int64  `gorm:"not null;default:0"`
	TaxCents      int64  `gorm:"not null;default:0"`
	DiscountCents int64  `gorm:"not null;default:0"`
	TotalCents    int64  `gorm:"not null;default:0"` // CHECK: total = subtotal + shipping + tax - discount
	CurrencyCode  string `gorm:"type:char(3);not null"`

	BillingAddressID  *uuid.UUID `gorm:"type:uuid"` // SET NULL при удалении адреса
	ShippingAddressID *uuid.UUID `gorm:"type:uuid"`

	CancelReason *string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Items []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

func (Order) TableName() string { return "orders" }

// OrderItem — позиция заказа с замороженными SKU/именем/ценой:
// правки продукта после чекаута на снимок не влияют.
type OrderItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"type:uuid;not null;index;uniqueIndex:ux_order_items_order_product"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:ux_order_items_order_product"`

	SKU            string `gorm:"type:text;not null"`
	Name           string `gorm:"type:text;not null"`
	Quantity       int64  `gorm:"not null"` // CHECK quantity > 0
	UnitPriceCents int64  `gorm:"not null"`
	LineTotalCents int64  `gorm:"not null"` // CHECK line_total = unit_price * quantity
	CurrencyCode   string `gorm:"type:char(3);not null"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (OrderItem) TableName() string { return "order_items" }

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusSuccess  PaymentStatus = "success"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// Payment — append-only запись платежа; шлюз снаружи, мы храним только
// его референс и статус расчёта.
type Payment struct {
	ID           uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID     `gorm:"type:uuid;not null;index"`
	AmountCents  int64         `gorm:"not null"` // CHECK amount >= 0
	CurrencyCode string        `gorm:"type:char(3);not null"`
	Status       PaymentStatus `gorm:"type:text;not null;default:'pending';index"`
	Method       string        `gorm:"type:text;not null"`
	GatewayRef   *string       `gorm:"type:text"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
}

func (Payment) TableName() string { return "payments" }

type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "pending"
	ShipmentStatusShipped   ShipmentStatus = "shipped"
	ShipmentStatusDelivered ShipmentStatus = "delivered"
)

type Shipment struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID        uuid.UUID      `gorm:"type:uuid;not null;index"`
	Status         ShipmentStatus `gorm:"type:text;not null;default:'pending';index"`
	Carrier        *string        `gorm:"type:text"`
	TrackingNumber *string        `gorm:"type:text"`
	ShippedAt      *time.Time
	DeliveredAt    *time.Time

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Shipment) TableName() string { return "shipments" }
