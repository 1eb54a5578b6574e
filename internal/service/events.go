package service

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type OrderItemEvent struct {
	ProductID  uuid.UUID `json:"product_id"`
	SKU        string    `json:"sku"`
	Quantity   int64     `json:"quantity"`
	PriceCents int64     `json:"price_cents"`
	LineTotal  int64     `json:"line_total_cents"`
}

type OrderCreatedEvent struct {
	OrderID     uuid.UUID        `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	UserID      *uuid.UUID       `json:"user_id,omitempty"`
	Items       []OrderItemEvent `json:"items"`
	TotalCents  int64            `json:"total_cents"`
	Currency    string           `json:"currency"`
	CreatedAt   time.Time        `json:"created_at"`
}

type OrderStatusChangedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	ChangedAt   time.Time `json:"changed_at"`
}

type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelled_at"`
}

type EventBus interface {
	PublishOrderCreated(ctx context.Context, e OrderCreatedEvent) error
	PublishOrderStatusChanged(ctx context.Context, e OrderStatusChangedEvent) error
	PublishOrderCancelled(ctx context.Context, e OrderCancelledEvent) error
}
