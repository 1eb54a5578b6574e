package dto

import (
	"time"

	"store-service/internal/models"
	"store-service/internal/repository"

	"github.com/google/uuid"
	"github.com/samber/lo"
)

// --- запросы ---

type CheckoutRequest struct {
	CartID            uuid.UUID  `json:"cart_id" binding:"required"`
	BillingAddressID  *uuid.UUID `json:"billing_address_id"`
	ShippingAddressID *uuid.UUID `json:"shipping_address_id"`
	ShippingCents     int64      `json:"shipping_cents" binding:"gte=0"`
	TaxCents          int64      `json:"tax_cents" binding:"gte=0"`
	CouponCode        *string    `json:"coupon_code"`
}

type RecordPaymentRequest struct {
	AmountCents int64   `json:"amount_cents" binding:"required,gt=0"`
	Method      string  `json:"method" binding:"required"`
	GatewayRef  *string `json:"gateway_ref"`
	Status      string  `json:"status" binding:"required,oneof=pending success failed refunded"`
}

type CancelOrderRequest struct {
	Reason *string `json:"reason"`
}

type ShipOrderRequest struct {
	Carrier        *string `json:"carrier"`
	TrackingNumber *string `json:"tracking_number"`
}

type GetOrCreateCartRequest struct {
	UserID       *uuid.UUID `json:"user_id"`
	SessionToken *string    `json:"session_token"`
}

type CartItemRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int64     `json:"quantity" binding:"gte=0"`
}

type CreateProductRequest struct {
	SKU          string `json:"sku" binding:"required"`
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	PriceCents   int64  `json:"price_cents" binding:"gte=0"`
	CurrencyCode string `json:"currency_code" binding:"omitempty,len=3"`
	IsActive     *bool  `json:"is_active"`
}

type UpdateProductRequest struct {
	SKU         *string `json:"sku"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	PriceCents  *int64  `json:"price_cents"`
	IsActive    *bool   `json:"is_active"`
}

type RestockRequest struct {
	Quantity int64 `json:"quantity" binding:"required,gt=0"`
}

type AdjustStockRequest struct {
	Delta int64 `json:"delta" binding:"required"`
}

type CreateUserRequest struct {
	Email        string  `json:"email" binding:"required,email"`
	PasswordHash string  `json:"password_hash" binding:"required"`
	FullName     string  `json:"full_name"`
	Phone        *string `json:"phone"`
}

type CreateAddressRequest struct {
	Line1      string  `json:"line1" binding:"required"`
	Line2      *string `json:"line2"`
	City       string  `json:"city" binding:"required"`
	Region     *string `json:"region"`
	PostalCode string  `json:"postal_code" binding:"required"`
	Country    string  `json:"country" binding:"required,len=2"`
}

// --- ответы ---

type OrderItemResponse struct {
	ProductID      uuid.UUID `json:"product_id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	Quantity       int64     `json:"quantity"`
	UnitPriceCents int64     `json:"unit_price_cents"`
	LineTotalCents int64     `json:"line_total_cents"`
}

type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	OrderNumber   string              `json:"order_number"`
	UserID        *uuid.UUID          `json:"user_id,omitempty"`
	Status        string              `json:"status"`
	SubtotalCents int64               `json:"subtotal_cents"`
	ShippingCents int64               `json:"shipping_cents"`
	TaxCents      int64               `json:"tax_cents"`
	DiscountCents int64               `json:"discount_cents"`
	TotalCents    int64               `json:"total_cents"`
	CurrencyCode  string              `json:"currency_code"`
	CancelReason  *string             `json:"cancel_reason,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	CreatedAt     time.Time           `json:"created_at"`
}

func NewOrderResponse(o *models.Order) OrderResponse {
	return OrderResponse{
		ID:            o.ID,
		OrderNumber:   o.OrderNumber,
		UserID:        o.UserID,
		Status:        string(o.Status),
		SubtotalCents: o.SubtotalCents,
		ShippingCents: o.ShippingCents,
		TaxCents:      o.TaxCents,
		DiscountCents: o.DiscountCents,
		TotalCents:    o.TotalCents,
		CurrencyCode:  o.CurrencyCode,
		CancelReason:  o.CancelReason,
		Items: lo.Map(o.Items, func(it models.OrderItem, _ int) OrderItemResponse {
			return OrderItemResponse{
				ProductID:      it.ProductID,
				SKU:            it.SKU,
				Name:           it.Name,
				Quantity:       it.Quantity,
				UnitPriceCents: it.UnitPriceCents,
				LineTotalCents: it.LineTotalCents,
			}
		}),
		CreatedAt: o.CreatedAt,
	}
}

type OrderSummaryResponse struct {
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   string    `json:"order_number"`
	Status        string    `json:"status"`
	TotalCents    int64     `json:"total_cents"`
	CurrencyCode  string    `json:"currency_code"`
	CustomerEmail *string   `json:"customer_email,omitempty"`
	CustomerName  *string   `json:"customer_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewOrderSummaryResponse(s repository.OrderSummary) OrderSummaryResponse {
	return OrderSummaryResponse{
		OrderID:       s.OrderID,
		OrderNumber:   s.OrderNumber,
		Status:        string(s.Status),
		TotalCents:    s.TotalCents,
		CurrencyCode:  s.CurrencyCode,
		CustomerEmail: s.CustomerEmail,
		CustomerName:  s.CustomerName,
		CreatedAt:     s.CreatedAt,
	}
}

type PaymentResponse struct {
	ID           uuid.UUID `json:"id"`
	OrderID      uuid.UUID `json:"order_id"`
	AmountCents  int64     `json:"amount_cents"`
	CurrencyCode string    `json:"currency_code"`
	Status       string    `json:"status"`
	Method       string    `json:"method"`
	GatewayRef   *string   `json:"gateway_ref,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewPaymentResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID,
		OrderID:      p.OrderID,
		AmountCents:  p.AmountCents,
		CurrencyCode: p.CurrencyCode,
		Status:       string(p.Status),
		Method:       p.Method,
		GatewayRef:   p.GatewayRef,
		CreatedAt:    p.CreatedAt,
	}
}

type CartItemResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

type CartResponse struct {
	ID           uuid.UUID          `json:"id"`
	UserID       *uuid.UUID         `json:"user_id,omitempty"`
	SessionToken *string            `json:"session_token,omitempty"`
	Status       string             `json:"status"`
	Items        []CartItemResponse `json:"items"`
}

func NewCartResponse(c *models.Cart) CartResponse {
	return CartResponse{
		ID:           c.ID,
		UserID:       c.UserID,
		SessionToken: c.SessionToken,
		Status:       string(c.Status),
		Items: lo.Map(c.Items, func(it models.CartItem, _ int) CartItemResponse {
			return CartItemResponse{ProductID: it.ProductID, Quantity: it.Quantity}
		}),
	}
}

type ProductResponse struct {
	ID           uuid.UUID `json:"id"`
	SKU          string    `json:"sku"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	PriceCents   int64     `json:"price_cents"`
	CurrencyCode string    `json:"currency_code"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

func NewProductResponse(p *models.Product) ProductResponse {
	return ProductResponse{
		ID:           p.ID,
		SKU:          p.SKU,
		Name:         p.Name,
		Description:  p.Description,
		PriceCents:   p.PriceCents,
		CurrencyCode: p.CurrencyCode,
		IsActive:     p.IsActive,
		CreatedAt:    p.CreatedAt,
	}
}

type StockResponse struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
	Reserved  int64     `json:"reserved"`
	Available int64     `json:"available"`
}

func NewStockResponse(inv *models.Inventory) StockResponse {
	return StockResponse{
		ProductID: inv.ProductID,
		Quantity:  inv.Quantity,
		Reserved:  inv.Reserved,
		Available: inv.Available(),
	}
}

type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func NewUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FullName:  u.FullName,
		Phone:     u.Phone,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type AddressResponse struct {
	ID                uuid.UUID `json:"id"`
	Line1             string    `json:"line1"`
	Line2             *string   `json:"line2,omitempty"`
	City              string    `json:"city"`
	Region            *string   `json:"region,omitempty"`
	PostalCode        string    `json:"postal_code"`
	Country           string    `json:"country"`
	IsDefaultShipping bool      `json:"is_default_shipping"`
	IsDefaultBilling  bool      `json:"is_default_billing"`
}

func NewAddressResponse(a *models.Address) AddressResponse {
	return AddressResponse{
		ID:                a.ID,
		Line1:             a.Line1,
		Line2:             a.Line2,
		City:              a.City,
		Region:            a.Region,
		PostalCode:        a.PostalCode,
		Country:           a.Country,
		IsDefaultShipping: a.IsDefaultShipping,
		IsDefaultBilling:  a.IsDefaultBilling,
	}
}

type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
