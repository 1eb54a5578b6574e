package models

import (
	"time"

	"github.com/google/uuid"
)

type DiscountType string

const (
	DiscountPercent DiscountType = "percent"
	DiscountFixed   DiscountType = "fixed"
)

type Coupon struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Code         string       `gorm:"type:text;not null;uniqueIndex"`
	DiscountType DiscountType `gorm:"type:text;not null"`
	// percent: целые проценты 0..100; fixed: сумма в копейках
	DiscountValue int64  `gorm:"not null"`
	MaxUses       *int64 `gorm:""` // NULL — без лимита; CHECK used_count <= max_uses
	UsedCount     int64  `gorm:"not null;default:0"`
	ValidFrom     *time.Time
	ValidTo       *time.Time
	IsActive      bool `gorm:"not null;default:true;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Coupon) TableName() string { return "coupons" }

// OrderCoupon: составной PK не даёт применить купон к заказу дважды.
type OrderCoupon struct {
	OrderID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CouponID uuid.UUID `gorm:"type:uuid;primaryKey"`

	DiscountCents int64     `gorm:"not null"`
	CreatedAt     time.Time `gorm:"not null;default:now()"`
}

func (OrderCoupon) TableName() string { return "order_coupons" }

// Counter — атомарный источник номеров заказов.
// Глобальная последовательность, по дням не сбрасывается:
// номер ORD-<дата>-<seq> уникален и без сброса.
type Counter struct {
	Name  string `gorm:"type:text;primaryKey"`
	Value int64  `gorm:"not null;default:0"`
}

func (Counter) TableName() string { return "counters" }

const CounterOrderNumber = "order_number"
