package models

import (
	"time"

	"github.com/google/uuid"
)

// Inventory 1:1 с продуктом. Доступный остаток не хранится:
// available = quantity - reserved, инвариант 0 <= reserved <= quantity.
type Inventory struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Quantity  int64     `gorm:"not null;default:0"`
	Reserved  int64     `gorm:"not null;default:0"`

	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Inventory) TableName() string { return "inventories" }

func (i Inventory) Available() int64 { return i.Quantity - i.Reserved }

type ReservationStatus string

const (
	ReservationPending  ReservationStatus = "PENDING"
	ReservationReserved ReservationStatus = "RESERVED"
	ReservationReleased ReservationStatus = "RELEASED"
	ReservationConsumed ReservationStatus = "CONSUMED" // резерв списан при отгрузке
)

// Reservation — бухгалтерия холдов по заказу: какие позиции зарезервированы
// и были ли уже отпущены/списаны (release/consume ровно один раз).
type Reservation struct {
	ID        uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:ux_reservations_order_product"`
	ProductID uuid.UUID         `gorm:"type:uuid;not null;index;uniqueIndex:ux_reservations_order_product"`
	Quantity  int64             `gorm:"not null"`
	Status    ReservationStatus `gorm:"type:text;not null;default:'PENDING';index"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Reservation) TableName() string { return "reservations" }
