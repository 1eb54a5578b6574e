package models

import (
	"time"

	"github.com/google/uuid"
)

// Роли храним строками-записями (seed: customer/admin/vendor),
// удаление роли с пользователями — RESTRICT.
type Role struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"type:text;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Role) TableName() string { return "roles" }

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleVendor   = "vendor"
)

type User struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Email        string    `gorm:"not null"` // уникальность — функциональный индекс lower(email)
	PasswordHash string    `gorm:"not null"` // хэш считает внешний auth-сервис, мы только храним
	FullName     string    `gorm:"type:text"`
	Phone        *string   `gorm:"type:text"`
	IsActive     bool      `gorm:"not null;default:true;index"`
	CreatedAt    time.Time `gorm:"not null;default:now()"`
	UpdatedAt    time.Time `gorm:"not null;default:now()"`
}

func (User) TableName() string { return "users" }

type UserRole struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	RoleID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (UserRole) TableName() string { return "user_roles" }

type Address struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	Line1      string    `gorm:"type:text;not null"`
	Line2      *string   `gorm:"type:text"`
	City       string    `gorm:"type:text;not null"`
	Region     *string   `gorm:"type:text"`
	PostalCode string    `gorm:"type:text;not null"`
	Country    string    `gorm:"type:char(2);not null"`

	// «ровно один дефолт на пользователя» держит сервис:
	// смена дефолта снимает старый флаг в той же транзакции
	IsDefaultShipping bool `gorm:"not null;default:false"`
	IsDefaultBilling  bool `gorm:"not null;default:false"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Address) TableName() string { return "addresses" }
