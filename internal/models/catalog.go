package models

import (
	"time"

	"github.com/google/uuid"
)

type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	SKU          string    `gorm:"type:text;not null"` // уникальность — индекс lower(sku)
	Name         string    `gorm:"type:text;not null"`
	Description  string    `gorm:"type:text"`
	PriceCents   int64     `gorm:"not null;default:0"`
	CurrencyCode string    `gorm:"type:char(3);not null;default:'RUB'"`
	IsActive     bool      `gorm:"not null;default:true"`

	CreatedAt time.Time `gorm:"not null;default:now();index"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`
}

func (Product) TableName() string { return "products" }

type Category struct {
	ID       uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name     string     `gorm:"type:text;not null;uniqueIndex"`
	ParentID *uuid.UUID `gorm:"type:uuid;index"`

	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Category) TableName() string { return "categories" }

type ProductCategory struct {
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	CategoryID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (ProductCategory) TableName() string { return "product_categories" }

type Tag struct {
	ID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"type:text;not null;uniqueIndex"`
}

func (Tag) TableName() string { return "tags" }

type ProductTag struct {
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	TagID     uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (ProductTag) TableName() string { return "product_tags" }

type Supplier struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"type:text;not null;uniqueIndex"`
	Email     *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (Supplier) TableName() string { return "suppliers" }

type ProductSupplier struct {
	ProductID  uuid.UUID `gorm:"type:uuid;primaryKey"`
	SupplierID uuid.UUID `gorm:"type:uuid;primaryKey"`
}

func (ProductSupplier) TableName() string { return "product_suppliers" }

type ProductImage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index"`
	URL       string    `gorm:"type:text;not null"`
	Position  int32     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
}

func (ProductImage) TableName() string { return "product_images" }
