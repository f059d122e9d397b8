package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is one bakery listing shown on the storefront.
type Product struct {
	ID          uuid.UUID `gorm:"column:id;type:text;primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description string    `gorm:"column:description"`
	PriceCents  int64     `gorm:"column:price_cents;not null"`
	PackSize    string    `gorm:"column:pack_size;not null"`
	ImageURL    string    `gorm:"column:image_url"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	SortOrder   int       `gorm:"column:sort_order;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName pins the table used by catalog queries and migrations.
func (Product) TableName() string {
	return "products"
}
