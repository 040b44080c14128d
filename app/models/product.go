package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Category groups products (Cervezas, Vinos, Licores...).
type Category struct {
	gorm.Model
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
}

// Product is a sellable catalog item. Stock is the authoritative on-hand
// count and is only changed under a row lock.
type Product struct {
	gorm.Model
	SKU        string          `gorm:"size:50;not null;uniqueIndex" json:"sku"`
	Name       string          `gorm:"size:255;not null;index" json:"name"`
	CategoryID *uint           `gorm:"index" json:"category_id"`
	Category   *Category       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"category,omitempty"`
	Cost       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"cost"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"unit_price"`
	Stock      int             `gorm:"not null;default:0;check:chk_products_stock,stock >= 0" json:"stock"`
	MinStock   int             `gorm:"not null;default:0" json:"min_stock"`
	Active     bool            `gorm:"not null;index" json:"active"`
	Locked     bool            `gorm:"not null" json:"locked"`
}

// Sellable reports whether the product may appear on a sale.
func (p Product) Sellable() bool {
	return p.Active && !p.Locked
}

// BelowMinimum reports whether stock is at or under a configured threshold.
// A zero MinStock means no threshold.
func (p Product) BelowMinimum() bool {
	return p.MinStock > 0 && p.Stock <= p.MinStock
}
