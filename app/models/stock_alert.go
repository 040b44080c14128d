package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// StockAlert flags a product whose stock fell to or below its minimum.
// At most one unacknowledged alert exists per product.
type StockAlert struct {
	gorm.Model
	ProductID      uint       `gorm:"not null;index:idx_alert_product_ack" json:"product_id"`
	Product        *Product   `gorm:"constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Message        string     `gorm:"size:255;not null" json:"message"`
	Acknowledged   bool       `gorm:"not null;index:idx_alert_product_ack" json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledged_at,omitempty"`
}

// LowStockMessage is the alert text for p's current stock.
func LowStockMessage(p Product) string {
	return fmt.Sprintf("Stock crítico: %d unidades (mínimo %d)", p.Stock, p.MinStock)
}
