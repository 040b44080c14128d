// Package events names the domain events fired after a sale, void or stock
// alert commits, and the payloads they carry.
package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	SaleConfirmed = "sale.confirmed"
	SaleVoided    = "sale.voided"
	StockAlert    = "stock.alert"
)

type SaleLine struct {
	ProductID uint            `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type SaleConfirmedPayload struct {
	SaleID        uint            `json:"sale_id"`
	Total         decimal.Decimal `json:"total"`
	PaymentMethod string          `json:"payment_method"`
	UserID        *uint           `json:"user_id,omitempty"`
	WorkerID      *uint           `json:"worker_id,omitempty"`
	ShiftID       *uint           `json:"shift_id,omitempty"`
	Lines         []SaleLine      `json:"lines"`
}

type SaleVoidedPayload struct {
	SaleID   uint       `json:"sale_id"`
	VoidedBy *uint      `json:"voided_by,omitempty"`
	Reason   string     `json:"reason"`
	VoidedAt time.Time  `json:"voided_at"`
	Lines    []SaleLine `json:"lines"`
}

type StockAlertPayload struct {
	AlertID   uint   `json:"alert_id"`
	ProductID uint   `json:"product_id"`
	Stock     int    `json:"stock"`
	MinStock  int    `json:"min_stock"`
	Message   string `json:"message"`
}
