package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	SaleStatusPending   = "PENDING"
	SaleStatusConfirmed = "CONFIRMED"
	SaleStatusVoided    = "VOIDED"
)

const (
	PaymentCash     = "EFECTIVO"
	PaymentDebit    = "DEBITO"
	PaymentCredit   = "CREDITO"
	PaymentTransfer = "TRANSFERENCIA"
)

// PaymentMethods lists the accepted payment methods.
var PaymentMethods = []string{PaymentCash, PaymentDebit, PaymentCredit, PaymentTransfer}

// ValidPaymentMethod reports whether m is one of PaymentMethods.
func ValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// Sale is one checkout. Total equals the sum of its line subtotals once
// the sale is CONFIRMED.
type Sale struct {
	gorm.Model
	UserID        *uint           `gorm:"index" json:"user_id"`
	User          *User           `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	WorkerID      *uint           `gorm:"index" json:"worker_id"`
	Worker        *Worker         `gorm:"constraint:OnDelete:SET NULL" json:"worker,omitempty"`
	ShiftID       *uint           `gorm:"index" json:"shift_id"`
	Shift         *Shift          `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	PaymentMethod string          `gorm:"size:20;not null;default:EFECTIVO" json:"payment_method"`
	Total         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"total"`
	Status        string          `gorm:"size:20;not null;index" json:"status"`
	VoidedBy      *uint           `json:"voided_by,omitempty"`
	VoidReason    string          `gorm:"size:255" json:"void_reason,omitempty"`
	VoidedAt      *time.Time      `json:"voided_at,omitempty"`
	Items         []SaleItem      `gorm:"constraint:OnDelete:CASCADE" json:"items,omitempty"`
}

func (s Sale) IsVoided() bool { return s.Status == SaleStatusVoided }

// SaleItem is one line of a sale. UnitPrice is the product price captured
// when the line was created; later price changes do not affect it.
type SaleItem struct {
	gorm.Model
	SaleID    uint            `gorm:"not null;index" json:"sale_id"`
	ProductID uint            `gorm:"not null;index" json:"product_id"`
	Product   *Product        `gorm:"constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	Quantity  int             `gorm:"not null;check:chk_sale_items_quantity,quantity > 0" json:"quantity"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"unit_price"`
	Subtotal  decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
}

// BeforeSave keeps Subtotal = Quantity × UnitPrice on every write.
func (i *SaleItem) BeforeSave(tx *gorm.DB) error {
	i.Subtotal = i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
	return nil
}
