package services

import (
	"errors"
	"fmt"
)

// Sale confirmation kinds. A failed Confirm returns a *SaleError whose
// Unwrap yields one of these, so callers test with errors.Is.
var (
	ErrEmptyCart            = errors.New("empty cart")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrProductNotFound      = errors.New("product not found")
	ErrProductUnavailable   = errors.New("product unavailable")
	ErrInsufficientStock    = errors.New("insufficient stock")
	ErrConcurrencyConflict  = errors.New("concurrency conflict")
	ErrTransactionFailed    = errors.New("transaction failed")
)

var (
	ErrSaleNotFound       = errors.New("sale not found")
	ErrWorkerNotFound     = errors.New("worker not found")
	ErrWorkerInactive     = errors.New("worker inactive")
	ErrShiftNotFound      = errors.New("shift not found")
	ErrShiftNotActive     = errors.New("shift not active")
	ErrAlertNotFound      = errors.New("alert not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// SaleError describes why a confirmation rolled back.
type SaleError struct {
	Kind        error
	ProductID   uint
	ProductName string
	Locked      bool
	Requested   int
	Available   int
	Err         error // driver error behind ConcurrencyConflict / TransactionFailed
}

func (e *SaleError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.ProductID != 0:
		return fmt.Sprintf("%s: product %d", e.Kind, e.ProductID)
	}
	return e.Kind.Error()
}

func (e *SaleError) Unwrap() error { return e.Kind }

// Code is the stable name of the kind, used on the wire and as a metric label.
func (e *SaleError) Code() string {
	return KindCode(e.Kind)
}

// Message is the text shown to the cashier.
func (e *SaleError) Message() string {
	switch e.Kind {
	case ErrEmptyCart:
		return "No se enviaron ítems en la venta."
	case ErrInvalidQuantity:
		return "Cantidad inválida."
	case ErrInvalidPaymentMethod:
		return "Método de pago inválido."
	case ErrProductNotFound:
		return "Producto no encontrado."
	case ErrProductUnavailable:
		if e.Locked {
			return fmt.Sprintf("El producto %s está bloqueado y no puede venderse.", e.ProductName)
		}
		return fmt.Sprintf("El producto %s está inactivo.", e.ProductName)
	case ErrInsufficientStock:
		return fmt.Sprintf("Stock insuficiente para %s.", e.ProductName)
	case ErrConcurrencyConflict:
		return "Otra caja está vendiendo el mismo producto. Intente nuevamente."
	}
	return "No se pudo registrar la venta."
}

// KindCode maps a confirmation sentinel to its wire name.
func KindCode(kind error) string {
	switch kind {
	case ErrEmptyCart, ErrInvalidQuantity:
		return "InvalidQuantity"
	case ErrInvalidPaymentMethod:
		return "InvalidPaymentMethod"
	case ErrProductNotFound:
		return "ProductNotFound"
	case ErrProductUnavailable:
		return "ProductUnavailable"
	case ErrInsufficientStock:
		return "InsufficientStock"
	case ErrConcurrencyConflict:
		return "ConcurrencyConflict"
	}
	return "TransactionFailure"
}
