package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_SellableAndBelowMinimum(t *testing.T) {
	p := Product{Active: true, Stock: 2, MinStock: 2}
	assert.True(t, p.Sellable())
	assert.True(t, p.BelowMinimum())

	p.Stock = 3
	assert.False(t, p.BelowMinimum())

	p.MinStock = 0
	p.Stock = 0
	assert.False(t, p.BelowMinimum(), "no threshold configured")

	p.Locked = true
	assert.False(t, p.Sellable())
	assert.False(t, Product{Active: false}.Sellable())
}

func TestSaleItem_BeforeSaveComputesSubtotal(t *testing.T) {
	item := SaleItem{Quantity: 3, UnitPrice: decimal.NewFromInt(1200), Subtotal: decimal.NewFromInt(1)}
	require.NoError(t, item.BeforeSave(nil))
	assert.True(t, decimal.NewFromInt(3600).Equal(item.Subtotal))
}

func TestLowStockMessage(t *testing.T) {
	assert.Equal(t, "Stock crítico: 1 unidades (mínimo 2)", LowStockMessage(Product{Stock: 1, MinStock: 2}))
}

func TestValidPaymentMethod(t *testing.T) {
	assert.True(t, ValidPaymentMethod(PaymentCash))
	assert.True(t, ValidPaymentMethod("TRANSFERENCIA"))
	assert.False(t, ValidPaymentMethod("efectivo"))
	assert.False(t, ValidPaymentMethod(""))
}

func TestDecimalMarshalsAsNumber(t *testing.T) {
	b, err := json.Marshal(Sale{Total: decimal.NewFromInt(3000)})
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, float64(3000), out["total"])
}
