package services

import (
	"context"
	"testing"
	"time"

	"github.com/elchascon/botilleria/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlerts_OpenAndAcknowledge(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()
	p := createProduct(t, db, "PIS-003", 1, 5, 6500)
	q := createProduct(t, db, "RUM-002", 2, 4, 6200)

	older := models.StockAlert{ProductID: p.ID, Message: models.LowStockMessage(p)}
	require.NoError(t, db.Create(&older).Error)
	newer := models.StockAlert{ProductID: q.ID, Message: models.LowStockMessage(q)}
	require.NoError(t, db.Create(&newer).Error)

	svc := NewAlertService(db)
	at := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	svc.now = fixedClock(at)

	open, err := svc.Open(ctx, 10)
	require.NoError(t, err)
	require.Len(t, open, 2)
	assert.Equal(t, newer.ID, open[0].ID)
	require.NotNil(t, open[0].Product)
	assert.Equal(t, "RUM-002", open[0].Product.SKU)

	acked, err := svc.Acknowledge(ctx, newer.ID)
	require.NoError(t, err)
	assert.True(t, acked.Acknowledged)
	require.NotNil(t, acked.AcknowledgedAt)
	assert.True(t, at.Equal(*acked.AcknowledgedAt))

	again, err := svc.Acknowledge(ctx, newer.ID)
	require.NoError(t, err)
	assert.True(t, again.Acknowledged)

	open, err = svc.Open(ctx, 10)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, older.ID, open[0].ID)

	_, err = svc.Acknowledge(ctx, 404)
	assert.ErrorIs(t, err, ErrAlertNotFound)
}

func TestCatalog_SearchAndLowStock(t *testing.T) {
	db := newDB(t)
	ctx := context.Background()

	createProduct(t, db, "CRN-001", 80, 20, 1200)
	createProduct(t, db, "ESC-001", 10, 15, 1000)
	hidden := createProduct(t, db, "CRN-XXX", 5, 0, 1200)
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", hidden.ID).Update("locked", true).Error)

	svc := NewCatalogService(db)

	found, err := svc.Search(ctx, "crn")
	require.NoError(t, err)
	require.Len(t, found, 1, "locked products are not offered")
	assert.Equal(t, "CRN-001", found[0].SKU)

	all, err := svc.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1)
	assert.Equal(t, "ESC-001", low[0].SKU)
}
