package repositories

import (
	"testing"

	"github.com/elchascon/botilleria/app/models"
	"github.com/elchascon/botilleria/database/migrations"
	"github.com/elchascon/botilleria/pkg/orm"
	"github.com/elchascon/botilleria/pkg/testkit"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestFindForUpdate_LocksRow(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=botilleria dbname=botilleria sslmode=disable",
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	var sql string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture", func(tx *gorm.DB) {
		sql = tx.Statement.SQL.String()
	}))

	_, _ = NewProductRepository(orm.New(db)).FindForUpdate(7)

	assert.Contains(t, sql, `FROM "products"`)
	assert.Contains(t, sql, "FOR UPDATE")
}

func TestAddStock_IncludesSoftDeleted(t *testing.T) {
	db := testkit.NewDB(t, migrations.Models()...)
	p := models.Product{SKU: "RUM-001", Name: "Ron Pampero 750cc", UnitPrice: decimal.NewFromInt(6200), Stock: 2, Active: true}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Delete(&p).Error)

	repo := NewProductRepository(orm.New(db))
	require.NoError(t, repo.AddStock(p.ID, 3))

	var got models.Product
	require.NoError(t, db.Unscoped().First(&got, p.ID).Error)
	assert.Equal(t, 5, got.Stock)

	assert.ErrorIs(t, repo.AddStock(9999, 1), orm.ErrNotFound)
}
