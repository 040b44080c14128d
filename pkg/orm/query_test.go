package orm

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type widget struct {
	ID   uint
	Name string
	Qty  int
}

func openTestDB(t *testing.T) *Query {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&widget{}))
	return New(db)
}

func TestFirst_NotFound(t *testing.T) {
	q := openTestDB(t)
	var w widget
	assert.ErrorIs(t, q.First(&w, 42), ErrNotFound)
}

func TestTransaction_RollsBackOnError(t *testing.T) {
	q := openTestDB(t)
	boom := errors.New("boom")

	err := q.Transaction(func(tx *Query) error {
		require.NoError(t, tx.Create(&widget{Name: "a", Qty: 1}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	n, err := q.Model(&widget{}).Count()
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestForUpdate_IsIgnoredBySQLite(t *testing.T) {
	q := openTestDB(t)
	require.NoError(t, q.Create(&widget{Name: "a", Qty: 3}))

	err := q.Transaction(func(tx *Query) error {
		var w widget
		if err := tx.ForUpdate().First(&w, "name = ?", "a"); err != nil {
			return err
		}
		_, err := tx.Model(&w).Updates(map[string]interface{}{"qty": w.Qty - 1})
		return err
	})
	require.NoError(t, err)

	var w widget
	require.NoError(t, q.First(&w))
	assert.Equal(t, 2, w.Qty)
}

func TestPaginate(t *testing.T) {
	q := openTestDB(t)
	for i := 0; i < 25; i++ {
		require.NoError(t, q.Create(&widget{Name: fmt.Sprintf("w%02d", i)}))
	}

	var page []widget
	p, err := q.Model(&widget{}).Order("id").Paginate(2, 10, &page)
	require.NoError(t, err)

	assert.Equal(t, Pagination{Page: 2, Limit: 10, Total: 25, LastPage: 3}, p)
	require.Len(t, page, 10)
	assert.Equal(t, "w10", page[0].Name)

	_, err = q.Model(&widget{}).Paginate(0, 1000, &page)
	require.NoError(t, err)
	assert.Len(t, page, 25)
}
