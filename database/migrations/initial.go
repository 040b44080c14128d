package migrations

import (
	"github.com/elchascon/botilleria/app/models"
	"github.com/elchascon/botilleria/pkg/migration"
	"github.com/elchascon/botilleria/pkg/queue"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260301000000_create_users_table", table(&models.User{}))
	migration.Register("20260301000001_create_categories_table", table(&models.Category{}))
	migration.Register("20260301000002_create_products_table", table(&models.Product{}))
	migration.Register("20260301000003_create_workers_table", table(&models.Worker{}))
	migration.Register("20260301000004_create_shifts_table", table(&models.Shift{}))
	migration.Register("20260301000005_create_sales_table", table(&models.Sale{}))
	migration.Register("20260301000006_create_sale_items_table", table(&models.SaleItem{}))
	migration.Register("20260301000007_create_stock_alerts_table", table(&models.StockAlert{}))
	migration.Register("20260301000008_create_failed_jobs_table", table(&queue.FailedJobRecord{}))
}

// createTable migrates one model and drops its table on rollback.
type createTable struct {
	model interface{}
}

func table(model interface{}) createTable {
	return createTable{model: model}
}

func (m createTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(m.model)
}

func (m createTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(m.model)
}

// Models lists every table in creation order; tests migrate them directly.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Worker{},
		&models.Shift{},
		&models.Sale{},
		&models.SaleItem{},
		&models.StockAlert{},
		&queue.FailedJobRecord{},
	}
}
