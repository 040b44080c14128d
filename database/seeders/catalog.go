package seeders

import (
	"github.com/elchascon/botilleria/app/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func init() {
	Register("catalog", SeedCatalog)
}

type seedProduct struct {
	sku      string
	name     string
	category string
	cost     int64
	price    int64
	stock    int
	min      int
}

var categories = []string{"Cervezas", "Vinos", "Licores", "Bebidas", "Snacks"}

var catalog = []seedProduct{
	{"CRN-001", "Cerveza Corona 330cc", "Cervezas", 800, 1200, 80, 20},
	{"ESC-001", "Cerveza Escudo 350cc", "Cervezas", 600, 1000, 60, 15},
	{"BUD-001", "Cerveza Budweiser 350cc", "Cervezas", 700, 1100, 50, 15},
	{"VIN-001", "Vino Gato Blanco 750cc", "Vinos", 1500, 2500, 30, 8},
	{"VIN-002", "Vino Gato Negro 750cc", "Vinos", 1500, 2600, 25, 8},
	{"PIS-001", "Pisco Mistral 35º 700cc", "Licores", 4500, 6500, 20, 5},
	{"RUM-001", "Ron Pampero 750cc", "Licores", 4000, 6200, 15, 4},
	{"BEB-001", "Bebida Coca-Cola 1.5L", "Bebidas", 900, 1500, 40, 10},
	{"BEB-002", "Bebida Sprite 1.5L", "Bebidas", 900, 1500, 35, 10},
	{"SNK-001", "Maní salado 100g", "Snacks", 300, 700, 50, 15},
}

// SeedCatalog creates the categories and starting products. Existing SKUs
// are left untouched so stock counted since the last seed survives.
func SeedCatalog(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		ids := make(map[string]uint, len(categories))
		for _, name := range categories {
			c := models.Category{Name: name}
			if err := tx.Where(models.Category{Name: name}).FirstOrCreate(&c).Error; err != nil {
				return err
			}
			ids[name] = c.ID
		}

		for _, sp := range catalog {
			catID := ids[sp.category]
			p := models.Product{
				SKU:        sp.sku,
				Name:       sp.name,
				CategoryID: &catID,
				Cost:       decimal.NewFromInt(sp.cost),
				UnitPrice:  decimal.NewFromInt(sp.price),
				Stock:      sp.stock,
				MinStock:   sp.min,
				Active:     true,
			}
			if err := tx.Where(models.Product{SKU: sp.sku}).FirstOrCreate(&p).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
