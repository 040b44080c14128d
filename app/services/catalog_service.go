package services

import (
	"context"

	"github.com/elchascon/botilleria/app/models"
	"github.com/elchascon/botilleria/app/repositories"
	"github.com/elchascon/botilleria/pkg/orm"
	"gorm.io/gorm"
)

// CatalogService answers the read-only product lookups of the sale screen.
// Results are never cached: stock must be current.
type CatalogService struct {
	db *orm.Query
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{db: orm.New(db)}
}

// Search finds sellable products by name or SKU fragment.
func (s *CatalogService) Search(ctx context.Context, term string) ([]models.Product, error) {
	return repositories.NewProductRepository(s.db.WithContext(ctx)).Search(term, repositories.DefaultSearchLimit)
}

func (s *CatalogService) LowStock(ctx context.Context) ([]models.Product, error) {
	return repositories.NewProductRepository(s.db.WithContext(ctx)).LowStock()
}
