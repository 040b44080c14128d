package repositories

import (
	"fmt"
	"strings"
	"time"

	"github.com/elchascon/botilleria/app/models"
	"github.com/elchascon/botilleria/pkg/metrics"
	"github.com/elchascon/botilleria/pkg/orm"
	"gorm.io/gorm"
)

// DefaultSearchLimit caps quick-sale search results.
const DefaultSearchLimit = 20

type ProductRepository struct {
	q *orm.Query
}

func NewProductRepository(q *orm.Query) *ProductRepository {
	return &ProductRepository{q: q}
}

func (r *ProductRepository) FindByID(id uint) (models.Product, error) {
	var p models.Product
	err := r.q.Model(&models.Product{}).Where("id = ?", id).First(&p)
	return p, err
}

// FindForUpdate loads a product holding an exclusive row lock until the
// enclosing transaction ends. Must be called on a transaction query.
func (r *ProductRepository) FindForUpdate(id uint) (models.Product, error) {
	defer metrics.ObserveDBQuery("select_for_update", time.Now())

	var p models.Product
	err := r.q.Model(&models.Product{}).ForUpdate().Where("id = ?", id).First(&p)
	return p, err
}

// SaveStock writes p.Stock and nothing else.
func (r *ProductRepository) SaveStock(p *models.Product) error {
	n, err := r.q.Model(&models.Product{}).Where("id = ?", p.ID).Updates(map[string]interface{}{"stock": p.Stock})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("save stock for product %d: %w", p.ID, orm.ErrNotFound)
	}
	return nil
}

// AddStock increments stock by qty in a single UPDATE. Soft-deleted
// products are included so a void can always return its units.
func (r *ProductRepository) AddStock(id uint, qty int) error {
	n, err := r.q.Unscoped().Model(&models.Product{}).Where("id = ?", id).
		Updates(map[string]interface{}{"stock": gorm.Expr("stock + ?", qty)})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("add stock to product %d: %w", id, orm.ErrNotFound)
	}
	return nil
}

// Search returns sellable products whose name or SKU contains term,
// case-insensitively, ordered by name.
func (r *ProductRepository) Search(term string, limit int) ([]models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	if limit <= 0 || limit > DefaultSearchLimit {
		limit = DefaultSearchLimit
	}

	q := r.q.Model(&models.Product{}).
		Preload("Category").
		Where("active = ? AND locked = ?", true, false)

	if term = strings.TrimSpace(term); term != "" {
		like := "%" + strings.ToLower(term) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", like, like)
	}

	var out []models.Product
	err := q.Order("name").Limit(limit).Get(&out)
	return out, err
}

// LowStock returns active products at or below their minimum, lowest stock first.
func (r *ProductRepository) LowStock() ([]models.Product, error) {
	defer metrics.ObserveDBQuery("select", time.Now())

	var out []models.Product
	err := r.q.Model(&models.Product{}).
		Preload("Category").
		Where("active = ? AND min_stock > 0 AND stock <= min_stock", true).
		Order("stock, name").
		Get(&out)
	return out, err
}
