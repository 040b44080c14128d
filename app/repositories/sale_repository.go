package repositories

import (
	"fmt"
	"time"

	"github.com/elchascon/botilleria/app/models"
	"github.com/elchascon/botilleria/pkg/orm"
	"gorm.io/gorm"
)

type SaleRepository struct {
	q *orm.Query
}

func NewSaleRepository(q *orm.Query) *SaleRepository {
	return &SaleRepository{q: q}
}

func (r *SaleRepository) Create(s *models.Sale) error {
	return r.q.Create(s)
}

func (r *SaleRepository) CreateItem(item *models.SaleItem) error {
	return r.q.Create(item)
}

// FinalizeTotal writes s.Total and s.Status.
func (r *SaleRepository) FinalizeTotal(s *models.Sale) error {
	_, err := r.q.Model(&models.Sale{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"total":  s.Total,
		"status": s.Status,
	})
	return err
}

// FindByID loads a sale with its lines, their products and the worker.
func (r *SaleRepository) FindByID(id uint) (models.Sale, error) {
	var s models.Sale
	err := r.q.Model(&models.Sale{}).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product").
		Preload("Worker").
		Where("id = ?", id).
		First(&s)
	return s, err
}

// FindForUpdate locks the sale row and loads its lines.
func (r *SaleRepository) FindForUpdate(id uint) (models.Sale, error) {
	var s models.Sale
	err := r.q.Model(&models.Sale{}).
		ForUpdate().
		Preload("Items").
		Where("id = ?", id).
		First(&s)
	return s, err
}

// MarkVoided stamps the void fields on s and persists them.
func (r *SaleRepository) MarkVoided(s *models.Sale, actorID *uint, reason string, at time.Time) error {
	s.Status = models.SaleStatusVoided
	s.VoidedBy = actorID
	s.VoidReason = reason
	s.VoidedAt = &at

	n, err := r.q.Model(&models.Sale{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"status":      s.Status,
		"voided_by":   s.VoidedBy,
		"void_reason": s.VoidReason,
		"voided_at":   s.VoidedAt,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("void sale %d: %w", s.ID, orm.ErrNotFound)
	}
	return nil
}

// Paginate lists sales newest first, optionally filtered by status.
func (r *SaleRepository) Paginate(page, limit int, status string) ([]models.Sale, orm.Pagination, error) {
	q := r.q.Model(&models.Sale{})
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var sales []models.Sale
	p, err := q.Order("id desc").Paginate(page, limit, &sales, "Worker")
	return sales, p, err
}
