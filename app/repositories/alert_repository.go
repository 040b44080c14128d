package repositories

import (
	"fmt"
	"time"

	"github.com/elchascon/botilleria/app/models"
	"github.com/elchascon/botilleria/pkg/orm"
)

type AlertRepository struct {
	q *orm.Query
}

func NewAlertRepository(q *orm.Query) *AlertRepository {
	return &AlertRepository{q: q}
}

// OpenFor returns the product's unacknowledged alert, or orm.ErrNotFound.
func (r *AlertRepository) OpenFor(productID uint) (models.StockAlert, error) {
	var a models.StockAlert
	err := r.q.Model(&models.StockAlert{}).
		Where("product_id = ? AND acknowledged = ?", productID, false).
		First(&a)
	return a, err
}

func (r *AlertRepository) Create(a *models.StockAlert) error {
	return r.q.Create(a)
}

func (r *AlertRepository) FindByID(id uint) (models.StockAlert, error) {
	var a models.StockAlert
	err := r.q.Model(&models.StockAlert{}).Where("id = ?", id).First(&a)
	return a, err
}

// Open lists unacknowledged alerts newest first, with their product.
func (r *AlertRepository) Open(limit int) ([]models.StockAlert, error) {
	if limit <= 0 {
		limit = 50
	}
	var out []models.StockAlert
	err := r.q.Model(&models.StockAlert{}).
		Preload("Product").
		Where("acknowledged = ?", false).
		Order("id desc").
		Limit(limit).
		Get(&out)
	return out, err
}

// Acknowledge marks a as handled.
func (r *AlertRepository) Acknowledge(a *models.StockAlert, at time.Time) error {
	a.Acknowledged = true
	a.AcknowledgedAt = &at

	n, err := r.q.Model(&models.StockAlert{}).Where("id = ?", a.ID).Updates(map[string]interface{}{
		"acknowledged":    true,
		"acknowledged_at": a.AcknowledgedAt,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("acknowledge alert %d: %w", a.ID, orm.ErrNotFound)
	}
	return nil
}
