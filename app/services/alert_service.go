package services

import (
	"context"
	"errors"
	"time"

	"github.com/elchascon/botilleria/app/models"
	"github.com/elchascon/botilleria/app/repositories"
	"github.com/elchascon/botilleria/pkg/logger"
	"github.com/elchascon/botilleria/pkg/orm"
	"gorm.io/gorm"
)

type AlertService struct {
	db  *orm.Query
	now func() time.Time
}

func NewAlertService(db *gorm.DB) *AlertService {
	return &AlertService{db: orm.New(db), now: time.Now}
}

// Open lists unacknowledged alerts, newest first.
func (s *AlertService) Open(ctx context.Context, limit int) ([]models.StockAlert, error) {
	return repositories.NewAlertRepository(s.db.WithContext(ctx)).Open(limit)
}

// Acknowledge marks an alert handled. Acknowledging twice is harmless.
func (s *AlertService) Acknowledge(ctx context.Context, id uint) (models.StockAlert, error) {
	alerts := repositories.NewAlertRepository(s.db.WithContext(ctx))

	a, err := alerts.FindByID(id)
	if errors.Is(err, orm.ErrNotFound) {
		return a, ErrAlertNotFound
	}
	if err != nil || a.Acknowledged {
		return a, err
	}

	if err := alerts.Acknowledge(&a, s.now()); err != nil {
		return a, err
	}
	logger.WithCtx(ctx).Info("stock alert acknowledged", "alert_id", a.ID, "product_id", a.ProductID)
	return a, nil
}
