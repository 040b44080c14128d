package services

import (
	"context"
	"errors"
	"time"

	"github.com/elchascon/botilleria/app/models"
	"github.com/elchascon/botilleria/app/repositories"
	"github.com/elchascon/botilleria/config"
	"github.com/elchascon/botilleria/pkg/cache"
	"github.com/elchascon/botilleria/pkg/logger"
	"github.com/elchascon/botilleria/pkg/metrics"
	"github.com/elchascon/botilleria/pkg/orm"
	"gorm.io/gorm"
)

const activeWorkersKey = "workers:active"

type ShiftService struct {
	db  *orm.Query
	loc *time.Location
	now func() time.Time
}

func NewShiftService(db *gorm.DB) *ShiftService {
	return &ShiftService{db: orm.New(db), loc: config.Location(), now: time.Now}
}

// WithClock replaces the time source; tests pin "today" with it.
func (s *ShiftService) WithClock(now func() time.Time) *ShiftService {
	s.now = now
	return s
}

// Today is the store-local calendar day shifts are keyed by.
func (s *ShiftService) Today() string {
	return s.now().In(s.loc).Format("2006-01-02")
}

// GetOrCreateActive returns the worker's active shift for today, opening
// one with the worker's base shift type if none exists. The lookup and the
// insert are separate statements; two simultaneous starts for the same
// worker can both insert.
func (s *ShiftService) GetOrCreateActive(ctx context.Context, workerID uint) (models.Shift, error) {
	q := s.db.WithContext(ctx)
	workers := repositories.NewWorkerRepository(q)
	shifts := repositories.NewShiftRepository(q)

	w, err := workers.FindByID(workerID)
	if errors.Is(err, orm.ErrNotFound) {
		return models.Shift{}, ErrWorkerNotFound
	}
	if err != nil {
		return models.Shift{}, err
	}
	if !w.Active {
		return models.Shift{}, ErrWorkerInactive
	}

	day := s.Today()
	sh, err := shifts.ActiveFor(w.ID, day)
	if err == nil {
		sh.Worker = &w
		return sh, nil
	}
	if !errors.Is(err, orm.ErrNotFound) {
		return models.Shift{}, err
	}

	sh = models.Shift{
		WorkerID:  w.ID,
		Date:      day,
		ShiftType: w.BaseShift,
		StartedAt: s.now(),
		Active:    true,
	}
	if err := shifts.Create(&sh); err != nil {
		return models.Shift{}, err
	}
	sh.Worker = &w

	metrics.ShiftsOpen.Inc()
	logger.WithCtx(ctx).Info("shift started",
		"shift_id", sh.ID,
		"worker_id", w.ID,
		"date", day,
		"type", sh.ShiftType,
	)
	return sh, nil
}

// Close ends an active shift.
func (s *ShiftService) Close(ctx context.Context, shiftID uint) (models.Shift, error) {
	shifts := repositories.NewShiftRepository(s.db.WithContext(ctx))

	sh, err := shifts.FindByID(shiftID)
	if errors.Is(err, orm.ErrNotFound) {
		return sh, ErrShiftNotFound
	}
	if err != nil {
		return sh, err
	}
	if !sh.Active {
		return sh, ErrShiftNotActive
	}

	if err := shifts.Close(&sh, s.now()); err != nil {
		return sh, err
	}

	metrics.ShiftsOpen.Dec()
	logger.WithCtx(ctx).Info("shift closed", "shift_id", sh.ID, "worker_id", sh.WorkerID)
	return sh, nil
}

// ActiveWorkers lists workers available for a shift. The list is cached
// briefly; it changes only through admin edits.
func (s *ShiftService) ActiveWorkers(ctx context.Context) ([]models.Worker, error) {
	var out []models.Worker
	err := cache.Remember(ctx, activeWorkersKey, time.Minute, &out, func() error {
		var err error
		out, err = repositories.NewWorkerRepository(s.db.WithContext(ctx)).Active()
		return err
	})
	return out, err
}
