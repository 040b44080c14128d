package repositories

import (
	"fmt"
	"time"

	"github.com/elchascon/botilleria/app/models"
	"github.com/elchascon/botilleria/pkg/orm"
)

type WorkerRepository struct {
	q *orm.Query
}

func NewWorkerRepository(q *orm.Query) *WorkerRepository {
	return &WorkerRepository{q: q}
}

func (r *WorkerRepository) FindByID(id uint) (models.Worker, error) {
	var w models.Worker
	err := r.q.Model(&models.Worker{}).Where("id = ?", id).First(&w)
	return w, err
}

// Active lists workers that can be put on shift, by name.
func (r *WorkerRepository) Active() ([]models.Worker, error) {
	var out []models.Worker
	err := r.q.Model(&models.Worker{}).Where("active = ?", true).Order("name").Get(&out)
	return out, err
}

type ShiftRepository struct {
	q *orm.Query
}

func NewShiftRepository(q *orm.Query) *ShiftRepository {
	return &ShiftRepository{q: q}
}

// ActiveFor returns the worker's active shift for day (2006-01-02).
func (r *ShiftRepository) ActiveFor(workerID uint, day string) (models.Shift, error) {
	var s models.Shift
	err := r.q.Model(&models.Shift{}).
		Where("worker_id = ? AND date = ? AND active = ?", workerID, day, true).
		Order("id").
		First(&s)
	return s, err
}

func (r *ShiftRepository) Create(s *models.Shift) error {
	return r.q.Create(s)
}

func (r *ShiftRepository) FindByID(id uint) (models.Shift, error) {
	var s models.Shift
	err := r.q.Model(&models.Shift{}).Preload("Worker").Where("id = ?", id).First(&s)
	return s, err
}

// Close stamps EndedAt and deactivates s.
func (r *ShiftRepository) Close(s *models.Shift, at time.Time) error {
	s.EndedAt = &at
	s.Active = false

	n, err := r.q.Model(&models.Shift{}).Where("id = ?", s.ID).Updates(map[string]interface{}{
		"ended_at": s.EndedAt,
		"active":   false,
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("close shift %d: %w", s.ID, orm.ErrNotFound)
	}
	return nil
}
