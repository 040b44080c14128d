package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elchascon/botilleria/pkg/logger"
	"gorm.io/gorm"
)

// FailedJobRecord is a job that exhausted its retries. The table is
// created by the failed_jobs migration.
type FailedJobRecord struct {
	ID       uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	JobType  string    `gorm:"size:255;not null;index" json:"job_type"`
	Payload  string    `gorm:"type:text;not null" json:"payload"`
	Error    string    `gorm:"type:text" json:"error"`
	Attempts int       `gorm:"not null;default:0" json:"attempts"`
	FailedAt time.Time `gorm:"autoCreateTime" json:"failed_at"`
}

func (FailedJobRecord) TableName() string { return "failed_jobs" }

// FailedStore persists failed jobs beyond the process lifetime.
type FailedStore interface {
	Save(ctx context.Context, rec *FailedJobRecord) error
}

// GormFailedStore writes failed jobs to the failed_jobs table.
type GormFailedStore struct {
	DB *gorm.DB
}

func (s GormFailedStore) Save(ctx context.Context, rec *FailedJobRecord) error {
	return s.DB.WithContext(ctx).Create(rec).Error
}

// UseStore configures where the manager persists failed jobs. nil keeps
// them in memory only.
func (m *Manager) UseStore(s FailedStore) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.store = s
}

// UseDB persists failed jobs of the default manager to db.
func UseDB(db *gorm.DB) {
	defaultManager.UseStore(GormFailedStore{DB: db})
}

func (m *Manager) persistFailed(ctx context.Context, job Job, typeName string, lastErr error, attempts int) {
	now := time.Now()

	m.mu.Lock()
	m.failed = append(m.failed, FailedJob{
		Type: typeName, Job: job, Err: lastErr, FailedAt: now, Attempts: attempts,
	})
	store := m.store
	m.mu.Unlock()

	if store == nil {
		return
	}

	payload, err := json.Marshal(job)
	if err != nil {
		payload = []byte(fmt.Sprintf(`{"error": "could not marshal: %v"}`, err))
	}

	errText := ""
	if lastErr != nil {
		errText = lastErr.Error()
	}

	record := FailedJobRecord{
		JobType:  typeName,
		Payload:  string(payload),
		Error:    errText,
		Attempts: attempts,
		FailedAt: now,
	}

	// Background ctx: the job's ctx may already be cancelled at shutdown.
	if err := store.Save(context.WithoutCancel(ctx), &record); err != nil {
		logger.WithCtx(ctx).Error("queue: persist failed job", "error", err)
	}
}
