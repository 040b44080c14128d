package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ShiftDay   = "DIA"   // 11:00–19:00
	ShiftNight = "NOCHE" // 19:00–01:00
)

// Worker is a person who staffs the counter. Not a login.
type Worker struct {
	gorm.Model
	Name      string `gorm:"size:255;not null" json:"name"`
	BaseShift string `gorm:"size:10;not null;default:DIA" json:"base_shift"`
	Active    bool   `gorm:"not null;index" json:"active"`
}

// Shift is one worker's stint on one calendar day. Date is the store-local
// day formatted as 2006-01-02.
type Shift struct {
	gorm.Model
	WorkerID  uint       `gorm:"not null;index:idx_shift_worker_day" json:"worker_id"`
	Worker    *Worker    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"worker,omitempty"`
	Date      string     `gorm:"size:10;not null;index:idx_shift_worker_day" json:"date"`
	ShiftType string     `gorm:"size:10;not null" json:"shift_type"`
	StartedAt time.Time  `gorm:"not null" json:"started_at"`
	EndedAt   *time.Time `json:"ended_at"`
	Active    bool       `gorm:"not null;index" json:"active"`
}
