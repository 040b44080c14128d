package seeders

import (
	"context"
	"errors"

	"github.com/elchascon/botilleria/app/models"
	"github.com/elchascon/botilleria/app/services"
	"github.com/elchascon/botilleria/config"
	"github.com/elchascon/botilleria/pkg/auth"
	"gorm.io/gorm"
)

func init() {
	Register("workers", SeedWorkers)
	Register("admin", SeedAdmin)
}

var workers = []models.Worker{
	{Name: "Trabajador Día", BaseShift: models.ShiftDay, Active: true},
	{Name: "Trabajador Noche", BaseShift: models.ShiftNight, Active: true},
}

// SeedWorkers creates one worker per base shift.
func SeedWorkers(db *gorm.DB) error {
	for _, w := range workers {
		w := w
		if err := db.Where(models.Worker{Name: w.Name}).FirstOrCreate(&w).Error; err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin registers the ADMIN_EMAIL login unless it already exists.
func SeedAdmin(db *gorm.DB) error {
	email := config.Get("ADMIN_EMAIL", "admin@botilleria.local")
	password := config.Get("ADMIN_PASSWORD", "admin123")

	var existing models.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	_, err = services.NewAuthService(db).Register(context.Background(), "Administrador", email, password, auth.RoleAdmin)
	return err
}
