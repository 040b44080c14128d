package services

import (
	"context"
	"errors"

	"github.com/elchascon/botilleria/app/models"
	"github.com/elchascon/botilleria/app/repositories"
	"github.com/elchascon/botilleria/pkg/auth"
	"github.com/elchascon/botilleria/pkg/orm"
	"gorm.io/gorm"
)

type AuthService struct {
	db *orm.Query
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: orm.New(db)}
}

// Login checks the password and returns a signed token for the user.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	user, err := repositories.NewUserRepository(s.db.WithContext(ctx)).FindByEmail(email)
	if errors.Is(err, orm.ErrNotFound) {
		return "", user, ErrInvalidCredentials
	}
	if err != nil {
		return "", user, err
	}

	if !auth.CheckPassword(user.Password, password) {
		return "", user, ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, user.Role)
	return token, user, err
}

// Register creates a user with a hashed password. Used by the seeder and CLI.
func (s *AuthService) Register(ctx context.Context, name, email, password, role string) (models.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}
	if role == "" {
		role = auth.RoleCashier
	}

	u := models.User{Name: name, Email: email, Password: hash, Role: role}
	err = repositories.NewUserRepository(s.db.WithContext(ctx)).Create(&u)
	return u, err
}
