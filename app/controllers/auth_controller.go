package controllers

import (
	"errors"
	"net/http"

	"github.com/elchascon/botilleria/app/services"
	"github.com/elchascon/botilleria/pkg/bind"
	"github.com/elchascon/botilleria/pkg/logger"
	"github.com/elchascon/botilleria/pkg/response"
)

type AuthController struct {
	service *services.AuthService
}

func NewAuthController(s *services.AuthService) *AuthController {
	return &AuthController{service: s}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var body loginRequest
	errs, err := bind.JSON(r, &body)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	token, user, err := c.service.Login(r.Context(), body.Email, body.Password)
	if errors.Is(err, services.ErrInvalidCredentials) {
		response.Error(w, http.StatusUnauthorized, "Credenciales inválidas")
		return
	}
	if err != nil {
		logger.WithCtx(r.Context()).Error("login failed", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	response.Success(w, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}
