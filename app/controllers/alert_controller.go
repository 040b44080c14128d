package controllers

import (
	"errors"
	"net/http"

	"github.com/elchascon/botilleria/app/services"
	"github.com/elchascon/botilleria/pkg/bind"
	"github.com/elchascon/botilleria/pkg/logger"
	"github.com/elchascon/botilleria/pkg/response"
)

type AlertController struct {
	alerts *services.AlertService
}

func NewAlertController(s *services.AlertService) *AlertController {
	return &AlertController{alerts: s}
}

func (c *AlertController) Index(w http.ResponseWriter, r *http.Request) {
	alerts, err := c.alerts.Open(r.Context(), bind.IntQuery(r, "limit", 50))
	if err != nil {
		logger.WithCtx(r.Context()).Error("list alerts", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	response.Success(w, alerts)
}

func (c *AlertController) Acknowledge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w)
		return
	}

	a, err := c.alerts.Acknowledge(r.Context(), id)
	if errors.Is(err, services.ErrAlertNotFound) {
		response.NotFound(w)
		return
	}
	if err != nil {
		logger.WithCtx(r.Context()).Error("acknowledge alert", "alert_id", id, "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	response.Success(w, a)
}
