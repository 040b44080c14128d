package controllers

import (
	"errors"
	"net/http"

	"github.com/elchascon/botilleria/app/services"
	"github.com/elchascon/botilleria/pkg/bind"
	"github.com/elchascon/botilleria/pkg/logger"
	"github.com/elchascon/botilleria/pkg/response"
)

// ShiftController serves workers and their shifts.
type ShiftController struct {
	shifts *services.ShiftService
}

func NewShiftController(s *services.ShiftService) *ShiftController {
	return &ShiftController{shifts: s}
}

func (c *ShiftController) Workers(w http.ResponseWriter, r *http.Request) {
	workers, err := c.shifts.ActiveWorkers(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("list workers", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	response.Success(w, workers)
}

type startShiftRequest struct {
	WorkerID uint `json:"trabajador_id" validate:"required"`
}

func (c *ShiftController) Start(w http.ResponseWriter, r *http.Request) {
	var body startShiftRequest
	errs, err := bind.JSON(r, &body)
	if err != nil {
		response.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if errs != nil {
		response.ValidationError(w, errs)
		return
	}

	sh, err := c.shifts.GetOrCreateActive(r.Context(), body.WorkerID)
	switch {
	case errors.Is(err, services.ErrWorkerNotFound):
		response.Error(w, http.StatusNotFound, "Trabajador no encontrado")
	case errors.Is(err, services.ErrWorkerInactive):
		response.Error(w, http.StatusUnprocessableEntity, "El trabajador está inactivo")
	case err != nil:
		logger.WithCtx(r.Context()).Error("start shift", "worker_id", body.WorkerID, "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	default:
		response.Success(w, sh)
	}
}

func (c *ShiftController) Close(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w)
		return
	}

	sh, err := c.shifts.Close(r.Context(), id)
	switch {
	case errors.Is(err, services.ErrShiftNotFound):
		response.NotFound(w)
	case errors.Is(err, services.ErrShiftNotActive):
		response.Conflict(w, "El turno ya está cerrado")
	case err != nil:
		logger.WithCtx(r.Context()).Error("close shift", "shift_id", id, "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	default:
		response.Success(w, sh)
	}
}
