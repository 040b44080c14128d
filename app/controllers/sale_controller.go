package controllers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/elchascon/botilleria/app/services"
	"github.com/elchascon/botilleria/pkg/bind"
	"github.com/elchascon/botilleria/pkg/logger"
	"github.com/elchascon/botilleria/pkg/response"
	"github.com/shopspring/decimal"
)

type SaleController struct {
	service   *services.SaleService
	ticketURL func(saleID uint) string
}

// NewSaleController takes the function that builds a sale's ticket link.
func NewSaleController(s *services.SaleService, ticketURL func(uint) string) *SaleController {
	return &SaleController{service: s, ticketURL: ticketURL}
}

// quantity accepts 3, 3.0 or "3". Anything that is not a whole number
// decodes as 0, which the sale rejects as an invalid quantity.
type quantity int

func (q *quantity) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(string(b)), `"`))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		*q = 0
		return nil
	}
	*q = quantity(f)
	return nil
}

type cartLine struct {
	ProductID uint     `json:"id"`
	Quantity  quantity `json:"cantidad"`
}

type confirmRequest struct {
	Items         []cartLine `json:"items"`
	PaymentMethod string     `json:"metodo_pago"`
	WorkerID      *uint      `json:"trabajador_id"`
	ShiftID       *uint      `json:"turno_id"`
}

type confirmResponse struct {
	OK        bool            `json:"ok"`
	SaleID    uint            `json:"venta_id"`
	Total     decimal.Decimal `json:"total"`
	TicketURL string          `json:"ticket_url"`
	Alerts    int             `json:"alertas"`
}

type failure struct {
	OK      bool              `json:"ok"`
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func fail(w http.ResponseWriter, status int, kind, message string) {
	response.JSON(w, status, failure{Error: kind, Message: message})
}

// Confirm is the checkout entry point. Its body is flat, not enveloped:
// the sale screen reads ok/venta_id/ticket_url directly.
func (c *SaleController) Confirm(w http.ResponseWriter, r *http.Request) {
	var body confirmRequest
	errs, err := bind.JSON(r, &body)
	if err != nil {
		fail(w, http.StatusBadRequest, "InvalidRequest", "Solicitud inválida.")
		return
	}
	if errs != nil {
		response.JSON(w, http.StatusBadRequest, failure{
			Error:   "InvalidRequest",
			Message: "Solicitud inválida.",
			Errors:  errs,
		})
		return
	}

	in := services.ConfirmInput{
		PaymentMethod: body.PaymentMethod,
		UserID:        actor(r),
		WorkerID:      body.WorkerID,
		ShiftID:       body.ShiftID,
	}
	for _, l := range body.Items {
		in.Items = append(in.Items, services.CartItem{ProductID: l.ProductID, Quantity: int(l.Quantity)})
	}

	res, err := c.service.Confirm(r.Context(), in)
	if err != nil {
		var se *services.SaleError
		switch {
		case errors.As(err, &se):
			fail(w, saleErrorStatus(se), se.Code(), se.Message())
		default:
			logger.WithCtx(r.Context()).Error("confirm sale", "error", err)
			fail(w, http.StatusInternalServerError, "TransactionFailure", "No se pudo registrar la venta.")
		}
		return
	}

	response.JSON(w, http.StatusOK, confirmResponse{
		OK:        true,
		SaleID:    res.SaleID,
		Total:     res.Total,
		TicketURL: c.ticketURL(res.SaleID),
		Alerts:    len(res.Alerts),
	})
}

func saleErrorStatus(se *services.SaleError) int {
	switch {
	case errors.Is(se, services.ErrConcurrencyConflict):
		return http.StatusConflict
	case errors.Is(se, services.ErrTransactionFailed):
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

type voidRequest struct {
	Reason string `json:"motivo" validate:"max=255"`
}

func (c *SaleController) Void(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		fail(w, http.StatusNotFound, "SaleNotFound", "Venta no encontrada.")
		return
	}

	var body voidRequest
	if r.ContentLength != 0 {
		errs, err := bind.JSON(r, &body)
		if err != nil || errs != nil {
			fail(w, http.StatusBadRequest, "InvalidRequest", "Solicitud inválida.")
			return
		}
	}

	err := c.service.Void(r.Context(), id, actor(r), body.Reason)
	switch {
	case errors.Is(err, services.ErrSaleNotFound):
		fail(w, http.StatusNotFound, "SaleNotFound", "Venta no encontrada.")
		return
	case errors.Is(err, services.ErrConcurrencyConflict):
		fail(w, http.StatusConflict, "ConcurrencyConflict", "La venta está siendo modificada. Intente nuevamente.")
		return
	case err != nil:
		logger.WithCtx(r.Context()).Error("void sale", "sale_id", id, "error", err)
		fail(w, http.StatusInternalServerError, "TransactionFailure", "No se pudo anular la venta.")
		return
	}

	response.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (c *SaleController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "id")
	if !ok {
		response.NotFound(w)
		return
	}

	sale, err := c.service.Find(r.Context(), id)
	if errors.Is(err, services.ErrSaleNotFound) {
		response.NotFound(w)
		return
	}
	if err != nil {
		logger.WithCtx(r.Context()).Error("show sale", "sale_id", id, "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	response.Success(w, sale)
}

func (c *SaleController) Index(w http.ResponseWriter, r *http.Request) {
	page := bind.IntQuery(r, "page", 1)
	limit := bind.IntQuery(r, "limit", 20)

	sales, p, err := c.service.List(r.Context(), page, limit, r.URL.Query().Get("status"))
	if err != nil {
		logger.WithCtx(r.Context()).Error("list sales", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	response.Paginated(w, sales, p)
}
