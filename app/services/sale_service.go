package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/elchascon/botilleria/app/events"
	"github.com/elchascon/botilleria/app/models"
	"github.com/elchascon/botilleria/app/repositories"
	"github.com/elchascon/botilleria/pkg/database"
	"github.com/elchascon/botilleria/pkg/event"
	"github.com/elchascon/botilleria/pkg/logger"
	"github.com/elchascon/botilleria/pkg/metrics"
	"github.com/elchascon/botilleria/pkg/orm"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CartItem is one requested line: a product and how many units.
type CartItem struct {
	ProductID uint
	Quantity  int
}

// ConfirmInput carries everything a confirmation needs. UserID, WorkerID
// and ShiftID are optional; ids that do not resolve are recorded as nil.
type ConfirmInput struct {
	Items         []CartItem
	PaymentMethod string
	UserID        *uint
	WorkerID      *uint
	ShiftID       *uint
}

type ConfirmResult struct {
	SaleID uint
	Total  decimal.Decimal
	Alerts []models.StockAlert
}

type SaleService struct {
	db  *orm.Query
	bus *event.Bus
	now func() time.Time
}

// NewSaleService binds the service to db. A nil bus uses the process-wide one.
func NewSaleService(db *gorm.DB, bus *event.Bus) *SaleService {
	if bus == nil {
		bus = event.Default()
	}
	return &SaleService{db: orm.New(db), bus: bus, now: time.Now}
}

// Confirm records a sale and takes its items out of stock in one
// transaction. Each product row is locked on first touch and stays locked
// until commit or rollback, so concurrent sales of the same product queue
// instead of overselling. Any failure rolls back every line.
func (s *SaleService) Confirm(ctx context.Context, in ConfirmInput) (*ConfirmResult, error) {
	start := time.Now()
	log := logger.WithCtx(ctx)

	if err := in.check(); err != nil {
		metrics.RecordSaleRejected(KindCode(err.Kind))
		return nil, err
	}

	method := in.PaymentMethod
	if method == "" {
		method = models.PaymentCash
	}

	var (
		sale    models.Sale
		created []models.StockAlert
		touched []models.Product
	)

	err := s.db.WithContext(ctx).Transaction(func(tx *orm.Query) error {
		products := repositories.NewProductRepository(tx)
		sales := repositories.NewSaleRepository(tx)
		alerts := repositories.NewAlertRepository(tx)

		userID, err := s.resolveUser(tx, in.UserID)
		if err != nil {
			return err
		}
		workerID, err := s.resolveWorker(tx, in.WorkerID)
		if err != nil {
			return err
		}
		shiftID, err := s.resolveShift(tx, in.ShiftID)
		if err != nil {
			return err
		}

		sale = models.Sale{
			UserID:        userID,
			WorkerID:      workerID,
			ShiftID:       shiftID,
			PaymentMethod: method,
			Total:         decimal.Zero,
			Status:        models.SaleStatusPending,
		}
		if err := sales.Create(&sale); err != nil {
			return err
		}

		total := decimal.Zero
		for _, it := range in.Items {
			p, err := products.FindForUpdate(it.ProductID)
			if errors.Is(err, orm.ErrNotFound) {
				return &SaleError{Kind: ErrProductNotFound, ProductID: it.ProductID}
			}
			if err != nil {
				return err
			}

			if !p.Sellable() {
				return &SaleError{Kind: ErrProductUnavailable, ProductID: p.ID, ProductName: p.Name, Locked: p.Locked}
			}
			if p.Stock < it.Quantity {
				return &SaleError{
					Kind:        ErrInsufficientStock,
					ProductID:   p.ID,
					ProductName: p.Name,
					Requested:   it.Quantity,
					Available:   p.Stock,
				}
			}

			item := models.SaleItem{
				SaleID:    sale.ID,
				ProductID: p.ID,
				Quantity:  it.Quantity,
				UnitPrice: p.UnitPrice,
			}
			if err := sales.CreateItem(&item); err != nil {
				return err
			}
			sale.Items = append(sale.Items, item)

			p.Stock -= it.Quantity
			if err := products.SaveStock(&p); err != nil {
				return err
			}
			touched = append(touched, p)

			if p.BelowMinimum() {
				a, err := openAlert(alerts, p)
				if err != nil {
					return err
				}
				if a != nil {
					created = append(created, *a)
				}
			}

			total = total.Add(item.Subtotal)
		}

		sale.Total = total
		sale.Status = models.SaleStatusConfirmed
		return sales.FinalizeTotal(&sale)
	})
	metrics.SaleConfirmDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		se := classify(err)
		metrics.RecordSaleRejected(se.Code())
		log.Warn("sale rejected",
			"kind", se.Code(),
			"product_id", se.ProductID,
			"error", err,
		)
		return nil, se
	}

	metrics.SalesConfirmed.WithLabelValues(method).Inc()
	metrics.SaleAmount.Observe(sale.Total.InexactFloat64())
	metrics.StockAlertsCreated.Add(float64(len(created)))

	log.Info("sale confirmed",
		"sale_id", sale.ID,
		"total", sale.Total.String(),
		"items", len(sale.Items),
		"payment_method", method,
	)

	s.bus.Fire(ctx, event.New(events.SaleConfirmed, events.SaleConfirmedPayload{
		SaleID:        sale.ID,
		Total:         sale.Total,
		PaymentMethod: method,
		UserID:        sale.UserID,
		WorkerID:      sale.WorkerID,
		ShiftID:       sale.ShiftID,
		Lines:         saleLines(sale.Items),
	}))
	for _, a := range created {
		p := findProduct(touched, a.ProductID)
		s.bus.Fire(ctx, event.New(events.StockAlert, events.StockAlertPayload{
			AlertID:   a.ID,
			ProductID: a.ProductID,
			Stock:     p.Stock,
			MinStock:  p.MinStock,
			Message:   a.Message,
		}))
	}

	return &ConfirmResult{SaleID: sale.ID, Total: sale.Total, Alerts: created}, nil
}

func (in ConfirmInput) check() *SaleError {
	if len(in.Items) == 0 {
		return &SaleError{Kind: ErrEmptyCart}
	}
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return &SaleError{Kind: ErrInvalidQuantity, ProductID: it.ProductID, Requested: it.Quantity}
		}
	}
	if in.PaymentMethod != "" && !models.ValidPaymentMethod(in.PaymentMethod) {
		return &SaleError{Kind: ErrInvalidPaymentMethod}
	}
	return nil
}

// resolveUser keeps the acting user only while the account still exists;
// a token can outlive its user row.
func (s *SaleService) resolveUser(tx *orm.Query, id *uint) (*uint, error) {
	if id == nil {
		return nil, nil
	}
	u, err := repositories.NewUserRepository(tx).FindByID(*id)
	if errors.Is(err, orm.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u.ID, nil
}

func (s *SaleService) resolveWorker(tx *orm.Query, id *uint) (*uint, error) {
	if id == nil {
		return nil, nil
	}
	w, err := repositories.NewWorkerRepository(tx).FindByID(*id)
	if errors.Is(err, orm.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w.ID, nil
}

func (s *SaleService) resolveShift(tx *orm.Query, id *uint) (*uint, error) {
	if id == nil {
		return nil, nil
	}
	sh, err := repositories.NewShiftRepository(tx).FindByID(*id)
	if errors.Is(err, orm.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sh.ID, nil
}

// openAlert raises a low-stock alert for p unless one is still
// unacknowledged. It returns nil when nothing was created.
func openAlert(alerts *repositories.AlertRepository, p models.Product) (*models.StockAlert, error) {
	_, err := alerts.OpenFor(p.ID)
	if err == nil {
		return nil, nil
	}
	if !errors.Is(err, orm.ErrNotFound) {
		return nil, err
	}

	a := models.StockAlert{ProductID: p.ID, Message: models.LowStockMessage(p)}
	if err := alerts.Create(&a); err != nil {
		return nil, err
	}
	return &a, nil
}

// classify turns a rollback cause into a *SaleError.
func classify(err error) *SaleError {
	var se *SaleError
	if errors.As(err, &se) {
		return se
	}
	if database.IsLockConflict(err) {
		return &SaleError{Kind: ErrConcurrencyConflict, Err: err}
	}
	return &SaleError{Kind: ErrTransactionFailed, Err: err}
}

// Void cancels a sale and puts its units back in stock. Voiding a sale that
// is already voided succeeds without changing anything.
func (s *SaleService) Void(ctx context.Context, saleID uint, actorID *uint, reason string) error {
	log := logger.WithCtx(ctx)

	var (
		sale   models.Sale
		voided bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *orm.Query) error {
		sales := repositories.NewSaleRepository(tx)
		products := repositories.NewProductRepository(tx)

		var err error
		sale, err = sales.FindForUpdate(saleID)
		if errors.Is(err, orm.ErrNotFound) {
			return ErrSaleNotFound
		}
		if err != nil {
			return err
		}
		if sale.IsVoided() {
			return nil
		}

		for _, item := range sale.Items {
			if err := products.AddStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}

		voided = true
		return sales.MarkVoided(&sale, actorID, reason, s.now())
	})
	switch {
	case errors.Is(err, ErrSaleNotFound):
		return err
	case database.IsLockConflict(err):
		return fmt.Errorf("void sale %d: %w: %v", saleID, ErrConcurrencyConflict, err)
	case err != nil:
		return fmt.Errorf("void sale %d: %w", saleID, err)
	}

	if !voided {
		log.Debug("sale already voided", "sale_id", saleID)
		return nil
	}

	metrics.SalesVoided.Inc()
	log.Info("sale voided", "sale_id", saleID, "voided_by", idOrZero(actorID), "reason", reason)

	s.bus.Fire(ctx, event.New(events.SaleVoided, events.SaleVoidedPayload{
		SaleID:   sale.ID,
		VoidedBy: sale.VoidedBy,
		Reason:   sale.VoidReason,
		VoidedAt: *sale.VoidedAt,
		Lines:    saleLines(sale.Items),
	}))
	return nil
}

// Find loads a sale with its lines for display.
func (s *SaleService) Find(ctx context.Context, id uint) (models.Sale, error) {
	sale, err := repositories.NewSaleRepository(s.db.WithContext(ctx)).FindByID(id)
	if errors.Is(err, orm.ErrNotFound) {
		return sale, ErrSaleNotFound
	}
	return sale, err
}

// List pages through sales newest first; status may be empty.
func (s *SaleService) List(ctx context.Context, page, limit int, status string) ([]models.Sale, orm.Pagination, error) {
	return repositories.NewSaleRepository(s.db.WithContext(ctx)).Paginate(page, limit, status)
}

func saleLines(items []models.SaleItem) []events.SaleLine {
	out := make([]events.SaleLine, 0, len(items))
	for _, it := range items {
		out = append(out, events.SaleLine{ProductID: it.ProductID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	return out
}

func findProduct(ps []models.Product, id uint) models.Product {
	for i := len(ps) - 1; i >= 0; i-- {
		if ps[i].ID == id {
			return ps[i]
		}
	}
	var p models.Product
	p.ID = id
	return p
}

func idOrZero(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}
