package routes

import (
	"strconv"
	"time"

	"github.com/elchascon/botilleria/app/controllers"
	"github.com/elchascon/botilleria/app/services"
	"github.com/elchascon/botilleria/pkg/auth"
	"github.com/elchascon/botilleria/pkg/event"
	"github.com/elchascon/botilleria/pkg/idempotency"
	"github.com/elchascon/botilleria/pkg/middleware"
	"github.com/elchascon/botilleria/pkg/rbac"
	"github.com/elchascon/botilleria/pkg/router"
	"gorm.io/gorm"
)

// Deps are the runtime collaborators the API handlers need.
type Deps struct {
	DB             *gorm.DB
	Bus            *event.Bus
	Idempotency    idempotency.Store
	IdempotencyTTL time.Duration
}

func RegisterAPI(r *router.Router, d Deps) {
	if d.Idempotency == nil {
		d.Idempotency = idempotency.NewMemoryStore()
	}
	if d.IdempotencyTTL <= 0 {
		d.IdempotencyTTL = 24 * time.Hour
	}

	ticketURL := func(id uint) string {
		u, _ := r.URL("sales.show", map[string]string{"id": strconv.FormatUint(uint64(id), 10)})
		return u
	}

	authController := controllers.NewAuthController(services.NewAuthService(d.DB))
	saleController := controllers.NewSaleController(services.NewSaleService(d.DB, d.Bus), ticketURL)
	productController := controllers.NewProductController(services.NewCatalogService(d.DB))
	shiftController := controllers.NewShiftController(services.NewShiftService(d.DB))
	alertController := controllers.NewAlertController(services.NewAlertService(d.DB))

	adminOnly := rbac.HasRole(auth.RoleAdmin)

	api := r.Group("/api")
	api.Post("/login", "auth.login", authController.Login)

	protected := api.Group("", middleware.AuthMiddleware)

	protected.Get("/products/search", "products.search", productController.Search)
	protected.Get("/products/low-stock", "products.low_stock", productController.LowStock)

	protected.Get("/sales", "sales.index", saleController.Index)
	protected.Post("/sales", "sales.confirm", saleController.Confirm,
		idempotency.Middleware(d.Idempotency, d.IdempotencyTTL))
	protected.Get("/sales/{id}", "sales.show", saleController.Show)
	protected.Post("/sales/{id}/void", "sales.void", saleController.Void, adminOnly)

	protected.Get("/workers", "workers.index", shiftController.Workers)
	protected.Post("/shifts", "shifts.start", shiftController.Start)
	protected.Post("/shifts/{id}/close", "shifts.close", shiftController.Close)

	protected.Get("/alerts", "alerts.index", alertController.Index)
	protected.Post("/alerts/{id}/ack", "alerts.ack", alertController.Acknowledge, adminOnly)
}
