package controllers

import (
	"net/http"

	"github.com/elchascon/botilleria/app/services"
	"github.com/elchascon/botilleria/pkg/logger"
	"github.com/elchascon/botilleria/pkg/response"
	"github.com/shopspring/decimal"
)

type ProductController struct {
	catalog *services.CatalogService
}

func NewProductController(c *services.CatalogService) *ProductController {
	return &ProductController{catalog: c}
}

type searchResult struct {
	ID    uint            `json:"id"`
	SKU   string          `json:"sku"`
	Name  string          `json:"nombre"`
	Price decimal.Decimal `json:"precio"`
	Stock int             `json:"stock"`
}

// Search feeds the live finder on the sale screen.
func (c *ProductController) Search(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalog.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		logger.WithCtx(r.Context()).Error("search products", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	results := make([]searchResult, 0, len(products))
	for _, p := range products {
		results = append(results, searchResult{ID: p.ID, SKU: p.SKU, Name: p.Name, Price: p.UnitPrice, Stock: p.Stock})
	}
	response.JSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

func (c *ProductController) LowStock(w http.ResponseWriter, r *http.Request) {
	products, err := c.catalog.LowStock(r.Context())
	if err != nil {
		logger.WithCtx(r.Context()).Error("low stock", "error", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	response.Success(w, map[string]interface{}{
		"count":    len(products),
		"products": products,
	})
}
