// Package api exposes the ledger over HTTP with gin.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type Handler struct {
	db  *sqlx.DB
	log *zap.Logger
}

// NewRouter wires every route onto a fresh gin engine. Each request works
// against db through the store functions; nothing is cached between requests.
func NewRouter(db *sqlx.DB, log *zap.Logger, development bool) *gin.Engine {
	if !development {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(RequestLogger(log))
	r.Use(Recovery(log))

	h := &Handler{db: db, log: log}

	r.GET("/healthz", h.Health)

	products := r.Group("/products")
	{
		products.GET("", h.ListProducts)
		products.POST("", h.CreateProduct)
		products.GET("/:id", h.GetProduct)
		products.PUT("/:id", h.UpdateProduct)
		products.DELETE("/:id", h.DeleteProduct)
		products.GET("/:id/sales", h.ProductSales)
		products.GET("/:id/purchases", h.ProductPurchases)
	}

	r.GET("/purchases", h.ListPurchases)
	r.POST("/purchases", h.RecordPurchase)

	r.GET("/sales", h.ListSales)
	r.POST("/sales", h.RecordSale)
	r.GET("/sales/:orderNumber", h.GetSale)

	r.GET("/analytics/stock", h.StockSeries)

	return r
}

func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "db": "error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "db": "connected"})
}

func int64Param(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return v, true
}
