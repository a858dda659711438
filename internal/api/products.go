package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/safar/shop-ledger/internal/store"
)

type createProductRequest struct {
	Name          string `json:"name"`
	UnitOfMeasure string `json:"unit_of_measure"`
}

type updateProductRequest struct {
	Name          string          `json:"name"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	UnitOfMeasure string          `json:"unit_of_measure"`
}

// ListProducts returns every product, or one page of them when page is given.
func (h *Handler) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if c.Query("page") == "" {
		products, err := store.ListProducts(ctx, h.db)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, products)
		return
	}

	page, ok := intQuery(c, "page", 1)
	if !ok {
		return
	}
	pageSize, ok := intQuery(c, "page_size", store.DefaultPageSize)
	if !ok {
		return
	}

	result, err := store.ListProductsPage(ctx, h.db, page, pageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	product, err := store.CreateProduct(c.Request.Context(), h.db, req.Name, req.UnitOfMeasure)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	product, err := store.GetProduct(c.Request.Context(), h.db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	var req updateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	product, err := store.UpdateProduct(c.Request.Context(), h.db, id, req.Name, req.Quantity, req.UnitCost, req.UnitOfMeasure)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	if err := store.DeleteProduct(c.Request.Context(), h.db, id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) ProductSales(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	lines, err := store.SalesForProduct(c.Request.Context(), h.db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, lines)
}

func (h *Handler) ProductPurchases(c *gin.Context) {
	id, ok := int64Param(c, "id")
	if !ok {
		return
	}

	purchases, err := store.PurchasesForProduct(c.Request.Context(), h.db, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}
