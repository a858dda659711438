package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/safar/shop-ledger/internal/inventory"
	"github.com/safar/shop-ledger/internal/models"
	"github.com/safar/shop-ledger/internal/store"
)

type purchaseRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Date      models.Date     `json:"date"`
}

type purchaseResponse struct {
	Purchase *models.Purchase `json:"purchase"`
	Product  *models.Product  `json:"product"`
}

type saleLineRequest struct {
	ProductID int64           `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Discount  decimal.Decimal `json:"discount"`
	Shipping  decimal.Decimal `json:"shipping"`
}

type saleRequest struct {
	Customer string            `json:"customer"`
	Date     models.Date       `json:"date"`
	Lines    []saleLineRequest `json:"lines"`
}

func (r saleRequest) toInventory() inventory.SaleRequest {
	lines := make([]inventory.SaleLineRequest, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = inventory.SaleLineRequest{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Discount:  l.Discount,
			Shipping:  l.Shipping,
		}
	}
	return inventory.SaleRequest{Customer: r.Customer, Date: r.Date.Time, Lines: lines}
}

func (h *Handler) RecordPurchase(c *gin.Context) {
	var req purchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	purchase, product, err := store.RecordPurchase(c.Request.Context(), h.db, inventory.PurchaseRequest{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		UnitPrice: req.UnitPrice,
		Date:      req.Date.Time,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("purchase recorded",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Int64("purchase_id", purchase.ID),
		zap.Int64("product_id", product.ID),
		zap.Stringer("quantity", purchase.Quantity),
		zap.Stringer("unit_cost", product.UnitCost),
	)
	c.JSON(http.StatusCreated, purchaseResponse{Purchase: purchase, Product: product})
}

func (h *Handler) ListPurchases(c *gin.Context) {
	purchases, err := store.ListPurchases(c.Request.Context(), h.db)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, purchases)
}

func (h *Handler) RecordSale(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	sale, err := store.RecordSale(c.Request.Context(), h.db, req.toInventory())
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("sale recorded",
		zap.String("request_id", c.GetString(requestIDKey)),
		zap.Int64("order_number", sale.OrderNumber),
		zap.Int("lines", len(sale.Lines)),
		zap.Stringer("total", sale.Total),
	)
	c.JSON(http.StatusCreated, sale)
}

// ListSales pages newest first; pass next_cursor back as cursor.
func (h *Handler) ListSales(c *gin.Context) {
	limit, ok := intQuery(c, "limit", store.DefaultPageSize)
	if !ok {
		return
	}

	page, err := store.ListSalesCursor(c.Request.Context(), h.db, c.Query("cursor"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *Handler) GetSale(c *gin.Context) {
	orderNumber, ok := int64Param(c, "orderNumber")
	if !ok {
		return
	}

	sale, err := store.GetSale(c.Request.Context(), h.db, orderNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sale)
}
