package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/safar/shop-ledger/internal/analytics"
	"github.com/safar/shop-ledger/internal/models"
	"github.com/safar/shop-ledger/internal/store"
)

type stockSeriesResponse struct {
	From      models.Date         `json:"from"`
	To        models.Date         `json:"to"`
	ProductID *int64              `json:"product_id,omitempty"`
	Points    []models.StockPoint `json:"points"`
}

// parseRange reads either month=YYYY-MM or from=YYYY-MM-DD&to=YYYY-MM-DD.
func parseRange(c *gin.Context) (models.DateRange, bool) {
	if month := c.Query("month"); month != "" {
		rng, err := models.ParseMonth(month)
		if err != nil {
			badRequest(c, "month must be YYYY-MM")
			return models.DateRange{}, false
		}
		return rng, true
	}

	fromRaw, toRaw := c.Query("from"), c.Query("to")
	if fromRaw == "" || toRaw == "" {
		badRequest(c, "either month or both from and to are required")
		return models.DateRange{}, false
	}

	from, err := models.ParseDay(fromRaw)
	if err != nil {
		badRequest(c, "from must be YYYY-MM-DD")
		return models.DateRange{}, false
	}
	to, err := models.ParseDay(toRaw)
	if err != nil {
		badRequest(c, "to must be YYYY-MM-DD")
		return models.DateRange{}, false
	}
	return models.NewDateRange(from, to), true
}

func (h *Handler) StockSeries(c *gin.Context) {
	rng, ok := parseRange(c)
	if !ok {
		return
	}

	var productID *int64
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			badRequest(c, "invalid product_id")
			return
		}
		productID = &id
	}

	seq, err := store.StockSeries(c.Request.Context(), h.db, productID, rng)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stockSeriesResponse{
		From:      models.NewDate(rng.From),
		To:        models.NewDate(rng.To),
		ProductID: productID,
		Points:    analytics.Collect(seq),
	})
}
