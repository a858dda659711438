// Package analytics rebuilds stock levels from the ledger. It never reads the
// products table: the series is derived from purchase and sale rows alone.
package analytics

import (
	"iter"
	"time"

	"github.com/shopspring/decimal"

	"github.com/safar/shop-ledger/internal/models"
)

// StockSeries yields one point per calendar day of rng, in order. Each value
// is the cumulative net movement (purchased minus sold) from rng.From up to
// and including that day, starting from zero. Rows outside rng, or for a
// different product when productID is set, are ignored.
//
// The returned sequence may be ranged over any number of times; every pass
// recomputes from the rows it was given. Bounds are truncated to their
// calendar day first, so a time of day or a non-UTC location is harmless.
func StockSeries(rng models.DateRange, productID *int64, purchases []models.Purchase, sales []models.SaleLine) iter.Seq2[time.Time, decimal.Decimal] {
	rng = models.NewDateRange(rng.From, rng.To)
	return func(yield func(time.Time, decimal.Decimal) bool) {
		if !rng.Valid() {
			return
		}

		net := dailyNet(rng, productID, purchases, sales)

		var stock decimal.Decimal
		for day := rng.From; !day.After(rng.To); day = day.AddDate(0, 0, 1) {
			stock = stock.Add(net[day.Unix()])
			if !yield(day, stock) {
				return
			}
		}
	}
}

// dailyNet groups movements by day, keyed on the Unix time of UTC midnight.
func dailyNet(rng models.DateRange, productID *int64, purchases []models.Purchase, sales []models.SaleLine) map[int64]decimal.Decimal {
	net := make(map[int64]decimal.Decimal)
	matches := func(id int64, date time.Time) bool {
		if productID != nil && id != *productID {
			return false
		}
		return rng.Contains(date)
	}

	for _, p := range purchases {
		if !matches(p.ProductID, p.Date.Time) {
			continue
		}
		key := models.Day(p.Date.Time).Unix()
		net[key] = net[key].Add(p.Quantity)
	}
	for _, s := range sales {
		if !matches(s.ProductID, s.Date.Time) {
			continue
		}
		key := models.Day(s.Date.Time).Unix()
		net[key] = net[key].Sub(s.Quantity)
	}

	return net
}

func Collect(seq iter.Seq2[time.Time, decimal.Decimal]) []models.StockPoint {
	points := []models.StockPoint{}
	for day, stock := range seq {
		points = append(points, models.StockPoint{Date: models.Date{Time: day}, Stock: stock})
	}
	return points
}
