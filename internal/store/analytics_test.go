package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/safar/shop-ledger/internal/analytics"
	"github.com/safar/shop-ledger/internal/database"
	"github.com/safar/shop-ledger/internal/inventory"
	"github.com/safar/shop-ledger/internal/models"
	"github.com/safar/shop-ledger/internal/testutil"
)

func TestStockSeriesFromLedger(t *testing.T) {
	db := testutil.NewPostgres(t)
	ctx := context.Background()

	oil := stockedProduct(t, db, "Olive oil", "0", "0")
	vinegar := stockedProduct(t, db, "Vinegar", "0", "0")

	purchase := func(id int64, qty string, date time.Time) {
		_, _, err := RecordPurchase(ctx, db, inventory.PurchaseRequest{ProductID: id, Quantity: dec(qty), UnitPrice: dec("3"), Date: date})
		require.NoError(t, err)
	}
	purchase(oil.ID, "10", may(1))
	purchase(vinegar.ID, "6", may(1))
	purchase(oil.ID, "5", may(3))
	purchase(oil.ID, "7", time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC))

	_, err := RecordSale(ctx, db, inventory.SaleRequest{
		Customer: "Deli",
		Date:     may(2),
		Lines: []inventory.SaleLineRequest{
			{ProductID: oil.ID, Quantity: dec("4"), UnitPrice: dec("6")},
			{ProductID: vinegar.ID, Quantity: dec("1"), UnitPrice: dec("5")},
		},
	})
	require.NoError(t, err)

	rng := models.NewDateRange(may(1), may(4))

	t.Run("single product", func(t *testing.T) {
		seq, err := StockSeries(ctx, db, &oil.ID, rng)
		require.NoError(t, err)

		points := analytics.Collect(seq)
		require.Len(t, points, 4)

		want := []string{"10", "6", "11", "11"}
		for i, p := range points {
			assert.Equal(t, may(i+1), p.Date.Time)
			assert.True(t, dec(want[i]).Equal(p.Stock), "day %d: %s", i+1, p.Stock)
		}
	})

	t.Run("all products", func(t *testing.T) {
		seq, err := StockSeries(ctx, db, nil, rng)
		require.NoError(t, err)

		points := analytics.Collect(seq)
		assert.True(t, dec("16").Equal(points[3].Stock), "final %s", points[3].Stock)
	})

	t.Run("repeated calls agree", func(t *testing.T) {
		first, err := StockSeries(ctx, db, nil, models.MonthRange(2024, time.May))
		require.NoError(t, err)
		second, err := StockSeries(ctx, db, nil, models.MonthRange(2024, time.May))
		require.NoError(t, err)

		assert.Equal(t, analytics.Collect(first), analytics.Collect(second))
	})

	t.Run("range outside UTC", func(t *testing.T) {
		eastern := time.FixedZone("UTC-5", -5*60*60)
		local := models.DateRange{
			From: time.Date(2024, 5, 1, 0, 0, 0, 0, eastern),
			To:   time.Date(2024, 5, 4, 23, 30, 0, 0, eastern),
		}

		seq, err := StockSeries(ctx, db, &oil.ID, local)
		require.NoError(t, err)

		points := analytics.Collect(seq)
		require.Len(t, points, 4)
		assert.True(t, dec("11").Equal(points[3].Stock), "final %s", points[3].Stock)
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := StockSeries(ctx, db, nil, models.NewDateRange(may(4), may(1)))
		assert.ErrorIs(t, err, database.ErrInvalidArgument)
	})
}

func TestStockSeriesRejectsLongSpans(t *testing.T) {
	longest := models.NewDateRange(may(1), may(1).AddDate(0, 0, MaxSeriesDays))
	_, err := StockSeries(context.Background(), nil, nil, longest)
	assert.ErrorIs(t, err, database.ErrInvalidArgument)

	huge := models.NewDateRange(time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC))
	_, err = StockSeries(context.Background(), nil, nil, huge)
	assert.ErrorIs(t, err, database.ErrInvalidArgument)
}
