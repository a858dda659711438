package store

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/safar/shop-ledger/internal/analytics"
	"github.com/safar/shop-ledger/internal/database"
	"github.com/safar/shop-ledger/internal/models"
)

// MaxSeriesDays bounds the span a single stock series may cover.
const MaxSeriesDays = 366

// StockSeries reconstructs daily stock over rng from the ledger, for one
// product or all of them when productID is nil. Purchases and sales are read
// in one snapshot, so a sale committed halfway through cannot be counted on
// one side only.
func StockSeries(ctx context.Context, db *sqlx.DB, productID *int64, rng models.DateRange) (iter.Seq2[time.Time, decimal.Decimal], error) {
	rng = models.NewDateRange(rng.From, rng.To)
	if !rng.Valid() {
		return nil, database.InvalidArgument("range", "must have from on or before to")
	}
	if rng.To.After(rng.From.AddDate(0, 0, MaxSeriesDays-1)) {
		return nil, database.InvalidArgument("range", fmt.Sprintf("must not span more than %d days", MaxSeriesDays))
	}

	var purchases []models.Purchase
	var sales []models.SaleLine

	err := database.WithTransaction(ctx, db, database.SnapshotTxOptions(), func(tx *sqlx.Tx) error {
		var err error
		purchases, err = purchasesBetween(ctx, tx, rng, productID)
		if err != nil {
			return err
		}
		sales, err = saleLinesBetween(ctx, tx, rng, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	return analytics.StockSeries(rng, productID, purchases, sales), nil
}
