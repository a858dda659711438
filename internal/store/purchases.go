package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/safar/shop-ledger/internal/database"
	"github.com/safar/shop-ledger/internal/inventory"
	"github.com/safar/shop-ledger/internal/models"
)

const purchaseColumns = `id, product_id, product_name, quantity, unit_price, total, purchase_date, created_at`

// RecordPurchase receives stock into a product at the weighted-average cost
// and appends the purchase to the ledger, both in one transaction. The
// returned product is the state after the purchase.
func RecordPurchase(ctx context.Context, db *sqlx.DB, req inventory.PurchaseRequest) (*models.Purchase, *models.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, err
	}
	date := models.Day(req.Date)

	var purchase models.Purchase
	var product models.Product

	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sqlx.Tx) error {
		current, err := lockProduct(ctx, tx, req.ProductID)
		if err != nil {
			return err
		}

		product, err = inventory.ApplyPurchase(current, req.Quantity, req.UnitPrice)
		if err != nil {
			return err
		}
		if err := saveStock(ctx, tx, &product); err != nil {
			return err
		}

		err = tx.GetContext(ctx, &purchase, `
			INSERT INTO purchases (product_id, product_name, quantity, unit_price, total, purchase_date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW())
			RETURNING `+purchaseColumns,
			product.ID, product.Name, req.Quantity, req.UnitPrice, req.Total(), dateParam(date))
		if err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	return &purchase, &product, nil
}

func ListPurchases(ctx context.Context, db *sqlx.DB) ([]models.Purchase, error) {
	purchases := []models.Purchase{}

	err := db.SelectContext(ctx, &purchases, `SELECT `+purchaseColumns+` FROM purchases ORDER BY purchase_date, id`)
	if err != nil {
		return nil, failed("list purchases", err)
	}

	return purchases, nil
}

// PurchasesForProduct works for deleted products too.
func PurchasesForProduct(ctx context.Context, db *sqlx.DB, productID int64) ([]models.Purchase, error) {
	purchases := []models.Purchase{}

	err := db.SelectContext(ctx, &purchases, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE product_id = $1
		ORDER BY purchase_date, id`,
		productID)
	if err != nil {
		return nil, failed("list purchases for product", err)
	}

	return purchases, nil
}

func purchasesBetween(ctx context.Context, q sqlx.QueryerContext, rng models.DateRange, productID *int64) ([]models.Purchase, error) {
	purchases := []models.Purchase{}

	err := sqlx.SelectContext(ctx, q, &purchases, `
		SELECT `+purchaseColumns+`
		FROM purchases
		WHERE purchase_date BETWEEN $1 AND $2
		  AND ($3::BIGINT IS NULL OR product_id = $3)
		ORDER BY purchase_date, id`,
		dateParam(rng.From), dateParam(rng.To), productID)
	if err != nil {
		return nil, fmt.Errorf("load purchases: %w", err)
	}

	return purchases, nil
}

func dateParam(t time.Time) string {
	return t.Format(models.DateLayout)
}
