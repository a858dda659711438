package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/safar/shop-ledger/internal/database"
	"github.com/safar/shop-ledger/internal/inventory"
	"github.com/safar/shop-ledger/internal/models"
)

const saleOrderCounter = "sale_order_number"

const saleColumns = `id, order_number, customer, sale_date, subtotal, discount, shipping, total, created_at`

const saleLineSelect = `
	SELECT l.id, l.sale_id, l.product_id, l.product_name, l.quantity, l.unit_price,
	       l.discount, l.shipping, l.subtotal, s.order_number, s.customer, s.sale_date
	FROM sale_lines l
	JOIN sales s ON s.id = l.sale_id`

// RecordSale books a whole order or nothing. Products are locked in
// ascending id order and every line is checked against stock before the
// first write. The order number comes from a counter row updated in the
// same transaction, so a rolled-back sale never consumes one.
func RecordSale(ctx context.Context, db *sqlx.DB, req inventory.SaleRequest) (*models.Sale, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	date := models.Day(req.Date)
	requested := req.RequestedByProduct()

	ids := make([]int64, 0, len(requested))
	for id := range requested {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var sale *models.Sale

	err := database.WithRetry(ctx, db, database.DefaultTxOptions(), func(tx *sqlx.Tx) error {
		products := make(map[int64]models.Product, len(ids))
		for _, id := range ids {
			product, err := lockProduct(ctx, tx, id)
			if err != nil {
				return err
			}
			product, err = inventory.ApplySale(product, requested[id])
			if err != nil {
				return err
			}
			products[id] = product
		}

		orderNumber, err := nextOrderNumber(ctx, tx)
		if err != nil {
			return err
		}

		totals := inventory.OrderTotals(req.Lines)
		header := &models.Sale{}
		err = tx.GetContext(ctx, header, `
			INSERT INTO sales (order_number, customer, sale_date, subtotal, discount, shipping, total, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			RETURNING `+saleColumns,
			orderNumber, strings.TrimSpace(req.Customer), dateParam(date), totals.Subtotal, totals.Discount, totals.Shipping, totals.Total)
		if err != nil {
			return fmt.Errorf("create sale: %w", err)
		}

		header.Lines = make([]models.SaleLine, 0, len(req.Lines))
		for _, l := range req.Lines {
			line := models.SaleLine{}
			err := tx.GetContext(ctx, &line, `
				INSERT INTO sale_lines (sale_id, product_id, product_name, quantity, unit_price, discount, shipping, subtotal)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
				RETURNING id, sale_id, product_id, product_name, quantity, unit_price, discount, shipping, subtotal`,
				header.ID, l.ProductID, products[l.ProductID].Name, l.Quantity, l.UnitPrice, l.Discount, l.Shipping, l.Subtotal())
			if err != nil {
				return fmt.Errorf("create sale line: %w", err)
			}
			line.OrderNumber = header.OrderNumber
			line.Customer = header.Customer
			line.Date = header.Date
			header.Lines = append(header.Lines, line)
		}

		for _, id := range ids {
			product := products[id]
			if err := saveStock(ctx, tx, &product); err != nil {
				return err
			}
		}

		sale = header
		return nil
	})
	if err != nil {
		return nil, err
	}

	return sale, nil
}

func nextOrderNumber(ctx context.Context, tx *sqlx.Tx) (int64, error) {
	var orderNumber int64

	err := tx.GetContext(ctx, &orderNumber,
		`UPDATE ledger_counters SET value = value + 1 WHERE name = $1 RETURNING value`,
		saleOrderCounter)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("counter %q is missing", saleOrderCounter)
		}
		return 0, fmt.Errorf("next order number: %w", err)
	}

	return orderNumber, nil
}

func GetSale(ctx context.Context, db *sqlx.DB, orderNumber int64) (*models.Sale, error) {
	sale := &models.Sale{}

	err := db.GetContext(ctx, sale, `SELECT `+saleColumns+` FROM sales WHERE order_number = $1`, orderNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: order number %d", database.ErrSaleNotFound, orderNumber)
		}
		return nil, failed("get sale", err)
	}

	sales := []models.Sale{*sale}
	if err := attachLines(ctx, db, sales); err != nil {
		return nil, failed("get sale lines", err)
	}

	return &sales[0], nil
}

// ListSales returns every sale with its lines, oldest order first.
func ListSales(ctx context.Context, db *sqlx.DB) ([]models.Sale, error) {
	sales := []models.Sale{}

	if err := db.SelectContext(ctx, &sales, `SELECT `+saleColumns+` FROM sales ORDER BY order_number`); err != nil {
		return nil, failed("list sales", err)
	}
	if err := attachLines(ctx, db, sales); err != nil {
		return nil, failed("list sale lines", err)
	}

	return sales, nil
}

// ListSalesCursor pages through sales newest first.
func ListSalesCursor(ctx context.Context, db *sqlx.DB, cursor string, limit int) (*CursorPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}
	limit = normalizeLimit(limit)

	sales := []models.Sale{}
	err = db.SelectContext(ctx, &sales, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE order_number < $1
		ORDER BY order_number DESC
		LIMIT $2`,
		cursorData.OrderNumber, limit+1)
	if err != nil {
		return nil, failed("list sales", err)
	}

	hasMore := len(sales) > limit
	if hasMore {
		sales = sales[:limit]
	}
	if err := attachLines(ctx, db, sales); err != nil {
		return nil, failed("list sale lines", err)
	}

	var nextCursor string
	if hasMore && len(sales) > 0 {
		nextCursor = EncodeCursor(SaleCursor{OrderNumber: sales[len(sales)-1].OrderNumber})
	}

	return &CursorPage{
		Items:      sales,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

// SalesForProduct lists the lines that sold productID, with their order
// number, customer and date.
func SalesForProduct(ctx context.Context, db *sqlx.DB, productID int64) ([]models.SaleLine, error) {
	lines := []models.SaleLine{}

	err := db.SelectContext(ctx, &lines, saleLineSelect+`
		WHERE l.product_id = $1
		ORDER BY s.order_number, l.id`,
		productID)
	if err != nil {
		return nil, failed("list sales for product", err)
	}

	return lines, nil
}

func attachLines(ctx context.Context, q sqlx.QueryerContext, sales []models.Sale) error {
	if len(sales) == 0 {
		return nil
	}

	ids := make([]int64, len(sales))
	index := make(map[int64]int, len(sales))
	for i, s := range sales {
		ids[i] = s.ID
		index[s.ID] = i
		sales[i].Lines = []models.SaleLine{}
	}

	lines := []models.SaleLine{}
	err := sqlx.SelectContext(ctx, q, &lines, saleLineSelect+`
		WHERE l.sale_id = ANY($1)
		ORDER BY l.id`,
		pq.Array(ids))
	if err != nil {
		return fmt.Errorf("load sale lines: %w", err)
	}

	for _, line := range lines {
		i := index[line.SaleID]
		sales[i].Lines = append(sales[i].Lines, line)
	}
	return nil
}

func saleLinesBetween(ctx context.Context, q sqlx.QueryerContext, rng models.DateRange, productID *int64) ([]models.SaleLine, error) {
	lines := []models.SaleLine{}

	err := sqlx.SelectContext(ctx, q, &lines, saleLineSelect+`
		WHERE s.sale_date BETWEEN $1 AND $2
		  AND ($3::BIGINT IS NULL OR l.product_id = $3)
		ORDER BY s.sale_date, l.id`,
		dateParam(rng.From), dateParam(rng.To), productID)
	if err != nil {
		return nil, fmt.Errorf("load sale lines: %w", err)
	}

	return lines, nil
}
