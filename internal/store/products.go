package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/safar/shop-ledger/internal/database"
	"github.com/safar/shop-ledger/internal/models"
)

const productColumns = `id, name, quantity, unit_cost, unit_of_measure, created_at, updated_at, version`

func normalizeProduct(name, unitOfMeasure string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", database.InvalidArgument("name", "is required")
	}
	unitOfMeasure = strings.TrimSpace(unitOfMeasure)
	if unitOfMeasure == "" {
		unitOfMeasure = models.DefaultUnitOfMeasure
	}
	return name, unitOfMeasure, nil
}

// CreateProduct adds a catalog entry with no stock and zero cost.
func CreateProduct(ctx context.Context, db *sqlx.DB, name, unitOfMeasure string) (*models.Product, error) {
	name, unitOfMeasure, err := normalizeProduct(name, unitOfMeasure)
	if err != nil {
		return nil, err
	}

	product := &models.Product{}
	err = db.GetContext(ctx, product, `
		INSERT INTO products (name, quantity, unit_cost, unit_of_measure, created_at, updated_at, version)
		VALUES ($1, 0, 0, $2, NOW(), NOW(), 1)
		RETURNING `+productColumns,
		name, unitOfMeasure)
	if err != nil {
		return nil, failed("create product", err)
	}

	return product, nil
}

// UpdateProduct replaces every editable field. Quantity and cost are taken
// as given: this is the manual correction path.
func UpdateProduct(ctx context.Context, db *sqlx.DB, id int64, name string, quantity, unitCost decimal.Decimal, unitOfMeasure string) (*models.Product, error) {
	name, unitOfMeasure, err := normalizeProduct(name, unitOfMeasure)
	if err != nil {
		return nil, err
	}

	product := &models.Product{}
	err = db.GetContext(ctx, product, `
		UPDATE products
		SET name = $1, quantity = $2, unit_cost = $3, unit_of_measure = $4,
		    updated_at = NOW(), version = version + 1
		WHERE id = $5
		RETURNING `+productColumns,
		name, quantity, unitCost, unitOfMeasure, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, productNotFound(id)
		}
		return nil, failed("update product", err)
	}

	return product, nil
}

// DeleteProduct removes the catalog entry only. Sales and purchases keep the
// product id and name they were recorded with.
func DeleteProduct(ctx context.Context, db *sqlx.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return failed("delete product", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return failed("get rows affected", err)
	}
	if rowsAffected == 0 {
		return productNotFound(id)
	}

	return nil
}

func GetProduct(ctx context.Context, db *sqlx.DB, id int64) (*models.Product, error) {
	product := &models.Product{}

	err := db.GetContext(ctx, product, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, productNotFound(id)
		}
		return nil, failed("get product", err)
	}

	return product, nil
}

func ListProducts(ctx context.Context, db *sqlx.DB) ([]models.Product, error) {
	products := []models.Product{}

	if err := db.SelectContext(ctx, &products, `SELECT `+productColumns+` FROM products ORDER BY id`); err != nil {
		return nil, failed("list products", err)
	}

	return products, nil
}

func ListProductsPage(ctx context.Context, db *sqlx.DB, page, pageSize int) (*OffsetPage, error) {
	page, pageSize = normalizePage(page, pageSize)

	var total int64
	if err := db.GetContext(ctx, &total, `SELECT COUNT(*) FROM products`); err != nil {
		return nil, failed("count products", err)
	}

	products := []models.Product{}
	err := db.SelectContext(ctx, &products, `
		SELECT `+productColumns+`
		FROM products
		ORDER BY id
		LIMIT $1 OFFSET $2`,
		pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, failed("list products", err)
	}

	return newOffsetPage(products, total, page, pageSize), nil
}

// lockProduct reads a product and holds its row lock until tx ends. Every
// stock mutation goes through here first.
func lockProduct(ctx context.Context, tx *sqlx.Tx, id int64) (models.Product, error) {
	var product models.Product

	err := tx.GetContext(ctx, &product, `SELECT `+productColumns+` FROM products WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return product, productNotFound(id)
		}
		return product, fmt.Errorf("lock product %d: %w", id, err)
	}

	return product, nil
}

// saveStock writes back quantity and unit cost of a product locked by
// lockProduct.
func saveStock(ctx context.Context, tx *sqlx.Tx, product *models.Product) error {
	err := tx.GetContext(ctx, product, `
		UPDATE products
		SET quantity = $1, unit_cost = $2, updated_at = NOW(), version = version + 1
		WHERE id = $3
		RETURNING `+productColumns,
		product.Quantity, product.UnitCost, product.ID)
	if err != nil {
		return fmt.Errorf("update stock of product %d: %w", product.ID, err)
	}
	return nil
}

func productNotFound(id int64) error {
	return fmt.Errorf("%w: id %d", database.ErrProductNotFound, id)
}

// failed marks an error from a statement run outside a transaction.
func failed(op string, err error) error {
	if database.IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, database.ErrTransactionFailed, err)
}
