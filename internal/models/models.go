package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const DefaultUnitOfMeasure = "units"

// DateLayout is the calendar-day format used on the wire.
const DateLayout = "2006-01-02"

type Product struct {
	ID            int64           `db:"id" json:"id"`
	Name          string          `db:"name" json:"name"`
	Quantity      decimal.Decimal `db:"quantity" json:"quantity"`
	UnitCost      decimal.Decimal `db:"unit_cost" json:"unit_cost"`
	UnitOfMeasure string          `db:"unit_of_measure" json:"unit_of_measure"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
	Version       int             `db:"version" json:"version"`
}

// Sale is an order header. Subtotal, Discount and Shipping aggregate its lines.
type Sale struct {
	ID          int64           `db:"id" json:"id"`
	OrderNumber int64           `db:"order_number" json:"order_number"`
	Customer    string          `db:"customer" json:"customer"`
	Date        Date            `db:"sale_date" json:"date"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
	Discount    decimal.Decimal `db:"discount" json:"discount"`
	Shipping    decimal.Decimal `db:"shipping" json:"shipping"`
	Total       decimal.Decimal `db:"total" json:"total"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
	Lines       []SaleLine      `db:"-" json:"lines,omitempty"`
}

// SaleLine keeps the product name as it was when the sale was recorded.
// OrderNumber, Customer and Date are copied from the header when read.
type SaleLine struct {
	ID          int64           `db:"id" json:"id"`
	SaleID      int64           `db:"sale_id" json:"sale_id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Discount    decimal.Decimal `db:"discount" json:"discount"`
	Shipping    decimal.Decimal `db:"shipping" json:"shipping"`
	Subtotal    decimal.Decimal `db:"subtotal" json:"subtotal"`
	OrderNumber int64           `db:"order_number" json:"order_number,omitempty"`
	Customer    string          `db:"customer" json:"customer,omitempty"`
	Date        Date            `db:"sale_date" json:"date"`
}

type Purchase struct {
	ID          int64           `db:"id" json:"id"`
	ProductID   int64           `db:"product_id" json:"product_id"`
	ProductName string          `db:"product_name" json:"product_name"`
	Quantity    decimal.Decimal `db:"quantity" json:"quantity"`
	UnitPrice   decimal.Decimal `db:"unit_price" json:"unit_price"`
	Total       decimal.Decimal `db:"total" json:"total"`
	Date        Date            `db:"purchase_date" json:"date"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

// StockPoint is one day of a reconstructed stock series.
type StockPoint struct {
	Date  Date            `json:"date"`
	Stock decimal.Decimal `json:"stock"`
}
