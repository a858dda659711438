// Package inventory holds the stock valuation rules: weighted-average costing
// on purchases, availability checks and order economics on sales. Nothing here
// touches storage; the store package calls these functions while it holds the
// product row locks.
package inventory

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/safar/shop-ledger/internal/database"
	"github.com/safar/shop-ledger/internal/models"
)

type PurchaseRequest struct {
	ProductID int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Date      time.Time
}

func (r PurchaseRequest) Validate() error {
	if r.ProductID <= 0 {
		return database.InvalidArgument("product_id", "is required")
	}
	if !r.Quantity.IsPositive() {
		return database.InvalidArgument("quantity", "must be greater than zero")
	}
	if r.UnitPrice.IsNegative() {
		return database.InvalidArgument("unit_price", "must not be negative")
	}
	if r.Date.IsZero() {
		return database.InvalidArgument("date", "is required")
	}
	return nil
}

// Total is quantity * unit price.
func (r PurchaseRequest) Total() decimal.Decimal {
	return r.Quantity.Mul(r.UnitPrice)
}

// ApplyPurchase returns p after receiving quantity units at unitPrice:
//
//	newQuantity = q0 + quantity
//	newUnitCost = (q0*c0 + quantity*unitPrice) / newQuantity
//
// Stock that is zero or was manually set negative carries no book value, so
// the incoming price becomes the cost.
func ApplyPurchase(p models.Product, quantity, unitPrice decimal.Decimal) (models.Product, error) {
	if !quantity.IsPositive() {
		return p, database.InvalidArgument("quantity", "must be greater than zero")
	}
	if unitPrice.IsNegative() {
		return p, database.InvalidArgument("unit_price", "must not be negative")
	}

	newQuantity := p.Quantity.Add(quantity)
	if !p.Quantity.IsPositive() {
		p.Quantity = newQuantity
		p.UnitCost = unitPrice
		return p, nil
	}

	bookValue := p.Quantity.Mul(p.UnitCost).Add(quantity.Mul(unitPrice))
	p.Quantity = newQuantity
	p.UnitCost = bookValue.Div(newQuantity)
	return p, nil
}

// ApplySale removes quantity units from p. The unit cost is left as is: a sale
// consumes stock at the current average, it never revalues it.
func ApplySale(p models.Product, quantity decimal.Decimal) (models.Product, error) {
	if !quantity.IsPositive() {
		return p, database.InvalidArgument("quantity", "must be greater than zero")
	}
	if quantity.GreaterThan(p.Quantity) {
		return p, &database.InsufficientStockError{
			ProductID: p.ID,
			Requested: quantity,
			Available: p.Quantity,
		}
	}
	p.Quantity = p.Quantity.Sub(quantity)
	return p, nil
}

type SaleLineRequest struct {
	ProductID int64
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
	Discount  decimal.Decimal
	Shipping  decimal.Decimal
}

func (l SaleLineRequest) Subtotal() decimal.Decimal {
	return l.Quantity.Mul(l.UnitPrice)
}

type SaleRequest struct {
	Customer string
	Date     time.Time
	Lines    []SaleLineRequest
}

func (r SaleRequest) Validate() error {
	if strings.TrimSpace(r.Customer) == "" {
		return database.InvalidArgument("customer", "is required")
	}
	if r.Date.IsZero() {
		return database.InvalidArgument("date", "is required")
	}
	if len(r.Lines) == 0 {
		return database.InvalidArgument("lines", "must contain at least one line")
	}

	for _, l := range r.Lines {
		switch {
		case l.ProductID <= 0:
			return database.InvalidArgument("product_id", "is required")
		case !l.Quantity.IsPositive():
			return database.InvalidArgument("quantity", "must be greater than zero")
		case !l.UnitPrice.IsPositive():
			return database.InvalidArgument("unit_price", "must be greater than zero")
		case l.Discount.IsNegative():
			return database.InvalidArgument("discount", "must not be negative")
		case l.Shipping.IsNegative():
			return database.InvalidArgument("shipping", "must not be negative")
		}
	}
	return nil
}

// RequestedByProduct sums line quantities per product, so that two lines for
// the same product are checked against stock together.
func (r SaleRequest) RequestedByProduct() map[int64]decimal.Decimal {
	requested := make(map[int64]decimal.Decimal, len(r.Lines))
	for _, l := range r.Lines {
		requested[l.ProductID] = requested[l.ProductID].Add(l.Quantity)
	}
	return requested
}

type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Shipping decimal.Decimal
	Total    decimal.Decimal
}

// OrderTotals aggregates lines: total = subtotal - discount + shipping.
func OrderTotals(lines []SaleLineRequest) Totals {
	var t Totals
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Subtotal())
		t.Discount = t.Discount.Add(l.Discount)
		t.Shipping = t.Shipping.Add(l.Shipping)
	}
	t.Total = t.Subtotal.Sub(t.Discount).Add(t.Shipping)
	return t
}
