package billing

import (
	"github.com/shopspring/decimal"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
)

// LineAmount applies the additive tax convention: quantity * unitPrice * (1 + rate).
// The result is exact; rounding belongs to display.
func LineAmount(quantity int, unitPrice, rate decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(quantity)).Mul(unitPrice).Mul(decimal.NewFromInt(1).Add(rate))
}

// DocumentTotal sums the line amounts of items, resolving each tax through rates.
func DocumentTotal(items []models.LineItem, rates RateLookup) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(LineAmount(it.Quantity, it.UnitPrice, rates.RateOf(it.TaxID)))
	}
	return total
}

// Recompute stamps each line amount and the document amount from the current items.
// It is the only place a document amount is written.
func Recompute(doc *models.Document, rates RateLookup) {
	total := decimal.Zero
	for i := range doc.Items {
		it := &doc.Items[i]
		it.Amount = LineAmount(it.Quantity, it.UnitPrice, rates.RateOf(it.TaxID))
		it.Position = i
		total = total.Add(it.Amount)
	}
	doc.Amount = total
}
