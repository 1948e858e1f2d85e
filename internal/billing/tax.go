// Package billing holds the pricing rules shared by every document kind: tax rate
// lookup, line amounts and document totals.
package billing

import (
	"sort"

	"github.com/shopspring/decimal"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
)

// RateLookup resolves a tax category to its rate.
type RateLookup interface {
	RateOf(taxID string) decimal.Decimal
}

// TaxTable is an immutable set of tax categories.
type TaxTable struct {
	taxes map[string]models.Tax
}

// NewTaxTable builds a table from the given categories. Later duplicates win.
func NewTaxTable(taxes ...models.Tax) *TaxTable {
	t := &TaxTable{taxes: make(map[string]models.Tax, len(taxes))}
	for _, tax := range taxes {
		t.taxes[tax.ID] = tax
	}
	return t
}

// RateOf returns the rate of taxID. Unknown ids resolve to zero so totals never block
// on catalog drift; use Has for strict checks.
func (t *TaxTable) RateOf(taxID string) decimal.Decimal {
	if tax, ok := t.taxes[taxID]; ok {
		return tax.Rate
	}
	return decimal.Zero
}

// Has reports whether taxID is a known category.
func (t *TaxTable) Has(taxID string) bool {
	_, ok := t.taxes[taxID]
	return ok
}

// All returns the categories sorted by id.
func (t *TaxTable) All() []models.Tax {
	out := make([]models.Tax, 0, len(t.taxes))
	for _, tax := range t.taxes {
		out = append(out, tax)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
