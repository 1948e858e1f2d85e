package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestTaxTable_RateOf(t *testing.T) {
	table := NewTaxTable(models.DefaultTaxes()...)

	assert.True(t, table.RateOf(models.TaxStandard).Equal(dec("0.10")))
	assert.True(t, table.RateOf(models.TaxReduced).Equal(dec("0.08")))
	assert.True(t, table.RateOf(models.TaxExempt).IsZero())

	// unknown ids fail open to zero
	assert.True(t, table.RateOf("tax_missing").IsZero())
	assert.False(t, table.Has("tax_missing"))
	assert.True(t, table.Has(models.TaxStandard))
}

func TestTaxTable_All(t *testing.T) {
	table := NewTaxTable(models.DefaultTaxes()...)
	all := table.All()
	require.Len(t, all, 3)
	assert.Equal(t, "tax_0", all[0].ID)
	assert.Equal(t, "tax_8", all[2].ID)
}

func TestLineAmount(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		unitPrice string
		rate      string
		want      string
	}{
		{"2 x 1000 at 10%", 2, "1000", "0.10", "2200"},
		{"1 x 100 at 8%", 1, "100", "0.08", "108"},
		{"exempt", 3, "250", "0", "750"},
		{"free line", 4, "0", "0.10", "0"},
		{"fractional price keeps precision", 3, "333.33", "0.10", "1099.989"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineAmount(tt.quantity, dec(tt.unitPrice), dec(tt.rate))
			assert.Truef(t, got.Equal(dec(tt.want)), "LineAmount() = %s, want %s", got, tt.want)
		})
	}
}

func TestDocumentTotal(t *testing.T) {
	table := NewTaxTable(models.DefaultTaxes()...)
	items := []models.LineItem{
		{Quantity: 2, UnitPrice: dec("1000"), TaxID: models.TaxStandard},
	}
	assert.True(t, DocumentTotal(items, table).Equal(dec("2200")))

	items = append(items,
		models.LineItem{Quantity: 1, UnitPrice: dec("500"), TaxID: models.TaxReduced},
		models.LineItem{Quantity: 1, UnitPrice: dec("100"), TaxID: "tax_unknown"},
	)
	assert.True(t, DocumentTotal(items, table).Equal(dec("2840")))
	assert.True(t, DocumentTotal(nil, table).IsZero())
}

func TestDocumentTotal_Idempotent(t *testing.T) {
	table := NewTaxTable(models.DefaultTaxes()...)
	items := []models.LineItem{
		{Quantity: 7, UnitPrice: dec("19.99"), TaxID: models.TaxStandard},
		{Quantity: 3, UnitPrice: dec("0.333"), TaxID: models.TaxReduced},
	}
	first := DocumentTotal(items, table)
	second := DocumentTotal(items, table)
	assert.True(t, first.Equal(second))

	doc := &models.Document{Items: items}
	Recompute(doc, table)
	again := doc.Amount
	Recompute(doc, table)
	assert.True(t, again.Equal(doc.Amount))
	assert.True(t, doc.Amount.Equal(first))
}

func TestRecompute_StampsLines(t *testing.T) {
	table := NewTaxTable(models.DefaultTaxes()...)
	doc := &models.Document{Items: []models.LineItem{
		{Quantity: 2, UnitPrice: dec("1000"), TaxID: models.TaxStandard, Amount: dec("1")},
		{Quantity: 1, UnitPrice: dec("10"), TaxID: models.TaxExempt},
	}}
	Recompute(doc, table)

	assert.True(t, doc.Items[0].Amount.Equal(dec("2200")))
	assert.True(t, doc.Items[1].Amount.Equal(dec("10")))
	assert.Equal(t, 1, doc.Items[1].Position)
	assert.True(t, doc.Amount.Equal(dec("2210")))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		amount   string
		currency string
		want     string
	}{
		{"2200", "JPY", "2,200 JPY"},
		{"1099.989", "JPY", "1,100 JPY"},
		{"1099.989", "USD", "1,099.99 USD"},
		{"0.005", "EUR", "0.01 EUR"},
		{"-1234567.5", "JPY", "-1,234,568 JPY"},
		{"12", "", "12 JPY"},
		{"12", "xyz", "12.00 XYZ"},
	}
	for _, tt := range tests {
		t.Run(tt.amount+"_"+tt.currency, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatAmount(dec(tt.amount), tt.currency))
		})
	}
}
