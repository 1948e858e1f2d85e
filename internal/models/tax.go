package models

import "github.com/shopspring/decimal"

// Tax is immutable reference data mapping a tax category to a rate.
// Rate is a fraction: 0.10 means 10%.
type Tax struct {
	ID          string          `gorm:"primaryKey;size:64" json:"id"`
	Name        string          `gorm:"size:100;not null" json:"name"`
	Rate        decimal.Decimal `gorm:"type:numeric;not null" json:"rate"`
	Description string          `gorm:"size:255" json:"description,omitempty"`
}

// Seeded tax categories.
const (
	TaxStandard = "tax_10"
	TaxReduced  = "tax_8"
	TaxExempt   = "tax_0"
)

// DefaultTaxes returns the tax categories every installation starts with.
func DefaultTaxes() []Tax {
	return []Tax{
		{ID: TaxStandard, Name: "Standard 10%", Rate: decimal.RequireFromString("0.10"), Description: "Standard consumption tax"},
		{ID: TaxReduced, Name: "Reduced 8%", Rate: decimal.RequireFromString("0.08"), Description: "Reduced rate for food and newspapers"},
		{ID: TaxExempt, Name: "Exempt", Rate: decimal.Zero, Description: "Tax exempt"},
	}
}
