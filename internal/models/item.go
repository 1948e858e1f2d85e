package models

import "github.com/shopspring/decimal"

// Item is a catalog entry a line item can be copied from.
type Item struct {
	Model

	MerchantID string          `gorm:"size:64;index;not null" json:"merchantId"`
	Name       string          `gorm:"size:255;not null" json:"name"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric;not null" json:"unitPrice"`
	TaxID      string          `gorm:"size:64;not null" json:"taxId"`
	CreatedBy  string          `gorm:"size:64" json:"createdBy,omitempty"`
}

func (i *Item) IDPrefix() string { return "itm" }
func (i *Item) ScopeID() string  { return i.MerchantID }
