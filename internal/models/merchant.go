package models

// MerchantStatus tells whether the merchant may issue documents.
type MerchantStatus string

const (
	MerchantStatusActive    MerchantStatus = "active"
	MerchantStatusSuspended MerchantStatus = "suspended"
)

// Merchant is a tenant of the portal. Every other entity is scoped to one merchant.
type Merchant struct {
	Model

	Name             string         `gorm:"size:255;not null" json:"name"`
	Address          string         `gorm:"size:500" json:"address,omitempty"`
	PhoneNumber      string         `gorm:"size:50" json:"phoneNumber,omitempty"`
	InvoiceEmail     string         `gorm:"size:255;not null" json:"invoiceEmail"`
	InvoicePrefix    string         `gorm:"size:10" json:"invoicePrefix,omitempty"`
	DefaultTaxID     string         `gorm:"size:64" json:"defaultTaxId,omitempty"`
	Status           MerchantStatus `gorm:"size:20;not null;default:'active'" json:"status"`
	TransactionCount int            `gorm:"not null;default:0" json:"transactionCount"`
}

func (m *Merchant) IDPrefix() string { return "mer" }

// ScopeID returns the merchant's own id: a merchant is scoped to itself.
func (m *Merchant) ScopeID() string { return m.ID }

// IsActive reports whether the merchant can issue documents.
func (m *Merchant) IsActive() bool { return m.Status == MerchantStatusActive }

// CardBrand is the network of a stored merchant card.
type CardBrand string

const (
	CardBrandVisa       CardBrand = "visa"
	CardBrandMastercard CardBrand = "mastercard"
	CardBrandJCB        CardBrand = "jcb"
	CardBrandAmex       CardBrand = "amex"
)

// MerchantCard is a payment card on file for a merchant. Only the last four digits are kept.
type MerchantCard struct {
	Model

	MerchantID string    `gorm:"size:64;index;not null" json:"merchantId"`
	Brand      CardBrand `gorm:"size:20;not null" json:"brand"`
	Last4      string    `gorm:"size:4;not null" json:"last4"`
	ExpMonth   int       `gorm:"not null" json:"expMonth"`
	ExpYear    int       `gorm:"not null" json:"expYear"`
	HolderName string    `gorm:"size:255;not null" json:"holderName"`
}

func (c *MerchantCard) IDPrefix() string { return "card" }
func (c *MerchantCard) ScopeID() string  { return c.MerchantID }
