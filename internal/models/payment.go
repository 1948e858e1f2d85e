package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks a payment from submission to settlement.
type PaymentStatus string

const (
	PaymentPendingApproval PaymentStatus = "pending_approval"
	PaymentSettled         PaymentStatus = "settled"
	PaymentFailed          PaymentStatus = "failed"
)

// Payment records money received against an invoice. TotalAmount is Amount plus Fee.
type Payment struct {
	Model

	InvoiceID     string          `gorm:"size:64;index;not null" json:"invoiceId"`
	MerchantID    string          `gorm:"size:64;index;not null" json:"merchantId"`
	Amount        decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Fee           decimal.Decimal `gorm:"type:numeric;not null" json:"fee"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric;not null" json:"totalAmount"`
	Status        PaymentStatus   `gorm:"size:20;not null" json:"status"`
	PaymentMethod string          `gorm:"size:50;not null" json:"paymentMethod"`
	SettledAt     *time.Time      `json:"settledAt,omitempty"`
}

func (p *Payment) IDPrefix() string { return "pay" }
func (p *Payment) ScopeID() string  { return p.MerchantID }

// IsPending reports whether the payment still awaits approval.
func (p *Payment) IsPending() bool { return p.Status == PaymentPendingApproval }
