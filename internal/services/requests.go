package services

import (
	"github.com/shopspring/decimal"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
)

// Request payloads. JSON and form field names match; form values are decoded with
// gorilla/schema. Version is the optimistic token read by the caller (0 skips the check).

type MerchantRequest struct {
	Name          string `json:"name" schema:"name" validate:"required,max=255"`
	Address       string `json:"address" schema:"address" validate:"max=500"`
	PhoneNumber   string `json:"phoneNumber" schema:"phoneNumber" validate:"max=50"`
	InvoiceEmail  string `json:"invoiceEmail" schema:"invoiceEmail" validate:"required,email"`
	InvoicePrefix string `json:"invoicePrefix" schema:"invoicePrefix" validate:"omitempty,max=10,alphanum"`
	DefaultTaxID  string `json:"defaultTaxId" schema:"defaultTaxId"`
	Version       int    `json:"version" schema:"version"`
}

type CardRequest struct {
	Brand      models.CardBrand `json:"brand" schema:"brand" validate:"required,oneof=visa mastercard jcb amex"`
	Last4      string           `json:"last4" schema:"last4" validate:"required,digits=4"`
	ExpMonth   int              `json:"expMonth" schema:"expMonth" validate:"min=1,max=12"`
	ExpYear    int              `json:"expYear" schema:"expYear" validate:"min=2000,max=2100"`
	HolderName string           `json:"holderName" schema:"holderName" validate:"required,max=255"`
	Version    int              `json:"version" schema:"version"`
}

type ClientRequest struct {
	Name        string `json:"name" schema:"name" validate:"required,max=255"`
	Email       string `json:"email" schema:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber" schema:"phoneNumber" validate:"max=50"`
	Address     string `json:"address" schema:"address" validate:"max=500"`
	Version     int    `json:"version" schema:"version"`
}

type ItemRequest struct {
	Name      string          `json:"name" schema:"name" validate:"required,max=255"`
	UnitPrice decimal.Decimal `json:"unitPrice" schema:"unitPrice" validate:"gte=0"`
	TaxID     string          `json:"taxId" schema:"taxId" validate:"required"`
	Version   int             `json:"version" schema:"version"`
}

type BankAccountRequest struct {
	BankName      string             `json:"bankName" schema:"bankName" validate:"required,max=255"`
	BranchName    string             `json:"branchName" schema:"branchName" validate:"max=255"`
	AccountType   models.AccountType `json:"accountType" schema:"accountType" validate:"required,oneof=savings checking"`
	AccountNumber string             `json:"accountNumber" schema:"accountNumber" validate:"required,digits=7"`
	AccountHolder string             `json:"accountHolder" schema:"accountHolder" validate:"required,max=255"`
	Version       int                `json:"version" schema:"version"`
}

// LineItemRequest is one line of a document payload. With ItemID set, an empty name,
// unit price or tax defaults from the catalog item.
type LineItemRequest struct {
	ItemID    string           `json:"itemId"`
	Name      string           `json:"name" validate:"max=500"`
	Quantity  int              `json:"quantity" validate:"min=1"`
	UnitPrice *decimal.Decimal `json:"unitPrice" validate:"omitempty,gte=0"`
	TaxID     string           `json:"taxId"`
}

// DocumentRequest creates or updates any document kind. Dates use YYYY-MM-DD. In form
// payloads the items field holds a JSON array.
type DocumentRequest struct {
	ClientID  string                `json:"clientId" schema:"clientId" validate:"required"`
	IssueDate string                `json:"issueDate" schema:"issueDate" validate:"required,datetime=2006-01-02"`
	DueDate   string                `json:"dueDate" schema:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Number    string                `json:"number" schema:"number" validate:"max=50"`
	Status    models.DocumentStatus `json:"status" schema:"status"`
	Currency  string                `json:"currency" schema:"currency" validate:"omitempty,iso4217"`
	Items     []LineItemRequest     `json:"items" schema:"-" validate:"min=1,dive"`
	Notes     string                `json:"notes" schema:"notes" validate:"max=2000"`
	Version   int                   `json:"version" schema:"version"`
}

type StatusRequest struct {
	Status models.DocumentStatus `json:"status" schema:"status" validate:"required"`
}

type ScheduleRequest struct {
	ScheduleName     string              `json:"scheduleName" schema:"scheduleName" validate:"required,max=255"`
	ClientID         string              `json:"clientId" schema:"clientId" validate:"required"`
	IntervalType     models.IntervalType `json:"intervalType" schema:"intervalType" validate:"required,oneof=daily weekly monthly yearly"`
	IntervalValue    int                 `json:"intervalValue" schema:"intervalValue" validate:"min=1,max=365"`
	NextIssuanceDate string              `json:"nextIssuanceDate" schema:"nextIssuanceDate" validate:"omitempty,datetime=2006-01-02"`
	StartDate        string              `json:"startDate" schema:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate          string              `json:"endDate" schema:"endDate" validate:"omitempty,datetime=2006-01-02"`
	TemplateID       string              `json:"templateId" schema:"templateId" validate:"required"`
	Enabled          bool                `json:"enabled" schema:"enabled"`
	Version          int                 `json:"version" schema:"version"`
}

type PaymentRequest struct {
	InvoiceID     string          `json:"invoiceId" schema:"invoiceId" validate:"required"`
	Amount        decimal.Decimal `json:"amount" schema:"amount" validate:"gt=0"`
	Fee           decimal.Decimal `json:"fee" schema:"fee" validate:"gte=0"`
	PaymentMethod string          `json:"paymentMethod" schema:"paymentMethod" validate:"required,oneof=bank_transfer card convenience_store"`
	Version       int             `json:"version" schema:"version"`
}

type UserRequest struct {
	Email    string      `json:"email" schema:"email" validate:"required,email"`
	Name     string      `json:"name" schema:"name" validate:"max=255"`
	Role     models.Role `json:"role" schema:"role" validate:"required,oneof=merchant_admin merchant_staff"`
	Password string      `json:"password" schema:"password" validate:"omitempty,min=8,max=72"`
}
