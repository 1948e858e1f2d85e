package models

// AccountType is the kind of a merchant's payout account.
type AccountType string

const (
	AccountTypeSavings  AccountType = "savings"
	AccountTypeChecking AccountType = "checking"
)

// BankAccount receives a merchant's settled payments.
type BankAccount struct {
	Model

	MerchantID    string      `gorm:"size:64;index;not null" json:"merchantId"`
	BankName      string      `gorm:"size:255;not null" json:"bankName"`
	BranchName    string      `gorm:"size:255" json:"branchName,omitempty"`
	AccountType   AccountType `gorm:"size:20;not null" json:"accountType"`
	AccountNumber string      `gorm:"size:7;not null" json:"accountNumber"`
	AccountHolder string      `gorm:"size:255;not null" json:"accountHolder"`
}

func (b *BankAccount) IDPrefix() string { return "bank" }
func (b *BankAccount) ScopeID() string  { return b.MerchantID }
