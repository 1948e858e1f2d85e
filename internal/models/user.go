package models

// Role drives advisory UI gating only; it is never enforced by the services.
type Role string

const (
	RoleOperator      Role = "operator"
	RoleMerchantAdmin Role = "merchant_admin"
	RoleMerchantStaff Role = "merchant_staff"
)

// User represents a portal user. Operators have no MerchantID.
type User struct {
	Model

	MerchantID   string `gorm:"size:64;index" json:"merchantId,omitempty"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name         string `gorm:"size:255" json:"name,omitempty"`
	Role         Role   `gorm:"size:20;not null" json:"role"`
	PasswordHash string `gorm:"size:255" json:"-"` // bcrypt, never exposed in JSON
}

func (u *User) IDPrefix() string { return "usr" }

// ScopeID returns the merchant the user belongs to; operators are listed under "".
func (u *User) ScopeID() string { return u.MerchantID }

// HasCredential reports whether a password was ever set.
func (u *User) HasCredential() bool { return u.PasswordHash != "" }
