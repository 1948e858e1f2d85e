package models

// Client is a customer of a merchant, addressed by documents and schedules.
type Client struct {
	Model

	// MerchantID is the owning tenant (for multi-tenant isolation)
	MerchantID  string `gorm:"size:64;index;not null" json:"merchantId"`
	Name        string `gorm:"size:255;not null" json:"name"`
	Email       string `gorm:"size:255" json:"email,omitempty"`
	PhoneNumber string `gorm:"size:50" json:"phoneNumber,omitempty"`
	Address     string `gorm:"size:500" json:"address,omitempty"`
	CreatedBy   string `gorm:"size:64" json:"createdBy,omitempty"`
}

func (c *Client) IDPrefix() string { return "cli" }
func (c *Client) ScopeID() string  { return c.MerchantID }
