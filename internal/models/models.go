// Package models defines the billing entities shared by the repositories, services and
// HTTP handlers. Every entity embeds Model, which carries the id, timestamps, soft delete
// marker and optimistic version.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Model holds the bookkeeping columns common to every stored entity.
// IDs have the form "<prefix>_<random>" and are assigned by the repository on insert.
type Model struct {
	ID        string         `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time      `gorm:"not null" json:"createdAt"`
	UpdatedAt *time.Time     `gorm:"autoUpdateTime:false" json:"updatedAt,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deletedAt,omitempty"`
	Version   int            `gorm:"not null;default:1" json:"version"`
}

// GetID returns the entity id.
func (m *Model) GetID() string { return m.ID }

// GetVersion returns the optimistic concurrency token.
func (m *Model) GetVersion() int { return m.Version }

// Stamp assigns id and creation time when they are still unset.
func (m *Model) Stamp(id string, now time.Time) {
	if m.ID == "" {
		m.ID = id
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.Version == 0 {
		m.Version = 1
	}
}

// Touch records a mutation.
func (m *Model) Touch(now time.Time) {
	t := now
	m.UpdatedAt = &t
	m.Version++
}

// MarkDeleted stamps the soft delete marker.
func (m *Model) MarkDeleted(now time.Time) {
	m.DeletedAt = gorm.DeletedAt{Time: now, Valid: true}
}

// IsDeleted reports whether the entity was soft deleted.
func (m *Model) IsDeleted() bool { return m.DeletedAt.Valid }

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// detach gives a shallow copy its own UpdatedAt.
func (m *Model) detach() { m.UpdatedAt = copyTime(m.UpdatedAt) }

// Clone returns a copy that shares no pointers with m.
func (m *Merchant) Clone() *Merchant {
	c := *m
	c.detach()
	return &c
}

func (m *MerchantCard) Clone() *MerchantCard {
	c := *m
	c.detach()
	return &c
}

func (u *User) Clone() *User {
	c := *u
	c.detach()
	return &c
}

func (cl *Client) Clone() *Client {
	c := *cl
	c.detach()
	return &c
}

func (i *Item) Clone() *Item {
	c := *i
	c.detach()
	return &c
}

func (b *BankAccount) Clone() *BankAccount {
	c := *b
	c.detach()
	return &c
}

func (p *Payment) Clone() *Payment {
	c := *p
	c.detach()
	c.SettledAt = copyTime(p.SettledAt)
	return &c
}

func (s *AutoIssuanceSchedule) Clone() *AutoIssuanceSchedule {
	c := *s
	c.detach()
	c.StartDate = copyTime(s.StartDate)
	c.EndDate = copyTime(s.EndDate)
	c.LastIssuedAt = copyTime(s.LastIssuedAt)
	return &c
}

// Entity type names, used as resource types for gating and in error messages.
const (
	EntityMerchant     = "merchant"
	EntityMerchantCard = "merchant_card"
	EntityClient       = "client"
	EntityItem         = "item"
	EntityBankAccount  = "bank_account"
	EntitySchedule     = "auto_issuance"
	EntityPayment      = "payment"
	EntityUser         = "user"
)

// AllModels lists every table owned by the application, in dependency order.
func AllModels() []any {
	return []any{
		&Tax{}, &Merchant{}, &MerchantCard{}, &User{}, &Client{}, &Item{},
		&Document{}, &LineItem{}, &AutoIssuanceSchedule{}, &BankAccount{}, &Payment{},
	}
}
