package policy

import (
	"context"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/auth"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/gate"
)

// Scoped is implemented by every merchant scoped entity.
type Scoped interface {
	ScopeID() string
}

// MerchantScope is a bare scope, used when only the merchant id is known.
type MerchantScope string

func (m MerchantScope) ScopeID() string { return string(m) }

// MerchantScopePolicy allows merchant users to act on their own merchant's resources only.
// Operators act on every merchant.
type MerchantScopePolicy struct{}

func NewMerchantScopePolicy() *MerchantScopePolicy { return &MerchantScopePolicy{} }

func (MerchantScopePolicy) Can(_ context.Context, p auth.Principal, _ gate.Action, resource any) bool {
	if p.IsOperator() {
		return true
	}
	s, ok := resource.(Scoped)
	if !ok {
		return false
	}
	return p.MerchantID != "" && s.ScopeID() == p.MerchantID
}
