// Package policy configures capability gating for the portals. Gating is advisory: it
// tells a client which actions to offer and is never consulted by the services.
package policy

import (
	"context"
	"time"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/auth"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/gate"
)

// Access holds the configured gate with its profile cache.
type Access struct {
	Gate  *gate.Gate[auth.Principal]
	Cache *gate.CachedResolver[auth.Principal]
}

// NewAccess builds the gate: role profiles from users, cached for cacheTTL, and the
// merchant scope policy on every resource type.
func NewAccess(users UserLookup, cacheTTL time.Duration) *Access {
	cached := gate.NewCachedResolver[auth.Principal](NewUserProfileResolver(users), cacheTTL)
	g := gate.New[auth.Principal](cached)
	g.RegisterAll(NewMerchantScopePolicy(), ResourceTypes()...)
	return &Access{Gate: g, Cache: cached}
}

// Capabilities lists what a principal may do.
type Capabilities struct {
	UserID     string                   `json:"userId"`
	Role       string                   `json:"role,omitempty"`
	MerchantID string                   `json:"merchantId,omitempty"`
	Actions    map[string][]gate.Action `json:"actions"`
}

// Capabilities evaluates every resource type and action for p. With a merchantID the
// merchant scope policy applies as well.
func (a *Access) Capabilities(ctx context.Context, p auth.Principal, merchantID string) Capabilities {
	caps := Capabilities{UserID: p.UserID, MerchantID: merchantID, Actions: map[string][]gate.Action{}}
	profile := a.Gate.Profile(ctx, p)
	if profile == nil {
		return caps
	}
	caps.Role = profile.Name()

	for _, rt := range ResourceTypes() {
		allowed := []gate.Action{}
		for _, action := range gate.Actions {
			ok := a.Gate.CanProfile(ctx, p, action, rt)
			if ok && merchantID != "" {
				ok = a.Gate.Can(ctx, p, action, rt, MerchantScope(merchantID))
			}
			if ok {
				allowed = append(allowed, action)
			}
		}
		if len(allowed) > 0 {
			caps.Actions[rt] = allowed
		}
	}
	return caps
}

// InvalidateUser drops the cached profile of a principal, e.g. after a role change.
func (a *Access) InvalidateUser(p auth.Principal) {
	a.Cache.Invalidate(p)
}
