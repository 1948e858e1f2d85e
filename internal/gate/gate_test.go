package gate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/gate"
)

type scoped struct{ Owner string }

type ownerPolicy struct{}

func (ownerPolicy) Can(_ context.Context, subject string, _ gate.Action, resource any) bool {
	r, ok := resource.(*scoped)
	return ok && r.Owner == subject
}

func staticResolver(profiles map[string]gate.Profile) gate.ResolverFunc[string] {
	return func(_ context.Context, subject string) (gate.Profile, error) {
		return profiles[subject], nil
	}
}

func TestGate_ProfileOnly(t *testing.T) {
	editor := gate.NewStaticProfile("editor",
		gate.NewPermission("invoice", gate.ActionCreate),
		gate.NewPermission("invoice", gate.ActionView),
	)
	g := gate.New[string](staticResolver(map[string]gate.Profile{"alice": editor}))
	ctx := context.Background()

	if !g.CanProfile(ctx, "alice", gate.ActionCreate, "invoice") {
		t.Error("granted permission should be allowed")
	}
	if g.CanProfile(ctx, "alice", gate.ActionDelete, "invoice") {
		t.Error("missing permission should be denied")
	}
	if err := g.Authorize(ctx, "bob", gate.ActionView, "invoice", nil); !errors.Is(err, gate.ErrNoProfile) {
		t.Errorf("subject without profile: err = %v, want ErrNoProfile", err)
	}
	if err := g.Authorize(ctx, "", gate.ActionView, "invoice", nil); !errors.Is(err, gate.ErrUnauthorized) {
		t.Errorf("zero subject: err = %v, want ErrUnauthorized", err)
	}
}

func TestGate_WithPolicy(t *testing.T) {
	editor := gate.NewStaticProfile("editor", "invoice:*")
	g := gate.New[string](staticResolver(map[string]gate.Profile{"alice": editor, "bob": editor}))
	g.Register("invoice", ownerPolicy{})
	ctx := context.Background()
	doc := &scoped{Owner: "alice"}

	if !g.Can(ctx, "alice", gate.ActionUpdate, "invoice", doc) {
		t.Error("owner should be allowed")
	}
	if g.Can(ctx, "bob", gate.ActionUpdate, "invoice", doc) {
		t.Error("non owner should be denied by policy")
	}
	if !g.CanProfile(ctx, "bob", gate.ActionUpdate, "invoice") {
		t.Error("profile check ignores the policy")
	}
}

func TestGate_ResolverError(t *testing.T) {
	boom := errors.New("boom")
	g := gate.New[string](gate.ResolverFunc[string](func(context.Context, string) (gate.Profile, error) {
		return nil, boom
	}))
	if err := g.Authorize(context.Background(), "alice", gate.ActionView, "invoice", nil); !errors.Is(err, boom) {
		t.Errorf("err = %v, want resolver error", err)
	}
	if g.Profile(context.Background(), "alice") != nil {
		t.Error("Profile should be nil when resolution fails")
	}
}
