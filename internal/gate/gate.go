// Package gate answers "may this subject do that" questions. A Gate combines
// profile permissions ("resource:action" with wildcards) with per resource policies.
// The package knows nothing about the billing domain; U is the subject type.
package gate

import "context"

// Gate checks a subject's profile first and then the policy registered for the resource type.
type Gate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

// New creates a gate resolving profiles through resolver.
func New[U comparable](resolver ProfileResolver[U]) *Gate[U] {
	return &Gate[U]{resolver: resolver, policies: make(map[string]Policy[U])}
}

// Register sets the policy of a resource type, replacing any previous one.
func (g *Gate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// RegisterAll registers p for each resource type.
func (g *Gate[U]) RegisterAll(p Policy[U], resourceTypes ...string) {
	for _, rt := range resourceTypes {
		g.Register(rt, p)
	}
}

// Authorize returns nil when subject may perform action on resource. A nil resource
// skips the policy check.
func (g *Gate[U]) Authorize(ctx context.Context, subject U, action Action, resourceType string, resource any) error {
	var zero U
	if subject == zero {
		return ErrUnauthorized
	}
	profile, err := g.resolver.Resolve(ctx, subject)
	if err != nil {
		return err
	}
	if profile == nil {
		return ErrNoProfile
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrUnauthorized
	}
	if resource != nil {
		if policy, ok := g.policies[resourceType]; ok && !policy.Can(ctx, subject, action, resource) {
			return ErrUnauthorized
		}
	}
	return nil
}

// Can is Authorize as a bool.
func (g *Gate[U]) Can(ctx context.Context, subject U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, subject, action, resourceType, resource) == nil
}

// CanProfile checks the profile permission only, before a specific resource is loaded.
func (g *Gate[U]) CanProfile(ctx context.Context, subject U, action Action, resourceType string) bool {
	return g.Can(ctx, subject, action, resourceType, nil)
}

// Profile returns the subject's profile, or nil.
func (g *Gate[U]) Profile(ctx context.Context, subject U) Profile {
	var zero U
	if subject == zero {
		return nil
	}
	p, err := g.resolver.Resolve(ctx, subject)
	if err != nil {
		return nil
	}
	return p
}
