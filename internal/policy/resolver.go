package policy

import (
	"context"
	"errors"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/auth"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/gate"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store"
)

// UserLookup loads users by id.
type UserLookup interface {
	ByID(ctx context.Context, id string) (*models.User, error)
}

// UserProfileResolver maps a principal to the profile of the user's current role.
// The role stored on the user wins over the one carried by the session token, so a role
// change shows up once the cache entry expires.
type UserProfileResolver struct {
	users    UserLookup
	profiles map[models.Role]gate.Profile
}

// NewUserProfileResolver creates a resolver over users.
func NewUserProfileResolver(users UserLookup) *UserProfileResolver {
	return &UserProfileResolver{users: users, profiles: RoleProfiles()}
}

// Resolve returns nil when the user no longer exists or was deleted.
func (r *UserProfileResolver) Resolve(ctx context.Context, p auth.Principal) (gate.Profile, error) {
	u, err := r.users.ByID(ctx, p.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if u.IsDeleted() {
		return nil, nil
	}
	return r.profiles[u.Role], nil
}
