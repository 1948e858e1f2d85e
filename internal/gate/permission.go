package gate

import "strings"

// Permission is "resource:action", e.g. "invoice:create". Either side may be the
// wildcard "*".
type Permission string

// NewPermission creates a permission from resource type and action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits a permission into resource type and action.
func (p Permission) Parse() (resourceType string, action Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", ""
	}
	return res, Action(act)
}

const (
	Wildcard            = "*"
	PermissionEverything Permission = "*:*"
)

// Matches reports whether p grants requested. "invoice:*" grants every invoice action and
// "*:view" grants viewing every resource.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionEverything || p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, reqAct := requested.Parse()
	if res == "" || reqRes == "" {
		return false
	}
	return (res == Wildcard || res == reqRes) && (string(act) == Wildcard || act == reqAct)
}
