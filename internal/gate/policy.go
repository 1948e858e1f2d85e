package gate

import "context"

// Policy adds resource level rules on top of profile permissions, e.g. tenant scoping.
type Policy[U any] interface {
	// Can returns true if subject may perform action on resource.
	Can(ctx context.Context, subject U, action Action, resource any) bool
}
