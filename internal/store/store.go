// Package store defines the repository contract every entity collection implements.
//
// A repository holds one entity type. Lookups by id ignore the soft delete marker;
// merchant listings only return active entities, newest first. Each method is atomic.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors returned by repositories.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record was modified concurrently")
)

// Entity is implemented by every stored model (through models.Model plus a prefix and scope).
type Entity interface {
	GetID() string
	GetVersion() int
	IDPrefix() string
	ScopeID() string
	Stamp(id string, now time.Time)
	Touch(now time.Time)
	MarkDeleted(now time.Time)
	IsDeleted() bool
}

// Record constrains a type parameter to a pointer to T that implements Entity.
type Record[T any] interface {
	*T
	Entity
}

// Repository is the per-entity collection contract.
type Repository[T any] interface {
	// Add assigns id and createdAt when absent, inserts and returns the stored form.
	Add(ctx context.Context, entity *T) (*T, error)
	// Update applies patch to the stored entity and returns the result.
	// Soft deleted entities cannot be updated.
	Update(ctx context.Context, id string, patch func(*T)) (*T, error)
	// SoftDelete stamps deletedAt. Deleting twice returns ErrNotFound.
	SoftDelete(ctx context.Context, id string) error
	// GetByID returns the entity regardless of deletedAt.
	GetByID(ctx context.Context, id string) (*T, error)
	// ListByMerchant returns the merchant's active entities, newest first. Entities
	// created at the same instant keep insertion order in memory; the gorm
	// implementation orders them by id instead.
	ListByMerchant(ctx context.Context, merchantID string, opts ...ListOption) ([]*T, error)
	// List returns every active entity regardless of merchant. Reserved for operator
	// views that enumerate tenants.
	List(ctx context.Context, opts ...ListOption) ([]*T, error)
}

// ListOptions tune listing queries.
type ListOptions struct {
	IncludeDeleted bool
}

type ListOption func(*ListOptions)

// IncludeDeleted makes a listing return soft deleted entities too.
func IncludeDeleted() ListOption {
	return func(o *ListOptions) { o.IncludeDeleted = true }
}

// ApplyListOptions folds opts into a ListOptions value.
func ApplyListOptions(opts []ListOption) ListOptions {
	var o ListOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// Clock returns the current time. Repositories take one so tests control timestamps.
type Clock func() time.Time

// SystemClock is the wall clock in UTC.
func SystemClock() time.Time { return time.Now().UTC() }

// NewID returns "<prefix>_<random>".
func NewID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
}

type cloner[T any] interface {
	Clone() *T
}

// Clone copies v, deeply when T provides a Clone method.
func Clone[T any](v *T) *T {
	if c, ok := any(v).(cloner[T]); ok {
		return c.Clone()
	}
	cp := *v
	return &cp
}

// VersionedUpdater is implemented by repositories that detect concurrent writes.
// UpdateVersion fails with ErrConflict unless the stored version equals expected.
type VersionedUpdater[T any] interface {
	UpdateVersion(ctx context.Context, id string, expected int, patch func(*T)) (*T, error)
}
