// Package memstore is the in-memory Repository implementation. It is the reference
// behavior: last write wins, no conflict detection.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/samber/lo"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store"
)

type config struct {
	now   store.Clock
	newID func(prefix string) string
}

// Option configures a Repository.
type Option func(*config)

// WithClock overrides the time source.
func WithClock(now store.Clock) Option {
	return func(c *config) { c.now = now }
}

// WithIDGenerator overrides id generation.
func WithIDGenerator(fn func(prefix string) string) Option {
	return func(c *config) { c.newID = fn }
}

// Repository stores copies of T keyed by id. Reads hand out copies too, so callers can
// never mutate stored state without going through Update.
type Repository[T any, P store.Record[T]] struct {
	mu    sync.RWMutex
	items map[string]*T
	order []string // newest first
	cfg   config
}

// New returns an empty repository, e.g. memstore.New[models.Client]().
func New[T any, P store.Record[T]](opts ...Option) *Repository[T, P] {
	cfg := config{now: store.SystemClock, newID: store.NewID}
	for _, o := range opts {
		o(&cfg)
	}
	return &Repository[T, P]{items: make(map[string]*T), cfg: cfg}
}

func (r *Repository[T, P]) Add(ctx context.Context, entity *T) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stored := store.Clone(entity)
	p := P(stored)
	p.Stamp(r.cfg.newID(p.IDPrefix()), r.cfg.now())

	r.mu.Lock()
	defer r.mu.Unlock()
	id := p.GetID()
	if _, exists := r.items[id]; exists {
		return nil, fmt.Errorf("memstore: duplicate id %q", id)
	}
	r.items[id] = stored
	r.order = append([]string{id}, r.order...)
	return store.Clone(stored), nil
}

func (r *Repository[T, P]) Update(ctx context.Context, id string, patch func(*T)) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[id]
	if !ok || P(cur).IsDeleted() {
		return nil, store.ErrNotFound
	}
	next := store.Clone(cur)
	patch(next)
	if P(next).GetID() != id {
		return nil, fmt.Errorf("memstore: patch changed id of %q", id)
	}
	P(next).Touch(r.cfg.now())
	r.items[id] = next
	return store.Clone(next), nil
}

func (r *Repository[T, P]) SoftDelete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[id]
	if !ok || P(cur).IsDeleted() {
		return store.ErrNotFound
	}
	next := store.Clone(cur)
	P(next).MarkDeleted(r.cfg.now())
	r.items[id] = next
	return nil
}

func (r *Repository[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cur, ok := r.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return store.Clone(cur), nil
}

func (r *Repository[T, P]) ListByMerchant(ctx context.Context, merchantID string, opts ...store.ListOption) ([]*T, error) {
	return r.list(ctx, func(p P) bool { return p.ScopeID() == merchantID }, opts)
}

func (r *Repository[T, P]) List(ctx context.Context, opts ...store.ListOption) ([]*T, error) {
	return r.list(ctx, func(P) bool { return true }, opts)
}

func (r *Repository[T, P]) list(ctx context.Context, match func(P) bool, opts []store.ListOption) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o := store.ApplyListOptions(opts)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lo.FilterMap(r.order, func(id string, _ int) (*T, bool) {
		cur := r.items[id]
		p := P(cur)
		if !match(p) || (p.IsDeleted() && !o.IncludeDeleted) {
			return nil, false
		}
		return store.Clone(cur), true
	}), nil
}
