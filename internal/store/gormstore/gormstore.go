// Package gormstore implements store.Repository on top of gorm. It keeps the in-memory
// semantics and adds optimistic concurrency: an update only applies when the stored
// version still matches the version that was read.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"reflect"

	"github.com/wbsdickson/bpsp-portal-sub001/internal/store"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type preload struct {
	name string
	args []any
}

type config struct {
	now          store.Clock
	newID        func(prefix string) string
	scopeColumn  string
	scope        func(*gorm.DB) *gorm.DB
	preloads     []preload
	associations []string
}

// Option configures a Repository.
type Option func(*config)

// WithClock overrides the time source.
func WithClock(now store.Clock) Option {
	return func(c *config) { c.now = now }
}

// WithScopeColumn names the column compared by ListByMerchant (default "merchant_id").
func WithScopeColumn(col string) Option {
	return func(c *config) { c.scopeColumn = col }
}

// WithScope restricts every query, e.g. to one document kind.
func WithScope(fn func(*gorm.DB) *gorm.DB) Option {
	return func(c *config) { c.scope = fn }
}

// WithPreload loads the named association on every read. args are passed to gorm's
// Preload, e.g. a func(*gorm.DB) *gorm.DB that orders the children.
func WithPreload(name string, args ...any) Option {
	return func(c *config) { c.preloads = append(c.preloads, preload{name: name, args: args}) }
}

// WithReplacedAssociations makes Update replace the named has-many associations
// wholesale; children missing from the patched entity are deleted.
func WithReplacedAssociations(names ...string) Option {
	return func(c *config) { c.associations = append(c.associations, names...) }
}

// Repository stores T in the table gorm derives from it.
type Repository[T any, P store.Record[T]] struct {
	db  *gorm.DB
	cfg config
}

// New returns a repository bound to db, e.g. gormstore.New[models.Client](db).
func New[T any, P store.Record[T]](db *gorm.DB, opts ...Option) *Repository[T, P] {
	cfg := config{
		now:         store.SystemClock,
		newID:       store.NewID,
		scopeColumn: "merchant_id",
		scope:       func(db *gorm.DB) *gorm.DB { return db },
	}
	for _, o := range opts {
		o(&cfg)
	}
	return &Repository[T, P]{db: db, cfg: cfg}
}

func (r *Repository[T, P]) query(ctx context.Context, db *gorm.DB) *gorm.DB {
	q := db.WithContext(ctx).Scopes(r.cfg.scope)
	for _, p := range r.cfg.preloads {
		q = q.Preload(p.name, p.args...)
	}
	return q
}

func (r *Repository[T, P]) find(ctx context.Context, db *gorm.DB, id string) (*T, error) {
	e := new(T)
	err := r.query(ctx, db).Unscoped().Where("id = ?", id).First(e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (r *Repository[T, P]) Add(ctx context.Context, entity *T) (*T, error) {
	e := store.Clone(entity)
	p := P(e)
	p.Stamp(r.cfg.newID(p.IDPrefix()), r.cfg.now())
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, fmt.Errorf("gormstore: create %T: %w", e, err)
	}
	return r.find(ctx, r.db, p.GetID())
}

func (r *Repository[T, P]) Update(ctx context.Context, id string, patch func(*T)) (*T, error) {
	return r.update(ctx, id, 0, patch)
}

// UpdateVersion is Update with a caller supplied token: it fails with store.ErrConflict
// unless the stored version equals expected.
func (r *Repository[T, P]) UpdateVersion(ctx context.Context, id string, expected int, patch func(*T)) (*T, error) {
	return r.update(ctx, id, expected, patch)
}

func (r *Repository[T, P]) update(ctx context.Context, id string, expected int, patch func(*T)) (*T, error) {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := r.find(ctx, tx, id)
		if err != nil {
			return err
		}
		p := P(cur)
		if p.IsDeleted() {
			return store.ErrNotFound
		}
		prev := p.GetVersion()
		if expected > 0 && prev != expected {
			return store.ErrConflict
		}
		patch(cur)
		if p.GetID() != id {
			return fmt.Errorf("gormstore: patch changed id of %q", id)
		}
		p.Touch(r.cfg.now())

		res := tx.Unscoped().Model(cur).
			Select("*").
			Omit(clause.Associations).
			Where("version = ?", prev).
			Updates(cur)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return store.ErrConflict
		}
		for _, name := range r.cfg.associations {
			field := reflect.ValueOf(cur).Elem().FieldByName(name)
			if !field.IsValid() {
				return fmt.Errorf("gormstore: %T has no association %q", cur, name)
			}
			if err := tx.Model(cur).Association(name).Unscoped().Replace(field.Addr().Interface()); err != nil {
				return fmt.Errorf("gormstore: replace %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.find(ctx, r.db, id)
}

func (r *Repository[T, P]) SoftDelete(ctx context.Context, id string) error {
	// the default scope skips rows that are already deleted
	res := r.db.WithContext(ctx).Scopes(r.cfg.scope).Model(new(T)).
		Where("id = ?", id).
		Update("deleted_at", r.cfg.now())
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *Repository[T, P]) GetByID(ctx context.Context, id string) (*T, error) {
	return r.find(ctx, r.db, id)
}

func (r *Repository[T, P]) ListByMerchant(ctx context.Context, merchantID string, opts ...store.ListOption) ([]*T, error) {
	return r.list(ctx, r.query(ctx, r.db).Where(r.cfg.scopeColumn+" = ?", merchantID), opts)
}

func (r *Repository[T, P]) List(ctx context.Context, opts ...store.ListOption) ([]*T, error) {
	return r.list(ctx, r.query(ctx, r.db), opts)
}

// list orders newest first. Rows sharing created_at fall back to id order, which is
// stable but unrelated to insertion order.
func (r *Repository[T, P]) list(_ context.Context, q *gorm.DB, opts []store.ListOption) ([]*T, error) {
	if store.ApplyListOptions(opts).IncludeDeleted {
		q = q.Unscoped()
	}
	var out []*T
	if err := q.Order("created_at DESC").Order("id DESC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
