package services

import (
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store/gormstore"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store/memstore"
	"gorm.io/gorm"
)

// Repositories holds one repository per entity type. Documents are split by kind so each
// family keeps its own collection.
type Repositories struct {
	Merchants    store.Repository[models.Merchant]
	Cards        store.Repository[models.MerchantCard]
	Users        store.Repository[models.User]
	Clients      store.Repository[models.Client]
	Items        store.Repository[models.Item]
	BankAccounts store.Repository[models.BankAccount]
	Documents    map[models.DocumentKind]store.Repository[models.Document]
	Schedules    store.Repository[models.AutoIssuanceSchedule]
	Payments     store.Repository[models.Payment]
}

// NewMemoryRepositories returns empty in-memory repositories.
func NewMemoryRepositories(opts ...memstore.Option) *Repositories {
	docs := make(map[models.DocumentKind]store.Repository[models.Document], len(models.DocumentKinds))
	for _, k := range models.DocumentKinds {
		docs[k] = memstore.New[models.Document](opts...)
	}
	return &Repositories{
		Merchants:    memstore.New[models.Merchant](opts...),
		Cards:        memstore.New[models.MerchantCard](opts...),
		Users:        memstore.New[models.User](opts...),
		Clients:      memstore.New[models.Client](opts...),
		Items:        memstore.New[models.Item](opts...),
		BankAccounts: memstore.New[models.BankAccount](opts...),
		Documents:    docs,
		Schedules:    memstore.New[models.AutoIssuanceSchedule](opts...),
		Payments:     memstore.New[models.Payment](opts...),
	}
}

// NewGormRepositories returns repositories backed by db. The schema must already exist.
func NewGormRepositories(db *gorm.DB, opts ...gormstore.Option) *Repositories {
	docs := make(map[models.DocumentKind]store.Repository[models.Document], len(models.DocumentKinds))
	for _, k := range models.DocumentKinds {
		kind := k
		docOpts := append([]gormstore.Option{
			gormstore.WithScope(func(q *gorm.DB) *gorm.DB { return q.Where("kind = ?", kind) }),
			gormstore.WithPreload("Items", orderedItems),
			gormstore.WithReplacedAssociations("Items"),
		}, opts...)
		docs[k] = gormstore.New[models.Document](db, docOpts...)
	}
	return &Repositories{
		Merchants:    gormstore.New[models.Merchant](db, append([]gormstore.Option{gormstore.WithScopeColumn("id")}, opts...)...),
		Cards:        gormstore.New[models.MerchantCard](db, opts...),
		Users:        gormstore.New[models.User](db, opts...),
		Clients:      gormstore.New[models.Client](db, opts...),
		Items:        gormstore.New[models.Item](db, opts...),
		BankAccounts: gormstore.New[models.BankAccount](db, opts...),
		Documents:    docs,
		Schedules:    gormstore.New[models.AutoIssuanceSchedule](db, opts...),
		Payments:     gormstore.New[models.Payment](db, opts...),
	}
}

func orderedItems(db *gorm.DB) *gorm.DB { return db.Order("position") }
