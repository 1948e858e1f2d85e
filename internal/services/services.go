// Package services holds the mutation entry points of every entity family. Each entry
// point validates its typed request, applies the billing rules and returns a
// validation.Result; errors never cross the package boundary.
package services

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/billing"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/logger"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store"
	"golang.org/x/crypto/bcrypt"
)

type options struct {
	now        store.Clock
	log        zerolog.Logger
	bcryptCost int
}

// Option configures the services.
type Option func(*options)

// WithClock overrides the time source used for dates and timestamps.
func WithClock(now store.Clock) Option {
	return func(o *options) { o.now = now }
}

// WithLogger replaces the component loggers.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithBcryptCost sets the cost used to hash passwords.
func WithBcryptCost(cost int) Option {
	return func(o *options) { o.bcryptCost = cost }
}

// Services bundles every entry point over one set of repositories.
type Services struct {
	Taxes        *billing.TaxTable
	Merchants    *MerchantService
	Cards        *CardService
	Users        *UserService
	Clients      *ClientService
	Items        *ItemService
	BankAccounts *BankAccountService
	Documents    map[models.DocumentKind]*DocumentService
	Schedules    *ScheduleService
	Payments     *PaymentService
	Dashboard    *DashboardService

	repos *Repositories
	opts  options
}

// New wires the services.
func New(repos *Repositories, taxes *billing.TaxTable, opts ...Option) *Services {
	o := options{
		now:        store.SystemClock,
		log:        logger.WithComponent("services"),
		bcryptCost: bcrypt.DefaultCost,
	}
	for _, fn := range opts {
		fn(&o)
	}

	s := &Services{Taxes: taxes, repos: repos, opts: o}
	s.Merchants = &MerchantService{repos: repos, taxes: taxes, log: o.log.With().Str("service", "merchants").Logger()}
	s.Cards = &CardService{repos: repos, now: o.now, log: o.log.With().Str("service", "cards").Logger()}
	s.Users = &UserService{repos: repos, cost: o.bcryptCost, log: o.log.With().Str("service", "users").Logger()}
	s.Clients = &ClientService{repos: repos, log: o.log.With().Str("service", "clients").Logger()}
	s.Items = &ItemService{repos: repos, taxes: taxes, log: o.log.With().Str("service", "items").Logger()}
	s.BankAccounts = &BankAccountService{repos: repos, log: o.log.With().Str("service", "bank_accounts").Logger()}

	s.Documents = make(map[models.DocumentKind]*DocumentService, len(models.DocumentKinds))
	for _, k := range models.DocumentKinds {
		s.Documents[k] = &DocumentService{
			kind:  k,
			repos: repos,
			docs:  repos.Documents[k],
			taxes: taxes,
			now:   o.now,
			log:   o.log.With().Str("service", "documents").Str("kind", string(k)).Logger(),
			numMu: new(sync.Mutex),
		}
	}
	for _, d := range s.Documents {
		d.invoices = s.Documents[models.KindInvoice]
	}

	s.Schedules = &ScheduleService{
		repos:    repos,
		invoices: s.Documents[models.KindInvoice],
		now:      o.now,
		log:      o.log.With().Str("service", "schedules").Logger(),
	}
	s.Payments = &PaymentService{repos: repos, now: o.now, log: o.log.With().Str("service", "payments").Logger()}
	s.Dashboard = &DashboardService{repos: repos, log: o.log.With().Str("service", "dashboard").Logger()}
	return s
}

// Document returns the service of kind k, or nil for an unknown kind.
func (s *Services) Document(k models.DocumentKind) *DocumentService { return s.Documents[k] }

// lookup fetches id and checks that it belongs to merchantID. Soft deleted entities are
// returned only when withDeleted is set.
func lookup[T any, P store.Record[T]](ctx context.Context, repo store.Repository[T], entity, merchantID, id string, withDeleted bool) (*T, error) {
	e, err := repo.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, notFound(entity, id)
	}
	if err != nil {
		return nil, err
	}
	p := P(e)
	if p.ScopeID() != merchantID || (p.IsDeleted() && !withDeleted) {
		return nil, notFound(entity, id)
	}
	return e, nil
}

// active is lookup without soft deleted entities.
func active[T any, P store.Record[T]](ctx context.Context, repo store.Repository[T], entity, merchantID, id string) (*T, error) {
	return lookup[T, P](ctx, repo, entity, merchantID, id, false)
}

// update applies patch, checking version when the repository supports it and the caller
// sent one.
func update[T any](ctx context.Context, repo store.Repository[T], id string, version int, patch func(*T)) (*T, error) {
	if vu, ok := repo.(store.VersionedUpdater[T]); ok && version > 0 {
		return vu.UpdateVersion(ctx, id, version, patch)
	}
	return repo.Update(ctx, id, patch)
}

// activeMerchant returns the merchant unless it is missing or deleted.
func activeMerchant(ctx context.Context, repos *Repositories, merchantID string) (*models.Merchant, error) {
	return active[models.Merchant](ctx, repos.Merchants, models.EntityMerchant, merchantID, merchantID)
}
