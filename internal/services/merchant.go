package services

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/billing"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

// MerchantService manages tenants. It is used from the operator portal only.
type MerchantService struct {
	repos *Repositories
	taxes *billing.TaxTable
	log   zerolog.Logger
}

func (s *MerchantService) check(req MerchantRequest) validation.Violations {
	v := validation.Struct(req)
	if req.DefaultTaxID != "" && !s.taxes.Has(req.DefaultTaxID) {
		v.Add("defaultTaxId", "defaultTaxId is not a known tax category")
	}
	return v
}

func (s *MerchantService) List(ctx context.Context) validation.Result[[]*models.Merchant] {
	list, err := s.repos.Merchants.List(ctx)
	if err != nil {
		return failure[[]*models.Merchant](s.log, err)
	}
	return validation.OK(list, "")
}

func (s *MerchantService) Get(ctx context.Context, id string) validation.Result[*models.Merchant] {
	m, err := lookup[models.Merchant](ctx, s.repos.Merchants, models.EntityMerchant, id, id, true)
	if err != nil {
		return failure[*models.Merchant](s.log, err)
	}
	return validation.OK(m, "")
}

func (s *MerchantService) Create(ctx context.Context, req MerchantRequest) validation.Result[*models.Merchant] {
	if v := s.check(req); !v.Empty() {
		return validation.Invalid[*models.Merchant](v, "")
	}
	m, err := s.repos.Merchants.Add(ctx, &models.Merchant{
		Name:          strings.TrimSpace(req.Name),
		Address:       req.Address,
		PhoneNumber:   req.PhoneNumber,
		InvoiceEmail:  req.InvoiceEmail,
		InvoicePrefix: strings.ToUpper(req.InvoicePrefix),
		DefaultTaxID:  req.DefaultTaxID,
		Status:        models.MerchantStatusActive,
	})
	if err != nil {
		return failure[*models.Merchant](s.log, err)
	}
	s.log.Info().Str("merchant_id", m.ID).Msg("merchant created")
	return validation.OK(m, "Merchant created successfully.")
}

func (s *MerchantService) Update(ctx context.Context, id string, req MerchantRequest) validation.Result[*models.Merchant] {
	if _, err := activeMerchant(ctx, s.repos, id); err != nil {
		return failure[*models.Merchant](s.log, err)
	}
	if v := s.check(req); !v.Empty() {
		return validation.Invalid[*models.Merchant](v, "")
	}
	m, err := update(ctx, s.repos.Merchants, id, req.Version, func(m *models.Merchant) {
		m.Name = strings.TrimSpace(req.Name)
		m.Address = req.Address
		m.PhoneNumber = req.PhoneNumber
		m.InvoiceEmail = req.InvoiceEmail
		m.InvoicePrefix = strings.ToUpper(req.InvoicePrefix)
		m.DefaultTaxID = req.DefaultTaxID
	})
	if err != nil {
		return failure[*models.Merchant](s.log, err)
	}
	return validation.OK(m, "Merchant updated successfully.")
}

// Delete soft deletes a merchant that no longer has active clients.
func (s *MerchantService) Delete(ctx context.Context, id string) validation.Result[struct{}] {
	if _, err := activeMerchant(ctx, s.repos, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	clients, err := s.repos.Clients.ListByMerchant(ctx, id)
	if err != nil {
		return failure[struct{}](s.log, err)
	}
	if len(clients) > 0 {
		return failure[struct{}](s.log, stateErr(models.EntityMerchant, id, "merchant still has %d active clients", len(clients)))
	}
	if err := s.repos.Merchants.SoftDelete(ctx, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	s.log.Info().Str("merchant_id", id).Msg("merchant deleted")
	return validation.OK(struct{}{}, "Merchant deleted successfully.")
}

// Suspend stops a merchant from issuing documents.
func (s *MerchantService) Suspend(ctx context.Context, id string) validation.Result[*models.Merchant] {
	return s.setStatus(ctx, id, models.MerchantStatusSuspended, "Merchant suspended.")
}

// Activate lifts a suspension.
func (s *MerchantService) Activate(ctx context.Context, id string) validation.Result[*models.Merchant] {
	return s.setStatus(ctx, id, models.MerchantStatusActive, "Merchant activated.")
}

func (s *MerchantService) setStatus(ctx context.Context, id string, status models.MerchantStatus, msg string) validation.Result[*models.Merchant] {
	cur, err := activeMerchant(ctx, s.repos, id)
	if err != nil {
		return failure[*models.Merchant](s.log, err)
	}
	if cur.Status == status {
		return failure[*models.Merchant](s.log, stateErr(models.EntityMerchant, id, "merchant is already %s", status))
	}
	m, err := s.repos.Merchants.Update(ctx, id, func(m *models.Merchant) { m.Status = status })
	if err != nil {
		return failure[*models.Merchant](s.log, err)
	}
	s.log.Info().Str("merchant_id", id).Str("status", string(status)).Msg("merchant status changed")
	return validation.OK(m, msg)
}

// issuing returns the merchant when it may create documents.
func issuing(ctx context.Context, repos *Repositories, merchantID string) (*models.Merchant, error) {
	m, err := activeMerchant(ctx, repos, merchantID)
	if err != nil {
		return nil, err
	}
	if !m.IsActive() {
		return nil, stateErr(models.EntityMerchant, merchantID, "merchant is suspended")
	}
	return m, nil
}
