package services

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store"
)

// Seeded accounts.
const (
	SeedOperatorEmail = "operator@bpsp.local"
	SeedMerchantEmail = "admin@demo.local"
)

// Seed creates the operator account and a demo merchant with one admin, client and
// catalog item. It does nothing when the operator already exists.
func (s *Services) Seed(ctx context.Context, password string) error {
	_, err := s.Users.FindByEmail(ctx, SeedOperatorEmail)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	hash, err := s.Users.HashPassword(password)
	if err != nil {
		return err
	}
	if _, err := s.repos.Users.Add(ctx, &models.User{
		Email:        SeedOperatorEmail,
		Name:         "Operator",
		Role:         models.RoleOperator,
		PasswordHash: hash,
	}); err != nil {
		return err
	}

	m, err := s.repos.Merchants.Add(ctx, &models.Merchant{
		Name:          "Demo Merchant",
		InvoiceEmail:  "billing@demo.local",
		InvoicePrefix: "DEMO",
		DefaultTaxID:  models.TaxStandard,
		Status:        models.MerchantStatusActive,
	})
	if err != nil {
		return err
	}
	admin, err := s.repos.Users.Add(ctx, &models.User{
		MerchantID:   m.ID,
		Email:        SeedMerchantEmail,
		Name:         "Demo Admin",
		Role:         models.RoleMerchantAdmin,
		PasswordHash: hash,
	})
	if err != nil {
		return err
	}
	if _, err := s.repos.Clients.Add(ctx, &models.Client{
		MerchantID: m.ID,
		Name:       "Acme Corporation",
		Email:      "ap@acme.example",
		CreatedBy:  admin.ID,
	}); err != nil {
		return err
	}
	if _, err := s.repos.Items.Add(ctx, &models.Item{
		MerchantID: m.ID,
		Name:       "Consulting (hour)",
		UnitPrice:  decimal.NewFromInt(10000),
		TaxID:      models.TaxStandard,
		CreatedBy:  admin.ID,
	}); err != nil {
		return err
	}
	s.opts.log.Info().Str("merchant_id", m.ID).Msg("demo data seeded")
	return nil
}
