package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

// BankAccountService manages payout accounts.
type BankAccountService struct {
	repos *Repositories
	log   zerolog.Logger
}

func (s *BankAccountService) List(ctx context.Context, merchantID string) validation.Result[[]*models.BankAccount] {
	list, err := s.repos.BankAccounts.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[[]*models.BankAccount](s.log, err)
	}
	return validation.OK(list, "")
}

func (s *BankAccountService) Get(ctx context.Context, merchantID, id string) validation.Result[*models.BankAccount] {
	b, err := lookup[models.BankAccount](ctx, s.repos.BankAccounts, models.EntityBankAccount, merchantID, id, true)
	if err != nil {
		return failure[*models.BankAccount](s.log, err)
	}
	return validation.OK(b, "")
}

func (s *BankAccountService) Create(ctx context.Context, merchantID string, req BankAccountRequest) validation.Result[*models.BankAccount] {
	if _, err := activeMerchant(ctx, s.repos, merchantID); err != nil {
		return failure[*models.BankAccount](s.log, err)
	}
	if v := validation.Struct(req); !v.Empty() {
		return validation.Invalid[*models.BankAccount](v, "")
	}
	b, err := s.repos.BankAccounts.Add(ctx, &models.BankAccount{
		MerchantID:    merchantID,
		BankName:      req.BankName,
		BranchName:    req.BranchName,
		AccountType:   req.AccountType,
		AccountNumber: req.AccountNumber,
		AccountHolder: req.AccountHolder,
	})
	if err != nil {
		return failure[*models.BankAccount](s.log, err)
	}
	return validation.OK(b, "Bank account created successfully.")
}

func (s *BankAccountService) Update(ctx context.Context, merchantID, id string, req BankAccountRequest) validation.Result[*models.BankAccount] {
	if _, err := active[models.BankAccount](ctx, s.repos.BankAccounts, models.EntityBankAccount, merchantID, id); err != nil {
		return failure[*models.BankAccount](s.log, err)
	}
	if v := validation.Struct(req); !v.Empty() {
		return validation.Invalid[*models.BankAccount](v, "")
	}
	b, err := update(ctx, s.repos.BankAccounts, id, req.Version, func(b *models.BankAccount) {
		b.BankName = req.BankName
		b.BranchName = req.BranchName
		b.AccountType = req.AccountType
		b.AccountNumber = req.AccountNumber
		b.AccountHolder = req.AccountHolder
	})
	if err != nil {
		return failure[*models.BankAccount](s.log, err)
	}
	return validation.OK(b, "Bank account updated successfully.")
}

func (s *BankAccountService) Delete(ctx context.Context, merchantID, id string) validation.Result[struct{}] {
	if _, err := active[models.BankAccount](ctx, s.repos.BankAccounts, models.EntityBankAccount, merchantID, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	if err := s.repos.BankAccounts.SoftDelete(ctx, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	return validation.OK(struct{}{}, "Bank account deleted successfully.")
}
