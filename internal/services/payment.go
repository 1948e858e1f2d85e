package services

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

// PaymentService records payments against pending invoices. Settlement is a manual
// approval; no money moves here.
type PaymentService struct {
	repos *Repositories
	now   store.Clock
	log   zerolog.Logger
}

func (s *PaymentService) invoices() store.Repository[models.Document] {
	return s.repos.Documents[models.KindInvoice]
}

// check validates req against the invoice it targets. selfID excludes the payment being
// updated from the outstanding balance.
func (s *PaymentService) check(ctx context.Context, merchantID, selfID string, req PaymentRequest) (*models.Document, error) {
	v := validation.Struct(req)
	var inv *models.Document
	if req.InvoiceID != "" {
		var err error
		inv, err = active[models.Document](ctx, s.invoices(), "invoice", merchantID, req.InvoiceID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			v.Add("invoiceId", "invoice not found")
		case err != nil:
			return nil, err
		}
	}
	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	if inv.Status != models.StatusPending {
		return nil, stateErr("invoice", inv.ID, "payments can only be recorded against pending invoices, this one is %s", inv.Status)
	}

	payments, err := s.repos.Payments.ListByMerchant(ctx, merchantID)
	if err != nil {
		return nil, err
	}
	paid := req.Amount
	for _, p := range payments {
		if p.InvoiceID == inv.ID && p.ID != selfID && p.Status != models.PaymentFailed {
			paid = paid.Add(p.Amount)
		}
	}
	if paid.GreaterThan(inv.Amount) {
		v.Add("amount", "amount exceeds the outstanding invoice balance")
		return nil, &ValidationError{Violations: v}
	}
	return inv, nil
}

func (s *PaymentService) List(ctx context.Context, merchantID string) validation.Result[[]*models.Payment] {
	list, err := s.repos.Payments.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[[]*models.Payment](s.log, err)
	}
	return validation.OK(list, "")
}

func (s *PaymentService) Get(ctx context.Context, merchantID, id string) validation.Result[*models.Payment] {
	p, err := lookup[models.Payment](ctx, s.repos.Payments, models.EntityPayment, merchantID, id, true)
	if err != nil {
		return failure[*models.Payment](s.log, err)
	}
	return validation.OK(p, "")
}

func (s *PaymentService) Create(ctx context.Context, merchantID string, req PaymentRequest) validation.Result[*models.Payment] {
	if _, err := activeMerchant(ctx, s.repos, merchantID); err != nil {
		return failure[*models.Payment](s.log, err)
	}
	inv, err := s.check(ctx, merchantID, "", req)
	if err != nil {
		return failure[*models.Payment](s.log, err)
	}
	p, err := s.repos.Payments.Add(ctx, &models.Payment{
		InvoiceID:     inv.ID,
		MerchantID:    merchantID,
		Amount:        req.Amount,
		Fee:           req.Fee,
		TotalAmount:   req.Amount.Add(req.Fee),
		Status:        models.PaymentPendingApproval,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		return failure[*models.Payment](s.log, err)
	}
	s.log.Info().Str("payment_id", p.ID).Str("invoice_id", inv.ID).Str("amount", p.Amount.String()).Msg("payment recorded")
	return validation.OK(p, "Payment recorded and awaiting approval.")
}

func (s *PaymentService) pending(ctx context.Context, merchantID, id string) (*models.Payment, error) {
	p, err := active[models.Payment](ctx, s.repos.Payments, models.EntityPayment, merchantID, id)
	if err != nil {
		return nil, err
	}
	if !p.IsPending() {
		return nil, stateErr(models.EntityPayment, id, "payment is %s, only pending payments can change", p.Status)
	}
	return p, nil
}

func (s *PaymentService) Update(ctx context.Context, merchantID, id string, req PaymentRequest) validation.Result[*models.Payment] {
	if _, err := s.pending(ctx, merchantID, id); err != nil {
		return failure[*models.Payment](s.log, err)
	}
	inv, err := s.check(ctx, merchantID, id, req)
	if err != nil {
		return failure[*models.Payment](s.log, err)
	}
	p, err := update(ctx, s.repos.Payments, id, req.Version, func(p *models.Payment) {
		p.InvoiceID = inv.ID
		p.Amount = req.Amount
		p.Fee = req.Fee
		p.TotalAmount = req.Amount.Add(req.Fee)
		p.PaymentMethod = req.PaymentMethod
	})
	if err != nil {
		return failure[*models.Payment](s.log, err)
	}
	return validation.OK(p, "Payment updated successfully.")
}

// Delete discards a payment that was not settled.
func (s *PaymentService) Delete(ctx context.Context, merchantID, id string) validation.Result[struct{}] {
	p, err := active[models.Payment](ctx, s.repos.Payments, models.EntityPayment, merchantID, id)
	if err != nil {
		return failure[struct{}](s.log, err)
	}
	if p.Status == models.PaymentSettled {
		return failure[struct{}](s.log, stateErr(models.EntityPayment, id, "settled payments cannot be deleted"))
	}
	if err := s.repos.Payments.SoftDelete(ctx, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	return validation.OK(struct{}{}, "Payment deleted successfully.")
}

// Settle approves a pending payment. When the settled payments cover the invoice amount
// the invoice becomes paid, and the merchant's transaction count grows by one.
func (s *PaymentService) Settle(ctx context.Context, merchantID, id string) validation.Result[*models.Payment] {
	if _, err := s.pending(ctx, merchantID, id); err != nil {
		return failure[*models.Payment](s.log, err)
	}
	now := s.now()
	p, err := s.repos.Payments.Update(ctx, id, func(p *models.Payment) {
		p.Status = models.PaymentSettled
		settled := now
		p.SettledAt = &settled
	})
	if err != nil {
		return failure[*models.Payment](s.log, err)
	}
	if _, err := s.repos.Merchants.Update(ctx, merchantID, func(m *models.Merchant) { m.TransactionCount++ }); err != nil {
		return failure[*models.Payment](s.log, err)
	}
	if err := s.markPaid(ctx, merchantID, p.InvoiceID); err != nil {
		return failure[*models.Payment](s.log, err)
	}
	s.log.Info().Str("payment_id", id).Msg("payment settled")
	return validation.OK(p, "Payment settled.")
}

func (s *PaymentService) markPaid(ctx context.Context, merchantID, invoiceID string) error {
	inv, err := active[models.Document](ctx, s.invoices(), "invoice", merchantID, invoiceID)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !inv.Kind.CanTransition(inv.Status, models.StatusPaid) {
		return nil
	}
	payments, err := s.repos.Payments.ListByMerchant(ctx, merchantID)
	if err != nil {
		return err
	}
	settled := decimal.Zero
	for _, p := range payments {
		if p.InvoiceID == invoiceID && p.Status == models.PaymentSettled {
			settled = settled.Add(p.Amount)
		}
	}
	if settled.LessThan(inv.Amount) {
		return nil
	}
	_, err = s.invoices().Update(ctx, invoiceID, func(d *models.Document) { d.Status = models.StatusPaid })
	return err
}

// Fail rejects a pending payment.
func (s *PaymentService) Fail(ctx context.Context, merchantID, id string) validation.Result[*models.Payment] {
	if _, err := s.pending(ctx, merchantID, id); err != nil {
		return failure[*models.Payment](s.log, err)
	}
	p, err := s.repos.Payments.Update(ctx, id, func(p *models.Payment) { p.Status = models.PaymentFailed })
	if err != nil {
		return failure[*models.Payment](s.log, err)
	}
	s.log.Info().Str("payment_id", id).Msg("payment failed")
	return validation.OK(p, "Payment marked as failed.")
}
