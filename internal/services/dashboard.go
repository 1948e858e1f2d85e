package services

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

// DashboardService aggregates the merchant home page figures.
type DashboardService struct {
	repos *Repositories
	log   zerolog.Logger
}

// Summary is the merchant dashboard. Money is grouped by currency.
type Summary struct {
	MerchantID      string                        `json:"merchantId"`
	Documents       map[models.DocumentKind]int   `json:"documents"`
	Clients         int                           `json:"clients"`
	Items           int                           `json:"items"`
	ActiveSchedules int                           `json:"activeSchedules"`
	PendingPayments int                           `json:"pendingPayments"`
	Outstanding     map[string]decimal.Decimal    `json:"outstanding"`
	Paid            map[string]decimal.Decimal    `json:"paid"`
	InvoiceStatuses map[models.DocumentStatus]int `json:"invoiceStatuses"`
}

func (s *DashboardService) Summary(ctx context.Context, merchantID string) validation.Result[*Summary] {
	if _, err := activeMerchant(ctx, s.repos, merchantID); err != nil {
		return failure[*Summary](s.log, err)
	}
	sum := &Summary{
		MerchantID:      merchantID,
		Documents:       make(map[models.DocumentKind]int, len(models.DocumentKinds)),
		Outstanding:     map[string]decimal.Decimal{},
		Paid:            map[string]decimal.Decimal{},
		InvoiceStatuses: map[models.DocumentStatus]int{},
	}

	for _, kind := range models.DocumentKinds {
		docs, err := s.repos.Documents[kind].ListByMerchant(ctx, merchantID)
		if err != nil {
			return failure[*Summary](s.log, err)
		}
		sum.Documents[kind] = len(docs)
		if kind != models.KindInvoice {
			continue
		}
		for _, d := range docs {
			sum.InvoiceStatuses[d.Status]++
			switch d.Status {
			case models.StatusPending:
				sum.Outstanding[d.Currency] = sum.Outstanding[d.Currency].Add(d.Amount)
			case models.StatusPaid:
				sum.Paid[d.Currency] = sum.Paid[d.Currency].Add(d.Amount)
			}
		}
	}

	clients, err := s.repos.Clients.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[*Summary](s.log, err)
	}
	sum.Clients = len(clients)
	items, err := s.repos.Items.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[*Summary](s.log, err)
	}
	sum.Items = len(items)

	schedules, err := s.repos.Schedules.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[*Summary](s.log, err)
	}
	for _, sc := range schedules {
		if sc.Enabled {
			sum.ActiveSchedules++
		}
	}
	payments, err := s.repos.Payments.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[*Summary](s.log, err)
	}
	for _, p := range payments {
		if p.IsPending() {
			sum.PendingPayments++
		}
	}
	return validation.OK(sum, "")
}
