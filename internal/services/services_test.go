package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/billing"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testNow = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func newTestServices(t *testing.T, repos *Repositories) *Services {
	t.Helper()
	return New(repos, billing.NewTaxTable(models.DefaultTaxes()...),
		WithLogger(zerolog.Nop()),
		WithBcryptCost(bcrypt.MinCost),
		WithClock(func() time.Time { return testNow }),
	)
}

func setup(t *testing.T) (*Services, *models.Merchant) {
	t.Helper()
	svc := newTestServices(t, NewMemoryRepositories())
	res := svc.Merchants.Create(context.Background(), MerchantRequest{Name: "Shop", InvoiceEmail: "billing@shop.test"})
	require.True(t, res.Success, res.Message)
	return svc, res.Data
}

func mustClient(t *testing.T, svc *Services, merchantID, name string) *models.Client {
	t.Helper()
	res := svc.Clients.Create(context.Background(), merchantID, ClientRequest{Name: name})
	require.True(t, res.Success, res.Errors)
	return res.Data
}

func price(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func docRequest(clientID string) DocumentRequest {
	return DocumentRequest{
		ClientID:  clientID,
		IssueDate: "2024-03-01",
		Items:     []LineItemRequest{{Name: "Consulting", Quantity: 2, UnitPrice: price(1000), TaxID: models.TaxStandard}},
	}
}

func TestDocumentCreate_Totals(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	c := mustClient(t, svc, m.ID, "Acme")

	res := svc.Document(models.KindInvoice).Create(ctx, m.ID, docRequest(c.ID))
	require.True(t, res.Success, res.Errors)
	doc := res.Data

	assert.Equal(t, validation.OutcomeOK, res.Outcome)
	assert.True(t, strings.HasPrefix(doc.ID, "inv_"))
	assert.Equal(t, "INV-2024-0001", doc.Number)
	assert.Equal(t, models.StatusDraft, doc.Status)
	assert.Equal(t, "JPY", doc.Currency)
	require.Len(t, doc.Items, 1)
	assert.True(t, strings.HasPrefix(doc.Items[0].ID, "li_"))
	assert.Equal(t, doc.ID, doc.Items[0].DocumentID)
	assert.True(t, doc.Items[0].Amount.Equal(decimal.NewFromInt(2200)), doc.Items[0].Amount.String())
	assert.True(t, doc.Amount.Equal(decimal.NewFromInt(2200)), doc.Amount.String())

	again := svc.Document(models.KindInvoice).Create(ctx, m.ID, docRequest(c.ID))
	require.True(t, again.Success)
	assert.Equal(t, "INV-2024-0002", again.Data.Number)

	quote := svc.Document(models.KindQuotation).Create(ctx, m.ID, docRequest(c.ID))
	require.True(t, quote.Success)
	assert.Equal(t, "QUO-2024-0001", quote.Data.Number)
	assert.True(t, strings.HasPrefix(quote.Data.ID, "quo_"))
}

func TestDocumentCreate_Validation(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	c := mustClient(t, svc, m.ID, "Acme")
	invoices := svc.Document(models.KindInvoice)

	tests := []struct {
		name   string
		mutate func(*DocumentRequest)
		field  string
	}{
		{"empty items", func(r *DocumentRequest) { r.Items = []LineItemRequest{} }, "items"},
		{"missing client", func(r *DocumentRequest) { r.ClientID = "" }, "clientId"},
		{"unknown client", func(r *DocumentRequest) { r.ClientID = "cli_missing" }, "clientId"},
		{"bad date", func(r *DocumentRequest) { r.IssueDate = "01/03/2024" }, "issueDate"},
		{"zero quantity", func(r *DocumentRequest) { r.Items[0].Quantity = 0 }, "items[0].quantity"},
		{"negative price", func(r *DocumentRequest) { r.Items[0].UnitPrice = price(-1) }, "items[0].unitPrice"},
		{"unknown tax", func(r *DocumentRequest) { r.Items[0].TaxID = "tax_99" }, "items[0].taxId"},
		{"missing price", func(r *DocumentRequest) { r.Items[0].UnitPrice = nil }, "items[0].unitPrice"},
		{"foreign status", func(r *DocumentRequest) { r.Status = models.StatusAccepted }, "status"},
		{"due before issue", func(r *DocumentRequest) { r.DueDate = "2024-02-01" }, "dueDate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := docRequest(c.ID)
			tt.mutate(&req)
			res := invoices.Create(ctx, m.ID, req)
			assert.False(t, res.Success)
			assert.Equal(t, validation.OutcomeInvalid, res.Outcome)
			assert.True(t, res.Errors.Has(tt.field), "errors: %v", res.Errors)
		})
	}

	list := invoices.List(ctx, m.ID)
	assert.Empty(t, list.Data, "failed validation must not persist anything")
}

func TestDocumentCreate_CatalogDefaults(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	c := mustClient(t, svc, m.ID, "Acme")
	item := svc.Items.Create(ctx, m.ID, ItemRequest{Name: "Bento", UnitPrice: decimal.NewFromInt(500), TaxID: models.TaxReduced})
	require.True(t, item.Success, item.Errors)

	req := docRequest(c.ID)
	req.Items = []LineItemRequest{{ItemID: item.Data.ID, Quantity: 3}}
	res := svc.Document(models.KindDeliveryNote).Create(ctx, m.ID, req)
	require.True(t, res.Success, res.Errors)

	li := res.Data.Items[0]
	assert.Equal(t, "Bento", li.Name)
	assert.Equal(t, models.TaxReduced, li.TaxID)
	assert.True(t, li.Amount.Equal(decimal.NewFromInt(1620)), li.Amount.String())
	assert.Equal(t, "DN-2024-0001", res.Data.Number)

	del := svc.Items.Delete(ctx, m.ID, item.Data.ID)
	assert.Equal(t, validation.OutcomeState, del.Outcome, "item still used by a delivery note")
}

func TestDocumentUpdate_ReplacesItems(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	c := mustClient(t, svc, m.ID, "Acme")
	invoices := svc.Document(models.KindInvoice)
	created := invoices.Create(ctx, m.ID, docRequest(c.ID))
	require.True(t, created.Success)

	req := docRequest(c.ID)
	req.Items = []LineItemRequest{
		{Name: "Support", Quantity: 1, UnitPrice: price(500), TaxID: models.TaxReduced},
		{Name: "Setup", Quantity: 1, UnitPrice: price(100), TaxID: models.TaxExempt},
	}
	res := invoices.Update(ctx, m.ID, created.Data.ID, req)
	require.True(t, res.Success, res.Errors)
	assert.Len(t, res.Data.Items, 2)
	assert.True(t, res.Data.Amount.Equal(decimal.NewFromInt(640)), res.Data.Amount.String())
	assert.Equal(t, created.Data.Number, res.Data.Number)
	assert.Equal(t, 1, res.Data.Items[1].Position)

	missing := invoices.Update(ctx, m.ID, "inv_missing", req)
	assert.Equal(t, validation.OutcomeNotFound, missing.Outcome)
}

func TestDocumentStatusLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	c := mustClient(t, svc, m.ID, "Acme")
	invoices := svc.Document(models.KindInvoice)
	inv := invoices.Create(ctx, m.ID, docRequest(c.ID)).Data

	res := invoices.ChangeStatus(ctx, m.ID, inv.ID, StatusRequest{Status: models.StatusSent})
	assert.Equal(t, validation.OutcomeInvalid, res.Outcome, "sent is a quotation status")

	res = invoices.ChangeStatus(ctx, m.ID, inv.ID, StatusRequest{Status: models.StatusPaid})
	assert.Equal(t, validation.OutcomeState, res.Outcome, "draft cannot jump to paid")

	res = invoices.ChangeStatus(ctx, m.ID, inv.ID, StatusRequest{Status: models.StatusPending})
	require.True(t, res.Success, res.Message)
	res = invoices.ChangeStatus(ctx, m.ID, inv.ID, StatusRequest{Status: models.StatusPaid})
	assert.Equal(t, validation.OutcomeState, res.Outcome, "paid needs settled payments")
	res = invoices.ChangeStatus(ctx, m.ID, inv.ID, StatusRequest{Status: models.StatusVoid})
	require.True(t, res.Success, res.Message)

	res = invoices.ChangeStatus(ctx, m.ID, inv.ID, StatusRequest{Status: models.StatusDraft})
	assert.Equal(t, validation.OutcomeState, res.Outcome)
	upd := invoices.Update(ctx, m.ID, inv.ID, docRequest(c.ID))
	assert.Equal(t, validation.OutcomeState, upd.Outcome)
}

func TestConvertQuotation(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	c := mustClient(t, svc, m.ID, "Acme")
	quotes := svc.Document(models.KindQuotation)
	q := quotes.Create(ctx, m.ID, docRequest(c.ID)).Data

	res := quotes.ConvertQuotation(ctx, m.ID, q.ID)
	assert.Equal(t, validation.OutcomeState, res.Outcome, "draft quotation")

	require.True(t, quotes.ChangeStatus(ctx, m.ID, q.ID, StatusRequest{Status: models.StatusSent}).Success)
	require.True(t, quotes.ChangeStatus(ctx, m.ID, q.ID, StatusRequest{Status: models.StatusAccepted}).Success)

	res = quotes.ConvertQuotation(ctx, m.ID, q.ID)
	require.True(t, res.Success, res.Message)
	inv := res.Data
	assert.Equal(t, models.KindInvoice, inv.Kind)
	assert.Equal(t, q.ID, inv.SourceID)
	assert.Equal(t, models.StatusDraft, inv.Status)
	assert.True(t, inv.Amount.Equal(q.Amount))
	assert.Equal(t, "INV-2024-0001", inv.Number)
	assert.NotEqual(t, q.Items[0].ID, inv.Items[0].ID)

	again := quotes.ConvertQuotation(ctx, m.ID, q.ID)
	assert.Equal(t, validation.OutcomeState, again.Outcome)

	wrongKind := svc.Document(models.KindInvoice).ConvertQuotation(ctx, m.ID, inv.ID)
	assert.Equal(t, validation.OutcomeState, wrongKind.Outcome)
}

func TestBankAccount_AccountNumberDigits(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	req := BankAccountRequest{
		BankName:      "MUFG",
		AccountType:   models.AccountTypeSavings,
		AccountNumber: "12345",
		AccountHolder: "Shop KK",
	}
	res := svc.BankAccounts.Create(ctx, m.ID, req)
	require.False(t, res.Success)
	require.True(t, res.Errors.Has("accountNumber"))
	assert.Contains(t, res.Errors["accountNumber"][0], "exactly 7 digits")

	req.AccountNumber = "1234567"
	res = svc.BankAccounts.Create(ctx, m.ID, req)
	require.True(t, res.Success, res.Errors)
	assert.True(t, strings.HasPrefix(res.Data.ID, "bank_"))

	require.True(t, svc.BankAccounts.Delete(ctx, m.ID, res.Data.ID).Success)
	got := svc.BankAccounts.Get(ctx, m.ID, res.Data.ID)
	require.True(t, got.Success)
	assert.True(t, got.Data.DeletedAt.Valid, "bank accounts are soft deleted")
}

func TestMerchantScoping(t *testing.T) {
	ctx := context.Background()
	svc, m1 := setup(t)
	m2 := svc.Merchants.Create(ctx, MerchantRequest{Name: "Other", InvoiceEmail: "o@other.test"}).Data

	c1 := mustClient(t, svc, m1.ID, "One")
	c2 := mustClient(t, svc, m2.ID, "Two")
	require.True(t, svc.Items.Create(ctx, m1.ID, ItemRequest{Name: "A", TaxID: models.TaxExempt}).Success)
	require.True(t, svc.Items.Create(ctx, m2.ID, ItemRequest{Name: "B", TaxID: models.TaxExempt}).Success)
	for _, k := range models.DocumentKinds {
		require.True(t, svc.Document(k).Create(ctx, m1.ID, docRequest(c1.ID)).Success)
		require.True(t, svc.Document(k).Create(ctx, m2.ID, docRequest(c2.ID)).Success)
	}

	for _, c := range svc.Clients.List(ctx, m1.ID).Data {
		assert.Equal(t, m1.ID, c.MerchantID)
	}
	for _, it := range svc.Items.List(ctx, m1.ID).Data {
		assert.Equal(t, m1.ID, it.MerchantID)
	}
	for _, k := range models.DocumentKinds {
		docs := svc.Document(k).List(ctx, m1.ID).Data
		require.Len(t, docs, 1)
		assert.Equal(t, m1.ID, docs[0].MerchantID)
	}

	cross := svc.Clients.Get(ctx, m1.ID, c2.ID)
	assert.Equal(t, validation.OutcomeNotFound, cross.Outcome)
	res := svc.Document(models.KindInvoice).Create(ctx, m1.ID, docRequest(c2.ID))
	assert.True(t, res.Errors.Has("clientId"), "a client of another merchant is not visible")
}

func TestClientSoftDelete(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	keep := mustClient(t, svc, m.ID, "Keep")
	gone := mustClient(t, svc, m.ID, "Gone")

	require.True(t, svc.Clients.Delete(ctx, m.ID, gone.ID).Success)

	list := svc.Clients.List(ctx, m.ID).Data
	require.Len(t, list, 1)
	assert.Equal(t, keep.ID, list[0].ID)

	got := svc.Clients.Get(ctx, m.ID, gone.ID)
	require.True(t, got.Success)
	assert.True(t, got.Data.DeletedAt.Valid)

	assert.Equal(t, validation.OutcomeNotFound, svc.Clients.Delete(ctx, m.ID, gone.ID).Outcome)
	assert.Equal(t, validation.OutcomeNotFound, svc.Clients.Update(ctx, m.ID, gone.ID, ClientRequest{Name: "x"}).Outcome)

	require.True(t, svc.Document(models.KindInvoice).Create(ctx, m.ID, docRequest(keep.ID)).Success)
	res := svc.Clients.Delete(ctx, m.ID, keep.ID)
	assert.Equal(t, validation.OutcomeState, res.Outcome)
	assert.Contains(t, res.Message, "INV-2024-0001")
}

func TestMerchantLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)

	bad := svc.Merchants.Create(ctx, MerchantRequest{Name: "X", InvoiceEmail: "not-an-email", DefaultTaxID: "tax_x"})
	assert.True(t, bad.Errors.Has("invoiceEmail"))
	assert.True(t, bad.Errors.Has("defaultTaxId"))

	require.True(t, svc.Merchants.Suspend(ctx, m.ID).Success)
	assert.Equal(t, validation.OutcomeState, svc.Merchants.Suspend(ctx, m.ID).Outcome)

	c := mustClient(t, svc, m.ID, "Acme")
	res := svc.Document(models.KindInvoice).Create(ctx, m.ID, docRequest(c.ID))
	assert.Equal(t, validation.OutcomeState, res.Outcome, "suspended merchants cannot issue")

	require.True(t, svc.Merchants.Activate(ctx, m.ID).Success)
	assert.Equal(t, validation.OutcomeState, svc.Merchants.Delete(ctx, m.ID).Outcome, "merchant has an active client")

	require.True(t, svc.Clients.Delete(ctx, m.ID, c.ID).Success)
	require.True(t, svc.Merchants.Delete(ctx, m.ID).Success)
	assert.Empty(t, svc.Merchants.List(ctx).Data)
	assert.Equal(t, validation.OutcomeNotFound, svc.Clients.Create(ctx, m.ID, ClientRequest{Name: "late"}).Outcome)
}

func TestInvoicePrefixNumbering(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, NewMemoryRepositories())
	m := svc.Merchants.Create(ctx, MerchantRequest{Name: "Shop", InvoiceEmail: "a@b.test", InvoicePrefix: "shp"}).Data
	c := mustClient(t, svc, m.ID, "Acme")

	first := svc.Document(models.KindInvoice).Create(ctx, m.ID, docRequest(c.ID)).Data
	assert.Equal(t, "SHP-2024-0001", first.Number)
	require.True(t, svc.Document(models.KindInvoice).Delete(ctx, m.ID, first.ID).Success)

	second := svc.Document(models.KindInvoice).Create(ctx, m.ID, docRequest(c.ID)).Data
	assert.Equal(t, "SHP-2024-0002", second.Number, "numbers of deleted documents are not reused")

	req := docRequest(c.ID)
	req.Number = second.Number
	dup := svc.Document(models.KindInvoice).Create(ctx, m.ID, req)
	assert.True(t, dup.Errors.Has("number"))
}

func TestScheduleRunDue(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	c := mustClient(t, svc, m.ID, "Acme")
	tpl := svc.Document(models.KindInvoice).Create(ctx, m.ID, docRequest(c.ID)).Data

	bad := svc.Schedules.Create(ctx, m.ID, ScheduleRequest{ScheduleName: "x", ClientID: c.ID, IntervalType: "hourly", IntervalValue: 0, TemplateID: "inv_missing"})
	assert.True(t, bad.Errors.Has("intervalType"))
	assert.True(t, bad.Errors.Has("intervalValue"))
	assert.True(t, bad.Errors.Has("templateId"))
	assert.True(t, bad.Errors.Has("nextIssuanceDate"))

	res := svc.Schedules.Create(ctx, m.ID, ScheduleRequest{
		ScheduleName:     "Monthly retainer",
		ClientID:         c.ID,
		IntervalType:     models.IntervalWeekly,
		IntervalValue:    1,
		NextIssuanceDate: "2024-03-11",
		TemplateID:       tpl.ID,
	})
	require.True(t, res.Success, res.Errors)
	sc := res.Data

	run := svc.Schedules.RunDue(ctx)
	require.True(t, run.Success)
	assert.Empty(t, run.Data.Issued, "draft schedules do not issue")

	require.True(t, svc.Schedules.Activate(ctx, m.ID, sc.ID).Success)
	run = svc.Schedules.RunDue(ctx)
	require.True(t, run.Success)
	require.Len(t, run.Data.Issued, 1)

	issued := svc.Document(models.KindInvoice).Get(ctx, m.ID, run.Data.Issued[0]).Data
	assert.Equal(t, tpl.ID, issued.SourceID)
	assert.Equal(t, "2024-03-11", issued.IssueDate.Format(dateLayout))
	assert.Equal(t, "INV-2024-0002", issued.Number)
	assert.True(t, issued.Amount.Equal(tpl.Amount))

	after := svc.Schedules.Get(ctx, m.ID, sc.ID).Data
	assert.Equal(t, "2024-03-18", after.NextIssuanceDate.Format(dateLayout))
	require.NotNil(t, after.LastIssuedAt)

	run = svc.Schedules.RunDue(ctx)
	assert.Empty(t, run.Data.Issued, "next issuance is in the future")

	assert.Equal(t, validation.OutcomeState, svc.Document(models.KindInvoice).Delete(ctx, m.ID, tpl.ID).Outcome)
	assert.Equal(t, validation.OutcomeState, svc.Clients.Delete(ctx, m.ID, c.ID).Outcome)

	require.True(t, svc.Schedules.Deactivate(ctx, m.ID, sc.ID).Success)
	assert.False(t, svc.Schedules.Get(ctx, m.ID, sc.ID).Data.Enabled)
}

func TestPaymentSettlement(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	c := mustClient(t, svc, m.ID, "Acme")
	invoices := svc.Document(models.KindInvoice)
	inv := invoices.Create(ctx, m.ID, docRequest(c.ID)).Data

	req := PaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(2200), Fee: decimal.NewFromInt(66), PaymentMethod: "bank_transfer"}
	res := svc.Payments.Create(ctx, m.ID, req)
	assert.Equal(t, validation.OutcomeState, res.Outcome, "draft invoices take no payments")

	require.True(t, invoices.ChangeStatus(ctx, m.ID, inv.ID, StatusRequest{Status: models.StatusPending}).Success)

	over := req
	over.Amount = decimal.NewFromInt(5000)
	assert.True(t, svc.Payments.Create(ctx, m.ID, over).Errors.Has("amount"))

	res = svc.Payments.Create(ctx, m.ID, req)
	require.True(t, res.Success, res.Errors)
	p := res.Data
	assert.True(t, p.TotalAmount.Equal(decimal.NewFromInt(2266)))
	assert.Equal(t, models.PaymentPendingApproval, p.Status)

	settled := svc.Payments.Settle(ctx, m.ID, p.ID)
	require.True(t, settled.Success, settled.Message)
	assert.Equal(t, models.PaymentSettled, settled.Data.Status)
	require.NotNil(t, settled.Data.SettledAt)

	assert.Equal(t, models.StatusPaid, invoices.Get(ctx, m.ID, inv.ID).Data.Status)
	assert.Equal(t, 1, svc.Merchants.Get(ctx, m.ID).Data.TransactionCount)

	assert.Equal(t, validation.OutcomeState, svc.Payments.Settle(ctx, m.ID, p.ID).Outcome)
	assert.Equal(t, validation.OutcomeState, svc.Payments.Fail(ctx, m.ID, p.ID).Outcome)
	assert.Equal(t, validation.OutcomeState, svc.Payments.Delete(ctx, m.ID, p.ID).Outcome)

	sum := svc.Dashboard.Summary(ctx, m.ID)
	require.True(t, sum.Success)
	assert.Equal(t, 1, sum.Data.Documents[models.KindInvoice])
	assert.True(t, sum.Data.Paid["JPY"].Equal(decimal.NewFromInt(2200)))
	assert.Equal(t, 0, sum.Data.PendingPayments)
}

func TestInvoiceAmountFrozenByPayments(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	c := mustClient(t, svc, m.ID, "Acme")
	invoices := svc.Document(models.KindInvoice)

	req := docRequest(c.ID)
	req.Status = models.StatusPaid
	assert.Equal(t, validation.OutcomeState, invoices.Create(ctx, m.ID, req).Outcome, "new invoices cannot start paid")

	req.Status = models.StatusPending
	inv := invoices.Create(ctx, m.ID, req).Data
	require.NotNil(t, inv)
	require.True(t, inv.Amount.Equal(decimal.NewFromInt(2200)))

	pay := svc.Payments.Create(ctx, m.ID, PaymentRequest{InvoiceID: inv.ID, Amount: decimal.NewFromInt(2200), PaymentMethod: "card"})
	require.True(t, pay.Success, pay.Errors)

	smaller := docRequest(c.ID)
	smaller.Items[0].Quantity = 1
	res := invoices.Update(ctx, m.ID, inv.ID, smaller)
	assert.Equal(t, validation.OutcomeState, res.Outcome)
	assert.True(t, invoices.Get(ctx, m.ID, inv.ID).Data.Amount.Equal(decimal.NewFromInt(2200)))

	same := docRequest(c.ID)
	same.Notes = "net 30"
	res = invoices.Update(ctx, m.ID, inv.ID, same)
	require.True(t, res.Success, res.Message)
	assert.Equal(t, "net 30", res.Data.Notes)

	res = invoices.ChangeStatus(ctx, m.ID, inv.ID, StatusRequest{Status: models.StatusPaid})
	assert.Equal(t, validation.OutcomeState, res.Outcome, "payment is not settled yet")

	require.True(t, svc.Payments.Fail(ctx, m.ID, pay.Data.ID).Success)
	res = invoices.Update(ctx, m.ID, inv.ID, smaller)
	require.True(t, res.Success, res.Message)
	assert.True(t, res.Data.Amount.Equal(decimal.NewFromInt(1100)))
}

func TestScheduleRunDue_DeactivatesAfterEndDate(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	c := mustClient(t, svc, m.ID, "Acme")
	tpl := svc.Document(models.KindInvoice).Create(ctx, m.ID, docRequest(c.ID)).Data

	res := svc.Schedules.Create(ctx, m.ID, ScheduleRequest{
		ScheduleName:     "Last month",
		ClientID:         c.ID,
		IntervalType:     models.IntervalMonthly,
		IntervalValue:    1,
		NextIssuanceDate: "2024-03-11",
		EndDate:          "2024-03-20",
		TemplateID:       tpl.ID,
		Enabled:          true,
	})
	require.True(t, res.Success, res.Errors)

	run := svc.Schedules.RunDue(ctx)
	require.True(t, run.Success)
	require.Len(t, run.Data.Issued, 1)

	sc := svc.Schedules.Get(ctx, m.ID, res.Data.ID).Data
	assert.Equal(t, "2024-04-11", sc.NextIssuanceDate.Format(dateLayout))
	assert.False(t, sc.Enabled)
	assert.Equal(t, 0, svc.Dashboard.Summary(ctx, m.ID).Data.ActiveSchedules)

	expired := svc.Schedules.Create(ctx, m.ID, ScheduleRequest{
		ScheduleName:     "Lapsed",
		ClientID:         c.ID,
		IntervalType:     models.IntervalWeekly,
		IntervalValue:    1,
		StartDate:        "2024-01-01",
		EndDate:          "2024-02-01",
		TemplateID:       tpl.ID,
		Enabled:          true,
	})
	require.True(t, expired.Success, expired.Errors)
	run = svc.Schedules.RunDue(ctx)
	require.True(t, run.Success)
	assert.Empty(t, run.Data.Issued)
	assert.False(t, svc.Schedules.Get(ctx, m.ID, expired.Data.ID).Data.Enabled)
}

func TestDocumentNumber_NotReusedAfterDelete(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)
	c := mustClient(t, svc, m.ID, "Acme")
	invoices := svc.Document(models.KindInvoice)

	req := docRequest(c.ID)
	req.Number = "CUSTOM-1"
	first := invoices.Create(ctx, m.ID, req)
	require.True(t, first.Success, first.Errors)
	require.True(t, invoices.Delete(ctx, m.ID, first.Data.ID).Success)

	again := invoices.Create(ctx, m.ID, req)
	assert.Equal(t, validation.OutcomeInvalid, again.Outcome)
	assert.True(t, again.Errors.Has("number"))
}

func TestUsersAndSeed(t *testing.T) {
	ctx := context.Background()
	svc := newTestServices(t, NewMemoryRepositories())

	require.NoError(t, svc.Seed(ctx, "operator123"))
	require.NoError(t, svc.Seed(ctx, "operator123"))
	assert.Len(t, svc.Merchants.List(ctx).Data, 1, "seed is idempotent")

	op, err := svc.Users.Authenticate(ctx, " Operator@BPSP.local ", "operator123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleOperator, op.Role)
	_, err = svc.Users.Authenticate(ctx, SeedOperatorEmail, "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	m := svc.Merchants.List(ctx).Data[0]
	res := svc.Users.Create(ctx, m.ID, UserRequest{Email: SeedMerchantEmail, Role: models.RoleMerchantStaff})
	assert.True(t, res.Errors.Has("email"), "email is unique")

	res = svc.Users.Create(ctx, m.ID, UserRequest{Email: "staff@demo.local", Role: models.RoleOperator})
	assert.True(t, res.Errors.Has("role"), "operators are not created per merchant")

	res = svc.Users.Create(ctx, m.ID, UserRequest{Email: "staff@demo.local", Role: models.RoleMerchantStaff})
	require.True(t, res.Success, res.Errors)
	assert.False(t, res.Data.HasCredential())
}

func TestDocuments_GormBacked(t *testing.T) {
	ctx := context.Background()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", filepath.Base(t.Name()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	svc := newTestServices(t, NewGormRepositories(db))
	m := svc.Merchants.Create(ctx, MerchantRequest{Name: "Shop", InvoiceEmail: "a@b.test"}).Data
	c := mustClient(t, svc, m.ID, "Acme")
	invoices := svc.Document(models.KindInvoice)

	created := invoices.Create(ctx, m.ID, docRequest(c.ID))
	require.True(t, created.Success, created.Message)
	assert.True(t, created.Data.Amount.Equal(decimal.NewFromInt(2200)))
	assert.Empty(t, svc.Document(models.KindQuotation).List(ctx, m.ID).Data)

	req := docRequest(c.ID)
	req.Items = append(req.Items, LineItemRequest{Name: "Extra", Quantity: 1, UnitPrice: price(100), TaxID: models.TaxExempt})
	req.Version = created.Data.Version
	upd := invoices.Update(ctx, m.ID, created.Data.ID, req)
	require.True(t, upd.Success, upd.Message)
	require.Len(t, upd.Data.Items, 2)
	assert.Equal(t, "Extra", upd.Data.Items[1].Name)
	assert.True(t, upd.Data.Amount.Equal(decimal.NewFromInt(2300)))

	stale := invoices.Update(ctx, m.ID, created.Data.ID, req)
	assert.Equal(t, validation.OutcomeConflict, stale.Outcome)
}

func TestCards(t *testing.T) {
	ctx := context.Background()
	svc, m := setup(t)

	req := CardRequest{Brand: models.CardBrandVisa, Last4: "4242", ExpMonth: 2, ExpYear: 2024, HolderName: "TARO YAMADA"}
	res := svc.Cards.Create(ctx, m.ID, req)
	assert.True(t, res.Errors.Has("expYear"), "expired in February 2024")

	req.ExpMonth = 3
	res = svc.Cards.Create(ctx, m.ID, req)
	require.True(t, res.Success, res.Errors)
	assert.True(t, strings.HasPrefix(res.Data.ID, "card_"))

	req.Last4 = "42a2"
	assert.True(t, svc.Cards.Update(ctx, m.ID, res.Data.ID, req).Errors.Has("last4"))

	require.True(t, svc.Cards.Delete(ctx, m.ID, res.Data.ID).Success)
	assert.Empty(t, svc.Cards.List(ctx, m.ID).Data)
	assert.True(t, svc.Cards.Get(ctx, m.ID, res.Data.ID).Data.DeletedAt.Valid)
}
