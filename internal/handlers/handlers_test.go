package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/billing"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/services"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
	"golang.org/x/crypto/bcrypt"
)

type envelope[T any] struct {
	Success bool                `json:"success"`
	Data    T                   `json:"data"`
	Errors  map[string][]string `json:"errors"`
	Message string              `json:"message"`
}

type fixture struct {
	mux      *http.ServeMux
	svc      *services.Services
	merchant *models.Merchant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)
	svc := services.New(services.NewMemoryRepositories(), billing.NewTaxTable(models.DefaultTaxes()...),
		services.WithLogger(zerolog.Nop()),
		services.WithBcryptCost(bcrypt.MinCost),
		services.WithClock(func() time.Time { return now }),
	)
	res := svc.Merchants.Create(context.Background(), services.MerchantRequest{Name: "Shop", InvoiceEmail: "billing@shop.test"})
	require.True(t, res.Success, res.Message)

	mux := http.NewServeMux()
	base := "/api/merchants/{merchantID}"
	NewResourceHandler[models.Client, services.ClientRequest](svc.Clients).Register(mux, base+"/clients")
	NewResourceHandler[models.BankAccount, services.BankAccountRequest](svc.BankAccounts).Register(mux, base+"/bank-accounts")
	NewDocumentHandler(svc.Document(models.KindInvoice)).Register(mux, base+"/invoices")
	NewDocumentHandler(svc.Document(models.KindQuotation)).Register(mux, base+"/quotations")
	NewPaymentHandler(svc.Payments).Register(mux, base+"/payments")
	mh := NewMerchantHandler(svc.Merchants)
	mux.HandleFunc("POST /api/operator/merchants/{id}/suspend", mh.Suspend)
	dh := NewDashboardHandler(svc.Dashboard, svc.Taxes)
	mux.HandleFunc("GET "+base+"/dashboard", dh.Summary)
	mux.HandleFunc("GET /api/taxes", dh.Taxes)
	return &fixture{mux: mux, svc: svc, merchant: res.Data}
}

func (f *fixture) path(collection string, parts ...string) string {
	p := "/api/merchants/" + f.merchant.ID + "/" + collection
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func (f *fixture) do(t *testing.T, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	r := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		r.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	f.mux.ServeHTTP(rec, r)
	return rec
}

func (f *fixture) json(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	return f.do(t, method, path, "application/json", body)
}

func (f *fixture) form(t *testing.T, method, path string, vals url.Values) *httptest.ResponseRecorder {
	return f.do(t, method, path, "application/x-www-form-urlencoded", vals.Encode())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) envelope[T] {
	t.Helper()
	var env envelope[T]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func (f *fixture) client(t *testing.T) *models.Client {
	t.Helper()
	rec := f.form(t, http.MethodPost, f.path("clients"), url.Values{"name": {"Acme"}, "email": {"ap@acme.test"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[*models.Client](t, rec).Data
}

func TestClientCRUD(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	assert.Equal(t, "Acme", c.Name)

	rec := f.json(t, http.MethodPut, f.path("clients", c.ID), `{"name":"Acme Corp","email":"ap@acme.test"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Acme Corp", decode[*models.Client](t, rec).Data.Name)

	rec = f.json(t, http.MethodPost, f.path("clients"), `{"name":""}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[any](t, rec).Errors, "name")

	rec = f.json(t, http.MethodGet, f.path("clients"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]*models.Client](t, rec).Data, 1)

	rec = f.json(t, http.MethodDelete, f.path("clients", c.ID), "")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.json(t, http.MethodDelete, f.path("clients", c.ID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.json(t, http.MethodGet, "/api/merchants/mer_other/clients/"+c.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "other merchant's scope")
}

func TestInvoice_JSONAndForm(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	rec := f.json(t, http.MethodPost, f.path("invoices"),
		`{"clientId":"`+c.ID+`","issueDate":"2024-03-01","items":[{"name":"Consulting","quantity":2,"unitPrice":"1000","taxId":"tax_10"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inv := decode[*models.Document](t, rec).Data
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(2200)), inv.Amount.String())
	assert.Equal(t, "INV-2024-0001", inv.Number)

	rec = f.form(t, http.MethodPost, f.path("invoices"), url.Values{
		"clientId":  {c.ID},
		"issueDate": {"2024-03-02"},
		"items":     {`[{"name":"Support","quantity":1,"unitPrice":500,"taxId":"tax_8"}]`},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, decode[*models.Document](t, rec).Data.Amount.Equal(decimal.NewFromInt(540)))

	rec = f.form(t, http.MethodPost, f.path("invoices"), url.Values{
		"clientId": {c.ID}, "issueDate": {"2024-03-02"}, "items": {`[{"name":`},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[any](t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, validation.GenericFailure, env.Message)

	rec = f.json(t, http.MethodPost, f.path("invoices"), `{"clientId":"`+c.ID+`","issueDate":"2024-03-01","items":[]}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, decode[any](t, rec).Errors, "items")

	rec = f.json(t, http.MethodGet, f.path("invoices", "inv_missing"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.json(t, http.MethodDelete, f.path("clients", c.ID), "")
	assert.Equal(t, http.StatusConflict, rec.Code, "client referenced by invoices")
}

func TestDocumentStatusAndConvert(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)

	rec := f.json(t, http.MethodPost, f.path("quotations"),
		`{"clientId":"`+c.ID+`","issueDate":"2024-03-01","items":[{"name":"Design","quantity":1,"unitPrice":"3000","taxId":"tax_10"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	quo := decode[*models.Document](t, rec).Data

	rec = f.json(t, http.MethodPost, f.path("quotations", quo.ID, "convert"), "")
	assert.Equal(t, http.StatusConflict, rec.Code, "draft quotation")

	for _, status := range []string{"sent", "accepted"} {
		rec = f.json(t, http.MethodPost, f.path("quotations", quo.ID, "status"), `{"status":"`+status+`"}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	rec = f.json(t, http.MethodPost, f.path("quotations", quo.ID, "convert"), "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inv := decode[*models.Document](t, rec).Data
	assert.Equal(t, models.KindInvoice, inv.Kind)
	assert.Equal(t, quo.ID, inv.SourceID)
	assert.True(t, inv.Amount.Equal(decimal.NewFromInt(3300)))

	rec = f.json(t, http.MethodPost, f.path("invoices", inv.ID, "convert"), "")
	assert.Equal(t, http.StatusNotFound, rec.Code, "convert is mounted for quotations only")
}

func TestBankAccount_AccountNumber(t *testing.T) {
	f := newFixture(t)
	rec := f.json(t, http.MethodPost, f.path("bank-accounts"),
		`{"bankName":"MUFG","accountType":"savings","accountNumber":"12345","accountHolder":"Shop KK"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	msgs := decode[any](t, rec).Errors["accountNumber"]
	require.NotEmpty(t, msgs)
	assert.Contains(t, msgs[0], "exactly 7 digits")
}

func TestPaymentSettleAndDashboard(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	rec := f.json(t, http.MethodPost, f.path("invoices"),
		`{"clientId":"`+c.ID+`","issueDate":"2024-03-01","status":"pending","items":[{"name":"Consulting","quantity":1,"unitPrice":"1000","taxId":"tax_10"}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	inv := decode[*models.Document](t, rec).Data

	rec = f.json(t, http.MethodPost, f.path("payments"), `{"invoiceId":"`+inv.ID+`","amount":"1100","fee":"0","paymentMethod":"card"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	p := decode[*models.Payment](t, rec).Data

	rec = f.json(t, http.MethodPost, f.path("payments", p.ID, "settle"), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = f.json(t, http.MethodPost, f.path("payments", p.ID, "settle"), "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.json(t, http.MethodGet, f.path("dashboard"), "")
	require.Equal(t, http.StatusOK, rec.Code)
	sum := decode[*services.Summary](t, rec).Data
	assert.Equal(t, 1, sum.Documents[models.KindInvoice])
	assert.True(t, sum.Paid["JPY"].Equal(decimal.NewFromInt(1100)))

	rec = f.json(t, http.MethodGet, "/api/taxes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.Tax](t, rec).Data, 3)
}

func TestSuspendedMerchantCannotIssue(t *testing.T) {
	f := newFixture(t)
	c := f.client(t)
	rec := f.json(t, http.MethodPost, "/api/operator/merchants/"+f.merchant.ID+"/suspend", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.json(t, http.MethodPost, f.path("invoices"),
		`{"clientId":"`+c.ID+`","issueDate":"2024-03-01","items":[{"name":"x","quantity":1,"unitPrice":"1","taxId":"tax_0"}]}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestMalformedJSON(t *testing.T) {
	f := newFixture(t)
	rec := f.json(t, http.MethodPost, f.path("clients"), `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, validation.GenericFailure, decode[any](t, rec).Message)
}
