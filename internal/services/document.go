package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/billing"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/models"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/store"
	"github.com/wbsdickson/bpsp-portal-sub001/internal/validation"
)

const dateLayout = "2006-01-02"

// DocumentService serves one document kind. All kinds share the payload and the totaling
// rules; only statuses and numbering differ.
type DocumentService struct {
	kind     models.DocumentKind
	repos    *Repositories
	docs     store.Repository[models.Document]
	invoices *DocumentService
	taxes    *billing.TaxTable
	now      store.Clock
	numMu    *sync.Mutex // serializes number allocation and insert
	log      zerolog.Logger
}

func kindLabel(k models.DocumentKind) string {
	return strings.ReplaceAll(string(k), "_", " ")
}

// Kind returns the document kind served.
func (s *DocumentService) Kind() models.DocumentKind { return s.kind }

func (s *DocumentService) entity() string { return kindLabel(s.kind) }

func (s *DocumentService) today() time.Time {
	now := s.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *DocumentService) List(ctx context.Context, merchantID string) validation.Result[[]*models.Document] {
	list, err := s.docs.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[[]*models.Document](s.log, err)
	}
	return validation.OK(list, "")
}

func (s *DocumentService) Get(ctx context.Context, merchantID, id string) validation.Result[*models.Document] {
	d, err := lookup[models.Document](ctx, s.docs, s.entity(), merchantID, id, true)
	if err != nil {
		return failure[*models.Document](s.log, err)
	}
	return validation.OK(d, "")
}

func (s *DocumentService) Create(ctx context.Context, merchantID string, req DocumentRequest) validation.Result[*models.Document] {
	merchant, err := issuing(ctx, s.repos, merchantID)
	if err != nil {
		return failure[*models.Document](s.log, err)
	}
	doc, err := s.prepare(ctx, merchantID, req, nil)
	if err != nil {
		return failure[*models.Document](s.log, err)
	}
	if s.kind == models.KindInvoice && doc.Status == models.StatusPaid && doc.Amount.IsPositive() {
		return failure[*models.Document](s.log, stateErr(s.entity(), "", "a new invoice has no settled payments and cannot start as paid"))
	}
	created, err := s.insert(ctx, merchant, doc)
	if err != nil {
		return failure[*models.Document](s.log, err)
	}
	s.log.Info().Str("merchant_id", merchantID).Str("document_id", created.ID).Str("number", created.Number).
		Str("amount", created.Amount.String()).Msg("document created")
	return validation.OK(created, capitalize(s.entity())+" created successfully.")
}

func (s *DocumentService) Update(ctx context.Context, merchantID, id string, req DocumentRequest) validation.Result[*models.Document] {
	if _, err := activeMerchant(ctx, s.repos, merchantID); err != nil {
		return failure[*models.Document](s.log, err)
	}
	cur, err := active[models.Document](ctx, s.docs, s.entity(), merchantID, id)
	if err != nil {
		return failure[*models.Document](s.log, err)
	}
	if !cur.CanEdit() {
		return failure[*models.Document](s.log, stateErr(s.entity(), id, "%s is %s and can no longer be edited", s.entity(), cur.Status))
	}
	next, err := s.prepare(ctx, merchantID, req, cur)
	if err != nil {
		return failure[*models.Document](s.log, err)
	}
	if err := s.checkPayments(ctx, cur, next.Amount, next.Status); err != nil {
		return failure[*models.Document](s.log, err)
	}

	s.numMu.Lock()
	defer s.numMu.Unlock()
	if next.Number == "" {
		next.Number = cur.Number
	} else if next.Number != cur.Number {
		if err := s.checkNumber(ctx, merchantID, id, next.Number); err != nil {
			return failure[*models.Document](s.log, err)
		}
	}
	assignLineIDs(next.Items, id)

	updated, err := update(ctx, s.docs, id, req.Version, func(d *models.Document) {
		d.ClientID = next.ClientID
		d.Number = next.Number
		d.IssueDate = next.IssueDate
		d.DueDate = next.DueDate
		d.Status = next.Status
		d.Currency = next.Currency
		d.Notes = next.Notes
		d.Items = next.Items
		d.Amount = next.Amount
	})
	if err != nil {
		return failure[*models.Document](s.log, err)
	}
	return validation.OK(updated, capitalize(s.entity())+" updated successfully.")
}

// Delete soft deletes a document. Paid invoices and invoices used as a schedule template
// are kept.
func (s *DocumentService) Delete(ctx context.Context, merchantID, id string) validation.Result[struct{}] {
	cur, err := active[models.Document](ctx, s.docs, s.entity(), merchantID, id)
	if err != nil {
		return failure[struct{}](s.log, err)
	}
	if s.kind == models.KindInvoice {
		if cur.Status == models.StatusPaid {
			return failure[struct{}](s.log, stateErr(s.entity(), id, "paid invoices cannot be deleted"))
		}
		schedules, err := s.repos.Schedules.ListByMerchant(ctx, merchantID)
		if err != nil {
			return failure[struct{}](s.log, err)
		}
		for _, sc := range schedules {
			if sc.TemplateID == id {
				return failure[struct{}](s.log, stateErr(s.entity(), id, "invoice is the template of schedule %q", sc.ScheduleName))
			}
		}
	}
	if err := s.docs.SoftDelete(ctx, id); err != nil {
		return failure[struct{}](s.log, err)
	}
	return validation.OK(struct{}{}, capitalize(s.entity())+" deleted successfully.")
}

// ChangeStatus moves a document along its kind's lifecycle.
func (s *DocumentService) ChangeStatus(ctx context.Context, merchantID, id string, req StatusRequest) validation.Result[*models.Document] {
	v := validation.Struct(req)
	if req.Status != "" && !s.kind.AllowsStatus(req.Status) {
		validation.OneOf("status", req.Status, s.kind.Statuses(), v)
	}
	if !v.Empty() {
		return validation.Invalid[*models.Document](v, "")
	}
	cur, err := active[models.Document](ctx, s.docs, s.entity(), merchantID, id)
	if err != nil {
		return failure[*models.Document](s.log, err)
	}
	if s.kind.IsTerminal(cur.Status) {
		return failure[*models.Document](s.log, stateErr(s.entity(), id, "%s is %s and can no longer change status", s.entity(), cur.Status))
	}
	if !s.kind.CanTransition(cur.Status, req.Status) {
		return failure[*models.Document](s.log, stateErr(s.entity(), id, "cannot move %s from %s to %s", s.entity(), cur.Status, req.Status))
	}
	if err := s.checkPayments(ctx, cur, cur.Amount, req.Status); err != nil {
		return failure[*models.Document](s.log, err)
	}
	updated, err := s.docs.Update(ctx, id, func(d *models.Document) { d.Status = req.Status })
	if err != nil {
		return failure[*models.Document](s.log, err)
	}
	s.log.Info().Str("document_id", id).Str("from", string(cur.Status)).Str("to", string(req.Status)).Msg("document status changed")
	return validation.OK(updated, "Status updated.")
}

// checkPayments keeps an invoice consistent with its payments. Once payments are recorded
// the amount is frozen, and paid is only reached when settled payments cover the amount.
func (s *DocumentService) checkPayments(ctx context.Context, cur *models.Document, amount decimal.Decimal, status models.DocumentStatus) error {
	if s.kind != models.KindInvoice {
		return nil
	}
	payments, err := s.repos.Payments.ListByMerchant(ctx, cur.MerchantID)
	if err != nil {
		return err
	}
	recorded, settled := 0, decimal.Zero
	for _, p := range payments {
		if p.InvoiceID != cur.ID || p.Status == models.PaymentFailed {
			continue
		}
		recorded++
		if p.Status == models.PaymentSettled {
			settled = settled.Add(p.Amount)
		}
	}
	if recorded > 0 && !amount.Equal(cur.Amount) {
		return stateErr(s.entity(), cur.ID, "invoice has %d recorded payment(s), its amount can no longer change", recorded)
	}
	if status == models.StatusPaid && cur.Status != models.StatusPaid && settled.LessThan(amount) {
		return stateErr(s.entity(), cur.ID, "invoice becomes paid once settled payments cover %s", amount.String())
	}
	return nil
}

// ConvertQuotation creates a draft invoice from an accepted quotation. A quotation converts
// at most once.
func (s *DocumentService) ConvertQuotation(ctx context.Context, merchantID, id string) validation.Result[*models.Document] {
	if s.kind != models.KindQuotation {
		return failure[*models.Document](s.log, stateErr(s.entity(), id, "only quotations can be converted"))
	}
	merchant, err := issuing(ctx, s.repos, merchantID)
	if err != nil {
		return failure[*models.Document](s.log, err)
	}
	q, err := active[models.Document](ctx, s.docs, s.entity(), merchantID, id)
	if err != nil {
		return failure[*models.Document](s.log, err)
	}
	if q.Status != models.StatusAccepted {
		return failure[*models.Document](s.log, stateErr(s.entity(), id, "only accepted quotations can be converted, this one is %s", q.Status))
	}
	invoices, err := s.invoices.docs.ListByMerchant(ctx, merchantID)
	if err != nil {
		return failure[*models.Document](s.log, err)
	}
	for _, inv := range invoices {
		if inv.SourceID == q.ID {
			return failure[*models.Document](s.log, stateErr(s.entity(), id, "quotation was already converted to invoice %s", inv.Number))
		}
	}

	inv := derive(q, models.KindInvoice, q.ClientID, s.today())
	billing.Recompute(inv, s.taxes)
	created, err := s.invoices.insert(ctx, merchant, inv)
	if err != nil {
		return failure[*models.Document](s.log, err)
	}
	s.log.Info().Str("quotation_id", q.ID).Str("invoice_id", created.ID).Msg("quotation converted")
	return validation.OK(created, "Quotation converted to invoice "+created.Number+".")
}

// prepare validates req and returns the unsaved document it describes. cur is the stored
// document on update and nil on create.
func (s *DocumentService) prepare(ctx context.Context, merchantID string, req DocumentRequest, cur *models.Document) (*models.Document, error) {
	v := validation.Struct(req)
	doc := &models.Document{
		Kind:       s.kind,
		MerchantID: merchantID,
		ClientID:   req.ClientID,
		Number:     strings.TrimSpace(req.Number),
		Currency:   strings.ToUpper(req.Currency),
		Notes:      req.Notes,
	}
	if doc.Currency == "" {
		doc.Currency = billing.DefaultCurrency
	}
	if !v.Has("issueDate") {
		doc.IssueDate, _ = time.Parse(dateLayout, req.IssueDate)
	}
	if req.DueDate != "" && !v.Has("dueDate") {
		due, _ := time.Parse(dateLayout, req.DueDate)
		if !doc.IssueDate.IsZero() && due.Before(doc.IssueDate) {
			v.Add("dueDate", "dueDate must not be before issueDate")
		}
		doc.DueDate = &due
	}

	switch {
	case req.Status == "" && cur == nil:
		doc.Status = models.StatusDraft
	case req.Status == "":
		doc.Status = cur.Status
	case !s.kind.AllowsStatus(req.Status):
		validation.OneOf("status", req.Status, s.kind.Statuses(), v)
	case cur != nil && !s.kind.CanTransition(cur.Status, req.Status):
		v.Addf("status", "status cannot change from %s to %s", cur.Status, req.Status)
	default:
		doc.Status = req.Status
	}

	if req.ClientID != "" {
		_, err := active[models.Client](ctx, s.repos.Clients, models.EntityClient, merchantID, req.ClientID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			v.Add("clientId", "client not found")
		case err != nil:
			return nil, err
		}
	}

	doc.Items = make([]models.LineItem, 0, len(req.Items))
	for i, line := range req.Items {
		li, lv, err := s.resolveLine(ctx, merchantID, line)
		if err != nil {
			return nil, err
		}
		v.Merge(fmt.Sprintf("items[%d]", i), lv)
		doc.Items = append(doc.Items, li)
	}

	if !v.Empty() {
		return nil, &ValidationError{Violations: v}
	}
	billing.Recompute(doc, s.taxes)
	return doc, nil
}

// resolveLine fills catalog defaults and checks the fields struct tags cannot.
func (s *DocumentService) resolveLine(ctx context.Context, merchantID string, req LineItemRequest) (models.LineItem, validation.Violations, error) {
	v := make(validation.Violations)
	li := models.LineItem{
		ItemID:   req.ItemID,
		Name:     strings.TrimSpace(req.Name),
		Quantity: req.Quantity,
		TaxID:    req.TaxID,
	}
	if req.UnitPrice != nil {
		li.UnitPrice = *req.UnitPrice
	}

	if req.ItemID != "" {
		it, err := active[models.Item](ctx, s.repos.Items, models.EntityItem, merchantID, req.ItemID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			v.Add("itemId", "item not found")
		case err != nil:
			return li, nil, err
		default:
			if li.Name == "" {
				li.Name = it.Name
			}
			if req.UnitPrice == nil {
				li.UnitPrice = it.UnitPrice
			}
			if li.TaxID == "" {
				li.TaxID = it.TaxID
			}
		}
	} else if req.UnitPrice == nil {
		v.Add("unitPrice", "unitPrice is required")
	}

	validation.Required("name", li.Name, v)
	switch {
	case li.TaxID == "":
		v.Add("taxId", "taxId is required")
	case !s.taxes.Has(li.TaxID):
		v.Add("taxId", "taxId is not a known tax category")
	}
	return li, v, nil
}

// insert numbers doc when it has no number yet, assigns ids and stores it.
func (s *DocumentService) insert(ctx context.Context, merchant *models.Merchant, doc *models.Document) (*models.Document, error) {
	s.numMu.Lock()
	defer s.numMu.Unlock()

	if doc.Number == "" {
		n, err := s.nextNumber(ctx, merchant, doc.IssueDate.Year())
		if err != nil {
			return nil, err
		}
		doc.Number = n
	} else if err := s.checkNumber(ctx, merchant.ID, "", doc.Number); err != nil {
		return nil, err
	}
	doc.Kind = s.kind
	doc.ID = store.NewID(doc.IDPrefix())
	doc.CreatedBy = ActorFrom(ctx)
	assignLineIDs(doc.Items, doc.ID)
	return s.docs.Add(ctx, doc)
}

// nextNumber returns PREFIX-YYYY-NNNN, one past the highest sequence used in year,
// deleted documents included so numbers are never reused.
func (s *DocumentService) nextNumber(ctx context.Context, merchant *models.Merchant, year int) (string, error) {
	prefix := s.kind.NumberPrefix()
	if s.kind == models.KindInvoice && merchant.InvoicePrefix != "" {
		prefix = merchant.InvoicePrefix
	}
	all, err := s.docs.ListByMerchant(ctx, merchant.ID, store.IncludeDeleted())
	if err != nil {
		return "", err
	}
	stem := fmt.Sprintf("%s-%d-", prefix, year)
	last := 0
	for _, d := range all {
		rest, ok := strings.CutPrefix(d.Number, stem)
		if !ok {
			continue
		}
		if seq, err := strconv.Atoi(rest); err == nil && seq > last {
			last = seq
		}
	}
	return models.FormatNumber(prefix, year, last+1), nil
}

// checkNumber rejects a number already used by another document of the kind, deleted
// ones included.
func (s *DocumentService) checkNumber(ctx context.Context, merchantID, selfID, number string) error {
	docs, err := s.docs.ListByMerchant(ctx, merchantID, store.IncludeDeleted())
	if err != nil {
		return err
	}
	for _, d := range docs {
		if d.Number == number && d.ID != selfID {
			v := make(validation.Violations)
			v.Add("number", "number is already in use")
			return &ValidationError{Violations: v}
		}
	}
	return nil
}

func assignLineIDs(items []models.LineItem, documentID string) {
	for i := range items {
		items[i].ID = store.NewID("li")
		items[i].DocumentID = documentID
		items[i].Position = i
	}
}

// derive copies src into a new draft document of kind for clientID, issued on issue.
// The due date keeps its distance from the issue date.
func derive(src *models.Document, kind models.DocumentKind, clientID string, issue time.Time) *models.Document {
	d := &models.Document{
		Kind:       kind,
		MerchantID: src.MerchantID,
		ClientID:   clientID,
		IssueDate:  issue,
		Status:     models.StatusDraft,
		Currency:   src.Currency,
		Notes:      src.Notes,
		SourceID:   src.ID,
		Items:      make([]models.LineItem, len(src.Items)),
	}
	if src.DueDate != nil {
		due := issue.Add(src.DueDate.Sub(src.IssueDate))
		d.DueDate = &due
	}
	for i, li := range src.Items {
		d.Items[i] = models.LineItem{
			ItemID:    li.ItemID,
			Name:      li.Name,
			Quantity:  li.Quantity,
			UnitPrice: li.UnitPrice,
			TaxID:     li.TaxID,
		}
	}
	return d
}
