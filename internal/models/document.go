package models

import (
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// DocumentKind identifies a member of the document family. All kinds share one shape
// and differ only by status vocabulary, id prefix and numbering prefix.
type DocumentKind string

const (
	KindInvoice       DocumentKind = "invoice"
	KindQuotation     DocumentKind = "quotation"
	KindDeliveryNote  DocumentKind = "delivery_note"
	KindPurchaseOrder DocumentKind = "purchase_order"
	KindReceipt       DocumentKind = "receipt"
)

// DocumentKinds lists every kind in display order.
var DocumentKinds = []DocumentKind{KindInvoice, KindQuotation, KindDeliveryNote, KindPurchaseOrder, KindReceipt}

// DocumentStatus is a kind-specific lifecycle state.
type DocumentStatus string

const (
	StatusDraft DocumentStatus = "draft"

	// invoice
	StatusPending  DocumentStatus = "pending"
	StatusPaid     DocumentStatus = "paid"
	StatusRejected DocumentStatus = "rejected"
	StatusVoid     DocumentStatus = "void"

	// quotation
	StatusSent     DocumentStatus = "sent"
	StatusAccepted DocumentStatus = "accepted"
	StatusExpired  DocumentStatus = "expired"

	// delivery note, purchase order, receipt
	StatusIssued    DocumentStatus = "issued"
	StatusDelivered DocumentStatus = "delivered"
	StatusOrdered   DocumentStatus = "ordered"
	StatusReceived  DocumentStatus = "received"
	StatusCancelled DocumentStatus = "cancelled"
)

type kindSpec struct {
	idPrefix     string
	numberPrefix string
	transitions  map[DocumentStatus][]DocumentStatus
}

var kindSpecs = map[DocumentKind]kindSpec{
	KindInvoice: {"inv", "INV", map[DocumentStatus][]DocumentStatus{
		StatusDraft:    {StatusPending, StatusVoid},
		StatusPending:  {StatusPaid, StatusRejected, StatusVoid},
		StatusRejected: {StatusDraft, StatusVoid},
		StatusPaid:     nil,
		StatusVoid:     nil,
	}},
	KindQuotation: {"quo", "QUO", map[DocumentStatus][]DocumentStatus{
		StatusDraft:    {StatusSent, StatusExpired},
		StatusSent:     {StatusAccepted, StatusRejected, StatusExpired},
		StatusAccepted: nil,
		StatusRejected: nil,
		StatusExpired:  nil,
	}},
	KindDeliveryNote: {"dn", "DN", map[DocumentStatus][]DocumentStatus{
		StatusDraft:     {StatusIssued, StatusCancelled},
		StatusIssued:    {StatusDelivered, StatusCancelled},
		StatusDelivered: nil,
		StatusCancelled: nil,
	}},
	KindPurchaseOrder: {"po", "PO", map[DocumentStatus][]DocumentStatus{
		StatusDraft:     {StatusOrdered, StatusCancelled},
		StatusOrdered:   {StatusReceived, StatusCancelled},
		StatusReceived:  nil,
		StatusCancelled: nil,
	}},
	KindReceipt: {"rcp", "RCP", map[DocumentStatus][]DocumentStatus{
		StatusDraft:  {StatusIssued, StatusVoid},
		StatusIssued: {StatusVoid},
		StatusVoid:   nil,
	}},
}

// Valid reports whether k is a known document kind.
func (k DocumentKind) Valid() bool {
	_, ok := kindSpecs[k]
	return ok
}

// NumberPrefix returns the default prefix used when numbering documents of this kind.
func (k DocumentKind) NumberPrefix() string { return kindSpecs[k].numberPrefix }

// Statuses returns the status vocabulary of the kind, draft first.
func (k DocumentKind) Statuses() []DocumentStatus {
	out := []DocumentStatus{StatusDraft}
	for s := range kindSpecs[k].transitions {
		if s != StatusDraft {
			out = append(out, s)
		}
	}
	slices.Sort(out[1:])
	return out
}

// AllowsStatus reports whether s belongs to the kind's vocabulary.
func (k DocumentKind) AllowsStatus(s DocumentStatus) bool {
	_, ok := kindSpecs[k].transitions[s]
	return ok
}

// CanTransition reports whether a document of this kind may move from one status to another.
// Staying in the same status is always allowed.
func (k DocumentKind) CanTransition(from, to DocumentStatus) bool {
	if from == to {
		return k.AllowsStatus(from)
	}
	return slices.Contains(kindSpecs[k].transitions[from], to)
}

// IsTerminal reports whether no transition leaves s.
func (k DocumentKind) IsTerminal(s DocumentStatus) bool {
	next, ok := kindSpecs[k].transitions[s]
	return ok && len(next) == 0
}

// Document is an invoice, quotation, delivery note, purchase order or receipt.
// Amount is derived from Items and is never edited directly.
type Document struct {
	Model

	Kind       DocumentKind `gorm:"size:20;index;not null" json:"kind"`
	MerchantID string       `gorm:"size:64;index;not null" json:"merchantId"`
	ClientID   string       `gorm:"size:64;index;not null" json:"clientId"`

	Number    string         `gorm:"size:50;index" json:"number"`
	IssueDate time.Time      `gorm:"not null" json:"issueDate"`
	DueDate   *time.Time     `json:"dueDate,omitempty"`
	Status    DocumentStatus `gorm:"size:20;not null" json:"status"`

	Amount   decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Currency string          `gorm:"size:3;not null" json:"currency"`
	Notes    string          `gorm:"type:text" json:"notes,omitempty"`

	// SourceID points at the quotation or template this document was produced from.
	SourceID  string `gorm:"size:64" json:"sourceId,omitempty"`
	CreatedBy string `gorm:"size:64" json:"createdBy,omitempty"`

	Items []LineItem `gorm:"foreignKey:DocumentID;constraint:OnDelete:CASCADE" json:"items"`
}

func (d *Document) IDPrefix() string { return kindSpecs[d.Kind].idPrefix }
func (d *Document) ScopeID() string  { return d.MerchantID }

// CanEdit returns true while the document has not reached a terminal status.
func (d *Document) CanEdit() bool {
	return !d.Kind.IsTerminal(d.Status)
}

// Clone returns a deep copy, so callers never share the Items backing array.
func (d *Document) Clone() *Document {
	c := *d
	c.detach()
	c.Items = slices.Clone(d.Items)
	c.DueDate = copyTime(d.DueDate)
	return &c
}

// LineItem is one priced line of a document. Amount is derived from quantity,
// unit price and the tax rate of TaxID.
type LineItem struct {
	ID         string          `gorm:"primaryKey;size:64" json:"id"`
	DocumentID string          `gorm:"size:64;index;not null" json:"documentId"`
	ItemID     string          `gorm:"size:64" json:"itemId,omitempty"`
	Name       string          `gorm:"size:500;not null" json:"name"`
	Quantity   int             `gorm:"not null;check:quantity >= 1" json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:numeric;not null;check:unit_price >= 0" json:"unitPrice"`
	TaxID      string          `gorm:"size:64;not null" json:"taxId"`
	Amount     decimal.Decimal `gorm:"type:numeric;not null" json:"amount"`
	Position   int             `gorm:"not null;default:0" json:"position"`
}

// FormatNumber renders a document number.
// Format: PREFIX-YYYY-NNNN (e.g., INV-2025-0001)
func FormatNumber(prefix string, year, seq int) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, year, seq)
}
