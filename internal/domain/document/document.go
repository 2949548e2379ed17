package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is the party a document is issued to
type Customer struct {
	Name    string
	Email   string
	Address string
	TaxID   string // optional, 13 digits
	Phone   string // optional, normalized on assembly
}

// Company is the issuer snapshot printed on a document
type Company struct {
	Name        string
	Address1    string
	Address2    string
	Tel         string
	TaxID       string
	BankAccount string
	HeaderLogo  string
	FooterLogo  string
	Signature   string
}

// Document is an assembled quotation, invoice or receipt.
// All fields are fixed at assembly; accessors return copies.
type Document struct {
	id        uuid.UUID
	docType   DocumentType
	number    string
	customer  Customer
	company   Company
	items     []LineItem
	totals    Totals
	taxRate   decimal.Decimal
	language  Language
	note      string
	createdAt time.Time
}

// ID returns the document ID
func (d *Document) ID() uuid.UUID { return d.id }

// Type returns the document type
func (d *Document) Type() DocumentType { return d.docType }

// Number returns the document number, e.g. INV-000042
func (d *Document) Number() string { return d.number }

// Customer returns the customer block
func (d *Document) Customer() Customer { return d.customer }

// Company returns the issuer snapshot
func (d *Document) Company() Company { return d.company }

// Items returns a copy of the line items in input order
func (d *Document) Items() []LineItem {
	items := make([]LineItem, len(d.items))
	copy(items, d.items)
	return items
}

// ItemCount returns the number of line items
func (d *Document) ItemCount() int { return len(d.items) }

// Totals returns subtotal, tax and total
func (d *Document) Totals() Totals { return d.totals }

// Subtotal returns the exact sum of line totals
func (d *Document) Subtotal() decimal.Decimal { return d.totals.Subtotal }

// TaxAmount returns the rounded tax
func (d *Document) TaxAmount() decimal.Decimal { return d.totals.TaxAmount }

// Total returns subtotal plus tax
func (d *Document) Total() decimal.Decimal { return d.totals.Total }

// TaxRate returns the applied rate as a fraction
func (d *Document) TaxRate() decimal.Decimal { return d.taxRate }

// Language returns the print language
func (d *Document) Language() Language { return d.language }

// Note returns the free text note
func (d *Document) Note() string { return d.note }

// CreatedAt returns the assembly time
func (d *Document) CreatedAt() time.Time { return d.createdAt }

// Snapshot is a plain copy of a Document used for persistence and rendering
type Snapshot struct {
	ID        uuid.UUID
	Type      DocumentType
	Number    string
	Customer  Customer
	Company   Company
	Items     []RawLineItem
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
	TaxRate   decimal.Decimal
	Language  Language
	Note      string
	CreatedAt time.Time
}

// Snapshot copies the document into a Snapshot
func (d *Document) Snapshot() Snapshot {
	items := make([]RawLineItem, len(d.items))
	for i, item := range d.items {
		items[i] = item.Raw()
	}
	return Snapshot{
		ID:        d.id,
		Type:      d.docType,
		Number:    d.number,
		Customer:  d.customer,
		Company:   d.company,
		Items:     items,
		Subtotal:  d.totals.Subtotal,
		TaxAmount: d.totals.TaxAmount,
		Total:     d.totals.Total,
		TaxRate:   d.taxRate,
		Language:  d.language,
		Note:      d.note,
		CreatedAt: d.createdAt,
	}
}

// Restore rebuilds a Document from a stored Snapshot. Items are re-validated
// and totals are recalculated; a mismatch with the stored amounts means the
// record was altered outside the assembler.
func Restore(s Snapshot) (*Document, error) {
	docType, err := ParseDocumentType(s.Type.String())
	if err != nil {
		return nil, err
	}
	if !IsValidNumber(s.Number) {
		return nil, &InvalidSequenceError{Suffix: s.Number}
	}
	if len(s.Items) == 0 {
		return nil, &EmptyItemListError{}
	}

	items := make([]LineItem, len(s.Items))
	for i, raw := range s.Items {
		item, err := ValidateLineItem(i, raw)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}

	totals, err := CalculateTotals(items, s.TaxRate)
	if err != nil {
		return nil, err
	}
	if !totals.Subtotal.Equal(s.Subtotal) || !totals.TaxAmount.Equal(s.TaxAmount) || !totals.Total.Equal(s.Total) {
		return nil, &TotalsMismatchError{Number: s.Number}
	}

	language := s.Language
	if !language.IsValid() {
		language = DefaultLanguage
	}

	return &Document{
		id:        s.ID,
		docType:   docType,
		number:    s.Number,
		customer:  s.Customer,
		company:   s.Company,
		items:     items,
		totals:    totals,
		taxRate:   s.TaxRate,
		language:  language,
		note:      s.Note,
		createdAt: s.CreatedAt,
	}, nil
}
