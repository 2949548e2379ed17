package document

import (
	"context"
	"strings"
	"time"

	"github.com/billydoc/backend/internal/domain/shared/thai"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssembleRequest is a schema-checked but not yet validated document request
type AssembleRequest struct {
	DocumentType string
	Customer     Customer
	Items        []RawLineItem
	TaxRate      decimal.Decimal
	Company      Company
	Language     Language
	Note         string
}

// Assembler turns requests into Documents
type Assembler struct {
	numbers    *NumberGenerator
	now        func() time.Time
	newID      func() uuid.UUID
	maxTotal   decimal.Decimal
	strictThai bool
}

// AssemblerOption configures an Assembler
type AssemblerOption func(*Assembler)

// WithClock overrides the creation timestamp source
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *Assembler) {
		a.now = now
	}
}

// WithIDGenerator overrides document ID generation
func WithIDGenerator(newID func() uuid.UUID) AssemblerOption {
	return func(a *Assembler) {
		a.newID = newID
	}
}

// WithMaxTotal rejects documents whose grand total exceeds max.
// A zero max disables the check.
func WithMaxTotal(max decimal.Decimal) AssemblerOption {
	return func(a *Assembler) {
		a.maxTotal = max
	}
}

// WithStrictThai requires the customer name to be written mostly in Thai
func WithStrictThai(strict bool) AssemblerOption {
	return func(a *Assembler) {
		a.strictThai = strict
	}
}

// NewAssembler creates an Assembler that numbers documents with numbers
func NewAssembler(numbers *NumberGenerator, opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		numbers: numbers,
		now:     time.Now,
		newID:   uuid.New,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble validates req and returns a numbered Document.
// The first failing check aborts; a number is only drawn once everything else passed.
func (a *Assembler) Assemble(ctx context.Context, req AssembleRequest) (*Document, error) {
	docType, err := ParseDocumentType(req.DocumentType)
	if err != nil {
		return nil, err
	}

	customer, err := validateCustomer(req.Customer)
	if err != nil {
		return nil, err
	}
	if a.strictThai {
		if err := thai.ValidateThaiText(customer.Name); err != nil {
			return nil, &InvalidCustomerFieldError{Field: FieldCustomerName, Reason: reason(err)}
		}
	}

	if len(req.Items) == 0 {
		return nil, &EmptyItemListError{}
	}
	items := make([]LineItem, len(req.Items))
	for i, raw := range req.Items {
		item, err := ValidateLineItem(i, raw)
		if err != nil {
			return nil, err
		}
		items[i] = item
	}

	totals, err := CalculateTotals(items, req.TaxRate)
	if err != nil {
		return nil, err
	}
	if a.maxTotal.IsPositive() && totals.Total.GreaterThan(a.maxTotal) {
		return nil, &AmountLimitError{Total: totals.Total, Max: a.maxTotal}
	}

	language := req.Language
	if language == "" {
		language = DefaultLanguage
	}
	if !language.IsValid() {
		return nil, &InvalidLanguageError{Value: string(language)}
	}

	number, err := a.numbers.Generate(ctx, docType)
	if err != nil {
		return nil, err
	}

	return &Document{
		id:        a.newID(),
		docType:   docType,
		number:    number,
		customer:  customer,
		company:   req.Company,
		items:     items,
		totals:    totals,
		taxRate:   req.TaxRate,
		language:  language,
		note:      strings.TrimSpace(req.Note),
		createdAt: a.now(),
	}, nil
}

func validateCustomer(c Customer) (Customer, error) {
	out := Customer{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Address: strings.TrimSpace(c.Address),
		TaxID:   strings.TrimSpace(c.TaxID),
	}

	required := []struct {
		field string
		value string
	}{
		{FieldCustomerName, out.Name},
		{FieldCustomerEmail, out.Email},
		{FieldCustomerAddress, out.Address},
	}
	for _, r := range required {
		if r.value == "" {
			return Customer{}, &MissingCustomerFieldError{Field: r.field}
		}
	}

	if out.TaxID != "" {
		if err := thai.ValidateTaxID(out.TaxID); err != nil {
			return Customer{}, &InvalidCustomerFieldError{Field: FieldCustomerTaxID, Reason: reason(err)}
		}
	}

	if phone := strings.TrimSpace(c.Phone); phone != "" {
		if err := thai.ValidatePhone(phone); err != nil {
			return Customer{}, &InvalidCustomerFieldError{Field: FieldCustomerPhone, Reason: reason(err)}
		}
		out.Phone = thai.NormalizePhone(phone)
	}

	return out, nil
}

func reason(err error) string {
	return strings.ToLower(err.Error())
}
