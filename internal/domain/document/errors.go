package document

import (
	"fmt"

	"github.com/billydoc/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Error codes carried by the typed assembly errors
const (
	CodeInvalidDocumentType  = "INVALID_DOCUMENT_TYPE"
	CodeEmptyItemList        = "EMPTY_ITEM_LIST"
	CodeInvalidLineItem      = "INVALID_LINE_ITEM"
	CodeInvalidTaxRate       = "INVALID_TAX_RATE"
	CodeMissingCustomerField = "MISSING_CUSTOMER_FIELD"
	CodeInvalidCustomerField = "INVALID_CUSTOMER_FIELD"
	CodeInvalidLanguage      = "INVALID_LANGUAGE"
	CodeInvalidSequence      = "INVALID_SEQUENCE"
	CodeAmountLimit          = "AMOUNT_EXCEEDS_LIMIT"
	CodeTotalsMismatch       = "TOTALS_MISMATCH"
)

// Stage names the assembly step that rejected a request
type Stage string

const (
	StageDocumentType Stage = "document_type"
	StageCustomer     Stage = "customer"
	StageItems        Stage = "items"
	StageTax          Stage = "tax"
	StageLanguage     Stage = "language"
	StageNumbering    Stage = "numbering"
)

// Field names reported by validation errors
const (
	FieldDescription     = "description"
	FieldQuantity        = "quantity"
	FieldPrice           = "price"
	FieldCustomerName    = "customer_name"
	FieldCustomerEmail   = "customer_email"
	FieldCustomerAddress = "customer_address"
	FieldCustomerTaxID   = "customer_tax_id"
	FieldCustomerPhone   = "customer_phone"
	FieldLanguage        = "language"
)

// InvalidDocumentTypeError is returned for a document type outside the closed set
type InvalidDocumentTypeError struct {
	Value string
}

func (e *InvalidDocumentTypeError) Error() string {
	return fmt.Sprintf("invalid document type %q: must be one of quotation, invoice, receipt", e.Value)
}

// Stage returns the failing assembly stage
func (e *InvalidDocumentTypeError) Stage() Stage { return StageDocumentType }

func (e *InvalidDocumentTypeError) Unwrap() error {
	return shared.NewDomainError(CodeInvalidDocumentType, e.Error())
}

// EmptyItemListError is returned when a document has no line items
type EmptyItemListError struct{}

func (e *EmptyItemListError) Error() string {
	return "document must contain at least one line item"
}

// Stage returns the failing assembly stage
func (e *EmptyItemListError) Stage() Stage { return StageItems }

func (e *EmptyItemListError) Unwrap() error {
	return shared.NewDomainError(CodeEmptyItemList, e.Error())
}

// InvalidLineItemError identifies the item (zero-based) and field that failed
type InvalidLineItemError struct {
	Index  int
	Field  string
	Reason string
}

func (e *InvalidLineItemError) Error() string {
	return fmt.Sprintf("items[%d].%s: %s", e.Index, e.Field, e.Reason)
}

// Stage returns the failing assembly stage
func (e *InvalidLineItemError) Stage() Stage { return StageItems }

func (e *InvalidLineItemError) Unwrap() error {
	return shared.NewDomainError(CodeInvalidLineItem, e.Error())
}

// InvalidTaxRateError is returned for a tax rate outside [0, 1]
type InvalidTaxRateError struct {
	Rate decimal.Decimal
}

func (e *InvalidTaxRateError) Error() string {
	return fmt.Sprintf("tax rate %s is outside [0, 1]", boundedString(e.Rate))
}

// boundedString keeps scientific notation for exponents String would expand
func boundedString(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < -maxScale || exp > maxIntegerDigits {
		return fmt.Sprintf("%se%d", d.Coefficient().String(), exp)
	}
	return d.String()
}

// Stage returns the failing assembly stage
func (e *InvalidTaxRateError) Stage() Stage { return StageTax }

func (e *InvalidTaxRateError) Unwrap() error {
	return shared.NewDomainError(CodeInvalidTaxRate, e.Error())
}

// MissingCustomerFieldError is returned when a required customer field is blank
type MissingCustomerFieldError struct {
	Field string
}

func (e *MissingCustomerFieldError) Error() string {
	return fmt.Sprintf("%s is required", e.Field)
}

// Stage returns the failing assembly stage
func (e *MissingCustomerFieldError) Stage() Stage { return StageCustomer }

func (e *MissingCustomerFieldError) Unwrap() error {
	return shared.NewDomainError(CodeMissingCustomerField, e.Error())
}

// InvalidCustomerFieldError is returned when an optional customer field is malformed
type InvalidCustomerFieldError struct {
	Field  string
	Reason string
}

func (e *InvalidCustomerFieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Stage returns the failing assembly stage
func (e *InvalidCustomerFieldError) Stage() Stage { return StageCustomer }

func (e *InvalidCustomerFieldError) Unwrap() error {
	return shared.NewDomainError(CodeInvalidCustomerField, e.Error())
}

// InvalidSequenceError is returned when a sequence source yields an unusable suffix
type InvalidSequenceError struct {
	Suffix string
}

func (e *InvalidSequenceError) Error() string {
	return fmt.Sprintf("sequence source returned invalid suffix %q", e.Suffix)
}

// Stage returns the failing assembly stage
func (e *InvalidSequenceError) Stage() Stage { return StageNumbering }

func (e *InvalidSequenceError) Unwrap() error {
	return shared.NewDomainError(CodeInvalidSequence, e.Error())
}

// AmountLimitError is returned when a grand total is above the configured ceiling
type AmountLimitError struct {
	Total decimal.Decimal
	Max   decimal.Decimal
}

func (e *AmountLimitError) Error() string {
	return fmt.Sprintf("total %s exceeds the maximum of %s", e.Total.StringFixed(TaxPlaces), e.Max.StringFixed(TaxPlaces))
}

// Stage returns the failing assembly stage
func (e *AmountLimitError) Stage() Stage { return StageTax }

func (e *AmountLimitError) Unwrap() error {
	return shared.NewDomainError(CodeAmountLimit, e.Error())
}

var (
	// ErrInvalidLanguage is wrapped by InvalidLanguageError
	ErrInvalidLanguage = shared.NewDomainError(CodeInvalidLanguage, "language must be one of th, en")
	// ErrTotalsMismatch is wrapped by TotalsMismatchError
	ErrTotalsMismatch = shared.NewDomainError(CodeTotalsMismatch, "stored totals do not match line items")
)

// InvalidLanguageError is returned for an unsupported print language
type InvalidLanguageError struct {
	Value string
}

func (e *InvalidLanguageError) Error() string {
	return fmt.Sprintf("language %q must be one of th, en", e.Value)
}

// Stage returns the failing assembly stage
func (e *InvalidLanguageError) Stage() Stage { return StageLanguage }

func (e *InvalidLanguageError) Unwrap() error { return ErrInvalidLanguage }

// TotalsMismatchError is returned when a stored document's totals disagree
// with its stored items
type TotalsMismatchError struct {
	Number string
}

func (e *TotalsMismatchError) Error() string {
	return fmt.Sprintf("%s: stored totals do not match line items", e.Number)
}

// Stage returns the failing assembly stage
func (e *TotalsMismatchError) Stage() Stage { return StageTax }

func (e *TotalsMismatchError) Unwrap() error { return ErrTotalsMismatch }

// StageOf reports the assembly stage carried by err, if any
func StageOf(err error) (Stage, bool) {
	type staged interface{ Stage() Stage }
	for err != nil {
		if s, ok := err.(staged); ok {
			return s.Stage(), true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return "", false
		}
		err = u.Unwrap()
	}
	return "", false
}
