package document

import (
	"strings"

	"github.com/shopspring/decimal"
)

// RawLineItem is an unvalidated item as received from a caller.
// Numbers stay textual so that nothing is coerced before validation.
type RawLineItem struct {
	Description string
	Quantity    string
	Price       string
}

// LineItem is a validated billable row. Its total is always derived.
type LineItem struct {
	description string
	quantity    decimal.Decimal
	unitPrice   decimal.Decimal
}

// ValidateLineItem checks one raw item. index is only used for error reporting.
func ValidateLineItem(index int, raw RawLineItem) (LineItem, error) {
	description := strings.TrimSpace(raw.Description)
	if description == "" {
		return LineItem{}, &InvalidLineItemError{Index: index, Field: FieldDescription, Reason: "must not be empty"}
	}

	quantity, err := parsePositive(raw.Quantity)
	if err != nil {
		return LineItem{}, &InvalidLineItemError{Index: index, Field: FieldQuantity, Reason: err.Error()}
	}

	price, err := parsePositive(raw.Price)
	if err != nil {
		return LineItem{}, &InvalidLineItemError{Index: index, Field: FieldPrice, Reason: err.Error()}
	}

	return LineItem{
		description: description,
		quantity:    quantity,
		unitPrice:   price,
	}, nil
}

// NewLineItem builds a LineItem from already typed values
func NewLineItem(description string, quantity, unitPrice decimal.Decimal) (LineItem, error) {
	return ValidateLineItem(0, RawLineItem{
		Description: description,
		Quantity:    quantity.String(),
		Price:       unitPrice.String(),
	})
}

type parseError string

func (e parseError) Error() string { return string(e) }

const (
	errNotNumeric  = parseError("must be a number")
	errNotPositive = parseError("must be greater than zero")
	errOutOfRange  = parseError("out of range")
)

// Bounds on accepted literals, checked before any arithmetic. Products and
// sums of in-range values stay far inside int32 exponents.
const (
	maxIntegerDigits = 15
	maxScale         = 12
)

func parsePositive(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, errNotNumeric
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errNotNumeric
	}
	exp := d.Exponent()
	if exp < -maxScale || exp > maxIntegerDigits || d.NumDigits()+int(exp) > maxIntegerDigits {
		return decimal.Decimal{}, errOutOfRange
	}
	if !d.IsPositive() {
		return decimal.Decimal{}, errNotPositive
	}
	return d, nil
}

// Description returns the item description
func (li LineItem) Description() string {
	return li.description
}

// Quantity returns the item quantity
func (li LineItem) Quantity() decimal.Decimal {
	return li.quantity
}

// UnitPrice returns the price per unit
func (li LineItem) UnitPrice() decimal.Decimal {
	return li.unitPrice
}

// LineTotal returns quantity × unit price, unrounded
func (li LineItem) LineTotal() decimal.Decimal {
	return li.quantity.Mul(li.unitPrice)
}

// Raw converts the item back to its raw form
func (li LineItem) Raw() RawLineItem {
	return RawLineItem{
		Description: li.description,
		Quantity:    li.quantity.String(),
		Price:       li.unitPrice.String(),
	}
}
