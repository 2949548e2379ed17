package document

import "github.com/shopspring/decimal"

// TaxPlaces is the number of decimal places tax is rounded to
const TaxPlaces = 2

var maxTaxRate = decimal.NewFromInt(1)

// Totals holds the derived amounts of a document
type Totals struct {
	Subtotal  decimal.Decimal
	TaxAmount decimal.Decimal
	Total     decimal.Decimal
}

// CalculateTotals sums the line totals and applies taxRate once to the
// subtotal. Tax is rounded half-up to TaxPlaces; subtotal and total are exact.
func CalculateTotals(items []LineItem, taxRate decimal.Decimal) (Totals, error) {
	if len(items) == 0 {
		return Totals{}, &EmptyItemListError{}
	}
	if !validTaxRate(taxRate) {
		return Totals{}, &InvalidTaxRateError{Rate: taxRate}
	}

	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.LineTotal())
	}

	// decimal.Round is half away from zero, i.e. half-up for non-negative amounts
	tax := subtotal.Mul(taxRate).Round(TaxPlaces)

	return Totals{
		Subtotal:  subtotal,
		TaxAmount: tax,
		Total:     subtotal.Add(tax),
	}, nil
}

// validTaxRate checks the exponent before comparing, comparison rescales
func validTaxRate(rate decimal.Decimal) bool {
	if rate.IsZero() {
		return true
	}
	if exp := rate.Exponent(); exp > 0 || exp < -maxScale {
		return false
	}
	return !rate.IsNegative() && !rate.GreaterThan(maxTaxRate)
}
