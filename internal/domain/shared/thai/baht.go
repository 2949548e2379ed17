// Package thai holds Thai business conventions used on printed documents:
// baht amounts in words, Buddhist-era dates and identifier validation.
package thai

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNegativeAmount is returned when converting a negative amount to words
var ErrNegativeAmount = errors.New("amount cannot be negative")

var (
	digitWords = [...]string{"", "หนึ่ง", "สอง", "สาม", "สี่", "ห้า", "หก", "เจ็ด", "แปด", "เก้า"}
	placeWords = [...]string{"", "สิบ", "ร้อย", "พัน", "หมื่น", "แสน"}
)

const million = 1_000_000

// BahtText spells out an amount in Thai the way it is written on invoices.
// The amount is rounded to satang (half-up) first.
//
//	BahtText(100)     -> "หนึ่งร้อยบาทถ้วน"
//	BahtText(123.50)  -> "หนึ่งร้อยยี่สิบสามบาทห้าสิบสตางค์"
//	BahtText(0.50)    -> "ห้าสิบสตางค์"
func BahtText(amount decimal.Decimal) (string, error) {
	if amount.IsNegative() {
		return "", ErrNegativeAmount
	}

	amount = amount.Round(2)
	baht := amount.IntPart()
	satang := amount.Sub(decimal.NewFromInt(baht)).Shift(2).IntPart()

	if baht == 0 && satang == 0 {
		return "ศูนย์บาทถ้วน", nil
	}

	var b strings.Builder
	if baht > 0 {
		b.WriteString(spell(baht, false))
		b.WriteString("บาท")
	}
	if satang > 0 {
		b.WriteString(spell(satang, false))
		b.WriteString("สตางค์")
	} else {
		b.WriteString("ถ้วน")
	}
	return b.String(), nil
}

// spell writes n in Thai words. hasHigher reports whether a larger
// (million) group precedes n, which turns a trailing one into "เอ็ด".
func spell(n int64, hasHigher bool) string {
	if n >= million {
		high := n / million
		low := n % million
		return spell(high, false) + "ล้าน" + spellGroup(low, true)
	}
	return spellGroup(n, hasHigher)
}

// spellGroup spells a value below one million.
func spellGroup(n int64, hasHigher bool) string {
	if n == 0 {
		return ""
	}

	var parts []string
	original := n
	for place := 0; n > 0; place++ {
		digit := n % 10
		n /= 10
		if digit == 0 {
			continue
		}

		switch {
		case place == 0 && digit == 1 && (original > 10 || hasHigher):
			parts = append(parts, "เอ็ด")
		case place == 1 && digit == 1:
			parts = append(parts, placeWords[1])
		case place == 1 && digit == 2:
			parts = append(parts, "ยี่"+placeWords[1])
		default:
			parts = append(parts, digitWords[digit]+placeWords[place])
		}
	}

	var b strings.Builder
	for i := len(parts) - 1; i >= 0; i-- {
		b.WriteString(parts[i])
	}
	return b.String()
}
